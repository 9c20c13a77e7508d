package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cart-service/models"
	aws_pkg "cart-service/pkg/aws"
	"cart-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewAccount is the state built up while an account is being created.
// Hooks may attach the records they create.
type NewAccount struct {
	User *models.User
	Cart *models.Cart
}

// AccountCreatedHook runs synchronously after the user row is inserted, inside
// the same transaction. An error aborts the registration.
type AccountCreatedHook interface {
	OnAccountCreated(ctx context.Context, repos repository.Repositories, account *NewAccount) error
}

// AccountService defines account registration and login.
type AccountService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*NewAccount, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, *ServiceError)
}

type accountServiceImpl struct {
	tx      repository.Transactor
	users   repository.UserRepository
	tokens  TokenService
	hooks   []AccountCreatedHook
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
}

var errUsernameTaken = errors.New("username already taken")

// NewAccountService creates a new AccountService. hooks run in the given order.
func NewAccountService(
	tx repository.Transactor,
	users repository.UserRepository,
	tokens TokenService,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
	hooks ...AccountCreatedHook,
) AccountService {
	return &accountServiceImpl{
		tx:      tx,
		users:   users,
		tokens:  tokens,
		hooks:   hooks,
		metrics: metrics,
		logger:  logger,
	}
}

// Register creates the user and runs every AccountCreatedHook in one
// transaction.
func (s *accountServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*NewAccount, *ServiceError) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, internalError("Failed to create account")
	}

	account := &NewAccount{}
	err = s.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Users.FindByUsername(ctx, req.Username); err == nil {
			return errUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user := &models.User{
			ID:       uuid.New(),
			Username: req.Username,
			Email:    req.Email,
			Password: string(hashed),
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			if isUniqueViolation(err) {
				return errUsernameTaken
			}
			return err
		}
		account.User = user

		for _, hook := range s.hooks {
			if err := hook.OnAccountCreated(ctx, repos, account); err != nil {
				return err
			}
		}
		return nil
	})

	if errors.Is(err, errUsernameTaken) {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Username already exists"}
	}
	if err != nil {
		s.logger.Error("Failed to register account", zap.String("username", req.Username), zap.Error(err))
		return nil, internalError("Failed to create account")
	}

	if s.metrics != nil {
		if err := s.metrics.RecordCount(ctx, aws_pkg.MetricAccountsCreated, nil); err != nil {
			s.logger.Warn("Failed to record metric", zap.String("metric", aws_pkg.MetricAccountsCreated), zap.Error(err))
		}
	}

	s.logger.Info("Account created", zap.String("user_id", account.User.ID.String()))
	return account, nil
}

func (s *accountServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, *ServiceError) {
	invalid := &ServiceError{StatusCode: http.StatusUnauthorized, Message: "Invalid username or password"}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		s.logger.Error("Failed to load user", zap.Error(err))
		return nil, internalError("Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, internalError("Failed to log in")
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// CartProvisioner gives every new account its cart.
type CartProvisioner struct {
	logger *zap.Logger
}

func NewCartProvisioner(logger *zap.Logger) *CartProvisioner {
	return &CartProvisioner{logger: logger}
}

func (p *CartProvisioner) OnAccountCreated(ctx context.Context, repos repository.Repositories, account *NewAccount) error {
	cart := &models.Cart{CustomerID: account.User.ID}
	if err := repos.Carts.Create(ctx, cart); err != nil {
		return err
	}
	account.Cart = cart

	p.logger.Debug("Cart provisioned",
		zap.String("customer_id", account.User.ID.String()),
		zap.Uint("cart_id", cart.ID),
	)
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
