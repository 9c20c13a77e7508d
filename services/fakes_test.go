package services_test

import (
	"context"
	"errors"
	"sync"

	"cart-service/models"
	"cart-service/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- In-memory store shared by the fake repositories ---

type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	carts    map[uint]*models.Cart
	items    map[uint]*models.CartItem
	products map[uint]*models.Product
	nextCart uint
	nextItem uint
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		carts:    make(map[uint]*models.Cart),
		items:    make(map[uint]*models.CartItem),
		products: make(map[uint]*models.Product),
	}
}

func (s *memStore) addCart(customer uuid.UUID) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCart++
	c := &models.Cart{ID: s.nextCart, CustomerID: customer}
	s.carts[c.ID] = c
	return c
}

func (s *memStore) addProduct(id uint, name string) {
	s.products[id] = &models.Product{ID: id, Name: name}
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// --- Cart repository ---

type memCartRepo struct{ s *memStore }

func (r *memCartRepo) Create(_ context.Context, cart *models.Cart) error {
	for _, c := range r.s.carts {
		if c.CustomerID == cart.CustomerID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	r.s.nextCart++
	cart.ID = r.s.nextCart
	r.s.carts[cart.ID] = cart
	return nil
}

func (r *memCartRepo) FindByID(_ context.Context, id uint) (*models.Cart, error) {
	c, ok := r.s.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *memCartRepo) FindByCustomer(_ context.Context, customerID uuid.UUID) (*models.Cart, error) {
	for _, c := range r.s.carts {
		if c.CustomerID == customerID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- Cart item repository ---

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) AddOrIncrement(_ context.Context, item *models.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			item.ID = existing.ID
			return nil
		}
	}
	r.s.nextItem++
	item.ID = r.s.nextItem
	stored := *item
	r.s.items[item.ID] = &stored
	return nil
}

func (r *memItemRepo) owned(id uint, customerID uuid.UUID) (*models.CartItem, bool) {
	item, ok := r.s.items[id]
	if !ok {
		return nil, false
	}
	cart, ok := r.s.carts[item.CartID]
	if !ok || cart.CustomerID != customerID {
		return nil, false
	}
	return item, true
}

func (r *memItemRepo) FindForCustomer(_ context.Context, id uint, customerID uuid.UUID) (*models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.owned(id, customerID)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) ListByCart(_ context.Context, cartID uint) ([]models.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.CartItem
	for id := uint(1); id <= r.s.nextItem; id++ {
		if item, ok := r.s.items[id]; ok && item.CartID == cartID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) UpdateQuantityForCustomer(_ context.Context, id uint, customerID uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.owned(id, customerID)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *memItemRepo) DeleteForCustomer(_ context.Context, id uint, customerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.owned(id, customerID); !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.items, id)
	return nil
}

// --- User repository ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := r.s.users[user.Username]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.s.users[user.Username] = user
	return nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := r.s.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range r.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- Catalog repository ---

type memCatalog struct {
	s   *memStore
	err error
}

func (r *memCatalog) FindProductByID(_ context.Context, id uint) (*models.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *memCatalog) ListProducts(_ context.Context, page, limit int, _ string) ([]models.Product, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	out := []models.Product{}
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// --- Transactor: restores users and carts when fn fails ---

type memTransactor struct{ s *memStore }

func (t *memTransactor) WithinTransaction(_ context.Context, fn func(repos repository.Repositories) error) error {
	users := make(map[string]*models.User, len(t.s.users))
	for k, v := range t.s.users {
		users[k] = v
	}
	carts := make(map[uint]*models.Cart, len(t.s.carts))
	for k, v := range t.s.carts {
		carts[k] = v
	}
	nextCart := t.s.nextCart

	err := fn(repository.Repositories{
		Users: &memUserRepo{s: t.s},
		Carts: &memCartRepo{s: t.s},
	})
	if err != nil {
		t.s.users = users
		t.s.carts = carts
		t.s.nextCart = nextCart
	}
	return err
}

// --- Mock SNS Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topicArn string, eventType string, message []byte) error {
	args := m.Called(ctx, topicArn, eventType, message)
	return args.Error(0)
}
