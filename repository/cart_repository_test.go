package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"cart-service/models"
	"cart-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestCartCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	cart := &models.Cart{CustomerID: uuid.New()}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "carts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), cart)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), cart.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartFindByCustomer_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	customer := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "customer_id", "created_at"}).
		AddRow(3, customer, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts" WHERE customer_id = $1`)).
		WillReturnRows(rows)

	cart, err := repo.FindByCustomer(context.Background(), customer)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), cart.ID)
	assert.Equal(t, customer, cart.CustomerID)
}

func TestCartFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	cart, err := repo.FindByID(context.Background(), 42)
	assert.Nil(t, cart)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
