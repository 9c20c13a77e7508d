package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"cart-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var productColumns = []string{
	"id", "name", "description", "slug_name", "unit_id", "quantity_per_unit",
	"price", "currency_id", "category_id", "created_at", "updated_at",
}

func TestListProducts_ByCategory(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCatalogRepository(gormDB)

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products" JOIN categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .+ FROM "products" JOIN categories .+ ORDER BY products.id ASC`).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(1, "Milk", "", "milk", 1, 1, 1.5, 1, 1, now, now).
			AddRow(2, "Kefir", "", "kefir", 1, 1, 2.1, 1, 1, now, now))

	products, total, err := repo.ListProducts(context.Background(), 1, 10, "dairy")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)
	assert.Equal(t, "kefir", products[1].SlugName)
}

func TestListProducts_CountError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCatalogRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products"`)).
		WillReturnError(errors.New("connection reset"))

	products, total, err := repo.ListProducts(context.Background(), 1, 10, "")
	assert.Error(t, err)
	assert.Nil(t, products)
	assert.Zero(t, total)
}

func TestFindProductByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCatalogRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(productColumns))

	p, err := repo.FindProductByID(context.Background(), 77)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
