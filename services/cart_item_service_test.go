package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"cart-service/models"
	"cart-service/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTopic = "arn:aws:sns:us-east-1:000000000000:cart-events"

type cartFixture struct {
	store *memStore
	pub   *mockPublisher
	svc   services.CartItemService
	owner uuid.UUID
	cart  *models.Cart
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	store := newMemStore()
	store.addProduct(1, "Milk")
	store.addProduct(2, "Bread")

	owner := uuid.New()
	cart := store.addCart(owner)

	pub := &mockPublisher{}
	logger, _ := zap.NewDevelopment()
	svc := services.NewCartItemService(
		&memCartRepo{s: store},
		&memItemRepo{s: store},
		&memCatalog{s: store},
		pub,
		testTopic,
		nil,
		logger,
	)
	return &cartFixture{store: store, pub: pub, svc: svc, owner: owner, cart: cart}
}

func (f *cartFixture) expectEvent(eventType string) {
	f.pub.On("Publish", mock.Anything, testTopic, eventType, mock.Anything).Return(nil).Once()
}

func TestAddItem_CreatesLineWithDefaultQuantity(t *testing.T) {
	f := newCartFixture(t)
	f.expectEvent(models.EventCartItemAdded)

	before := f.store.itemCount()
	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{
		Product: 1,
		Cart:    f.cart.ID,
	})

	require.Nil(t, svcErr)
	assert.Equal(t, before+1, f.store.itemCount())
	assert.Equal(t, f.cart.ID, item.CartID)
	assert.Equal(t, uint(1), item.ProductID)
	assert.Equal(t, models.DefaultItemQuantity, f.store.items[item.ID].Quantity)
	f.pub.AssertExpectations(t)
}

func TestAddItem_DefaultsToRequesterCart(t *testing.T) {
	f := newCartFixture(t)
	f.expectEvent(models.EventCartItemAdded)

	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 2, Quantity: 3})

	require.Nil(t, svcErr)
	assert.Equal(t, f.cart.ID, item.CartID)
	assert.Equal(t, 3, f.store.items[item.ID].Quantity)
}

func TestAddItem_SameProductMergesQuantity(t *testing.T) {
	f := newCartFixture(t)
	f.pub.On("Publish", mock.Anything, testTopic, models.EventCartItemAdded, mock.Anything).Return(nil).Twice()

	first, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1, Cart: f.cart.ID})
	require.Nil(t, svcErr)
	second, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1, Cart: f.cart.ID, Quantity: 2})
	require.Nil(t, svcErr)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.store.itemCount())
	assert.Equal(t, 3, f.store.items[first.ID].Quantity)
	f.pub.AssertExpectations(t)
}

func TestAddItem_ForeignCartForbidden(t *testing.T) {
	f := newCartFixture(t)
	other := f.store.addCart(uuid.New())

	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1, Cart: other.ID})

	assert.Nil(t, item)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusForbidden, svcErr.StatusCode)
	assert.Equal(t, 0, f.store.itemCount())
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateCartItemRequest
	}{
		{"missing product", models.CreateCartItemRequest{Cart: 1}},
		{"unknown product", models.CreateCartItemRequest{Product: 99, Cart: 1}},
		{"unknown cart", models.CreateCartItemRequest{Product: 1, Cart: 99}},
		{"negative quantity", models.CreateCartItemRequest{Product: 1, Cart: 1, Quantity: -4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)
			_, svcErr := f.svc.AddItem(context.Background(), f.owner, &tt.req)
			require.NotNil(t, svcErr)
			assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
			assert.Equal(t, 0, f.store.itemCount())
		})
	}
}

func TestAddItem_CatalogFailureIs500(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	store.addCart(owner)

	svc := services.NewCartItemService(
		&memCartRepo{s: store},
		&memItemRepo{s: store},
		&memCatalog{s: store, err: errors.New("connection refused")},
		nil, "", nil, zap.NewNop(),
	)

	_, svcErr := svc.AddItem(context.Background(), owner, &models.CreateCartItemRequest{Product: 1})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
}

func TestAddItem_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newCartFixture(t)
	f.pub.On("Publish", mock.Anything, testTopic, models.EventCartItemAdded, mock.Anything).
		Return(errors.New("sns unavailable")).Once()

	_, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1})

	assert.Nil(t, svcErr)
	assert.Equal(t, 1, f.store.itemCount())
	f.pub.AssertExpectations(t)
}

func TestAddItem_EventPayload(t *testing.T) {
	f := newCartFixture(t)

	var captured models.CartItemEvent
	f.pub.On("Publish", mock.Anything, testTopic, models.EventCartItemAdded, mock.Anything).
		Run(func(args mock.Arguments) {
			_ = json.Unmarshal(args.Get(3).([]byte), &captured)
		}).
		Return(nil).Once()

	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 2, Quantity: 4})
	require.Nil(t, svcErr)

	assert.Equal(t, models.EventCartItemAdded, captured.EventType)
	assert.Equal(t, f.owner.String(), captured.CustomerID)
	assert.Equal(t, item.ID, captured.ItemID)
	assert.Equal(t, uint(2), captured.ProductID)
	assert.Equal(t, 4, captured.Quantity)
	assert.False(t, captured.Timestamp.IsZero())
}

func TestUpdateItem_SetsQuantity(t *testing.T) {
	f := newCartFixture(t)
	f.expectEvent(models.EventCartItemAdded)
	f.expectEvent(models.EventCartItemUpdated)

	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1})
	require.Nil(t, svcErr)

	svcErr = f.svc.UpdateItem(context.Background(), f.owner, item.ID, &models.UpdateCartItemRequest{Quantity: 5})

	assert.Nil(t, svcErr)
	assert.Equal(t, 5, f.store.items[item.ID].Quantity)
	f.pub.AssertExpectations(t)
}

func TestUpdateItem_UnknownOrForeignIsNotFound(t *testing.T) {
	f := newCartFixture(t)
	f.expectEvent(models.EventCartItemAdded)

	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1})
	require.Nil(t, svcErr)

	stranger := uuid.New()
	f.store.addCart(stranger)

	svcErr = f.svc.UpdateItem(context.Background(), stranger, item.ID, &models.UpdateCartItemRequest{Quantity: 9})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	assert.Equal(t, models.DefaultItemQuantity, f.store.items[item.ID].Quantity)

	svcErr = f.svc.UpdateItem(context.Background(), f.owner, 12345, &models.UpdateCartItemRequest{Quantity: 9})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestUpdateItem_RejectsNonPositiveQuantity(t *testing.T) {
	f := newCartFixture(t)

	svcErr := f.svc.UpdateItem(context.Background(), f.owner, 1, &models.UpdateCartItemRequest{Quantity: 0})
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestRemoveItem_DeletesLine(t *testing.T) {
	f := newCartFixture(t)
	f.expectEvent(models.EventCartItemAdded)
	f.expectEvent(models.EventCartItemRemoved)

	item, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1})
	require.Nil(t, svcErr)
	require.Equal(t, 1, f.store.itemCount())

	svcErr = f.svc.RemoveItem(context.Background(), f.owner, item.ID)

	assert.Nil(t, svcErr)
	assert.Equal(t, 0, f.store.itemCount())
	f.pub.AssertExpectations(t)
}

func TestRemoveItem_UnknownIdLeavesCartUntouched(t *testing.T) {
	f := newCartFixture(t)
	f.expectEvent(models.EventCartItemAdded)

	_, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1})
	require.Nil(t, svcErr)

	svcErr = f.svc.RemoveItem(context.Background(), f.owner, 777)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	assert.Equal(t, 1, f.store.itemCount())
}

func TestGetCartAndItems(t *testing.T) {
	f := newCartFixture(t)
	f.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 1})
	require.Nil(t, svcErr)
	added, svcErr := f.svc.AddItem(context.Background(), f.owner, &models.CreateCartItemRequest{Product: 2})
	require.Nil(t, svcErr)

	cart, items, svcErr := f.svc.GetCart(context.Background(), f.owner)
	require.Nil(t, svcErr)
	assert.Equal(t, f.cart.ID, cart.ID)
	assert.Len(t, items, 2)

	listed, svcErr := f.svc.ListItems(context.Background(), f.owner)
	require.Nil(t, svcErr)
	assert.Len(t, listed, 2)

	got, svcErr := f.svc.GetItem(context.Background(), f.owner, added.ID)
	require.Nil(t, svcErr)
	assert.Equal(t, uint(2), got.ProductID)

	_, svcErr = f.svc.GetItem(context.Background(), uuid.New(), added.ID)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestGetCart_NoCart(t *testing.T) {
	f := newCartFixture(t)

	_, _, svcErr := f.svc.GetCart(context.Background(), uuid.New())
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}
