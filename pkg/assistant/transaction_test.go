package assistant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRequiresCart(t *testing.T) {
	_, err := NewOrder("order-1").Build()
	require.Error(t, err)
	var shape *InvalidResponseShapeError
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, "order.cart", shape.Field)
}

func TestOrderRequiresID(t *testing.T) {
	cart := NewCart().AddLineItem(NewLineItem("li-1", "Coffee"))
	_, err := NewOrder("").SetCart(cart).Build()
	require.Error(t, err)
}

func TestCartRequiresLineItems(t *testing.T) {
	_, err := NewCart().SetMerchant("m-1", "Corner Cafe").Build()
	require.Error(t, err)
}

func TestLineItemValidation(t *testing.T) {
	_, err := NewLineItem("", "Coffee").Build()
	require.Error(t, err)

	_, err = NewLineItem("li-1", "Coffee").SetQuantity(0).Build()
	require.Error(t, err)

	li, err := NewLineItem("li-1", "Coffee").
		SetQuantity(2).
		SetPrice(Price{Type: "ACTUAL", CurrencyCode: "USD", Units: 3, Nanos: 500000000}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 2, li.quantity)
}

func TestOrderBuildValid(t *testing.T) {
	cart := NewCart().
		SetMerchant("m-1", "Corner Cafe").
		AddLineItem(NewLineItem("li-1", "Coffee").SetPrice(Price{Type: "ACTUAL", CurrencyCode: "USD", Units: 3})).
		SetNotes("extra hot")
	_, err := NewOrder("order-1").
		SetCart(cart).
		SetTotalPrice(Price{Type: "ESTIMATE", CurrencyCode: "USD", Units: 3}).
		Build()
	assert.NoError(t, err)
}

func TestOrderUpdateValidation(t *testing.T) {
	_, err := NewOrderUpdate("", OrderStateConfirmed, "Confirmed").Build()
	require.Error(t, err)

	_, err = NewOrderUpdate("order-1", "", "Confirmed").Build()
	require.Error(t, err)

	_, err = NewOrderUpdate("order-1", OrderStateConfirmed, "Confirmed").Build()
	assert.NoError(t, err)
}
