package handlers

import (
	"reflect"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validOrderRequest() createOrderRequest {
	return createOrderRequest{
		OrderItems: []createOrderItemRequest{
			{
				Name:      "Cordless Hammer Drill 18V",
				Qty:       2,
				Image:     "/images/hammer-drill.jpg",
				Price:     1029,
				ProductID: primitive.NewObjectID().Hex(),
			},
		},
		ShippingAddress: shippingAddressRequest{
			Address:      "Calle 10 #5-21",
			City:         "Bogota",
			Neighborhood: "Chapinero",
			Phone:        "3001234567",
		},
		PaymentMethod: "PayPal",
		ItemsPrice:    2058,
		TaxPrice:      329.28,
		ShippingPrice: 0,
		TotalPrice:    2387.28,
	}
}

func TestBuildOrderRejectsEmptyItems(t *testing.T) {
	req := validOrderRequest()
	req.OrderItems = nil

	_, err := buildOrderFromRequest(req, primitive.NewObjectID())
	if err == nil {
		t.Fatal("expected error for empty order items")
	}
	if err.Error() != "No order items" {
		t.Fatalf("expected 'No order items', got %q", err.Error())
	}
}

func TestBuildOrderRejectsZeroQuantityItem(t *testing.T) {
	req := validOrderRequest()
	req.OrderItems[0].Qty = 0

	if _, err := buildOrderFromRequest(req, primitive.NewObjectID()); err == nil {
		t.Fatal("expected error for qty=0 item")
	}
}

func TestBuildOrderRejectsNegativePriceItem(t *testing.T) {
	req := validOrderRequest()
	req.OrderItems[0].Price = -5

	if _, err := buildOrderFromRequest(req, primitive.NewObjectID()); err == nil {
		t.Fatal("expected error for negative item price")
	}
}

// The item-level binding tags only run if the slice field tells the validator
// to descend into its elements.
func TestOrderItemsBindingDescendsIntoElements(t *testing.T) {
	field, ok := reflect.TypeOf(createOrderRequest{}).FieldByName("OrderItems")
	if !ok {
		t.Fatal("OrderItems field missing")
	}
	if tag := field.Tag.Get("binding"); !strings.Contains(tag, "dive") {
		t.Fatalf("expected dive in OrderItems binding tag, got %q", tag)
	}
}

func TestBuildOrderRejectsInvalidProductID(t *testing.T) {
	req := validOrderRequest()
	req.OrderItems[0].ProductID = "not-a-hex-id"

	if _, err := buildOrderFromRequest(req, primitive.NewObjectID()); err == nil {
		t.Fatal("expected error for invalid product id")
	}
}

func TestBuildOrderKeepsSuppliedPricing(t *testing.T) {
	userID := primitive.NewObjectID()
	req := validOrderRequest()

	order, err := buildOrderFromRequest(req, userID)
	if err != nil {
		t.Fatalf("buildOrderFromRequest returned error: %v", err)
	}

	if order.UserID != userID {
		t.Fatal("expected order to be owned by the caller")
	}
	if order.ItemsPrice != 2058 || order.TaxPrice != 329.28 || order.TotalPrice != 2387.28 {
		t.Fatalf("pricing fields were not kept as supplied: %+v", order)
	}
	if order.IsPaid || order.IsDelivered {
		t.Fatal("new order must not be paid or delivered")
	}
	if order.PaidAt != nil || order.DeliveredAt != nil {
		t.Fatal("new order must not carry transition timestamps")
	}
	if len(order.OrderItems) != 1 || order.OrderItems[0].Qty != 2 {
		t.Fatalf("order items not carried over: %+v", order.OrderItems)
	}
	if order.ShippingAddress.Neighborhood != "Chapinero" {
		t.Fatalf("shipping address not carried over: %+v", order.ShippingAddress)
	}
}
