package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		Status:      domain.OrderStatusPending,
		Payment:     domain.PaymentStatusPending,
		Currency:    domain.CheckoutCurrency,
		AmountMinor: 500,
		Items: []domain.OrderItem{
			{
				ID:         "item-1",
				OrderID:    "order-1",
				ProductID:  "product-1",
				Qty:        5,
				PriceMinor: 100,
				CreatedAt:  now,
			},
		},
		OrderDate: now,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "negative amount",
			mut: func(o *domain.Order) {
				o.AmountMinor = -1
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "amount mismatch",
			mut: func(o *domain.Order) {
				o.AmountMinor = 1
			},
		},
		{
			name: "zero qty item",
			mut: func(o *domain.Order) {
				o.Items[0].Qty = 0
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			if errs := order.ValidateInvariants(); len(errs) == 0 {
				t.Fatalf("expected validation errors, got none")
			}
		})
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusApproved, true},
		{domain.OrderStatusPending, domain.OrderStatusInProcess, true},
		{domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPending, domain.OrderStatusShipped, false},
		{domain.OrderStatusApproved, domain.OrderStatusInProcess, true},
		{domain.OrderStatusApproved, domain.OrderStatusShipped, false},
		{domain.OrderStatusInProcess, domain.OrderStatusShipped, true},
		{domain.OrderStatusInProcess, domain.OrderStatusCancelled, true},
		{domain.OrderStatusShipped, domain.OrderStatusCancelled, false},
		{domain.OrderStatusCancelled, domain.OrderStatusInProcess, false},
		// Переход в тот же статус — допустимый no-op.
		{domain.OrderStatusShipped, domain.OrderStatusShipped, true},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    domain.PaymentStatus
		to      domain.PaymentStatus
		allowed bool
	}{
		{domain.PaymentStatusPending, domain.PaymentStatusApproved, true},
		{domain.PaymentStatusPending, domain.PaymentStatusCancelled, true},
		{domain.PaymentStatusPending, domain.PaymentStatusRefunded, false},
		{domain.PaymentStatusDelayed, domain.PaymentStatusApproved, true},
		{domain.PaymentStatusDelayed, domain.PaymentStatusCancelled, true},
		{domain.PaymentStatusApproved, domain.PaymentStatusRefunded, true},
		{domain.PaymentStatusApproved, domain.PaymentStatusCancelled, true},
		{domain.PaymentStatusRefunded, domain.PaymentStatusApproved, false},
		{domain.PaymentStatusCancelled, domain.PaymentStatusApproved, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestPaymentCaptured(t *testing.T) {
	order := makeOrder()
	if order.PaymentCaptured() {
		t.Fatal("pending order must not be captured")
	}

	order.Payment = domain.PaymentStatusApproved
	if order.PaymentCaptured() {
		t.Fatal("approved order without payment intent must not be captured")
	}

	order.PaymentIntentID = "pi_123"
	if !order.PaymentCaptured() {
		t.Fatal("approved order with payment intent must be captured")
	}
}

func TestCartLineValidateInvariants(t *testing.T) {
	line := domain.CartLine{OwnerID: "customer-1", ProductID: "product-1", Qty: 1}
	if errs := line.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}

	bad := domain.CartLine{}
	if errs := bad.ValidateInvariants(); len(errs) != 3 {
		t.Fatalf("expected 3 validation errors, got %v", errs)
	}
}
