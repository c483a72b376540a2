package domain

import "time"

// OrderStatus описывает стадию исполнения заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusApproved — заказ одобрен к исполнению (оплачен либо отсрочен по инвойсу).
	OrderStatusApproved OrderStatus = "approved"
	// OrderStatusInProcess — заказ взят в работу сотрудником.
	OrderStatusInProcess OrderStatus = "in_process"
	// OrderStatusShipped — заказ отгружен; терминальный статус исполнения.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusCancelled — заказ отменён до отгрузки.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus описывает состояние оплаты заказа; ось независима от OrderStatus.
type PaymentStatus string

const (
	// PaymentStatusPending — оплата инициирована, подтверждение от шлюза не получено.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusDelayed — отсроченная оплата по инвойсу для бизнес-аккаунтов.
	PaymentStatusDelayed PaymentStatus = "delayed_payment"
	// PaymentStatusApproved — оплата подтверждена шлюзом либо предоставлена отсрочка.
	PaymentStatusApproved PaymentStatus = "approved"
	// PaymentStatusCancelled — заказ отменён до захвата средств.
	PaymentStatusCancelled PaymentStatus = "cancelled"
	// PaymentStatusRefunded — средства возвращены клиенту.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Таблицы допустимых переходов. Любой переход вне таблицы отклоняется
// с ErrInvalidTransition, сравнение статусов по месту вызова запрещено.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusApproved, OrderStatusInProcess, OrderStatusCancelled},
	OrderStatusApproved:  {OrderStatusInProcess, OrderStatusCancelled},
	OrderStatusInProcess: {OrderStatusShipped, OrderStatusCancelled},
}

// Из approved оплата уходит в refunded при захваченном платеже и в
// cancelled при отсрочке, подтверждённой без захвата средств; различие
// обеспечивает Cancel по наличию payment intent.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusApproved, PaymentStatusCancelled},
	PaymentStatusDelayed:  {PaymentStatusApproved, PaymentStatusCancelled},
	PaymentStatusApproved: {PaymentStatusRefunded, PaymentStatusCancelled},
}

// CanTransitionTo сообщает, допустим ли переход в next. Переход в тот же
// статус считается допустимым no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanTransitionTo сообщает, допустим ли переход оплаты в next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress — адрес доставки, снятый с формы оформления заказа.
type ShippingAddress struct {
	Name       string
	Phone      string
	Street     string
	City       string
	State      string
	PostalCode string
}

// OrderItem представляет одну позицию заказа. После размещения заказа
// позиции неизменяемы: это исторический срез того, что было оплачено.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Qty       int32
	// PriceMinor — эффективная цена за единицу на момент размещения.
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует заголовок заказа, позиции и платёжные атрибуты.
type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	Payment    PaymentStatus
	Currency   string
	// AmountMinor — итог заказа; всегда равен сумме Qty*PriceMinor по позициям.
	AmountMinor int64
	Items       []OrderItem
	Shipping    ShippingAddress

	// SessionID — идентификатор checkout-сессии платёжного шлюза.
	SessionID string
	// PaymentIntentID заполняется только после подтверждения оплаты шлюзом.
	PaymentIntentID string

	OrderDate   time.Time
	PaymentDate time.Time
	// ShippingDate и атрибуты перевозчика проставляются при отгрузке.
	ShippingDate   time.Time
	TrackingNumber string
	Carrier        string
	// PaymentDueDate заполняется только для отсроченной оплаты:
	// срок наступает через 30 дней после отгрузки.
	PaymentDueDate time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем итог заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// PaymentCaptured сообщает, были ли реально захвачены средства через шлюз.
func (o *Order) PaymentCaptured() bool {
	return o.Payment == PaymentStatusApproved && o.PaymentIntentID != ""
}
