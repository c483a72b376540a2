// Package order реализует машину состояний заказа: размещение,
// подтверждение оплаты, обработку, отгрузку, отмену и возврат.
package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
)

// PaymentDueTerm — срок оплаты по счёту для заказов с отложенной оплатой,
// отсчитывается от даты отгрузки.
const PaymentDueTerm = 30 * 24 * time.Hour

// PlaceInput — всё, что нужно для размещения заказа.
type PlaceInput struct {
	Customer domain.Customer
	Cart     domain.PricedCart
	Shipping domain.ShippingAddress
}

// PlaceResult — созданный заказ и, для немедленной оплаты, адрес страницы
// оплаты, на которую уводится покупатель.
type PlaceResult struct {
	Order       domain.Order
	RedirectURL string
}

// Manager управляет жизненным циклом заказа. Каждый переход — собственная
// единица работы: заказ сохраняется через version-checked Save с retry при
// конфликте версий.
type Manager struct {
	orders   domain.OrderRepository
	carts    domain.CartRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	gateway  domain.PaymentGateway
	builder  *checkout.Builder
	stock    *stock.Adjuster
	logger   *log.Entry
	metrics  *metrics.LifecycleMetrics
}

// NewManager создаёт менеджер жизненного цикла заказа.
func NewManager(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	gateway domain.PaymentGateway,
	builder *checkout.Builder,
	stockAdjuster *stock.Adjuster,
	logger *log.Entry,
) *Manager {
	if logger == nil {
		logger = log.WithField("component", "order-lifecycle")
	}
	return &Manager{
		orders:   orders,
		carts:    carts,
		outbox:   outbox,
		timeline: timeline,
		gateway:  gateway,
		builder:  builder,
		stock:    stockAdjuster,
		logger:   logger,
		metrics:  metrics.NewLifecycleMetrics(),
	}
}

// NewManagerWithoutMetrics создаёт менеджер без метрик (для тестов).
func NewManagerWithoutMetrics(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	gateway domain.PaymentGateway,
	builder *checkout.Builder,
	stockAdjuster *stock.Adjuster,
	logger *log.Entry,
) *Manager {
	m := NewManager(orders, carts, outbox, timeline, gateway, builder, stockAdjuster, logger)
	m.metrics = nil
	return m
}

// Get возвращает заказ по идентификатору.
func (m *Manager) Get(orderID string) (domain.Order, error) {
	return m.orders.Get(orderID)
}

// ListByCustomer возвращает последние заказы покупателя.
func (m *Manager) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	return m.orders.ListByCustomer(customerID, limit)
}

// Timeline возвращает историю событий заказа.
func (m *Manager) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	return m.timeline.List(orderID)
}

// Place размещает заказ из расчётной корзины.
//
// Покупатель без бизнес-аккаунта получает пару статусов (pending, pending),
// checkout-сессию шлюза и redirect URL; остаток уменьшается сразу.
// Покупатель с бизнес-аккаунтом получает (approved, delayed_payment) без
// обращения к шлюзу: заказ исполняется по счёту. В обоих случаях
// персистентная корзина очищается.
func (m *Manager) Place(input PlaceInput) (PlaceResult, error) {
	start := time.Now()
	defer func() {
		if m.metrics != nil {
			m.metrics.RecordPlacementDuration(time.Since(start))
		}
	}()

	if input.Customer.ID == "" {
		return PlaceResult{}, domain.ErrCustomerRequired
	}

	now := time.Now().UTC()
	orderID := uuid.NewString()

	items := make([]domain.OrderItem, 0, len(input.Cart.Lines))
	var amountMinor int64
	for _, line := range input.Cart.Lines {
		if !line.Resolved {
			continue
		}
		items = append(items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			ProductID:  line.Line.ProductID,
			Qty:        line.Line.Qty,
			PriceMinor: line.UnitPriceMinor,
			CreatedAt:  now,
		})
		amountMinor += line.TotalMinor()
	}
	if len(items) == 0 {
		return PlaceResult{}, domain.ErrItemsRequired
	}

	order := domain.Order{
		ID:          orderID,
		CustomerID:  input.Customer.ID,
		Currency:    domain.CheckoutCurrency,
		AmountMinor: amountMinor,
		Items:       items,
		Shipping:    input.Shipping,
		OrderDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var redirectURL string
	if input.Customer.IsBusinessAccount() {
		order.Status = domain.OrderStatusApproved
		order.Payment = domain.PaymentStatusDelayed
	} else {
		order.Status = domain.OrderStatusPending
		order.Payment = domain.PaymentStatusPending

		req, err := m.builder.FromPricedCart(input.Cart, orderID)
		if err != nil {
			return PlaceResult{}, err
		}
		session, err := m.gateway.CreateSession(req)
		if m.metrics != nil {
			m.metrics.RecordGatewayCall("CreateSession", err)
		}
		if err != nil {
			return PlaceResult{}, fmt.Errorf("create checkout session: %w", err)
		}
		order.SessionID = session.ID
		redirectURL = session.RedirectURL
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return PlaceResult{}, errors.Join(errs...)
	}
	if err := m.orders.Create(order); err != nil {
		return PlaceResult{}, err
	}

	// Немедленная оплата резервирует остаток при размещении; отложенная —
	// при подтверждении.
	if !input.Customer.IsBusinessAccount() {
		if err := m.stock.ReduceForItems(order.Items); err != nil {
			m.logger.WithError(err).WithField("order_id", order.ID).Warn("stock reduce after placement failed")
		}
	}

	if err := m.carts.Clear(input.Customer.ID); err != nil {
		m.logger.WithError(err).WithField("customer_id", input.Customer.ID).Warn("cart clear after placement failed")
	}

	m.emitEvent(&order, kafka.EventTypeOrderPlaced, map[string]interface{}{
		"amount_minor": order.AmountMinor,
		"payment":      string(order.Payment),
	})
	if m.metrics != nil {
		m.metrics.RecordOrderPlaced()
	}

	m.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"customer_id":  order.CustomerID,
		"status":       order.Status,
		"payment":      order.Payment,
		"amount_minor": order.AmountMinor,
	}).Info("order placed")

	return PlaceResult{Order: order, RedirectURL: redirectURL}, nil
}

// ConfirmPayment подтверждает оплату заказа. Вызов идемпотентен и безопасен
// для поллинга: неоплаченная сессия не меняет состояние.
//
// Для заказа с сохранённой сессией состояние запрашивается у шлюза; по
// статусу "paid" записываются payment intent и дата оплаты. Для заказа с
// отложенной оплатой без сессии подтверждение означает административное
// одобрение счёта; остаток уменьшается в этот момент.
func (m *Manager) ConfirmPayment(orderID string) (domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Payment == domain.PaymentStatusApproved {
		m.logger.WithField("order_id", order.ID).Debug("payment already confirmed")
		return order, nil
	}

	deferred := order.SessionID == ""
	if deferred && order.Payment != domain.PaymentStatusDelayed {
		return domain.Order{}, domain.ErrSessionMissing
	}

	paymentIntentID := ""
	if !deferred {
		session, err := m.gateway.GetSession(order.SessionID)
		if m.metrics != nil {
			m.metrics.RecordGatewayCall("GetSession", err)
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("get checkout session: %w", err)
		}
		if !session.Paid() {
			m.logger.WithFields(log.Fields{
				"order_id":       order.ID,
				"payment_status": session.PaymentStatus,
			}).Debug("session not paid yet, no state change")
			return order, nil
		}
		paymentIntentID = session.PaymentIntentID
	}

	wasDelayed := order.Payment == domain.PaymentStatusDelayed

	err = m.saveWithRetry(&order, func(o *domain.Order) error {
		if !o.Payment.CanTransitionTo(domain.PaymentStatusApproved) {
			return domain.ErrInvalidTransition
		}
		o.Payment = domain.PaymentStatusApproved
		o.PaymentIntentID = paymentIntentID
		o.PaymentDate = time.Now().UTC()
		if wasDelayed && o.Status != domain.OrderStatusApproved {
			if !o.Status.CanTransitionTo(domain.OrderStatusApproved) {
				return domain.ErrInvalidTransition
			}
			o.Status = domain.OrderStatusApproved
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if deferred {
		if err := m.stock.ReduceForItems(order.Items); err != nil {
			m.logger.WithError(err).WithField("order_id", order.ID).Warn("stock reduce after confirmation failed")
		}
	}

	m.emitEvent(&order, kafka.EventTypeOrderPaymentConfirmed, map[string]interface{}{
		"payment_intent_id": order.PaymentIntentID,
		"deferred":          deferred,
	})
	if m.metrics != nil {
		m.metrics.RecordPaymentConfirmed()
	}

	m.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"deferred": deferred,
	}).Info("payment confirmed")

	return order, nil
}

// StartProcessing переводит заказ в обработку. Предусловия по оплате нет:
// заказ по счёту комплектуется до поступления денег.
func (m *Manager) StartProcessing(orderID string) (domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	err = m.saveWithRetry(&order, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(domain.OrderStatusInProcess) {
			return domain.ErrInvalidTransition
		}
		o.Status = domain.OrderStatusInProcess
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	m.emitEvent(&order, kafka.EventTypeOrderProcessing, nil)

	m.logger.WithField("order_id", order.ID).Info("order processing started")
	return order, nil
}

// Ship отгружает заказ: статус shipped, дата отгрузки и трекинг. Для
// отложенной оплаты фиксируется срок оплаты счёта от даты отгрузки.
func (m *Manager) Ship(orderID, trackingNumber, carrier string) (domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	err = m.saveWithRetry(&order, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(domain.OrderStatusShipped) {
			return domain.ErrInvalidTransition
		}
		now := time.Now().UTC()
		o.Status = domain.OrderStatusShipped
		o.ShippingDate = now
		o.TrackingNumber = trackingNumber
		o.Carrier = carrier
		if o.Payment == domain.PaymentStatusDelayed {
			o.PaymentDueDate = now.Add(PaymentDueTerm)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	m.emitEvent(&order, kafka.EventTypeOrderShipped, map[string]interface{}{
		"tracking_number": trackingNumber,
		"carrier":         carrier,
	})
	if m.metrics != nil {
		m.metrics.RecordOrderShipped()
	}

	m.logger.WithFields(log.Fields{
		"order_id":        order.ID,
		"tracking_number": trackingNumber,
		"carrier":         carrier,
	}).Info("order shipped")

	return order, nil
}

// Cancel отменяет неотгруженный заказ. Захваченный платёж (approved с
// payment intent) возвращается через шлюз ровно одним вызовом, статус
// оплаты становится refunded; иначе оплата отменяется без обращения к шлюзу.
func (m *Manager) Cancel(orderID, reason string) (domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Status == domain.OrderStatusCancelled {
		m.logger.WithField("order_id", order.ID).Debug("order already cancelled")
		return order, nil
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	refunded := false
	if order.PaymentCaptured() {
		err := m.gateway.CreateRefund(order.PaymentIntentID, reason)
		if m.metrics != nil {
			m.metrics.RecordGatewayCall("CreateRefund", err)
		}
		if err != nil {
			return domain.Order{}, fmt.Errorf("create refund: %w", err)
		}
		refunded = true
	}

	err = m.saveWithRetry(&order, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(domain.OrderStatusCancelled) {
			return domain.ErrInvalidTransition
		}
		o.Status = domain.OrderStatusCancelled
		if refunded {
			o.Payment = domain.PaymentStatusRefunded
		} else if o.Payment.CanTransitionTo(domain.PaymentStatusCancelled) {
			o.Payment = domain.PaymentStatusCancelled
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	eventType := kafka.EventTypeOrderCancelled
	if refunded {
		eventType = kafka.EventTypeOrderRefunded
	}
	metadata := map[string]interface{}{
		"refunded": refunded,
	}
	if reason != "" {
		metadata["reason"] = reason
	}
	m.emitEvent(&order, eventType, metadata)

	if m.metrics != nil {
		m.metrics.RecordOrderCancelled()
		if refunded {
			m.metrics.RecordOrderRefunded()
		}
	}

	m.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"reason":   reason,
		"refunded": refunded,
	}).Info("order cancelled")

	return order, nil
}

// saveWithRetry применяет мутацию и сохраняет заказ, повторяя попытку с
// exponential backoff при конфликте версий. При конфликте заказ
// перечитывается и мутация применяется заново к свежему состоянию.
func (m *Manager) saveWithRetry(order *domain.Order, mutate func(*domain.Order) error) error {
	const maxRetries = 3
	const baseDelay = 10 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := mutate(order); err != nil {
			return err
		}
		order.UpdatedAt = time.Now().UTC()
		prevVersion := order.Version

		if err := m.orders.Save(*order); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxRetries-1 {
				m.logger.WithFields(log.Fields{
					"order_id": order.ID,
					"attempt":  attempt + 1,
					"version":  order.Version,
				}).Warn("version conflict detected, retrying")

				fresh, loadErr := m.orders.Get(order.ID)
				if loadErr != nil {
					m.logger.WithError(loadErr).WithField("order_id", order.ID).Error("failed to reload order after conflict")
					return loadErr
				}
				*order = fresh

				delay := baseDelay * time.Duration(1<<uint(attempt))
				time.Sleep(delay)
				continue
			}

			m.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"attempt":  attempt + 1,
			}).Error("failed to persist order")
			return err
		}

		order.Version = prevVersion + 1
		return nil
	}

	return domain.ErrOrderVersionConflict
}

// emitEvent записывает событие в timeline и в transactional outbox.
// Payload outbox-сообщения — kafka.OrderEvent со снимком статуса заказа
// и опциональными метаданными операции. Сбой записи логируется, но не
// откатывает переход состояния.
func (m *Manager) emitEvent(order *domain.Order, eventType kafka.EventType, metadata map[string]interface{}) {
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)

	data, err := json.Marshal(event)
	if err != nil {
		m.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       data,
	}
	if _, err := m.outbox.Enqueue(msg); err != nil {
		m.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else if m.metrics != nil {
		m.metrics.RecordOutboxEvent()
	}

	if m.timeline == nil {
		return
	}
	var reason string
	if r, ok := metadata["reason"].(string); ok {
		reason = r
	}
	timelineEvent := domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     string(eventType),
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := m.timeline.Append(timelineEvent); err != nil {
		m.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	} else if m.metrics != nil {
		m.metrics.RecordTimelineEvent()
	}
}
