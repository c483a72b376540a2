package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/gateway"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
)

// Services содержит собранный сервисный слой приложения.
type Services struct {
	Carts        *cart.Service
	SessionCarts *cart.Service
	Consolidator *cart.Consolidator
	Lifecycle    *order.Manager
	Gateway      domain.PaymentGateway
}

// newServices собирает сервисный слой поверх репозиториев.
// NOTE: платёжный шлюз пока mock, в production его заменяет реальный клиент.
func newServices(deps *runtimeDependencies, cfg Config, logger *log.Entry) *Services {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	paymentGateway := gateway.NewRetryableGateway(
		gateway.NewMockGateway(),
		gateway.DefaultRetryConfig(),
		logger.WithField("component", "payment-gateway"),
	)

	builder := checkout.NewBuilder(deps.products, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	stockAdjuster := stock.NewAdjuster(deps.products, logger.WithField("component", "stock"))

	lifecycle := order.NewManager(
		deps.orders,
		deps.carts,
		deps.outboxRepo,
		deps.timelineRepo,
		paymentGateway,
		builder,
		stockAdjuster,
		logger.WithField("component", "order-lifecycle"),
	)

	return &Services{
		Carts:        cart.NewService(deps.carts, deps.products, logger.WithField("component", "cart")),
		SessionCarts: cart.NewService(deps.sessionCarts, deps.products, logger.WithField("component", "session-cart")),
		Consolidator: cart.NewConsolidator(deps.sessionCarts, deps.carts, logger.WithField("component", "cart-consolidator")),
		Lifecycle:    lifecycle,
		Gateway:      paymentGateway,
	}
}
