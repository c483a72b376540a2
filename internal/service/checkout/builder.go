// Package checkout конструирует запросы на создание checkout-сессии
// платёжного шлюза. Пакет не вызывает шлюз сам: готовый запрос
// отправляет менеджер жизненного цикла заказа.
package checkout

import (
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// OrderIDPlaceholder заменяется идентификатором заказа в URL-шаблонах.
const OrderIDPlaceholder = "{order_id}"

// Builder собирает CheckoutRequest из расчётной корзины или из позиций
// уже созданного заказа.
type Builder struct {
	products   domain.ProductRepository
	successURL string
	cancelURL  string
}

// NewBuilder создаёт билдер с шаблонами callback-адресов. Шаблоны могут
// содержать плейсхолдер {order_id}.
func NewBuilder(products domain.ProductRepository, successURL, cancelURL string) *Builder {
	return &Builder{
		products:   products,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// FromPricedCart строит запрос по расчётной корзине. Строки с неразрешённым
// товаром пропускаются. Пустая корзина (или корзина без единой разрешённой
// строки) — ошибка.
func (b *Builder) FromPricedCart(cart domain.PricedCart, orderID string) (domain.CheckoutRequest, error) {
	items := make([]domain.CheckoutLineItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if !line.Resolved {
			continue
		}
		items = append(items, domain.CheckoutLineItem{
			ProductName:     line.ProductName,
			UnitAmountMinor: line.UnitPriceMinor,
			Currency:        domain.CheckoutCurrency,
			Qty:             line.Line.Qty,
		})
	}
	return b.build(items, orderID)
}

// FromOrder строит запрос по сохранённым позициям заказа; используется при
// повторной оплате. Имя товара подтягивается из каталога, для исчезнувшего
// товара позиция пропускается.
func (b *Builder) FromOrder(order domain.Order) (domain.CheckoutRequest, error) {
	items := make([]domain.CheckoutLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := b.products.Get(item.ProductID)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return domain.CheckoutRequest{}, err
		}
		items = append(items, domain.CheckoutLineItem{
			ProductName:     product.Name,
			UnitAmountMinor: item.PriceMinor,
			Currency:        domain.CheckoutCurrency,
			Qty:             item.Qty,
		})
	}
	return b.build(items, order.ID)
}

func (b *Builder) build(items []domain.CheckoutLineItem, orderID string) (domain.CheckoutRequest, error) {
	if len(items) == 0 {
		return domain.CheckoutRequest{}, domain.ErrItemsRequired
	}
	return domain.CheckoutRequest{
		LineItems:  items,
		SuccessURL: expandOrderID(b.successURL, orderID),
		CancelURL:  expandOrderID(b.cancelURL, orderID),
		Mode:       domain.CheckoutModePayment,
	}, nil
}

func expandOrderID(template, orderID string) string {
	return strings.ReplaceAll(template, OrderIDPlaceholder, orderID)
}
