// Package stock корректирует складские остатки после подтверждения заказа.
package stock

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Adjuster уменьшает остатки товаров по позициям заказа. Операция
// fire-and-forget по отношению к машине состояний заказа: исчезнувший
// товар пропускается, остаток не уходит ниже нуля.
type Adjuster struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewAdjuster создаёт adjuster над каталогом товаров.
func NewAdjuster(products domain.ProductRepository, logger *log.Entry) *Adjuster {
	if logger == nil {
		logger = log.WithField("component", "stock-adjuster")
	}
	return &Adjuster{
		products: products,
		logger:   logger,
	}
}

// Reduce уменьшает остаток одного товара на qty с клампом в ноль.
func (a *Adjuster) Reduce(productID string, qty int32) error {
	product, err := a.products.Get(productID)
	if err != nil {
		if domain.IsNotFound(err) {
			a.logger.WithField("product_id", productID).Warn("stock reduce skipped: product not found")
			return nil
		}
		return err
	}

	product.StockQty -= qty
	if product.StockQty < 0 {
		a.logger.WithFields(log.Fields{
			"product_id": productID,
			"requested":  qty,
		}).Warn("stock went negative, clamping to zero")
		product.StockQty = 0
	}
	product.UpdatedAt = time.Now().UTC()
	return a.products.Update(product)
}

// ReduceForItems уменьшает остатки по всем позициям заказа.
func (a *Adjuster) ReduceForItems(items []domain.OrderItem) error {
	for _, item := range items {
		if err := a.Reduce(item.ProductID, item.Qty); err != nil {
			return err
		}
	}
	return nil
}
