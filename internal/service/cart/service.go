// Package cart реализует операции над корзиной покупателя поверх
// CartRepository: один и тот же сервис обслуживает эфемерный (session)
// и персистентный (customer) backend-ы.
package cart

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/pricing"
)

// Service выполняет операции корзины. Каждая мутация — собственный commit
// в репозитории; транзакции, охватывающей несколько операций, нет.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис корзины над выбранным backend-ом.
func NewService(carts domain.CartRepository, products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "cart")
	}
	return &Service{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// Get возвращает позиции владельца; пустой список, если корзина пуста.
func (s *Service) Get(ownerID string) ([]domain.CartLine, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerRequired
	}
	return s.carts.List(ownerID)
}

// AddOrIncrement добавляет delta единиц товара в корзину: существующая
// позиция увеличивается, отсутствующая создаётся с количеством delta.
func (s *Service) AddOrIncrement(ownerID, productID string, delta int32) (domain.CartLine, error) {
	if ownerID == "" {
		return domain.CartLine{}, domain.ErrOwnerRequired
	}
	if productID == "" {
		return domain.CartLine{}, domain.ErrProductRequired
	}
	if delta <= 0 {
		return domain.CartLine{}, domain.ErrQtyInvalid
	}

	now := time.Now().UTC()
	line, err := s.carts.FindByProduct(ownerID, productID)
	switch {
	case err == nil:
		line.Qty += delta
		line.UpdatedAt = now
		if err := s.carts.Update(line); err != nil {
			return domain.CartLine{}, err
		}
		return line, nil
	case domain.IsNotFound(err):
		line = domain.CartLine{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			ProductID: productID,
			Qty:       delta,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.carts.Create(line); err != nil {
			return domain.CartLine{}, err
		}
		return line, nil
	default:
		return domain.CartLine{}, err
	}
}

// Increment увеличивает количество позиции на единицу, но не выше остатка
// на складе: попытка шагнуть за остаток молча игнорируется. Это мягкий
// потолок, а не ошибка.
func (s *Service) Increment(ownerID, lineID string) error {
	line, err := s.loadOwned(ownerID, lineID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	product, err := s.products.Get(line.ProductID)
	if err != nil {
		if domain.IsNotFound(err) {
			s.logger.WithFields(log.Fields{
				"line_id":    lineID,
				"product_id": line.ProductID,
			}).Warn("increment skipped: product not found")
			return nil
		}
		return err
	}

	if line.Qty+1 > product.StockQty {
		s.logger.WithFields(log.Fields{
			"line_id":   lineID,
			"qty":       line.Qty,
			"stock_qty": product.StockQty,
		}).Debug("increment capped by stock")
		return nil
	}

	line.Qty++
	line.UpdatedAt = time.Now().UTC()
	return s.carts.Update(line)
}

// Decrement уменьшает количество позиции на единицу; позиция с нулевым
// остатком удаляется целиком.
func (s *Service) Decrement(ownerID, lineID string) error {
	line, err := s.loadOwned(ownerID, lineID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	line.Qty--
	if line.Qty <= 0 {
		return s.carts.Remove(line.ID)
	}

	line.UpdatedAt = time.Now().UTC()
	return s.carts.Update(line)
}

// Remove безусловно удаляет позицию; отсутствие позиции — no-op.
func (s *Service) Remove(ownerID, lineID string) error {
	line, err := s.loadOwned(ownerID, lineID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	return s.carts.Remove(line.ID)
}

// Clear удаляет все позиции владельца.
func (s *Service) Clear(ownerID string) error {
	if ownerID == "" {
		return domain.ErrOwnerRequired
	}
	return s.carts.Clear(ownerID)
}

// Summarize рассчитывает корзину: разрешает товары, заполняет snapshot-цены
// и считает итог. Строка с ненайденным товаром остаётся в выдаче с
// Resolved=false и не участвует в сумме.
func (s *Service) Summarize(ownerID string) (domain.PricedCart, error) {
	lines, err := s.Get(ownerID)
	if err != nil {
		return domain.PricedCart{}, err
	}

	cart := domain.PricedCart{OwnerID: ownerID, Lines: make([]domain.PricedLine, 0, len(lines))}
	for _, line := range lines {
		product, err := s.products.Get(line.ProductID)
		if err != nil {
			if !domain.IsNotFound(err) {
				return domain.PricedCart{}, err
			}
			s.logger.WithFields(log.Fields{
				"owner_id":   ownerID,
				"product_id": line.ProductID,
			}).Warn("cart line references missing product")
			cart.Lines = append(cart.Lines, domain.PricedLine{Line: line})
			continue
		}

		unit, err := pricing.EffectiveUnitPriceMinor(product)
		if err != nil {
			return domain.PricedCart{}, err
		}
		line.UnitPriceMinor = unit
		cart.Lines = append(cart.Lines, domain.PricedLine{
			Line:           line,
			ProductName:    product.Name,
			UnitPriceMinor: unit,
			Resolved:       true,
		})
	}

	cart.TotalMinor = pricing.CartTotalMinor(cart.Lines)
	return cart, nil
}

// loadOwned возвращает позицию, убеждаясь что она принадлежит владельцу.
// Чужая позиция неотличима от отсутствующей.
func (s *Service) loadOwned(ownerID, lineID string) (domain.CartLine, error) {
	if ownerID == "" {
		return domain.CartLine{}, domain.ErrOwnerRequired
	}
	line, err := s.carts.Get(lineID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if line.OwnerID != ownerID {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	return line, nil
}
