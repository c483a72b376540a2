package cart

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Consolidator переносит анонимную корзину в персистентную при аутентификации.
type Consolidator struct {
	ephemeral  domain.CartRepository
	persistent domain.CartRepository
	logger     *log.Entry
}

// NewConsolidator создаёт consolidator над парой backend-ов.
func NewConsolidator(ephemeral, persistent domain.CartRepository, logger *log.Entry) *Consolidator {
	if logger == nil {
		logger = log.WithField("component", "cart-consolidator")
	}
	return &Consolidator{
		ephemeral:  ephemeral,
		persistent: persistent,
		logger:     logger,
	}
}

// Consolidate выполняет left-biased merge: количества из анонимной корзины
// прибавляются к существующим персистентным позициям, оставшиеся анонимные
// позиции переезжают к владельцу, после чего анонимная корзина очищается
// безусловно.
//
// Контракт: ровно один вызов на событие логина. Повторный вызов с уже
// пустой анонимной корзиной — no-op; повторный вызов с заново наполненной
// анонимной корзиной прибавит её количества ещё раз.
func (c *Consolidator) Consolidate(sessionID, customerID string) error {
	if sessionID == "" || customerID == "" {
		return domain.ErrOwnerRequired
	}

	ephemeralLines, err := c.ephemeral.List(sessionID)
	if err != nil {
		return err
	}
	persistentLines, err := c.persistent.List(customerID)
	if err != nil {
		return err
	}

	// Индекс анонимных позиций по товару; из него вычёркиваются слитые строки.
	remaining := make(map[string]domain.CartLine, len(ephemeralLines))
	for _, line := range ephemeralLines {
		remaining[line.ProductID] = line
	}

	now := time.Now().UTC()
	merged := 0
	for _, line := range persistentLines {
		guest, ok := remaining[line.ProductID]
		if !ok {
			continue
		}
		line.Qty += guest.Qty
		line.UpdatedAt = now
		if err := c.persistent.Update(line); err != nil {
			return err
		}
		delete(remaining, line.ProductID)
		merged++
	}

	moved := 0
	for _, line := range ephemeralLines {
		guest, ok := remaining[line.ProductID]
		if !ok {
			continue
		}
		if err := c.persistent.Create(domain.CartLine{
			ID:        uuid.NewString(),
			OwnerID:   customerID,
			ProductID: guest.ProductID,
			Qty:       guest.Qty,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		moved++
	}

	if err := c.ephemeral.Clear(sessionID); err != nil {
		return err
	}

	c.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"merged":      merged,
		"moved":       moved,
	}).Info("anonymous cart consolidated")

	return nil
}
