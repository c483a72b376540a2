package domain

import "time"

// Product — товар каталога. Ядро корзины и заказов ссылается на него,
// но не владеет CRUD-операциями каталога.
type Product struct {
	ID string
	// Name — отображаемое имя товара; попадает в line item checkout-сессии.
	Name string
	// PriceMinor — прейскурантная цена за единицу в минимальных денежных единицах.
	PriceMinor int64
	// DiscountMinor — скидка за единицу в минимальных денежных единицах.
	DiscountMinor int64
	// StockQty — остаток на складе; никогда не уходит в минус.
	StockQty  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты товара.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if p.PriceMinor < 0 || p.DiscountMinor < 0 {
		errs = append(errs, ErrItemPriceInvalid)
	}
	if p.DiscountMinor > p.PriceMinor {
		errs = append(errs, ErrNegativeEffectivePrice)
	}

	return errs
}
