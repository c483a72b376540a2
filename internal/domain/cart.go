package domain

import "time"

// CartLine — одна позиция корзины. Идентичность позиции — пара
// (OwnerID, ProductID): на владельца и товар существует не более одной строки.
type CartLine struct {
	ID string
	// OwnerID — идентификатор владельца: session ID для анонимной корзины,
	// customer ID для персистентной.
	OwnerID   string
	ProductID string
	// Qty — количество единиц; существующая строка всегда имеет Qty >= 1.
	Qty int32
	// UnitPriceMinor — snapshot эффективной цены за единицу; заполняется
	// на этапе расчёта корзины, до этого равен нулю.
	UnitPriceMinor int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateInvariants проверяет базовые инварианты позиции корзины.
func (l *CartLine) ValidateInvariants() []error {
	var errs []error

	if l.OwnerID == "" {
		errs = append(errs, ErrOwnerRequired)
	}
	if l.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if l.Qty <= 0 {
		errs = append(errs, ErrQtyInvalid)
	}

	return errs
}

// PricedLine — позиция корзины с разрешённым товаром и snapshot-ценой.
// Resolved=false означает, что товар не удалось найти: такая строка
// показывается, но не участвует в сумме и не попадает в checkout.
type PricedLine struct {
	Line           CartLine
	ProductName    string
	UnitPriceMinor int64
	Resolved       bool
}

// TotalMinor возвращает стоимость позиции с учётом количества.
func (p PricedLine) TotalMinor() int64 {
	if !p.Resolved {
		return 0
	}
	return p.UnitPriceMinor * int64(p.Line.Qty)
}

// PricedCart — рассчитанная корзина: строки со snapshot-ценами и итог.
type PricedCart struct {
	OwnerID    string
	Lines      []PricedLine
	TotalMinor int64
}
