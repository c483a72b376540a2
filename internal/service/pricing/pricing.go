// Package pricing содержит чистые функции расчёта цен корзины и заказа.
// Все суммы — в минимальных денежных единицах, без I/O и состояния.
package pricing

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// EffectiveUnitPriceMinor возвращает эффективную цену за единицу:
// прейскурантная цена минус скидка. Отрицательный результат — ошибка данных
// каталога; она возвращается наружу, а не молча обрезается до нуля.
func EffectiveUnitPriceMinor(p domain.Product) (int64, error) {
	price := p.PriceMinor - p.DiscountMinor
	if price < 0 {
		return 0, domain.ErrNegativeEffectivePrice
	}
	return price, nil
}

// LineTotalMinor возвращает стоимость позиции: цена за единицу на количество.
func LineTotalMinor(unitMinor int64, qty int32) int64 {
	return unitMinor * int64(qty)
}

// CartTotalMinor суммирует стоимость разрешённых строк корзины.
// Строки с неразрешённым товаром пропускаются: при отображении корзины
// доступность важнее строгой полноты.
func CartTotalMinor(lines []domain.PricedLine) int64 {
	var total int64
	for _, line := range lines {
		if !line.Resolved {
			continue
		}
		total += line.TotalMinor()
	}
	return total
}
