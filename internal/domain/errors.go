package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора владельца корзины.
	ErrOwnerRequired = errors.New("owner_id is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка при некорректном количестве (<= 0).
	ErrQtyInvalid = errors.New("qty must be greater than zero")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")

	// ErrNegativeEffectivePrice сигнализирует о скидке больше цены: это ошибка данных каталога.
	ErrNegativeEffectivePrice = errors.New("discount exceeds product price")

	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartLineNotFound возвращается, если позиция корзины не найдена.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrOrderVersionConflict = errors.New("order version conflict")

	// ErrInvalidTransition возвращается при переходе, которого нет в таблице переходов.
	ErrInvalidTransition = errors.New("status transition is not allowed")
	// ErrSessionMissing — у заказа нет checkout-сессии платёжного шлюза.
	ErrSessionMissing = errors.New("order has no gateway session")
	// ErrPaymentIntentMissing — у заказа нет зафиксированного payment intent.
	ErrPaymentIntentMissing = errors.New("order has no payment intent")

	// ErrGatewayTemporary — временная ошибка платёжного шлюза, попытку можно повторить.
	ErrGatewayTemporary = errors.New("payment gateway temporary error")
	// ErrGatewayUnavailable — шлюз недоступен либо вернул неустранимую ошибку.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayDeclined — шлюз отклонил операцию (бизнес-ошибка, retry бессмысленен).
	ErrGatewayDeclined = errors.New("payment gateway declined operation")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsGatewayTemporary проверяет, стоит ли повторить обращение к шлюзу.
func IsGatewayTemporary(err error) bool {
	return errors.Is(err, ErrGatewayTemporary)
}

// IsNotFound объединяет not-found ошибки всех агрегатов: пути чтения и merge
// обрабатывают их мягко, без прерывания операции.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCartLineNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
