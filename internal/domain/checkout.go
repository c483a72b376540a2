package domain

// Константы протокола платёжного шлюза.
const (
	// CheckoutCurrency — валюта всех checkout-сессий; магазин торгует в одной валюте.
	CheckoutCurrency = "usd"
	// CheckoutModePayment — единственный поддерживаемый режим: разовый платёж.
	CheckoutModePayment = "payment"
	// SessionPaymentPaid — значение статуса оплаченной сессии в ответе шлюза.
	SessionPaymentPaid = "paid"
)

// CheckoutLineItem — одна строка checkout-запроса к шлюзу.
type CheckoutLineItem struct {
	ProductName string
	// UnitAmountMinor — цена за единицу в минимальных денежных единицах валюты.
	UnitAmountMinor int64
	Currency        string
	Qty             int32
}

// CheckoutRequest — запрос на создание checkout-сессии. Билдер только
// конструирует запрос; обращение к шлюзу выполняет lifecycle-менеджер.
type CheckoutRequest struct {
	LineItems  []CheckoutLineItem
	SuccessURL string
	CancelURL  string
	Mode       string
}

// CheckoutSession — представление сессии на стороне шлюза.
type CheckoutSession struct {
	ID string
	// PaymentIntentID появляется после фактической оплаты сессии.
	PaymentIntentID string
	// RedirectURL — адрес страницы оплаты, на которую уводится покупатель.
	RedirectURL string
	// PaymentStatus — статус оплаты в терминах шлюза ("paid"/"unpaid").
	PaymentStatus string
}

// Paid сообщает, что шлюз считает сессию оплаченной.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == SessionPaymentPaid
}
