package domain

// Customer — владелец персистентной корзины и заказов. Хранение и
// аутентификация клиентов живут вне ядра; сюда передаётся уже
// разрешённая identity.
type Customer struct {
	ID    string
	Name  string
	Email string
	// CompanyID непустой для бизнес-аккаунтов: такие заказы исполняются
	// по инвойсу с отсроченной оплатой.
	CompanyID string
}

// IsBusinessAccount сообщает, оформляется ли заказ на условиях отсрочки.
func (c Customer) IsBusinessAccount() bool {
	return c.CompanyID != ""
}
