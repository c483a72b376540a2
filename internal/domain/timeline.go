package domain

import "time"

// TimelineEvent описывает событие в жизненном цикле заказа:
// смену статуса, подтверждение оплаты, отгрузку, отмену или возврат.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
