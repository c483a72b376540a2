// Package gateway содержит реализации PaymentGateway: конфигурируемую
// заглушку и retry-декоратор над произвольным шлюзом.
package gateway

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// MockGateway — конфигурируемая заглушка PaymentGateway для тестов и
// локального запуска без внешнего провайдера.
type MockGateway struct {
	mu sync.Mutex

	CreateErr error
	GetErr    error
	RefundErr error

	// SessionPaid управляет статусом, который GetSession вернёт для
	// известных сессий; по умолчанию сессия считается оплаченной.
	SessionPaid bool

	CreateCalls int
	GetCalls    int
	RefundCalls int

	sessions map[string]domain.CheckoutSession
	refunds  []string
}

// NewMockGateway возвращает заглушку с успешным сценарием по умолчанию.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		SessionPaid: true,
		sessions:    make(map[string]domain.CheckoutSession),
	}
}

// CreateSession создаёт сессию с синтетическим идентификатором и считает вызовы.
func (m *MockGateway) CreateSession(req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return domain.CheckoutSession{}, m.CreateErr
	}

	session := domain.CheckoutSession{
		ID:          "cs_" + uuid.NewString(),
		RedirectURL: "https://gateway.test/pay/" + uuid.NewString(),
	}
	m.sessions[session.ID] = session
	return session, nil
}

// GetSession возвращает сессию; для известной сессии статус оплаты
// определяется полем SessionPaid.
func (m *MockGateway) GetSession(sessionID string) (domain.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetErr != nil {
		return domain.CheckoutSession{}, m.GetErr
	}

	session, ok := m.sessions[sessionID]
	if !ok {
		session = domain.CheckoutSession{ID: sessionID}
	}
	if m.SessionPaid {
		session.PaymentStatus = domain.SessionPaymentPaid
		session.PaymentIntentID = "pi_" + sessionID
	} else {
		session.PaymentStatus = "unpaid"
	}
	return session, nil
}

// CreateRefund регистрирует возврат и считает вызовы.
func (m *MockGateway) CreateRefund(paymentIntentID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RefundCalls++
	if m.RefundErr != nil {
		return m.RefundErr
	}
	m.refunds = append(m.refunds, paymentIntentID)
	return nil
}

// Refunds возвращает payment intent-ы, по которым был запрошен возврат.
func (m *MockGateway) Refunds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.refunds))
	copy(out, m.refunds)
	return out
}

var _ domain.PaymentGateway = (*MockGateway)(nil)
