package gateway

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// RetryConfig конфигурация retry-политики для вызовов шлюза.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableGateway оборачивает PaymentGateway retry-логикой: временные
// ошибки (ErrGatewayTemporary) повторяются с экспоненциальной задержкой,
// отказ шлюза (decline) и прочие ошибки отдаются сразу.
type RetryableGateway struct {
	inner  domain.PaymentGateway
	config RetryConfig
	logger *log.Entry
}

// NewRetryableGateway создаёт шлюз с retry-логикой.
func NewRetryableGateway(inner domain.PaymentGateway, config RetryConfig, logger *log.Entry) *RetryableGateway {
	if logger == nil {
		logger = log.WithField("component", "retryable-gateway")
	}
	return &RetryableGateway{
		inner:  inner,
		config: config,
		logger: logger,
	}
}

// CreateSession создаёт checkout-сессию с повтором временных ошибок.
func (rg *RetryableGateway) CreateSession(req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	err := rg.executeWithRetry("CreateSession", func() error {
		var err error
		session, err = rg.inner.CreateSession(req)
		return err
	})
	return session, err
}

// GetSession возвращает состояние сессии с повтором временных ошибок.
func (rg *RetryableGateway) GetSession(sessionID string) (domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	err := rg.executeWithRetry("GetSession", func() error {
		var err error
		session, err = rg.inner.GetSession(sessionID)
		return err
	})
	return session, err
}

// CreateRefund инициирует возврат с повтором временных ошибок.
func (rg *RetryableGateway) CreateRefund(paymentIntentID, reason string) error {
	return rg.executeWithRetry("CreateRefund", func() error {
		return rg.inner.CreateRefund(paymentIntentID, reason)
	})
}

func (rg *RetryableGateway) executeWithRetry(operation string, fn func() error) error {
	var lastErr error
	delay := rg.config.InitialDelay

	for attempt := 1; attempt <= rg.config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				rg.logger.WithFields(log.Fields{
					"operation": operation,
					"attempt":   attempt,
				}).Info("Gateway call succeeded after retry")
			}
			return nil
		}

		lastErr = err

		if !domain.IsGatewayTemporary(err) {
			return err
		}

		if attempt < rg.config.MaxAttempts {
			rg.logger.WithFields(log.Fields{
				"operation": operation,
				"attempt":   attempt,
				"delay":     delay,
				"error":     err,
			}).Warn("Gateway call failed, retrying")

			time.Sleep(delay)

			delay = time.Duration(float64(delay) * rg.config.BackoffFactor)
			if delay > rg.config.MaxDelay {
				delay = rg.config.MaxDelay
			}
		}
	}

	rg.logger.WithFields(log.Fields{
		"operation":    operation,
		"max_attempts": rg.config.MaxAttempts,
		"error":        lastErr,
	}).Error("Gateway call failed after all retry attempts")

	return lastErr
}

var _ domain.PaymentGateway = (*RetryableGateway)(nil)
