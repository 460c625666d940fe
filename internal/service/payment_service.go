package service

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRequest is what checkout asks a gateway to authorize
type PaymentRequest struct {
	OrderID string
	Amount  int64
	Method  models.PaymentMethod
}

// PaymentResult is a successful authorization
type PaymentResult struct {
	TransactionID string
	AuthorizedAt  time.Time
}

// Gateway authorizes payments. Checkout does not care whether it is real.
type Gateway interface {
	Authorize(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// MockGateway waits a fixed delay and approves every request (mocked Midtrans)
type MockGateway struct {
	delay  time.Duration
	sleep  func(time.Duration)
	logger *zap.Logger
}

// NewMockGateway creates a gateway that takes delay to approve
func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{
		delay:  delay,
		sleep:  time.Sleep,
		logger: util.Named("payment"),
	}
}

// Authorize blocks for the configured delay. The wait ignores ctx: a payment
// that has started cannot be aborted.
func (g *MockGateway) Authorize(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	_, span := util.StartSpan(ctx, "MockGateway.Authorize")
	defer span.End()

	util.PaymentAttemptsTotal.WithLabelValues(string(req.Method)).Inc()
	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	g.logger.Info("Processing payment",
		zap.String("order_id", req.OrderID),
		zap.Int64("amount", req.Amount),
		zap.String("method", string(req.Method)))

	g.sleep(g.delay)

	txID := fmt.Sprintf("TXN-%s", uuid.New().String()[:8])
	g.logger.Info("Payment succeeded",
		zap.String("order_id", req.OrderID),
		zap.String("tx_id", txID))

	return PaymentResult{TransactionID: txID, AuthorizedAt: time.Now()}, nil
}
