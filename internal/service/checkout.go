package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutState is the position of the payment flow
type CheckoutState string

const (
	StateIdle       CheckoutState = "idle"
	StateProcessing CheckoutState = "processing"
	StateComplete   CheckoutState = "complete"
)

// CheckoutRequest is what the buyer confirms on the payment screen
type CheckoutRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Shipping      models.ShippingInfo  `json:"shipping"`
}

// Summary is the price breakdown shown before paying
type Summary struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`
	ItemCount   int   `json:"itemCount"`
}

// CheckoutStatus reports the flow state and the outcome of the last attempt
type CheckoutStatus struct {
	State     CheckoutState `json:"state"`
	LastOrder *models.Order `json:"lastOrder,omitempty"`
	LastError string        `json:"lastError,omitempty"`
}

// Checkout turns the cart into a paid order:
// Idle -> Processing -> Complete, falling back to Idle when an attempt fails.
type Checkout struct {
	mu          sync.Mutex
	state       CheckoutState
	lastOrder   *models.Order
	lastErr     error
	lastOrderID int64

	cart        *Cart
	history     *History
	gateway     Gateway
	publisher   broker.Publisher
	deliveryFee int64
	logger      *zap.Logger
	now         func() time.Time
}

// NewCheckout creates a checkout flow in the Idle state
func NewCheckout(cart *Cart, history *History, gateway Gateway, publisher broker.Publisher, deliveryFee int64) *Checkout {
	return &Checkout{
		state:       StateIdle,
		cart:        cart,
		history:     history,
		gateway:     gateway,
		publisher:   publisher,
		deliveryFee: deliveryFee,
		logger:      util.Named("checkout"),
		now:         time.Now,
	}
}

// Summary prices the current cart
func (co *Checkout) Summary() Summary {
	subtotal := co.cart.Total()
	return Summary{
		Subtotal:    subtotal,
		DeliveryFee: co.deliveryFee,
		Total:       subtotal + co.deliveryFee,
		ItemCount:   co.cart.ItemCount(),
	}
}

// Status returns the current state
func (co *Checkout) Status() CheckoutStatus {
	co.mu.Lock()
	defer co.mu.Unlock()

	st := CheckoutStatus{State: co.state}
	if co.lastOrder != nil {
		o := *co.lastOrder
		st.LastOrder = &o
	}
	if co.lastErr != nil {
		st.LastError = co.lastErr.Error()
	}
	return st
}

// Reset returns a finished flow to Idle. It does nothing while Processing.
func (co *Checkout) Reset() {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.state == StateProcessing {
		return
	}
	co.state = StateIdle
	co.lastErr = nil
}

// Proceed validates the request, authorizes payment and records the order.
// Rejected requests leave the state untouched and never reach the gateway.
func (co *Checkout) Proceed(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.Proceed")
	defer span.End()

	co.mu.Lock()
	if co.state == StateProcessing {
		co.mu.Unlock()
		util.CheckoutRejectedTotal.WithLabelValues("in_progress").Inc()
		return nil, ErrCheckoutInProgress
	}

	lines := co.cart.Lines()
	if err := validateCheckout(lines, req); err != nil {
		co.mu.Unlock()
		util.CheckoutRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	co.state = StateProcessing
	co.lastErr = nil
	orderID := co.nextOrderID()
	co.mu.Unlock()

	// an authorized payment must end in a recorded order, even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	subtotal := linesTotal(lines)
	order := models.Order{
		ID:            orderID,
		OrderNumber:   "ORD-" + orderID,
		Total:         subtotal,
		DeliveryFee:   co.deliveryFee,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.Shipping,
		Items:         lines,
	}

	co.logger.Info("Checkout processing",
		zap.String("order_id", orderID),
		zap.Int64("subtotal", subtotal),
		zap.Int("lines", len(lines)))

	result, err := co.gateway.Authorize(ctx, PaymentRequest{
		OrderID: orderID,
		Amount:  order.GrandTotal(),
		Method:  req.PaymentMethod,
	})
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("payment").Inc()
		return nil, co.fail(fmt.Errorf("payment failed: %w", err))
	}

	order.TransactionID = result.TransactionID
	order.Date = co.now()

	if err := co.history.Append(ctx, order); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("history").Inc()
		return nil, co.fail(fmt.Errorf("failed to save order: %w", err))
	}
	util.OrdersCreatedTotal.Inc()

	if err := co.cart.RemoveLines(ctx, lines); err != nil {
		co.logger.Error("Failed to remove ordered lines from cart",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	co.mu.Lock()
	co.state = StateComplete
	co.lastOrder = &order
	co.mu.Unlock()

	co.publishOrder(ctx, order)
	co.logger.Info("Order placed",
		zap.String("order_id", orderID),
		zap.String("tx_id", order.TransactionID),
		zap.Int64("grand_total", order.GrandTotal()))

	return &order, nil
}

func (co *Checkout) fail(err error) error {
	co.mu.Lock()
	co.state = StateIdle
	co.lastErr = err
	co.mu.Unlock()

	co.logger.Error("Checkout failed", zap.Error(err))
	return err
}

// nextOrderID derives the id from the clock, bumped past the previous one so
// two checkouts within a millisecond still differ. Callers hold co.mu.
func (co *Checkout) nextOrderID() string {
	id := co.now().UnixMilli()
	if id <= co.lastOrderID {
		id = co.lastOrderID + 1
	}
	co.lastOrderID = id
	return strconv.FormatInt(id, 10)
}

func (co *Checkout) publishOrder(ctx context.Context, order models.Order) {
	items := make([]models.OrderItemData, 0, len(order.Items))
	for _, l := range order.Items {
		items = append(items, models.OrderItemData{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
		})
	}

	ts := co.now()
	placed := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: ts,
		},
		OrderID:       order.ID,
		Total:         order.Total,
		DeliveryFee:   order.DeliveryFee,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
	}
	if err := co.publisher.PublishOrderPlaced(ctx, placed); err != nil {
		co.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	paid := &models.PaymentSuccessEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentSuccess,
			Timestamp: ts,
		},
		OrderID: order.ID,
		Amount:  order.GrandTotal(),
		TxID:    order.TransactionID,
		Method:  order.PaymentMethod,
	}
	if err := co.publisher.PublishPaymentSuccess(ctx, paid); err != nil {
		co.logger.Error("Failed to publish PaymentSuccess event", zap.Error(err))
	}
}

func validateCheckout(lines []models.CartLine, req CheckoutRequest) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return ErrPaymentMethod
	}

	s := req.Shipping
	var missing []string
	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(s.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}
	if strings.TrimSpace(s.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing shipping fields %s: %w", strings.Join(missing, ", "), ErrValidation)
	}
	return nil
}

func rejectReason(err error) string {
	switch err {
	case ErrEmptyCart:
		return "empty_cart"
	case ErrPaymentMethod:
		return "payment_method"
	}
	return "validation"
}
