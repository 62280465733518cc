package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

var (
	// ErrUnknownCustomer indicates the ordering customer is not registered.
	ErrUnknownCustomer = errors.New("unknown customer")
	// ErrCreditLimitExceeded indicates the order total is above the customer's credit line.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	// ErrEmptyOrder indicates an order without items.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrInvalidItem is returned for items with a negative price.
	ErrInvalidItem = errors.New("invalid order item")
)

// Store persists customers and their orders.
type Store interface {
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	SaveOrder(ctx context.Context, order models.Order) error
}

// Service places customer orders.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires an order service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Total sums quantity times price over all items.
func Total(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Place creates a pending order for the customer. A zero credit limit means
// no limit.
func (s *Service) Place(ctx context.Context, customerID string, in models.OrderInput) (models.Order, error) {
	if len(in.Items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Price.IsNegative() {
			return models.Order{}, fmt.Errorf("%w: %s has a negative price", ErrInvalidItem, item.ProductID)
		}
	}

	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Order{}, fmt.Errorf("%w: %s", ErrUnknownCustomer, customerID)
		}
		return models.Order{}, fmt.Errorf("lookup customer %s: %w", customerID, err)
	}

	total := Total(in.Items)
	if customer.CreditLimit.IsPositive() && total.GreaterThan(customer.CreditLimit) {
		return models.Order{}, fmt.Errorf("%w: total %s, limit %s", ErrCreditLimitExceeded, total.StringFixed(2), customer.CreditLimit.StringFixed(2))
	}

	order := models.Order{
		ID:              "ORD-" + uuid.NewString(),
		CustomerID:      customer.ID,
		Date:            s.now(),
		Items:           in.Items,
		Total:           total,
		Status:          models.OrderPending,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
	}

	if err := s.store.SaveOrder(ctx, order); err != nil {
		return models.Order{}, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info("order placed", zap.String("order_id", order.ID), zap.String("customer_id", customer.ID), zap.String("total", total.StringFixed(2)))
	return order, nil
}
