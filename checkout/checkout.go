// Package checkout assembles and submits an order from the cart: pricing,
// form validation, and a single-flight submission guard.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/mawlid1431/Arts/cart"
	"github.com/mawlid1431/Arts/config"
	"github.com/mawlid1431/Arts/models"

	"go.uber.org/zap"
)

var (
	// ErrEmptyCart rejects submission of a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmitInFlight rejects a second submit while one is pending.
	ErrSubmitInFlight = errors.New("order submission already in flight")
	// ErrSubmissionFailed is the single generic error surfaced for any
	// network or server failure. The cart is left untouched; retry is safe.
	ErrSubmissionFailed = errors.New("order submission failed, please try again")
)

// ValidationError carries all field violations found in one pass.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout form: %d field(s)", len(e.Fields))
}

// Form is the shipping/contact form filled at checkout.
type Form struct {
	Name     string
	Email    string
	Phone    string
	Address1 string
	Address2 string
	City     string
	Postcode string
	Country  string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks every required field and collects all violations rather
// than stopping at the first.
func (f Form) Validate() map[string]string {
	violations := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		violations["name"] = "Name is required"
	}
	if strings.TrimSpace(f.Email) == "" {
		violations["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		violations["email"] = "Invalid email format"
	}
	if strings.TrimSpace(f.Phone) == "" {
		violations["phone"] = "Phone is required"
	}
	if strings.TrimSpace(f.Address1) == "" {
		violations["address1"] = "Address is required"
	}
	if strings.TrimSpace(f.City) == "" {
		violations["city"] = "City is required"
	}
	if strings.TrimSpace(f.Postcode) == "" {
		violations["postcode"] = "Postal code is required"
	}
	if strings.TrimSpace(f.Country) == "" {
		violations["country"] = "Country is required"
	}
	return violations
}

// Totals is the priced order summary.
type Totals struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// ComputeTotals prices an order. Shipping is waived only above the free
// shipping threshold; a subtotal equal to it still pays the flat fee. Tax is
// an optional additive line controlled by deployment configuration.
func ComputeTotals(subtotal float64, taxEnabled bool) Totals {
	t := Totals{Subtotal: subtotal}
	if subtotal > config.FreeShippingThreshold {
		t.Shipping = 0
	} else {
		t.Shipping = config.FlatShippingFee
	}
	if taxEnabled {
		t.Tax = round2(subtotal * config.TaxRate)
	}
	t.Total = round2(subtotal + t.Shipping + t.Tax)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// OrdersAPI submits the assembled order and returns the server-assigned
// order id.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (string, error)
}

// Service runs the submission flow. At most one submission is in flight at a
// time; there is no idempotency key, so the guard is what prevents duplicate
// orders from a double submit.
//
// Stock ceilings are not enforced here or in the cart store; the product
// listing disables the add action for out-of-stock items.
type Service struct {
	api        OrdersAPI
	taxEnabled bool
	logger     *zap.Logger
	inFlight   atomic.Bool
}

func NewService(api OrdersAPI, taxEnabled bool, logger *zap.Logger) *Service {
	return &Service{api: api, taxEnabled: taxEnabled, logger: logger}
}

// Submit validates the form, prices the cart, and creates the order. On
// success the cart is cleared and the order id returned. On any server or
// network failure the cart is untouched and ErrSubmissionFailed returned.
func (s *Service) Submit(ctx context.Context, c *cart.Store, form Form) (string, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return "", ErrSubmitInFlight
	}
	defer s.inFlight.Store(false)

	lines := c.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	if violations := form.Validate(); len(violations) > 0 {
		return "", &ValidationError{Fields: violations}
	}

	totals := ComputeTotals(c.Total(), s.taxEnabled)

	items := make([]models.CreateOrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.CreateOrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	req := models.CreateOrderRequest{
		CustomerName:    form.Name,
		CustomerEmail:   form.Email,
		CustomerPhone:   form.Phone,
		ShippingAddress: formatAddress(form),
		PaymentMethod:   "pending",
		Items:           items,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
	}

	orderID, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("Order submission failed", zap.Error(err))
		return "", ErrSubmissionFailed
	}

	c.Clear(ctx)
	s.logger.Info("Order submitted", zap.String("order_id", orderID), zap.Float64("total", totals.Total))
	return orderID, nil
}

func formatAddress(f Form) string {
	parts := []string{f.Address1}
	if strings.TrimSpace(f.Address2) != "" {
		parts = append(parts, f.Address2)
	}
	parts = append(parts, f.City, f.Postcode, f.Country)
	return strings.Join(parts, ", ")
}
