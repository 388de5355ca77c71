package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mawlid1431/Arts/cart"
	"github.com/mawlid1431/Arts/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type mockOrdersAPI struct {
	mu      sync.Mutex
	calls   int
	lastReq models.CreateOrderRequest
	orderID string
	err     error
	block   chan struct{} // when set, CreateOrder waits until closed
}

func (m *mockOrdersAPI) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	block := m.block
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	if m.err != nil {
		return "", m.err
	}
	return m.orderID, nil
}

func validForm() Form {
	return Form{
		Name:     "Amina Yusuf",
		Email:    "amina@example.com",
		Phone:    "+252 61 5551234",
		Address1: "12 Harbor Road",
		City:     "Hargeisa",
		Postcode: "00000",
		Country:  "Somaliland",
	}
}

func newCart(t *testing.T) *cart.Store {
	return cart.New(context.Background(), cart.NewMemoryStorage(), "checkout-test", zaptest.NewLogger(t))
}

func TestComputeTotals_ThresholdBoundaryIsExclusive(t *testing.T) {
	atThreshold := ComputeTotals(200, false)
	assert.Equal(t, 25.0, atThreshold.Shipping, "subtotal equal to the threshold still pays shipping")
	assert.Equal(t, 225.0, atThreshold.Total)

	above := ComputeTotals(200.01, false)
	assert.Equal(t, 0.0, above.Shipping)
	assert.Equal(t, 200.01, above.Total)
}

func TestComputeTotals_TaxIsOptionalAndAdditive(t *testing.T) {
	withTax := ComputeTotals(100, true)
	assert.Equal(t, 8.0, withTax.Tax)
	assert.Equal(t, 133.0, withTax.Total) // 100 + 25 shipping + 8 tax

	withoutTax := ComputeTotals(100, false)
	assert.Equal(t, 0.0, withoutTax.Tax)
	assert.Equal(t, 125.0, withoutTax.Total)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	form := validForm()
	form.Email = ""
	form.Phone = ""

	violations := form.Validate()
	assert.Contains(t, violations, "email")
	assert.Contains(t, violations, "phone")
	assert.Len(t, violations, 2)
}

func TestValidate_EmailFormat(t *testing.T) {
	form := validForm()
	form.Email = "not-an-email"
	assert.Contains(t, form.Validate(), "email")

	form.Email = "user@domain.tld"
	assert.NotContains(t, form.Validate(), "email")
}

func TestSubmit_ValidationFailureMakesNoNetworkCall(t *testing.T) {
	api := &mockOrdersAPI{orderID: "o1"}
	svc := NewService(api, false, zaptest.NewLogger(t))

	c := newCart(t)
	c.AddItem(context.Background(), "p1", "Desert Dawn", 100, "", 1)

	_, err := svc.Submit(context.Background(), c, Form{})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, api.calls, "no network call on validation failure")
	assert.Equal(t, 1, c.Count(), "cart untouched")
}

func TestSubmit_EmptyCart(t *testing.T) {
	api := &mockOrdersAPI{orderID: "o1"}
	svc := NewService(api, false, zaptest.NewLogger(t))

	_, err := svc.Submit(context.Background(), newCart(t), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, api.calls)
}

func TestSubmit_EndToEnd(t *testing.T) {
	// cart = [{p1, price 100, qty 2}] -> subtotal 200, shipping 25, total 225
	api := &mockOrdersAPI{orderID: "order-42"}
	svc := NewService(api, false, zaptest.NewLogger(t))

	ctx := context.Background()
	c := newCart(t)
	c.AddItem(ctx, "p1", "Desert Dawn", 100, "", 2)

	orderID, err := svc.Submit(ctx, c, validForm())
	assert.NoError(t, err)
	assert.Equal(t, "order-42", orderID)

	assert.Equal(t, 200.0, api.lastReq.Subtotal)
	assert.Equal(t, 25.0, api.lastReq.Shipping)
	assert.Equal(t, 225.0, api.lastReq.Total)
	assert.Len(t, api.lastReq.Items, 1)
	assert.Equal(t, "pending", api.lastReq.PaymentMethod)

	assert.Equal(t, 0, c.Count(), "cart cleared after success")
}

func TestSubmit_ServerFailureLeavesCartUntouched(t *testing.T) {
	api := &mockOrdersAPI{err: errors.New("boom")}
	svc := NewService(api, false, zaptest.NewLogger(t))

	ctx := context.Background()
	c := newCart(t)
	c.AddItem(ctx, "p1", "Desert Dawn", 100, "", 2)

	_, err := svc.Submit(ctx, c, validForm())
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, 2, c.Count(), "cart kept for retry")
}

func TestSubmit_SecondSubmitWhileInFlightIsRejected(t *testing.T) {
	block := make(chan struct{})
	api := &mockOrdersAPI{orderID: "o1", block: block}
	svc := NewService(api, false, zaptest.NewLogger(t))

	ctx := context.Background()
	c := newCart(t)
	c.AddItem(ctx, "p1", "Desert Dawn", 100, "", 1)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx, c, validForm())
		done <- err
	}()

	// wait until the first submit reaches the API
	for {
		api.mu.Lock()
		started := api.calls > 0
		api.mu.Unlock()
		if started {
			break
		}
	}

	_, err := svc.Submit(ctx, c, validForm())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(block)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, api.calls)
}
