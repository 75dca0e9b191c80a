package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelaris/storefront/internal/domain/cart"
)

// --- Mock implementations ---

type mockGateway struct {
	orderID   string
	err       error
	lastOrder *Order
	calls     int
}

func (m *mockGateway) Submit(_ context.Context, o *Order) (string, error) {
	m.calls++
	m.lastOrder = o
	if m.err != nil {
		return "", m.err
	}
	return m.orderID, nil
}

// --- Helpers ---

func filledShipping() ShippingPatch {
	s := func(v string) *string { return &v }
	return ShippingPatch{
		FirstName: s("Ada"),
		LastName:  s("Lovelace"),
		Email:     s("ada@example.com"),
		Phone:     s("555-0100"),
		Address:   s("1 Analytical Way"),
		City:      s("London"),
		State:     s("LDN"),
		ZipCode:   s("10001"),
	}
}

func filledPayment() PaymentPatch {
	s := func(v string) *string { return &v }
	return PaymentPatch{
		CardNumber: s("4111 1111 1111 1111"),
		ExpiryDate: s("12/27"),
		CVV:        s("123"),
		NameOnCard: s("Ada Lovelace"),
	}
}

func testItems() []cart.LineItem {
	return []cart.LineItem{
		{
			ProductID: 1,
			Title:     "Widget",
			Price:     decimal.RequireFromString("20.00"),
			Quantity:  2,
			LineTotal: decimal.RequireFromString("40.00"),
		},
	}
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s", want, got)
}

// --- Summary derivation ---

func TestSummarize_BelowThreshold(t *testing.T) {
	s := Summarize(decimal.NewFromInt(40))

	assertDecimalEqual(t, "40", s.Subtotal)
	assertDecimalEqual(t, "9.99", s.Shipping)
	assertDecimalEqual(t, "3.2", s.Tax)
	assertDecimalEqual(t, "53.19", s.Total)
}

func TestSummarize_AboveThreshold(t *testing.T) {
	s := Summarize(decimal.NewFromInt(60))

	assertDecimalEqual(t, "60", s.Subtotal)
	assertDecimalEqual(t, "0", s.Shipping)
	assertDecimalEqual(t, "4.8", s.Tax)
	assertDecimalEqual(t, "64.8", s.Total)
}

// Free shipping requires strictly more than 50: exactly 50 pays the fee.
func TestSummarize_ExactThresholdPaysShipping(t *testing.T) {
	s := Summarize(decimal.NewFromInt(50))

	assertDecimalEqual(t, "9.99", s.Shipping)
	assertDecimalEqual(t, "4", s.Tax)
	assertDecimalEqual(t, "63.99", s.Total)
}

// --- Form state ---

func TestUpdateShipping_MergePatch(t *testing.T) {
	c := New(&mockGateway{})
	s := func(v string) *string { return &v }

	c.UpdateShipping(ShippingPatch{FirstName: s("Ada")})
	c.UpdateShipping(ShippingPatch{City: s("London")})

	got := c.Shipping()
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "London", got.City)
	assert.Equal(t, DefaultCountry, got.Country, "untouched fields keep defaults")
	assert.Equal(t, "", got.Email)
}

func TestUpdatePayment_NormalizesCardNumber(t *testing.T) {
	c := New(&mockGateway{})
	s := func(v string) *string { return &v }

	c.UpdatePayment(PaymentPatch{CardNumber: s("4111 1111-1111 1111")})

	assert.Equal(t, "4111111111111111", c.Payment().CardNumber)
}

// --- Submission state machine ---

func TestSubmit_Success(t *testing.T) {
	gw := &mockGateway{orderID: "ord-123"}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())
	c.RecalculateSummary(decimal.NewFromInt(40))

	require.Equal(t, StatusIdle, c.Status())
	err := c.Submit(context.Background(), testItems())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, c.Status())
	assert.Equal(t, "ord-123", c.OrderID())
	assert.Empty(t, c.Err())
	assert.Equal(t, 1, gw.calls, "exactly one attempt per Submit call")

	// Forms are reset, the summary survives for receipt display.
	assert.Equal(t, DefaultShippingInfo(), c.Shipping())
	assert.Equal(t, PaymentInfo{}, c.Payment())
	assertDecimalEqual(t, "53.19", c.Summary().Total)
}

func TestSubmit_MasksCardNumber(t *testing.T) {
	gw := &mockGateway{orderID: "ord-123"}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())

	require.NoError(t, c.Submit(context.Background(), testItems()))

	require.NotNil(t, gw.lastOrder)
	assert.Equal(t, "****1111", gw.lastOrder.Payment.CardNumber)
}

func TestSubmit_Failure(t *testing.T) {
	gw := &mockGateway{err: errors.New("order service unavailable")}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())

	err := c.Submit(context.Background(), testItems())
	require.Error(t, err)

	assert.Equal(t, StatusFailed, c.Status())
	assert.Equal(t, "order service unavailable", c.Err())
	assert.Empty(t, c.OrderID())

	// Forms are preserved so the shopper can retry without re-entering data.
	assert.Equal(t, "Ada", c.Shipping().FirstName)
	assert.Equal(t, "4111111111111111", c.Payment().CardNumber)
}

func TestSubmit_RetryAfterFailure(t *testing.T) {
	gw := &mockGateway{err: errors.New("boom")}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())

	require.Error(t, c.Submit(context.Background(), testItems()))
	require.Equal(t, StatusFailed, c.Status())

	gw.err = nil
	gw.orderID = "ord-456"
	require.NoError(t, c.Submit(context.Background(), testItems()))

	assert.Equal(t, StatusSucceeded, c.Status())
	assert.Equal(t, "ord-456", c.OrderID())
	assert.Empty(t, c.Err())
}

func TestSubmit_SucceededIsTerminal(t *testing.T) {
	gw := &mockGateway{orderID: "ord-123"}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())

	require.NoError(t, c.Submit(context.Background(), testItems()))

	err := c.Submit(context.Background(), testItems())
	require.ErrorIs(t, err, ErrOrderCompleted)
	assert.Equal(t, 1, gw.calls)
}

func TestSubmit_EmptyCart(t *testing.T) {
	c := New(&mockGateway{})

	err := c.Submit(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StatusIdle, c.Status())
}

func TestSubmit_OrderDateIsUTC(t *testing.T) {
	gw := &mockGateway{orderID: "ord-123"}
	c := New(gw)
	c.now = func() time.Time {
		return time.Date(2024, 3, 1, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	}
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())

	require.NoError(t, c.Submit(context.Background(), testItems()))

	require.NotNil(t, gw.lastOrder)
	assert.Equal(t, time.UTC, gw.lastOrder.OrderDate.Location())
	assert.Equal(t, "2024-03-01T14:04:05Z", gw.lastOrder.OrderDate.Format(time.RFC3339))
}

func TestResetOrderStatus_KeepsForms(t *testing.T) {
	gw := &mockGateway{err: errors.New("boom")}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())
	_ = c.Submit(context.Background(), testItems())

	c.ResetOrderStatus()

	assert.Equal(t, StatusIdle, c.Status())
	assert.Empty(t, c.Err())
	assert.Empty(t, c.OrderID())
	assert.Equal(t, "Ada", c.Shipping().FirstName)
	assert.Equal(t, "123", c.Payment().CVV)
}

func TestClear_ResetsEverything(t *testing.T) {
	gw := &mockGateway{orderID: "ord-123"}
	c := New(gw)
	c.UpdateShipping(filledShipping())
	c.UpdatePayment(filledPayment())
	c.RecalculateSummary(decimal.NewFromInt(60))
	require.NoError(t, c.Submit(context.Background(), testItems()))

	c.Clear()

	assert.Equal(t, StatusIdle, c.Status())
	assert.Equal(t, DefaultShippingInfo(), c.Shipping())
	assert.Equal(t, PaymentInfo{}, c.Payment())
	assertDecimalEqual(t, "0", c.Summary().Subtotal)
	assertDecimalEqual(t, "9.99", c.Summary().Shipping)
}

// --- Masking ---

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4111111111111111", "****1111"},
		{"378282246310005", "****0005"},
		{"1234", "****1234"},
		{"12", "****12"},
		{"", "****"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskCardNumber(tt.in), "input %q", tt.in)
	}
}

// --- Validation ---

func TestValidateShipping(t *testing.T) {
	c := New(&mockGateway{})
	c.UpdateShipping(filledShipping())
	require.NoError(t, ValidateShipping(c.Shipping()))
}

func TestValidateShipping_MissingFields(t *testing.T) {
	err := ValidateShipping(ShippingInfo{Country: DefaultCountry})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "firstName")
	assert.Contains(t, verr.Message, "zipCode")
	assert.NotContains(t, verr.Message, "country")
}

func TestValidateShipping_WhitespaceOnlyIsMissing(t *testing.T) {
	s := ShippingInfo{
		FirstName: "  ", LastName: "x", Email: "a@b", Phone: "1",
		Address: "x", City: "x", State: "x", ZipCode: "1", Country: "x",
	}
	err := ValidateShipping(s)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "firstName")
}

func TestValidateShipping_BadEmail(t *testing.T) {
	s := ShippingInfo{
		FirstName: "a", LastName: "b", Email: "not-an-email", Phone: "1",
		Address: "x", City: "x", State: "x", ZipCode: "1", Country: "x",
	}
	err := ValidateShipping(s)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "email")
}

func TestValidatePayment(t *testing.T) {
	require.NoError(t, ValidatePayment(PaymentInfo{
		CardNumber: "4111111111111111",
		ExpiryDate: "12/27",
		CVV:        "123",
		NameOnCard: "Ada Lovelace",
	}))
}

func TestValidatePayment_MissingAndBadCVV(t *testing.T) {
	err := ValidatePayment(PaymentInfo{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "cardNumber")

	err = ValidatePayment(PaymentInfo{
		CardNumber: "4111111111111111",
		ExpiryDate: "12/27",
		CVV:        "12a",
		NameOnCard: "Ada",
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "cvv")
}
