package seller

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileFields() map[string]string {
	return map[string]string{
		"sellerName":  "Meena Iyer",
		"companyName": "Green Farms Co.",
		"gstNumber":   "33AAAAA0000A1Z5",
		"email":       "meena@greenfarms.in",
		"phone":       "9876543210",
		"nickname":    "ignored",
	}
}

func bankFields() map[string]string {
	return map[string]string{"accountNumber": "001122334455", "ifsc": "HDFC0000123", "bankName": "HDFC"}
}

func documentFields() map[string]string {
	return map[string]string{"gstCertificate": "uploads/gst.pdf", "cancelledCheque": "uploads/cheque.jpg"}
}

func TestSignupWizard_HappyPath(t *testing.T) {
	w := NewSignupWizard()
	assert.Equal(t, StepProfile, w.Step())

	next, err := w.Next(profileFields())
	require.NoError(t, err)
	assert.Equal(t, StepBank, next)

	next, err = w.Next(bankFields())
	require.NoError(t, err)
	assert.Equal(t, StepDocuments, next)

	app, err := w.Submit(documentFields())
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, app.Status)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "Green Farms Co.", app.Profile["companyName"])
	assert.NotContains(t, app.Profile, "nickname")
	assert.Equal(t, "HDFC", app.Bank["bankName"])
	assert.Equal(t, "uploads/gst.pdf", app.Documents["gstCertificate"])

	_, err = w.Submit(documentFields())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestSignupWizard_MissingFields(t *testing.T) {
	w := NewSignupWizard()

	fields := profileFields()
	delete(fields, "gstNumber")
	fields["email"] = "  "

	_, err := w.Next(fields)
	require.ErrorIs(t, err, ErrMissingFields)

	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, StepProfile, mf.Step)
	assert.Equal(t, []string{"gstNumber", "email"}, mf.Fields)
	assert.Equal(t, StepProfile, w.Step())
}

func TestSignupWizard_OrderEnforced(t *testing.T) {
	w := NewSignupWizard()

	_, err := w.Submit(documentFields())
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = w.Next(profileFields())
	require.NoError(t, err)
	assert.Equal(t, StepProfile, w.Back())
	assert.Equal(t, StepProfile, w.Back())
}

func TestSignups_Apply(t *testing.T) {
	s := NewSignups()

	_, err := s.Apply("sess-1", StepBank, bankFields())
	assert.ErrorIs(t, err, ErrWrongStep)

	res, err := s.Apply("sess-1", StepProfile, profileFields())
	require.NoError(t, err)
	assert.Equal(t, StepBank, res.NextStep)

	res, err = s.Apply("sess-1", StepBank, map[string]string{"ifsc": "HDFC0000123"})
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, StepBank, res.NextStep)

	// sessions do not share wizards
	res, err = s.Apply("sess-2", StepProfile, profileFields())
	require.NoError(t, err)
	assert.Equal(t, StepBank, res.NextStep)

	_, err = s.Apply("sess-1", StepBank, bankFields())
	require.NoError(t, err)

	// revisiting an earlier step rewinds the wizard
	res, err = s.Apply("sess-1", StepProfile, profileFields())
	require.NoError(t, err)
	assert.Equal(t, StepBank, res.NextStep)
	_, err = s.Apply("sess-1", StepBank, bankFields())
	require.NoError(t, err)

	res, err = s.Apply("sess-1", StepDocuments, documentFields())
	require.NoError(t, err)
	require.NotNil(t, res.Application)
	assert.Equal(t, StatusUnderReview, res.Application.Status)

	_, err = s.Apply("sess-1", StepProfile, profileFields())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestOrderBook_Demo(t *testing.T) {
	b := NewDemoOrderBook()

	orders := b.List()
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-001", orders[0].ID)
	assert.Equal(t, StatusPending, orders[0].Status)
	assert.True(t, orders[2].Total.Equal(decimal.NewFromInt(898)))

	_, err := b.Get("ORD-999")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderBook_Advance(t *testing.T) {
	b := NewDemoOrderBook()

	want := []OrderStatus{StatusProcessing, StatusShipped, StatusDelivered}
	for _, status := range want {
		o, err := b.Advance("ORD-001")
		require.NoError(t, err)
		assert.Equal(t, status, o.Status)
	}

	_, err := b.Advance("ORD-001")
	assert.ErrorIs(t, err, ErrAlreadyDelivered)

	_, err = b.Advance("ORD-404")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	o, err := b.Get("ORD-002")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, o.Status)
}

func TestOrderBook_AttachInvoice(t *testing.T) {
	b := NewDemoOrderBook()
	uploaded := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return uploaded }

	_, err := b.AttachInvoice("ORD-003", "", decimal.NewFromInt(898), "inv.pdf")
	assert.ErrorIs(t, err, ErrInvalidInvoice)
	_, err = b.AttachInvoice("ORD-003", "INV-1", decimal.Zero, "inv.pdf")
	assert.ErrorIs(t, err, ErrInvalidInvoice)

	_, err = b.AttachInvoice("ORD-001", "INV-1", decimal.NewFromInt(749), "inv.pdf")
	assert.ErrorIs(t, err, ErrInvoiceNotAllowed)

	o, err := b.AttachInvoice("ORD-003", "INV-1", decimal.NewFromInt(898), "inv.pdf")
	require.NoError(t, err)
	require.NotNil(t, o.Invoice)
	assert.Equal(t, "INV-1", o.Invoice.Number)
	assert.Equal(t, uploaded, o.Invoice.UploadedAt)

	_, err = b.AttachInvoice("ORD-404", "INV-2", decimal.NewFromInt(1), "inv.pdf")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSignups_EvictsIdleWizards(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := NewSignups(WithIdleTTL(10*time.Minute), WithClock(func() time.Time { return now }))

	_, err := s.Apply("sess-idle", StepProfile, profileFields())
	require.NoError(t, err)
	now = now.Add(6 * time.Minute)
	_, err = s.Apply("sess-busy", StepProfile, profileFields())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, s.EvictIdle())
	assert.Equal(t, 1, s.Len())

	// an evicted session starts again from the first step
	res, err := s.Apply("sess-idle", StepBank, bankFields())
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.Equal(t, StepProfile, res.NextStep)

	// the busy wizard kept its progress
	res, err = s.Apply("sess-busy", StepBank, bankFields())
	require.NoError(t, err)
	assert.Equal(t, StepDocuments, res.NextStep)
}

func TestSignups_ApplyDropsExpiredWizards(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := NewSignups(WithIdleTTL(time.Minute), WithClock(func() time.Time { return now }))

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Apply(id, StepProfile, profileFields())
		require.NoError(t, err)
	}
	now = now.Add(2 * time.Minute)

	_, err := s.Apply("d", StepProfile, profileFields())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestQuoteBook_Demo(t *testing.T) {
	b := NewDemoQuoteBook()

	quotes := b.List()
	require.Len(t, quotes, 3)
	assert.Equal(t, "QT-001", quotes[0].ID)
	assert.False(t, quotes[0].Priced())
	assert.True(t, quotes[1].FinalPrice.Equal(decimal.NewFromInt(12240)))

	assert.Equal(t, map[QuoteStatus]int{
		QuotePending:   1,
		QuoteSubmitted: 1,
		QuoteApproved:  1,
		QuoteRejected:  0,
	}, b.CountByStatus())
}

func TestQuoteBook_SubmitQuote(t *testing.T) {
	b := NewDemoQuoteBook()

	q, err := b.SubmitQuote("QT-001", decimal.NewFromInt(15000))
	require.NoError(t, err)
	assert.Equal(t, QuoteSubmitted, q.Status)
	assert.True(t, q.SellerQuote.Equal(decimal.NewFromInt(15000)))
	assert.True(t, q.FinalPrice.Equal(decimal.NewFromInt(15300)), q.FinalPrice.String())

	stored, err := b.Get("QT-001")
	require.NoError(t, err)
	assert.Equal(t, q, stored)
	assert.Equal(t, 2, b.CountByStatus()[QuoteSubmitted])
	assert.Equal(t, 0, b.CountByStatus()[QuotePending])
}

func TestQuoteBook_SubmitQuoteErrors(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		price decimal.Decimal
		want  error
	}{
		{"missing price", "QT-001", decimal.Zero, ErrInvalidQuotePrice},
		{"negative price", "QT-001", decimal.NewFromInt(-5), ErrInvalidQuotePrice},
		{"unknown quote", "QT-999", decimal.NewFromInt(100), ErrQuoteNotFound},
		{"already submitted", "QT-002", decimal.NewFromInt(100), ErrQuoteNotPending},
		{"already approved", "QT-003", decimal.NewFromInt(100), ErrQuoteNotPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewDemoQuoteBook()
			before := b.List()

			_, err := b.SubmitQuote(tt.id, tt.price)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, b.List())
		})
	}
}

func TestFinalPriceFor_RoundsToPaise(t *testing.T) {
	assert.Equal(t, "102.01", FinalPriceFor(decimal.RequireFromString("100.01")).StringFixed(2))
	assert.Equal(t, "61098.00", FinalPriceFor(decimal.NewFromInt(59900)).StringFixed(2))
}
