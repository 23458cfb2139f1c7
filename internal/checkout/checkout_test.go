package checkout_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/pargo/internal/checkout"
	"github.com/tournevent/pargo/internal/hooks"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/internal/telemetry"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const pargoMethod = "gomedia_pargo_standard"

type fixture struct {
	repo     *sales.Repository
	sessions *checkout.MemorySessionStore
	hooks    *hooks.Hooks
	metrics  *telemetry.Metrics
	svc      *checkout.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sales.Open("sqlite", ":memory:", false)
	require.NoError(t, err)
	require.NoError(t, sales.Migrate(db))
	t.Cleanup(func() { _ = sales.Close(db) })

	f := &fixture{
		repo:     sales.NewRepository(db),
		sessions: checkout.NewMemorySessionStore(time.Hour),
		hooks:    hooks.New(),
		metrics:  telemetry.NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = checkout.NewService(f.repo, f.sessions, f.hooks, pargoMethod, otelzap.New(zap.NewNop()), f.metrics)
	f.hooks.OnShippingMethodConfirmed(f.svc.ApplySelection)

	require.NoError(t, f.repo.SaveQuoteAddress(context.Background(), &sales.QuoteAddress{
		QuoteID: "q1",
		Address: sales.Address{
			AddressType: sales.AddressTypeShipping,
			FirstName:   "Thandi",
			LastName:    "Dlamini",
			Street:      "5 Home St",
			City:        "Durban",
		},
	}))
	return f
}

type recordingSaver struct {
	saved []*sales.QuoteAddress
}

func (r *recordingSaver) SaveQuoteAddress(ctx context.Context, addr *sales.QuoteAddress) error {
	r.saved = append(r.saved, addr)
	return nil
}

func TestApplyPickupPoint(t *testing.T) {
	saver := &recordingSaver{}
	addr := &sales.QuoteAddress{Address: sales.Address{LastName: "Dlamini", Street: "5 Home St", CountryID: "GB"}}

	applied, err := checkout.ApplyPickupPoint(context.Background(), saver, addr, testPoint)
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, saver.saved, 1)

	assert.Equal(t, "Dlamini C/O Corner Pharmacy pargoPointCode: pup123", addr.LastName)
	assert.Equal(t, "Corner Pharmacy", addr.Company)
	assert.Equal(t, "12 Main Road, Shop 3", addr.Street)
	assert.Equal(t, "Cape Town", addr.City)
	assert.Equal(t, "Western Cape", addr.Region)
	assert.Equal(t, "8001", addr.Postcode)
	assert.Equal(t, "ZA", addr.CountryID)
	assert.Equal(t, "pup123", addr.PupID)
}

func TestApplyPickupPoint_ReplacesPreviousPoint(t *testing.T) {
	saver := &recordingSaver{}
	addr := &sales.QuoteAddress{Address: sales.Address{LastName: "Dlamini"}}

	_, err := checkout.ApplyPickupPoint(context.Background(), saver, addr, testPoint)
	require.NoError(t, err)

	other := testPoint
	other.Code = "pup999"
	other.StoreName = "Book Nook"
	_, err = checkout.ApplyPickupPoint(context.Background(), saver, addr, other)
	require.NoError(t, err)

	assert.Equal(t, "Dlamini C/O Book Nook pargoPointCode: pup999", addr.LastName)
	assert.Equal(t, "pup999", addr.PupID)
}

func TestApplyPickupPoint_IncompleteSelection(t *testing.T) {
	saver := &recordingSaver{}
	addr := &sales.QuoteAddress{Address: sales.Address{LastName: "Dlamini"}}

	applied, err := checkout.ApplyPickupPoint(context.Background(), saver, addr, shipper.PickupPoint{Code: "pup123"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, saver.saved)
	assert.Equal(t, "Dlamini", addr.LastName)
}

func TestService_ConfirmShippingMethod_MissingPickupPoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "q1")
	require.NoError(t, err)

	err = f.svc.ConfirmShippingMethod(ctx, session.ID, pargoMethod, nil)
	require.Error(t, err)

	var verr *checkout.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errors.Is(err, shipper.ErrMissingPickupPoint))
	assert.Equal(t, checkout.ShowMessage("error", "Please choose a Pargo pickup point from the map."), verr.HTML)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CheckoutRejects))

	addr, err := f.repo.QuoteShippingAddress(ctx, "q1")
	require.NoError(t, err)
	assert.Empty(t, addr.ShippingMethod, "a rejected method is not saved")
}

func TestService_ConfirmShippingMethod_WithSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "q1")
	require.NoError(t, err)
	_, err = f.svc.SelectPickupPoint(ctx, session.ID, testPoint)
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmShippingMethod(ctx, session.ID, pargoMethod, nil))

	addr, err := f.repo.QuoteShippingAddress(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, pargoMethod, addr.ShippingMethod)
	assert.Equal(t, "pup123", addr.PupID)
	assert.Equal(t, "Thandi", addr.FirstName)
	assert.True(t, strings.HasPrefix(addr.LastName, "Dlamini C/O Corner Pharmacy"))
}

func TestService_ConfirmShippingMethod_PointInRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "q1")
	require.NoError(t, err)

	point := testPoint
	require.NoError(t, f.svc.ConfirmShippingMethod(ctx, session.ID, pargoMethod, &point))

	stored, err := f.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	_, ok := stored.GetShipping(checkout.ShippingKey)
	assert.True(t, ok)
}

func TestService_ConfirmShippingMethod_OtherCarrier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "q1")
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmShippingMethod(ctx, session.ID, "flatrate_flatrate", nil))

	addr, err := f.repo.QuoteShippingAddress(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "flatrate_flatrate", addr.ShippingMethod)
	assert.Empty(t, addr.PupID)
	assert.Equal(t, "Dlamini", addr.LastName)
}

func TestService_SelectPickupPoint_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, "q1")
	require.NoError(t, err)

	_, err = f.svc.SelectPickupPoint(ctx, session.ID, shipper.PickupPoint{Code: "pup1"})
	var verr *checkout.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.svc.SelectPickupPoint(ctx, "missing", testPoint)
	assert.True(t, errors.Is(err, checkout.ErrSessionNotFound))
}

func TestService_StartSession_RequiresQuote(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartSession(context.Background(), "")
	assert.Error(t, err)
}

func TestShowMessage(t *testing.T) {
	assert.Equal(t,
		`<ul class="messages"><li class="error-msg"><ul><li><span>Please choose</span></li></ul></li></ul>`,
		checkout.ShowMessage("error", "Please choose"))
	assert.Contains(t, checkout.ShowMessage("notice", "<b>x</b>"), "&lt;b&gt;x&lt;/b&gt;")
}

func TestWidget(t *testing.T) {
	s := checkout.NewSession("q1")

	html, err := checkout.Widget("https://pargopickuppoints.appspot.com/", s)
	require.NoError(t, err)
	assert.Contains(t, html, `src="https://pargopickuppoints.appspot.com/"`)
	assert.Contains(t, html, s.ID)
	assert.NotContains(t, html, "Corner Pharmacy")

	s.SetShipping(checkout.ShippingKey, testPoint)
	html, err = checkout.Widget("https://pargopickuppoints.appspot.com/", s)
	require.NoError(t, err)
	assert.Contains(t, html, "Corner Pharmacy, 12 Main Road, Cape Town")
}
