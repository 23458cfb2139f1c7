package pargo_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/pargo/pkg/shipper"
	"github.com/tournevent/pargo/pkg/shipper/pargo"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testConfig() pargo.Config {
	return pargo.Config{
		Active:      true,
		CarrierCode: "gomedia_pargo",
		Method:      "standard",
		Title:       "Pargo",
		Name:        "Pargo Pickup Point",
		Price:       decimal.RequireFromString("45.50"),
		TrackURL:    "https://pargo.co.za/track-trace/?track-trace=",
	}
}

func newTestClient(cfg pargo.Config, mockClient *pargo.MockAPIClient) *pargo.Client {
	logger := otelzap.New(zap.NewNop())
	return pargo.NewWithAPIClient(cfg, mockClient, logger, nil)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(testConfig(), pargo.NewMockAPIClient())

	assert.Equal(t, "gomedia_pargo", client.Name())
	assert.Equal(t, "gomedia_pargo_standard", client.ShippingMethod())
}

func TestClient_AllowedMethods(t *testing.T) {
	client := newTestClient(testConfig(), pargo.NewMockAPIClient())

	assert.Equal(t, map[string]string{"gomedia_pargo": "Pargo Pickup Point"}, client.AllowedMethods())
}

func TestClient_ImplementsCarrier(t *testing.T) {
	var _ shipper.Carrier = (*pargo.Client)(nil)
}

func TestClient_CollectRates(t *testing.T) {
	client := newTestClient(testConfig(), pargo.NewMockAPIClient())

	resp, err := client.CollectRates(context.Background(), &shipper.RateRequest{ItemCount: 2})
	require.NoError(t, err)

	require.Len(t, resp.Rates, 1)
	rate := resp.Rates[0]
	assert.Equal(t, "gomedia_pargo_standard", rate.Code())
	assert.Equal(t, "Pargo", rate.CarrierTitle)
	assert.Equal(t, "Collect from local shop when it suits you best", rate.MethodTitle)
	assert.True(t, rate.Price.Amount.Equal(decimal.RequireFromString("45.5")))
	assert.True(t, rate.Cost.Amount.IsZero())
}

func TestClient_CollectRates_Inactive(t *testing.T) {
	cfg := testConfig()
	cfg.Active = false
	client := newTestClient(cfg, pargo.NewMockAPIClient())

	_, err := client.CollectRates(context.Background(), &shipper.RateRequest{})
	assert.True(t, errors.Is(err, shipper.ErrCarrierDisabled))
}

func TestClient_TrackingInfo(t *testing.T) {
	client := newTestClient(testConfig(), pargo.NewMockAPIClient())

	info, err := client.TrackingInfo(context.Background(), "PGO 12")
	require.NoError(t, err)
	assert.Equal(t, "https://pargo.co.za/track-trace/?track-trace=PGO+12", info.URL)
	assert.Equal(t, "Pargo", info.CarrierTitle)

	_, err = client.TrackingInfo(context.Background(), "")
	assert.True(t, errors.Is(err, shipper.ErrInvalidTrackingNumber))
}

func TestClient_SubmitOrder_Success(t *testing.T) {
	mockAPI := pargo.NewMockAPIClient()
	client := newTestClient(testConfig(), mockAPI)

	resp, err := client.SubmitOrder(context.Background(), &pargo.OrderRequest{
		Delivery: pargo.Delivery{PargoPointCode: "pup1"},
	})
	require.NoError(t, err)

	waybill, err := resp.Waybill()
	require.NoError(t, err)
	assert.NotEmpty(t, waybill.WaybillNumber)
	assert.Contains(t, waybill.LabelReferenceBarcode, waybill.WaybillNumber)

	calls := mockAPI.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "orders", calls[0].Resource)
	assert.Equal(t, http.MethodPost, calls[0].Method)
}

func TestClient_SubmitOrder_APIError(t *testing.T) {
	mockAPI := pargo.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(testConfig(), mockAPI)

	_, err := client.SubmitOrder(context.Background(), &pargo.OrderRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shipper.ErrTransport))

	var serr *shipper.ShipperError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "gomedia_pargo", serr.Carrier)
	assert.Equal(t, http.StatusBadGateway, serr.StatusCode)
}

func TestClient_SubmitOrder_NumericWaybill(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		waybill string
		label   string
	}{
		{name: "integer", body: `{"data":{"waybillNumber":987654321}}`, waybill: "987654321"},
		{name: "zero", body: `{"data":{"waybillNumber":0}}`, waybill: "0"},
		{name: "numeric label", body: `{"data":{"waybillNumber":"W9","LabelReferenceBarcode":12345}}`, waybill: "W9", label: "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := pargo.NewMockAPIClient()
			mockAPI.OnSend = func(ctx context.Context, resource, method string, body interface{}) (*pargo.Response, error) {
				return &pargo.Response{StatusCode: http.StatusOK, Body: []byte(tt.body)}, nil
			}
			client := newTestClient(testConfig(), mockAPI)

			resp, err := client.SubmitOrder(context.Background(), &pargo.OrderRequest{})
			require.NoError(t, err)

			waybill, err := resp.Waybill()
			require.NoError(t, err)
			assert.Equal(t, tt.waybill, waybill.WaybillNumber)
			assert.Equal(t, tt.label, waybill.LabelReferenceBarcode)
		})
	}
}

func TestClient_SubmitOrder_NoWaybill(t *testing.T) {
	tests := []struct {
		name  string
		body  interface{}
		field string
	}{
		{name: "no data", body: map[string]interface{}{"errors": []string{"invalid point"}}, field: "data"},
		{name: "null data", body: map[string]interface{}{"data": nil}, field: "data"},
		{name: "empty waybill", body: map[string]interface{}{"data": map[string]string{"waybillNumber": ""}}, field: "data.waybillNumber"},
		{name: "null waybill", body: map[string]interface{}{"data": map[string]interface{}{"waybillNumber": nil}}, field: "data.waybillNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := pargo.NewMockAPIClient()
			mockAPI.OnSend = func(ctx context.Context, resource, method string, body interface{}) (*pargo.Response, error) {
				return pargo.JSONResponse(http.StatusOK, tt.body), nil
			}
			client := newTestClient(testConfig(), mockAPI)

			resp, err := client.SubmitOrder(context.Background(), &pargo.OrderRequest{})
			require.NoError(t, err)

			_, err = resp.Waybill()
			var appErr *pargo.ApplicationError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, pargo.RequestIDFromContext(context.Background()))

	ctx := pargo.WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", pargo.RequestIDFromContext(ctx))
}
