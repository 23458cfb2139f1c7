package pargo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockCall records one Send invocation.
type MockCall struct {
	Resource string
	Method   string
	Body     interface{}
}

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnSend func(ctx context.Context, resource, method string, body interface{}) (*Response, error)

	mu    sync.Mutex
	calls []MockCall
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Send records the call and returns a mock response. POST /orders answers
// with a freshly generated waybill.
func (m *MockAPIClient) Send(ctx context.Context, resource, method string, body interface{}) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Resource: resource, Method: method, Body: body})
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &TransportError{StatusCode: http.StatusBadGateway, Body: "Simulated API error"}
	}

	if m.OnSend != nil {
		return m.OnSend(ctx, resource, method, body)
	}

	if resource == "orders" && method == http.MethodPost {
		waybill := "PGO" + strings.ToUpper(uuid.New().String()[:8])
		return JSONResponse(http.StatusOK, map[string]interface{}{
			"data": WaybillData{
				WaybillNumber:         waybill,
				LabelReferenceBarcode: fmt.Sprintf("https://labels.pargo.mock/%s.pdf", waybill),
			},
		}), nil
	}

	return JSONResponse(http.StatusOK, map[string]interface{}{"data": []interface{}{}}), nil
}

// Calls returns the recorded calls.
func (m *MockAPIClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of recorded calls.
func (m *MockAPIClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// JSONResponse builds a Response whose body is v encoded as JSON.
func JSONResponse(status int, v interface{}) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	}
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
