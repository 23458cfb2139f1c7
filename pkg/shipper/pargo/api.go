package pargo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tournevent/pargo/pkg/shipper"
)

// APIClient defines the transport to the Pargo REST API.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Send issues one request against resource (e.g. "orders") and returns
	// the parsed JSON document. GET, POST and PUT are supported; only POST
	// and PUT carry body.
	Send(ctx context.Context, resource, method string, body interface{}) (*Response, error)
}

// Response is a parsed Pargo API response.
type Response struct {
	StatusCode int
	Header     http.Header
	// Body is the raw, non-empty JSON document returned by Pargo.
	Body json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// ============================================================================
// API Request/Response Types (match the Pargo "orders" resource)
// ============================================================================

// OrderRequest is the payload of POST /orders.
type OrderRequest struct {
	Warehouse     Warehouse     `json:"warehouse"`
	Consignee     Consignee     `json:"consignee"`
	Communication Communication `json:"communication"`
	Delivery      Delivery      `json:"delivery"`
	OrderData     OrderData     `json:"orderdata"`
	TransportData TransportData `json:"transportdata"`
}

// Warehouse identifies the shop's dispatch warehouse at Pargo.
type Warehouse struct {
	WarehouseCode string `json:"warehouseCode"`
}

// Consignee is the shopper collecting the parcel.
type Consignee struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	Suburb       string `json:"suburb"`
	PostalCode   string `json:"postalCode"`
	City         string `json:"city"`
	Language     string `json:"language"`
}

// Communication controls how Pargo notifies the consignee.
type Communication struct {
	InformBySMS int `json:"informBySMS"`
}

// Delivery names the pickup point the parcel goes to.
type Delivery struct {
	PargoPointCode string `json:"pargoPointCode"`
}

// OrderData carries optional return information.
type OrderData struct {
	ReturnWayBillNumber string `json:"returnWayBillNumber"`
	ProductName         string `json:"productName"`
}

// TransportData describes the parcel. Pargo accepts "0" placeholders for
// measurements the shop does not track.
type TransportData struct {
	Insurance         string `json:"insurance"`
	Dimensions        string `json:"dimensions"`
	Weight            string `json:"weight"`
	FinancialValue    string `json:"financialValue"`
	ShippersReference string `json:"shippersReference"`
}

// WaybillData is the "data" object of a successful POST /orders.
type WaybillData struct {
	WaybillNumber         string `json:"waybillNumber"`
	LabelReferenceBarcode string `json:"LabelReferenceBarcode"`
}

// UnmarshalJSON accepts waybill numbers and label references sent either as
// JSON strings or as JSON numbers.
func (d *WaybillData) UnmarshalJSON(b []byte) error {
	var raw struct {
		WaybillNumber         json.RawMessage `json:"waybillNumber"`
		LabelReferenceBarcode json.RawMessage `json:"LabelReferenceBarcode"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	number, err := scalarString(raw.WaybillNumber)
	if err != nil {
		return fmt.Errorf("decoding waybillNumber: %w", err)
	}
	label, err := scalarString(raw.LabelReferenceBarcode)
	if err != nil {
		return fmt.Errorf("decoding LabelReferenceBarcode: %w", err)
	}
	d.WaybillNumber = number
	d.LabelReferenceBarcode = label
	return nil
}

// scalarString returns a JSON string or number as text; absent and null
// values give "".
func scalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// OrderResponse is the response of POST /orders.
type OrderResponse struct {
	StatusCode int
	Raw        json.RawMessage
	Data       *WaybillData
}

// Waybill returns the issued waybill, or an *ApplicationError when the
// response is valid JSON without a data.waybillNumber.
func (r *OrderResponse) Waybill() (*WaybillData, error) {
	if r.Data == nil {
		return nil, &ApplicationError{Field: "data", Body: string(r.Raw)}
	}
	if r.Data.WaybillNumber == "" {
		return nil, &ApplicationError{Field: "data.waybillNumber", Body: string(r.Raw)}
	}
	return r.Data, nil
}

func newOrderResponse(resp *Response) *OrderResponse {
	out := &OrderResponse{StatusCode: resp.StatusCode, Raw: resp.Body}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return out
	}
	var data WaybillData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return out
	}
	out.Data = &data
	return out
}

// ============================================================================
// Errors
// ============================================================================

// TransportError reports a response that could not be read as a complete
// HTTP response: connection failures, malformed framing or a truncated body.
type TransportError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("invalid response from Pargo, status was: %d response was: %s", e.StatusCode, e.Body)
	if e.Cause != nil && e.Cause.Error() != e.Body {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Cause }

// Is matches shipper.ErrTransport.
func (e *TransportError) Is(target error) bool { return target == shipper.ErrTransport }

// ProtocolError reports a body that is not valid JSON or decodes to an
// empty value.
type ProtocolError struct {
	Body  string
	Cause error
}

func (e *ProtocolError) Error() string {
	return "invalid response from Pargo: " + e.Body
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error { return e.Cause }

// Is matches shipper.ErrProtocol.
func (e *ProtocolError) Is(target error) bool { return target == shipper.ErrProtocol }

// ApplicationError describes a well-formed response that lacks an expected
// field. It is informational: Send never returns it.
type ApplicationError struct {
	Field string
	Body  string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("pargo response has no %s: %s", e.Field, e.Body)
}
