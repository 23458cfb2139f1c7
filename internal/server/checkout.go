package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tournevent/pargo/internal/checkout"
	"github.com/tournevent/pargo/pkg/shipper"
)

type rateResponse struct {
	Code         string `json:"code"`
	Carrier      string `json:"carrier"`
	CarrierTitle string `json:"carrier_title"`
	Method       string `json:"method"`
	MethodTitle  string `json:"method_title"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
}

type ratesResponse struct {
	Rates  []rateResponse `json:"rates"`
	Errors []string       `json:"errors,omitempty"`
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &shipper.RateRequest{
		Destination: shipper.Address{
			CountryCode: q.Get("country"),
			PostalCode:  q.Get("postcode"),
			City:        q.Get("city"),
		},
	}
	if items := q.Get("items"); items != "" {
		n, err := strconv.Atoi(items)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "items must be a number"})
			return
		}
		req.ItemCount = n
	}

	rates, errs := s.registry.CollectAllRates(r.Context(), req)

	resp := ratesResponse{Rates: make([]rateResponse, 0, len(rates))}
	for _, rate := range rates {
		resp.Rates = append(resp.Rates, rateResponse{
			Code:         rate.Code(),
			Carrier:      rate.Carrier,
			CarrierTitle: rate.CarrierTitle,
			Method:       rate.Method,
			MethodTitle:  rate.MethodTitle,
			Price:        rate.Price.Amount.StringFixed(2),
			Currency:     rate.Price.Currency,
		})
	}
	for _, err := range errs {
		if errors.Is(err, shipper.ErrCarrierDisabled) {
			continue
		}
		resp.Errors = append(resp.Errors, err.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

type startSessionRequest struct {
	QuoteID string `json:"quote_id"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON: " + err.Error()})
		return
	}

	session, err := s.checkout.StartSession(r.Context(), req.QuoteID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handlePickupPoint(w http.ResponseWriter, r *http.Request) {
	var point shipper.PickupPoint
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON: " + err.Error()})
		return
	}

	session, err := s.checkout.SelectPickupPoint(r.Context(), r.PathValue("session"), point)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	session, err := s.checkout.Session(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	html, err := checkout.Widget(s.pointURL, session)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

type shippingMethodRequest struct {
	SessionID      string               `json:"session_id"`
	ShippingMethod string               `json:"shipping_method"`
	Pargo          *shipper.PickupPoint `json:"pargo,omitempty"`
}

type updateSection struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

// stepResponse mirrors the storefront's one-page checkout step protocol.
type stepResponse struct {
	GotoSection   string        `json:"goto_section"`
	UpdateSection updateSection `json:"update_section"`
}

func (s *Server) handleShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req shippingMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON: " + err.Error()})
		return
	}

	ctx := r.Context()
	err := s.checkout.ConfirmShippingMethod(ctx, req.SessionID, req.ShippingMethod, req.Pargo)

	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		html := verr.HTML
		if session, serr := s.checkout.Session(ctx, req.SessionID); serr == nil {
			if widget, werr := checkout.Widget(s.pointURL, session); werr == nil {
				html += widget
			}
		}
		writeJSON(w, http.StatusOK, stepResponse{
			GotoSection:   "shipping_method",
			UpdateSection: updateSection{Name: "shipping-method", HTML: html},
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stepResponse{
		GotoSection:   "payment",
		UpdateSection: updateSection{Name: "payment-method"},
	})
}
