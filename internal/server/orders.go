package server

import (
	"net/http"
	"strconv"

	"github.com/tournevent/pargo/internal/hooks"
	"github.com/tournevent/pargo/internal/ordersync"
	"github.com/tournevent/pargo/pkg/shipper"
)

type orderSavedResponse struct {
	OrderID  uint `json:"order_id"`
	Attempts int  `json:"attempts"`
}

// handleOrderSaved receives the platform's order-save event and runs one
// guarded cycle of the registered handlers.
func (s *Server) handleOrderSaved(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	guard := ordersync.NewGuard()
	if err := s.hooks.FireOrderSaved(r.Context(), hooks.OrderSaved{OrderID: uint(id), Guard: guard}); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderSavedResponse{OrderID: uint(id), Attempts: guard.Attempts()})
}

type trackingResponse struct {
	Carrier      string `json:"carrier"`
	CarrierTitle string `json:"carrier_title"`
	Number       string `json:"number"`
	URL          string `json:"url"`
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := r.PathValue("number")

	track, err := s.tracks.FindTrackByNumber(ctx, number)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	carrier, err := s.registry.Get(track.CarrierCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var info *shipper.TrackingInfo
	if info, err = carrier.TrackingInfo(ctx, track.TrackNumber); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trackingResponse{
		Carrier:      info.Carrier,
		CarrierTitle: info.CarrierTitle,
		Number:       info.Number,
		URL:          info.URL,
	})
}
