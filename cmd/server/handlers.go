package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/o.rides/internal/booking"
	"github.com/Simplici0/o.rides/internal/fare"
	"github.com/Simplici0/o.rides/internal/money"
)

type quoteResponse struct {
	Breakdown    fare.Breakdown `json:"breakdown"`
	Summary      fare.Summary   `json:"summary"`
	DisplayTotal string         `json:"display_total"`
}

type bookingResponse struct {
	booking.Booking
	Summary      fare.Summary `json:"summary"`
	DisplayTotal string       `json:"display_total"`
}

type bookingListResponse struct {
	Query    string             `json:"query"`
	Bookings []booking.ListItem `json:"bookings"`
}

func newBookingResponse(b booking.Booking) bookingResponse {
	bd := b.Breakdown()
	return bookingResponse{
		Booking:      b,
		Summary:      bd.Summary(),
		DisplayTotal: money.Format(bd.FinalTotal()),
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	valid, err := s.auth.validateCredentials(email, r.FormValue("password"))
	if err != nil {
		s.log.Error("authentication error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bookings.Rates())
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBookingRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bd, err := s.bookings.Quote(req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Breakdown:    bd,
		Summary:      bd.Summary(),
		DisplayTotal: money.Format(bd.FinalTotal()),
	})
}

func (s *server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBookingRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.bookings.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/bookings/"+b.ID)
	writeJSON(w, http.StatusCreated, newBookingResponse(b))
}

func (s *server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingResponse(b))
}

func (s *server) handleBookingReceipt(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := writeReceipt(w, b, s.bookings.Rates().Location); err != nil {
		s.log.Error("write receipt", zap.String("booking_id", b.ID), zap.Error(err))
	}
}

func (s *server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCompleteRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.bookings.Complete(r.Context(), chi.URLParam(r, "id"), req.ActualDurationMinutes, req.TripEnd)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookingResponse(b))
}

func (s *server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.bookings.List(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Query: query, Bookings: items})
}

func (s *server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fare.ErrInvalidInput), errors.Is(err, booking.ErrPickupOutsideWindow):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrAlreadyCompleted), errors.Is(err, fare.ErrAlreadyReconciled):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
