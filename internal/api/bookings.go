package api

import (
	"errors"
	"net/http"
	"strings"

	"toran/internal/booking"
	"toran/internal/database"
	"toran/internal/datekey"
	"toran/internal/export"
	"toran/internal/models"
)

type createBookingRequest struct {
	BusinessID string `json:"business_id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	UserPhone  string `json:"user_phone"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type bookingItem struct {
	*models.Booking
	Elapsed bool `json:"elapsed"`
	// HoursUntil is the signed distance to the slot, for cancellation-window
	// display. Omitted when the stored date or time cannot be resolved.
	HoursUntil *float64 `json:"hours_until,omitempty"`
}

type listBookingsResponse struct {
	BusinessID string         `json:"business_id"`
	Bookings   []bookingItem  `json:"bookings"`
	Counts     map[string]int `json:"counts"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createBookingRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.BusinessID = strings.TrimSpace(req.BusinessID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.UserName = strings.TrimSpace(req.UserName)
	if req.BusinessID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	b, err := s.booking.Create(ctx, booking.CreateRequest{
		BusinessID: req.BusinessID,
		UserID:     req.UserID,
		UserName:   req.UserName,
		UserPhone:  strings.TrimSpace(req.UserPhone),
		Date:       req.Date,
		Time:       req.Time,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	b, err := s.db.GetBooking(r.Context(), id)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	var req rescheduleRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	b, err := s.booking.Reschedule(ctx, id, req.Date, req.Time)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	b, err := s.booking.Cancel(ctx, id)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	b, err := s.booking.Approve(r.Context(), strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleListBookings returns a business's bookings with per-status counts.
// With ?format=xlsx the same list is streamed as a spreadsheet.
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	bookings, err := s.db.ListBookingsByBusiness(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to list bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		s.writeBookingsWorkbook(w, id, bookings)
		return
	}

	counts, err := s.db.CountBookingsByStatus(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to count bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, listBookingsResponse{
		BusinessID: id,
		Bookings:   s.annotateBookings(bookings),
		Counts:     counts,
	})
}

func (s *Server) handleUserBookings(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	bookings, err := s.db.ListBookingsByUser(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("Failed to list user bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s.annotateBookings(bookings))
}

func (s *Server) annotateBookings(bookings []*models.Booking) []bookingItem {
	now := s.now()
	items := make([]bookingItem, 0, len(bookings))
	for _, b := range bookings {
		item := bookingItem{Booking: b, Elapsed: b.IsElapsed(now)}
		if hours, ok := datekey.HoursUntil(b.Date, b.Time, now); ok {
			item.HoursUntil = &hours
		}
		items = append(items, item)
	}
	return items
}

func (s *Server) writeBookingsWorkbook(w http.ResponseWriter, businessID string, bookings []*models.Booking) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		`attachment; filename="bookings_`+businessID+`_`+s.now().Format("20060102")+`.xlsx"`)
	if err := export.WriteBookingsWorkbook(w, bookings); err != nil {
		s.logger.Error().Err(err).Str("business_id", businessID).Msg("Failed to export bookings")
	}
}

// writeBookingError maps service and store errors onto HTTP statuses.
func (s *Server) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, booking.ErrSlotTaken),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case booking.IsRejection(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Booking operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
