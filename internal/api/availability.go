package api

import (
	"net/http"
	"strings"

	"toran/internal/database"
	"toran/internal/datekey"
	"toran/internal/models"
	"toran/internal/schedule"
)

type datesResponse struct {
	BusinessID string                `json:"business_id"`
	Dates      []schedule.DateOption `json:"dates"`
	Selected   string                `json:"selected"`
}

type slotsResponse struct {
	BusinessID string   `json:"business_id"`
	Date       string   `json:"date"`
	Operating  bool     `json:"operating"`
	Slots      []string `json:"slots"`
}

type hoursResponse struct {
	BusinessID string              `json:"business_id"`
	Rows       []schedule.HoursRow `json:"rows"`
	Summary    []schedule.HoursRow `json:"summary"`
}

// handleDates enumerates the bookable dates inside the business's booking
// window, each flagged disabled when the day is closed or yields no slots.
// Only the date list is cached; Selected depends on the caller's ?selected
// parameter and is recomputed on every request.
func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	cacheKey := "avail:" + id + ":dates"
	var options []schedule.DateOption
	if !s.cache.Read(ctx, cacheKey, &options) {
		business, err := s.db.GetBusiness(ctx, id)
		if err == database.ErrNotFound {
			writeError(w, http.StatusNotFound, "business not found")
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to load business")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		options = schedule.EnumerateBookableDates(business.Schedule(), s.now())
		s.cache.Write(ctx, cacheKey, options)
	}

	writeJSON(w, http.StatusOK, datesResponse{
		BusinessID: id,
		Dates:      options,
		Selected:   schedule.DefaultDateSelection(options, r.URL.Query().Get("selected")),
	})
}

// handleSlots returns the free "HH:MM" values for one date, with already
// booked times subtracted.
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	dateKey := datekey.NormalizeDate(r.URL.Query().Get("date"))
	if dateKey == "" {
		writeError(w, http.StatusBadRequest, "missing or malformed date")
		return
	}

	cacheKey := "avail:" + id + ":slots:" + dateKey
	var cached slotsResponse
	if s.cache.Read(ctx, cacheKey, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	business, err := s.db.GetBusiness(ctx, id)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to load business")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	booked, err := s.db.BookedTimes(ctx, id, dateKey, "")
	if err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to load booked times")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sched := business.Schedule()
	weekday, _ := schedule.WeekdayKeyForDate(dateKey)
	_, operating := schedule.ResolveOperatingWindow(sched, weekday)

	resp := slotsResponse{
		BusinessID: id,
		Date:       dateKey,
		Operating:  operating,
		Slots:      schedule.AvailableSlots(sched, dateKey, booked),
	}
	if resp.Slots == nil {
		resp.Slots = []string{}
	}
	s.cache.Write(ctx, cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handleHours renders the weekly hours as display rows plus the grouped
// summary (consecutive days with identical hours collapse into one row).
func (s *Server) handleHours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	business, err := s.db.GetBusiness(ctx, id)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to load business")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sched := business.Schedule()
	writeJSON(w, http.StatusOK, hoursResponse{
		BusinessID: id,
		Rows:       schedule.BuildWeeklyHoursRows(sched.WeeklyHours),
		Summary:    schedule.WeeklyHoursSummary(sched.WeeklyHours),
	})
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := s.db.ListBusinesses(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list businesses")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if businesses == nil {
		businesses = []*models.Business{}
	}
	writeJSON(w, http.StatusOK, businesses)
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	business, err := s.db.GetBusiness(r.Context(), id)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to load business")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, business)
}

func (s *Server) handleUpsertBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))

	var business models.Business
	if err := decodeStrict(r, &business); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	business.ID = id
	if strings.TrimSpace(business.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing business name")
		return
	}

	if err := s.db.UpsertBusiness(ctx, &business); err != nil {
		s.logger.Error().Err(err).Str("business_id", id).Msg("Failed to upsert business")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Schedule changed, cached availability is stale.
	s.cache.Invalidate(ctx, id)
	writeJSON(w, http.StatusOK, business)
}
