package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toran/internal/booking"
	"toran/internal/database"
	"toran/internal/models"
	"toran/internal/schedule"
)

const testAPIKey = "valid-key"

// fixedNow pins "today" to Monday 2025-01-06 so window math is stable.
func fixedNow() time.Time {
	return time.Date(2025, 1, 6, 8, 0, 0, 0, time.Local)
}

type testEnv struct {
	server *httptest.Server
	db     *database.DB
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := booking.NewService(db, logger, fixedNow)
	srv := NewServer(":0", db, svc, nil, testAPIKey, 1000, &logger)
	srv.now = fixedNow

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, db: db}
}

func (e *testEnv) seedBusiness(t *testing.T, id string, autoApprove bool) {
	t.Helper()
	window := 14
	b := &models.Business{
		ID:          id,
		Name:        "Test Salon",
		AutoApprove: autoApprove,
		WeeklyHours: map[string]schedule.RawDayHours{
			"monday":  {Open: "09:00", Close: "12:00"},
			"tuesday": {Open: "09:00", Close: "12:00"},
		},
		BookingWindowDays: &window,
	}
	require.NoError(t, e.db.UpsertBusiness(context.Background(), b))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHandleDates(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	resp, err := http.Get(env.server.URL + "/api/businesses/biz-1/dates")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body datesResponse
	decodeJSON(t, resp, &body)

	require.Len(t, body.Dates, 14)
	assert.Equal(t, "2025-01-06", body.Dates[0].Value)
	assert.False(t, body.Dates[0].Disabled, "Monday is open")
	assert.True(t, body.Dates[2].Disabled, "Wednesday has no hours")
	assert.Equal(t, "2025-01-06", body.Selected)
}

func TestHandleDates_UnknownBusiness(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.server.URL + "/api/businesses/nope/dates")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleSlots(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	resp, err := http.Get(env.server.URL + "/api/businesses/biz-1/slots?date=2025-01-06")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body slotsResponse
	decodeJSON(t, resp, &body)
	assert.True(t, body.Operating)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, body.Slots)

	// Legacy display format normalizes to the same date.
	resp, err = http.Get(env.server.URL + "/api/businesses/biz-1/slots?date=06.01.2025")
	require.NoError(t, err)
	var legacy slotsResponse
	decodeJSON(t, resp, &legacy)
	assert.Equal(t, body.Slots, legacy.Slots)

	// Closed day: operating false, empty slots.
	resp, err = http.Get(env.server.URL + "/api/businesses/biz-1/slots?date=2025-01-08")
	require.NoError(t, err)
	var closed slotsResponse
	decodeJSON(t, resp, &closed)
	assert.False(t, closed.Operating)
	assert.Empty(t, closed.Slots)

	resp, err = http.Get(env.server.URL + "/api/businesses/biz-1/slots?date=garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	// Create.
	resp := postJSON(t, env.server.URL+"/api/bookings", createBookingRequest{
		BusinessID: "biz-1", UserID: "u1", UserName: "Dana",
		Date: "2025-01-06", Time: "09:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Booking
	decodeJSON(t, resp, &created)
	assert.Equal(t, models.StatusPending, created.Status)

	// The taken slot disappears from availability.
	resp, err := http.Get(env.server.URL + "/api/businesses/biz-1/slots?date=2025-01-06")
	require.NoError(t, err)
	var slots slotsResponse
	decodeJSON(t, resp, &slots)
	assert.NotContains(t, slots.Slots, "09:30")

	// A second booking of the same slot conflicts.
	resp = postJSON(t, env.server.URL+"/api/bookings", createBookingRequest{
		BusinessID: "biz-1", UserID: "u2", UserName: "Noa",
		Date: "2025-01-06", Time: "09:30",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Approve needs the API key.
	req, _ := http.NewRequest(http.MethodPost, env.server.URL+"/api/bookings/"+created.ID+"/approve", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var approved models.Booking
	decodeJSON(t, resp, &approved)
	assert.Equal(t, models.StatusApproved, approved.Status)

	// Reschedule onto its own slot succeeds (not self-blocked).
	resp = postJSON(t, env.server.URL+"/api/bookings/"+created.ID+"/reschedule",
		rescheduleRequest{Date: "2025-01-06", Time: "09:30"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var moved models.Booking
	decodeJSON(t, resp, &moved)
	assert.Equal(t, models.StatusRescheduled, moved.Status)

	// Cancel, then cancel again: terminal status conflicts.
	resp = postJSON(t, env.server.URL+"/api/bookings/"+created.ID+"/cancel", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, env.server.URL+"/api/bookings/"+created.ID+"/cancel", struct{}{})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The cancelled slot is free again.
	resp, err = http.Get(env.server.URL + "/api/businesses/biz-1/slots?date=2025-01-06")
	require.NoError(t, err)
	decodeJSON(t, resp, &slots)
	assert.Contains(t, slots.Slots, "09:30")
}

func TestCreateBooking_Validation(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	tests := []struct {
		name       string
		body       createBookingRequest
		wantStatus int
	}{
		{
			name:       "missing user",
			body:       createBookingRequest{BusinessID: "biz-1", Date: "2025-01-06", Time: "09:00"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing date and time",
			body:       createBookingRequest{BusinessID: "biz-1", UserID: "u1"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "closed day",
			body:       createBookingRequest{BusinessID: "biz-1", UserID: "u1", Date: "2025-01-08", Time: "09:00"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "off-grid time",
			body:       createBookingRequest{BusinessID: "biz-1", UserID: "u1", Date: "2025-01-06", Time: "09:10"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown business",
			body:       createBookingRequest{BusinessID: "nope", UserID: "u1", Date: "2025-01-06", Time: "09:00"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, env.server.URL+"/api/bookings", tt.body)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCreateBooking_UnknownField(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	body := `{"business_id":"biz-1","user_id":"u1","user_name":"Dana","date":"2025-01-06","time":"09:00","priority":"high"}`
	resp, err := http.Post(env.server.URL+"/api/bookings", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unrecognized fields are rejected")
}

func TestHandleListBookings(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", true)

	resp := postJSON(t, env.server.URL+"/api/bookings", createBookingRequest{
		BusinessID: "biz-1", UserID: "u1", UserName: "Dana",
		Date: "2025-01-06", Time: "09:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/businesses/biz-1/bookings", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var body listBookingsResponse
	decodeJSON(t, resp, &body)
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, models.StatusApproved, body.Bookings[0].Status, "auto-approve business")
	assert.False(t, body.Bookings[0].Elapsed, "09:00 slot has not passed at the pinned 08:00")
	require.NotNil(t, body.Bookings[0].HoursUntil)
	assert.InDelta(t, 1.0, *body.Bookings[0].HoursUntil, 0.01, "09:00 booking is one hour out at 08:00")
	assert.Equal(t, map[string]int{models.StatusApproved: 1}, body.Counts)
}

func TestHandleListBookings_Xlsx(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/businesses/biz-1/bookings?format=xlsx", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestHandleHours(t *testing.T) {
	env := setupTestServer(t)
	env.seedBusiness(t, "biz-1", false)

	resp, err := http.Get(env.server.URL + "/api/businesses/biz-1/hours")
	require.NoError(t, err)

	var body hoursResponse
	decodeJSON(t, resp, &body)
	require.Len(t, body.Rows, 7)
	// Monday and Tuesday share hours and collapse into one summary row.
	require.Len(t, body.Summary, 1)
	assert.Equal(t, "Monday – Tuesday", body.Summary[0].Label)
}

func TestNewServer_EmptyAPIKeyWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := booking.NewService(db, logger, fixedNow)
	NewServer(":0", db, svc, nil, "", 1000, &logger)

	assert.Contains(t, buf.String(), "API key is empty")
}

func TestHandleUpsertBusiness(t *testing.T) {
	env := setupTestServer(t)

	payload := models.Business{Name: "New Place"}
	data, _ := json.Marshal(payload)

	req, _ := http.NewRequest(http.MethodPut, env.server.URL+"/api/businesses/biz-9", bytes.NewReader(data))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodPut, env.server.URL+"/api/businesses/biz-9", bytes.NewReader(data))
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(env.server.URL + "/api/businesses/biz-9")
	require.NoError(t, err)
	var got models.Business
	decodeJSON(t, resp, &got)
	assert.Equal(t, "New Place", got.Name)
}
