package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	adapthttp "habits/internal/adapter/http"
	"habits/internal/adapter/memory"
	"habits/internal/app"
	"habits/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock repository (function-fields pattern)
// ---------------------------------------------------------------------------

type mockHabitRepo struct {
	createFn func(ctx context.Context, title string, createdAt time.Time, weekDays []int) (domain.HabitID, error)
	activeFn func(ctx context.Context, date time.Time, weekday int) ([]domain.Habit, error)
	dayFn    func(ctx context.Context, dayKey time.Time) (*domain.Day, error)
}

func (m *mockHabitRepo) CreateHabit(ctx context.Context, title string, createdAt time.Time, weekDays []int) (domain.HabitID, error) {
	if m.createFn != nil {
		return m.createFn(ctx, title, createdAt, weekDays)
	}
	return uuid.New(), nil
}

func (m *mockHabitRepo) FindHabitsActiveOn(ctx context.Context, date time.Time, weekday int) ([]domain.Habit, error) {
	if m.activeFn != nil {
		return m.activeFn(ctx, date, weekday)
	}
	return nil, nil
}

func (m *mockHabitRepo) FindDayByDate(ctx context.Context, dayKey time.Time) (*domain.Day, error) {
	if m.dayFn != nil {
		return m.dayFn(ctx, dayKey)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T, repo domain.HabitRepository, cal domain.Calendar) *httptest.Server {
	t.Helper()

	if repo == nil {
		repo = &mockHabitRepo{}
	}
	srv := adapthttp.New(app.NewHabitRegistrar(repo, cal), app.NewDayResolver(repo, cal), nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func postHabit(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/habits", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("expected Cache-Control no-store, got %q", resp.Header.Get("Cache-Control"))
	}

	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestCreateHabit(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{"valid", `{"title":"Drink water","weekDays":[1,3,5]}`, http.StatusCreated},
		{"empty weekdays", `{"title":"Someday","weekDays":[]}`, http.StatusCreated},
		{"duplicate weekdays", `{"title":"Stretch","weekDays":[2,2]}`, http.StatusCreated},
		{"empty title", `{"title":"","weekDays":[1]}`, http.StatusBadRequest},
		{"missing title", `{"weekDays":[1]}`, http.StatusBadRequest},
		{"weekday seven", `{"title":"Read","weekDays":[7]}`, http.StatusBadRequest},
		{"negative weekday", `{"title":"Read","weekDays":[-1]}`, http.StatusBadRequest},
		{"fractional weekday", `{"title":"Read","weekDays":[1.5]}`, http.StatusBadRequest},
		{"string weekday", `{"title":"Read","weekDays":["1"]}`, http.StatusBadRequest},
		{"missing weekdays", `{"title":"Read"}`, http.StatusBadRequest},
		{"unknown field", `{"title":"Read","weekDays":[1],"extra":true}`, http.StatusBadRequest},
		{"malformed json", `{"title":`, http.StatusBadRequest},
	}

	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postHabit(t, ts, tc.payload)
			if resp.StatusCode != tc.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("expected %d, got %d; body: %s", tc.wantStatus, resp.StatusCode, body)
			}
			body := decodeBody(t, resp)
			if tc.wantStatus == http.StatusBadRequest {
				if _, ok := body["error"]; !ok {
					t.Fatal("response missing 'error' field")
				}
			}
		})
	}
}

func TestCreateHabit_StorageFailure(t *testing.T) {
	repo := &mockHabitRepo{
		createFn: func(_ context.Context, _ string, _ time.Time, _ []int) (domain.HabitID, error) {
			return uuid.Nil, &domain.StorageError{Op: "create habit", Err: errors.New("db down")}
		},
	}
	ts := newTestServer(t, repo, domain.NewCalendar(time.UTC))

	resp := postHabit(t, ts, `{"title":"Read","weekDays":[0]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "internal error" {
		t.Fatalf("expected generic error message, got %v", body["error"])
	}
}

func TestCreateHabit_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	resp, err := http.Get(ts.URL + "/api/habits")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestDay_Invalid(t *testing.T) {
	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	for _, q := range []string{"", "?date=", "?date=tomorrow"} {
		resp, err := http.Get(ts.URL + "/api/day" + q)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, resp.StatusCode)
		}
		_ = resp.Body.Close()
	}
}

func TestDay_StorageFailure(t *testing.T) {
	repo := &mockHabitRepo{
		dayFn: func(_ context.Context, _ time.Time) (*domain.Day, error) {
			return nil, &domain.StorageError{Op: "find day", Err: errors.New("db down")}
		},
	}
	ts := newTestServer(t, repo, domain.NewCalendar(time.UTC))

	resp, err := http.Get(ts.URL + "/api/day?date=2026-02-11")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestDay_EmptyListsSerializeAsArrays(t *testing.T) {
	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	resp, err := http.Get(ts.URL + "/api/day?date=2026-02-11T00")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}
	if !bytes.Contains(raw, []byte(`"possibleHabits":[]`)) || !bytes.Contains(raw, []byte(`"completedHabits":[]`)) {
		t.Fatalf("expected empty arrays, got %s", raw)
	}
}

func TestCreateThenResolveDay(t *testing.T) {
	db := memory.New()
	monday := time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)
	cal := domain.NewCalendar(time.UTC).WithClock(func() time.Time { return monday })
	ts := newTestServer(t, db, cal)

	if resp := postHabit(t, ts, `{"title":"Read","weekDays":[0]}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var sunday struct {
		PossibleHabits []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"possibleHabits"`
		CompletedHabits []string `json:"completedHabits"`
	}
	resp, err := http.Get(ts.URL + "/api/day?date=2026-02-15T08:00:00Z")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if err := json.NewDecoder(resp.Body).Decode(&sunday); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sunday.PossibleHabits) != 1 || sunday.PossibleHabits[0].Title != "Read" {
		t.Fatalf("expected Read on Sunday, got %+v", sunday.PossibleHabits)
	}

	id, err := uuid.Parse(sunday.PossibleHabits[0].ID)
	if err != nil {
		t.Fatalf("habit id: %v", err)
	}
	dayKey := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	if err := db.RecordCompletion(context.Background(), dayKey, id); err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}

	resp2, err := http.Get(ts.URL + "/api/day?date=2026-02-15")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp2.Body.Close() //nolint:errcheck
	body := decodeBody(t, resp2)
	completed, _ := body["completedHabits"].([]any)
	if len(completed) != 1 || completed[0] != id.String() {
		t.Fatalf("expected completed [%s], got %v", id, body["completedHabits"])
	}

	resp3, err := http.Get(ts.URL + "/api/day?date=2026-02-09")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp3.Body.Close() //nolint:errcheck
	body = decodeBody(t, resp3)
	if possible, _ := body["possibleHabits"].([]any); len(possible) != 0 {
		t.Fatalf("expected no habits on Monday, got %v", possible)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	if resp := postHabit(t, ts, `{"title":"Read","weekDays":[0]}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	raw, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(raw, []byte("habits_registered_total 1")) {
		t.Fatalf("expected habits_registered_total 1 in metrics output")
	}
	if !bytes.Contains(raw, []byte("http_request_duration_seconds")) {
		t.Fatalf("expected request duration histogram in metrics output")
	}
}

func TestMetricsFoldUnknownPaths(t *testing.T) {
	ts := newTestServer(t, nil, domain.NewCalendar(time.UTC))

	for i := 0; i < 50; i++ {
		resp, err := http.Get(fmt.Sprintf("%s/junk-%d", ts.URL, i))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	raw, _ := io.ReadAll(resp.Body)

	series := 0
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "http_request_duration_seconds_count{") {
			if strings.Contains(line, "junk") {
				t.Fatalf("raw path leaked into metrics: %s", line)
			}
			if strings.Contains(line, `path="other"`) {
				series++
			}
		}
	}
	if series != 1 {
		t.Fatalf("expected unknown paths in 1 series, got %d", series)
	}
}
