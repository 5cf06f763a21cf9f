package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/scheduler"
)

// fakeMonitor records the last calls so handler tests can assert the
// translation from wire requests to scheduler operations.
type fakeMonitor struct {
	snap       scheduler.Snapshot
	status     scheduler.Status
	triggerErr error

	criteria *domain.FilterCriteria
	metric   domain.SortMetric
	column   domain.Column
	clickDir domain.SortDirection
	bankroll float64
}

func (m *fakeMonitor) Snapshot() scheduler.Snapshot { return m.snap }
func (m *fakeMonitor) Status() scheduler.Status     { return m.status }
func (m *fakeMonitor) Trigger(context.Context) error {
	return m.triggerErr
}
func (m *fakeMonitor) SetCriteria(_ context.Context, c domain.FilterCriteria) {
	m.criteria = &c
}
func (m *fakeMonitor) SetMetric(_ context.Context, metric domain.SortMetric) {
	m.metric = metric
}
func (m *fakeMonitor) ClickColumn(_ context.Context, col domain.Column) domain.SortDirection {
	m.column = col
	return m.clickDir
}
func (m *fakeMonitor) SetBankroll(_ context.Context, bankroll float64) {
	m.bankroll = bankroll
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListReturnsEmptyRowsNotNull(t *testing.T) {
	m := &fakeMonitor{snap: scheduler.Snapshot{CycleID: "c1"}}
	h := NewOpportunityHandler(m, testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"rows":[]`) {
		t.Fatalf("body should contain empty rows array, got %s", rec.Body.String())
	}
}

func TestRefreshInFlightIsNotAnError(t *testing.T) {
	m := &fakeMonitor{
		triggerErr: domain.ErrScanInFlight,
		status:     scheduler.Status{State: "scanning"},
	}
	h := NewOpportunityHandler(m, testLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var body struct {
		Started bool   `json:"started"`
		State   string `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Started {
		t.Fatal("started should be false when a scan is in flight")
	}
	if body.State != "scanning" {
		t.Fatalf("state = %q, want scanning", body.State)
	}
}

func TestSetFiltersDefaultsToIncludeLive(t *testing.T) {
	m := &fakeMonitor{}
	h := NewOpportunityHandler(m, testLogger())

	body := strings.NewReader(`{"sports":["NBA"],"min_net_pct":1.5}`)
	rec := httptest.NewRecorder()
	h.SetFilters(rec, httptest.NewRequest(http.MethodPut, "/api/filters", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if m.criteria == nil {
		t.Fatal("SetCriteria was not called")
	}
	if !m.criteria.IncludeLive {
		t.Fatal("omitted include_live should default to true")
	}
	if m.criteria.MinNetPct != 1.5 {
		t.Fatalf("MinNetPct = %v, want 1.5", m.criteria.MinNetPct)
	}
	if len(m.criteria.Sports) != 1 || m.criteria.Sports[0] != "NBA" {
		t.Fatalf("Sports = %v, want [NBA]", m.criteria.Sports)
	}
}

func TestSetFiltersCanExcludeLive(t *testing.T) {
	m := &fakeMonitor{}
	h := NewOpportunityHandler(m, testLogger())

	body := strings.NewReader(`{"include_live":false}`)
	rec := httptest.NewRecorder()
	h.SetFilters(rec, httptest.NewRequest(http.MethodPut, "/api/filters", body))

	if m.criteria == nil {
		t.Fatal("SetCriteria was not called")
	}
	if m.criteria.IncludeLive {
		t.Fatal("include_live=false should be honored")
	}
}

func TestSetSortColumnClickReportsDirection(t *testing.T) {
	m := &fakeMonitor{clickDir: domain.SortAscending}
	h := NewOpportunityHandler(m, testLogger())

	body := strings.NewReader(`{"column":"time"}`)
	rec := httptest.NewRecorder()
	h.SetSort(rec, httptest.NewRequest(http.MethodPut, "/api/sort", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if m.column != domain.Column("time") {
		t.Fatalf("column = %q, want time", m.column)
	}
	if !strings.Contains(rec.Body.String(), `"direction":"asc"`) {
		t.Fatalf("body = %s, want asc direction", rec.Body.String())
	}
}

func TestSetSortMetricSwitch(t *testing.T) {
	m := &fakeMonitor{}
	h := NewOpportunityHandler(m, testLogger())

	body := strings.NewReader(`{"metric":"gross"}`)
	rec := httptest.NewRecorder()
	h.SetSort(rec, httptest.NewRequest(http.MethodPut, "/api/sort", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if m.metric != domain.SortMetric("gross") {
		t.Fatalf("metric = %q, want gross", m.metric)
	}
}

func TestSetSortRequiresMetricOrColumn(t *testing.T) {
	h := NewOpportunityHandler(&fakeMonitor{}, testLogger())

	rec := httptest.NewRecorder()
	h.SetSort(rec, httptest.NewRequest(http.MethodPut, "/api/sort", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSetBankrollRejectsNonPositive(t *testing.T) {
	m := &fakeMonitor{}
	h := NewOpportunityHandler(m, testLogger())

	rec := httptest.NewRecorder()
	h.SetBankroll(rec, httptest.NewRequest(http.MethodPut, "/api/bankroll", strings.NewReader(`{"bankroll":-5}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if m.bankroll != 0 {
		t.Fatal("SetBankroll should not be called for invalid input")
	}
}

func TestStatusAggregatesWorstSeverity(t *testing.T) {
	m := &fakeMonitor{
		snap: scheduler.Snapshot{
			Meta: domain.ScanMeta{
				Sources: map[string]domain.SourceStatus{
					"polymarket": domain.StatusOK,
					"sportsbook": domain.StatusQuotaExceeded,
				},
			},
		},
	}
	h := NewStatusHandler(m, "monitor")

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"overall_severity":"error"`) {
		t.Fatalf("body = %s, want overall_severity error", rec.Body.String())
	}
}
