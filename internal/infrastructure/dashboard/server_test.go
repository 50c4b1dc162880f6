package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)            {}
func (nopLogger) Info(string, ...any)             {}
func (nopLogger) Warn(string, ...any)             {}
func (nopLogger) Error(string, ...any)            {}
func (l nopLogger) With(...any) output.LoggerPort { return l }
func (nopLogger) Close() error                    { return nil }

type memStore struct {
	reports []entity.RunReport
	listErr error
}

func (m *memStore) Save(_ context.Context, r entity.RunReport) error {
	m.reports = append(m.reports, r)
	return nil
}

func (m *memStore) List(context.Context) ([]entity.RunReport, error) {
	return m.reports, m.listErr
}

func (m *memStore) Get(_ context.Context, id string) (*entity.RunReport, error) {
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, errors.New("not found")
}

func storedReport() entity.RunReport {
	r := entity.NewRunReport(entity.NewLocation("Rome, Italy"), entity.DefaultAssumptions())
	r.Metrics = entity.ValidMetrics(6120)
	r.Seal(entity.RunStateCompleted, "")
	return *r
}

func TestHealthz(t *testing.T) {
	srv := New(&memStore{}, "", nopLogger{})
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestListReports(t *testing.T) {
	store := &memStore{reports: []entity.RunReport{storedReport(), storedReport()}}
	srv := New(store, "", nopLogger{})
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []entity.RunReport
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d reports, want 2", len(got))
	}
}

func TestListReportsStoreError(t *testing.T) {
	srv := New(&memStore{listErr: errors.New("backend down")}, "", nopLogger{})
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	report := storedReport()
	srv := New(&memStore{reports: []entity.RunReport{report}}, "", nopLogger{})
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+report.ID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got entity.RunReport
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.ID != report.ID {
		t.Errorf("got report %s, want %s", got.ID, report.ID)
	}
}

func TestGetReportNotFound(t *testing.T) {
	srv := New(&memStore{}, "", nopLogger{})
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/no-such-id", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
