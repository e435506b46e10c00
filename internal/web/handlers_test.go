package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goprod/enrich-worker/internal/db"
	"github.com/goprod/enrich-worker/internal/enrich"
)

type fakeRunner struct {
	result *enrich.Result
	err    error
	last   enrich.Request
}

func (f *fakeRunner) Run(ctx context.Context, req enrich.Request) (*enrich.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeQueueAdmin struct {
	enqueueID  uuid.UUID
	enqueueErr error
	counts     *db.StatusCounts
	countsErr  error
}

func (f *fakeQueueAdmin) Enqueue(ctx context.Context, companyID, artistID uuid.UUID, priority string) (uuid.UUID, error) {
	return f.enqueueID, f.enqueueErr
}

func (f *fakeQueueAdmin) Counts(ctx context.Context, companyID uuid.UUID) (*db.StatusCounts, error) {
	return f.counts, f.countsErr
}

func doRequest(t *testing.T, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	var parsed map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("parsing response %q: %v", rec.Body.String(), err)
	}
	return rec, parsed
}

func TestProcessQueue(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name       string
		body       string
		runner     *fakeRunner
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "missing company_id",
			body:       `{}`,
			runner:     &fakeRunner{},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"ok": false, "error": "company_id required"},
		},
		{
			name:       "invalid company_id",
			body:       `{"company_id": "not-a-uuid"}`,
			runner:     &fakeRunner{},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"ok": false, "error": "invalid company_id"},
		},
		{
			name:       "invalid JSON",
			body:       `{`,
			runner:     &fakeRunner{},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"ok": false, "error": "invalid JSON"},
		},
		{
			name:       "empty batch",
			body:       `{"company_id": "` + companyID.String() + `"}`,
			runner:     &fakeRunner{result: &enrich.Result{Locked: 0}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"ok": true, "locked": float64(0)},
		},
		{
			name:       "processed batch",
			body:       `{"company_id": "` + companyID.String() + `", "batch_size": 2}`,
			runner:     &fakeRunner{result: &enrich.Result{Locked: 2, Processed: 2, Succeeded: 1, Failed: 1}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"ok": true, "processed": float64(2)},
		},
		{
			name:       "claim failure",
			body:       `{"company_id": "` + companyID.String() + `"}`,
			runner:     &fakeRunner{err: errors.New("claiming batch: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"ok": false, "error": "claiming batch: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(tt.runner, &fakeQueueAdmin{})
			rec, parsed := doRequest(t, h.ProcessQueue, http.MethodPost, "/queue-stats", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			for key, want := range tt.wantBody {
				if got := parsed[key]; got != want {
					t.Errorf("body[%q] = %v, want %v", key, got, want)
				}
			}
		})
	}
}

func TestProcessQueuePassesOptions(t *testing.T) {
	companyID := uuid.New()
	runner := &fakeRunner{result: &enrich.Result{Locked: 1, Processed: 1, Succeeded: 1}}
	h := NewHandlers(runner, &fakeQueueAdmin{})

	body := `{"company_id": "` + companyID.String() + `", "batch_size": 5, "dry_run": true}`
	doRequest(t, h.ProcessQueue, http.MethodPost, "/queue-stats", body)

	if runner.last.CompanyID != companyID {
		t.Errorf("CompanyID = %s, want %s", runner.last.CompanyID, companyID)
	}
	if runner.last.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5", runner.last.BatchSize)
	}
	if !runner.last.DryRun {
		t.Error("DryRun not passed through")
	}
}

func TestEnqueue(t *testing.T) {
	companyID := uuid.New()
	artistID := uuid.New()
	queuedID := uuid.New()

	tests := []struct {
		name       string
		body       string
		queue      *fakeQueueAdmin
		wantStatus int
		wantQueued any
	}{
		{
			name:       "queued",
			body:       `{"company_id": "` + companyID.String() + `", "artist_id": "` + artistID.String() + `"}`,
			queue:      &fakeQueueAdmin{enqueueID: queuedID},
			wantStatus: http.StatusOK,
			wantQueued: true,
		},
		{
			name:       "already queued",
			body:       `{"company_id": "` + companyID.String() + `", "artist_id": "` + artistID.String() + `"}`,
			queue:      &fakeQueueAdmin{enqueueID: uuid.Nil},
			wantStatus: http.StatusOK,
			wantQueued: false,
		},
		{
			name:       "missing company",
			body:       `{"artist_id": "` + artistID.String() + `"}`,
			queue:      &fakeQueueAdmin{},
			wantStatus: http.StatusBadRequest,
			wantQueued: nil,
		},
		{
			name:       "invalid artist",
			body:       `{"company_id": "` + companyID.String() + `", "artist_id": "nope"}`,
			queue:      &fakeQueueAdmin{},
			wantStatus: http.StatusBadRequest,
			wantQueued: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(&fakeRunner{}, tt.queue)
			rec, parsed := doRequest(t, h.Enqueue, http.MethodPost, "/queue-stats/enqueue", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := parsed["queued"]; got != tt.wantQueued {
				t.Errorf("queued = %v, want %v", got, tt.wantQueued)
			}
		})
	}
}

func TestQueueStatus(t *testing.T) {
	companyID := uuid.New()
	queue := &fakeQueueAdmin{counts: &db.StatusCounts{Pending: 3, Locked: 1, Done: 10, Error: 2}}
	h := NewHandlers(&fakeRunner{}, queue)

	rec, parsed := doRequest(t, h.QueueStatus, http.MethodGet, "/queue-stats/status?company_id="+companyID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := map[string]float64{"pending": 3, "locked": 1, "done": 10, "error": 2}
	for key, val := range want {
		if got := parsed[key]; got != val {
			t.Errorf("%s = %v, want %v", key, got, val)
		}
	}
}

func TestQueueStatusMissingCompany(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, &fakeQueueAdmin{})
	rec, _ := doRequest(t, h.QueueStatus, http.MethodGet, "/queue-stats/status", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := NewHandlers(&fakeRunner{}, &fakeQueueAdmin{})
	rec, parsed := doRequest(t, h.Health, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || parsed["ok"] != true {
		t.Errorf("health = %d %v, want 200 ok", rec.Code, parsed)
	}
}
