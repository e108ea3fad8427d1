package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/store"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, log.New(io.Discard))
	}
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %s: %v", data, err)
	}
	return body
}

func TestSimulate(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, "POST", ts.URL+"/v1/simulate", `{"lines": ["R1C", "CR1"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}
	var run RunResponse
	if err := json.Unmarshal(data, &run); err != nil {
		t.Fatal(err)
	}
	if run.Result != "B,A" {
		t.Errorf("result = %q, want B,A", run.Result)
	}
	if run.Report == nil || run.Report.FinalTick != 6 {
		t.Errorf("report = %+v", run.Report)
	}
	if resp.Header.Get("Location") != "/v1/runs/"+run.ID {
		t.Errorf("Location = %q", resp.Header.Get("Location"))
	}

	resp, data = do(t, "GET", ts.URL+"/v1/runs/"+run.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, body %s", resp.StatusCode, data)
	}
	var got RunResponse
	_ = json.Unmarshal(data, &got)
	if got.ID != run.ID || got.Result != "B,A" {
		t.Errorf("stored run = %+v", got)
	}
}

func TestSimulateInputText(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, "POST", ts.URL+"/v1/simulate", `{"input": "R0X\nR0\n"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}
	var run RunResponse
	_ = json.Unmarshal(data, &run)
	if run.Result != "" || run.Report.State != "malformed" {
		t.Errorf("malformed run = %+v", run)
	}
	if len(run.Report.Warnings) != 1 || run.Report.Warnings[0].Remaining != "X" {
		t.Errorf("warnings = %+v", run.Report.Warnings)
	}
}

func TestSimulateBadRequests(t *testing.T) {
	ts := newTestServer(t, Config{
		Limits:       errors.LineLimits{MaxLines: 2},
		MaxBodyBytes: 64,
	})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `lines: C`},
		{"unknown field", `{"lines": ["C"], "bogus": 1}`},
		{"no lines", `{"lines": []}`},
		{"too many lines", `{"lines": ["C", "C", "C"]}`},
		{"body too large", `{"lines": ["` + strings.Repeat("C", 100) + `"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := do(t, "POST", ts.URL+"/v1/simulate", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", resp.StatusCode, data)
			}
			if body := decodeError(t, data); body.Error.Code != errors.ErrCodeInvalidInput {
				t.Errorf("code = %s", body.Error.Code)
			}
		})
	}
}

func TestGetRunErrors(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, data := do(t, "GET", ts.URL+"/v1/runs/"+uuid.NewString(), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing run status = %d", resp.StatusCode)
	}
	if body := decodeError(t, data); body.Error.Code != errors.ErrCodeRunNotFound {
		t.Errorf("code = %s", body.Error.Code)
	}

	resp, _ = do(t, "GET", ts.URL+"/v1/runs/not-a-uuid", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid id status = %d", resp.StatusCode)
	}

	resp, data = do(t, "GET", ts.URL+"/nowhere", "")
	if resp.StatusCode != http.StatusNotFound || decodeError(t, data).Error.Code != errors.ErrCodeNotFound {
		t.Errorf("unknown route: status %d body %s", resp.StatusCode, data)
	}
}

func TestListRuns(t *testing.T) {
	ts := newTestServer(t, Config{})
	for _, body := range []string{`{"lines": ["C"]}`, `{"lines": ["R0"]}`, `{"lines": ["R1"]}`} {
		if resp, data := do(t, "POST", ts.URL+"/v1/simulate", body); resp.StatusCode != http.StatusCreated {
			t.Fatalf("simulate: %d %s", resp.StatusCode, data)
		}
	}

	resp, data := do(t, "GET", ts.URL+"/v1/runs?limit=2", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list struct {
		Runs []RunResponse `json:"runs"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(list.Runs))
	}
	if src := list.Runs[0].Report.Lines[0].Source; src != "R1" {
		t.Errorf("newest run source = %q, want R1", src)
	}

	resp, _ = do(t, "GET", ts.URL+"/v1/runs?limit=zero", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}
}

func TestRunTimeline(t *testing.T) {
	ts := newTestServer(t, Config{})
	_, data := do(t, "POST", ts.URL+"/v1/simulate", `{"lines": ["C", "C"]}`)
	var run RunResponse
	_ = json.Unmarshal(data, &run)

	resp, data := do(t, "GET", ts.URL+"/v1/runs/"+run.ID+"/timeline?format=dot", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, data)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(data), "digraph timeline {") {
		t.Errorf("body = %s", data)
	}

	resp, data = do(t, "GET", ts.URL+"/v1/runs/"+run.ID+"/timeline?format=gif", "")
	if resp.StatusCode != http.StatusBadRequest || decodeError(t, data).Error.Code != errors.ErrCodeInvalidFormat {
		t.Errorf("bad format: status %d body %s", resp.StatusCode, data)
	}
}

type downStore struct{ *store.MemoryStore }

func (downStore) Ping(context.Context) error { return stderrors.New("connection refused") }

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, Config{})
	if resp, _ := do(t, "GET", ts.URL+"/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}
	if resp, _ := do(t, "GET", ts.URL+"/readyz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("readyz = %d", resp.StatusCode)
	}

	down := newTestServer(t, Config{Store: downStore{store.NewMemoryStore(0)}})
	resp, data := do(t, "GET", down.URL+"/readyz", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing store = %d", resp.StatusCode)
	}
	if decodeError(t, data).Error.Code != errors.ErrCodeUnavailable {
		t.Errorf("body = %s", data)
	}
}

func TestVersionAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "redwire_runs_total 0\n")
	})
	ts := newTestServer(t, Config{Metrics: metrics})

	resp, data := do(t, "GET", ts.URL+"/version", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"version"`) {
		t.Errorf("version: %d %s", resp.StatusCode, data)
	}

	resp, data = do(t, "GET", ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "redwire_runs_total") {
		t.Errorf("metrics: %d %s", resp.StatusCode, data)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, 400},
		{errors.ErrCodeInvalidFormat, 400},
		{errors.ErrCodeRunNotFound, 404},
		{errors.ErrCodeMalformedRun, 422},
		{errors.ErrCodeUnavailable, 503},
		{errors.ErrCodeInternal, 500},
		{"", 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
