package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/redwire/pkg/buildinfo"
	rwerrors "github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/render/timeline"
	"github.com/matzehuels/redwire/pkg/report"
	"github.com/matzehuels/redwire/pkg/store"
)

// SimulateRequest is the body of POST /v1/simulate. Lines and Input may be
// combined; Input is split on newlines and appended to Lines.
type SimulateRequest struct {
	Lines   []string `json:"lines,omitempty"`
	Input   string   `json:"input,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`
}

func (req SimulateRequest) texts() []string {
	texts := append([]string(nil), req.Lines...)
	if req.Input != "" {
		texts = append(texts, strings.Split(req.Input, "\n")...)
	}
	return texts
}

// RunResponse is a stored run as returned by the API.
type RunResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	CacheHit  bool           `json:"cache_hit,omitempty"`
	Result    string         `json:"result,omitempty"`
	Report    *report.Report `json:"report"`
}

func newRunResponse(run *store.Run) RunResponse {
	resp := RunResponse{ID: run.ID, CreatedAt: run.CreatedAt, Report: run.Report}
	if run.Report != nil && run.Report.Completed() {
		resp.Result = strings.Join(run.Report.Order, ",")
	}
	return resp
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, rwerrors.New(rwerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	res, err := s.cfg.Runner.Run(r.Context(), req.texts(), pipeline.Options{
		Limits:  s.cfg.Limits,
		Refresh: req.Refresh,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	run := store.NewRun(res.Report)
	if err := s.cfg.Store.Save(r.Context(), run); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("stored run", "id", run.ID, "state", res.Report.State, "cache_hit", res.CacheHit)

	resp := newRunResponse(run)
	resp.CacheHit = res.CacheHit
	w.Header().Set("Location", "/v1/runs/"+run.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, rwerrors.New(rwerrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.cfg.Store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]RunResponse, len(runs))
	for i, run := range runs {
		resp[i] = newRunResponse(run)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": resp})
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		writeError(w, err)
		return nil, false
	}
	run, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return run, true
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

func (s *Server) handleRunTimeline(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = timeline.FormatSVG
	}
	texts := make([]string, len(run.Report.Lines))
	for i, l := range run.Report.Lines {
		texts[i] = l.Source
	}

	data, _, err := s.cfg.Runner.Timeline(r.Context(), texts, pipeline.TimelineOptions{
		Options:  pipeline.Options{Limits: s.cfg.Limits},
		Format:   format,
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}

	contentType := "text/vnd.graphviz; charset=utf-8"
	if format == timeline.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Store.Ping(r.Context()); err != nil {
		s.logger.Warn("store not ready", "error", err)
		writeError(w, rwerrors.Wrap(rwerrors.ErrCodeUnavailable, err, "run store unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    rwerrors.Code `json:"code"`
		Message string        `json:"message"`
	} `json:"error"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code rwerrors.Code) int {
	switch code {
	case rwerrors.ErrCodeInvalidInput, rwerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case rwerrors.ErrCodeNotFound, rwerrors.ErrCodeRunNotFound:
		return http.StatusNotFound
	case rwerrors.ErrCodeMalformedRun:
		return http.StatusUnprocessableEntity
	case rwerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := rwerrors.GetCode(err)
	if code == "" {
		code = rwerrors.ErrCodeInternal
	}
	var body errorBody
	body.Error.Code = code
	body.Error.Message = rwerrors.UserMessage(err)
	writeJSON(w, statusFor(code), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
