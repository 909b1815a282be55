package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hybridnet/pkg/buildinfo"
	"github.com/matzehuels/hybridnet/pkg/errors"
	hio "github.com/matzehuels/hybridnet/pkg/io"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
	"github.com/matzehuels/hybridnet/pkg/store"
)

// maxBodyBytes bounds a solve request: two trees plus options.
const maxBodyBytes = 2*errors.MaxNewickBytes + 64<<10

var contentTypes = map[string]string{
	pipeline.FormatNewick: "text/plain; charset=utf-8",
	pipeline.FormatDOT:    "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:    "image/svg+xml",
	pipeline.FormatPNG:    "image/png",
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req store.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := validateRequest(req); err != nil {
		s.writeError(w, err)
		return
	}

	job := store.NewJob(req, s.cfg.JobTTL)
	if err := s.cfg.Store.Put(r.Context(), job); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "store job"))
		return
	}
	s.logger.Info("job submitted", "id", job.ID)

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		s.run(r.Context(), job)
		writeJSON(w, http.StatusOK, job)
		return
	}

	bg := *job
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.ctx, &bg)
	}()
	w.Header().Set("Location", "/v1/results/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func validateRequest(req store.Request) error {
	if err := errors.ValidateNewick(req.Tree1); err != nil {
		return errors.New(errors.ErrCodeInvalidNewick, "tree1: %s", errors.UserMessage(err))
	}
	if err := errors.ValidateNewick(req.Tree2); err != nil {
		return errors.New(errors.ErrCodeInvalidNewick, "tree2: %s", errors.UserMessage(err))
	}
	if req.Budget < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "budget must not be negative")
	}
	for _, c := range req.Candidates {
		if err := errors.ValidateTaxonLabel(c); err != nil {
			return err
		}
	}
	return nil
}

// run solves job and records the outcome. It waits for a free slot first.
func (s *Server) run(ctx context.Context, job *store.Job) {
	// The outcome is recorded even when ctx ends.
	storeCtx := context.WithoutCancel(ctx)

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		s.finish(storeCtx, job, nil, errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "job not started"))
		return
	}

	job.Status = store.StatusRunning
	job.UpdatedAt = time.Now().UTC()
	if err := s.cfg.Store.Put(storeCtx, job); err != nil {
		s.logger.Warn("store job", "id", job.ID, "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	res, err := s.cfg.Runner.Execute(ctx, pipeline.Options{
		Tree1:      job.Request.Tree1,
		Tree2:      job.Request.Tree2,
		Budget:     job.Request.Budget,
		Candidates: job.Request.Candidates,
		Formats:    []string{pipeline.FormatJSON},
		Logger:     s.logger.With("job", job.ID),
	})
	s.finish(storeCtx, job, res, err)
}

func (s *Server) finish(ctx context.Context, job *store.Job, res *pipeline.Result, err error) {
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = store.StatusFailed
		job.Error = errors.UserMessage(err)
		job.Code = string(codeOf(err))
		s.logger.Warn("job failed", "id", job.ID, "code", job.Code, "error", err)
	} else {
		job.Status = store.StatusDone
		job.Result = json.RawMessage(res.Artifacts[pipeline.FormatJSON])
		s.logger.Info("job done", "id", job.ID,
			"h", res.Document.HybridizationNumber,
			"networks", len(res.Document.Networks),
			"cached", res.CacheInfo.SolveHit)
	}
	if err := s.cfg.Store.Put(ctx, job); err != nil {
		s.logger.Error("store job", "id", job.ID, "error", err)
	}
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	job, err := s.job(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateResultID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cfg.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "delete job"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	job, err := s.job(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !job.Status.Finished() {
		s.writeError(w, errors.New(errors.ErrCodeResultNotFound, "job %s is still %s", job.ID, job.Status))
		return
	}
	if job.Status != store.StatusDone {
		s.writeError(w, errors.New(errors.ErrCodeResultNotFound, "job %s failed: %s", job.ID, job.Error))
		return
	}

	format := chi.URLParam(r, "format")
	ctype, ok := contentTypes[format]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format))
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid network index %q", chi.URLParam(r, "index")))
		return
	}

	doc, err := hio.ReadJSON(bytes.NewReader(job.Result))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "decode stored result"))
		return
	}
	if index >= len(doc.Networks) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "network %d not found (%d networks)", index, len(doc.Networks)))
		return
	}

	var out []byte
	if format == pipeline.FormatNewick {
		out = []byte(doc.Networks[index].Newick + "\n")
	} else {
		out, err = pipeline.Export(r.Context(), doc, format, pipeline.Options{Network: index, Title: r.URL.Query().Get("title")})
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// job loads the job named by the id URL parameter.
func (s *Server) job(r *http.Request) (*store.Job, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateResultID(id); err != nil {
		return nil, err
	}
	job, err := s.cfg.Store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.New(errors.ErrCodeResultNotFound, "job %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load job")
	}
	return job, nil
}

// codeOf returns the error code of err, treating deadlines as timeouts.
func codeOf(err error) errors.Code {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrCodeTimeout
	}
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidNewick, errors.ErrCodeInvalidFormat,
		errors.ErrCodeDisjointTaxa:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeResultNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBudgetExceeded:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := codeOf(err)
	status := statusOf(code)
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
