package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nodegraph/pkg/buildinfo"
	"github.com/matzehuels/nodegraph/pkg/cache"
	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	sc, err := s.readScene(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Scene:       sc,
		Policy:      q.Get("policy"),
		Incremental: boolParam(q.Get("incremental")),
		Refresh:     boolParam(q.Get("refresh")),
		Logger:      s.logger,
	}
	if _, err := nodegraph.ParseMissPolicy(opts.Policy); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runnerFor(r).Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	built, a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.PathNames(built))
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	built, a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.CategoryNames(built))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out := q.Get("out")
	if out == "" {
		out = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(out); err != nil {
		s.writeError(w, r, ngerrors.Wrap(ngerrors.ErrCodeInvalidFormat, err, "out"))
		return
	}

	sc, err := s.readScene(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	runner := s.runnerFor(r)
	opts := pipeline.Options{
		Scene:    sc,
		Formats:  []string{out},
		Detailed: boolParam(q.Get("detailed")),
		Refresh:  boolParam(q.Get("refresh")),
		Logger:   s.logger,
	}
	built, err := runner.Load(r.Context(), opts, io.Discard)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, hit, err := runner.Render(r.Context(), built, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "miss"
	if hit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[out])
	w.Header().Set("X-Nodegraph-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[out])
}

// analyze decodes, builds and analyzes the request scene without walking.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*scene.Built, pipeline.Analysis, bool) {
	sc, err := s.readScene(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Analysis{}, false
	}
	built, err := s.runnerFor(r).Load(r.Context(), pipeline.Options{Scene: sc, Logger: s.logger}, io.Discard)
	if err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Analysis{}, false
	}
	return built, pipeline.Analyze(built), true
}

// =============================================================================
// Request Helpers
// =============================================================================

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatPDF: "application/pdf",
}

var mediaFormats = map[string]scene.Format{
	"application/toml":   scene.FormatTOML,
	"application/json":   scene.FormatJSON,
	"application/yaml":   scene.FormatYAML,
	"application/x-yaml": scene.FormatYAML,
	"text/yaml":          scene.FormatYAML,
	"application/hcl":    scene.FormatHCL,
	"text/x-hcl":         scene.FormatHCL,
}

// requestFormat picks the scene format from ?format= or Content-Type.
func requestFormat(r *http.Request) (scene.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return scene.ParseFormat(f)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if media, _, err := mime.ParseMediaType(ct); err == nil {
			if f, ok := mediaFormats[media]; ok {
				return f, nil
			}
		}
	}
	return scene.FormatTOML, nil
}

// readScene decodes the request body. Unnamed scenes take ?name= or
// "scene".
func (s *Server) readScene(r *http.Request) (*scene.Scene, error) {
	format, err := requestFormat(r)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, ngerrors.New(ngerrors.ErrCodeInvalidInput, "scene exceeds %d bytes", tooBig.Limit)
		}
		return nil, ngerrors.Wrap(ngerrors.ErrCodeInvalidInput, err, "read body")
	}
	sc, err := scene.Decode(body, format)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = r.URL.Query().Get("name")
	}
	if sc.Name == "" {
		sc.Name = "scene"
	}
	return sc, nil
}

// runnerFor returns the shared runner, or a copy whose keys are scoped to
// the request's namespace.
func (s *Server) runnerFor(r *http.Request) *pipeline.Runner {
	ns := r.Header.Get(NamespaceHeader)
	if ns == "" {
		return s.runner
	}
	scoped := *s.runner
	scoped.Keyer = cache.NewScopedKeyer(s.runner.Keyer, "ns:"+ns+":")
	return &scoped
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      string(ngerrors.GetCode(err)),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, cache.ErrNetwork):
		return http.StatusServiceUnavailable
	}
	switch ngerrors.GetCode(err) {
	case ngerrors.ErrCodeInvalidInput, ngerrors.ErrCodeInvalidFormat, ngerrors.ErrCodeInvalidScene,
		ngerrors.ErrCodeInvalidPortName, ngerrors.ErrCodeDuplicatePort, ngerrors.ErrCodeSameNode,
		ngerrors.ErrCodeTypeMismatch, ngerrors.ErrCodePortNotFound, ngerrors.ErrCodeNodeNotFound:
		return http.StatusBadRequest
	case ngerrors.ErrCodeMissingValue, ngerrors.ErrCodeUncachedDependency:
		return http.StatusUnprocessableEntity
	case ngerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ngerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
