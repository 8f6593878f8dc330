package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sugarcheck/pkg/buildinfo"
	"github.com/matzehuels/sugarcheck/pkg/cache"
	"github.com/matzehuels/sugarcheck/pkg/errors"
	sugario "github.com/matzehuels/sugarcheck/pkg/io"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
	"github.com/matzehuels/sugarcheck/pkg/store"
	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

// ConformationInfo describes one named conformation.
type ConformationInfo struct {
	Code     int    `json:"code"`
	Name     string `json:"name"`
	RingSize int    `json:"ring_size"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status, code = http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: errors.UserMessage(err)},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleConformations(w http.ResponseWriter, r *http.Request) {
	sizes := []int{6, 5}
	if v := r.URL.Query().Get("ring"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 5 && n != 6) {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "ring must be 5 or 6, got %q", v))
			return
		}
		sizes = []int{n}
	}
	var out []ConformationInfo
	for _, n := range sizes {
		for _, c := range sugar.Conformations(n) {
			out = append(out, ConformationInfo{Code: c.Code(), Name: c.String(), RingSize: n})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// analysisOptions builds pipeline options from the server defaults and the
// query parameters altloc, all_altlocs, residue, chain and refresh.
func (s *Server) analysisOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.cfg.Defaults.Copy()
	opts.Source = q.Get("filename")
	if opts.Source == "" {
		opts.Source = "upload.pdb"
	}
	if err := errors.ValidateFilename(opts.Source); err != nil {
		return opts, err
	}
	if v := q.Get("altloc"); v != "" {
		opts.AltLoc = v
	}
	if v := q.Get("all_altlocs"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "all_altlocs: %q is not a boolean", v)
		}
		opts.AllAltLocs = b
	}
	if v := q["residue"]; len(v) > 0 {
		opts.Residues = append(append([]string(nil), opts.Residues...), splitList(v)...)
	}
	if v := q["chain"]; len(v) > 0 {
		opts.Chains = splitList(v)
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (s *Server) readModel(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidModel, "empty request body")
	}
	return data, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, err := s.analysisOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.readModel(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	key := cache.Hash(data) + "|" + opts.Source + "|" + fmt.Sprint(opts.ReportKeyOpts(), opts.Refresh)
	v, err, shared := s.group.Do(key, func() (any, error) {
		rep, err := s.runner.Analyze(r.Context(), data, opts)
		if err != nil {
			return nil, err
		}
		stored := *rep
		stored.ID = ""
		if _, err := s.store.Put(r.Context(), &stored); err != nil {
			return nil, err
		}
		return &stored, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep := v.(*pipeline.Report)
	w.Header().Set("Location", "/reports/"+rep.ID)
	if shared {
		w.Header().Set("X-Shared-Result", "true")
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) reportID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	return id, store.ValidateID(id)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := s.reportID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = sugario.FormatJSON
	}
	if err := errors.ValidateFormat(format, sugario.Formats()...); err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if err := sugario.WriteReport(format, w, rep); err != nil && !sugario.IsBrokenPipe(err) {
		s.logger.Warn("write report", "id", id, "error", err)
	}
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := s.reportID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.analysisOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	art := pipeline.ArtifactOptions{
		Kind:      chi.URLParam(r, "kind"),
		Format:    q.Get("format"),
		Residue:   q.Get("id"),
		AltLoc:    q.Get("altloc"),
		Hydrogens: q.Get("hydrogens") == "true",
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 4096 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "size must be between 64 and 4096"))
			return
		}
		art.Size = n
	}
	if err := art.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.readModel(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.runner.Artifact(r.Context(), data, opts, art)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[art.Format])
	_, _ = w.Write(out)
}

var contentTypes = map[string]string{
	sugario.FormatJSON:  "application/json",
	sugario.FormatJSONL: "application/x-ndjson",
	sugario.FormatTSV:   "text/tab-separated-values",
	"svg":               "image/svg+xml",
	"png":               "image/png",
	"dot":               "text/vnd.graphviz",
}
