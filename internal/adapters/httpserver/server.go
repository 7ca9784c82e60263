package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printquote/internal/adapters/export/xlsx"
	"github.com/phenrril/printquote/internal/domain"
	"github.com/phenrril/printquote/internal/metrics"
	"github.com/phenrril/printquote/internal/usecase"
	"github.com/phenrril/printquote/internal/validation"
)

const (
	maxJSONBody   = 8 << 10
	maxUploadBody = 512 << 20
	exportLimit   = 1000
)

type Server struct {
	mux      *http.ServeMux
	analysis *usecase.AnalysisUC
	metrics  *metrics.Registry
}

func New(a *usecase.AnalysisUC, m *metrics.Registry) http.Handler {
	if m == nil {
		m = metrics.DefaultRegistry()
	}
	s := &Server{mux: http.NewServeMux(), analysis: a, metrics: m}
	s.routes()
	return wrap(s.mux, m)
}

// wrap applies the middleware stack. RequestID runs first so logs and panics carry the id;
// Recovery sits inside Metrics and Logging so recovered 500s are counted and logged.
func wrap(h http.Handler, m *metrics.Registry) http.Handler {
	return Chain(h,
		Recovery,
		Metrics(m),
		Logging,
		RequestID,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", s.metrics.Handler())

	s.mux.HandleFunc("/api/analyze", s.apiAnalyze)
	s.mux.HandleFunc("/api/models", s.apiModels)
	s.mux.HandleFunc("/api/models/", s.apiModelByID)
	s.mux.HandleFunc("/api/quote", s.apiQuote)
	s.mux.HandleFunc("/api/quote/", s.apiQuoteByID)

	s.mux.HandleFunc("/admin/analyzer/config", s.handleAdminAnalyzerConfig)
	s.mux.HandleFunc("/admin/analyzer/cache/clear", s.handleAdminCacheClear)
	s.mux.HandleFunc("/admin/quotes/export", s.handleAdminQuotesExport)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

// optionsPayload accepts infill as a JSON number or as free text ("25", "25%").
type optionsPayload struct {
	Material string          `json:"material"`
	Quality  string          `json:"quality"`
	Infill   json.RawMessage `json:"infill"`
}

func (p optionsPayload) printOptions() (domain.PrintOptions, error) {
	req := validation.OptionsRequest{Material: p.Material, Quality: p.Quality}
	raw := bytes.TrimSpace(p.Infill)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var txt string
		if err := json.Unmarshal(raw, &txt); err != nil {
			return domain.PrintOptions{}, fmt.Errorf("%w: infill", domain.ErrInvalidInput)
		}
		n, err := validation.ParseInfill(txt)
		if err != nil {
			return domain.PrintOptions{}, err
		}
		req.Infill = n
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return domain.PrintOptions{}, fmt.Errorf("%w: infill", domain.ErrInvalidInput)
		}
		n, err := validation.InfillFromFloat(f)
		if err != nil {
			return domain.PrintOptions{}, err
		}
		req.Infill = n
	}
	if err := validation.ValidateOptions(&req); err != nil {
		return domain.PrintOptions{}, err
	}
	return req.ToPrintOptions(), nil
}

type analyzePayload struct {
	validation.ModelFileRequest
	optionsPayload
}

func (s *Server) apiAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	file, opts, err := decodeAnalyze(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	est := s.analysis.Estimate(file, opts)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, 200, est)
}

func (s *Server) apiModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var (
		file domain.ModelFile
		opts domain.PrintOptions
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, opts, err = decodeMultipart(w, r)
	} else {
		file, opts, err = decodeAnalyze(r.Body)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.analysis.Analyze(r.Context(), file, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 201, m)
}

func (s *Server) apiModelByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	id, err := pathID(r.URL.Path, "/api/models/")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.analysis.GetModel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, m)
}

func (s *Server) apiQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		UploadedModelID string `json:"uploaded_model_id"`
		optionsPayload
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: json", domain.ErrInvalidInput))
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(req.UploadedModelID))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: uploaded_model_id", domain.ErrInvalidInput))
		return
	}
	opts, err := req.printOptions()
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := s.analysis.Quote(r.Context(), id, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, 200, q)
}

func (s *Server) apiQuoteByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	id, err := pathID(r.URL.Path, "/api/quote/")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := s.analysis.GetQuote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, 200, q)
}

func (s *Server) handleAdminAnalyzerConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, s.analysis.AnalyzerConfig())
	case http.MethodPut, http.MethodPatch:
		dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
		dec.DisallowUnknownFields()
		var patch domain.ConfigPatch
		if err := dec.Decode(&patch); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
		cfg, err := s.analysis.UpdateAnalyzerConfig(patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, 200, cfg)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleAdminCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	writeJSON(w, 200, map[string]int{"cleared": s.analysis.ClearCache()})
}

func (s *Server) handleAdminQuotesExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	list, err := s.analysis.ListQuotes(r.Context(), exportLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsx.WriteQuotes(&buf, list); err != nil {
		writeError(w, r, err)
		return
	}
	name := "cotizaciones-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	_, _ = w.Write(buf.Bytes())
}

func decodeAnalyze(body io.Reader) (domain.ModelFile, domain.PrintOptions, error) {
	var req analyzePayload
	if err := json.NewDecoder(io.LimitReader(body, maxJSONBody)).Decode(&req); err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, fmt.Errorf("%w: json", domain.ErrInvalidInput)
	}
	if err := validation.ValidateModelFile(&req.ModelFileRequest); err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, err
	}
	opts, err := req.printOptions()
	if err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, err
	}
	return domain.ModelFile{OriginalName: req.OriginalName, SizeBytes: req.SizeBytes}, opts, nil
}

// decodeMultipart takes name and size from the uploaded part; the content is not inspected.
func decodeMultipart(w http.ResponseWriter, r *http.Request) (domain.ModelFile, domain.PrintOptions, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, fmt.Errorf("%w: multipart", domain.ErrInvalidInput)
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("file")
	if err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, fmt.Errorf("%w: file", domain.ErrInvalidInput)
	}
	_ = f.Close()

	infill, err := validation.ParseInfill(r.FormValue("infill"))
	if err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, err
	}
	req := validation.OptionsRequest{Material: r.FormValue("material"), Quality: r.FormValue("quality"), Infill: infill}
	if err := validation.ValidateOptions(&req); err != nil {
		return domain.ModelFile{}, domain.PrintOptions{}, err
	}
	return domain.ModelFile{OriginalName: fh.Filename, SizeBytes: fh.Size}, req.ToPrintOptions(), nil
}

func pathID(path, prefix string) (uuid.UUID, error) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id", domain.ErrInvalidInput)
	}
	return id, nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, 400, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, 404, map[string]string{"error": "not found"})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", RequestIDFrom(r.Context())).Msg("request")
		writeJSON(w, 500, map[string]string{"error": "internal"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
