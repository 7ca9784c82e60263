package httpserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/printquote/internal/adapters/repo/memory"
	"github.com/phenrril/printquote/internal/analyzer"
	"github.com/phenrril/printquote/internal/domain"
	"github.com/phenrril/printquote/internal/metrics"
	"github.com/phenrril/printquote/internal/usecase"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := analyzer.NewConfigStore(domain.DefaultAnalyzerConfig())
	reg := metrics.NewRegistry()
	uc := usecase.NewAnalysisUC(memory.NewUploadedModelRepo(), memory.NewQuoteRepo(), store, analyzer.NewSeededRandom(3), reg)
	return New(uc, reg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIAnalyze(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, "POST", "/api/analyze", `{"original_name":"gear.stl","size_bytes":10485760,"material":"PETG","quality":"high","infill":"25%"}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var est domain.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, 75, est.Characterization.Hollowness)
	assert.Equal(t, domain.MaterialPETG, est.Cost.Breakdown.Material)
	assert.Equal(t, domain.QualityHigh, est.Cost.Breakdown.Quality)
	assert.Equal(t, 25, est.Cost.Breakdown.Infill)
	assert.NotNil(t, est.Recommendation.SuggestedQuality)
}

func TestAPIAnalyzeRejectsBadInput(t *testing.T) {
	h := newTestServer(t)

	cases := map[string]string{
		"not json":             `{`,
		"missing name":         `{"size_bytes":10}`,
		"negative size":        `{"original_name":"a.stl","size_bytes":-1}`,
		"infill too high":      `{"original_name":"a.stl","size_bytes":10,"infill":150}`,
		"infill text":          `{"original_name":"a.stl","size_bytes":10,"infill":"mucho"}`,
		"infill fraction":      `{"original_name":"a.stl","size_bytes":10,"infill":20.9}`,
		"infill text fraction": `{"original_name":"a.stl","size_bytes":10,"infill":"20.9%"}`,
		"infill text nan":      `{"original_name":"a.stl","size_bytes":10,"infill":"NaN"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/analyze", body)
			assert.Equal(t, 400, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, 405, do(t, h, "GET", "/api/analyze", "").Code)
}

func TestAPIAnalyzeUnknownMaterialIsNotAnError(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, "POST", "/api/analyze", `{"original_name":"a.stl","size_bytes":2048,"material":"mithril"}`)
	require.Equal(t, 200, rec.Code)

	var est domain.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, domain.MaterialPLA, est.Cost.Breakdown.Material)
}

func TestModelAndQuoteFlow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, "POST", "/api/models", `{"original_name":"vase.stl","size_bytes":5242880}`)
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var m domain.UploadedModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))

	rec = do(t, h, "GET", "/api/models/"+m.ID.String(), "")
	require.Equal(t, 200, rec.Code)

	rec = do(t, h, "POST", "/api/quote", `{"uploaded_model_id":"`+m.ID.String()+`","material":"abs","quality":"draft","infill":40}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var q domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, m.ID, q.UploadedModelID)
	assert.Equal(t, domain.MaterialABS, q.Material)
	assert.Equal(t, 40, q.InfillPct)
	assert.Equal(t, m.Characterization.Dimensions, q.Characterization.Dimensions)

	rec = do(t, h, "GET", "/api/quote/"+q.ID.String(), "")
	require.Equal(t, 200, rec.Code)

	rec = do(t, h, "GET", "/admin/quotes/export", "")
	require.Equal(t, 200, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Cotizaciones")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestModelMultipartUpload(t *testing.T) {
	h := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "bracket.stl")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 4096))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("material", "tpu"))
	require.NoError(t, mw.WriteField("infill", "30"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/models", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var m domain.UploadedModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "bracket.stl", m.OriginalName)
	assert.Equal(t, int64(4096), m.SizeBytes)
	assert.Equal(t, domain.MaterialTPU, m.Material)
	assert.Equal(t, 30, m.InfillPct)
}

func TestNotFoundAndBadIDs(t *testing.T) {
	h := newTestServer(t)

	assert.Equal(t, 400, do(t, h, "GET", "/api/models/nope", "").Code)
	assert.Equal(t, 404, do(t, h, "GET", "/api/models/8f14e45f-ceea-4e6b-a3b8-0f7b6c1f2a90", "").Code)
	assert.Equal(t, 404, do(t, h, "POST", "/api/quote", `{"uploaded_model_id":"8f14e45f-ceea-4e6b-a3b8-0f7b6c1f2a90"}`).Code)
	assert.Equal(t, 400, do(t, h, "POST", "/api/quote", `{"uploaded_model_id":"x"}`).Code)
}

func TestAdminAnalyzerConfig(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, "GET", "/admin/analyzer/config", "")
	require.Equal(t, 200, rec.Code)
	var before domain.AnalyzerConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))

	rec = do(t, h, "PUT", "/admin/analyzer/config", `{"machine_hourly_rate":2.0}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	rec = do(t, h, "GET", "/admin/analyzer/config", "")
	var after domain.AnalyzerConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, 2.0, after.MachineHourlyRate)
	assert.Equal(t, before.MaterialDensities, after.MaterialDensities)
	assert.Equal(t, before.PrintSpeeds, after.PrintSpeeds)
	assert.Equal(t, before.DefaultInfill, after.DefaultInfill)

	for _, body := range []string{
		`{"machine_hourly_rate":"cheap"}`,
		`{"default_infill":101}`,
		`{"material_densities":{"abs":1.0}}`,
		`{"unknown_field":1}`,
		`{}`,
	} {
		rec = do(t, h, "PATCH", "/admin/analyzer/config", body)
		assert.Equal(t, 400, rec.Code, body)
	}
	assert.Equal(t, 405, do(t, h, "DELETE", "/admin/analyzer/config", "").Code)
}

func TestAdminCacheClear(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, 201, do(t, h, "POST", "/api/models", `{"original_name":"a.stl","size_bytes":1024}`).Code)

	rec := do(t, h, "POST", "/admin/analyzer/cache/clear", "")
	require.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"cleared":1}`, rec.Body.String())

	rec = do(t, h, "POST", "/admin/analyzer/cache/clear", "")
	assert.JSONEq(t, `{"cleared":0}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, "GET", "/healthz", "")

	rec := do(t, h, "GET", "/metrics", "")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `printquote_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRecoveryMiddleware(t *testing.T) {
	buf := captureLog(t)
	reg := metrics.NewRegistry()
	h := wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), reg)

	req := httptest.NewRequest("GET", "/api/analyze", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, 500, rec.Code)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var panicLine, accessLine map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &panicLine))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &accessLine))
	assert.Equal(t, "panic", panicLine["message"])
	assert.Equal(t, "abc123", panicLine["request_id"])
	assert.Equal(t, "http", accessLine["message"])
	assert.Equal(t, "abc123", accessLine["request_id"])
	assert.Equal(t, 500.0, accessLine["status"])

	m := &dto.Metric{}
	require.NoError(t, reg.HTTPRequestsTotal.WithLabelValues("GET", "/api/analyze", "500").Write(m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}

func TestAccessLogCarriesGeneratedRequestID(t *testing.T) {
	buf := captureLog(t)
	h := newTestServer(t)

	rec := do(t, h, "GET", "/healthz", "")
	require.Equal(t, 200, rec.Code)
	id := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, id, line["request_id"])
	assert.Equal(t, "/healthz", line["path"])
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/models/{id}", routeLabel("/api/models/123"))
	assert.Equal(t, "/api/models", routeLabel("/api/models"))
	assert.Equal(t, "/api/quote/{id}", routeLabel("/api/quote/abc"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}
