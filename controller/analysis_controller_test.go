package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

// newTestRouter wires the real services with a temp SQLite store, or no
// store when withStore is false.
func newTestRouter(t *testing.T, withStore bool) (*gin.Engine, *services.DocumentStore) {
	t.Helper()
	log := logger.Nop()

	var store *services.DocumentStore
	var repo services.DocumentRepository
	health := HealthChecks{LocalModel: false, LLM: false}
	if withStore {
		var err error
		store, err = services.OpenDocumentStore(context.Background(),
			"sqlite://"+filepath.Join(t.TempDir(), "api.db"), log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		repo = store
		health.Store = store
	}

	classifier := services.NewClassifier(services.DefaultTables())
	analysis := services.NewAnalysisService(services.AnalysisDeps{
		Log:        log,
		Extractor:  services.NewTextExtractor(log, t.TempDir()),
		Dispatcher: services.NewDispatcher(log, nil, nil, classifier),
		Embeddings: services.NewEmbeddingService(log, nil, 16),
		Store:      repo,
	})

	router := gin.New()
	RegisterRoutes(router, NewAnalysisController(analysis, health))
	return router, store
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func postForm(t *testing.T, router *gin.Engine, path string, fields map[string]string, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, fields, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type analyzeResponse struct {
	InputText  string                 `json:"input_text"`
	Prediction map[string]interface{} `json:"prediction"`
	DocumentID json.RawMessage        `json:"document_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) analyzeResponse {
	t.Helper()
	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestAnalyzeContractUpload(t *testing.T) {
	router, store := newTestRouter(t, true)

	w := postForm(t, router, "/api/analyze/", map[string]string{"user_id": "42"},
		"contract.txt", "This agreement is subject to binding arbitration.")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "This agreement is subject to binding arbitration.", resp.InputText)
	assert.Equal(t, "contract_review", resp.Prediction["analysis_type"])
	assert.Equal(t, "Medium", resp.Prediction["overall_risk"])
	assert.NotEmpty(t, resp.Prediction["findings"])
	assert.Equal(t, "heuristic", resp.Prediction["source"])

	var id uint
	require.NoError(t, json.Unmarshal(resp.DocumentID, &id))
	doc, err := store.GetDocument(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "contract.txt", doc.Filename)
	require.NotNil(t, doc.UserID)
	assert.EqualValues(t, 42, *doc.UserID)
	require.Len(t, doc.Analyses, 1)
	assert.Equal(t, "analysis", doc.Analyses[0].Task)
}

func TestAnalyzeWithoutStoreIsDemoMode(t *testing.T) {
	router, _ := newTestRouter(t, false)

	for _, path := range []string{"/api/analyze", "/api/analyze/"} {
		w := postForm(t, router, path, map[string]string{"text": "my landlord kept my deposit"}, "", "")
		require.Equal(t, http.StatusOK, w.Code, path)
		resp := decode(t, w)
		assert.JSONEq(t, `"demo_mode"`, string(resp.DocumentID))
		assert.Equal(t, "legal_guidance", resp.Prediction["analysis_type"])
		assert.Equal(t, "Tenant Rights", resp.Prediction["category"])
	}
}

func TestAnalyzeIsRepeatable(t *testing.T) {
	router, _ := newTestRouter(t, true)
	fields := map[string]string{"text": "late fees and automatic renewal apply to these terms"}

	first := decode(t, postForm(t, router, "/api/analyze/", fields, "", ""))
	second := decode(t, postForm(t, router, "/api/analyze/", fields, "", ""))

	assert.Equal(t, first.Prediction["overall_risk"], second.Prediction["overall_risk"])
	assert.Equal(t, first.Prediction["findings"], second.Prediction["findings"])
	assert.NotEqual(t, string(first.DocumentID), string(second.DocumentID))
}

func TestAnalyzeEmptyInput(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := postForm(t, router, "/api/analyze/", map[string]string{"language": "en"}, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "No input text provided", resp.Prediction["error"])
	assert.NotEmpty(t, resp.Prediction["demo_note"])
}

func TestAnalyzeBadUserID(t *testing.T) {
	router, _ := newTestRouter(t, false)
	w := postForm(t, router, "/api/analyze/?user_id=abc", map[string]string{"text": "rent"}, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResearch(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := postForm(t, router, "/api/research/", map[string]string{"text": "wrongful termination by employer"}, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "legal_research", resp.Prediction["analysis_type"])
	cases, ok := resp.Prediction["relevant_cases"].([]interface{})
	require.True(t, ok)
	assert.Len(t, cases, 3)
}

func TestPredict(t *testing.T) {
	router, _ := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/predict/", strings.NewReader(`{"text":"police refused bail"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Input      string                 `json:"input"`
		Prediction map[string]interface{} `json:"prediction"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "police refused bail", resp.Input)
	assert.Equal(t, "Criminal", resp.Prediction["category"])
}

func TestPredictMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader("text=hello"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestRootAndHealth(t *testing.T) {
	router, _ := newTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"message":"Welcome to LawGic AI Backend"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t,
		`{"status":"ok","database":"connected","local_model":false,"llm":false,"vector_index":"disabled"}`,
		w.Body.String())
}

func TestHealthDegraded(t *testing.T) {
	router := gin.New()
	RegisterRoutes(router, NewAnalysisController(nil, HealthChecks{Store: downPinger{}, LLM: true}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"status":"degraded","database":"unavailable","local_model":false,"llm":true,"vector_index":"disabled"}`,
		w.Body.String())
}

func TestAnalyzeInvalidDatabaseLocation(t *testing.T) {
	log := logger.Nop()
	store, err := services.OpenDocumentStore(context.Background(),
		"sqlite://"+filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"), log)
	require.Error(t, err)

	analysis := services.NewAnalysisService(services.AnalysisDeps{
		Log:        log,
		Extractor:  services.NewTextExtractor(log, t.TempDir()),
		Dispatcher: services.NewDispatcher(log, nil, nil, services.NewClassifier(services.DefaultTables())),
		Embeddings: services.NewEmbeddingService(log, nil, 16),
		Store:      store,
	})
	router := gin.New()
	RegisterRoutes(router, NewAnalysisController(analysis, HealthChecks{Store: store}))

	w := postForm(t, router, "/api/analyze/", nil, "contract.txt", "binding arbitration clause")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.JSONEq(t, `"demo_mode"`, string(resp.DocumentID))
	assert.Equal(t, "Medium", resp.Prediction["overall_risk"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, w.Body.String(), `"database":"unavailable"`)
}
