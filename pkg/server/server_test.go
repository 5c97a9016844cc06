package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"customer-analytics/pkg/config"
	"customer-analytics/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Address:           ":0",
		Clusters:          3,
		Seed:              42,
		CLVLifetimeMonths: 12,
	}
}

func testDataset() *models.Dataset {
	day := func(n int) time.Time {
		return time.Date(2024, 1, n, 10, 0, 0, 0, time.UTC)
	}
	return models.NewDataset([]models.Order{
		{CustomerID: "A", OrderID: "O1", OrderedAt: day(1), OrderValue: 100, OrderPeriod: "Morning", PaymentMethod: "CC"},
		{CustomerID: "A", OrderID: "O2", OrderedAt: day(11), OrderValue: 200, OrderPeriod: "Morning", PaymentMethod: "CC"},
		{CustomerID: "B", OrderID: "O3", OrderedAt: day(5), OrderValue: 50, OrderPeriod: "Night", PaymentMethod: "COD"},
		{CustomerID: "C", OrderID: "O4", OrderedAt: day(8), OrderValue: 500, OrderPeriod: "Afternoon", PaymentMethod: "UPI"},
		{CustomerID: "D", OrderID: "O5", OrderedAt: day(2), OrderValue: 20, OrderPeriod: "Morning", PaymentMethod: "COD"},
	})
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCustomerMetrics_OK(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/customer_metrics/A")
	assert.Equal(t, http.StatusOK, rec.Code)

	var metrics []models.Metric
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	names := make(map[string]any)
	for _, m := range metrics {
		names[m.Name] = m.Value
	}
	assert.EqualValues(t, 2, names["Frequency"])
	assert.EqualValues(t, 300, names["Monetary"])
}

func TestCustomerMetrics_NotFound(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/customer_metrics/nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Customer ID not found", body["error"])
}

func TestCustomerMetrics_MissingID(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/customer_metrics/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerMetrics_SlashInID(t *testing.T) {
	// Un identifiant avec segment de chemin n'est pas cherché tel quel.
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/customer_metrics/A/B")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRFMSegmentation_OK(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/rfm_segmentation")
	assert.Equal(t, http.StatusOK, rec.Code)

	var seg models.SegmentationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seg))
	assert.NotEmpty(t, seg.RunID)
	assert.Len(t, seg.Customers, 4)
	assert.Len(t, seg.Centroids, 3)
}

func TestRFMSegmentation_TooFewCustomers(t *testing.T) {
	// Deux clients pour trois clusters : échec de calcul, surfacé comme
	// erreur générique sans détail interne.
	ds := models.NewDataset([]models.Order{
		{CustomerID: "A", OrderedAt: time.Now(), OrderValue: 10},
		{CustomerID: "B", OrderedAt: time.Now(), OrderValue: 20},
	})
	srv := New(ds, testConfig())
	rec := get(t, srv, "/api/rfm_segmentation")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error\n", rec.Body.String())
}

func TestCLV_OK(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/clv")
	assert.Equal(t, http.StatusOK, rec.Code)

	var rows []models.CLVRecord
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, r.Monetary*12, r.CLV, "customer %s", r.CustomerID)
	}
}

func TestSegmentationImage_OK(t *testing.T) {
	srv := New(testDataset(), testConfig())
	rec := get(t, srv, "/api/segmentation_image")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")),
		"body does not start with a PNG signature")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := New(testDataset(), testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/clv", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
