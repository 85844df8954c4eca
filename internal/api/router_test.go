package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promdto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"smart-route-planner/internal/api/dto"
	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/metrics"
	"smart-route-planner/internal/ports"
	"smart-route-planner/internal/services"
)

type fakeRepo struct {
	batches map[string][]domain.Stop
	err     error
}

func (f *fakeRepo) ListStops(_ context.Context, batchID string) ([]domain.Stop, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[batchID], nil
}

func newTestRouter(t *testing.T, repo ports.StopRepository, limiter *rate.Limiter) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Planner:  services.NewPlanner(2, nil, repo),
		Defaults: domain.DefaultOptions(),
		Limiter:  limiter,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeOptimize(t *testing.T, rr *httptest.ResponseRecorder) dto.OptimizeResponse {
	t.Helper()
	var res dto.OptimizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res
}

func ids(points []dto.PointIn) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.ID
	}
	return out
}

const samplePoints = `[
	{"id":1,"lat":52.37,"lon":4.89,"priority":"low"},
	{"id":2,"lat":52.36,"lon":4.90,"priority":"high"},
	{"id":3,"lat":52.38,"lon":4.88,"priority":"medium"},
	{"id":4,"lat":52.35,"lon":4.91,"priority":"high"}
]`

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/health", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}

func TestOptimizeStrict(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/optimize", `{"points":`+samplePoints+`,"options":{"mode":"strict"}}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeOptimize(t, rr)
	require.Equal(t, []int{2, 4, 3, 1}, ids(res.OrderedPoints))
	require.Len(t, res.GroupStats, 3)
	assert.Equal(t, 2, res.GroupStats["high"].Count)
	assert.Equal(t, 1, res.GroupStats["medium"].Count)
	assert.Equal(t, 1, res.GroupStats["low"].Count)
	assert.Zero(t, res.GroupStats["medium"].Distance)
	assert.Greater(t, res.TotalDistance, res.GroupStats["high"].Distance)
	assert.GreaterOrEqual(t, res.RuntimeMs, 0.0)
}

func TestOptimizeDefaultsKeepTiers(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	for _, algo := range []string{"dp", "heuristic", "auto"} {
		t.Run(algo, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/optimize", `{"points":`+samplePoints+`,"options":{"algorithm":"`+algo+`"}}`)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			got := ids(decodeOptimize(t, rr).OrderedPoints)
			require.Len(t, got, 4)
			require.ElementsMatch(t, []int{2, 4}, got[:2])
			require.Equal(t, []int{3, 1}, got[2:])
		})
	}

	rr := do(t, h, http.MethodPost, "/api/optimize", `{"points":`+samplePoints+`}`)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestOptimizeEmptyPoints(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/optimize", `{"points":[]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeOptimize(t, rr)
	assert.Empty(t, res.OrderedPoints)
	assert.NotNil(t, res.OrderedPoints)
	assert.Zero(t, res.TotalDistance)
	assert.Len(t, res.GroupStats, 3)
}

func TestOptimizeRejectsBadInput(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"empty body", ``, "request body is required"},
		{"malformed", `{"points":`, "invalid json body"},
		{"unknown field", `{"points":[],"depot":1}`, "invalid json body"},
		{"trailing data", `{"points":[]}{}`, "body must contain only one JSON object"},
		{"missing points", `{}`, "points is required"},
		{"duplicate ids", `{"points":[{"id":1,"lat":0,"lon":0,"priority":"high"},{"id":1,"lat":1,"lon":1,"priority":"low"}]}`, "Duplicate point ids are not allowed"},
		{"bad priority", `{"points":[{"id":1,"lat":0,"lon":0,"priority":"urgent"}]}`, "priority"},
		{"bad latitude", `{"points":[{"id":1,"lat":91,"lon":0,"priority":"high"}]}`, "lat must be within"},
		{"bad longitude", `{"points":[{"id":1,"lat":0,"lon":-181,"priority":"high"}]}`, "lon within"},
		{"dp limit low", `{"points":[],"options":{"dp_limit":0}}`, "dp_limit must be between 1 and 16"},
		{"dp limit high", `{"points":[],"options":{"dp_limit":17}}`, "dp_limit must be between 1 and 16"},
		{"bad mode", `{"points":[],"options":{"mode":"fast"}}`, "mode must be one of"},
		{"bad algorithm", `{"points":[],"options":{"algorithm":"genetic"}}`, "algorithm must be one of"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/optimize", tc.body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tc.msg)
		})
	}
}

func TestOptimizeMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/optimize", "")

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestStoredBatches(t *testing.T) {
	repo := &fakeRepo{batches: map[string][]domain.Stop{
		"monday": {
			{ID: 1, Lat: 52.37, Lon: 4.89, Priority: domain.PriorityLow},
			{ID: 2, Lat: 52.36, Lon: 4.90, Priority: domain.PriorityHigh},
			{ID: 3, Lat: 52.38, Lon: 4.88, Priority: domain.PriorityMedium},
			{ID: 4, Lat: 52.35, Lon: 4.91, Priority: domain.PriorityHigh},
		},
	}}
	h := newTestRouter(t, repo, nil)

	rr := do(t, h, http.MethodGet, "/api/stops?batch=monday", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list dto.ListStopsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, "monday", list.Batch)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(list.Stops))

	rr = do(t, h, http.MethodPost, "/api/optimize/stored?batch=monday", `{"options":{"mode":"strict"}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []int{2, 4, 3, 1}, ids(decodeOptimize(t, rr).OrderedPoints))

	rr = do(t, h, http.MethodPost, "/api/optimize/stored?batch=monday", "")
	require.Equal(t, http.StatusOK, rr.Code, "body is optional")

	rr = do(t, h, http.MethodPost, "/api/optimize/stored?batch=tuesday", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/stops", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/optimize/stored?batch=monday", `{"options":{"dp_limit":99}}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStoredBatchErrors(t *testing.T) {
	rr := do(t, newTestRouter(t, nil, nil), http.MethodGet, "/api/stops?batch=monday", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	broken := &fakeRepo{err: errors.New("connection refused")}
	rr = do(t, newTestRouter(t, broken, nil), http.MethodGet, "/api/stops?batch=monday", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestRequestID(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := do(t, h, http.MethodGet, "/health", "")
	assert.Len(t, rr.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(t, nil, rate.NewLimiter(rate.Limit(0.001), 1))
	body := `{"points":[]}`

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/optimize", body).Code)

	rr := do(t, h, http.MethodPost, "/api/optimize", body)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code, "health is not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RegisterDefault()
	h := newTestRouter(t, nil, nil)
	do(t, h, http.MethodPost, "/api/optimize", `{"points":`+samplePoints+`}`)

	rr := do(t, h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rr.Body.String(), "route_optimizations_total")
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="POST",path="/api/optimize",status="200"}`)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m promdto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func seriesCount(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	n := 0
	for range ch {
		n++
	}
	return n
}

func TestMetricsCollapseUnknownPaths(t *testing.T) {
	h := newTestRouter(t, nil, nil)
	unknown := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "other", "404")

	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/x1", "").Code)
	before := counterValue(t, unknown)
	series := seriesCount(metrics.HTTPRequests)

	do(t, h, http.MethodGet, "/x2", "")
	do(t, h, http.MethodGet, "/wp-admin/setup.php", "")

	assert.Equal(t, before+2, counterValue(t, unknown))
	assert.Equal(t, series, seriesCount(metrics.HTTPRequests), "unknown paths must not add series")
}

func TestMetricsLabelRoutePattern(t *testing.T) {
	h := newTestRouter(t, &fakeRepo{}, nil)
	stored := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/stops", "404")
	before := counterValue(t, stored)

	do(t, h, http.MethodGet, "/api/stops?batch=a", "")
	do(t, h, http.MethodGet, "/api/stops?batch=b", "")

	assert.Equal(t, before+2, counterValue(t, stored))
}

func TestOptimizeRejectsExactSolveOfLargeTier(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	points := make([]dto.PointIn, 40)
	for i := range points {
		points[i] = dto.PointIn{ID: i + 1, Lat: 52.3 + float64(i)*0.001, Lon: 4.9, Priority: "high"}
	}
	body, err := json.Marshal(map[string]any{"points": points, "options": map[string]any{"algorithm": "dp"}})
	require.NoError(t, err)

	rr := do(t, h, http.MethodPost, "/api/optimize", string(body))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "high tier has 40 stops")

	body, err = json.Marshal(map[string]any{"points": points, "options": map[string]any{"algorithm": "auto"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/optimize", string(body)).Code, "auto switches to the heuristic")
}

func TestOptimizeRejectsTooManyPoints(t *testing.T) {
	planner := services.NewPlanner(0, nil, nil)
	planner.MaxStops = 3
	h := NewRouter(Deps{Planner: planner, Defaults: domain.DefaultOptions()})

	rr := do(t, h, http.MethodPost, "/api/optimize", `{"points":`+samplePoints+`}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "too many stops")
}

func TestStoredBatchRejectsExactSolveOfLargeTier(t *testing.T) {
	stops := make([]domain.Stop, 20)
	for i := range stops {
		stops[i] = domain.Stop{ID: i + 1, Lat: 52.3 + float64(i)*0.001, Lon: 4.9, Priority: domain.PriorityLow}
	}
	h := newTestRouter(t, &fakeRepo{batches: map[string][]domain.Stop{"big": stops}}, nil)

	rr := do(t, h, http.MethodPost, "/api/optimize/stored?batch=big", `{"options":{"algorithm":"dp","dp_limit":16}}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "low tier has 20 stops")
}
