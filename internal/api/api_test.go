package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/invsim/internal/cache"
	"github.com/andresuchdata/invsim/internal/domain"
	"github.com/andresuchdata/invsim/internal/service"
	"github.com/andresuchdata/invsim/internal/simulation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewSimulationService(cache.NewNoopResultCache(), service.Options{
		Defaults:      simulation.DefaultConfig(),
		HistogramBins: 30,
		SweepWorkers:  2,
		MaxSweepSeeds: 20,
	})
	return NewRouter(&Services{SimulationService: svc}, []string{"*"})
}

func get(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newTestRouter(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetSimulation_Defaults(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation")
	require.Equal(t, http.StatusOK, w.Code)

	var table domain.SimulationTable
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))

	want, err := simulation.Simulate(simulation.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, want.Records, table.Records)
	assert.Equal(t, 100, table.Params.Days)
	assert.Equal(t, int64(533), table.Params.Seed)
}

func TestGetSimulation_QueryOverrides(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation?days=5&initial_inventory=3&restock_prob=0&restock_amount=5&distribution=constant:5")
	require.Equal(t, http.StatusOK, w.Code)

	var table domain.SimulationTable
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &table))
	require.Len(t, table.Records, 5)
	assert.Equal(t, 3, table.Records[0].BeginOfDay)
	assert.Equal(t, 2, table.Records[0].Missed)
	assert.Equal(t, 0, table.Records[1].BeginOfDay)
	assert.Equal(t, 5, table.Records[1].Missed)
	assert.Equal(t, "constant:5", table.Params.Distribution)
}

func TestGetSimulation_BadRequests(t *testing.T) {
	router := newTestRouter()
	for _, target := range []string{
		"/api/v1/simulation?days=0",
		"/api/v1/simulation?days=abc",
		"/api/v1/simulation?restock_prob=1.5",
		"/api/v1/simulation?initial_inventory=-1",
		"/api/v1/simulation?restock_amount=-1",
		"/api/v1/simulation?distribution=normal",
		"/api/v1/simulation?seed=1.5",
		"/api/v1/simulation/series?variable=Demand",
		"/api/v1/simulation/histogram?bins=0",
		"/api/v1/simulation/sweep?seeds=1,x",
		"/api/v1/simulation/sweep?seed_count=21",
		"/api/v1/simulation/sweep?seed_count=9000000000000000000",
		"/api/v1/simulation?days=9000000000000000000",
		"/api/v1/simulation?days=1000001",
		"/api/v1/simulation?restock_amount=9000000000000000000",
		"/api/v1/simulation/dashboard?days=9000000000000000000",
	} {
		w := get(t, router, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), target)
		assert.NotEmpty(t, body["error"], target)
		assert.NotEmpty(t, body["details"], target)
	}
}

func TestGetSeries(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation/series?variable=EndOfDay&days=30")
	require.Equal(t, http.StatusOK, w.Code)

	var series domain.SeriesData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	assert.Equal(t, simulation.EndOfDay, series.Variable)
	assert.Equal(t, "End of Day", series.Label)
	assert.Len(t, series.Values, 30)
	assert.Len(t, series.Days, 30)
}

func TestGetHistogram(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation/histogram?variable=BegOfDay&bins=10")
	require.Equal(t, http.StatusOK, w.Code)

	var data domain.HistogramData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, 100, data.Histogram.Total)
	assert.LessOrEqual(t, len(data.Histogram.Bins), 10)
}

func TestGetDashboard(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation/dashboard?variable=Missed")
	require.Equal(t, http.StatusOK, w.Code)

	var dash domain.SimulationDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dash))
	assert.Equal(t, simulation.Missed, dash.Series.Variable)
	assert.Equal(t, simulation.Missed, dash.Histogram.Variable)
	assert.Equal(t, 100, dash.Summary.Days)
}

func TestGetSweep(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation/sweep?seeds=3,1,2")
	require.Equal(t, http.StatusOK, w.Code)

	var sweep domain.SweepResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sweep))
	require.Len(t, sweep.Runs, 3)
	assert.Equal(t, int64(3), sweep.Runs[0].Seed)
	assert.Equal(t, int64(1), sweep.Runs[1].Seed)

	w = get(t, newTestRouter(), "/api/v1/simulation/sweep?seed=100&seed_count=4")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sweep))
	require.Len(t, sweep.Runs, 4)
	assert.Equal(t, int64(103), sweep.Runs[3].Seed)
}

func TestGetSweep_ClientCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulation/sweep?seed_count=5", nil).WithContext(ctx)
	newTestRouter().ServeHTTP(w, req)

	assert.Equal(t, 499, w.Code)
}

func TestGetDefaults(t *testing.T) {
	w := get(t, newTestRouter(), "/api/v1/simulation/defaults")
	require.Equal(t, http.StatusOK, w.Code)

	var defaults domain.SimulationDefaults
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defaults))
	assert.Equal(t, 0.30, defaults.Params.RestockProbability)
	require.Len(t, defaults.Controls, 4)
	assert.Equal(t, 30.0, defaults.Controls[0].Min)
	assert.Equal(t, 365.0, defaults.Controls[0].Max)
	assert.Equal(t, simulation.MaxHorizonDays, defaults.MaxHorizonDays)
	assert.Equal(t, 20, defaults.MaxSweepSeeds)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, allowAll)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}
