package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/mbt"
	mbthttp "github.com/aretw0/mbt/pkg/adapters/http"
	"github.com/aretw0/mbt/pkg/dsl"
	"github.com/aretw0/mbt/pkg/generators"
	"github.com/aretw0/mbt/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, extended bool, opts ...mbt.Option) *mbt.Engine {
	t.Helper()
	b := dsl.New()
	b.Start().Go("A", "e_Init")
	b.Add("A").Go("B", "e_AB/n++")

	opts = append(opts, mbt.WithExtended(extended), mbt.WithInitialData(map[string]string{"n": "0"}))
	eng, err := mbt.New(b.MustBuild(), opts...)
	require.NoError(t, err)
	require.NoError(t, eng.SetGenerator(generators.KindShortestPath))
	return eng
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}

func TestServer_Walk(t *testing.T) {
	h := mbthttp.NewHandler(newEngine(t, true))

	w := do(t, h, http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]string
	decode(t, w, &state)
	assert.Equal(t, "", state["state"], "no state before the first step")

	w = do(t, h, http.MethodGet, "/step/has-next")
	require.Equal(t, http.StatusOK, w.Code)
	var hasNext map[string]bool
	decode(t, w, &hasNext)
	assert.True(t, hasNext["has_next"])

	w = do(t, h, http.MethodPost, "/step/next")
	require.Equal(t, http.StatusOK, w.Code)
	var step mbthttp.StepResponse
	decode(t, w, &step)
	assert.Equal(t, "e_Init", step.Navigate)
	assert.Equal(t, "A", step.Verify)
	assert.Equal(t, "A", step.State)

	w = do(t, h, http.MethodPost, "/step/next")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &step)
	assert.Equal(t, "e_AB/n++", step.Navigate)

	w = do(t, h, http.MethodGet, "/data/n")
	require.Equal(t, http.StatusOK, w.Code)
	var data map[string]string
	decode(t, w, &data)
	assert.Equal(t, "1", data["value"])

	w = do(t, h, http.MethodGet, "/data/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/step/has-next")
	decode(t, w, &hasNext)
	assert.False(t, hasNext["has_next"])

	w = do(t, h, http.MethodPost, "/step/next")
	assert.Equal(t, http.StatusConflict, w.Code, "B is a dead end")

	w = do(t, h, http.MethodPost, "/backtrack")
	require.Equal(t, http.StatusOK, w.Code)
	var back map[string]any
	decode(t, w, &back)
	assert.Equal(t, false, back["backtracked"], "backtracking is disabled")
	assert.Equal(t, "B", back["state"])
}

func TestServer_DataOnPlainMachine(t *testing.T) {
	h := mbthttp.NewHandler(newEngine(t, false))
	w := do(t, h, http.MethodGet, "/data/n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Statistics(t *testing.T) {
	eng := newEngine(t, false)
	h := mbthttp.NewHandler(eng)
	do(t, h, http.MethodPost, "/step/next")

	w := do(t, h, http.MethodGet, "/statistics?format=compact")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edges: 50%, States: 50%, Requirements: n/a", w.Body.String())

	w = do(t, h, http.MethodGet, "/statistics")
	assert.Contains(t, w.Body.String(), "Coverage Edges: 1/2 => 50%")

	w = do(t, h, http.MethodGet, "/statistics?format=verbose")
	assert.Contains(t, w.Body.String(), "Unvisited Vertex: 'B'")

	w = do(t, h, http.MethodGet, "/statistics?format=xml")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	eng := newEngine(t, false, mbt.WithLifecycleHooks(metrics.Hooks()))
	h := mbthttp.NewHandler(eng, mbthttp.WithMetrics(reg))

	do(t, h, http.MethodPost, "/step/next")

	w := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mbt_steps_total 1")
}

func TestServer_NoMetricsRoute(t *testing.T) {
	h := mbthttp.NewHandler(newEngine(t, false))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics").Code)
}

func TestServer_CORS(t *testing.T) {
	h := mbthttp.NewHandler(newEngine(t, false))
	w := do(t, h, http.MethodOptions, "/step/next")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_BroadcastsSteps(t *testing.T) {
	srv := mbthttp.NewServer(newEngine(t, false))
	h := srv.Routes()

	ch, unsubscribe := srv.Streams.Subscribe()
	defer unsubscribe()

	do(t, h, http.MethodPost, "/step/next")

	msg := <-ch
	assert.True(t, strings.Contains(msg, `"navigate":"e_Init"`), msg)
}

func TestStreamManager(t *testing.T) {
	sm := mbthttp.NewStreamManager()
	ch, unsubscribe := sm.Subscribe()
	assert.Equal(t, 1, sm.Subscribers())

	for i := 0; i < 11; i++ {
		sm.Broadcast("x")
	}
	assert.Equal(t, 1, sm.Dropped(), "the buffer holds ten messages")
	assert.Len(t, ch, 10)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, sm.Subscribers())
}
