package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matzehuels/escapetime/pkg/cache"
	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/fractal"
	"github.com/matzehuels/escapetime/pkg/observability"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(pipeline.NewRunner(c, nil, nil), cfg, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postChart(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/charts", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("healthz = %d %+v", resp.StatusCode, body)
	}
}

func TestPresets(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/v1/presets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body []presetResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body) != len(fractal.Presets) {
		t.Fatalf("got %d presets", len(body))
	}
	if body[1].Name != "seahorse_valley" || body[1].Region.XMin != -0.8 {
		t.Errorf("presets[1] = %+v", body[1])
	}
}

func TestComputeChart(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := postChart(t, ts, `{"points": 4, "threshold": 50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ID == "" || body.CacheHit {
		t.Errorf("id=%q cache_hit=%v", body.ID, body.CacheHit)
	}
	if body.Rows != 4 || body.Cols != 4 || body.Stats.Interior != 2 {
		t.Errorf("shape %dx%d interior %d", body.Rows, body.Cols, body.Stats.Interior)
	}
	want := []fractal.EscapeCount{0, 4, fractal.Interior, 1}
	for j, v := range want {
		if body.Counts[1][j] != v {
			t.Errorf("counts[1][%d] = %v, want %v", j, body.Counts[1][j], v)
		}
	}

	again := postChart(t, ts, `{"points": 4, "threshold": 50}`)
	var second chartResponse
	if err := json.NewDecoder(again.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || second.ID == body.ID {
		t.Errorf("second request: cache_hit=%v id=%q", second.CacheHit, second.ID)
	}
}

func TestComputeChartErrors(t *testing.T) {
	ts := newTestServer(t, Config{MaxPoints: 100, MaxThreshold: 500, MaxCells: 1000})

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", `{"points":`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"zoom": 2}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad mode", `{"mode": "newton", "points": 10}`, http.StatusBadRequest, errors.ErrCodeInvalidMode},
		{"bad range", `{"points": 10, "x_range": [1, 0]}`, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"bad julia", `{"mode": "julia", "points": 10, "threshold": 10, "julia": [1]}`, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"too many cells", `{"points": 50, "threshold": 10, "x_range": [0, 1], "y_range": [0, 21]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"tall region", `{"points": 2, "threshold": 10, "x_range": [0, 1e-9], "y_range": [0, 1]}`, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"too many points", `{"points": 101}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"default points over limit", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"threshold over limit", `{"points": 10, "threshold": 501}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown preset", `{"points": 10, "preset": "atlantis"}`, http.StatusNotFound, errors.ErrCodePresetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postChart(t, ts, tt.body)
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status || body.Code != tt.code {
				t.Errorf("got %d %s (%s), want %d %s", resp.StatusCode, body.Code, body.Message, tt.status, tt.code)
			}
		})
	}
}

func TestComputeChartTimeout(t *testing.T) {
	ts := newTestServer(t, Config{RequestTimeout: time.Nanosecond})
	resp := postChart(t, ts, `{"points": 512, "threshold": 5000}`)
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", resp.StatusCode)
	}
}

func TestComputeChartPreset(t *testing.T) {
	custom := []fractal.Preset{{Name: "unit", Region: fractal.Region{XMin: 0, XMax: 1, YMin: 0, YMax: 1}}}
	ts := newTestServer(t, Config{Presets: custom})

	resp := postChart(t, ts, `{"points": 8, "threshold": 10, "preset": "unit"}`)
	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Region.XMin != 0 || body.Region.YMax != 1 || body.Rows != 8 {
		t.Errorf("region = %+v rows = %d", body.Region, body.Rows)
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	routes   []string
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _ string, route string, status int, _ time.Duration) {
	h.routes = append(h.routes, route)
	h.statuses = append(h.statuses, status)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := New(pipeline.NewRunner(nil, nil, nil), Config{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/charts", bytes.NewBufferString(`{"points": 2}`)))

	if len(hooks.routes) != 1 || hooks.routes[0] != "/v1/charts" || hooks.statuses[0] != http.StatusOK {
		t.Errorf("hooks = %v %v", hooks.routes, hooks.statuses)
	}
}

func dialStream(t *testing.T, ts *httptest.Server) (*websocket.Conn, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/charts/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

type streamReply struct {
	Type     string                `json:"type"`
	Row      int                   `json:"row"`
	Counts   []fractal.EscapeCount `json:"counts"`
	ID       string                `json:"id"`
	Rows     int                   `json:"rows"`
	Cols     int                   `json:"cols"`
	CacheHit bool                  `json:"cache_hit"`
	Code     errors.Code           `json:"code"`
}

func TestStream(t *testing.T) {
	ts := newTestServer(t, Config{})
	conn, ctx := dialStream(t, ts)

	if err := wsjson.Write(ctx, conn, pipeline.Options{Points: 4, Threshold: 50}); err != nil {
		t.Fatal(err)
	}

	rows := map[int][]fractal.EscapeCount{}
	var done streamReply
	for {
		var msg streamReply
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("Read: %v", err)
		}
		if msg.Type == msgRow {
			rows[msg.Row] = msg.Counts
			continue
		}
		done = msg
		break
	}

	if done.Type != msgDone || done.ID == "" || done.Rows != 4 || done.Cols != 4 {
		t.Fatalf("final message = %+v", done)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[2][2] != fractal.Interior || rows[0][1] != 1 {
		t.Errorf("rows = %v", rows)
	}
}

func TestStreamError(t *testing.T) {
	ts := newTestServer(t, Config{MaxPoints: 10})

	tests := []struct {
		name string
		opts pipeline.Options
		code errors.Code
	}{
		{"points over limit", pipeline.Options{Points: 20}, errors.ErrCodeInvalidInput},
		{"bad mode", pipeline.Options{Mode: "newton", Points: 20}, errors.ErrCodeInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, ctx := dialStream(t, ts)
			if err := wsjson.Write(ctx, conn, tt.opts); err != nil {
				t.Fatal(err)
			}
			var msg streamReply
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				t.Fatal(err)
			}
			if msg.Type != msgError || msg.Code != tt.code {
				t.Errorf("reply = %+v, want code %s", msg, tt.code)
			}
		})
	}
}
