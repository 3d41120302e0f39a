package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skipcut/frame"
	"skipcut/player"
	"skipcut/timeline"
)

type stubDecoder struct{}

func (stubDecoder) DecodeFrameAt(t time.Duration) (*frame.Frame, error) {
	return &frame.Frame{Time: t, Data: []byte{0xff, 0xd8, 0xff}}, nil
}

func (stubDecoder) Close() error { return nil }

func sec(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	m := timeline.NewManager(timeline.DefaultHistoryDepth)
	m.Load(sec(60))

	cache, err := frame.NewCache(stubDecoder{}, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })

	sched := player.NewScheduler(m.Snapshot, player.NullAudio{}, nil)
	sched.Load(sec(60), 30)
	t.Cleanup(sched.Stop)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(m, sched, cache, log, NewMetrics(), 3)
	return srv, srv.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_statusInitial(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != "stopped" || resp.VirtualTotalMS != 60000 || resp.SegmentCount != 1 {
		t.Errorf("unexpected status: %+v", resp)
	}
	if resp.VirtualTimeMS == nil || *resp.VirtualTimeMS != 0 {
		t.Errorf("virtual time = %v, want 0", resp.VirtualTimeMS)
	}
}

func TestServer_deleteUndoRedoFlow(t *testing.T) {
	srv, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/delete", `{"start_ms":10000,"end_ms":20000}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body)
	}
	if srv.manager.TotalDuration() != sec(50) {
		t.Errorf("TotalDuration = %v, want 50s", srv.manager.TotalDuration())
	}

	rec = do(t, h, http.MethodPost, "/undo", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"applied":true`) {
		t.Errorf("undo: %d %s", rec.Code, rec.Body)
	}
	if srv.manager.TotalDuration() != sec(60) {
		t.Errorf("after undo TotalDuration = %v", srv.manager.TotalDuration())
	}

	rec = do(t, h, http.MethodPost, "/redo", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"applied":true`) {
		t.Errorf("redo: %d %s", rec.Code, rec.Body)
	}

	// Empty redo stack reports applied=false, not an error.
	rec = do(t, h, http.MethodPost, "/redo", "")
	if !strings.Contains(rec.Body.String(), `"applied":false`) {
		t.Errorf("second redo: %s", rec.Body)
	}
}

func TestServer_deleteRejectsInvalidRange(t *testing.T) {
	srv, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/delete", `{"start_ms":20000,"end_ms":10000}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/delete", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rec.Code)
	}
	if srv.manager.TotalDuration() != sec(60) {
		t.Error("rejected deletes mutated the timeline")
	}
}

func TestServer_segments(t *testing.T) {
	_, h := newTestServer(t)
	do(t, h, http.MethodPost, "/delete", `{"start_ms":10000,"end_ms":20000}`)

	rec := do(t, h, http.MethodGet, "/segments", "")
	var segs []segmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &segs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[1].SourceStartMS != 20000 || segs[1].VirtualStartMS != 10000 {
		t.Errorf("second segment = %+v", segs[1])
	}
}

func TestServer_seekConvertsVirtualTime(t *testing.T) {
	srv, h := newTestServer(t)
	do(t, h, http.MethodPost, "/delete", `{"start_ms":10000,"end_ms":20000}`)

	rec := do(t, h, http.MethodPost, "/seek", `{"virtual_ms":15000}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("seek status = %d", rec.Code)
	}
	if got := srv.scheduler.CurrentTime(); got != sec(25) {
		t.Errorf("CurrentTime = %v, want source 25s", got)
	}
}

func TestServer_frame(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/frame?virtual_ms=5000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("frame status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty frame body")
	}

	rec = do(t, h, http.MethodGet, "/frame?virtual_ms=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad query status = %d", rec.Code)
	}
}

func TestServer_transportAndMetrics(t *testing.T) {
	srv, h := newTestServer(t)

	if rec := do(t, h, http.MethodPost, "/play", ""); rec.Code != http.StatusNoContent {
		t.Errorf("play status = %d", rec.Code)
	}
	if srv.scheduler.State() != player.Playing {
		t.Errorf("state = %v, want playing", srv.scheduler.State())
	}
	if rec := do(t, h, http.MethodPost, "/pause", ""); rec.Code != http.StatusNoContent {
		t.Errorf("pause status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/stop", ""); rec.Code != http.StatusNoContent {
		t.Errorf("stop status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "skipcut_requests_total") {
		t.Error("metrics output missing request counter")
	}
	if !strings.Contains(rec.Body.String(), "skipcut_segments 1") {
		t.Errorf("metrics output missing segment gauge: %s", rec.Body.String())
	}
}
