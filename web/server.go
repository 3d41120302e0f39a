package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"skipcut/frame"
	"skipcut/player"
	"skipcut/timeline"
	"skipcut/util"
)

// Server is the remote-control HTTP surface for one editing session. It
// mutates the timeline through the manager and mirrors transport commands
// to the scheduler, the same collaborators the interactive shell drives.
type Server struct {
	manager       *timeline.Manager
	scheduler     *player.Scheduler
	cache         *frame.Cache
	log           *slog.Logger
	metrics       *Metrics
	preloadRadius int
}

// NewServer wires the HTTP surface over an editing session. Metrics may be
// nil to disable metric recording (e.g. in tests).
func NewServer(manager *timeline.Manager, scheduler *player.Scheduler, cache *frame.Cache,
	log *slog.Logger, m *Metrics, preloadRadius int) *Server {
	return &Server{
		manager:       manager,
		scheduler:     scheduler,
		cache:         cache,
		log:           log,
		metrics:       m,
		preloadRadius: preloadRadius,
	}
}

// Router builds the chi router with all session endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(RequestMetrics(s.metrics))
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			s.metrics.Handler(s.refreshGauges).ServeHTTP(w, req)
		})
	}

	r.Get("/status", s.GetStatus)
	r.Get("/segments", s.GetSegments)
	r.Get("/frame", s.GetFrame)
	r.Post("/delete", s.DeleteRange)
	r.Post("/undo", s.Undo)
	r.Post("/redo", s.Redo)
	r.Post("/play", s.Play)
	r.Post("/pause", s.Pause)
	r.Post("/stop", s.Stop)
	r.Post("/seek", s.Seek)
	return r
}

func (s *Server) refreshGauges() {
	stats := s.cache.Stats()
	s.metrics.cacheHits.Set(float64(stats.Hits))
	s.metrics.cacheMisses.Set(float64(stats.Misses))
	s.metrics.cacheEvictions.Set(float64(stats.Evictions))
	s.metrics.decodeErrors.Set(float64(stats.DecodeErrors))
	s.metrics.cachedFrames.Set(float64(s.cache.Len()))
	s.metrics.segmentCount.Set(float64(s.manager.SegmentCount()))
	s.metrics.virtualDuration.Set(s.manager.TotalDuration().Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusResponse struct {
	State           string `json:"state"`
	SourceTimeMS    int64  `json:"source_time_ms"`
	VirtualTimeMS   *int64 `json:"virtual_time_ms"`
	DurationMS      int64  `json:"duration_ms"`
	VirtualTotalMS  int64  `json:"virtual_total_ms"`
	SegmentCount    int    `json:"segment_count"`
	CanUndo         bool   `json:"can_undo"`
	CanRedo         bool   `json:"can_redo"`
	PlayheadDeleted bool   `json:"playhead_in_deleted_range"`
}

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	src := s.scheduler.CurrentTime()
	resp := statusResponse{
		State:          s.scheduler.State().String(),
		SourceTimeMS:   src.Milliseconds(),
		DurationMS:     s.scheduler.Duration().Milliseconds(),
		VirtualTotalMS: s.manager.TotalDuration().Milliseconds(),
		SegmentCount:   s.manager.SegmentCount(),
		CanUndo:        s.manager.CanUndo(),
		CanRedo:        s.manager.CanRedo(),
	}
	if v, ok := s.manager.SourceToVirtual(src); ok {
		ms := v.Milliseconds()
		resp.VirtualTimeMS = &ms
	} else {
		resp.PlayheadDeleted = true
	}
	writeJSON(w, http.StatusOK, resp)
}

type segmentResponse struct {
	SourceStartMS  int64 `json:"source_start_ms"`
	SourceEndMS    int64 `json:"source_end_ms"`
	VirtualStartMS int64 `json:"virtual_start_ms"`
	DurationMS     int64 `json:"duration_ms"`
}

// GetSegments handles GET /segments.
func (s *Server) GetSegments(w http.ResponseWriter, r *http.Request) {
	segs := s.manager.Snapshot().Segments()
	out := make([]segmentResponse, 0, len(segs))
	var accumulated time.Duration
	for _, seg := range segs {
		out = append(out, segmentResponse{
			SourceStartMS:  seg.SourceStart.Milliseconds(),
			SourceEndMS:    seg.SourceEnd.Milliseconds(),
			VirtualStartMS: accumulated.Milliseconds(),
			DurationMS:     seg.Duration().Milliseconds(),
		})
		accumulated += seg.Duration()
	}
	writeJSON(w, http.StatusOK, out)
}

type rangeRequest struct {
	StartMS int64 `json:"start_ms"`
	EndMS   int64 `json:"end_ms"`
}

// DeleteRange handles POST /delete.
// Body: { "start_ms": 10000, "end_ms": 20000 }, both on the virtual timeline.
func (s *Server) DeleteRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	err := s.manager.DeleteRange(
		time.Duration(req.StartMS)*time.Millisecond,
		time.Duration(req.EndMS)*time.Millisecond)
	if err != nil {
		if errors.Is(err, timeline.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("delete failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"applied": s.manager.Undo()})
}

// Redo handles POST /redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"applied": s.manager.Redo()})
}

// Play handles POST /play.
func (s *Server) Play(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Play()
	w.WriteHeader(http.StatusNoContent)
}

// Pause handles POST /pause.
func (s *Server) Pause(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Pause()
	w.WriteHeader(http.StatusNoContent)
}

// Stop handles POST /stop.
func (s *Server) Stop(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Stop()
	w.WriteHeader(http.StatusNoContent)
}

type seekRequest struct {
	VirtualMS int64 `json:"virtual_ms"`
}

// Seek handles POST /seek. Body: { "virtual_ms": 15000 }. The position is
// on the virtual timeline; the server converts to source time before
// handing it to the scheduler.
func (s *Server) Seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	v := util.ClampDuration(time.Duration(req.VirtualMS)*time.Millisecond, 0, s.manager.TotalDuration())
	src := s.manager.VirtualToSource(v)
	s.scheduler.Seek(src)
	s.cache.Preload(src, s.preloadRadius)
	w.WriteHeader(http.StatusNoContent)
}

// GetFrame handles GET /frame?virtual_ms=15000, returning the frame at a
// virtual position as JPEG.
func (s *Server) GetFrame(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.ParseInt(r.URL.Query().Get("virtual_ms"), 10, 64)
	if err != nil || ms < 0 {
		writeError(w, http.StatusBadRequest, "virtual_ms must be a non-negative integer")
		return
	}
	v := util.ClampDuration(time.Duration(ms)*time.Millisecond, 0, s.manager.TotalDuration())
	src := s.manager.VirtualToSource(v)

	f, err := s.cache.GetFrame(src)
	if err != nil {
		if errors.Is(err, frame.ErrCacheClosed) {
			writeError(w, http.StatusServiceUnavailable, "session closed")
			return
		}
		s.log.Error("frame decode failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "frame decode failed")
		return
	}
	s.cache.Preload(src, s.preloadRadius)

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}
