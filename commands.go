package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"skipcut/editshell"
	"skipcut/frame"
	"skipcut/player"
	"skipcut/timeline"
	"skipcut/util"
	"skipcut/web"
)

const shutdownTimeout = 10 * time.Second

func handleLsCommand() {
	db, err := util.InitDatabase()
	if err != nil {
		fmt.Printf("Error initializing database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	videos, err := db.ListVideos()
	if err != nil {
		fmt.Printf("Error listing videos: %v\n", err)
		os.Exit(1)
	}
	if len(videos) == 0 {
		fmt.Println("No videos opened yet. Use: skipcut open <path>")
		return
	}

	fmt.Printf("%-40s %-12s %-8s %-10s %s\n", "Title", "Duration", "FPS", "Size", "Opened")
	fmt.Printf("%-40s %-12s %-8s %-10s %s\n", "-----", "--------", "---", "----", "------")
	for _, v := range videos {
		fmt.Printf("%-40s %-12s %-8.2f %-10s %s\n",
			truncate(v.Title, 40),
			util.FormatTimestamp(v.Duration),
			v.FrameRate,
			humanize.Bytes(uint64(v.SizeBytes)),
			humanize.Time(v.LastOpened))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// session is everything one opened video needs: the timeline manager, the
// frame cache over an ffmpeg decoder, and the playback scheduler.
type session struct {
	video     *util.Video
	db        *util.Database
	manager   *timeline.Manager
	cache     *frame.Cache
	scheduler *player.Scheduler
	radius    int
}

func (s *session) close() {
	s.scheduler.Stop()
	if err := s.cache.Close(); err != nil {
		fmt.Printf("Warning: closing frame cache: %v\n", err)
	}
	s.db.Close()
}

// openSession probes (or re-reads from the library) the video at path and
// wires the editing collaborators around it.
func openSession(path string, audio player.Audio) (*session, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	db, err := util.InitDatabase()
	if err != nil {
		return nil, fmt.Errorf("initialize library: %w", err)
	}

	video, found := db.GetVideoByPath(absPath)
	if !found || video.SizeBytes != stat.Size() {
		info, err := frame.ProbeVideo(absPath)
		if err != nil {
			db.Close()
			return nil, err
		}
		video = &util.Video{
			Path:      absPath,
			Title:     filepath.Base(absPath),
			Duration:  info.Duration,
			FrameRate: util.ClampFloat(info.FrameRate, 1, 240),
			SizeBytes: stat.Size(),
		}
	}
	if err := db.SaveVideo(video); err != nil {
		fmt.Printf("Warning: failed to save library entry: %v\n", err)
	}

	log := util.NewLogger(util.GetEnv("LOG_LEVEL", "info"), util.GetEnv("LOG_FORMAT", "text"))
	capacity := util.GetEnvInt("SKIPCUT_CACHE_CAPACITY", frame.DefaultCapacity)
	histDepth := util.GetEnvInt("SKIPCUT_HISTORY_DEPTH", timeline.DefaultHistoryDepth)
	radius := util.Clamp(util.GetEnvInt("SKIPCUT_PRELOAD_RADIUS", 5), 1, 30)

	dec, err := frame.NewFFmpegDecoder(absPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	cache, err := frame.NewCache(dec, capacity, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	manager := timeline.NewManager(histDepth)
	manager.Load(video.Duration)

	scheduler := player.NewScheduler(manager.Snapshot, audio, log)
	scheduler.Load(video.Duration, video.FrameRate)

	// The preloader follows the playhead so playback and scrubbing around
	// the current position stay on the cache hit path.
	scheduler.OnTimeChanged(func(t time.Duration) {
		cache.Preload(t, radius)
	})

	return &session{
		video:     video,
		db:        db,
		manager:   manager,
		cache:     cache,
		scheduler: scheduler,
		radius:    radius,
	}, nil
}

func handleOpenCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: skipcut open <path>")
		os.Exit(1)
	}

	sess, err := openSession(os.Args[2], player.NewFFplayAudio(os.Args[2]))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.close()

	shell := editshell.NewShell(sess.video, sess.manager, sess.scheduler, sess.cache, sess.radius)
	shell.Run()
}

func handleServeCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: skipcut serve <path>")
		os.Exit(1)
	}

	sess, err := openSession(os.Args[2], player.NullAudio{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer sess.close()

	log := util.NewLogger(util.GetEnv("LOG_LEVEL", "info"), util.GetEnv("LOG_FORMAT", "text"))
	port := util.GetEnv("SKIPCUT_PORT", "8090")

	srv := web.NewServer(sess.manager, sess.scheduler, sess.cache, log, web.NewMetrics(), sess.radius)
	httpSrv := &http.Server{Addr: ":" + port, Handler: srv.Router()}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("serving editing session",
		"video", sess.video.Title,
		"duration", sess.video.Duration.String(),
		"port", port,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
