package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/editor"
	"github.com/blue-code/FlexPlay/internal/ffmpeg"
	"github.com/blue-code/FlexPlay/internal/handlers"
	"github.com/blue-code/FlexPlay/internal/history"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/metrics"
	"github.com/blue-code/FlexPlay/internal/middleware"
	"github.com/blue-code/FlexPlay/internal/profiles"
	"github.com/blue-code/FlexPlay/internal/startup"
	"github.com/blue-code/FlexPlay/internal/sweeper"
	"github.com/blue-code/FlexPlay/internal/thumbs"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())

	// External capability and library
	tools := ffmpeg.New()
	lib := library.New(config.Folders)

	// Derived artifact cache
	store, err := artifacts.New(config.CacheDir, tools, ffmpeg.NewProbeCache())
	if err != nil {
		startup.LogFatal("Failed to initialize artifact cache: %v", err)
	}

	// Background thumbnail generation
	sched := thumbs.NewScheduler(store, tools)
	store.SetThumbnailScheduler(sched)

	// Edit pipeline
	pipeline := editor.NewPipeline(tools, store, profiles.Resolve(), editor.NewRegistry())

	// Play history
	hist, err := history.New(context.Background(), config.HistoryDBPath)
	if err != nil {
		startup.LogFatal("Failed to initialize history store: %v", err)
	}
	defer func() {
		if err := hist.Close(); err != nil {
			logging.Warn("close history store: %v", err)
		}
	}()

	// Cache eviction: one sweep at startup, then on the timer.
	sw := sweeper.New(sweeper.Config{
		MaxAge:             config.Cache.MaxAge(),
		MaxSizeBytes:       config.Cache.MaxSizeBytes(),
		Interval:           config.Cache.CleanupInterval(),
		ThumbnailRetention: config.Cache.ThumbnailRetention(),
	}, store, lib)
	go sw.Start()

	h := handlers.New(lib, store, sched, pipeline, sw, hist)
	router := setupRouter(h, config.MetricsEnabled)

	handler := middleware.Logger(middleware.Metrics(router))

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // synchronous artifact builds can hold a response open for minutes
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, sw)

	logging.Info("FlexPlay %s listening on :%s (started in %s)", startup.Version, config.Port, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/folders", h.ListFolders).Methods("GET")
	api.HandleFunc("/videos", h.ListVideos).Methods("GET")
	api.HandleFunc("/video/{folder}/{filename}", h.StreamVideo).Methods("GET")
	api.HandleFunc("/video/{folder}/{filename}", h.DeleteVideo).Methods("DELETE")
	api.HandleFunc("/transcode/{folder}/{filename}", h.GetTranscode).Methods("GET")
	api.HandleFunc("/hls/{folder}/{filename}/playlist.m3u8", h.GetHLSPlaylist).Methods("GET")
	api.HandleFunc("/hls/{folder}/{filename}/{segment}", h.GetHLSSegment).Methods("GET")
	api.HandleFunc("/thumbnail/{folder}/{filename}", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/probe/{folder}/{filename}", h.GetProbe).Methods("GET")
	api.HandleFunc("/edit", h.SubmitEdit).Methods("POST")
	api.HandleFunc("/edit/status/{id}", h.GetEditStatus).Methods("GET")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")
	api.HandleFunc("/history", h.RecordHistory).Methods("POST")
	api.HandleFunc("/cache/sweep", h.RunCacheSweep).Methods("POST")

	// Static UI assets
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))

	return r
}

func handleShutdown(srv *http.Server, sw *sweeper.Sweeper) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Shutdown initiated (%s)", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sw.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}
	logging.Info("Shutdown complete")
}
