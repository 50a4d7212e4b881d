package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ilkoid/gomi-ai/internal/orchestrator"
	"github.com/ilkoid/gomi-ai/pkg/classifier"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/imaging"
	"github.com/ilkoid/gomi-ai/pkg/s3storage"
	"github.com/ilkoid/gomi-ai/pkg/state"
	"github.com/ilkoid/gomi-ai/pkg/upload"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

// components — собранный пайплайн, общий для TUI и CLI команд.
type components struct {
	client  *classifier.Client
	metrics *classifier.Metrics
	storage *s3storage.Client // nil если S3 не настроен
	source  upload.Source
	store   *state.Store
	orch    *orchestrator.Orchestrator
}

// buildComponents собирает пайплайн из глобального cfg.
//
// emitter получает события сжатия и переходов фаз.
func buildComponents(emitter events.Emitter) (*components, error) {
	c := &components{metrics: classifier.NewMetrics()}

	var bucket upload.Source
	if cfg.S3.Enabled() {
		storage, err := s3storage.New(cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to init s3: %w", err)
		}
		c.storage = storage
		bucket = upload.BucketSource{Client: storage}
	}
	c.source = upload.RouterSource{Local: upload.LocalSource{}, Bucket: bucket}

	compressor := imaging.NewCompressor(cfg.ImageProcessing, cfg.Upload.CompressThreshold())
	client, err := classifier.New(cfg.API,
		classifier.WithCompressor(compressor),
		classifier.WithMetrics(c.metrics),
		classifier.WithEmitter(emitter),
	)
	if err != nil {
		return nil, err
	}
	c.client = client

	c.store = state.NewStore(lang)
	c.orch, err = orchestrator.New(orchestrator.Config{
		Classifier: client,
		Store:      c.store,
		Emitter:    emitter,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// serveMetrics поднимает /metrics если задан metrics.listen_addr.
//
// Сервер останавливается при отмене ctx.
func serveMetrics(ctx context.Context, m *classifier.Metrics) {
	addr := cfg.Metrics.ListenAddr
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		utils.Info("Metrics server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
