package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/stitchup/stitchup/internal/auth"
	"github.com/stitchup/stitchup/internal/blob"
	"github.com/stitchup/stitchup/internal/config"
	"github.com/stitchup/stitchup/internal/events"
	handlers "github.com/stitchup/stitchup/internal/handlers/v1alpha1"
	"github.com/stitchup/stitchup/internal/lifecycle"
	"github.com/stitchup/stitchup/internal/rider"
	"github.com/stitchup/stitchup/internal/service"
	"github.com/stitchup/stitchup/internal/store"
	"github.com/stitchup/stitchup/pkg/metrics"
	"github.com/stitchup/stitchup/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	statusMetricsInterval   = 30 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
}

// New returns a new instance of the stitchup API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
	}
}

func (s *Server) newBlobStore() (blob.Store, error) {
	if s.cfg.Blob.AccessKey == "" {
		zap.S().Named("api_server").Warn("no blob credentials configured, storing proof images in memory")
		return blob.NewMemoryStore(s.cfg.Service.BaseUrl + "/blobs"), nil
	}
	return blob.NewMinioStore(
		blob.WithEndpoint(s.cfg.Blob.Endpoint),
		blob.WithBucket(s.cfg.Blob.Bucket),
		blob.WithAccessKey(s.cfg.Blob.AccessKey),
		blob.WithSecretKey(s.cfg.Blob.SecretKey),
		blob.WithSSL(s.cfg.Blob.UseSSL),
	)
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	blobStore, err := s.newBlobStore()
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}

	auditProducer := events.NewEventProducer(&events.StdoutWriter{})
	defer func() { _ = auditProducer.Close() }()

	broker := events.NewBroker(events.WithAuditProducer(auditProducer))
	defer broker.Close()

	engine := lifecycle.NewEngine(s.store, broker, rider.NewStaticDispatch())
	jobService := service.NewJobService(s.store, engine, broker, blobStore)
	tailorService := service.NewTailorService(s.store)

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticator.Authenticator)
		handlers.NewHandler(jobService, tailorService, broker).Routes(r)
	})

	// keep the job status gauge fresh
	go func() {
		ticker := time.NewTicker(statusMetricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tailorService.RefreshStatusMetrics(ctx); err != nil {
					zap.S().Named("api_server").Warnw("failed to refresh status metrics", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
