package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthcheck "github.com/vladislavdragonenkov/costumeshop/internal/health"
	graphqlsvc "github.com/vladislavdragonenkov/costumeshop/internal/service/graphql"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/rest"
	"github.com/vladislavdragonenkov/costumeshop/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает HTTP (REST + GraphQL), gRPC и сервер метрик и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	cfg, err := cfg.withDefaults()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.closeFn(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	router, err := newHTTPHandler(deps, cfg, logger)
	if err != nil {
		return err
	}
	grpcServer, healthServer := newGRPCServer(deps, logger)

	healthHandler := healthcheck.NewHandler(version.Service, version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = grpcLis.Close()
		shutdownHTTP(metricsSrv, logger)
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	httpSrv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	if deps.relay != nil {
		go deps.relay.Run(relayCtx)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("gRPC сервер слушает %s", grpcLis.Addr())
		errCh <- grpcServer.Serve(grpcLis)
	}()
	go func() {
		logger.Infof("HTTP API слушает %s (REST %s/api, GraphQL %s/graphql)", httpLis.Addr(), cfg.PublicURL, cfg.PublicURL)
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := func() {
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		shutdownHTTP(httpSrv, logger)
		stopGRPC(grpcServer, logger)
		flushRelay(deps, stopRelay, logger)
		shutdownHTTP(metricsSrv, logger)
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		stop()
		return ctx.Err()
	case err := <-errCh:
		stop()
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// flushRelay останавливает фоновую доставку и дописывает хвост очереди событий в Kafka.
func flushRelay(deps *runtimeDependencies, stopRelay context.CancelFunc, logger *log.Entry) {
	stopRelay()
	if deps.relay == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if n := deps.relay.Flush(ctx); n > 0 {
		logger.WithField("events", n).Info("flushed pending change events")
	}
}

// newHTTPHandler собирает REST-роутер и монтирует на него GraphQL.
func newHTTPHandler(deps *runtimeDependencies, cfg Config, logger *log.Entry) (*chi.Mux, error) {
	router, err := rest.NewRouter(deps.catalog, rest.Config{
		PublicURL:    cfg.PublicURL,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPM: cfg.RateLimitRPM,
		Logger:       logger.WithField("layer", "http"),
		Metrics:      deps.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build rest router: %w", err)
	}
	graphqlHandler, err := graphqlsvc.NewHandler(deps.catalog, logger.WithField("layer", "graphql"))
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	router.Handle("/graphql", graphqlHandler)
	return router, nil
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
