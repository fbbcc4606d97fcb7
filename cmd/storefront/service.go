package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"storefront/pkg/storefront/application/query"
	"storefront/pkg/storefront/application/service"
	"storefront/pkg/storefront/domain/model"
	domainservice "storefront/pkg/storefront/domain/service"
	"storefront/pkg/storefront/infrastructure/auth"
	"storefront/pkg/storefront/infrastructure/event"
	"storefront/pkg/storefront/infrastructure/mysql"
	"storefront/pkg/storefront/infrastructure/transport"
	"storefront/pkg/storefront/infrastructure/upload"
)

func serviceCommand() *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "serve the REST API and the gRPC health endpoint",
		Action: func(c *cli.Context) error {
			cnf, err := parseEnv()
			if err != nil {
				return err
			}
			return runService(c.Context, cnf)
		},
	}
}

func runService(ctx context.Context, cnf *config) error {
	if cnf.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	policy, err := domainservice.ParseStatusPolicy(cnf.StatusTransitionPolicy)
	if err != nil {
		return err
	}

	db, err := mysql.NewConnection(ctx, cnf.database())
	if err != nil {
		return err
	}
	defer db.Close()

	images, err := upload.NewStorage(cnf.UploadDir)
	if err != nil {
		return err
	}

	dispatcher := event.NewDispatcher(log.StandardLogger())
	dispatcher.Subscribe(model.ProductStockChanged{}.Type(), event.StockAuditHandler(log.StandardLogger()))
	dispatcher.Subscribe(model.OrderStatusChanged{}.Type(), event.OrderStatusAuditHandler(log.StandardLogger()))

	uow := mysql.NewUnitOfWork(db)
	tokens := auth.NewTokenManager(cnf.JWTSecret, cnf.JWTTTL)

	router := transport.Router(transport.Dependencies{
		Products:     service.NewProductService(uow, dispatcher),
		Carts:        service.NewCartService(uow),
		Orders:       service.NewOrderService(uow, dispatcher, policy),
		Users:        service.NewUserService(uow, dispatcher, auth.NewPasswordManager(), tokens),
		Settings:     service.NewSettingService(uow),
		OrderQueries: mysql.NewOrderQueryService(db),
		Reports:      query.NewReportService(mysql.NewReportQueryService(db), nil),
		Tokens:       tokens,
		Images:       images,
		Health: func(ctx context.Context) error {
			return mysql.Ping(ctx, db)
		},
	})

	httpServer := &http.Server{
		Addr:              cnf.ServeRESTAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	killSignalChan := getKillSignalChan()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("address", cnf.ServeRESTAddress).Info("starting REST server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "REST server failed")
		}
		return nil
	})
	g.Go(func() error {
		listener, err := net.Listen("tcp", cnf.ServeGRPCAddress)
		if err != nil {
			return errors.Wrap(err, "failed to listen for gRPC")
		}
		log.WithField("address", cnf.ServeGRPCAddress).Info("starting gRPC server")
		return errors.Wrap(grpcServer.Serve(listener), "gRPC server failed")
	})
	g.Go(func() error {
		watchDatabase(gctx, db, healthServer, cnf.DBPingInterval)
		return nil
	})
	g.Go(func() error {
		select {
		case killSignal := <-killSignalChan:
			log.WithField("signal", killSignal.String()).Info("shutting down")
		case <-gctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cnf.ShutdownTimeout)
		defer shutdownCancel()

		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "REST server shutdown failed")
	})

	return g.Wait()
}

// watchDatabase keeps the gRPC health status in line with database reachability.
func watchDatabase(ctx context.Context, db *sqlx.DB, healthServer *health.Server, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := grpc_health_v1.HealthCheckResponse_SERVING
	healthServer.SetServingStatus("", serving)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status := grpc_health_v1.HealthCheckResponse_SERVING
		pingCtx, cancel := context.WithTimeout(ctx, interval/2)
		err := mysql.Ping(pingCtx, db)
		cancel()
		if err != nil {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
		if status != serving {
			log.WithError(err).WithField("status", status.String()).Warn("database health changed")
			serving = status
		}
		healthServer.SetServingStatus("", status)
		healthServer.SetServingStatus(appID, status)
	}
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}
