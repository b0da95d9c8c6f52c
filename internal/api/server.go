package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/api/handler"
	"github.com/vfg2006/ad-performance-reconciler/internal/api/handler/router"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/consumer"
	"github.com/vfg2006/ad-performance-reconciler/internal/scheduler"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/backfilling"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/checking"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/fusing"
	"github.com/vfg2006/ad-performance-reconciler/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Server struct {
	httpServer *http.Server
}

func New(
	config *config.Config,
	accountRepo repository.AccountRepository,
	fusionService fusing.Engine,
	checkerService checking.Checker,
	backfillService backfilling.Detector,
	ingestQueue *consumer.Consumer,
	reconciliationSyncService *scheduler.ReconciliationSyncService,
	consistencySyncService *scheduler.ConsistencyCheckSyncService,
	backfillSyncService *scheduler.BackfillScanSyncService,
) (*Server, error) {
	// Inicializar o struct com os serviços de cron jobs
	cronServices := handler.CronJobServices{
		ReconciliationSyncService:   reconciliationSyncService,
		ConsistencyCheckSyncService: consistencySyncService,
		BackfillScanSyncService:     backfillSyncService,
	}

	rt := router.New(
		router.WithRoutes(handler.Healthcheck()...),
		router.WithRoutes(handler.Metrics()...),
		router.WithRoutes(handler.AdAccounts(accountRepo)...),
		router.WithRoutes(handler.Performance(fusionService)...),
		router.WithRoutes(handler.Backfill(backfillService)...),
		router.WithRoutes(handler.Consistency(accountRepo, checkerService, consistencySyncService)...),
		router.WithRoutes(handler.Events(ingestQueue)...),
		router.WithRoutes(handler.CronJobs(cronServices)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(),
	}

	handler := alice.New(middlewares...).Then(rt)

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}

	return srv, nil
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	// Canal para aguardar sinais de término
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// Aguardar pelo sinal ou pelo cancelamento do contexto
	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	// Define timeout para desligamento
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Log de início do desligamento
	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	logrus.Info("Executando operações de limpeza antes do desligamento")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
