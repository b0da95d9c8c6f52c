package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/database/postgres"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/api"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/consumer"
	"github.com/vfg2006/ad-performance-reconciler/internal/scheduler"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/backfilling"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/checking"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/fusing"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/ingesting"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/reconciling"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	accountRepo := repository.NewAccountRepository(pgConn)
	recordRepo := repository.NewPerformanceRecordRepository(pgConn)
	processedRepo := repository.NewProcessedMessageRepository(pgConn)
	reportRepo := repository.NewBatchReportRepository(pgConn)

	resolver := timezoning.NewService(cfg)

	ingestService := ingesting.NewService(resolver, recordRepo, processedRepo)
	reconcileService := reconciling.NewService(cfg, resolver, recordRepo, reportRepo)
	fusionService := fusing.NewService(cfg, resolver, accountRepo, recordRepo)
	checkerService := checking.NewService(cfg, resolver, recordRepo)
	backfillService := backfilling.NewService(recordRepo)

	// Fila interna de ingestão da stream push
	ingestQueue := consumer.New(cfg.Ingestion, accountRepo, resolver, ingestService)
	if cfg.Ingestion.ConsumerEnabled {
		ingestQueue.Start(ctx)
	} else {
		logrus.Info("Consumidor da fila de ingestão desabilitado por configuração")
	}

	// Inicializa os agendadores de sincronização separados
	reconciliationSyncService := scheduler.NewReconciliationSyncService(
		accountRepo,
		reconcileService,
		resolver,
		processedRepo,
		reportRepo,
		cfg,
	)

	consistencySyncService := scheduler.NewConsistencyCheckSyncService(
		accountRepo,
		checkerService,
		cfg,
	)

	backfillSyncService := scheduler.NewBackfillScanSyncService(
		accountRepo,
		backfillService,
		resolver,
		cfg,
	)

	// Inicia os agendadores em background
	if err := reconciliationSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação")
	} else {
		logrus.Info("Agendador de reconciliação iniciado com sucesso")
	}

	if err := consistencySyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de verificação de consistência")
	} else {
		logrus.Info("Agendador de verificação de consistência iniciado com sucesso")
	}

	if err := backfillSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de varredura de backfill")
	} else {
		logrus.Info("Agendador de varredura de backfill iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		accountRepo,
		fusionService,
		checkerService,
		backfillService,
		ingestQueue,
		reconciliationSyncService,
		consistencySyncService,
		backfillSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
