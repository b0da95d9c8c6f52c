package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/backfilling"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

// BackfillScanSyncConfig representa a configuração do agendador de varredura de backfill
type BackfillScanSyncConfig struct {
	CronSchedule string
	LookbackDays int
	SyncEnabled  bool
}

// BackfillScanSyncService varre periodicamente as contas ativas em busca de
// datas cobertas apenas pelo batch, onde a stream push perdeu dados
type BackfillScanSyncService struct {
	scheduler           *gocron.Scheduler
	config              BackfillScanSyncConfig
	accountRepo         repository.AccountRepository
	detector            backfilling.Detector
	resolver            timezoning.Resolver
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewBackfillScanSyncService cria uma nova instância do serviço de varredura de backfill
func NewBackfillScanSyncService(
	accountRepo repository.AccountRepository,
	detector backfilling.Detector,
	resolver timezoning.Resolver,
	appConfig *config.Config,
) *BackfillScanSyncService {
	syncConfig := BackfillScanSyncConfig{
		CronSchedule: appConfig.BackfillScanSync.CronSchedule,
		LookbackDays: appConfig.BackfillScanSync.LookbackDays,
		SyncEnabled:  appConfig.BackfillScanSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"lookback_days": syncConfig.LookbackDays,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de varredura de backfill carregada")

	return &BackfillScanSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		accountRepo: accountRepo,
		detector:    detector,
		resolver:    resolver,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *BackfillScanSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Varredura de backfill desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de varredura de backfill")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.scanAllAccounts()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura de backfill: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de varredura de backfill")
		s.scheduler.Stop()
	}()

	return nil
}

// scanAllAccounts verifica as datas do lookback de todas as contas ativas
func (s *BackfillScanSyncService) scanAllAccounts() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Varredura de backfill já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando varredura de backfill para todas as contas ativas")

	activeAccounts, err := s.accountRepo.ListAccounts([]domain.AdAccountStatus{domain.AdAccountStatusActive})
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de contas para a varredura de backfill")
		return
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta ativa encontrada para a varredura de backfill")
		return
	}

	totalCandidates := 0
	for _, account := range activeAccounts {
		totalCandidates += s.scanAccount(account)
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":   duration.String(),
		"accounts":   len(activeAccounts),
		"candidates": totalCandidates,
	}).Info("Varredura de backfill concluída")

	s.lastSyncCompletedAt = time.Now()
}

// scanAccount verifica as datas do lookback de uma conta e retorna quantas
// precisam de backfill
func (s *BackfillScanSyncService) scanAccount(acc *domain.AdAccount) int {
	timezone := s.resolver.ResolveTimezone(acc.MarketplaceCode, acc.TimezoneOverride)
	now := time.Now().UTC()

	candidates := 0
	for i := 1; i <= s.config.LookbackDays; i++ {
		localDate := s.resolver.LocalDateOfTime(now.AddDate(0, 0, -i), timezone)

		result, err := s.detector.CheckBackfill(acc.ID, localDate)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": acc.ID,
				"local_date": localDate,
				"error":      err.Error(),
			}).Error("Erro ao verificar backfill para conta e data")
			continue
		}

		if result.NeedsBackfill {
			candidates++
			logrus.WithFields(logrus.Fields{
				"account_id":      acc.ID,
				"local_date":      localDate,
				"candidate_count": result.CandidateCount,
			}).Warn("Data candidata a backfill detectada")
		}
	}

	return candidates
}

// TriggerManualSync inicia manualmente uma varredura de backfill
func (s *BackfillScanSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Varredura de backfill já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando varredura manual de backfill")
	go s.scanAllAccounts()
}

// GetStatus retorna o status atual do agendador
func (s *BackfillScanSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"lookback_days":          s.config.LookbackDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
