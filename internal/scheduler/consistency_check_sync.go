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
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/checking"
)

// ConsistencyCheckSyncConfig representa a configuração do agendador de verificação de consistência
type ConsistencyCheckSyncConfig struct {
	CronSchedule string
	WindowDays   int
	SyncEnabled  bool
}

// ConsistencyCheckSyncService gerencia o agendamento da verificação periódica
// de divergência entre as origens push e batch
type ConsistencyCheckSyncService struct {
	scheduler           *gocron.Scheduler
	config              ConsistencyCheckSyncConfig
	accountRepo         repository.AccountRepository
	checker             checking.Checker
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastResults         map[string]*domain.ConsistencyCheckResult
	resultsMutex        sync.RWMutex
}

// NewConsistencyCheckSyncService cria uma nova instância do serviço de verificação de consistência
func NewConsistencyCheckSyncService(
	accountRepo repository.AccountRepository,
	checker checking.Checker,
	appConfig *config.Config,
) *ConsistencyCheckSyncService {
	syncConfig := ConsistencyCheckSyncConfig{
		CronSchedule: appConfig.ConsistencyCheckSync.CronSchedule,
		WindowDays:   appConfig.ConsistencyCheckSync.WindowDays,
		SyncEnabled:  appConfig.ConsistencyCheckSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"window_days":   syncConfig.WindowDays,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de verificação de consistência carregada")

	return &ConsistencyCheckSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		accountRepo: accountRepo,
		checker:     checker,
		syncRunning: false,
		lastResults: make(map[string]*domain.ConsistencyCheckResult),
	}
}

// Start inicia o agendador
func (s *ConsistencyCheckSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Verificação de consistência desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de verificação de consistência")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.checkAllAccounts()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar verificação de consistência: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de verificação de consistência")
		s.scheduler.Stop()
	}()

	return nil
}

// checkAllAccounts roda a verificação de consistência para todas as contas ativas
func (s *ConsistencyCheckSyncService) checkAllAccounts() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Verificação de consistência já em andamento, ignorando")
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

	logrus.Info("Iniciando verificação de consistência para todas as contas ativas")

	activeAccounts, err := s.accountRepo.ListAccounts([]domain.AdAccountStatus{domain.AdAccountStatusActive})
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de contas para a verificação de consistência")
		return
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta ativa encontrada para a verificação de consistência")
		return
	}

	totalFlagged := 0
	for _, account := range activeAccounts {
		result, err := s.checker.CheckAccount(account)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": account.ID,
				"error":      err.Error(),
			}).Error("Erro ao verificar consistência da conta")
			continue
		}

		s.storeResult(account.ID, result)
		totalFlagged += len(result.Flagged)

		if len(result.Flagged) > 0 {
			logrus.WithFields(logrus.Fields{
				"account_id":    account.ID,
				"run_id":        result.RunID,
				"cells_flagged": len(result.Flagged),
			}).Warn("Divergências encontradas entre as origens push e batch")
		}
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":      duration.String(),
		"accounts":      len(activeAccounts),
		"cells_flagged": totalFlagged,
	}).Info("Verificação de consistência concluída")

	s.lastSyncCompletedAt = time.Now()
}

func (s *ConsistencyCheckSyncService) storeResult(accountID string, result *domain.ConsistencyCheckResult) {
	s.resultsMutex.Lock()
	defer s.resultsMutex.Unlock()
	s.lastResults[accountID] = result
}

// LastResult retorna o resultado da última verificação da conta, se houver
func (s *ConsistencyCheckSyncService) LastResult(accountID string) *domain.ConsistencyCheckResult {
	s.resultsMutex.RLock()
	defer s.resultsMutex.RUnlock()
	return s.lastResults[accountID]
}

// TriggerManualSync inicia manualmente uma verificação de consistência
func (s *ConsistencyCheckSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Verificação de consistência já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando verificação manual de consistência")
	go s.checkAllAccounts()
}

// GetStatus retorna o status atual do agendador
func (s *ConsistencyCheckSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"window_days":            s.config.WindowDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
