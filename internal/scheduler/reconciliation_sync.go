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
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/reconciling"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

// ReconciliationSyncConfig representa a configuração do agendador de reconciliação
type ReconciliationSyncConfig struct {
	CronSchedule      string
	LookbackDays      int
	MaxConcurrentJobs int
	RetentionDays     int
	SyncEnabled       bool
}

// ReconciliationSyncService gerencia o agendamento e execução da varredura de
// reconciliação que promove dados batch a registros canônicos finalizados
type ReconciliationSyncService struct {
	scheduler           *gocron.Scheduler
	config              ReconciliationSyncConfig
	accountRepo         repository.AccountRepository
	reconciler          reconciling.Reconciler
	resolver            timezoning.Resolver
	messageRepo         repository.ProcessedMessageRepository
	reportRepo          repository.BatchReportRepository
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewReconciliationSyncService cria uma nova instância do serviço de varredura de reconciliação
func NewReconciliationSyncService(
	accountRepo repository.AccountRepository,
	reconciler reconciling.Reconciler,
	resolver timezoning.Resolver,
	messageRepo repository.ProcessedMessageRepository,
	reportRepo repository.BatchReportRepository,
	appConfig *config.Config,
) *ReconciliationSyncService {
	syncConfig := ReconciliationSyncConfig{
		CronSchedule:      appConfig.ReconciliationSync.CronSchedule,
		LookbackDays:      appConfig.ReconciliationSync.LookbackDays,
		MaxConcurrentJobs: appConfig.ReconciliationSync.MaxConcurrentJobs,
		RetentionDays:     appConfig.Ingestion.DedupRetentionDays,
		SyncEnabled:       appConfig.ReconciliationSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"lookback_days":       syncConfig.LookbackDays,
		"max_concurrent_jobs": syncConfig.MaxConcurrentJobs,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de reconciliação carregada")

	return &ReconciliationSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		accountRepo: accountRepo,
		reconciler:  reconciler,
		resolver:    resolver,
		messageRepo: messageRepo,
		reportRepo:  reportRepo,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *ReconciliationSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Varredura de reconciliação desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reconciliação")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.reconcileAllAccounts()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura de reconciliação: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reconciliação")
		s.scheduler.Stop()
	}()

	return nil
}

// reconcileAllAccounts reconcilia as datas elegíveis de todas as contas ativas
func (s *ReconciliationSyncService) reconcileAllAccounts() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Varredura de reconciliação já em andamento, ignorando")
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

	logrus.Info("Iniciando varredura de reconciliação para todas as contas ativas")

	activeAccounts, err := s.getActiveAccounts()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de contas para a varredura de reconciliação")
		return
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta ativa encontrada para a varredura de reconciliação")
		return
	}

	s.processAccounts(activeAccounts)
	s.cleanupRetention()

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"accounts": len(activeAccounts),
		"days":     s.config.LookbackDays,
	}).Info("Varredura de reconciliação concluída")

	s.lastSyncCompletedAt = time.Now()
}

func (s *ReconciliationSyncService) getActiveAccounts() ([]*domain.AdAccount, error) {
	activeAccounts, err := s.accountRepo.ListAccounts([]domain.AdAccountStatus{domain.AdAccountStatusActive})
	if err != nil {
		return nil, err
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta encontrada para a varredura de reconciliação")
		return []*domain.AdAccount{}, nil
	}

	logrus.WithFields(logrus.Fields{
		"active_accounts": len(activeAccounts),
	}).Info("Contas encontradas para a varredura de reconciliação")

	return activeAccounts, nil
}

// processAccounts reconcilia as contas em paralelo limitado por semáforo
func (s *ReconciliationSyncService) processAccounts(accounts []*domain.AdAccount) {
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, account := range accounts {
		wg.Add(1)
		semaphore <- struct{}{} // Adquirir semáforo

		go func(acc *domain.AdAccount) {
			defer func() {
				<-semaphore // Liberar semáforo
				wg.Done()
			}()

			s.reconcileAccount(acc)
		}(account)
	}

	wg.Wait()
}

// reconcileAccount percorre a janela de lookback da conta em ordem
// cronológica, pulando as datas ainda dentro da janela de atribuição
func (s *ReconciliationSyncService) reconcileAccount(acc *domain.AdAccount) {
	timezone := s.resolver.ResolveTimezone(acc.MarketplaceCode, acc.TimezoneOverride)
	dates := s.getDatesToProcess(timezone)

	logrus.WithFields(logrus.Fields{
		"account_id":   acc.ID,
		"account_name": acc.Name,
		"timezone":     timezone,
		"total_dates":  len(dates),
	}).Info("Reconciliando conta")

	for _, localDate := range dates {
		if !s.reconciler.EligibleDate(acc, localDate) {
			logrus.WithFields(logrus.Fields{
				"account_id": acc.ID,
				"local_date": localDate,
			}).Debug("Data ainda dentro da janela de atribuição, pulando")
			continue
		}

		result, err := s.reconciler.ReconcileAccountDate(acc, localDate)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": acc.ID,
				"local_date": localDate,
				"error":      err.Error(),
			}).Error("Erro ao reconciliar conta e data")
			continue
		}

		if result.RowsFinalized > 0 {
			logrus.WithFields(logrus.Fields{
				"account_id":     acc.ID,
				"local_date":     localDate,
				"rows_finalized": result.RowsFinalized,
			}).Info("Data reconciliada com sucesso")
		}
	}
}

// getDatesToProcess cria o conjunto de datas locais do lookback, da mais
// antiga para a mais recente
func (s *ReconciliationSyncService) getDatesToProcess(timezone string) []string {
	now := time.Now().UTC()
	dates := make([]string, 0, s.config.LookbackDays)
	for i := s.config.LookbackDays; i >= 1; i-- {
		dates = append(dates, s.resolver.LocalDateOfTime(now.AddDate(0, 0, -i), timezone))
	}
	return dates
}

// cleanupRetention expira os registros de deduplicação e as linhas de staging
// do relatório que já passaram da janela de retenção. Roda ao fim de cada
// varredura: as datas cobertas pela retenção já foram reconciliadas e
// finalizadas, então nada aqui apaga dado ainda necessário.
func (s *ReconciliationSyncService) cleanupRetention() {
	if s.config.RetentionDays <= 0 {
		return
	}

	deletedMessages, err := s.messageRepo.DeleteOlderThan(s.config.RetentionDays)
	if err != nil {
		logrus.WithError(err).Error("Erro ao expirar registros de deduplicação")
	}

	deletedRows, err := s.reportRepo.DeleteOlderThan(s.config.RetentionDays)
	if err != nil {
		logrus.WithError(err).Error("Erro ao expirar linhas de staging do relatório")
	}

	if deletedMessages > 0 || deletedRows > 0 {
		logrus.WithFields(logrus.Fields{
			"retention_days":  s.config.RetentionDays,
			"dedup_deleted":   deletedMessages,
			"staging_deleted": deletedRows,
		}).Info("Janela de retenção aplicada")
	}
}

// TriggerManualSync inicia manualmente uma varredura de reconciliação
func (s *ReconciliationSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Varredura de reconciliação já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando varredura manual de reconciliação")
	go s.reconcileAllAccounts()
}

// GetStatus retorna o status atual do agendador
func (s *ReconciliationSyncService) GetStatus() map[string]any {
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
