package reconciling

import (
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/metrics"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

// Erros específicos do contexto de reconciliação
var (
	// ErrWithinAttributionWindow indica que a data ainda está dentro da
	// janela de atribuição da conta e não pode ser finalizada
	ErrWithinAttributionWindow = errors.New("data ainda dentro da janela de atribuição")
	ErrAccountRequired         = errors.New("conta é obrigatória")
)

// DayResult resume a reconciliação de uma data local de uma conta
type DayResult struct {
	AccountID      string `json:"account_id"`
	LocalDate      string `json:"local_date"`
	RowsFinalized  int    `json:"rows_finalized"`
	PushPropagated int64  `json:"push_propagated"`
}

// Reconciler grava o registro canônico de cada célula depois que a janela de
// atribuição da conta passou e faz a transição terminal para finalizado.
// A varredura é idempotente: reexecutar a mesma janela regrava os mesmos
// valores canônicos e não tem efeitos colaterais.
type Reconciler interface {
	ReconcileAccountDate(account *domain.AdAccount, localDate string) (*DayResult, error)
	// EligibleDate informa se a data local já saiu da janela de atribuição
	// da conta
	EligibleDate(account *domain.AdAccount, localDate string) bool
}

type service struct {
	resolver   timezoning.Resolver
	recordRepo repository.PerformanceRecordRepository
	reportRepo repository.BatchReportRepository

	defaultAttributionDays int

	// injetável para testes com datas fixas
	now func() time.Time
}

// NewService cria o serviço de reconciliação canônica
func NewService(
	cfg *config.Config,
	resolver timezoning.Resolver,
	recordRepo repository.PerformanceRecordRepository,
	reportRepo repository.BatchReportRepository,
) Reconciler {
	return &service{
		resolver:               resolver,
		recordRepo:             recordRepo,
		reportRepo:             reportRepo,
		defaultAttributionDays: cfg.ReconciliationSync.AttributionWindowDays,
		now:                    time.Now,
	}
}

func (s *service) EligibleDate(account *domain.AdAccount, localDate string) bool {
	attributionDays := account.AttributionWindowDays
	if attributionDays <= 0 {
		attributionDays = s.defaultAttributionDays
	}

	timezone := s.resolver.ResolveTimezone(account.MarketplaceCode, account.TimezoneOverride)

	// A elegibilidade é calculada no calendário local do marketplace: o "hoje"
	// da conta, não o "hoje" UTC do servidor
	localToday, err := time.Parse(time.DateOnly, s.resolver.LocalDateOfTime(s.now(), timezone))
	if err != nil {
		return false
	}
	cutoff := localToday.AddDate(0, 0, -attributionDays).Format(time.DateOnly)

	// Datas são YYYY-MM-DD, então comparação lexicográfica é comparação
	// cronológica
	return localDate <= cutoff
}

func (s *service) ReconcileAccountDate(account *domain.AdAccount, localDate string) (*DayResult, error) {
	if account == nil {
		return nil, ErrAccountRequired
	}

	// Nunca finalizar uma data ainda dentro da janela: os números de
	// conversão ainda vão mudar e finalizado é terminal
	if !s.EligibleDate(account, localDate) {
		return nil, ErrWithinAttributionWindow
	}

	rows, err := s.reportRepo.GetRowsByAccountAndDate(account.ID, localDate)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao buscar linhas do relatório periódico")
	}

	result := &DayResult{
		AccountID: account.ID,
		LocalDate: localDate,
	}

	if len(rows) == 0 {
		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"local_date": localDate,
		}).Debug("Nenhuma linha de relatório para reconciliar")
		return result, nil
	}

	for _, row := range rows {
		record := &domain.PerformanceRecord{
			AccountID:  row.AccountID,
			CampaignID: row.CampaignID,
			AdGroupID:  row.AdGroupID,
			LocalDate:  row.LocalDate,
			Metrics:    row.Metrics,
			DataSource: domain.DataSourceBatch,
		}

		if err := s.recordRepo.UpsertCanonical(record); err != nil {
			// Falha em uma célula não derruba o resto da data; a próxima
			// varredura é idempotente e completa o que faltou
			logrus.WithFields(logrus.Fields{
				"account_id":  account.ID,
				"campaign_id": row.CampaignID,
				"local_date":  localDate,
				"error":       err.Error(),
			}).Error("Erro ao gravar registro canônico")
			continue
		}

		result.RowsFinalized++
		metrics.RecordsFinalized.Inc()
	}

	// Propagar a finalização para os registros push das células agora
	// canônicas, fechando a guarda "grava a menos que finalizado"
	propagated, err := s.recordRepo.FinalizePushForDate(account.ID, localDate)
	if err != nil {
		return result, pkgerrors.Wrap(err, "erro ao propagar finalização para registros push")
	}
	result.PushPropagated = propagated

	logrus.WithFields(logrus.Fields{
		"account_id":      account.ID,
		"local_date":      localDate,
		"rows_finalized":  result.RowsFinalized,
		"push_propagated": result.PushPropagated,
	}).Info("Data local reconciliada com dados canônicos")

	return result, nil
}
