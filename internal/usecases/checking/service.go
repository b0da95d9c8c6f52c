package checking

import (
	"errors"
	"math"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/metrics"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
	"github.com/vfg2006/ad-performance-reconciler/pkg/utils"
)

var (
	ErrAccountRequired = errors.New("conta é obrigatória")
)

// Checker compara os totais agregados das duas origens sobre uma janela móvel
// e sinaliza pares (data, campanha) com divergência acima dos limites.
// A varredura é somente leitura sobre um snapshot: não bloqueia nem é
// bloqueada pela ingestão, e tolera correção eventual porque a finalização
// terminal garante convergência.
type Checker interface {
	CheckAccount(account *domain.AdAccount) (*domain.ConsistencyCheckResult, error)
}

type service struct {
	resolver   timezoning.Resolver
	recordRepo repository.PerformanceRecordRepository

	windowDays          int
	trafficThresholdPct float64
	financeThresholdPct float64
	repairEnabled       bool

	// injetável para testes com datas fixas
	now func() time.Time
}

// NewService cria o verificador de consistência com os limites da
// configuração imutável
func NewService(
	cfg *config.Config,
	resolver timezoning.Resolver,
	recordRepo repository.PerformanceRecordRepository,
) Checker {
	return &service{
		resolver:            resolver,
		recordRepo:          recordRepo,
		windowDays:          cfg.ConsistencyCheckSync.WindowDays,
		trafficThresholdPct: cfg.ConsistencyCheckSync.TrafficThresholdPct,
		financeThresholdPct: cfg.ConsistencyCheckSync.FinanceThresholdPct,
		repairEnabled:       cfg.ConsistencyCheckSync.RepairEnabled,
		now:                 time.Now,
	}
}

// cellTotals agrega as métricas de uma campanha em uma data local, somando os
// grupos de anúncio
type cellTotals struct {
	localDate  string
	campaignID string
	metrics    domain.PerformanceMetrics
}

func (s *service) CheckAccount(account *domain.AdAccount) (*domain.ConsistencyCheckResult, error) {
	if account == nil {
		return nil, ErrAccountRequired
	}

	timezone := s.resolver.ResolveTimezone(account.MarketplaceCode, account.TimezoneOverride)
	localToday, err := time.Parse(time.DateOnly, s.resolver.LocalDateOfTime(s.now(), timezone))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao calcular o dia local da conta")
	}

	// Janela móvel terminando ontem: o dia corrente ainda não tem canônico
	// para comparar
	windowEnd := localToday.AddDate(0, 0, -1).Format(time.DateOnly)
	windowStart := localToday.AddDate(0, 0, -s.windowDays).Format(time.DateOnly)

	runID, err := utils.GenerateID()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao gerar ID da varredura")
	}

	result := &domain.ConsistencyCheckResult{
		RunID:        runID,
		AccountID:    account.ID,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		DeviationPct: map[string]float64{},
		Flagged:      []domain.FlaggedCell{},
		CheckedAt:    s.now(),
	}

	pushRecords, err := s.recordRepo.GetByDateRange(account.ID, windowStart, windowEnd, domain.DataSourcePush)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao buscar registros push")
	}

	batchRecords, err := s.recordRepo.GetByDateRange(account.ID, windowStart, windowEnd, domain.DataSourceBatch)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "erro ao buscar registros canônicos")
	}

	pushTotals := aggregateByCell(pushRecords)
	batchTotals := aggregateByCell(batchRecords)

	s.compareCells(result, pushTotals, batchTotals)
	s.aggregateDeviations(result, pushRecords, batchRecords)

	if s.repairEnabled && len(result.Flagged) > 0 {
		result.Repair = s.repairFlagged(account.ID, result.Flagged, batchRecords)
	}

	logrus.WithFields(logrus.Fields{
		"run_id":       result.RunID,
		"account_id":   account.ID,
		"window_start": windowStart,
		"window_end":   windowEnd,
		"flagged":      len(result.Flagged),
	}).Info("Verificação de consistência concluída")

	return result, nil
}

// compareCells sinaliza cada par (data, campanha) cuja divergência ultrapassa
// o limite. A comparação é estritamente maior: exatamente no limite não
// sinaliza. Só comparamos células presentes nas duas origens — ausência total
// de push é assunto do detector de backfill, não de divergência.
func (s *service) compareCells(result *domain.ConsistencyCheckResult, pushTotals, batchTotals map[string]*cellTotals) {
	keys := make([]string, 0, len(batchTotals))
	for key := range batchTotals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		batch := batchTotals[key]
		push, ok := pushTotals[key]
		if !ok {
			continue
		}

		checks := []struct {
			metric       string
			pushValue    float64
			batchValue   float64
			thresholdPct float64
			anyDiff      bool
		}{
			{"impressions", float64(push.metrics.Impressions), float64(batch.metrics.Impressions), s.trafficThresholdPct, false},
			{"clicks", float64(push.metrics.Clicks), float64(batch.metrics.Clicks), s.trafficThresholdPct, false},
			{"cost", push.metrics.Cost, batch.metrics.Cost, s.financeThresholdPct, false},
			{"sales", push.metrics.Sales, batch.metrics.Sales, s.financeThresholdPct, false},
			// Contagem de pedidos diverge com qualquer diferença
			{"orders", float64(push.metrics.Orders), float64(batch.metrics.Orders), 0, true},
		}

		for _, check := range checks {
			deviation := deviationPct(check.pushValue, check.batchValue)

			flagged := false
			if check.anyDiff {
				flagged = check.pushValue != check.batchValue
			} else {
				flagged = deviation > check.thresholdPct
			}

			if flagged {
				result.Flagged = append(result.Flagged, domain.FlaggedCell{
					LocalDate:    batch.localDate,
					CampaignID:   batch.campaignID,
					Metric:       check.metric,
					PushValue:    check.pushValue,
					BatchValue:   check.batchValue,
					DeviationPct: utils.RoundWithTwoDecimalPlace(deviation),
				})
				metrics.ConsistencyCellsFlagged.Inc()
			}
		}
	}
}

// aggregateDeviations calcula o desvio agregado por métrica sobre a janela
// inteira, para o relatório da varredura
func (s *service) aggregateDeviations(result *domain.ConsistencyCheckResult, pushRecords, batchRecords []*domain.PerformanceRecord) {
	var pushSum, batchSum domain.PerformanceMetrics
	for _, record := range pushRecords {
		pushSum.Add(record.Metrics)
	}
	for _, record := range batchRecords {
		batchSum.Add(record.Metrics)
	}

	result.DeviationPct["impressions"] = utils.RoundWithTwoDecimalPlace(deviationPct(float64(pushSum.Impressions), float64(batchSum.Impressions)))
	result.DeviationPct["clicks"] = utils.RoundWithTwoDecimalPlace(deviationPct(float64(pushSum.Clicks), float64(batchSum.Clicks)))
	result.DeviationPct["cost"] = utils.RoundWithTwoDecimalPlace(deviationPct(pushSum.Cost, batchSum.Cost))
	result.DeviationPct["sales"] = utils.RoundWithTwoDecimalPlace(deviationPct(pushSum.Sales, batchSum.Sales))
	result.DeviationPct["orders"] = utils.RoundWithTwoDecimalPlace(deviationPct(float64(pushSum.Orders), float64(batchSum.Orders)))
}

// repairFlagged marca os registros push das células sinalizadas como superados
// pelo canônico. A precedência é total e determinística: o valor canônico
// vence em todas as métricas.
func (s *service) repairFlagged(accountID string, flagged []domain.FlaggedCell, batchRecords []*domain.PerformanceRecord) *domain.RepairOutcome {
	outcome := &domain.RepairOutcome{}

	// Índice do canônico por célula completa (com grupo de anúncio) para
	// reescrever cada registro push com o valor canônico correspondente
	canonical := make(map[domain.RecordKey]*domain.PerformanceRecord, len(batchRecords))
	for _, record := range batchRecords {
		canonical[record.Key()] = record
	}

	// Uma célula pode estar sinalizada por mais de uma métrica; reparar uma
	// vez basta
	repaired := make(map[string]bool)

	for _, cell := range flagged {
		cellID := cell.LocalDate + "/" + cell.CampaignID
		if repaired[cellID] {
			continue
		}
		repaired[cellID] = true

		for key, record := range canonical {
			if key.LocalDate != cell.LocalDate || key.CampaignID != cell.CampaignID {
				continue
			}

			pushKey := key
			affected, err := s.recordRepo.OverwritePushMetrics(pushKey, record.Metrics)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"account_id":  accountID,
					"campaign_id": cell.CampaignID,
					"local_date":  cell.LocalDate,
					"error":       err.Error(),
				}).Error("Erro ao reparar célula divergente")
				outcome.Failures = append(outcome.Failures, cellID)
				continue
			}

			// O push pode existir só em outra granularidade de grupo de
			// anúncio; sem registro na chave exata não há o que reparar
			if affected == 0 {
				logrus.WithFields(logrus.Fields{
					"account_id":  accountID,
					"campaign_id": cell.CampaignID,
					"local_date":  cell.LocalDate,
				}).Debug("Nenhum registro push na chave exata, reparo sem efeito")
				continue
			}

			outcome.CellsRepaired++
		}
	}

	return outcome
}

// aggregateByCell soma as métricas por (data local, campanha), agregando os
// grupos de anúncio de cada campanha
func aggregateByCell(records []*domain.PerformanceRecord) map[string]*cellTotals {
	totals := make(map[string]*cellTotals)

	for _, record := range records {
		key := record.LocalDate + "/" + record.CampaignID
		cell, exists := totals[key]
		if !exists {
			cell = &cellTotals{
				localDate:  record.LocalDate,
				campaignID: record.CampaignID,
			}
			totals[key] = cell
		}
		cell.metrics.Add(record.Metrics)
	}

	return totals
}

// deviationPct calcula o desvio percentual do push em relação ao canônico.
// Canônico zero com push não-zero conta como 100% de desvio.
func deviationPct(pushValue, batchValue float64) float64 {
	if batchValue == 0 {
		if pushValue == 0 {
			return 0
		}
		return 100
	}

	return math.Abs(pushValue-batchValue) / batchValue * 100
}
