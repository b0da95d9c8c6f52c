package ingesting

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/metrics"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
)

// BatchResult resume o processamento de um lote de eventos. O lote nunca
// aborta: cada evento é isolado e falhas apenas incrementam contadores.
type BatchResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Ingestor consome eventos da stream push e os aplica como registros
// provisórios de performance
type Ingestor interface {
	// ProcessEvent ingere um único evento. Retorna nil quando o evento foi
	// aplicado; ErrDuplicateMessage, ErrFinalizedCell e
	// ErrUnsupportedDatasetCategory quando foi pulado por decisão de projeto;
	// qualquer outro erro é falha real.
	ProcessEvent(event *domain.IncomingEvent, accountID, timezone string) error

	// ProcessBatch ingere um lote isolando falhas por evento
	ProcessBatch(events []*domain.IncomingEvent, accountID, timezone string) *BatchResult
}

type service struct {
	resolver      timezoning.Resolver
	recordRepo    repository.PerformanceRecordRepository
	processedRepo repository.ProcessedMessageRepository
}

// NewService cria o serviço de ingestão da stream push
func NewService(
	resolver timezoning.Resolver,
	recordRepo repository.PerformanceRecordRepository,
	processedRepo repository.ProcessedMessageRepository,
) Ingestor {
	return &service{
		resolver:      resolver,
		recordRepo:    recordRepo,
		processedRepo: processedRepo,
	}
}

func (s *service) ProcessEvent(event *domain.IncomingEvent, accountID, timezone string) error {
	// Deduplicação por message_id: a entrega é pelo-menos-uma-vez e fora de
	// ordem, então a idempotência vem daqui, não de qualquer suposição de
	// ordenação. A marcação vem antes da escrita e é desfeita via Forget se a
	// escrita falhar; um crash do processo entre as duas deixa a marcação sem
	// o registro e a reentrega será descartada como duplicada — a varredura de
	// consistência é quem detecta e repara essa perda
	firstTime, err := s.processedRepo.MarkProcessed(event.MessageID)
	if err != nil {
		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "error").Inc()
		return pkgerrors.Wrap(ErrPersistenceFailure, err.Error())
	}

	if !firstTime {
		logrus.WithFields(logrus.Fields{
			"message_id": event.MessageID,
			"account_id": accountID,
		}).Debug("Mensagem duplicada, ignorando")
		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "duplicate").Inc()
		return ErrDuplicateMessage
	}

	// O bucket de data usa sempre event_time, nunca push_timestamp: a hora de
	// entrega não diz nada sobre o dia em que a métrica aconteceu
	localDate := s.resolver.LocalDateOf(event.EventTime, timezone)

	record, err := s.buildRecord(event, accountID, localDate)
	if err != nil {
		// A marcação de dedup fica: reentregar um evento estruturalmente
		// inválido não vai torná-lo válido
		logrus.WithFields(logrus.Fields{
			"message_id": event.MessageID,
			"account_id": accountID,
			"category":   event.DatasetCategory.String(),
			"error":      err.Error(),
		}).Warn("Evento descartado na montagem do registro")
		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "invalid").Inc()
		return err
	}

	applied, err := s.recordRepo.UpsertPushAdditive(record)
	if err != nil {
		// Desfazer a marcação de dedup para que a reentrega tente de novo
		if forgetErr := s.processedRepo.Forget(event.MessageID); forgetErr != nil {
			logrus.WithFields(logrus.Fields{
				"message_id": event.MessageID,
				"error":      forgetErr.Error(),
			}).Error("Erro ao desfazer marcação de dedup após falha de escrita")
		}

		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "error").Inc()
		return pkgerrors.Wrap(ErrPersistenceFailure, err.Error())
	}

	if !applied {
		// Recusado pela guarda de finalização: não é erro, o canônico já
		// pousou e é imutável
		logrus.WithFields(logrus.Fields{
			"message_id":  event.MessageID,
			"account_id":  accountID,
			"campaign_id": event.CampaignID,
			"local_date":  localDate,
		}).Info("Escrita push recusada: célula já finalizada")
		metrics.FinalizedWriteRejections.Inc()
		metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "finalized").Inc()
		return ErrFinalizedCell
	}

	metrics.EventsProcessed.WithLabelValues(event.DatasetCategory.String(), "ok").Inc()
	return nil
}

func (s *service) ProcessBatch(events []*domain.IncomingEvent, accountID, timezone string) *BatchResult {
	result := &BatchResult{}

	for _, event := range events {
		err := s.ProcessEvent(event, accountID, timezone)
		switch {
		case err == nil:
			result.Processed++
		case errors.Is(err, ErrDuplicateMessage),
			errors.Is(err, ErrFinalizedCell),
			errors.Is(err, ErrUnsupportedDatasetCategory):
			result.Skipped++
		default:
			result.Errors++
		}
	}

	if result.Skipped > 0 || result.Errors > 0 {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"processed":  result.Processed,
			"skipped":    result.Skipped,
			"errors":     result.Errors,
		}).Info("Lote de eventos processado com eventos pulados ou com erro")
	}

	return result
}

// buildRecord monta o registro provisório a partir do payload da categoria.
// O switch é exaustivo sobre o enum: uma categoria nova não compila sem uma
// decisão aqui.
func (s *service) buildRecord(event *domain.IncomingEvent, accountID, localDate string) (*domain.PerformanceRecord, error) {
	record := &domain.PerformanceRecord{
		AccountID:  accountID,
		CampaignID: event.CampaignID,
		AdGroupID:  event.AdGroupID,
		LocalDate:  localDate,
		DataSource: domain.DataSourcePush,
	}

	switch event.DatasetCategory {
	case domain.DatasetCategoryTraffic:
		// Tráfego preenche apenas impressões/cliques/custo; o merge aditivo
		// no banco completa a célula quando a conversão chegar
		if event.Traffic == nil {
			return nil, ErrMissingPayload
		}
		record.Metrics.Impressions = event.Traffic.Impressions
		record.Metrics.Clicks = event.Traffic.Clicks
		record.Metrics.Cost = event.Traffic.Cost

	case domain.DatasetCategoryConversion:
		if event.Conversion == nil {
			return nil, ErrMissingPayload
		}
		record.Metrics.Sales = event.Conversion.Sales
		record.Metrics.Orders = event.Conversion.Orders

	case domain.DatasetCategoryBudget:
		if event.Budget == nil {
			return nil, ErrMissingPayload
		}
		usage := event.Budget.BudgetUsagePercent
		record.BudgetUsagePercent = &usage

	case domain.DatasetCategoryUnknown:
		return nil, ErrUnsupportedDatasetCategory

	default:
		return nil, ErrUnsupportedDatasetCategory
	}

	return record, nil
}
