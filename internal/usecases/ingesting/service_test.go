package ingesting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
	"go.uber.org/mock/gomock"
)

func newTestResolver() timezoning.Resolver {
	cfg := &config.Config{
		MarketplaceTimezones: map[string]string{
			"US": "America/Los_Angeles",
		},
	}
	return timezoning.NewService(cfg)
}

func trafficEvent(messageID, eventTime string) *domain.IncomingEvent {
	return &domain.IncomingEvent{
		MessageID:       messageID,
		DatasetCategory: domain.DatasetCategoryTraffic,
		EventTime:       eventTime,
		CampaignID:      "CAMP01",
		Traffic: &domain.TrafficPayload{
			Impressions: 100,
			Clicks:      5,
			Cost:        2.5,
		},
	}
}

func TestProcessEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    *domain.IncomingEvent
		setup    func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository)
		validate func(t *testing.T, err error)
	}{
		{
			name:  "Evento novo de tráfego é aplicado na data local correta",
			event: trafficEvent("msg-001", "2024-01-15T06:30:00Z"),
			setup: func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository) {
				processedRepo.EXPECT().
					MarkProcessed("msg-001").
					Return(true, nil)

				recordRepo.EXPECT().
					UpsertPushAdditive(gomock.Any()).
					DoAndReturn(func(record *domain.PerformanceRecord) (bool, error) {
						// 06:30 UTC ainda é o dia 14 em Los Angeles
						assert.Equal(t, "2024-01-14", record.LocalDate)
						assert.Equal(t, domain.DataSourcePush, record.DataSource)
						assert.Equal(t, int64(100), record.Metrics.Impressions)
						return true, nil
					})
			},
			validate: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:  "Mensagem duplicada é ignorada sem escrita",
			event: trafficEvent("msg-002", "2024-01-15T06:30:00Z"),
			setup: func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository) {
				processedRepo.EXPECT().
					MarkProcessed("msg-002").
					Return(false, nil)
				// Nenhuma chamada ao repositório de registros
			},
			validate: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDuplicateMessage)
			},
		},
		{
			name:  "Escrita recusada pela guarda de finalização vira no-op",
			event: trafficEvent("msg-003", "2024-01-15T06:30:00Z"),
			setup: func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository) {
				processedRepo.EXPECT().
					MarkProcessed("msg-003").
					Return(true, nil)

				recordRepo.EXPECT().
					UpsertPushAdditive(gomock.Any()).
					Return(false, nil)
			},
			validate: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrFinalizedCell)
			},
		},
		{
			name:  "Falha de persistência desfaz a marcação de dedup",
			event: trafficEvent("msg-004", "2024-01-15T06:30:00Z"),
			setup: func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository) {
				processedRepo.EXPECT().
					MarkProcessed("msg-004").
					Return(true, nil)

				recordRepo.EXPECT().
					UpsertPushAdditive(gomock.Any()).
					Return(false, errors.New("conexão perdida"))

				// Rollback da dedup para que a reentrega tente de novo
				processedRepo.EXPECT().
					Forget("msg-004").
					Return(nil)
			},
			validate: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrPersistenceFailure)
			},
		},
		{
			name: "Evento de tráfego sem payload é descartado mantendo a dedup",
			event: &domain.IncomingEvent{
				MessageID:       "msg-005",
				DatasetCategory: domain.DatasetCategoryTraffic,
				EventTime:       "2024-01-15T06:30:00Z",
				CampaignID:      "CAMP01",
			},
			setup: func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository) {
				processedRepo.EXPECT().
					MarkProcessed("msg-005").
					Return(true, nil)
				// Sem Forget: reentregar um evento inválido não o torna válido
			},
			validate: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMissingPayload)
			},
		},
		{
			name: "Evento de orçamento preenche só o percentual de uso",
			event: &domain.IncomingEvent{
				MessageID:       "msg-006",
				DatasetCategory: domain.DatasetCategoryBudget,
				EventTime:       "2024-01-15T20:00:00Z",
				CampaignID:      "CAMP02",
				Budget: &domain.BudgetPayload{
					BudgetUsagePercent: 83.5,
				},
			},
			setup: func(recordRepo *mocks.MockPerformanceRecordRepository, processedRepo *mocks.MockProcessedMessageRepository) {
				processedRepo.EXPECT().
					MarkProcessed("msg-006").
					Return(true, nil)

				recordRepo.EXPECT().
					UpsertPushAdditive(gomock.Any()).
					DoAndReturn(func(record *domain.PerformanceRecord) (bool, error) {
						assert.NotNil(t, record.BudgetUsagePercent)
						assert.Equal(t, 83.5, *record.BudgetUsagePercent)
						assert.Zero(t, record.Metrics.Impressions)
						return true, nil
					})
			},
			validate: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
			processedRepo := mocks.NewMockProcessedMessageRepository(ctrl)
			tt.setup(recordRepo, processedRepo)

			service := NewService(newTestResolver(), recordRepo, processedRepo)

			err := service.ProcessEvent(tt.event, "ACC001", "America/Los_Angeles")
			tt.validate(t, err)
		})
	}
}

func TestProcessEventOutOfOrder(t *testing.T) {
	// Dois eventos da mesma célula chegando fora de ordem produzem o mesmo
	// total: o merge no banco é aditivo e comutativo
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	processedRepo := mocks.NewMockProcessedMessageRepository(ctrl)

	processedRepo.EXPECT().MarkProcessed(gomock.Any()).Return(true, nil).Times(2)

	total := domain.PerformanceMetrics{}
	recordRepo.EXPECT().
		UpsertPushAdditive(gomock.Any()).
		DoAndReturn(func(record *domain.PerformanceRecord) (bool, error) {
			total.Add(record.Metrics)
			return true, nil
		}).
		Times(2)

	service := NewService(newTestResolver(), recordRepo, processedRepo)

	later := trafficEvent("msg-b", "2024-01-15T18:00:00Z")
	later.Traffic.Impressions = 30
	earlier := trafficEvent("msg-a", "2024-01-15T17:00:00Z")
	earlier.Traffic.Impressions = 70

	// O evento mais recente chega primeiro
	assert.NoError(t, service.ProcessEvent(later, "ACC001", "America/Los_Angeles"))
	assert.NoError(t, service.ProcessEvent(earlier, "ACC001", "America/Los_Angeles"))

	assert.Equal(t, int64(100), total.Impressions)
}

func TestProcessBatch(t *testing.T) {
	// O lote nunca aborta: cada evento é isolado
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	processedRepo := mocks.NewMockProcessedMessageRepository(ctrl)

	processedRepo.EXPECT().MarkProcessed("ok-1").Return(true, nil)
	processedRepo.EXPECT().MarkProcessed("dup-1").Return(false, nil)
	processedRepo.EXPECT().MarkProcessed("bad-1").Return(true, nil)
	processedRepo.EXPECT().MarkProcessed("ok-2").Return(true, nil)

	recordRepo.EXPECT().UpsertPushAdditive(gomock.Any()).Return(true, nil).Times(2)

	service := NewService(newTestResolver(), recordRepo, processedRepo)

	invalid := &domain.IncomingEvent{
		MessageID:       "bad-1",
		DatasetCategory: domain.DatasetCategoryConversion,
		EventTime:       "2024-01-15T12:00:00Z",
		CampaignID:      "CAMP01",
	}

	events := []*domain.IncomingEvent{
		trafficEvent("ok-1", "2024-01-15T12:00:00Z"),
		trafficEvent("dup-1", "2024-01-15T12:00:00Z"),
		invalid,
		trafficEvent("ok-2", "2024-01-15T12:00:00Z"),
	}

	result := service.ProcessBatch(events, "ACC001", "America/Los_Angeles")

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Errors)
}
