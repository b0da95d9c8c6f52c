package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
	"go.uber.org/mock/gomock"
)

func newRetentionSyncService(
	messageRepo *mocks.MockProcessedMessageRepository,
	reportRepo *mocks.MockBatchReportRepository,
	retentionDays int,
) *ReconciliationSyncService {
	cfg := &config.Config{
		ReconciliationSync: config.ReconciliationSync{
			CronSchedule: "0 5 * * *",
			LookbackDays: 14,
		},
		Ingestion: config.Ingestion{
			DedupRetentionDays: retentionDays,
		},
	}

	return NewReconciliationSyncService(nil, nil, nil, messageRepo, reportRepo, cfg)
}

func TestCleanupRetention(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	messageRepo := mocks.NewMockProcessedMessageRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	messageRepo.EXPECT().DeleteOlderThan(35).Return(int64(120), nil)
	reportRepo.EXPECT().DeleteOlderThan(35).Return(int64(40), nil)

	service := newRetentionSyncService(messageRepo, reportRepo, 35)
	service.cleanupRetention()
}

func TestCleanupRetentionDesabilitada(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Retenção zero ou negativa desliga a limpeza: nenhuma chamada esperada
	messageRepo := mocks.NewMockProcessedMessageRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	service := newRetentionSyncService(messageRepo, reportRepo, 0)
	service.cleanupRetention()
}

func TestCleanupRetentionSegueAposFalha(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	messageRepo := mocks.NewMockProcessedMessageRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	// Falha na expiração de dedup não impede a limpeza do staging
	messageRepo.EXPECT().DeleteOlderThan(35).Return(int64(0), errors.New("connection refused"))
	reportRepo.EXPECT().DeleteOlderThan(35).Return(int64(7), nil)

	service := newRetentionSyncService(messageRepo, reportRepo, 35)
	service.cleanupRetention()
}

func TestGetDatesToProcessOrdemCronologica(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &config.Config{
		ReconciliationSync: config.ReconciliationSync{
			LookbackDays: 14,
		},
		MarketplaceTimezones: map[string]string{},
	}
	service := NewReconciliationSyncService(
		nil,
		nil,
		timezoning.NewService(cfg),
		mocks.NewMockProcessedMessageRepository(ctrl),
		mocks.NewMockBatchReportRepository(ctrl),
		cfg,
	)

	dates := service.getDatesToProcess("UTC")
	assert.Len(t, dates, 14)
	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i])
	}
}
