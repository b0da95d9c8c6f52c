package reconciling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
	"go.uber.org/mock/gomock"
)

// fixedNow corresponde a 2024-01-16 no calendário local de Los Angeles
var fixedNow = time.Date(2024, 1, 16, 20, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		ReconciliationSync: config.ReconciliationSync{
			AttributionWindowDays: 7,
		},
		MarketplaceTimezones: map[string]string{
			"US": "America/Los_Angeles",
			"JP": "Asia/Tokyo",
		},
	}
}

func newTestReconciler(
	recordRepo *mocks.MockPerformanceRecordRepository,
	reportRepo *mocks.MockBatchReportRepository,
) Reconciler {
	cfg := testConfig()
	reconciler := NewService(cfg, timezoning.NewService(cfg), recordRepo, reportRepo)
	reconciler.(*service).now = func() time.Time { return fixedNow }
	return reconciler
}

func usAccount(attributionDays int) *domain.AdAccount {
	return &domain.AdAccount{
		ID:                    "ACC001",
		ExternalID:            "ext-us-001",
		MarketplaceCode:       "US",
		AttributionWindowDays: attributionDays,
		Status:                domain.AdAccountStatusActive,
	}
}

func reportRow(campaignID string, impressions int64) *domain.BatchReportRow {
	return &domain.BatchReportRow{
		AccountID:  "ACC001",
		CampaignID: campaignID,
		LocalDate:  "2024-01-10",
		Metrics: domain.PerformanceMetrics{
			Impressions: impressions,
			Clicks:      impressions / 10,
			Cost:        12.5,
		},
	}
}

func TestEligibleDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)
	reconciler := newTestReconciler(recordRepo, reportRepo)

	tests := []struct {
		name      string
		account   *domain.AdAccount
		localDate string
		expected  bool
	}{
		{
			name:      "Data no limite da janela da conta é elegível",
			account:   usAccount(2),
			localDate: "2024-01-14",
			expected:  true,
		},
		{
			name:      "Data dentro da janela da conta não é elegível",
			account:   usAccount(2),
			localDate: "2024-01-15",
			expected:  false,
		},
		{
			name:      "Dia corrente nunca é elegível",
			account:   usAccount(2),
			localDate: "2024-01-16",
			expected:  false,
		},
		{
			name:      "Conta sem janela própria usa o padrão global",
			account:   usAccount(0),
			localDate: "2024-01-09",
			expected:  true,
		},
		{
			name:      "Padrão global bloqueia data mais recente",
			account:   usAccount(0),
			localDate: "2024-01-10",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, reconciler.EligibleDate(tt.account, tt.localDate))
		})
	}
}

// A elegibilidade é medida no calendário local do marketplace, não no UTC do
// servidor: às 20h UTC de 16/01 já é 17/01 em Tóquio, então o cutoff da conta
// japonesa avança um dia em relação ao da americana.
func TestEligibleDateFusoLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)
	reconciler := newTestReconciler(recordRepo, reportRepo)

	jpAccount := &domain.AdAccount{
		ID:                    "ACC002",
		MarketplaceCode:       "JP",
		AttributionWindowDays: 2,
		Status:                domain.AdAccountStatusActive,
	}

	assert.True(t, reconciler.EligibleDate(jpAccount, "2024-01-15"))
	assert.False(t, reconciler.EligibleDate(usAccount(2), "2024-01-15"))
}

func TestReconcileAccountDateValidacoes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)
	reconciler := newTestReconciler(recordRepo, reportRepo)

	result, err := reconciler.ReconcileAccountDate(nil, "2024-01-10")
	assert.ErrorIs(t, err, ErrAccountRequired)
	assert.Nil(t, result)

	result, err = reconciler.ReconcileAccountDate(usAccount(2), "2024-01-15")
	assert.ErrorIs(t, err, ErrWithinAttributionWindow)
	assert.Nil(t, result)
}

func TestReconcileAccountDateSemLinhas(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	reportRepo.EXPECT().
		GetRowsByAccountAndDate("ACC001", "2024-01-10").
		Return([]*domain.BatchReportRow{}, nil)

	reconciler := newTestReconciler(recordRepo, reportRepo)

	result, err := reconciler.ReconcileAccountDate(usAccount(2), "2024-01-10")
	assert.NoError(t, err)
	assert.Equal(t, 0, result.RowsFinalized)
	assert.Equal(t, int64(0), result.PushPropagated)
}

func TestReconcileAccountDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	rows := []*domain.BatchReportRow{
		reportRow("camp-1", 1000),
		reportRow("camp-2", 500),
	}

	reportRepo.EXPECT().
		GetRowsByAccountAndDate("ACC001", "2024-01-10").
		Return(rows, nil)

	var persisted []*domain.PerformanceRecord
	recordRepo.EXPECT().
		UpsertCanonical(gomock.Any()).
		DoAndReturn(func(record *domain.PerformanceRecord) error {
			persisted = append(persisted, record)
			return nil
		}).
		Times(2)

	recordRepo.EXPECT().
		FinalizePushForDate("ACC001", "2024-01-10").
		Return(int64(3), nil)

	reconciler := newTestReconciler(recordRepo, reportRepo)

	result, err := reconciler.ReconcileAccountDate(usAccount(2), "2024-01-10")
	assert.NoError(t, err)
	assert.Equal(t, 2, result.RowsFinalized)
	assert.Equal(t, int64(3), result.PushPropagated)

	assert.Len(t, persisted, 2)
	assert.Equal(t, domain.DataSourceBatch, persisted[0].DataSource)
	assert.Equal(t, "camp-1", persisted[0].CampaignID)
	assert.Equal(t, int64(1000), persisted[0].Metrics.Impressions)
}

func TestReconcileAccountDateFalhaParcial(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	rows := []*domain.BatchReportRow{
		reportRow("camp-1", 1000),
		reportRow("camp-2", 500),
	}

	reportRepo.EXPECT().
		GetRowsByAccountAndDate("ACC001", "2024-01-10").
		Return(rows, nil)

	gomock.InOrder(
		recordRepo.EXPECT().UpsertCanonical(gomock.Any()).Return(errors.New("deadlock detected")),
		recordRepo.EXPECT().UpsertCanonical(gomock.Any()).Return(nil),
	)

	// Mesmo com falha parcial a finalização dos push gravados prossegue; a
	// próxima varredura completa a célula que faltou
	recordRepo.EXPECT().
		FinalizePushForDate("ACC001", "2024-01-10").
		Return(int64(1), nil)

	reconciler := newTestReconciler(recordRepo, reportRepo)

	result, err := reconciler.ReconcileAccountDate(usAccount(2), "2024-01-10")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.RowsFinalized)
	assert.Equal(t, int64(1), result.PushPropagated)
}

func TestReconcileAccountDateFalhaNaPropagacao(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	reportRepo := mocks.NewMockBatchReportRepository(ctrl)

	reportRepo.EXPECT().
		GetRowsByAccountAndDate("ACC001", "2024-01-10").
		Return([]*domain.BatchReportRow{reportRow("camp-1", 1000)}, nil)

	recordRepo.EXPECT().UpsertCanonical(gomock.Any()).Return(nil)
	recordRepo.EXPECT().
		FinalizePushForDate("ACC001", "2024-01-10").
		Return(int64(0), errors.New("connection reset"))

	reconciler := newTestReconciler(recordRepo, reportRepo)

	result, err := reconciler.ReconcileAccountDate(usAccount(2), "2024-01-10")
	assert.Error(t, err)
	assert.Equal(t, 1, result.RowsFinalized)
}
