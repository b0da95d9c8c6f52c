package checking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-performance-reconciler/internal/config"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
	"github.com/vfg2006/ad-performance-reconciler/internal/usecases/timezoning"
	"go.uber.org/mock/gomock"
)

// fixedNow corresponde a 2024-01-16 em Los Angeles; a janela de 2 dias da
// verificação cobre 14 e 15 de janeiro
var fixedNow = time.Date(2024, 1, 16, 20, 0, 0, 0, time.UTC)

func newTestChecker(t *testing.T, recordRepo *mocks.MockPerformanceRecordRepository, repairEnabled bool) Checker {
	t.Helper()

	cfg := &config.Config{
		ConsistencyCheckSync: config.ConsistencyCheckSync{
			WindowDays:          2,
			TrafficThresholdPct: 5.0,
			FinanceThresholdPct: 5.0,
			RepairEnabled:       repairEnabled,
		},
		MarketplaceTimezones: map[string]string{
			"US": "America/Los_Angeles",
		},
	}

	checker := NewService(cfg, timezoning.NewService(cfg), recordRepo)
	checker.(*service).now = func() time.Time { return fixedNow }
	return checker
}

func usAccount() *domain.AdAccount {
	return &domain.AdAccount{
		ID:              "ACC001",
		MarketplaceCode: "US",
		Status:          domain.AdAccountStatusActive,
	}
}

func pushRecord(localDate, campaignID string, metrics domain.PerformanceMetrics) *domain.PerformanceRecord {
	return &domain.PerformanceRecord{
		AccountID:  "ACC001",
		CampaignID: campaignID,
		LocalDate:  localDate,
		DataSource: domain.DataSourcePush,
		Metrics:    metrics,
	}
}

func batchRecord(localDate, campaignID string, metrics domain.PerformanceMetrics) *domain.PerformanceRecord {
	return &domain.PerformanceRecord{
		AccountID:  "ACC001",
		CampaignID: campaignID,
		LocalDate:  localDate,
		DataSource: domain.DataSourceBatch,
		Metrics:    metrics,
	}
}

func TestCheckAccountContaObrigatoria(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	checker := newTestChecker(t, mocks.NewMockPerformanceRecordRepository(ctrl), false)

	_, err := checker.CheckAccount(nil)
	assert.ErrorIs(t, err, ErrAccountRequired)
}

func TestCheckAccountLimites(t *testing.T) {
	tests := []struct {
		name         string
		push         []*domain.PerformanceRecord
		batch        []*domain.PerformanceRecord
		expectedCell []string // métricas sinalizadas, em ordem
	}{
		{
			name: "Desvio exatamente no limite não sinaliza",
			push: []*domain.PerformanceRecord{
				// 1050 vs 1000 = exatos 5%
				pushRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1050}),
			},
			batch: []*domain.PerformanceRecord{
				batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1000}),
			},
			expectedCell: []string{},
		},
		{
			name: "Desvio de 5,01% no custo sinaliza",
			push: []*domain.PerformanceRecord{
				// 10.501 vs 10.00 = 5.01%
				pushRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Cost: 10.501}),
			},
			batch: []*domain.PerformanceRecord{
				batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Cost: 10.0}),
			},
			expectedCell: []string{"cost"},
		},
		{
			name: "Desvio logo acima do limite sinaliza",
			push: []*domain.PerformanceRecord{
				// 1051 vs 1000 = 5.1%
				pushRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1051}),
			},
			batch: []*domain.PerformanceRecord{
				batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1000}),
			},
			expectedCell: []string{"impressions"},
		},
		{
			name: "Pedidos divergem com qualquer diferença",
			push: []*domain.PerformanceRecord{
				pushRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Orders: 10}),
			},
			batch: []*domain.PerformanceRecord{
				batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Orders: 11}),
			},
			expectedCell: []string{"orders"},
		},
		{
			name: "Célula só no canônico não é divergência",
			push: nil,
			batch: []*domain.PerformanceRecord{
				batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1000}),
			},
			expectedCell: []string{},
		},
		{
			name: "Canônico zero com push não-zero conta como 100% de desvio",
			push: []*domain.PerformanceRecord{
				pushRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 40, Cost: 1.5}),
			},
			batch: []*domain.PerformanceRecord{
				batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{}),
			},
			expectedCell: []string{"impressions", "cost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
			recordRepo.EXPECT().
				GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourcePush).
				Return(tt.push, nil)
			recordRepo.EXPECT().
				GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourceBatch).
				Return(tt.batch, nil)

			checker := newTestChecker(t, recordRepo, false)

			result, err := checker.CheckAccount(usAccount())
			assert.NoError(t, err)

			flaggedMetrics := make([]string, 0, len(result.Flagged))
			for _, cell := range result.Flagged {
				flaggedMetrics = append(flaggedMetrics, cell.Metric)
			}
			assert.Equal(t, tt.expectedCell, flaggedMetrics)
		})
	}
}

func TestCheckAccountAgregaGruposDeAnuncio(t *testing.T) {
	// A comparação é em nível de campanha: os grupos de anúncio de cada
	// campanha são somados antes de comparar
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adGroupA := "AG01"
	adGroupB := "AG02"

	push := []*domain.PerformanceRecord{
		{AccountID: "ACC001", CampaignID: "CAMP01", AdGroupID: &adGroupA, LocalDate: "2024-01-14", DataSource: domain.DataSourcePush, Metrics: domain.PerformanceMetrics{Impressions: 600}},
		{AccountID: "ACC001", CampaignID: "CAMP01", AdGroupID: &adGroupB, LocalDate: "2024-01-14", DataSource: domain.DataSourcePush, Metrics: domain.PerformanceMetrics{Impressions: 400}},
	}
	batch := []*domain.PerformanceRecord{
		batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1000}),
	}

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	recordRepo.EXPECT().
		GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourcePush).
		Return(push, nil)
	recordRepo.EXPECT().
		GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourceBatch).
		Return(batch, nil)

	checker := newTestChecker(t, recordRepo, false)

	result, err := checker.CheckAccount(usAccount())
	assert.NoError(t, err)
	assert.Empty(t, result.Flagged)
	assert.Equal(t, 0.0, result.DeviationPct["impressions"])
}

func TestCheckAccountReparaComPrecedenciaCanonica(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	canonicalMetrics := domain.PerformanceMetrics{Impressions: 1000, Clicks: 50, Cost: 10, Sales: 200, Orders: 4}

	push := []*domain.PerformanceRecord{
		pushRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1200, Clicks: 50, Cost: 10, Sales: 200, Orders: 4}),
	}
	batch := []*domain.PerformanceRecord{
		batchRecord("2024-01-14", "CAMP01", canonicalMetrics),
	}

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	recordRepo.EXPECT().
		GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourcePush).
		Return(push, nil)
	recordRepo.EXPECT().
		GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourceBatch).
		Return(batch, nil)

	// O reparo sobrescreve o push com o valor canônico em todas as métricas
	recordRepo.EXPECT().
		OverwritePushMetrics(batch[0].Key(), canonicalMetrics).
		Return(int64(1), nil)

	checker := newTestChecker(t, recordRepo, true)

	result, err := checker.CheckAccount(usAccount())
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Flagged)
	assert.NotNil(t, result.Repair)
	assert.Equal(t, 1, result.Repair.CellsRepaired)
	assert.Empty(t, result.Repair.Failures)
}

func TestCheckAccountReparoSemRegistroNaChaveExata(t *testing.T) {
	// A célula diverge na comparação agregada por campanha, mas o push só
	// existe em outra granularidade de grupo de anúncio: a sobrescrita não
	// atinge nenhum registro e não conta como reparo
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adGroup := "AG01"
	push := []*domain.PerformanceRecord{
		{AccountID: "ACC001", CampaignID: "CAMP01", AdGroupID: &adGroup, LocalDate: "2024-01-14", DataSource: domain.DataSourcePush, Metrics: domain.PerformanceMetrics{Impressions: 1200}},
	}
	batch := []*domain.PerformanceRecord{
		batchRecord("2024-01-14", "CAMP01", domain.PerformanceMetrics{Impressions: 1000}),
	}

	recordRepo := mocks.NewMockPerformanceRecordRepository(ctrl)
	recordRepo.EXPECT().
		GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourcePush).
		Return(push, nil)
	recordRepo.EXPECT().
		GetByDateRange("ACC001", "2024-01-14", "2024-01-15", domain.DataSourceBatch).
		Return(batch, nil)

	recordRepo.EXPECT().
		OverwritePushMetrics(batch[0].Key(), batch[0].Metrics).
		Return(int64(0), nil)

	checker := newTestChecker(t, recordRepo, true)

	result, err := checker.CheckAccount(usAccount())
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Flagged)
	assert.NotNil(t, result.Repair)
	assert.Equal(t, 0, result.Repair.CellsRepaired)
	assert.Empty(t, result.Repair.Failures)
}
