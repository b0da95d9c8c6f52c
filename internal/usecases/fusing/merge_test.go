package fusing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
)

func record(source domain.DataSource, localDate, campaignID string, impressions int64) *domain.PerformanceRecord {
	return &domain.PerformanceRecord{
		AccountID:  "ACC001",
		CampaignID: campaignID,
		LocalDate:  localDate,
		DataSource: source,
		Metrics: domain.PerformanceMetrics{
			Impressions: impressions,
			Clicks:      impressions / 10,
			Cost:        float64(impressions) / 100,
		},
	}
}

func TestMergePushFirst(t *testing.T) {
	mergeCtx := MergeContext{Today: "2024-01-16"}

	batch := []*domain.PerformanceRecord{
		record(domain.DataSourceBatch, "2024-01-14", "CAMP01", 1000),
		record(domain.DataSourceBatch, "2024-01-15", "CAMP01", 1100),
	}
	push := []*domain.PerformanceRecord{
		record(domain.DataSourcePush, "2024-01-15", "CAMP01", 1090),
		record(domain.DataSourcePush, "2024-01-16", "CAMP01", 300),
	}

	merged := MergePushFirst(batch, push, mergeCtx)

	assert.Len(t, merged, 3)

	// Histórico vem do canônico
	assert.Equal(t, domain.DataSourceBatch, merged[0].DataSource)
	assert.Equal(t, domain.DataSourceBatch, merged[1].DataSource)
	assert.Equal(t, int64(1100), merged[1].Metrics.Impressions)

	// O dia corrente vem do push
	assert.Equal(t, "2024-01-16", merged[2].LocalDate)
	assert.Equal(t, domain.DataSourcePush, merged[2].DataSource)
}

func TestMergeBatchFirst(t *testing.T) {
	batch := []*domain.PerformanceRecord{
		record(domain.DataSourceBatch, "2024-01-14", "CAMP01", 1000),
	}
	push := []*domain.PerformanceRecord{
		record(domain.DataSourcePush, "2024-01-14", "CAMP01", 1050),
		record(domain.DataSourcePush, "2024-01-15", "CAMP01", 500),
	}

	merged := MergeBatchFirst(batch, push, MergeContext{})

	assert.Len(t, merged, 2)

	// Canônico vence na célula em comum
	assert.Equal(t, domain.DataSourceBatch, merged[0].DataSource)
	assert.Equal(t, int64(1000), merged[0].Metrics.Impressions)

	// Push preenche a célula sem canônico
	assert.Equal(t, domain.DataSourcePush, merged[1].DataSource)
}

func TestMergeWeighted(t *testing.T) {
	batch := []*domain.PerformanceRecord{
		record(domain.DataSourceBatch, "2024-01-14", "CAMP01", 1000),
	}
	push := []*domain.PerformanceRecord{
		record(domain.DataSourcePush, "2024-01-15", "CAMP01", 100),
	}

	merged := MergeWeighted(batch, push, MergeContext{PushWeight: 0.8})

	assert.Len(t, merged, 2)

	// Canônico entra com peso total
	assert.Equal(t, int64(1000), merged[0].Metrics.Impressions)

	// Push entra escalado e com contagens arredondadas
	assert.Equal(t, int64(80), merged[1].Metrics.Impressions)
	assert.Equal(t, int64(8), merged[1].Metrics.Clicks)
	assert.InDelta(t, 0.8, merged[1].Metrics.Cost, 0.0001)
}

func TestMergeWeightedPesoInvalido(t *testing.T) {
	push := []*domain.PerformanceRecord{
		record(domain.DataSourcePush, "2024-01-15", "CAMP01", 100),
	}

	// Peso fora de (0,1) mantém o registro intacto
	merged := MergeWeighted(nil, push, MergeContext{PushWeight: 0})
	assert.Equal(t, int64(100), merged[0].Metrics.Impressions)
}

func TestMergeLatestWins(t *testing.T) {
	older := record(domain.DataSourceBatch, "2024-01-15", "CAMP01", 1000)
	older.LastUpdate = time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC)

	newer := record(domain.DataSourcePush, "2024-01-15", "CAMP01", 1020)
	newer.LastUpdate = time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)

	merged := MergeLatestWins(
		[]*domain.PerformanceRecord{older},
		[]*domain.PerformanceRecord{newer},
		MergeContext{},
	)

	assert.Len(t, merged, 1)
	assert.Equal(t, domain.DataSourcePush, merged[0].DataSource)
	assert.Equal(t, int64(1020), merged[0].Metrics.Impressions)
}

func TestSortedRecordsOrdemDeterministica(t *testing.T) {
	merged := map[domain.RecordKey]*domain.PerformanceRecord{}
	for _, r := range []*domain.PerformanceRecord{
		record(domain.DataSourceBatch, "2024-01-15", "CAMP02", 1),
		record(domain.DataSourceBatch, "2024-01-14", "CAMP09", 2),
		record(domain.DataSourceBatch, "2024-01-15", "CAMP01", 3),
	} {
		merged[r.Key()] = r
	}

	records := sortedRecords(merged)

	assert.Equal(t, "2024-01-14", records[0].LocalDate)
	assert.Equal(t, "CAMP01", records[1].CampaignID)
	assert.Equal(t, "CAMP02", records[2].CampaignID)
}
