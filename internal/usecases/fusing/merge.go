package fusing

import (
	"math"
	"sort"

	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
)

// MergeContext carrega os parâmetros de que as estratégias de mesclagem
// precisam além dos próprios registros
type MergeContext struct {
	// Today é a data local corrente do marketplace da conta (YYYY-MM-DD)
	Today string
	// PushWeight é o peso aplicado a registros push na mesclagem ponderada
	PushWeight float64
}

// MergeFunc é uma estratégia de mesclagem entre os registros canônicos (batch)
// e provisórios (push) de um período. Cada estratégia é uma função pura e
// testável isoladamente; o motor escolhe qual usar pela tabela de políticas.
type MergeFunc func(batch, push []*domain.PerformanceRecord, mergeCtx MergeContext) []*domain.PerformanceRecord

// MergePushFirst mantém o histórico canônico e substitui apenas as células do
// dia corrente pelo buffer push. Usada para exibição em tempo real: o dia de
// hoje ainda não tem canônico e o push é o melhor dado disponível.
func MergePushFirst(batch, push []*domain.PerformanceRecord, mergeCtx MergeContext) []*domain.PerformanceRecord {
	merged := make(map[domain.RecordKey]*domain.PerformanceRecord)

	for _, record := range batch {
		merged[record.Key()] = record
	}

	for _, record := range push {
		if record.LocalDate == mergeCtx.Today {
			merged[record.Key()] = record
		} else if _, exists := merged[record.Key()]; !exists {
			merged[record.Key()] = record
		}
	}

	return sortedRecords(merged)
}

// MergeBatchFirst faz o canônico vencer sempre; push só preenche células que
// o canônico não tem
func MergeBatchFirst(batch, push []*domain.PerformanceRecord, _ MergeContext) []*domain.PerformanceRecord {
	merged := make(map[domain.RecordKey]*domain.PerformanceRecord)

	for _, record := range push {
		merged[record.Key()] = record
	}

	// Batch entra por último e sobrescreve qualquer push na mesma célula
	for _, record := range batch {
		merged[record.Key()] = record
	}

	return sortedRecords(merged)
}

// MergeWeighted usa o canônico com peso 1.0 onde ele existe; onde só há push,
// o registro entra com as métricas escaladas pelo peso configurado. O peso
// desconta a tendência do push de superestimar métricas ainda não consolidadas
// pela atribuição.
func MergeWeighted(batch, push []*domain.PerformanceRecord, mergeCtx MergeContext) []*domain.PerformanceRecord {
	merged := make(map[domain.RecordKey]*domain.PerformanceRecord)

	for _, record := range push {
		merged[record.Key()] = weightedCopy(record, mergeCtx.PushWeight)
	}

	for _, record := range batch {
		merged[record.Key()] = record
	}

	return sortedRecords(merged)
}

// MergeLatestWins compara a recência global das duas origens célula a célula:
// vence o registro com last_update mais novo, independente da origem
func MergeLatestWins(batch, push []*domain.PerformanceRecord, _ MergeContext) []*domain.PerformanceRecord {
	merged := make(map[domain.RecordKey]*domain.PerformanceRecord)

	for _, record := range batch {
		merged[record.Key()] = record
	}

	for _, record := range push {
		existing, exists := merged[record.Key()]
		if !exists || record.LastUpdate.After(existing.LastUpdate) {
			merged[record.Key()] = record
		}
	}

	return sortedRecords(merged)
}

// weightedCopy devolve uma cópia do registro com as métricas escaladas.
// Contagens são arredondadas para o inteiro mais próximo.
func weightedCopy(record *domain.PerformanceRecord, weight float64) *domain.PerformanceRecord {
	if weight <= 0 || weight >= 1 {
		return record
	}

	weighted := *record
	weighted.Metrics = domain.PerformanceMetrics{
		Impressions: int64(math.Round(float64(record.Metrics.Impressions) * weight)),
		Clicks:      int64(math.Round(float64(record.Metrics.Clicks) * weight)),
		Cost:        record.Metrics.Cost * weight,
		Sales:       record.Metrics.Sales * weight,
		Orders:      int64(math.Round(float64(record.Metrics.Orders) * weight)),
	}

	return &weighted
}

// sortedRecords devolve os registros do mapa em ordem determinística
// (data, campanha, grupo de anúncio)
func sortedRecords(merged map[domain.RecordKey]*domain.PerformanceRecord) []*domain.PerformanceRecord {
	records := make([]*domain.PerformanceRecord, 0, len(merged))
	for _, record := range merged {
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Key(), records[j].Key()
		if a.LocalDate != b.LocalDate {
			return a.LocalDate < b.LocalDate
		}
		if a.CampaignID != b.CampaignID {
			return a.CampaignID < b.CampaignID
		}
		return a.AdGroupID < b.AdGroupID
	})

	return records
}
