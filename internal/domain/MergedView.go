package domain

import (
	"time"
)

// Purpose identifica a finalidade de consumo de uma visão mesclada.
// Cada finalidade tem uma política de mesclagem fixa — o chamador escolhe a
// finalidade, nunca a política.
type Purpose string

const (
	PurposeRealtimeDisplay    Purpose = "realtime_display"
	PurposeHistoricalAnalysis Purpose = "historical_analysis"
	PurposeReportExport       Purpose = "report_export"
	PurposeAlgorithmInput     Purpose = "algorithm_input"
)

// Valid indica se a finalidade é conhecida
func (p Purpose) Valid() bool {
	switch p {
	case PurposeRealtimeDisplay, PurposeHistoricalAnalysis, PurposeReportExport, PurposeAlgorithmInput:
		return true
	}
	return false
}

// Freshness classifica a atualidade dos dados retornados em uma visão
type Freshness string

const (
	FreshnessFresh Freshness = "fresh"
	FreshnessStale Freshness = "stale"
	FreshnessMixed Freshness = "mixed"
)

// MergedViewFilters delimita o período solicitado de uma visão mesclada.
// ExcludeToday é um corte explícito do chamador: por padrão o dia local
// corrente entra no período, sujeito só às exclusões da política.
type MergedViewFilters struct {
	StartDate    *time.Time
	EndDate      *time.Time
	ExcludeToday bool
}

// MergedViewResponse é a visão unificada retornada pelo motor de fusão.
// Warnings carrega condições não fatais (lacunas, dados velhos, exclusões);
// a chamada sempre retorna o melhor resultado possível.
type MergedViewResponse struct {
	Records    []*PerformanceRecord `json:"records"`
	DataSource string               `json:"data_source"` // push | batch | mixed
	Freshness  Freshness            `json:"freshness"`
	Warnings   []string             `json:"warnings"`
	Purpose    Purpose              `json:"purpose"`
}

// Granularity define o agrupamento temporal de uma série agregada
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Valid indica se a granularidade é conhecida
func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// TimelinePoint é um ponto da série temporal agregada
type TimelinePoint struct {
	Period  string             `json:"period"`
	Metrics PerformanceMetrics `json:"metrics"`
}

// TimelineAggregate é a série temporal agregada por granularidade com totais
// do período
type TimelineAggregate struct {
	Series     []*TimelinePoint   `json:"series"`
	Totals     PerformanceMetrics `json:"totals"`
	DataSource string             `json:"data_source"`
}
