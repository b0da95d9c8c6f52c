package domain

import "time"

// FlaggedCell identifica um par (data, campanha) cuja divergência entre as
// origens push e batch ultrapassou o limite configurado
type FlaggedCell struct {
	LocalDate    string  `json:"local_date"`
	CampaignID   string  `json:"campaign_id"`
	Metric       string  `json:"metric"`
	PushValue    float64 `json:"push_value"`
	BatchValue   float64 `json:"batch_value"`
	DeviationPct float64 `json:"deviation_pct"`
}

// RepairOutcome resume o resultado da etapa opcional de reparo
type RepairOutcome struct {
	CellsRepaired int      `json:"cells_repaired"`
	Failures      []string `json:"failures,omitempty"`
}

// ConsistencyCheckResult é o resultado de uma varredura de consistência entre
// as duas origens sobre uma janela móvel
type ConsistencyCheckResult struct {
	RunID        string             `json:"run_id"`
	AccountID    string             `json:"account_id"`
	WindowStart  string             `json:"window_start"`
	WindowEnd    string             `json:"window_end"`
	DeviationPct map[string]float64 `json:"deviation_pct"` // desvio agregado por métrica
	Flagged      []FlaggedCell      `json:"flagged"`
	Repair       *RepairOutcome     `json:"repair,omitempty"`
	CheckedAt    time.Time          `json:"checked_at"`
}
