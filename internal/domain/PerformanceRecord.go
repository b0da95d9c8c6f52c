package domain

import (
	"fmt"
	"time"
)

// DataSource identifica a origem de um registro de performance
type DataSource string

const (
	// DataSourcePush representa dados vindos da stream em tempo quase real
	DataSourcePush DataSource = "push"
	// DataSourceBatch representa dados vindos do relatório periódico (canônico)
	DataSourceBatch DataSource = "batch"
)

// PerformanceMetrics agrupa as métricas numéricas de um registro de performance.
// Registros parciais são esperados: eventos de tráfego preenchem apenas
// impressões/cliques/custo e eventos de conversão apenas vendas/pedidos.
type PerformanceMetrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
	Sales       float64 `json:"sales"`
	Orders      int64   `json:"orders"`
}

// Add soma as métricas de outro conjunto de forma aditiva
func (m *PerformanceMetrics) Add(other PerformanceMetrics) {
	m.Impressions += other.Impressions
	m.Clicks += other.Clicks
	m.Cost += other.Cost
	m.Sales += other.Sales
	m.Orders += other.Orders
}

// PerformanceRecord representa o desempenho de uma campanha em um dia local
// do marketplace. Existe no máximo um registro por
// (account_id, campaign_id, ad_group_id, local_date, data_source).
type PerformanceRecord struct {
	ID                 int64              `json:"id"`
	AccountID          string             `json:"account_id"`
	CampaignID         string             `json:"campaign_id"`
	AdGroupID          *string            `json:"ad_group_id,omitempty"`
	LocalDate          string             `json:"local_date"` // YYYY-MM-DD no fuso do marketplace
	Metrics            PerformanceMetrics `json:"metrics"`
	BudgetUsagePercent *float64           `json:"budget_usage_percent,omitempty"`
	DataSource         DataSource         `json:"data_source"`
	IsFinalized        bool               `json:"is_finalized"`
	Superseded         bool               `json:"superseded"`
	LastUpdate         time.Time          `json:"last_update"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// RecordKey identifica uma célula de performance independente da origem
type RecordKey struct {
	AccountID  string
	CampaignID string
	AdGroupID  string // vazio quando o registro é em nível de campanha
	LocalDate  string
}

// Key retorna a chave da célula deste registro
func (r *PerformanceRecord) Key() RecordKey {
	adGroupID := ""
	if r.AdGroupID != nil {
		adGroupID = *r.AdGroupID
	}

	return RecordKey{
		AccountID:  r.AccountID,
		CampaignID: r.CampaignID,
		AdGroupID:  adGroupID,
		LocalDate:  r.LocalDate,
	}
}

// String retorna a representação textual da chave, útil em logs
func (k RecordKey) String() string {
	if k.AdGroupID == "" {
		return fmt.Sprintf("%s/%s/%s", k.AccountID, k.CampaignID, k.LocalDate)
	}
	return fmt.Sprintf("%s/%s/%s/%s", k.AccountID, k.CampaignID, k.AdGroupID, k.LocalDate)
}
