package domain

import (
	"fmt"
	"strings"
	"time"
)

// DatasetCategory é a categoria de dataset de um evento da stream.
// O conjunto é fechado: um novo dataset exige decisão explícita em todos os
// pontos de despacho (o switch deve ser exaustivo).
type DatasetCategory int

const (
	DatasetCategoryUnknown DatasetCategory = iota
	DatasetCategoryTraffic
	DatasetCategoryConversion
	DatasetCategoryBudget
)

// String implementa fmt.Stringer
func (c DatasetCategory) String() string {
	switch c {
	case DatasetCategoryTraffic:
		return "traffic"
	case DatasetCategoryConversion:
		return "conversion"
	case DatasetCategoryBudget:
		return "budget"
	default:
		return "unknown"
	}
}

// ParseDatasetCategory converte o identificador de dataset vindo da fila para
// a categoria tipada. Os identificadores seguem o padrão de prefixo do
// provedor (ex.: "sp-traffic", "sp-conversion", "budget-usage").
func ParseDatasetCategory(datasetID string) (DatasetCategory, error) {
	switch {
	case strings.HasPrefix(datasetID, "sp-traffic"):
		return DatasetCategoryTraffic, nil
	case strings.HasPrefix(datasetID, "sp-conversion"):
		return DatasetCategoryConversion, nil
	case strings.HasPrefix(datasetID, "budget-usage"):
		return DatasetCategoryBudget, nil
	default:
		return DatasetCategoryUnknown, fmt.Errorf("categoria de dataset não suportada: %q", datasetID)
	}
}

// TrafficPayload carrega as métricas de tráfego de um evento
type TrafficPayload struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"`
}

// ConversionPayload carrega as métricas de conversão de um evento
type ConversionPayload struct {
	Sales  float64 `json:"attributed_sales"`
	Orders int64   `json:"attributed_conversions"`
}

// BudgetPayload carrega a utilização de orçamento de uma campanha
type BudgetPayload struct {
	BudgetUsagePercent float64 `json:"budget_usage_percent"`
}

// IncomingEvent é um evento da stream push já decodificado.
// EventTime é a hora do evento em UTC e é a referência para o bucket de data
// local; PushTimestamp é a hora de entrega e pode divergir bastante em
// reentregas. EventTime fica como string bruta porque um timestamp malformado
// não pode derrubar o evento — o resolvedor de fuso degrada para o recorte da
// data UTC.
type IncomingEvent struct {
	MessageID       string             `json:"message_id"`
	DatasetCategory DatasetCategory    `json:"dataset_category"`
	PushTimestamp   time.Time          `json:"push_timestamp"`
	EventTime       string             `json:"event_time"`
	CampaignID      string             `json:"campaign_id"`
	AdGroupID       *string            `json:"ad_group_id,omitempty"`
	Traffic         *TrafficPayload    `json:"traffic,omitempty"`
	Conversion      *ConversionPayload `json:"conversion,omitempty"`
	Budget          *BudgetPayload     `json:"budget,omitempty"`
}

// QueueMessage é o envelope bruto entregue pela fila, antes da decodificação
// do payload por categoria
type QueueMessage struct {
	MessageID      string    `json:"message_id"`
	SubscriptionID string    `json:"subscription_id"`
	DatasetID      string    `json:"dataset_id"`
	AccountID      string    `json:"account_id"`
	Timestamp      time.Time `json:"timestamp"`
	Payload        []byte    `json:"payload"`
}

// BatchReportRow é uma linha tipada do relatório periódico, já associada a
// uma data local. Mantida separada de IncomingEvent para evitar deriva
// silenciosa de campos entre os dois caminhos de dados.
type BatchReportRow struct {
	AccountID  string             `json:"account_id"`
	CampaignID string             `json:"campaign_id"`
	AdGroupID  *string            `json:"ad_group_id,omitempty"`
	LocalDate  string             `json:"local_date"`
	Metrics    PerformanceMetrics `json:"metrics"`
}
