package domain

type AdAccountStatus string

const (
	AdAccountStatusActive   AdAccountStatus = "ACTIVE"
	AdAccountStatusInactive AdAccountStatus = "INACTIVE"
)

// AdAccount representa uma conta de anúncios vinculada a um marketplace.
// TimezoneOverride, quando presente, tem prioridade sobre a tabela estática de
// fusos por marketplace na resolução de fuso horário.
type AdAccount struct {
	ID                    string          `json:"id"`
	ExternalID            string          `json:"external_id"`
	Name                  string          `json:"name"`
	MarketplaceCode       string          `json:"marketplace_code"`
	TimezoneOverride      *string         `json:"timezone_override,omitempty"`
	AttributionWindowDays int             `json:"attribution_window_days"` // 0 usa o padrão global
	Status                AdAccountStatus `json:"status"`
}
