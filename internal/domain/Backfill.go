package domain

// BackfillCheckResult indica se uma data local é candidata a backfill.
// A execução do backfill em si é responsabilidade de um job externo; aqui
// apenas detectamos e reportamos a oportunidade.
type BackfillCheckResult struct {
	AccountID      string `json:"account_id"`
	LocalDate      string `json:"local_date"`
	NeedsBackfill  bool   `json:"needs_backfill"`
	CandidateCount int    `json:"candidate_count"`
	Message        string `json:"message"`
}
