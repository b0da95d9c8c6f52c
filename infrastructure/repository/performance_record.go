package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/database/postgres"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
)

const (
	performanceRecordsTable = "performance_records pr"

	recordColumns = "pr.id, pr.account_id, pr.campaign_id, pr.ad_group_id, pr.local_date, " +
		"pr.impressions, pr.clicks, pr.cost, pr.sales, pr.orders, pr.budget_usage_percent, " +
		"pr.data_source, pr.is_finalized, pr.superseded, pr.last_update, pr.created_at, pr.updated_at"
)

// upsertPushSQL aplica a escrita condicional "grava a menos que finalizado" em
// uma única instrução. O NOT EXISTS barra a primeira escrita push em uma
// célula que já tem registro canônico finalizado; o WHERE do ON CONFLICT barra
// a mutação de um registro push já finalizado. A mesclagem é aditiva porque
// eventos parciais (tráfego x conversão) chegam separados para a mesma data.
const upsertPushSQL = `
	INSERT INTO performance_records
		(account_id, campaign_id, ad_group_id, local_date, data_source,
		 impressions, clicks, cost, sales, orders, budget_usage_percent, last_update)
	SELECT $1, $2, $3, $4, 'push', $5, $6, $7, $8, $9, $10, NOW()
	WHERE NOT EXISTS (
		SELECT 1 FROM performance_records f
		WHERE f.account_id = $1
		  AND f.campaign_id = $2
		  AND f.ad_group_id = $3
		  AND f.local_date = $4
		  AND f.is_finalized
	)
	ON CONFLICT (account_id, campaign_id, ad_group_id, local_date, data_source)
	DO UPDATE SET
		impressions = performance_records.impressions + EXCLUDED.impressions,
		clicks = performance_records.clicks + EXCLUDED.clicks,
		cost = performance_records.cost + EXCLUDED.cost,
		sales = performance_records.sales + EXCLUDED.sales,
		orders = performance_records.orders + EXCLUDED.orders,
		budget_usage_percent = COALESCE(EXCLUDED.budget_usage_percent, performance_records.budget_usage_percent),
		last_update = NOW(),
		updated_at = NOW()
	WHERE NOT performance_records.is_finalized
`

type PerformanceRecordRepository interface {
	GetByDateRange(accountID string, startDate, endDate string, source domain.DataSource) ([]*domain.PerformanceRecord, error)
	// UpsertPushAdditive soma as métricas do registro à célula push, a menos
	// que a célula esteja finalizada. Retorna false quando a escrita foi
	// recusada pela guarda de finalização.
	UpsertPushAdditive(record *domain.PerformanceRecord) (bool, error)
	// UpsertCanonical grava o registro canônico (batch) de uma célula e o
	// marca como finalizado. Reexecuções sobre a mesma janela são idempotentes.
	UpsertCanonical(record *domain.PerformanceRecord) error
	// FinalizePushForDate propaga a finalização para os registros push das
	// células que já têm registro canônico finalizado naquela data
	FinalizePushForDate(accountID, localDate string) (int64, error)
	CountBySource(accountID, localDate string) (map[domain.DataSource]int, error)
	LatestUpdate(accountID string, source domain.DataSource) (*time.Time, error)
	// OverwritePushMetrics substitui as métricas do registro push de uma
	// célula (etapa de reparo) e o marca como superado pelo canônico.
	// Retorna o número de registros alterados: zero quando não existe
	// registro push naquela chave exata.
	OverwritePushMetrics(key domain.RecordKey, metrics domain.PerformanceMetrics) (int64, error)
}

type performanceRecordRepository struct {
	conn *postgres.Connection
}

func NewPerformanceRecordRepository(conn *postgres.Connection) PerformanceRecordRepository {
	return &performanceRecordRepository{
		conn: conn,
	}
}

func (r *performanceRecordRepository) GetByDateRange(accountID string, startDate, endDate string, source domain.DataSource) ([]*domain.PerformanceRecord, error) {
	query, args, err := squirrel.
		Select(recordColumns).
		From(performanceRecordsTable).
		Where(squirrel.Eq{"pr.account_id": accountID, "pr.data_source": string(source)}).
		Where(squirrel.GtOrEq{"pr.local_date": startDate}).
		Where(squirrel.LtOrEq{"pr.local_date": endDate}).
		OrderBy("pr.local_date ASC", "pr.campaign_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.PerformanceRecord, 0)
	for rows.Next() {
		record, err := scanRecordRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear registros de performance: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

func (r *performanceRecordRepository) UpsertPushAdditive(record *domain.PerformanceRecord) (bool, error) {
	result, err := r.conn.Exec(upsertPushSQL,
		record.AccountID,
		record.CampaignID,
		adGroupOrEmpty(record.AdGroupID),
		record.LocalDate,
		record.Metrics.Impressions,
		record.Metrics.Clicks,
		record.Metrics.Cost,
		record.Metrics.Sales,
		record.Metrics.Orders,
		record.BudgetUsagePercent,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return false, fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return false, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	// Zero linhas afetadas significa que a guarda de finalização recusou a
	// escrita; a célula é canônica e imutável
	return rowsAffected > 0, nil
}

func (r *performanceRecordRepository) UpsertCanonical(record *domain.PerformanceRecord) error {
	query := squirrel.StatementBuilder.
		Insert("performance_records").
		Columns("account_id", "campaign_id", "ad_group_id", "local_date", "data_source",
			"impressions", "clicks", "cost", "sales", "orders", "is_finalized", "last_update").
		Values(
			record.AccountID,
			record.CampaignID,
			adGroupOrEmpty(record.AdGroupID),
			record.LocalDate,
			string(domain.DataSourceBatch),
			record.Metrics.Impressions,
			record.Metrics.Clicks,
			record.Metrics.Cost,
			record.Metrics.Sales,
			record.Metrics.Orders,
			true,
			squirrel.Expr("NOW()"),
		).
		Suffix(`
			ON CONFLICT (account_id, campaign_id, ad_group_id, local_date, data_source) DO UPDATE SET
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				cost = EXCLUDED.cost,
				sales = EXCLUDED.sales,
				orders = EXCLUDED.orders,
				is_finalized = TRUE,
				last_update = NOW(),
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *performanceRecordRepository) FinalizePushForDate(accountID, localDate string) (int64, error) {
	query, args, err := squirrel.
		Update("performance_records").
		Set("is_finalized", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"account_id":   accountID,
			"local_date":   localDate,
			"data_source":  string(domain.DataSourcePush),
			"is_finalized": false,
		}).
		Where(`EXISTS (
			SELECT 1 FROM performance_records b
			WHERE b.account_id = performance_records.account_id
			  AND b.campaign_id = performance_records.campaign_id
			  AND b.ad_group_id = performance_records.ad_group_id
			  AND b.local_date = performance_records.local_date
			  AND b.data_source = 'batch'
			  AND b.is_finalized
		)`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func (r *performanceRecordRepository) CountBySource(accountID, localDate string) (map[domain.DataSource]int, error) {
	query, args, err := squirrel.
		Select("pr.data_source, COUNT(*)").
		From(performanceRecordsTable).
		Where(squirrel.Eq{"pr.account_id": accountID, "pr.local_date": localDate}).
		GroupBy("pr.data_source").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DataSource]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("erro ao escanear contagem por origem: %w", err)
		}
		counts[domain.DataSource(source)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return counts, nil
}

func (r *performanceRecordRepository) LatestUpdate(accountID string, source domain.DataSource) (*time.Time, error) {
	query, args, err := squirrel.
		Select("MAX(pr.last_update)").
		From(performanceRecordsTable).
		Where(squirrel.Eq{"pr.account_id": accountID, "pr.data_source": string(source)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var latest sql.NullTime
	if err := r.conn.QueryRow(query, args...).Scan(&latest); err != nil {
		return nil, fmt.Errorf("erro ao buscar última atualização: %w", err)
	}

	if !latest.Valid {
		return nil, nil
	}

	return &latest.Time, nil
}

func (r *performanceRecordRepository) OverwritePushMetrics(key domain.RecordKey, metrics domain.PerformanceMetrics) (int64, error) {
	query, args, err := squirrel.
		Update("performance_records").
		Set("impressions", metrics.Impressions).
		Set("clicks", metrics.Clicks).
		Set("cost", metrics.Cost).
		Set("sales", metrics.Sales).
		Set("orders", metrics.Orders).
		Set("superseded", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"account_id":  key.AccountID,
			"campaign_id": key.CampaignID,
			"ad_group_id": key.AdGroupID,
			"local_date":  key.LocalDate,
			"data_source": string(domain.DataSourcePush),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func adGroupOrEmpty(adGroupID *string) string {
	if adGroupID == nil {
		return ""
	}
	return *adGroupID
}

func scanRecordRows(rows *sql.Rows) (*domain.PerformanceRecord, error) {
	record := &domain.PerformanceRecord{}
	var adGroupID string
	var source string

	err := rows.Scan(
		&record.ID,
		&record.AccountID,
		&record.CampaignID,
		&adGroupID,
		&record.LocalDate,
		&record.Metrics.Impressions,
		&record.Metrics.Clicks,
		&record.Metrics.Cost,
		&record.Metrics.Sales,
		&record.Metrics.Orders,
		&record.BudgetUsagePercent,
		&source,
		&record.IsFinalized,
		&record.Superseded,
		&record.LastUpdate,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if adGroupID != "" {
		record.AdGroupID = &adGroupID
	}
	record.DataSource = domain.DataSource(source)

	return record, nil
}
