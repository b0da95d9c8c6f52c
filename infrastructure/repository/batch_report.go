package repository

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/database/postgres"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
)

const batchReportRowsTable = "batch_report_rows br"

// BatchReportRepository lê as linhas de relatório periódico depositadas pela
// pipeline externa de relatórios. A orquestração de jobs de relatório não
// acontece aqui; apenas consumimos o que já pousou na tabela de staging.
type BatchReportRepository interface {
	GetRowsByAccountAndDate(accountID, localDate string) ([]*domain.BatchReportRow, error)
	DeleteOlderThan(days int) (int64, error)
}

type batchReportRepository struct {
	conn *postgres.Connection
}

func NewBatchReportRepository(conn *postgres.Connection) BatchReportRepository {
	return &batchReportRepository{
		conn: conn,
	}
}

func (r *batchReportRepository) GetRowsByAccountAndDate(accountID, localDate string) ([]*domain.BatchReportRow, error) {
	query, args, err := squirrel.
		Select("br.account_id, br.campaign_id, br.ad_group_id, br.local_date, br.impressions, br.clicks, br.cost, br.sales, br.orders").
		From(batchReportRowsTable).
		Where(squirrel.Eq{"br.account_id": accountID, "br.local_date": localDate}).
		OrderBy("br.campaign_id ASC").
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

	reportRows := make([]*domain.BatchReportRow, 0)
	for rows.Next() {
		row := &domain.BatchReportRow{}
		var adGroupID string

		err := rows.Scan(
			&row.AccountID,
			&row.CampaignID,
			&adGroupID,
			&row.LocalDate,
			&row.Metrics.Impressions,
			&row.Metrics.Clicks,
			&row.Metrics.Cost,
			&row.Metrics.Sales,
			&row.Metrics.Orders,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear linha de relatório: %w", err)
		}

		if adGroupID != "" {
			row.AdGroupID = &adGroupID
		}
		reportRows = append(reportRows, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return reportRows, nil
}

func (r *batchReportRepository) DeleteOlderThan(days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	query, args, err := squirrel.
		Delete("batch_report_rows").
		Where(squirrel.Lt{"local_date": cutoffDate}).
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
