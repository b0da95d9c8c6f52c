package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/database/postgres"
	"github.com/vfg2006/ad-performance-reconciler/internal/domain"
)

const (
	accountsTable = "accounts a"
)

// AccountRepository fornece a consulta de credenciais de conta usada na
// resolução de fuso horário: código de marketplace e override por conta
type AccountRepository interface {
	GetAccountByID(accountID string) (*domain.AdAccount, error)
	GetAccountByExternalID(accountExternalID string) (*domain.AdAccount, error)
	ListAccounts(availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error)
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (a *accountRepository) GetAccountByExternalID(accountExternalID string) (*domain.AdAccount, error) {
	return a.getAccount(squirrel.Eq{"a.external_id": accountExternalID})
}

func (a *accountRepository) GetAccountByID(accountID string) (*domain.AdAccount, error) {
	return a.getAccount(squirrel.Eq{"a.id": accountID})
}

func (a *accountRepository) getAccount(whereClause map[string]interface{}) (*domain.AdAccount, error) {
	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.external_id, a.name, a.marketplace_code, a.timezone_override, a.attribution_window_days, a.status").
		From(accountsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := a.conn.QueryRow(accountsSQL, accountsArgs...)

	acc, err := a.deserializeAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return acc, err
}

func (a *accountRepository) deserializeAccount(row *sql.Row) (*domain.AdAccount, error) {
	acc := &domain.AdAccount{}

	if err := row.Scan(
		&acc.ID,
		&acc.ExternalID,
		&acc.Name,
		&acc.MarketplaceCode,
		&acc.TimezoneOverride,
		&acc.AttributionWindowDays,
		&acc.Status,
	); err != nil {
		return nil, err
	}

	return acc, nil
}

func (a *accountRepository) ListAccounts(availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error) {
	builder := squirrel.
		Select("a.id, a.external_id, a.name, a.marketplace_code, a.timezone_override, a.attribution_window_days, a.status").
		From(accountsTable).
		OrderBy("a.id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(availableStatus) > 0 {
		statuses := make([]string, 0, len(availableStatus))
		for _, status := range availableStatus {
			statuses = append(statuses, string(status))
		}
		builder = builder.Where(squirrel.Eq{"a.status": statuses})
	}

	accountsSQL, accountsArgs, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := a.conn.Query(accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.AdAccount, 0)
	for rows.Next() {
		acc := &domain.AdAccount{}
		if err := rows.Scan(
			&acc.ID,
			&acc.ExternalID,
			&acc.Name,
			&acc.MarketplaceCode,
			&acc.TimezoneOverride,
			&acc.AttributionWindowDays,
			&acc.Status,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
