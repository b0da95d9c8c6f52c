package repository

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ad-performance-reconciler/infrastructure/database/postgres"
)

const processedMessagesTable = "processed_messages"

// ProcessedMessageRepository registra os message_ids já ingeridos para
// garantir idempotência sob entrega pelo-menos-uma-vez
type ProcessedMessageRepository interface {
	// MarkProcessed registra o message_id e retorna false quando a mensagem
	// já havia sido processada (duplicata)
	MarkProcessed(messageID string) (bool, error)
	// Forget remove o registro de um message_id. Usado quando a escrita do
	// evento falhou depois da marcação, para que a reentrega possa tentar de
	// novo.
	Forget(messageID string) error
	DeleteOlderThan(days int) (int64, error)
}

type processedMessageRepository struct {
	conn *postgres.Connection
}

func NewProcessedMessageRepository(conn *postgres.Connection) ProcessedMessageRepository {
	return &processedMessageRepository{
		conn: conn,
	}
}

func (r *processedMessageRepository) MarkProcessed(messageID string) (bool, error) {
	query, args, err := squirrel.
		Insert(processedMessagesTable).
		Columns("message_id").
		Values(messageID).
		Suffix("ON CONFLICT (message_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *processedMessageRepository) Forget(messageID string) error {
	query, args, err := squirrel.
		Delete(processedMessagesTable).
		Where(squirrel.Eq{"message_id": messageID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *processedMessageRepository) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	query, args, err := squirrel.
		Delete(processedMessagesTable).
		Where(squirrel.Lt{"processed_at": cutoff}).
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
