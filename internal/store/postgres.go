package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) ListContracts(ctx context.Context) ([]ContractSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, title, documents, revision, updated_at
		FROM contracts
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	items := make([]ContractSummary, 0)
	for rows.Next() {
		var item ContractSummary
		if err := rows.Scan(&item.Name, &item.Title, &item.Documents, &item.Revision, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetContract(ctx context.Context, name string) (Contract, error) {
	var item Contract
	var content []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT name, title, content, documents, revision, search_text, created_at, updated_at
		FROM contracts
		WHERE name=$1
	`, name).Scan(&item.Name, &item.Title, &content, &item.Documents, &item.Revision, &item.SearchText, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Contract{}, ErrNotFound
	}
	if err != nil {
		return Contract{}, fmt.Errorf("get contract: %w", err)
	}
	item.Content = content
	return item, nil
}

// UpsertContract stores a contract and replaces its mention catalog in one transaction.
func (s *PostgresStore) UpsertContract(ctx context.Context, item Contract, mentions []Mention) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert contract: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contracts (name, title, content, documents, revision, search_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET title=EXCLUDED.title, content=EXCLUDED.content, documents=EXCLUDED.documents,
			revision=EXCLUDED.revision, search_text=EXCLUDED.search_text, updated_at=NOW()
	`, item.Name, item.Title, []byte(item.Content), item.Documents, item.Revision, item.SearchText); err != nil {
		return fmt.Errorf("upsert contract: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contract_mentions WHERE contract_name=$1`, item.Name); err != nil {
		return fmt.Errorf("clear mention catalog: %w", err)
	}
	for position, mention := range mentions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contract_mentions (contract_name, mention_id, title, default_value, variable_type, occurrences, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.Name, mention.ID, mention.Title, mention.DefaultValue, mention.VariableType, mention.Occurrences, position); err != nil {
			return fmt.Errorf("insert mention %s: %w", mention.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert contract: %w", err)
	}
	return nil
}

// ListMentions returns a contract's mentions in the order they first appear.
func (s *PostgresStore) ListMentions(ctx context.Context, name string) ([]Mention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mention_id, title, default_value, variable_type, occurrences
		FROM contract_mentions
		WHERE contract_name=$1
		ORDER BY position, mention_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("list mentions: %w", err)
	}
	defer rows.Close()

	items := make([]Mention, 0)
	for rows.Next() {
		var item Mention
		if err := rows.Scan(&item.ID, &item.Title, &item.DefaultValue, &item.VariableType, &item.Occurrences); err != nil {
			return nil, fmt.Errorf("scan mention: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mentions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteContract(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
