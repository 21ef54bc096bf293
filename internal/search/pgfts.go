package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher over the contracts table's generated tsvector.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true: without Postgres there is nothing to search.
func (p *PgFTS) Healthy() bool {
	return true
}

func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	q = normalizeQuery(q)
	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, `
		SELECT count(*) FROM contracts WHERE fts @@ plainto_tsquery('english', $1)
	`, q.Text).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT name, title,
			ts_headline('english', search_text, plainto_tsquery('english', $1),
				'MaxFragments=1,MaxWords=30,StartSel=<mark>,StopSel=</mark>') AS snippet
		FROM contracts
		WHERE fts @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(fts, plainto_tsquery('english', $1)) DESC, name
		LIMIT $2 OFFSET $3
	`, q.Text, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Name, &r.Title, &r.Snippet); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// LoadAllRecords returns every stored contract for a full reindex.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]ContractRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name, title, search_text FROM contracts`)
	if err != nil {
		return nil, fmt.Errorf("load contracts: %w", err)
	}
	defer rows.Close()

	records := make([]ContractRecord, 0)
	for rows.Next() {
		var r ContractRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Text); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return records, nil
}
