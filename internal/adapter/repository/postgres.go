package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loopline-labs/sovscope/internal/core/domain"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SaveInvestigation upserts an investigation with its full analysis result as
// jsonb. Re-saving after Analyze overwrites the earlier collection-only row.
func (r *PostgresRepository) SaveInvestigation(ctx context.Context, inv *domain.Investigation) error {
	var result []byte
	if inv.Result != nil {
		var err error
		result, err = json.Marshal(inv.Result)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis result: %w", err)
		}
	}

	query := `
		INSERT INTO investigations (id, query, focus_brand, platforms, started_at, finished_at, records, result, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET finished_at = EXCLUDED.finished_at,
		    records = EXCLUDED.records,
		    result = EXCLUDED.result,
		    errors = EXCLUDED.errors
	`

	_, err := r.db.Exec(ctx, query,
		inv.ID,
		inv.Query,
		inv.FocusBrand,
		inv.Platforms,
		inv.StartedAt,
		inv.FinishedAt,
		inv.Records,
		result,
		inv.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to save investigation: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SaveEvidenceBatch(ctx context.Context, investigationID string, records []domain.EvidenceRecord) error {
	batch := &pgx.Batch{}

	query := `
		INSERT INTO evidence (id, investigation_id, title, snippet, url, position, source, query, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id, investigation_id) DO NOTHING
	`

	for _, rec := range records {
		batch.Queue(query,
			rec.ID,
			investigationID,
			rec.Title,
			rec.Snippet,
			rec.URL,
			rec.Position,
			rec.Source,
			rec.Query,
			rec.CollectedAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	_, err := br.Exec()
	if err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindInvestigation(ctx context.Context, id string) (*domain.Investigation, error) {
	query := `
		SELECT id, query, focus_brand, platforms, started_at, finished_at, records, result, errors
		FROM investigations
		WHERE id = $1
		LIMIT 1
	`

	inv, err := scanInvestigation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	return inv, nil
}

func (r *PostgresRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]domain.Investigation, error) {
	query := `
		SELECT id, query, focus_brand, platforms, started_at, finished_at, records, result, errors
		FROM investigations
		WHERE started_at >= $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query investigations since %v: %w", since, err)
	}
	defer rows.Close()

	return collectInvestigations(rows)
}

func (r *PostgresRepository) FindByQuery(ctx context.Context, searchQuery string, limit int) ([]domain.Investigation, error) {
	query := `
		SELECT id, query, focus_brand, platforms, started_at, finished_at, records, result, errors
		FROM investigations
		WHERE query = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, searchQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query investigations: %w", err)
	}
	defer rows.Close()

	return collectInvestigations(rows)
}

func (r *PostgresRepository) FindEvidence(ctx context.Context, investigationID string) ([]domain.EvidenceRecord, error) {
	query := `
		SELECT id, title, snippet, url, position, source, query, collected_at
		FROM evidence
		WHERE investigation_id = $1
		ORDER BY collected_at ASC
	`

	rows, err := r.db.Query(ctx, query, investigationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence: %w", err)
	}
	defer rows.Close()

	var records []domain.EvidenceRecord

	for rows.Next() {
		var rec domain.EvidenceRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Title,
			&rec.Snippet,
			&rec.URL,
			&rec.Position,
			&rec.Source,
			&rec.Query,
			&rec.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evidence record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvestigation(row rowScanner) (*domain.Investigation, error) {
	var inv domain.Investigation
	var result []byte

	err := row.Scan(
		&inv.ID,
		&inv.Query,
		&inv.FocusBrand,
		&inv.Platforms,
		&inv.StartedAt,
		&inv.FinishedAt,
		&inv.Records,
		&result,
		&inv.Errors,
	)
	if err != nil {
		return nil, err
	}

	if len(result) > 0 {
		inv.Result = &domain.AnalysisResult{}
		if err := json.Unmarshal(result, inv.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
		}
	}

	return &inv, nil
}

func collectInvestigations(rows pgx.Rows) ([]domain.Investigation, error) {
	var investigations []domain.Investigation

	for rows.Next() {
		inv, err := scanInvestigation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investigation: %w", err)
		}
		investigations = append(investigations, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return investigations, nil
}
