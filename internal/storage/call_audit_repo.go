package storage

import (
	"context"
	"fmt"

	"deckforge/internal/models"
)

type CallAuditRepo struct {
	db *DB
}

func NewCallAuditRepo(db *DB) *CallAuditRepo {
	return &CallAuditRepo{db: db}
}

func (r *CallAuditRepo) Insert(ctx context.Context, rec models.ProviderCall) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO provider_calls (call_id, deck_id, batch_index, backend, model, requested, parsed, accepted, status, error_kind)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), $2::uuid, $3, $4, $5, $6, $7, $8, $9, NULLIF($10,''))`,
		rec.CallID, rec.DeckID, rec.BatchIndex, rec.Backend, rec.Model,
		rec.Requested, rec.Parsed, rec.Accepted, rec.Status, rec.ErrorKind)
	if err != nil {
		return fmt.Errorf("insert provider call: %w", err)
	}
	return nil
}

func (r *CallAuditRepo) ListByDeck(ctx context.Context, deckID string) ([]models.ProviderCall, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT call_id, deck_id, batch_index, backend, model, requested, parsed, accepted, status, COALESCE(error_kind,''), created_at
FROM provider_calls WHERE deck_id=$1::uuid ORDER BY created_at`, deckID)
	if err != nil {
		return nil, fmt.Errorf("list provider calls: %w", err)
	}
	defer rows.Close()
	out := make([]models.ProviderCall, 0, 16)
	for rows.Next() {
		var c models.ProviderCall
		if err := rows.Scan(&c.CallID, &c.DeckID, &c.BatchIndex, &c.Backend, &c.Model,
			&c.Requested, &c.Parsed, &c.Accepted, &c.Status, &c.ErrorKind, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
