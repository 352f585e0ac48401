package storage

import (
	"context"
	"fmt"

	"deckforge/internal/models"
)

type DeckRepo struct {
	db *DB
}

func NewDeckRepo(db *DB) *DeckRepo {
	return &DeckRepo{db: db}
}

func (r *DeckRepo) CreateDeck(ctx context.Context, d models.Deck) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO decks (deck_id, topic, description, slide_count, source_id, status)
VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), 'pending')`,
		d.DeckID, d.Topic, d.Description, d.SlideCount, d.SourceID)
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	return nil
}

func (r *DeckRepo) UpdateStatus(ctx context.Context, deckID, status, failKind, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE decks SET status=$2, fail_kind=NULLIF($3,''), fail_reason=NULLIF($4,''), updated_at=now()
WHERE deck_id=$1`, deckID, status, failKind, failReason)
	if err != nil {
		return fmt.Errorf("update deck status: %w", err)
	}
	return nil
}

func (r *DeckRepo) MarkCompleted(ctx context.Context, deckID, outPath, backend, model string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE decks SET status='completed', out_path=$2, backend=NULLIF($3,''), model=NULLIF($4,''), updated_at=now()
WHERE deck_id=$1`, deckID, outPath, backend, model)
	if err != nil {
		return fmt.Errorf("mark deck completed: %w", err)
	}
	return nil
}

func (r *DeckRepo) GetDeck(ctx context.Context, deckID string) (models.Deck, error) {
	var d models.Deck
	err := r.db.Pool.QueryRow(ctx, `
SELECT deck_id, topic, COALESCE(description,''), slide_count, COALESCE(source_id,''),
       status, COALESCE(fail_kind,''), COALESCE(fail_reason,''), COALESCE(out_path,''),
       COALESCE(backend,''), COALESCE(model,''), created_at, updated_at
FROM decks WHERE deck_id=$1`, deckID).Scan(
		&d.DeckID, &d.Topic, &d.Description, &d.SlideCount, &d.SourceID,
		&d.Status, &d.FailKind, &d.FailReason, &d.OutPath,
		&d.Backend, &d.Model, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Deck{}, fmt.Errorf("get deck: %w", err)
	}
	return d, nil
}

func (r *DeckRepo) ListDecks(ctx context.Context, limit int) ([]models.Deck, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT deck_id, topic, COALESCE(description,''), slide_count, COALESCE(source_id,''),
       status, COALESCE(fail_kind,''), COALESCE(fail_reason,''), COALESCE(out_path,''),
       COALESCE(backend,''), COALESCE(model,''), created_at, updated_at
FROM decks ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()
	out := make([]models.Deck, 0, limit)
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(
			&d.DeckID, &d.Topic, &d.Description, &d.SlideCount, &d.SourceID,
			&d.Status, &d.FailKind, &d.FailReason, &d.OutPath,
			&d.Backend, &d.Model, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
