package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campaignScope/internal/model"
)

// Store provides Postgres persistence for fetched event history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertEvents inserts or refreshes events keyed by (tx_hash, log_index).
func (s *Store) UpsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		var tierIndex *int64
		if event.TierIndex != nil {
			v := int64(*event.TierIndex)
			tierIndex = &v
		}
		batch.Queue(`
			INSERT INTO campaign_events (
				kind, campaign, actor, tier_index, token_id, amount,
				block_number, tx_hash, log_index, event_ts, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (tx_hash, log_index)
			DO UPDATE SET
				kind = EXCLUDED.kind,
				campaign = EXCLUDED.campaign,
				actor = EXCLUDED.actor,
				tier_index = EXCLUDED.tier_index,
				token_id = EXCLUDED.token_id,
				amount = EXCLUDED.amount,
				block_number = EXCLUDED.block_number,
				event_ts = EXCLUDED.event_ts,
				updated_at = now()
		`,
			string(event.Kind),
			event.Campaign,
			event.Actor,
			tierIndex,
			event.TokenID,
			event.Amount,
			int64(event.BlockNumber),
			event.TxHash,
			int64(event.LogIndex),
			int64(event.Timestamp),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutEventBatch satisfies storage.Storage using a background context.
func (s *Store) PutEventBatch(events []model.Event) error {
	return s.UpsertEvents(context.Background(), events)
}
