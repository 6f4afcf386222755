package refstore

import (
	"context"
	"time"

	"pointake/internal/config"
	"pointake/internal/storage"
)

type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

func (s *SyncService) SyncAll(ctx context.Context) (int, int, error) {
	parts, err := s.client.GetAllParts(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := s.db.UpsertParts(parts); err != nil {
		return 0, 0, err
	}
	_ = s.db.SetMetadata("refdata.last_parts_sync", time.Now().UTC().Format(time.RFC3339))

	customers, err := s.client.GetAllCustomers(ctx)
	if err != nil {
		return len(parts), 0, err
	}
	if err := s.db.UpsertCustomers(customers); err != nil {
		return len(parts), 0, err
	}
	_ = s.db.SetMetadata("refdata.last_customers_sync", time.Now().UTC().Format(time.RFC3339))

	return len(parts), len(customers), nil
}
