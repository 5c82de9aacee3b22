package store

import (
	"context"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// NopStore is a no-op gateway used in dry-run mode. Nothing is persisted, so
// every posting appears new and inserts are discarded.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) ExistsByHash(_ context.Context, _ string) (bool, error) { return false, nil }

func (s *NopStore) RecentBySource(_ context.Context, _ string, _ time.Time) ([]model.JobRef, error) {
	return nil, nil
}

func (s *NopStore) Insert(_ context.Context, _ model.NormalizedJob) (int64, error) { return 1, nil }
