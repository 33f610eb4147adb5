package store

import (
	"context"

	"stockbook/internal/domain"
)

// appendSync must be called with s.mu held.
func (s *Store) appendSync(ctx context.Context, entry domain.SyncEntry) error {
	var queue []domain.SyncEntry
	if _, err := s.readJSON(ctx, s.key(keySync), &queue); err != nil {
		return err
	}
	queue = append(queue, entry)
	return s.writeJSON(ctx, s.key(keySync), queue)
}

// SyncQueue returns the changes recorded since the last ClearSyncQueue.
func (s *Store) SyncQueue(ctx context.Context) ([]domain.SyncEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var queue []domain.SyncEntry
	if _, err := s.readJSON(ctx, s.key(keySync), &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

func (s *Store) ClearSyncQueue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(ctx, s.key(keySync), []domain.SyncEntry{})
}
