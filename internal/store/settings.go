package store

import (
	"context"

	"stockbook/internal/domain"
)

// SettingsPatch carries the fields to change; nil fields keep their value.
type SettingsPatch struct {
	Currency          *string `json:"currency"`
	LowStockThreshold *int    `json:"lowStockThreshold"`
	AutoBackup        *bool   `json:"autoBackup"`
	Notifications     *bool   `json:"notifications"`
	DarkMode          *bool   `json:"darkMode"`
}

// Settings returns the stored settings layered over the defaults.
func (s *Store) Settings(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings(ctx)
}

func (s *Store) loadSettings(ctx context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	if _, err := s.readJSON(ctx, s.key(keySettings), &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// SaveSettings merges patch over the current settings and stores the result.
func (s *Store) SaveSettings(ctx context.Context, patch SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if patch.Currency != nil {
		settings.Currency = *patch.Currency
	}
	if patch.LowStockThreshold != nil {
		if *patch.LowStockThreshold < 0 {
			return domain.Settings{}, domain.NewValidationError("lowStockThreshold", "must not be negative", *patch.LowStockThreshold)
		}
		settings.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.AutoBackup != nil {
		settings.AutoBackup = *patch.AutoBackup
	}
	if patch.Notifications != nil {
		settings.Notifications = *patch.Notifications
	}
	if patch.DarkMode != nil {
		settings.DarkMode = *patch.DarkMode
	}

	if err := s.writeJSON(ctx, s.key(keySettings), settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}
