package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockbook/internal/domain"
)

const BackupVersion = "1.0"

// Backup is the exported document. Customers and sales are included so a
// restore round-trips the full store; older documents without them still import.
type Backup struct {
	Products   []domain.Product  `json:"products"`
	Orders     []domain.Order    `json:"orders"`
	Customers  []domain.Customer `json:"customers,omitempty"`
	Sales      []domain.Sale     `json:"sales,omitempty"`
	Settings   domain.Settings   `json:"settings"`
	ExportDate time.Time         `json:"exportDate"`
	Version    string            `json:"version"`
	BackupDate time.Time         `json:"backupDate"`
}

func (s *Store) Export(ctx context.Context) (*Backup, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.All(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.All(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if products == nil {
		products = []domain.Product{}
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &Backup{
		Products:   products,
		Orders:     orders,
		Customers:  customers,
		Sales:      sales,
		Settings:   settings,
		ExportDate: now,
		Version:    BackupVersion,
		BackupDate: now,
	}, nil
}

// Import replaces every collection present in raw with its contents. Only the
// top level is parsed; collection values are written as given.
func (s *Store) Import(ctx context.Context, raw []byte) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, domain.NewValidationError("backup", "not a JSON object", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var imported []string
	for _, name := range []string{keyProducts, keyOrders, keyCustomers, keySales, keySettings} {
		value, ok := doc[name]
		if !ok || len(value) == 0 || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		if err := s.kv.Set(ctx, s.key(name), []byte(value)); err != nil {
			return imported, fmt.Errorf("import %s: %w", name, err)
		}
		imported = append(imported, name)
	}
	return imported, nil
}
