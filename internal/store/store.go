// Package store persists products, orders, customers and sales as one JSON
// array per key of a flat key-value namespace.
//
// Every write is a whole-collection read-modify-write. A Store serialises its
// own cycles, so goroutines sharing one Store never lose each other's writes.
// Separate processes sharing a backend are last-write-wins per collection.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"stockbook/internal/domain"
	"stockbook/internal/kv"
)

const DefaultNamespace = "stockbook"

const (
	keyProducts  = "products"
	keyOrders    = "orders"
	keyCustomers = "customers"
	keySales     = "sales"
	keySettings  = "settings"
	keySync      = "sync_queue"
	keyMovements = "stock_movements"
)

type Store struct {
	mu  sync.Mutex
	kv  kv.KV
	ns  string
	now func() time.Time

	products  *Collection[domain.Product, *domain.Product]
	orders    *Collection[domain.Order, *domain.Order]
	customers *Collection[domain.Customer, *domain.Customer]
	sales     *Collection[domain.Sale, *domain.Sale]
	movements *Collection[domain.StockMovement, *domain.StockMovement]
}

func New(backend kv.KV, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	s := &Store{
		kv:  backend,
		ns:  namespace,
		now: func() time.Time { return time.Now().UTC() },
	}
	s.products = newCollection[domain.Product](s, keyProducts, "product", "PROD")
	s.orders = newCollection[domain.Order](s, keyOrders, "order", "ORD")
	s.customers = newCollection[domain.Customer](s, keyCustomers, "customer", "CUST")
	s.sales = newCollection[domain.Sale](s, keySales, "sale", "SALE")
	s.movements = newCollection[domain.StockMovement](s, keyMovements, "movement", "MOV")
	// movements are an audit trail, not synced entities
	s.movements.untracked = true
	return s
}

func (s *Store) Products() *Collection[domain.Product, *domain.Product]    { return s.products }
func (s *Store) Orders() *Collection[domain.Order, *domain.Order]          { return s.orders }
func (s *Store) Customers() *Collection[domain.Customer, *domain.Customer] { return s.customers }
func (s *Store) Sales() *Collection[domain.Sale, *domain.Sale]             { return s.sales }

func (s *Store) Movements() *Collection[domain.StockMovement, *domain.StockMovement] {
	return s.movements
}

// Ping checks the underlying backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) key(name string) string {
	return s.ns + "_" + name
}

func (s *Store) allKeys() []string {
	names := []string{keyProducts, keyOrders, keyCustomers, keySales, keySettings, keySync, keyMovements}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.key(n)
	}
	return keys
}

// readJSON decodes key into out. A missing key leaves out untouched and
// reports false. Unparseable data is logged and reported as missing.
func (s *Store) readJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	b, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		log.Printf("Warning: %v", &domain.PersistenceParseError{Key: key, Err: err})
		return false, nil
	}
	return true, nil
}

func (s *Store) writeJSON(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// HasData reports whether any product or order is stored.
func (s *Store) HasData(ctx context.Context) (bool, error) {
	products, err := s.products.All(ctx)
	if err != nil {
		return false, err
	}
	if len(products) > 0 {
		return true, nil
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return false, err
	}
	return len(orders) > 0, nil
}

// ClearAll removes every key the store owns.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.allKeys()...); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}
