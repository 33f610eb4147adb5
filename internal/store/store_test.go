package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/domain"
	"stockbook/internal/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.MemoryKV) {
	t.Helper()
	backend := kv.NewMemoryKV()
	return New(backend, "test"), backend
}

func requireSameJSON(t *testing.T, want, got interface{}) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(w), string(g))
}

func TestCollection_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	t.Run("product", func(t *testing.T) {
		p, err := s.Products().Save(ctx, domain.Product{
			Name: "Rice", SKU: "X1", Category: "food", Quantity: 10,
			Price: decimal.NewFromInt(100), Cost: decimal.NewFromInt(60), MinStockLevel: 5,
		})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(p.ID, "PROD-"))
		require.False(t, p.DateAdded.IsZero())

		got, err := s.Products().Get(ctx, p.ID)
		require.NoError(t, err)
		requireSameJSON(t, p, got)
	})

	t.Run("order", func(t *testing.T) {
		o, err := s.Orders().Save(ctx, domain.Order{
			ProductID: "PROD-1", Quantity: 2, Type: domain.OrderTypePurchase,
			Status: domain.OrderStatusPending, TotalAmount: decimal.RequireFromString("12.50"),
		})
		require.NoError(t, err)
		got, err := s.Orders().Get(ctx, o.ID)
		require.NoError(t, err)
		requireSameJSON(t, o, got)
	})

	t.Run("customer", func(t *testing.T) {
		c, err := s.Customers().Save(ctx, domain.Customer{Name: "Ada", Type: domain.CustomerVIP})
		require.NoError(t, err)
		got, err := s.Customers().Get(ctx, c.ID)
		require.NoError(t, err)
		requireSameJSON(t, c, got)
	})

	t.Run("sale", func(t *testing.T) {
		sale, err := s.Sales().Save(ctx, domain.Sale{
			InvoiceNumber: "INV-20240101-001",
			Items: []domain.SaleItem{{
				ProductID: "PROD-1", Quantity: 1,
				UnitPrice: decimal.NewFromInt(5), Total: decimal.NewFromInt(5),
			}},
			Subtotal: decimal.NewFromInt(5), TotalAmount: decimal.NewFromInt(5),
			Status: domain.SaleStatusCompleted, PaymentMethod: domain.PaymentCash,
		})
		require.NoError(t, err)
		got, err := s.Sales().Get(ctx, sale.ID)
		require.NoError(t, err)
		requireSameJSON(t, sale, got)
	})
}

func TestCollection_SaveUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first, err := s.Products().Save(ctx, domain.Product{Name: "A", SKU: "A"})
	require.NoError(t, err)
	second, err := s.Products().Save(ctx, domain.Product{Name: "B", SKU: "B"})
	require.NoError(t, err)

	update := first
	update.Name = "A2"
	update.DateAdded = time.Time{}
	updated, err := s.Products().Save(ctx, update)
	require.NoError(t, err)
	require.True(t, first.DateAdded.Equal(updated.DateAdded))

	all, err := s.Products().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, "A2", all[0].Name)
	require.Equal(t, second.ID, all[1].ID)
}

func TestCollection_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.Customers().Get(ctx, "nope")
	require.True(t, domain.IsNotFound(err))

	c, err := s.Customers().Save(ctx, domain.Customer{Name: "Bo"})
	require.NoError(t, err)
	require.NoError(t, s.Customers().Delete(ctx, c.ID))
	require.NoError(t, s.Customers().Delete(ctx, c.ID))

	_, err = s.Customers().Get(ctx, c.ID)
	require.True(t, domain.IsNotFound(err))
}

func TestCollection_CorruptDataReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	require.NoError(t, backend.Set(ctx, "test_products", []byte("{broken")))

	all, err := s.Products().All(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	_, err = s.Products().Save(ctx, domain.Product{Name: "fresh"})
	require.NoError(t, err)
	all, err = s.Products().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCollection_ConcurrentSavesKeepAllRecords(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Orders().Save(ctx, domain.Order{Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.Orders().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 20)
}

func TestSyncQueue(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	p, err := s.Products().Save(ctx, domain.Product{Name: "A"})
	require.NoError(t, err)
	_, err = s.Products().Save(ctx, p)
	require.NoError(t, err)
	require.NoError(t, s.Products().Delete(ctx, p.ID))
	_, err = s.Movements().Save(ctx, domain.StockMovement{ProductID: p.ID})
	require.NoError(t, err)

	queue, err := s.SyncQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	require.Equal(t, "create", queue[0].Action)
	require.Equal(t, "update", queue[1].Action)
	require.Equal(t, "delete", queue[2].Action)
	require.Equal(t, "product", queue[2].Type)
	require.Equal(t, p.ID, queue[2].ID)

	require.NoError(t, s.ClearSyncQueue(ctx))
	queue, err = s.SyncQueue(ctx)
	require.NoError(t, err)
	require.Empty(t, queue)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultSettings(), settings)

	currency := "USD"
	dark := true
	settings, err = s.SaveSettings(ctx, SettingsPatch{Currency: &currency, DarkMode: &dark})
	require.NoError(t, err)
	require.Equal(t, "USD", settings.Currency)
	require.True(t, settings.DarkMode)
	require.Equal(t, 5, settings.LowStockThreshold)

	negative := -1
	_, err = s.SaveSettings(ctx, SettingsPatch{LowStockThreshold: &negative})
	require.True(t, domain.IsValidation(err))

	reloaded, err := s.Settings(ctx)
	require.NoError(t, err)
	require.Equal(t, settings, reloaded)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)

	p, err := src.Products().Save(ctx, domain.Product{Name: "A", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)
	_, err = src.Orders().Save(ctx, domain.Order{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	backup, err := src.Export(ctx)
	require.NoError(t, err)
	require.Equal(t, BackupVersion, backup.Version)
	require.Len(t, backup.Products, 1)
	require.Len(t, backup.Orders, 1)
	require.Empty(t, backup.Sales)

	raw, err := json.Marshal(backup)
	require.NoError(t, err)

	dst := New(kv.NewMemoryKV(), "other")
	_, err = dst.Customers().Save(ctx, domain.Customer{Name: "kept"})
	require.NoError(t, err)

	imported, err := dst.Import(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, []string{"products", "orders", "settings"}, imported)

	products, err := dst.Products().All(ctx)
	require.NoError(t, err)
	requireSameJSON(t, backup.Products, products)

	customers, err := dst.Customers().All(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
}

func TestImport_RejectsNonObject(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Import(context.Background(), []byte("[1,2"))
	require.True(t, domain.IsValidation(err))
}

func TestHasDataAndClearAll(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	has, err := s.HasData(ctx)
	require.NoError(t, err)
	require.False(t, has)

	_, err = s.Orders().Save(ctx, domain.Order{Quantity: 1})
	require.NoError(t, err)
	has, err = s.HasData(ctx)
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, backend.Set(ctx, "unrelated", []byte("x")))
	require.NoError(t, s.ClearAll(ctx))

	has, err = s.HasData(ctx)
	require.NoError(t, err)
	require.False(t, has)
	_, ok, err := backend.Get(ctx, "unrelated")
	require.NoError(t, err)
	require.True(t, ok)
}
