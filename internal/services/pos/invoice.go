package pos

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// nextInvoiceNumber returns INV-YYYYMMDD-NNN where NNN is one more than the
// number of invoices already issued that day, bumped past any number in use.
func (s *Service) nextInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	sales, err := s.store.Sales().All(ctx)
	if err != nil {
		return "", err
	}

	prefix := "INV-" + at.Format("20060102") + "-"
	used := make(map[string]struct{})
	for _, sale := range sales {
		if strings.HasPrefix(sale.InvoiceNumber, prefix) {
			used[sale.InvoiceNumber] = struct{}{}
		}
	}

	for seq := len(used) + 1; ; seq++ {
		number := fmt.Sprintf("%s%03d", prefix, seq)
		if _, taken := used[number]; !taken {
			return number, nil
		}
	}
}
