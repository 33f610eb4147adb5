// Package pos drives order and sale status transitions and the stock and
// customer side effects they carry.
//
// A stock effect is applied when a record enters the completed state and
// reversed when it leaves it, so the net effect only depends on whether the
// record is currently completed.
package pos

import (
	"context"
	"log"
	"sync"
	"time"

	"stockbook/internal/domain"
	"stockbook/internal/services/inventory"
	"stockbook/internal/store"
)

type Service struct {
	// mu makes stock availability checks and the writes that follow atomic
	// within this process.
	mu        sync.Mutex
	store     *store.Store
	ledger    *inventory.Ledger
	publisher Publisher
	now       func() time.Time
}

func NewService(s *store.Store, ledger *inventory.Ledger, publisher Publisher) *Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		store:     s,
		ledger:    ledger,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// rollback collects compensating steps for a transition whose later steps
// may still fail.
type rollback []func(ctx context.Context) error

func (r *rollback) add(step func(ctx context.Context) error) {
	*r = append(*r, step)
}

// run undoes the collected steps newest first. It ignores cancellation of
// ctx so a cancelled request still leaves consistent stock behind.
func (r rollback) run(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(r) - 1; i >= 0; i-- {
		if err := r[i](ctx); err != nil {
			log.Printf("Warning: rollback step failed: %v", err)
		}
	}
}

// moveStock applies op through the ledger and returns the units actually
// moved, registering the inverse on undo. A product that no longer exists
// moves nothing; every other failure is returned.
func (s *Service) moveStock(ctx context.Context, productID string, amount int, op domain.StockOp, reference string, undo *rollback) (int, error) {
	if amount == 0 {
		return 0, nil
	}
	movement, err := s.ledger.Move(ctx, productID, amount, op, reference)
	if domain.IsNotFound(err) {
		log.Printf("Warning: stock %s of %d for %s skipped: %v", op, amount, reference, err)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	moved := movement.Units()
	if moved > 0 {
		undo.add(func(ctx context.Context) error {
			_, err := s.ledger.Move(ctx, productID, moved, op.Inverse(), reference)
			return err
		})
	}
	return moved, nil
}
