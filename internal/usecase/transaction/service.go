// Package transaction owns the income and expense records.
package transaction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/entitystore"
	"github.com/simaogato/wealthflow-dashboard/internal/usecase/seeder"
)

// TransactionService handles transaction operations on top of the entity store
type TransactionService struct {
	clock domain.Clock
	items *entitystore.Collection[domain.Transaction]
}

// NewTransactionService creates a new TransactionService instance bound to the
// "transactions" snapshot
func NewTransactionService(store domain.RecordStore, clock domain.Clock, log *zerolog.Logger) *TransactionService {
	return &TransactionService{
		clock: clock,
		items: entitystore.New(store, domain.KeyTransactions, entitystore.Options[domain.Transaction]{
			Seed:   seeder.Transactions,
			Clock:  clock,
			Logger: log,
		}),
	}
}

// Initialize loads the persisted transactions, installing the demo set on a first empty load.
func (s *TransactionService) Initialize(ctx context.Context) error {
	_, err := s.items.Initialize(ctx)
	return err
}

// SeedState exposes the seeding state of this session.
func (s *TransactionService) SeedState() entitystore.SeedState { return s.items.SeedState() }

// Create validates the draft, assigns an id and creation time, and stores it.
// A domain.ErrPersistence error comes with the created record.
func (s *TransactionService) Create(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	tx := draft.Build(uuid.NewString(), s.clock.Now())
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return s.items.Insert(ctx, tx)
}

// Update merges patch into the transaction with the given id.
// Logic:
//   - Unknown id: no-op, found is false
//   - Empty patch: returns the stored record unchanged without persisting
//   - Otherwise: merge, re-validate, persist
func (s *TransactionService) Update(ctx context.Context, id string, patch domain.TransactionPatch) (domain.Transaction, bool, error) {
	if patch.IsEmpty() {
		tx, ok := s.items.Get(id)
		return tx, ok, nil
	}
	tx, found, err := s.items.Update(ctx, id, patch.Apply)
	if err != nil && !domain.IsWarning(err) {
		return tx, found, fmt.Errorf("failed to update transaction %s: %w", id, err)
	}
	return tx, found, err
}

// Delete removes a transaction. Deleting an unknown id is not an error.
func (s *TransactionService) Delete(ctx context.Context, id string) (bool, error) {
	_, found, err := s.items.Delete(ctx, id)
	return found, err
}

// Get returns the transaction with the given id or domain.ErrNotFound.
func (s *TransactionService) Get(id string) (domain.Transaction, error) {
	tx, ok := s.items.Get(id)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	return tx, nil
}

// List returns all transactions in insertion order.
func (s *TransactionService) List() []domain.Transaction { return s.items.All() }

// ByKind returns the income or the expense transactions.
func (s *TransactionService) ByKind(kind domain.TransactionKind) []domain.Transaction {
	return s.items.Filter(func(tx domain.Transaction) bool { return tx.Kind == kind })
}

// ByCategory returns the transactions of one category.
func (s *TransactionService) ByCategory(cat domain.TransactionCategory) []domain.Transaction {
	return s.items.Filter(func(tx domain.Transaction) bool { return tx.Category == cat })
}

// Between returns the transactions dated in [from, to].
func (s *TransactionService) Between(from, to time.Time) []domain.Transaction {
	return s.items.Filter(func(tx domain.Transaction) bool {
		return !tx.Date.Before(from) && !tx.Date.After(to)
	})
}

// Recent returns up to n transactions, newest date first.
func (s *TransactionService) Recent(n int) []domain.Transaction {
	all := s.items.All()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}
