package memory

import (
	"maps"
	"slices"
	"sync"

	"billing-engine-be/internal/entity"
	"billing-engine-be/internal/pkg/clock"

	"github.com/google/uuid"
)

// table keeps rows by id plus their insertion order, which breaks ties the
// way an auto-increment column would.
type table[T any] struct {
	rows  map[uuid.UUID]T
	order map[uuid.UUID]int64
}

func newTable[T any]() *table[T] {
	return &table[T]{
		rows:  make(map[uuid.UUID]T),
		order: make(map[uuid.UUID]int64),
	}
}

func (t *table[T]) clone() *table[T] {
	return &table[T]{
		rows:  maps.Clone(t.rows),
		order: maps.Clone(t.order),
	}
}

func (t *table[T]) get(id uuid.UUID) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id uuid.UUID, v T, seq *int64) {
	if _, ok := t.order[id]; !ok {
		*seq++
		t.order[id] = *seq
	}
	t.rows[id] = v
}

// filter returns matching rows, oldest insert first.
func (t *table[T]) filter(keep func(T) bool) []T {
	ids := make([]uuid.UUID, 0, len(t.rows))
	for id, v := range t.rows {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return int(t.order[a] - t.order[b])
	})
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = t.rows[id]
	}
	return out
}

type state struct {
	seq           int64
	users         *table[entity.User]
	plans         *table[entity.Plan]
	subscriptions *table[entity.Subscription]
	invoices      *table[entity.Invoice]
	payments      *table[entity.Payment]
	methods       *table[entity.PaymentMethod]
	disputes      *table[entity.Dispute]
}

func newState() *state {
	return &state{
		users:         newTable[entity.User](),
		plans:         newTable[entity.Plan](),
		subscriptions: newTable[entity.Subscription](),
		invoices:      newTable[entity.Invoice](),
		payments:      newTable[entity.Payment](),
		methods:       newTable[entity.PaymentMethod](),
		disputes:      newTable[entity.Dispute](),
	}
}

func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		users:         s.users.clone(),
		plans:         s.plans.clone(),
		subscriptions: s.subscriptions.clone(),
		invoices:      s.invoices.clone(),
		payments:      s.payments.clone(),
		methods:       s.methods.clone(),
		disputes:      s.disputes.clone(),
	}
}

// Store is an in-process stand-in for the database with read-committed
// isolation. A transaction holds txMu from Begin to Commit or Rollback and
// works on a private copy of the committed state, installed on Commit.
// Writes outside a transaction also take txMu, so each commits on its own.
type Store struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	data  *state
	clock clock.Clock
}

func NewStore(c clock.Clock) *Store {
	return &Store{data: newState(), clock: c}
}

func (s *Store) read(fn func(*state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// write applies fn as a single-statement transaction.
func (s *Store) write(fn func(*state)) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

func (s *Store) begin() *state {
	s.txMu.Lock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

func (s *Store) commit(tx *state) {
	s.mu.Lock()
	s.data = tx
	s.mu.Unlock()
	s.txMu.Unlock()
}

func (s *Store) rollback() {
	s.txMu.Unlock()
}
