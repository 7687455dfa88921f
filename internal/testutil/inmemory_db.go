package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/types"
)

type txKey struct{}

// journal collects undo steps of one in-memory transaction
type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) add(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

func (j *journal) rollback() {
	j.mu.Lock()
	steps := j.undo
	j.undo = nil
	j.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// recordUndo registers fn to run if the transaction on ctx fails. Outside a
// transaction writes are final.
func recordUndo(ctx context.Context, fn func()) {
	if j, ok := ctx.Value(txKey{}).(*journal); ok {
		j.add(fn)
	}
}

// InTx reports whether ctx carries an in-memory transaction
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*journal)
	return ok
}

// InMemoryDB implements postgres.IClient. Failed transactions replay their
// undo journal so stores return to their pre-transaction state.
type InMemoryDB struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func NewInMemoryDB() *InMemoryDB {
	return &InMemoryDB{}
}

func (db *InMemoryDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	j := &journal{}
	defer func() {
		if p := recover(); p != nil {
			j.rollback()
			db.count(false)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		j.rollback()
		db.count(false)
		return err
	}

	db.count(true)
	return nil
}

// LockKey is a no-op; in-memory stores serialize with mutexes
func (db *InMemoryDB) LockKey(context.Context, types.LockRequest) error {
	return nil
}

func (db *InMemoryDB) count(committed bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if committed {
		db.commits++
	} else {
		db.rollbacks++
	}
}

// Rollbacks returns how many transactions were rolled back
func (db *InMemoryDB) Rollbacks() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.rollbacks
}

// Commits returns how many transactions committed
func (db *InMemoryDB) Commits() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.commits
}
