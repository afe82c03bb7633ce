// Package memory implements the persistence gateway as named collections of
// flat records held in memory, optionally mirrored to a JSON snapshot file,
// together with the entity repositories the booking coordinator consumes.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Collection names.
const (
	Rooms        = "rooms"
	Guests       = "guests"
	Reservations = "reservations"
	Payments     = "payments"
)

var collectionNames = []string{Rooms, Guests, Reservations, Payments}

type Config struct {
	// Path of the JSON snapshot.  Empty keeps the data in memory only.
	Path string
	L    logrus.FieldLogger
}

type transaction struct {
	id              string
	dirty           bool
	rollbackActions []func()
}

type DB struct {
	mu           sync.Mutex
	l            logrus.FieldLogger
	path         string
	collections  map[string][]model.Record
	transactions map[string]*transaction
	nextTrxID    int64
}

// New returns a store.  When cfg.Path names an existing snapshot it is
// loaded; a snapshot that cannot be decoded is replaced by an empty store.
func New(cfg Config) (*DB, error) {
	l := cfg.L
	if l == nil {
		l = logrus.StandardLogger()
	}
	db := &DB{
		l:            l,
		path:         cfg.Path,
		collections:  emptyCollections(),
		transactions: make(map[string]*transaction),
	}
	if db.path == "" {
		return db, nil
	}
	if err := db.load(); err != nil {
		return nil, err
	}
	return db, nil
}

func emptyCollections() map[string][]model.Record {
	out := make(map[string][]model.Record, len(collectionNames))
	for _, name := range collectionNames {
		out[name] = []model.Record{}
	}
	return out
}

func (db *DB) load() error {
	data, err := os.ReadFile(db.path)
	if errors.Is(err, fs.ErrNotExist) {
		return db.flush()
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap map[string][]model.Record
	if err := json.Unmarshal(data, &snap); err != nil {
		db.l.WithError(err).WithField("path", db.path).Warn("snapshot is corrupt, starting with an empty store")
		return db.flush()
	}
	for _, name := range collectionNames {
		if recs, ok := snap[name]; ok && recs != nil {
			db.collections[name] = recs
		}
	}
	return nil
}

// flush writes every collection to the snapshot file.  Callers hold db.mu
// or own db exclusively.
func (db *DB) flush() error {
	if db.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(db.collections, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(db.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	tmp := db.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, db.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (db *DB) BeginTransaction(ctx context.Context) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = &transaction{
		id:              trxID,
		rollbackActions: []func(){},
	}

	return withTrx(ctx, trxID), nil
}

// CommitTransaction writes the snapshot and ends the transaction.  When the
// snapshot cannot be written the transaction stays open, so the caller's
// RollbackTransaction still undoes its changes.
func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transactionFrom(ctx)
	if err != nil {
		return err
	}
	if trx.dirty {
		if err := db.flush(); err != nil {
			return err
		}
	}
	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.transactionFrom(ctx)
	if err != nil {
		return err
	}
	// Undo newest first so a record touched twice ends at its oldest state.
	for i := len(trx.rollbackActions) - 1; i >= 0; i-- {
		trx.rollbackActions[i]()
	}
	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) transactionFrom(ctx context.Context) (*transaction, error) {
	trxID, ok := trxFrom(ctx)
	if !ok {
		return nil, ErrTransactionIDNotFoundInCtx
	}
	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}
	return trx, nil
}

// ReadCollection returns a copy of every record in the named collection.
func (db *DB) ReadCollection(_ context.Context, name string) ([]model.Record, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	recs, ok := db.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return cloneRecords(recs), nil
}

// WriteCollection replaces the named collection with recs.
func (db *DB) WriteCollection(ctx context.Context, name string, recs []model.Record) error {
	return db.update(ctx, name, func([]model.Record) ([]model.Record, error) {
		return cloneRecords(recs), nil
	})
}

// update runs a read-modify-write of one collection under the store lock,
// so fn observes and replaces the collection atomically.  Inside a
// transaction every changed record gets a rollback action; outside one the
// change is flushed immediately.
func (db *DB) update(ctx context.Context, name string, fn func([]model.Record) ([]model.Record, error)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}

	var trx *transaction
	if _, inTrx := trxFrom(ctx); inTrx {
		t, err := db.transactionFrom(ctx)
		if err != nil {
			return err
		}
		trx = t
	}

	next, err := fn(cloneRecords(cur))
	if err != nil {
		return err
	}
	if trx != nil {
		trx.dirty = true
		trx.rollbackActions = append(trx.rollbackActions, db.undoActions(name, cur, next)...)
	}
	db.collections[name] = next

	if trx != nil {
		return nil
	}
	return db.flush()
}

// undoActions compares a collection before and after a write, record by
// record, and returns the actions that put back what changed.  Only this
// write is undone; records written by other callers meanwhile are kept.
func (db *DB) undoActions(name string, before, after []model.Record) []func() {
	prev := make(map[any]model.Record, len(before))
	for _, r := range before {
		prev[r["id"]] = r
	}
	seen := make(map[any]bool, len(after))
	var undo []func()
	for _, r := range after {
		id := r["id"]
		seen[id] = true
		old, existed := prev[id]
		switch {
		case !existed:
			undo = append(undo, func() { db.dropRecord(name, id) })
		case !reflect.DeepEqual(old, r):
			undo = append(undo, func() { db.putRecord(name, old) })
		}
	}
	for _, r := range before {
		if !seen[r["id"]] {
			old := r
			undo = append(undo, func() { db.putRecord(name, old) })
		}
	}
	return undo
}

// putRecord replaces the record sharing rec's id, or appends it.  Callers
// hold db.mu.
func (db *DB) putRecord(name string, rec model.Record) {
	recs := db.collections[name]
	for i, r := range recs {
		if r["id"] == rec["id"] {
			recs[i] = rec
			return
		}
	}
	db.collections[name] = append(recs, rec)
}

// dropRecord removes the record with id.  Callers hold db.mu.
func (db *DB) dropRecord(name string, id any) {
	recs := db.collections[name]
	out := make([]model.Record, 0, len(recs))
	for _, r := range recs {
		if r["id"] != id {
			out = append(out, r)
		}
	}
	db.collections[name] = out
}

func cloneRecords(recs []model.Record) []model.Record {
	out := make([]model.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
