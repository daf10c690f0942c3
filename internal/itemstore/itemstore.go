package itemstore

import (
	"context"
	"errors"
	"fmt"
)

// Item classes partitioning the shared table.
const (
	ClassPost = "post"
	ClassUser = "user"
)

// Key addresses a single item in the store.
// Class partitions heterogeneous records (posts vs users) within one table;
// ItemID is unique within a class.
type Key struct {
	Class  string
	ItemID string
}

func (k Key) String() string {
	return k.Class + "/" + k.ItemID
}

// Sentinel errors for conditions callers are expected to branch on.
var (
	// ErrItemNotFound is returned by Get when no item exists for the key
	ErrItemNotFound = errors.New("item not found")

	// ErrConditionFailed is returned when a conditional write loses its race
	// (PutIfAbsent on an existing key, AppendIfLen against a changed list,
	// RemoveAt with a stale guard)
	ErrConditionFailed = errors.New("conditional write failed")
)

// StoreError wraps any other persistence failure with operation context.
// Handlers map it to a 502.
type StoreError struct {
	Op  string
	Key Key
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("itemstore %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with operation and key context
func NewStoreError(op string, key Key, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsStoreError checks if error is a wrapped persistence failure
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// Store is the single-table key-value contract all backends implement.
// Items marshal to/from caller-provided structs; list fields hold ordered
// sequences, and the conditional variants exist so read-modify-write
// callers can detect lost races instead of silently overwriting them.
type Store interface {
	// Put writes the item under key, replacing any existing item.
	Put(ctx context.Context, key Key, item any) error

	// PutIfAbsent writes the item only when the key is vacant.
	// Returns ErrConditionFailed when an item already exists.
	PutIfAbsent(ctx context.Context, key Key, item any) error

	// Get loads the item for key into out (a pointer to a struct).
	// Returns ErrItemNotFound when the key is vacant.
	Get(ctx context.Context, key Key, out any) error

	// Scan loads every item of the class into out (a pointer to a slice).
	Scan(ctx context.Context, class string, out any) error

	// ScanEq loads every item of the class whose top-level field equals
	// value into out (a pointer to a slice).
	ScanEq(ctx context.Context, class, field string, value any, out any) error

	// SetAttrs overwrites the named top-level attributes of an existing item.
	// Returns ErrItemNotFound when the key is vacant.
	SetAttrs(ctx context.Context, key Key, attrs map[string]any) error

	// Append atomically appends value to the list field of an existing item.
	Append(ctx context.Context, key Key, field string, value any) error

	// AppendIfLen appends value to the list field only while the list still
	// holds exactly length elements. Returns ErrConditionFailed otherwise.
	AppendIfLen(ctx context.Context, key Key, field string, value any, length int) error

	// RemoveAt deletes the element at index from the list field. When guard
	// is non-empty, every guard entry must match the element's attribute of
	// the same name or the write fails with ErrConditionFailed; this keeps
	// positional deletes from removing a neighbour after a concurrent shift.
	RemoveAt(ctx context.Context, key Key, field string, index int, guard map[string]any) error

	// Increment atomically adds delta to a numeric field of an existing item.
	Increment(ctx context.Context, key Key, field string, delta int) error

	// Delete removes the item for key. Deleting a vacant key is a no-op.
	Delete(ctx context.Context, key Key) error
}
