package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	_ "github.com/lib/pq"

	"Chorus/internal/itemstore"
)

// Store implements itemstore.Store on a single PostgreSQL table holding
// one jsonb body per (class, item_id). List and counter operations run
// inside row-locked transactions, which gives them the same atomicity
// the DynamoDB backend gets from conditional update expressions.
type Store struct {
	db *sql.DB
}

// New creates a store backed by the given database handle
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func marshalBody(item any) ([]byte, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Store) Put(ctx context.Context, key itemstore.Key, item any) error {
	body, err := marshalBody(item)
	if err != nil {
		return itemstore.NewStoreError("put", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (class, item_id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (class, item_id) DO UPDATE SET body = EXCLUDED.body`,
		key.Class, key.ItemID, body)
	if err != nil {
		return itemstore.NewStoreError("put", key, err)
	}
	return nil
}

func (s *Store) PutIfAbsent(ctx context.Context, key itemstore.Key, item any) error {
	body, err := marshalBody(item)
	if err != nil {
		return itemstore.NewStoreError("putIfAbsent", key, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (class, item_id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (class, item_id) DO NOTHING`,
		key.Class, key.ItemID, body)
	if err != nil {
		return itemstore.NewStoreError("putIfAbsent", key, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return itemstore.NewStoreError("putIfAbsent", key, err)
	}
	if inserted == 0 {
		return itemstore.ErrConditionFailed
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key itemstore.Key, out any) error {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM items WHERE class = $1 AND item_id = $2`,
		key.Class, key.ItemID).Scan(&body)
	if err == sql.ErrNoRows {
		return itemstore.ErrItemNotFound
	}
	if err != nil {
		return itemstore.NewStoreError("get", key, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return itemstore.NewStoreError("get", key, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, class string, out any) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM items WHERE class = $1 ORDER BY created_at`,
		class)
	return s.collect(itemstore.Key{Class: class}, rows, err, out)
}

func (s *Store) ScanEq(ctx context.Context, class, field string, value any, out any) error {
	key := itemstore.Key{Class: class}
	want, err := json.Marshal(value)
	if err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM items
		WHERE class = $1 AND body -> $2 = $3::jsonb
		ORDER BY created_at`,
		class, field, want)
	return s.collect(key, rows, err, out)
}

func (s *Store) collect(key itemstore.Key, rows *sql.Rows, err error, out any) error {
	if err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}
	defer rows.Close()

	bodies := make([]json.RawMessage, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return itemstore.NewStoreError("scan", key, err)
		}
		bodies = append(bodies, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}

	raw, err := json.Marshal(bodies)
	if err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}
	return nil
}

func (s *Store) SetAttrs(ctx context.Context, key itemstore.Key, attrs map[string]any) error {
	if len(attrs) == 0 {
		return nil
	}
	patch, err := json.Marshal(attrs)
	if err != nil {
		return itemstore.NewStoreError("setAttrs", key, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET body = body || $3::jsonb
		WHERE class = $1 AND item_id = $2`,
		key.Class, key.ItemID, patch)
	if err != nil {
		return itemstore.NewStoreError("setAttrs", key, err)
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return itemstore.NewStoreError("setAttrs", key, err)
	}
	if updated == 0 {
		return itemstore.ErrItemNotFound
	}
	return nil
}

func (s *Store) Append(ctx context.Context, key itemstore.Key, field string, value any) error {
	return s.mutateBody(ctx, "append", key, func(body map[string]any) error {
		list, err := listField(body, field)
		if err != nil {
			return err
		}
		normalized, err := normalize(value)
		if err != nil {
			return err
		}
		body[field] = append(list, normalized)
		return nil
	})
}

func (s *Store) AppendIfLen(ctx context.Context, key itemstore.Key, field string, value any, length int) error {
	return s.mutateBody(ctx, "append", key, func(body map[string]any) error {
		list, err := listField(body, field)
		if err != nil {
			return err
		}
		if len(list) != length {
			return itemstore.ErrConditionFailed
		}
		normalized, err := normalize(value)
		if err != nil {
			return err
		}
		body[field] = append(list, normalized)
		return nil
	})
}

func (s *Store) RemoveAt(ctx context.Context, key itemstore.Key, field string, index int, guard map[string]any) error {
	return s.mutateBody(ctx, "removeAt", key, func(body map[string]any) error {
		list, err := listField(body, field)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(list) {
			return itemstore.ErrConditionFailed
		}
		if len(guard) > 0 {
			elem, ok := list[index].(map[string]any)
			if !ok {
				return itemstore.ErrConditionFailed
			}
			for attr, v := range guard {
				want, err := normalize(v)
				if err != nil {
					return err
				}
				if !reflect.DeepEqual(elem[attr], want) {
					return itemstore.ErrConditionFailed
				}
			}
		}
		body[field] = append(list[:index:index], list[index+1:]...)
		return nil
	})
}

func (s *Store) Increment(ctx context.Context, key itemstore.Key, field string, delta int) error {
	return s.mutateBody(ctx, "increment", key, func(body map[string]any) error {
		current := float64(0)
		if v, exists := body[field]; exists && v != nil {
			n, ok := v.(float64)
			if !ok {
				return fmt.Errorf("field %s is not numeric", field)
			}
			current = n
		}
		body[field] = current + float64(delta)
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, key itemstore.Key) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE class = $1 AND item_id = $2`,
		key.Class, key.ItemID)
	if err != nil {
		return itemstore.NewStoreError("delete", key, err)
	}
	return nil
}

// mutateBody runs fn over the row-locked body and writes the result back,
// turning a read-modify-write into an atomic operation.
func (s *Store) mutateBody(ctx context.Context, op string, key itemstore.Key, fn func(body map[string]any) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return itemstore.NewStoreError(op, key, err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM items WHERE class = $1 AND item_id = $2 FOR UPDATE`,
		key.Class, key.ItemID).Scan(&raw)
	if err == sql.ErrNoRows {
		return itemstore.ErrItemNotFound
	}
	if err != nil {
		return itemstore.NewStoreError(op, key, err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return itemstore.NewStoreError(op, key, err)
	}

	if err := fn(body); err != nil {
		if errors.Is(err, itemstore.ErrConditionFailed) {
			return itemstore.ErrConditionFailed
		}
		return itemstore.NewStoreError(op, key, err)
	}

	updated, err := json.Marshal(body)
	if err != nil {
		return itemstore.NewStoreError(op, key, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET body = $3 WHERE class = $1 AND item_id = $2`,
		key.Class, key.ItemID, updated); err != nil {
		return itemstore.NewStoreError(op, key, err)
	}
	if err := tx.Commit(); err != nil {
		return itemstore.NewStoreError(op, key, err)
	}
	return nil
}

func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func listField(body map[string]any, field string) ([]any, error) {
	v, exists := body[field]
	if !exists || v == nil {
		return []any{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %s is not a list", field)
	}
	return list, nil
}
