package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"Chorus/internal/itemstore"
)

// Store is an in-memory itemstore.Store used by unit tests and the
// memory storage backend in dev mode. Items are held as JSON-decoded
// attribute maps so Get and Scan can unmarshal into any caller type,
// the same way the real backends do.
type Store struct {
	mu    sync.RWMutex
	items map[itemstore.Key]map[string]any
	order map[string][]itemstore.Key // per-class insertion order, for stable scans
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		items: make(map[itemstore.Key]map[string]any),
		order: make(map[string][]itemstore.Key),
	}
}

// toAttrs normalizes an arbitrary value through a JSON round trip so
// stored attributes compare consistently (numbers become float64, structs
// become maps) regardless of the caller's types.
func toAttrs(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var attrs map[string]any
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

func toValue(v any) (any, error) {
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

func (s *Store) Put(ctx context.Context, key itemstore.Key, item any) error {
	attrs, err := toAttrs(item)
	if err != nil {
		return itemstore.NewStoreError("put", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		s.order[key.Class] = append(s.order[key.Class], key)
	}
	s.items[key] = attrs
	return nil
}

func (s *Store) PutIfAbsent(ctx context.Context, key itemstore.Key, item any) error {
	attrs, err := toAttrs(item)
	if err != nil {
		return itemstore.NewStoreError("putIfAbsent", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; exists {
		return itemstore.ErrConditionFailed
	}
	s.order[key.Class] = append(s.order[key.Class], key)
	s.items[key] = attrs
	return nil
}

func (s *Store) Get(ctx context.Context, key itemstore.Key, out any) error {
	// Marshal while still holding the lock: writers mutate the stored
	// attribute maps in place, so the snapshot must be taken before the
	// lock is released.
	s.mu.RLock()
	attrs, ok := s.items[key]
	var raw []byte
	var err error
	if ok {
		raw, err = json.Marshal(attrs)
	}
	s.mu.RUnlock()

	if !ok {
		return itemstore.ErrItemNotFound
	}
	if err != nil {
		return itemstore.NewStoreError("get", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return itemstore.NewStoreError("get", key, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, class string, out any) error {
	return s.scan(ctx, class, "", nil, out)
}

func (s *Store) ScanEq(ctx context.Context, class, field string, value any, out any) error {
	return s.scan(ctx, class, field, value, out)
}

func (s *Store) scan(ctx context.Context, class, field string, value any, out any) error {
	key := itemstore.Key{Class: class}

	var want any
	if field != "" {
		normalized, err := toValue(value)
		if err != nil {
			return itemstore.NewStoreError("scan", key, err)
		}
		want = normalized
	}

	// As with Get, matched maps are live and mutated in place by writers,
	// so the serialization happens under the lock.
	s.mu.RLock()
	matched := make([]map[string]any, 0)
	for _, k := range s.order[class] {
		attrs, ok := s.items[k]
		if !ok {
			continue
		}
		if field != "" && !reflect.DeepEqual(attrs[field], want) {
			continue
		}
		matched = append(matched, attrs)
	}
	raw, err := json.Marshal(matched)
	s.mu.RUnlock()

	if err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return itemstore.NewStoreError("scan", key, err)
	}
	return nil
}

func (s *Store) SetAttrs(ctx context.Context, key itemstore.Key, attrs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return itemstore.ErrItemNotFound
	}
	for field, v := range attrs {
		normalized, err := toValue(v)
		if err != nil {
			return itemstore.NewStoreError("setAttrs", key, err)
		}
		item[field] = normalized
	}
	return nil
}

func (s *Store) Append(ctx context.Context, key itemstore.Key, field string, value any) error {
	return s.append(key, field, value, -1)
}

func (s *Store) AppendIfLen(ctx context.Context, key itemstore.Key, field string, value any, length int) error {
	return s.append(key, field, value, length)
}

func (s *Store) append(key itemstore.Key, field string, value any, expectLen int) error {
	normalized, err := toValue(value)
	if err != nil {
		return itemstore.NewStoreError("append", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return itemstore.ErrItemNotFound
	}
	list, err := listField(item, field)
	if err != nil {
		return itemstore.NewStoreError("append", key, err)
	}
	if expectLen >= 0 && len(list) != expectLen {
		return itemstore.ErrConditionFailed
	}
	item[field] = append(list, normalized)
	return nil
}

func (s *Store) RemoveAt(ctx context.Context, key itemstore.Key, field string, index int, guard map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return itemstore.ErrItemNotFound
	}
	list, err := listField(item, field)
	if err != nil {
		return itemstore.NewStoreError("removeAt", key, err)
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
			want, err := toValue(v)
			if err != nil {
				return itemstore.NewStoreError("removeAt", key, err)
			}
			if !reflect.DeepEqual(elem[attr], want) {
				return itemstore.ErrConditionFailed
			}
		}
	}

	item[field] = append(list[:index:index], list[index+1:]...)
	return nil
}

func (s *Store) Increment(ctx context.Context, key itemstore.Key, field string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return itemstore.ErrItemNotFound
	}
	current := float64(0)
	if v, exists := item[field]; exists {
		n, ok := v.(float64)
		if !ok {
			return itemstore.NewStoreError("increment", key, fmt.Errorf("field %s is not numeric", field))
		}
		current = n
	}
	item[field] = current + float64(delta)
	return nil
}

func (s *Store) Delete(ctx context.Context, key itemstore.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil
	}
	delete(s.items, key)

	keys := s.order[key.Class]
	for i, k := range keys {
		if k == key {
			s.order[key.Class] = append(keys[:i:i], keys[i+1:]...)
			break
		}
	}
	return nil
}

func listField(item map[string]any, field string) ([]any, error) {
	v, exists := item[field]
	if !exists || v == nil {
		return []any{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %s is not a list", field)
	}
	return list, nil
}
