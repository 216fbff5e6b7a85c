package database

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

type document = map[string]any

// MemoryStore keeps collections in process. It backs the test suite and
// STORE_DRIVER=memory local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]document
	unique      []UniqueIndex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]document)}
}

func (s *MemoryStore) FindOne(_ context.Context, collection string, filter Filter, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, filter)
		if err != nil {
			return err
		}
		if ok {
			return decode(doc, out)
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Find(_ context.Context, collection string, filter Filter, opts FindOptions, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make([]document, 0)
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, filter)
		if err != nil {
			return err
		}
		if ok {
			found = append(found, doc)
		}
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(found, func(i, j int) bool {
			for _, f := range opts.Sort {
				c := compareValues(found[i][f.Field], found[j][f.Field])
				if c == 0 {
					continue
				}
				if f.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(found)) {
			found = found[:0]
		} else {
			found = found[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(found)) {
		found = found[:opts.Limit]
	}
	return decode(found, out)
}

func (s *MemoryStore) Count(_ context.Context, collection string, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, doc := range s.collections[collection] {
		ok, err := matches(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) InsertOne(_ context.Context, collection string, doc any) (string, error) {
	var d document
	if err := normalize(doc, &d); err != nil {
		return "", err
	}
	id, _ := d["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		d["_id"] = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.collections[collection] {
		if existing["_id"] == id {
			return "", ErrDuplicate
		}
		if s.violatesUnique(collection, existing, d) {
			return "", ErrDuplicate
		}
	}
	s.collections[collection] = append(s.collections[collection], d)
	return id, nil
}

func (s *MemoryStore) UpdateOne(_ context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	var set document
	if len(update.Set) > 0 {
		if err := normalize(update.Set, &set); err != nil {
			return UpdateResult{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, doc := range docs {
		ok, err := matches(doc, filter)
		if err != nil {
			return UpdateResult{}, err
		}
		if !ok {
			continue
		}

		next := make(document, len(doc)+len(set))
		for k, v := range doc {
			next[k] = v
		}
		for k, v := range set {
			next[k] = v
		}
		for _, k := range update.Unset {
			delete(next, k)
		}
		next["_id"] = doc["_id"]

		if reflect.DeepEqual(doc, next) {
			return UpdateResult{Matched: 1}, nil
		}
		for j, other := range docs {
			if j != i && s.violatesUnique(collection, other, next) {
				return UpdateResult{}, ErrDuplicate
			}
		}
		docs[i] = next
		return UpdateResult{Matched: 1, Modified: 1}, nil
	}
	return UpdateResult{}, nil
}

func (s *MemoryStore) DeleteOne(_ context.Context, collection string, filter Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	for i, doc := range docs {
		ok, err := matches(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) EnsureIndexes(_ context.Context, indexes []UniqueIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique = append(s.unique[:0], indexes...)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }

func (s *MemoryStore) violatesUnique(collection string, a, b document) bool {
	for _, idx := range s.unique {
		if idx.Collection != collection {
			continue
		}
		av, aok := a[idx.Field]
		bv, bok := b[idx.Field]
		if aok && bok && reflect.DeepEqual(av, bv) {
			return true
		}
	}
	return false
}

func matches(doc document, filter Filter) (bool, error) {
	for field, want := range filter {
		if field == OrKey {
			branches, err := orBranches(want)
			if err != nil {
				return false, err
			}
			hit := false
			for _, b := range branches {
				ok, err := matches(doc, b)
				if err != nil {
					return false, err
				}
				if ok {
					hit = true
					break
				}
			}
			if !hit {
				return false, nil
			}
			continue
		}
		if err := checkField(field); err != nil {
			return false, err
		}

		got, present := doc[field]
		switch w := want.(type) {
		case NotEqual:
			v, err := normalizeValue(w.Value)
			if err != nil {
				return false, err
			}
			if present && reflect.DeepEqual(got, v) {
				return false, nil
			}
		case Contains:
			s, ok := got.(string)
			if !ok || !strings.Contains(strings.ToLower(s), strings.ToLower(w.Text)) {
				return false, nil
			}
		default:
			v, err := normalizeValue(want)
			if err != nil {
				return false, err
			}
			if !present || !reflect.DeepEqual(got, v) {
				return false, nil
			}
		}
	}
	return true, nil
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			// Stored timestamps drop trailing zeros from the fraction, so
			// "05.1Z" must not sort after "05.12Z".
			if at, aerr := time.Parse(time.RFC3339Nano, av); aerr == nil {
				if bt, berr := time.Parse(time.RFC3339Nano, bv); berr == nil {
					return at.Compare(bt)
				}
			}
			return strings.Compare(av, bv)
		}
	}
	// Absent values sort first, like a document store does.
	switch {
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func normalize(in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func normalizeValue(v any) (any, error) {
	var out any
	if err := normalize(v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(in any, out any) error {
	return normalize(in, out)
}
