package docstore

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Query results follow insertion order.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	docs  map[string]Fields
	order []string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

func (m *Memory) collection(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]Fields)}
		m.collections[name] = c
	}
	return c
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return Document{}, ErrNotFound
	}
	fields, ok := c.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

// Create implements Store.
func (m *Memory) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.insert(collection, id, fields)
	return id, nil
}

func (m *Memory) insert(collection, id string, fields Fields) {
	c := m.collection(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = cloneFields(fields)
}

// lookup returns a copy of the document's fields and its position in
// store order.
func (m *Memory) lookup(collection, id string) (Fields, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil, 0, false
	}
	fields, ok := c.docs[id]
	if !ok {
		return nil, 0, false
	}
	return cloneFields(fields), slices.Index(c.order, id), true
}

// restore puts fields back under id at position pos of the store order.
// A document that still exists keeps its position.
func (m *Memory) restore(collection, id string, fields Fields, pos int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, exists := c.docs[id]; !exists {
		pos = min(max(pos, 0), len(c.order))
		c.order = slices.Insert(c.order, pos, id)
	}
	c.docs[id] = cloneFields(fields)
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	existing, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Query implements Store.
func (m *Memory) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkFields(filters); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Document
	c, ok := m.collections[collection]
	if !ok {
		return result, nil
	}
	for _, id := range c.order {
		fields := c.docs[id]
		if matches(fields, filters) {
			result = append(result, Document{ID: id, Fields: cloneFields(fields)})
		}
	}
	return result, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

// snapshot returns every document grouped by collection, in store order.
func (m *Memory) snapshot() map[string][]Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]Document, len(m.collections))
	for name, c := range m.collections {
		docs := make([]Document, 0, len(c.order))
		for _, id := range c.order {
			docs = append(docs, Document{ID: id, Fields: cloneFields(c.docs[id])})
		}
		out[name] = docs
	}
	return out
}
