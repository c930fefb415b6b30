package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is a Store backed by Cloud Firestore. Document ids are
// generated by Firestore.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore connects to the given project. Set FIRESTORE_EMULATOR_HOST
// to target a local emulator.
func NewFirestore(ctx context.Context, projectID string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("while creating firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

// Get implements Store.
func (s *Firestore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("while getting %s/%s: %w", collection, id, err)
	}
	return Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

// Create implements Store.
func (s *Firestore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, map[string]any(cloneFields(fields))); err != nil {
		return "", fmt.Errorf("while creating in %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Update implements Store.
func (s *Firestore) Update(ctx context.Context, collection, id string, fields Fields) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: fields[k]})
	}
	if len(updates) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("while updating %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete implements Store.
func (s *Firestore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query implements Store. Results are ordered by document id.
func (s *Firestore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := checkFields(filters); err != nil {
		return nil, err
	}

	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while querying %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

// Close implements Store.
func (s *Firestore) Close() error {
	return s.client.Close()
}
