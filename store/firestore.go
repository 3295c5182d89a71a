package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"taskboard/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreRecord is the document layout of a task record.
type firestoreRecord struct {
	Properties     model.Properties `firestore:"properties,omitempty"`
	LastEditedTime time.Time        `firestore:"last_edited_time,omitempty"`
	CreatedTime    time.Time        `firestore:"created_time,omitempty"`
}

// FirestoreStore keeps records as documents of a collection. The collection
// plays the role of the database: Query and Create take it as databaseID,
// Retrieve and Update address documents of the configured collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

func NewFirestoreStore(client *firestore.Client, collection string, logger *slog.Logger) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: collection,
		logger:     logger,
	}
}

func (f *FirestoreStore) Query(ctx context.Context, databaseID string, sorts []model.Sort) ([]model.Record, error) {
	q := f.client.Collection(databaseID).Query
	for _, s := range sorts {
		if s.Timestamp != model.TimestampLastEdited {
			continue
		}
		dir := firestore.Asc
		if s.Direction == model.SortDescending {
			dir = firestore.Desc
		}
		q = q.OrderBy("last_edited_time", dir)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var records []model.Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		record, err := toRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (f *FirestoreStore) Retrieve(ctx context.Context, id string) (model.Record, error) {
	ref, err := f.doc(id)
	if err != nil {
		return model.Record{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return model.Record{}, notFound(err)
	}
	return toRecord(snap)
}

func (f *FirestoreStore) Create(ctx context.Context, databaseID string, properties model.Properties) (model.Record, error) {
	ref := f.client.Collection(databaseID).Doc(uuid.New().String())
	_, err := ref.Create(ctx, map[string]interface{}{
		"properties":       properties,
		"last_edited_time": firestore.ServerTimestamp,
		"created_time":     firestore.ServerTimestamp,
	})
	if err != nil {
		return model.Record{}, err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return model.Record{}, err
	}
	return toRecord(snap)
}

// Update writes only the patched properties, each one replaced as a whole.
func (f *FirestoreStore) Update(ctx context.Context, id string, properties model.Properties) (model.Record, error) {
	ref, err := f.doc(id)
	if err != nil {
		return model.Record{}, err
	}

	if _, err := ref.Update(ctx, propertyUpdates(properties)); err != nil {
		return model.Record{}, notFound(err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return model.Record{}, notFound(err)
	}
	return toRecord(snap)
}

func (f *FirestoreStore) doc(id string) (*firestore.DocumentRef, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("%w: invalid document id %q", model.ErrRecordNotFound, id)
	}
	ref := f.client.Collection(f.collection).Doc(id)
	if ref == nil {
		return nil, fmt.Errorf("%w: invalid document id %q", model.ErrRecordNotFound, id)
	}
	return ref, nil
}

func notFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", model.ErrRecordNotFound, err)
	}
	return err
}

// propertyUpdates addresses each patched property by its own field path so
// sibling properties in the document stay untouched.
func propertyUpdates(properties model.Properties) []firestore.Update {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := make([]firestore.Update, 0, len(names)+1)
	for _, name := range names {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"properties", name}, Value: properties[name]})
	}
	return append(updates, firestore.Update{Path: "last_edited_time", Value: firestore.ServerTimestamp})
}

func toRecord(snap *firestore.DocumentSnapshot) (model.Record, error) {
	var doc firestoreRecord
	if err := snap.DataTo(&doc); err != nil {
		return model.Record{}, fmt.Errorf("failed to parse record %s: %w", snap.Ref.ID, err)
	}
	return doc.record(snap.Ref.ID, snap.UpdateTime), nil
}

// record falls back to the document update time for documents written
// without last_edited_time.
func (doc firestoreRecord) record(id string, updated time.Time) model.Record {
	edited := doc.LastEditedTime
	if edited.IsZero() {
		edited = updated
	}
	return model.Record{
		Object:         "page",
		ID:             id,
		LastEditedTime: edited.UTC().Format(TimestampLayout),
		Properties:     doc.Properties,
	}
}
