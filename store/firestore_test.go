package store

import (
	"errors"
	"testing"
	"time"

	"taskboard/model"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFirestoreNotFound(t *testing.T) {
	err := notFound(status.Error(codes.NotFound, "no document"))
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	denied := status.Error(codes.PermissionDenied, "missing permission")
	assert.Equal(t, denied, notFound(denied))
	assert.NotErrorIs(t, notFound(denied), model.ErrRecordNotFound)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, notFound(plain))
}

func TestFirestoreRejectsInvalidDocumentIDs(t *testing.T) {
	f := &FirestoreStore{collection: "Tasks"}

	for _, id := range []string{"", "a/b", "Tasks/p1"} {
		_, err := f.doc(id)
		assert.ErrorIs(t, err, model.ErrRecordNotFound, "id %q", id)
	}
}

func TestFirestorePropertyUpdates(t *testing.T) {
	updates := propertyUpdates(model.Properties{
		model.TitleProperty:  {Title: []model.RichText{{Text: &model.TextContent{Content: "New"}}}},
		model.StatusProperty: {Status: &model.StatusOption{Name: model.StatusResolved}},
	})

	require.Len(t, updates, 3)
	assert.Equal(t, firestore.FieldPath{"properties", model.StatusProperty}, updates[0].FieldPath)
	assert.Equal(t, firestore.FieldPath{"properties", model.TitleProperty}, updates[1].FieldPath)
	assert.Equal(t, model.StatusResolved, updates[0].Value.(model.Property).Status.Name)
	for _, u := range updates[:2] {
		assert.Empty(t, u.Path)
	}

	assert.Equal(t, "last_edited_time", updates[2].Path)
	assert.Equal(t, firestore.ServerTimestamp, updates[2].Value)
}

func TestFirestorePropertyUpdatesEmptyPatch(t *testing.T) {
	updates := propertyUpdates(model.Properties{})

	require.Len(t, updates, 1)
	assert.Equal(t, "last_edited_time", updates[0].Path)
}

func TestFirestoreRecordLayout(t *testing.T) {
	edited := time.Date(2024, 5, 2, 16, 15, 0, 250_000_000, time.FixedZone("CST", 8*3600))
	doc := firestoreRecord{
		Properties: model.Properties{
			model.TitleProperty: {Title: []model.RichText{{Text: &model.TextContent{Content: "Write report"}}}},
		},
		LastEditedTime: edited,
	}

	record := doc.record("p1", time.Time{})
	assert.Equal(t, "page", record.Object)
	assert.Equal(t, "p1", record.ID)
	assert.Equal(t, "2024-05-02T08:15:00.250Z", record.LastEditedTime)
	assert.True(t, record.HasProperties())

	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ref := firestoreRecord{}.record("ref", updated)
	assert.False(t, ref.HasProperties())
	assert.Equal(t, "2024-06-01T00:00:00.000Z", ref.LastEditedTime)
}
