package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"taskboard/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmulatorStore connects to the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST and uses a fresh collection per test.
func newEmulatorStore(t *testing.T) (*FirestoreStore, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	client, err := firestore.NewClient(context.Background(), "taskboard-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFirestoreStore(client, "tasks-"+uuid.NewString(), logger), client
}

func TestFirestoreEmulatorRoundTrip(t *testing.T) {
	f, _ := newEmulatorStore(t)
	ctx := context.Background()

	first, err := f.Create(ctx, f.collection, model.Properties{
		model.TitleProperty:  {Type: model.TitlePropertyType, Title: []model.RichText{{Text: &model.TextContent{Content: "First"}}}},
		model.StatusProperty: {Type: model.StatusPropertyType, Status: &model.StatusOption{Name: model.StatusPending}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	_, err = time.Parse(TimestampLayout, first.LastEditedTime)
	require.NoError(t, err)

	second, err := f.Create(ctx, f.collection, model.Properties{
		model.TitleProperty: {Type: model.TitlePropertyType, Title: []model.RichText{{Text: &model.TextContent{Content: "Second"}}}},
	})
	require.NoError(t, err)

	updated, err := f.Update(ctx, first.ID, model.Properties{
		model.StatusProperty: {Status: &model.StatusOption{Name: model.StatusResolved}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, updated.Properties[model.StatusProperty].Status.Name)
	assert.Equal(t, "First", updated.Properties[model.TitleProperty].Title[0].Text.Content)

	got, err := f.Retrieve(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	records, err := f.Query(ctx, f.collection, []model.Sort{{Timestamp: model.TimestampLastEdited, Direction: model.SortDescending}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
}

func TestFirestoreEmulatorReferenceOnlyAndMissing(t *testing.T) {
	f, client := newEmulatorStore(t)
	ctx := context.Background()

	_, err := client.Collection(f.collection).Doc("ref").Set(ctx, map[string]interface{}{
		"last_edited_time": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	ref, err := f.Retrieve(ctx, "ref")
	require.NoError(t, err)
	assert.False(t, ref.HasProperties())
	assert.Equal(t, "2024-01-01T00:00:00.000Z", ref.LastEditedTime)

	_, err = f.Retrieve(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	_, err = f.Update(ctx, "missing", model.Properties{
		model.StatusProperty: {Status: &model.StatusOption{Name: model.StatusPlanned}},
	})
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}
