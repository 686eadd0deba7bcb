package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/nutricoach/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLog(t *testing.T) *Log {
	l, err := Open(":memory:")
	require.NoError(t, err, "Expected Open to not return an error")
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("Recorded entry is returned", func(t *testing.T) {
		l := openLog(t)
		entry := NewEntry(
			model.Query{Query: "Is this safe for kids?", ParentQuery: "Is aspartame safe?"},
			model.Trace{Anchor: "Is aspartame safe?", Retrieved: []string{"Aspartame", "Sucralose"}, Outcome: model.OutcomeAnswered},
		)

		require.NoError(t, l.Record(ctx, entry))

		entries, err := l.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entry.ID, entries[0].ID)
		assert.Equal(t, "Is this safe for kids?", entries[0].Query)
		assert.Equal(t, "Is aspartame safe?", entries[0].ParentQuery)
		assert.Equal(t, []string{"Aspartame", "Sucralose"}, entries[0].Retrieved)
		assert.Equal(t, model.OutcomeAnswered, entries[0].Outcome)
		assert.WithinDuration(t, entry.CreatedAt, entries[0].CreatedAt, time.Millisecond)
	})

	t.Run("Missing fields are filled in", func(t *testing.T) {
		l := openLog(t)

		require.NoError(t, l.Record(ctx, Entry{Query: "", Outcome: model.OutcomeLimitedInformation}))

		entries, err := l.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotEqual(t, uuid.Nil, entries[0].ID)
		assert.Empty(t, entries[0].Retrieved)
		assert.Empty(t, entries[0].ParentQuery)
		assert.False(t, entries[0].CreatedAt.IsZero())
	})

	t.Run("Newest first and limited", func(t *testing.T) {
		l := openLog(t)
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		for i, query := range []string{"first", "second", "third"} {
			require.NoError(t, l.Record(ctx, Entry{Query: query, Outcome: model.OutcomeAnswered, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
		}

		entries, err := l.Recent(ctx, 2)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "third", entries[0].Query)
		assert.Equal(t, "second", entries[1].Query)
	})

	t.Run("Failures keep their error", func(t *testing.T) {
		l := openLog(t)

		require.NoError(t, l.Record(ctx, Entry{Query: "q", Outcome: model.OutcomeFailure, Error: "invalid api key"}))

		entries, err := l.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "invalid api key", entries[0].Error)
	})

	t.Run("Duplicate id is rejected", func(t *testing.T) {
		l := openLog(t)
		entry := Entry{ID: uuid.New(), Query: "q", Outcome: model.OutcomeAnswered}

		require.NoError(t, l.Record(ctx, entry))
		assert.Error(t, l.Record(ctx, entry))
	})
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.db")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), Entry{Query: "q", Outcome: model.OutcomeAnswered}))
	require.NoError(t, l.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "Expected entries to survive reopening")
}
