package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/mailrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmail(receiver string, contents []string, embeddings [][]float32) *model.Email {
	email := &model.Email{Receiver: receiver, Content: contents[0]}
	for i, content := range contents {
		chunk := &model.Chunk{
			Receiver:    receiver,
			Content:     content,
			ChunkIndex:  i,
			TotalChunks: len(contents),
		}
		if embeddings != nil {
			chunk.Embedding = embeddings[i]
		}
		email.Chunks = append(email.Chunks, chunk)
	}
	return email
}

func TestEmailsNewEmailsDBHandler(t *testing.T) {
	t.Run("Invalid call NewEmailsDBHandler with nil database", func(t *testing.T) {
		_, err := NewEmailsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating EmailsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})

	t.Run("Valid call NewEmailsDBHandler", func(t *testing.T) {
		db := initDB(t)
		emailsDbHandler, err := NewEmailsDBHandler(db, true)
		assert.NoError(t, err, "Expected NewEmailsDBHandler to not return an error")
		require.NotNil(t, emailsDbHandler, "Expected NewEmailsDBHandler to return a non-nil instance")
		require.NotNil(t, emailsDbHandler.db.Instance, "Expected NewEmailsDBHandler to have a non-nil database connection instance")
	})
}

func TestEmailsInsert(t *testing.T) {
	emailsDbHandler, _ := initHandlers(t)
	ctx := context.Background()

	t.Run("Insert email with chunks", func(t *testing.T) {
		email := testEmail("Yaalini", []string{"Hi Yaalini.", "I hope this finds you well."}, [][]float32{{1, 0, 0}, {0, 1, 0}})
		email.Metadata = model.Metadata{"source": "test"}

		err := emailsDbHandler.InsertEmail(ctx, email)
		require.NoError(t, err, "Expected InsertEmail to not return an error")

		assert.Equal(t, int64(1), email.ID, "Expected the first email id to be 1")
		assert.NotEqual(t, uuid.Nil, email.RID, "Expected inserted email to have a RID")
		assert.WithinDuration(t, time.Now(), email.CreatedAt, 5*time.Second, "Expected CreatedAt to be set")
		for _, chunk := range email.Chunks {
			assert.NotZero(t, chunk.ID, "Expected chunk id to be set")
			assert.Equal(t, email.ID, chunk.EmailID)
		}
		assert.Less(t, email.Chunks[0].ID, email.Chunks[1].ID, "Expected chunk ids to increase")
	})

	t.Run("Insert email without embeddings", func(t *testing.T) {
		email := testEmail("Rajesh", []string{"Plain text only."}, nil)

		err := emailsDbHandler.InsertEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, int64(2), email.ID)
	})

	t.Run("Failing chunk rolls back the email", func(t *testing.T) {
		before, err := emailsDbHandler.CountEmails(ctx)
		require.NoError(t, err)

		email := testEmail("Rajesh", []string{"ok", "bad"}, [][]float32{{1, 0, 0}, {1, 0}})
		err = emailsDbHandler.InsertEmail(ctx, email)
		require.Error(t, err, "Expected a dimension mismatch to fail")
		assert.Contains(t, err.Error(), "insert chunk 1")

		after, err := emailsDbHandler.CountEmails(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after, "Expected no partial write")
	})
}

func TestEmailsSelect(t *testing.T) {
	emailsDbHandler, _ := initHandlers(t)
	ctx := context.Background()

	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("Yaalini", []string{"first a", "first b"}, nil)))
	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("Rajesh", []string{"other"}, nil)))
	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("YAALINI", []string{"second"}, [][]float32{{0, 0, 1}})))

	t.Run("Select by receiver ignores case", func(t *testing.T) {
		emails, err := emailsDbHandler.SelectEmailsByReceiver(ctx, "yaalini")
		require.NoError(t, err)
		require.Len(t, emails, 2)

		assert.Equal(t, "Yaalini", emails[0].Receiver)
		require.Len(t, emails[0].Chunks, 2)
		assert.Equal(t, "first a", emails[0].Chunks[0].Content, "Expected chunks in position order")
		assert.Equal(t, "first b", emails[0].Chunks[1].Content)
		assert.Nil(t, emails[0].Chunks[0].Embedding)

		assert.Equal(t, "YAALINI", emails[1].Receiver)
		assert.Equal(t, []float32{0, 0, 1}, emails[1].Chunks[0].Embedding, "Expected embedding to be read back")
	})

	t.Run("Select by partial receiver is empty", func(t *testing.T) {
		emails, err := emailsDbHandler.SelectEmailsByReceiver(ctx, "Yaal")
		require.NoError(t, err)
		assert.NotNil(t, emails)
		assert.Empty(t, emails)
	})

	t.Run("Select all in insertion order", func(t *testing.T) {
		emails, err := emailsDbHandler.SelectAllEmails(ctx)
		require.NoError(t, err)
		require.Len(t, emails, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{emails[0].ID, emails[1].ID, emails[2].ID})
	})

	t.Run("Count", func(t *testing.T) {
		count, err := emailsDbHandler.CountEmails(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestEmailsDeleteAll(t *testing.T) {
	emailsDbHandler, chunksDbHandler := initHandlers(t)
	ctx := context.Background()

	require.NoError(t, emailsDbHandler.InsertEmail(ctx, testEmail("Rajesh", []string{"a", "b"}, [][]float32{{1, 0, 0}, {0, 1, 0}})))

	err := emailsDbHandler.DeleteAllEmails(ctx)
	require.NoError(t, err)

	count, err := emailsDbHandler.CountEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	hits, err := chunksDbHandler.SelectChunksBySimilarity(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "Expected chunks to be removed with their emails")

	email := testEmail("Rajesh", []string{"c"}, nil)
	require.NoError(t, emailsDbHandler.InsertEmail(ctx, email))
	assert.Equal(t, int64(1), email.ID, "Expected ids to restart after clear")
	assert.Equal(t, int64(1), email.Chunks[0].ID)
}
