package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolenkov/unarch-bot/internal/contextkeys"
)

func messageTypeOf(t *testing.T, ctx context.Context) contextkeys.MessageType {
	t.Helper()
	mt, ok := contextkeys.GetMessageType(ctx)
	require.True(t, ok)
	return mt
}

func TestClassifyCommand(t *testing.T) {
	ctx := classify(context.Background(), &models.Update{
		Message: &models.Message{Text: "/start"},
	})
	assert.Equal(t, contextkeys.MessageTypeCommand, messageTypeOf(t, ctx))
}

func TestClassifyArchiveDocument(t *testing.T) {
	ctx := classify(context.Background(), &models.Update{
		Message: &models.Message{
			Document: &models.Document{FileID: "f1", FileName: "backup.tar.gz", FileSize: 2048},
		},
	})
	require.Equal(t, contextkeys.MessageTypeDocument, messageTypeOf(t, ctx))

	info, ok := contextkeys.GetDocumentInfo(ctx)
	require.True(t, ok)
	assert.Equal(t, "f1", info.FileID)
	assert.Equal(t, "backup.tar.gz", info.FileName)
}

func TestClassifyNonArchiveDocument(t *testing.T) {
	ctx := classify(context.Background(), &models.Update{
		Message: &models.Message{
			Document: &models.Document{FileID: "f2", FileName: "notes.pdf"},
		},
	})
	assert.Equal(t, contextkeys.MessageTypeText, messageTypeOf(t, ctx))

	_, ok := contextkeys.GetDocumentInfo(ctx)
	assert.True(t, ok, "document info kept for the merge flow")
}

func TestClassifyArchiveURL(t *testing.T) {
	ctx := classify(context.Background(), &models.Update{
		Message: &models.Message{Text: "grab this https://files.example.com/dump.zip please"},
	})
	require.Equal(t, contextkeys.MessageTypeArchiveURL, messageTypeOf(t, ctx))

	url, ok := contextkeys.GetArchiveURL(ctx)
	require.True(t, ok)
	assert.Equal(t, "https://files.example.com/dump.zip", url)
}

func TestClassifyPlainText(t *testing.T) {
	ctx := classify(context.Background(), &models.Update{
		Message: &models.Message{Text: "hello there"},
	})
	assert.Equal(t, contextkeys.MessageTypeText, messageTypeOf(t, ctx))
}

func TestClassifyCallback(t *testing.T) {
	ctx := classify(context.Background(), &models.Update{
		CallbackQuery: &models.CallbackQuery{Data: "fsub_check_42"},
	})
	require.Equal(t, contextkeys.MessageTypeClickButton, messageTypeOf(t, ctx))

	data, ok := contextkeys.GetCallbackData(ctx)
	require.True(t, ok)
	assert.Equal(t, "fsub_check_42", data)
}
