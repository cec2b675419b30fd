package middleware

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/contextkeys"
	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/internal/unpack"
	"github.com/smolenkov/unarch-bot/types"
)

var archiveURLPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s]+\.(zip|rar|7z|tar|gz|tgz|bz2|xz|iso)(\?[^\s]*)?\b`)

type Middlewares struct {
	users types.UserStore
}

func NewMiddlewares(users types.UserStore) *Middlewares {
	return &Middlewares{users: users}
}

// RegisterUserMiddleware upserts the sender on every private message
// so that broadcast and stats always see the full user set, and puts
// the preferred language into the context.
func (m *Middlewares) RegisterUserMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		from, chatID := senderOf(update)
		if from == nil {
			next(ctx, b, update)
			return
		}

		// Regional codes like ru-RU collapse to a supported language
		// before they are stored or used.
		lang := string(i18n.FromLanguageCode(from.LanguageCode))
		if stored, err := m.users.GetUser(ctx, from.ID); err != nil {
			log.Printf("middleware: get user %d: %v", from.ID, err)
		} else if stored != nil && stored.Lang != "" {
			lang = stored.Lang
		}

		err := m.users.UpsertUser(ctx, types.User{
			UserID:   from.ID,
			ChatID:   chatID,
			Username: from.Username,
			Lang:     lang,
		})
		if err != nil {
			log.Printf("middleware: upsert user %d: %v", from.ID, err)
		}

		next(contextkeys.WithLang(ctx, lang), b, update)
	}
}

// AnalyzeMessageMiddleware classifies the update so the handler can
// dispatch without re-inspecting the message.
func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		next(classify(ctx, update), b, update)
	}
}

func classify(ctx context.Context, update *models.Update) context.Context {
	if update.CallbackQuery != nil && update.CallbackQuery.Data != "" {
		ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeClickButton)
		return contextkeys.WithCallbackData(ctx, update.CallbackQuery.Data)
	}

	msg := update.Message
	if msg == nil {
		return contextkeys.WithMessageType(ctx, contextkeys.MessageTypeUnknown)
	}

	if msg.Text != "" && strings.HasPrefix(msg.Text, "/") {
		return contextkeys.WithMessageType(ctx, contextkeys.MessageTypeCommand)
	}

	if msg.Document != nil {
		info := &contextkeys.DocumentInfo{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			FileSize: msg.Document.FileSize,
		}
		if unpack.IsArchiveName(info.FileName) {
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeDocument)
			return contextkeys.WithDocumentInfo(ctx, info)
		}
		// Non-archive documents still reach the handler for the merge
		// flow refusal message.
		ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeText)
		return contextkeys.WithDocumentInfo(ctx, info)
	}

	if msg.Text != "" {
		if url := archiveURLPattern.FindString(msg.Text); url != "" {
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeArchiveURL)
			return contextkeys.WithArchiveURL(ctx, url)
		}
		return contextkeys.WithMessageType(ctx, contextkeys.MessageTypeText)
	}

	return contextkeys.WithMessageType(ctx, contextkeys.MessageTypeUnknown)
}

func senderOf(update *models.Update) (*models.User, int64) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From, update.Message.Chat.ID
	case update.CallbackQuery != nil:
		chatID := int64(0)
		if update.CallbackQuery.Message.Message != nil {
			chatID = update.CallbackQuery.Message.Message.Chat.ID
		} else if update.CallbackQuery.Message.InaccessibleMessage != nil {
			chatID = update.CallbackQuery.Message.InaccessibleMessage.Chat.ID
		}
		return &update.CallbackQuery.From, chatID
	default:
		return nil, 0
	}
}
