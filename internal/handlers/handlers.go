package handlers

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/config"
	"github.com/smolenkov/unarch-bot/internal/contextkeys"
	"github.com/smolenkov/unarch-bot/internal/gate"
	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/internal/messages"
	"github.com/smolenkov/unarch-bot/types"
)

// TaskEnqueuer is the slice of the worker pool the handlers need.
type TaskEnqueuer interface {
	Enqueue(userID, chatID int64, messageID int, fileName string, lang i18n.Lang) int
	Dequeue(userID int64) bool
	Running(userID int64) bool
}

type Handlers struct {
	users       types.UserStore
	vips        types.VipStore
	tasks       types.TaskStore
	maintenance types.MaintenanceStore
	gate        *gate.Gate
	runner      TaskEnqueuer
	cfg         *config.Config
}

func NewHandlers(
	users types.UserStore,
	vips types.VipStore,
	tasks types.TaskStore,
	maintenance types.MaintenanceStore,
	g *gate.Gate,
	runner TaskEnqueuer,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		users:       users,
		vips:        vips,
		tasks:       tasks,
		maintenance: maintenance,
		gate:        g,
		runner:      runner,
		cfg:         cfg,
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := bh.getChatIDFromUpdate(update)
	messageType, _ := contextkeys.GetMessageType(ctx)
	lang := langFromCtx(ctx)

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, b, update)
	case contextkeys.MessageTypeDocument:
		bh.HandleDocument(ctx, b, update)
	case contextkeys.MessageTypeArchiveURL:
		bh.HandleArchiveURL(ctx, b, update)
	case contextkeys.MessageTypeClickButton:
		bh.HandleClickButton(ctx, b, update)
	case contextkeys.MessageTypeText:
		// A non-archive document still lands here; in merge mode it is
		// a refused part, otherwise just an unsupported message.
		if info, ok := contextkeys.GetDocumentInfo(ctx); ok {
			bh.handleNonArchiveDocument(ctx, b, update, info)
			return
		}
		bh.sendText(ctx, b, chatID, messages.ErrorUnsupportedMessageType(lang))
	default:
		if chatID != 0 {
			bh.sendText(ctx, b, chatID, messages.ErrorUnsupportedMessageType(lang))
		}
	}
}

func (bh *Handlers) getChatIDFromUpdate(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.InaccessibleMessage != nil:
		return update.CallbackQuery.Message.InaccessibleMessage.Chat.ID
	default:
		return 0
	}
}

func (bh *Handlers) getUserIDFromUpdate(update *models.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID
	default:
		return 0
	}
}

func (bh *Handlers) isOwner(userID int64) bool {
	return userID != 0 && userID == bh.cfg.BotOwner
}

func langFromCtx(ctx context.Context) i18n.Lang {
	if v, ok := contextkeys.GetLang(ctx); ok {
		return i18n.Parse(v)
	}
	return i18n.EN
}

func (bh *Handlers) sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if chatID == 0 || text == "" {
		return
	}
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (bh *Handlers) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if update.CallbackQuery == nil {
		return
	}
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
	if err != nil {
		log.Printf("Failed to answer callback query: %v", err)
	}
}
