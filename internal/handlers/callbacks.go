package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/contextkeys"
	"github.com/smolenkov/unarch-bot/internal/messages"
)

const fsubCheckPrefix = "fsub_check_"

func (bh *Handlers) HandleClickButton(ctx context.Context, b *bot.Bot, update *models.Update) {
	data, _ := contextkeys.GetCallbackData(ctx)
	if data == "" && update.CallbackQuery != nil {
		data = update.CallbackQuery.Data
	}
	data = strings.TrimSpace(data)

	if strings.HasPrefix(data, fsubCheckPrefix) {
		bh.handleSubscriptionRecheck(ctx, b, update, data)
		return
	}

	bh.answerCallback(ctx, b, update, "")
}

// handleSubscriptionRecheck runs the "I joined" button. Pressing it
// repeatedly is harmless: a confirmed member just gets the
// confirmation again.
func (bh *Handlers) handleSubscriptionRecheck(ctx context.Context, b *bot.Bot, update *models.Update, data string) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)

	userID, err := strconv.ParseInt(strings.TrimPrefix(data, fsubCheckPrefix), 10, 64)
	if err != nil || userID == 0 {
		userID = bh.getUserIDFromUpdate(update)
	}

	member, err := bh.gate.RecheckMembership(ctx, userID)
	if err != nil {
		log.Printf("Recheck membership for %d: %v", userID, err)
		bh.answerCallback(ctx, b, update, "")
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}

	if !member {
		bh.answerCallback(ctx, b, update, messages.StillNotSubscribed(lang))
		return
	}

	bh.answerCallback(ctx, b, update, "")

	if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
		msg := update.CallbackQuery.Message.Message
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      messages.SubscriptionConfirmed(lang),
			ParseMode: messages.ParseModeHTML,
		})
		if err == nil {
			return
		}
		log.Printf("Recheck: edit message chat=%d msg=%d: %v", msg.Chat.ID, msg.ID, err)
	}

	bh.sendText(ctx, b, chatID, messages.SubscriptionConfirmed(lang))
}
