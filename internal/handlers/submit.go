package handlers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/contextkeys"
	"github.com/smolenkov/unarch-bot/internal/gate"
	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/internal/messages"
	"github.com/smolenkov/unarch-bot/types"
)

func (bh *Handlers) HandleDocument(ctx context.Context, b *bot.Bot, update *models.Update) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)
	userID := bh.getUserIDFromUpdate(update)

	info, ok := contextkeys.GetDocumentInfo(ctx)
	if !ok || info.FileID == "" {
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	// An open merge task collects parts instead of starting a new job.
	task, err := bh.tasks.GetOngoingTask(ctx, userID)
	if err != nil {
		log.Printf("Document: get ongoing task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}
	if task != nil && task.Kind == types.TaskMerge && task.FileID == "" {
		bh.addMergePart(ctx, b, chatID, lang, task, info)
		return
	}

	bh.submit(ctx, b, update, &types.OngoingTask{
		UserID:   userID,
		ChatID:   chatID,
		Kind:     types.TaskExtract,
		FileID:   info.FileID,
		FileName: info.FileName,
		Lang:     string(lang),
	})
}

func (bh *Handlers) HandleArchiveURL(ctx context.Context, b *bot.Bot, update *models.Update) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)
	userID := bh.getUserIDFromUpdate(update)

	rawURL, ok := contextkeys.GetArchiveURL(ctx)
	if !ok || rawURL == "" {
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	bh.submit(ctx, b, update, &types.OngoingTask{
		UserID:   userID,
		ChatID:   chatID,
		Kind:     types.TaskExtract,
		URL:      rawURL,
		FileName: fileNameFromURL(rawURL),
		Lang:     string(lang),
	})
}

// submit runs the access gate and, when allowed, registers the task
// and hands it to the worker pool.
func (bh *Handlers) submit(ctx context.Context, b *bot.Bot, update *models.Update, task *types.OngoingTask) {
	lang := i18n.Parse(task.Lang)

	kind := gate.CommandExtract
	if task.Kind == types.TaskMerge {
		kind = gate.CommandMerge
	}

	decision := bh.gate.Evaluate(ctx, gate.Request{
		UserID:  task.UserID,
		IsOwner: bh.isOwner(task.UserID),
		Kind:    kind,
		Now:     time.Now(),
	})

	if !decision.Allowed() {
		bh.renderDenial(ctx, b, task.ChatID, task.UserID, lang, decision)
		return
	}

	if err := bh.tasks.AddOngoingTask(ctx, task); err != nil {
		log.Printf("Submit: register task for %d: %v", task.UserID, err)
		bh.sendText(ctx, b, task.ChatID, messages.ErrorDefault(lang))
		return
	}

	bh.enqueueRegistered(ctx, b, task, lang)
}

func (bh *Handlers) enqueueRegistered(ctx context.Context, b *bot.Bot, task *types.OngoingTask, lang i18n.Lang) {
	status, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    task.ChatID,
		Text:      messages.ExtractStarted(lang, task.FileName),
		ParseMode: messages.ParseModeHTML,
	})
	messageID := 0
	if err == nil && status != nil {
		messageID = status.ID
	}

	position := bh.runner.Enqueue(task.UserID, task.ChatID, messageID, task.FileName, lang)
	if position > 0 && messageID != 0 {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    task.ChatID,
			MessageID: messageID,
			Text:      messages.ExtractQueued(lang, task.FileName, position),
			ParseMode: messages.ParseModeHTML,
		})
		if err != nil {
			log.Printf("Submit: edit queue message chat=%d msg=%d: %v", task.ChatID, messageID, err)
		}
	}
}

func (bh *Handlers) renderDenial(ctx context.Context, b *bot.Bot, chatID, userID int64, lang i18n.Lang, decision gate.Decision) {
	if decision.Outcome == gate.OutcomeCheckFailed {
		log.Printf("Gate check %q failed for user %d: %v", decision.FailedCheck, userID, decision.Err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}

	switch decision.Reason {
	case gate.ReasonBanned:
		// Banned users get no feedback at all.
	case gate.ReasonMaintenance:
		bh.sendText(ctx, b, chatID, messages.MaintenanceOn(lang))
	case gate.ReasonAtCapacity:
		bh.sendText(ctx, b, chatID, messages.MaxTasksReached(lang))
	case gate.ReasonAlreadyRunning:
		bh.sendText(ctx, b, chatID, messages.AlreadyRunning(lang))
	case gate.ReasonNotSubscribed:
		bh.sendSubscribePrompt(ctx, b, chatID, userID, lang)
	case gate.ReasonRateLimited:
		bh.sendRateLimited(ctx, b, chatID, lang, decision.RemainingSeconds)
	default:
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
	}
}

func (bh *Handlers) sendRateLimited(ctx context.Context, b *bot.Bot, chatID int64, lang i18n.Lang, remaining int) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      messages.RateLimited(lang, remaining),
		ParseMode: messages.ParseModeHTML,
	}
	if owner := strings.TrimSpace(bh.cfg.OwnerUsername); owner != "" {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: messages.BtnBuyVip(lang), URL: "https://t.me/" + owner},
			}},
		}
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.Printf("Failed to send rate-limit notice to chat %d: %v", chatID, err)
	}
}

func (bh *Handlers) sendSubscribePrompt(ctx context.Context, b *bot.Bot, chatID, userID int64, lang i18n.Lang) {
	rows := [][]models.InlineKeyboardButton{}
	if bh.cfg.ChannelURL != "" {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: messages.BtnJoinChannel(lang), URL: bh.cfg.ChannelURL},
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{
		{Text: messages.BtnIJoined(lang), CallbackData: fmt.Sprintf("fsub_check_%d", userID)},
	})

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        messages.NotSubscribed(lang),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	if err != nil {
		log.Printf("Failed to send subscribe prompt to chat %d: %v", chatID, err)
	}
}

func fileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "archive"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "archive"
	}
	return strings.TrimSpace(name)
}
