package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/contextkeys"
	"github.com/smolenkov/unarch-bot/internal/gate"
	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/internal/messages"
	"github.com/smolenkov/unarch-bot/internal/unpack"
	"github.com/smolenkov/unarch-bot/types"
)

// mergeCollecting reports whether the task is a merge job still
// receiving parts. A sealed merge task has its start volume set.
func mergeCollecting(task *types.OngoingTask) bool {
	return task != nil && task.Kind == types.TaskMerge && task.FileID == ""
}

func (bh *Handlers) cmdMerge(ctx context.Context, b *bot.Bot, update *models.Update) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)
	userID := bh.getUserIDFromUpdate(update)

	decision := bh.gate.Evaluate(ctx, gate.Request{
		UserID:  userID,
		IsOwner: bh.isOwner(userID),
		Kind:    gate.CommandMerge,
		Now:     time.Now(),
	})
	if !decision.Allowed() {
		bh.renderDenial(ctx, b, chatID, userID, lang, decision)
		return
	}

	task := &types.OngoingTask{
		UserID: userID,
		ChatID: chatID,
		Kind:   types.TaskMerge,
		Lang:   string(lang),
	}
	if err := bh.tasks.AddOngoingTask(ctx, task); err != nil {
		log.Printf("Merge: register task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	bh.sendText(ctx, b, chatID, messages.MergeStarted(lang))
}

func (bh *Handlers) addMergePart(ctx context.Context, b *bot.Bot, chatID int64, lang i18n.Lang, task *types.OngoingTask, info *contextkeys.DocumentInfo) {
	task.FileIDs = append(task.FileIDs, info.FileID)
	task.FileNames = append(task.FileNames, info.FileName)

	if err := bh.tasks.UpdateOngoingTask(ctx, task); err != nil {
		log.Printf("Merge: update task for %d: %v", task.UserID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	bh.sendText(ctx, b, chatID, messages.MergePartAdded(lang, info.FileName, len(task.FileIDs)))
}

func (bh *Handlers) cmdDone(ctx context.Context, b *bot.Bot, update *models.Update) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)
	userID := bh.getUserIDFromUpdate(update)

	task, err := bh.tasks.GetOngoingTask(ctx, userID)
	if err != nil {
		log.Printf("Done: get ongoing task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}
	if !mergeCollecting(task) {
		bh.sendText(ctx, b, chatID, messages.MergeNotActive(lang))
		return
	}
	if len(task.FileIDs) == 0 {
		bh.sendText(ctx, b, chatID, messages.MergeNoParts(lang))
		return
	}

	// Seal the task: the start volume marks it ready for the runner.
	first := 0
	for i, name := range task.FileNames {
		if unpack.IsFirstVolume(name) {
			first = i
			break
		}
	}
	task.FileID = task.FileIDs[first]
	task.FileName = task.FileNames[first]

	if err := bh.tasks.UpdateOngoingTask(ctx, task); err != nil {
		log.Printf("Done: seal task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	bh.enqueueRegistered(ctx, b, task, lang)
}

func (bh *Handlers) cmdCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)
	userID := bh.getUserIDFromUpdate(update)

	task, err := bh.tasks.GetOngoingTask(ctx, userID)
	if err != nil {
		log.Printf("Cancel: get ongoing task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}
	if task == nil {
		bh.sendText(ctx, b, chatID, messages.NoTaskToCancel(lang))
		return
	}

	// A task a worker has already picked up cannot be cancelled; its
	// registry record must stay until that worker completes it.
	if !bh.runner.Dequeue(userID) && bh.runner.Running(userID) {
		bh.sendText(ctx, b, chatID, messages.CannotCancelRunning(lang))
		return
	}

	if err := bh.tasks.DelOngoingTask(ctx, userID); err != nil {
		log.Printf("Cancel: delete task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	bh.sendText(ctx, b, chatID, messages.TaskCancelled(lang))
}

func (bh *Handlers) handleNonArchiveDocument(ctx context.Context, b *bot.Bot, update *models.Update, info *contextkeys.DocumentInfo) {
	lang := langFromCtx(ctx)
	chatID := bh.getChatIDFromUpdate(update)

	log.Printf("Refused non-archive document %q from user %d", info.FileName, bh.getUserIDFromUpdate(update))
	bh.sendText(ctx, b, chatID, messages.FileTooDeep(lang))
}
