package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/internal/messages"
	"github.com/smolenkov/unarch-bot/internal/stats"
)

func (bh *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	fields := strings.Fields(strings.TrimSpace(update.Message.Text))
	if len(fields) == 0 {
		return
	}
	cmd := fields[0]
	if strings.Contains(cmd, "@") {
		cmd = strings.SplitN(cmd, "@", 2)[0]
	}

	lang := langFromCtx(ctx)
	chatID := update.Message.Chat.ID
	userID := bh.getUserIDFromUpdate(update)

	switch cmd {
	case "/start":
		bh.sendText(ctx, b, chatID, messages.StartWelcome(lang))
	case "/help":
		bh.sendText(ctx, b, chatID, messages.Help(lang))
	case "/about":
		bh.sendText(ctx, b, chatID, messages.About(lang, bh.cfg.OwnerUsername))
	case "/privacy":
		bh.sendText(ctx, b, chatID, messages.Privacy(lang))
	case "/commands":
		bh.sendText(ctx, b, chatID, messages.Commands(lang))
	case "/lang":
		bh.cmdLang(ctx, b, chatID, userID, lang, fields)
	case "/mode":
		bh.cmdMode(ctx, b, chatID, userID, lang)
	case "/mysubscription":
		bh.cmdMySubscription(ctx, b, chatID, userID, lang)
	case "/stats":
		bh.cmdStats(ctx, b, chatID, userID, lang)
	case "/report":
		bh.cmdReport(ctx, b, update, lang)
	case "/merge":
		bh.cmdMerge(ctx, b, update)
	case "/done":
		bh.cmdDone(ctx, b, update)
	case "/cancel":
		bh.cmdCancel(ctx, b, update)
	default:
		if bh.isOwner(userID) && bh.handleOwnerCommand(ctx, b, update, cmd, fields) {
			return
		}
		bh.sendText(ctx, b, chatID, messages.ErrorUnknownCommand(lang))
	}
}

func (bh *Handlers) cmdLang(ctx context.Context, b *bot.Bot, chatID, userID int64, lang i18n.Lang, fields []string) {
	if len(fields) < 2 {
		bh.sendText(ctx, b, chatID, messages.LangUsage(lang))
		return
	}

	arg := strings.ToLower(strings.TrimSpace(fields[1]))
	if arg != "en" && arg != "ru" {
		bh.sendText(ctx, b, chatID, messages.LangUsage(lang))
		return
	}

	if err := bh.users.SetUserLang(ctx, userID, arg); err != nil {
		log.Printf("Lang: set %q for %d: %v", arg, userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	bh.sendText(ctx, b, chatID, messages.LangSet(i18n.Parse(arg)))
}

func (bh *Handlers) cmdMode(ctx context.Context, b *bot.Bot, chatID, userID int64, lang i18n.Lang) {
	task, err := bh.tasks.GetOngoingTask(ctx, userID)
	if err != nil {
		log.Printf("Mode: get ongoing task for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}

	switch {
	case task == nil:
		bh.sendText(ctx, b, chatID, messages.ModeIdle(lang))
	case mergeCollecting(task):
		bh.sendText(ctx, b, chatID, messages.ModeMergeCollecting(lang, len(task.FileIDs)))
	default:
		bh.sendText(ctx, b, chatID, messages.ModeBusy(lang))
	}
}

func (bh *Handlers) cmdMySubscription(ctx context.Context, b *bot.Bot, chatID, userID int64, lang i18n.Lang) {
	rec, err := bh.vips.GetVipRecord(ctx, userID)
	if err != nil {
		log.Printf("MySubscription: get vip record for %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}
	if rec == nil {
		bh.sendText(ctx, b, chatID, messages.NoVip(lang))
		return
	}

	bh.sendText(ctx, b, chatID, messages.VipStatus(
		lang,
		rec.Subscription,
		rec.EndsOn.UTC().Format("2006-01-02"),
		rec.ActiveOn(time.Now()),
	))
}

func (bh *Handlers) cmdStats(ctx context.Context, b *bot.Bot, chatID, userID int64, lang i18n.Lang) {
	totalUsers, err := bh.users.CountUsers(ctx)
	if err != nil {
		log.Printf("Stats: count users: %v", err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}
	vipUsers, err := bh.vips.CountVipUsers(ctx)
	if err != nil {
		log.Printf("Stats: count vip users: %v", err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}
	ongoing, err := bh.tasks.CountOngoingTasks(ctx)
	if err != nil {
		log.Printf("Stats: count ongoing tasks: %v", err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(lang))
		return
	}

	if !bh.isOwner(userID) {
		bh.sendText(ctx, b, chatID, messages.UserStats(lang, totalUsers, vipUsers, ongoing))
		return
	}

	banned, err := bh.users.CountBannedUsers(ctx)
	if err != nil {
		log.Printf("Stats: count banned users: %v", err)
		banned = -1
	}

	sys := ""
	if snap, err := stats.Collect(bh.cfg.DownloadDir); err == nil {
		sys = snap.Format()
	} else {
		log.Printf("Stats: collect host snapshot: %v", err)
	}

	bh.sendText(ctx, b, chatID, messages.OwnerStats(totalUsers, banned, vipUsers, ongoing, sys))
}

func (bh *Handlers) cmdReport(ctx context.Context, b *bot.Bot, update *models.Update, lang i18n.Lang) {
	chatID := update.Message.Chat.ID
	userID := bh.getUserIDFromUpdate(update)

	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(update.Message.Text), "/report"))
	if text == "" {
		bh.sendText(ctx, b, chatID, messages.ReportUsage(lang))
		return
	}
	text = messages.Truncate(text, bh.cfg.MaxMessageLength)

	username := ""
	if update.Message.From != nil {
		username = update.Message.From.Username
	}

	report := messages.ReportFrom(userID, username, text)
	bh.sendText(ctx, b, bh.cfg.BotOwner, report)
	if bh.cfg.LogsChannelID != 0 {
		bh.sendText(ctx, b, bh.cfg.LogsChannelID, report)
	}

	bh.sendText(ctx, b, chatID, messages.ReportSent(lang))
}
