package handlers

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/messages"
	"github.com/smolenkov/unarch-bot/types"
)

// handleOwnerCommand dispatches the admin surface. It returns false
// for commands it does not know so the caller can fall through to the
// unknown-command reply.
func (bh *Handlers) handleOwnerCommand(ctx context.Context, b *bot.Bot, update *models.Update, cmd string, fields []string) bool {
	chatID := update.Message.Chat.ID

	switch cmd {
	case "/addvip":
		bh.cmdAddVip(ctx, b, chatID, fields)
	case "/removevip":
		bh.cmdRemoveVip(ctx, b, chatID, fields)
	case "/isvip":
		bh.cmdIsVip(ctx, b, chatID, fields, false)
	case "/isvipactive":
		bh.cmdIsVip(ctx, b, chatID, fields, true)
	case "/listvip":
		bh.cmdListVip(ctx, b, chatID)
	case "/vipcount":
		bh.cmdVipCount(ctx, b, chatID)
	case "/viphelp":
		bh.sendText(ctx, b, chatID, messages.VipHelp())
	case "/checksubscription":
		bh.cmdCheckSubscription(ctx, b, chatID, fields)
	case "/ban":
		bh.cmdBan(ctx, b, chatID, fields)
	case "/unban":
		bh.cmdUnban(ctx, b, chatID, fields)
	case "/broadcast":
		bh.cmdBroadcast(ctx, b, update)
	case "/sendto":
		bh.cmdSendTo(ctx, b, update, fields)
	case "/maintenance":
		bh.cmdMaintenance(ctx, b, chatID, fields)
	case "/cleantasks":
		bh.cmdCleanTasks(ctx, b, chatID)
	case "/logs":
		bh.cmdLogs(ctx, b, chatID)
	case "/users":
		bh.cmdUsers(ctx, b, chatID)
	default:
		return false
	}
	return true
}

func parseUserIDArg(fields []string) (int64, string, bool) {
	if len(fields) < 2 {
		return 0, "", false
	}
	arg := strings.TrimSpace(fields[1])
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, arg, false
	}
	return id, arg, true
}

func (bh *Handlers) cmdAddVip(ctx context.Context, b *bot.Bot, chatID int64, fields []string) {
	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		if arg != "" {
			bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
			return
		}
		bh.sendText(ctx, b, chatID, messages.Usage("/addvip <user_id> <days> [plan]"))
		return
	}

	days := 30
	if len(fields) >= 3 {
		d, err := strconv.Atoi(fields[2])
		if err != nil || d <= 0 || d > 3650 {
			bh.sendText(ctx, b, chatID, messages.Usage("/addvip <user_id> <days> [plan]"))
			return
		}
		days = d
	}

	plan := "vip"
	if len(fields) >= 4 {
		plan = strings.TrimSpace(fields[3])
	}

	endsOn := time.Now().UTC().AddDate(0, 0, days)
	err := bh.vips.AddVipUser(ctx, types.VipRecord{
		UserID:       userID,
		Subscription: plan,
		EndsOn:       endsOn,
	})
	if err != nil {
		log.Printf("AddVip: %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}

	bh.sendText(ctx, b, chatID, messages.VipAdded(userID, plan, endsOn))
}

func (bh *Handlers) cmdRemoveVip(ctx context.Context, b *bot.Bot, chatID int64, fields []string) {
	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
		return
	}

	removed, err := bh.vips.RemoveVipUser(ctx, userID)
	if err != nil {
		log.Printf("RemoveVip: %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	if !removed {
		bh.sendText(ctx, b, chatID, messages.VipNotFound(userID))
		return
	}

	bh.sendText(ctx, b, chatID, messages.VipRemoved(userID))
}

func (bh *Handlers) cmdIsVip(ctx context.Context, b *bot.Bot, chatID int64, fields []string, activeOnly bool) {
	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
		return
	}

	rec, err := bh.vips.GetVipRecord(ctx, userID)
	if err != nil {
		log.Printf("IsVip: %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	if rec == nil {
		bh.sendText(ctx, b, chatID, messages.VipNotFound(userID))
		return
	}

	active := rec.ActiveOn(time.Now())
	if activeOnly && !active {
		bh.sendText(ctx, b, chatID, messages.VipRecordInfo(userID, rec.Subscription, rec.EndsOn, false))
		return
	}

	bh.sendText(ctx, b, chatID, messages.VipRecordInfo(userID, rec.Subscription, rec.EndsOn, active))
}

func (bh *Handlers) cmdListVip(ctx context.Context, b *bot.Bot, chatID int64) {
	recs, err := bh.vips.ListVipUsers(ctx)
	if err != nil {
		log.Printf("ListVip: %v", err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}

	now := time.Now()
	lines := []string{messages.VipListHeader(len(recs))}
	for _, rec := range recs {
		lines = append(lines, messages.VipListLine(rec.UserID, rec.Subscription, rec.EndsOn, rec.ActiveOn(now)))
	}

	text := strings.Join(lines, "\n")
	bh.sendText(ctx, b, chatID, messages.Truncate(text, bh.cfg.MaxMessageLength))
}

func (bh *Handlers) cmdVipCount(ctx context.Context, b *bot.Bot, chatID int64) {
	n, err := bh.vips.CountVipUsers(ctx)
	if err != nil {
		log.Printf("VipCount: %v", err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	bh.sendText(ctx, b, chatID, messages.VipCount(n))
}

func (bh *Handlers) cmdCheckSubscription(ctx context.Context, b *bot.Bot, chatID int64, fields []string) {
	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
		return
	}

	member, err := bh.gate.RecheckMembership(ctx, userID)
	if err != nil {
		log.Printf("CheckSubscription: %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.CheckFailed(langFromCtx(ctx)))
		return
	}

	bh.sendText(ctx, b, chatID, messages.MembershipResult(userID, member))
}

func (bh *Handlers) cmdBan(ctx context.Context, b *bot.Bot, chatID int64, fields []string) {
	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
		return
	}

	added, err := bh.users.AddBannedUser(ctx, userID)
	if err != nil {
		log.Printf("Ban: %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	if !added {
		bh.sendText(ctx, b, chatID, messages.UserAlreadyBanned(userID))
		return
	}

	// Banned users drop out of the broadcast audience too.
	if _, err := bh.users.DelUser(ctx, userID); err != nil {
		log.Printf("Ban: delete user record %d: %v", userID, err)
	}

	bh.sendText(ctx, b, chatID, messages.UserBanned(userID))
}

func (bh *Handlers) cmdUnban(ctx context.Context, b *bot.Bot, chatID int64, fields []string) {
	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
		return
	}

	removed, err := bh.users.DelBannedUser(ctx, userID)
	if err != nil {
		log.Printf("Unban: %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	if !removed {
		bh.sendText(ctx, b, chatID, messages.UserNotBanned(userID))
		return
	}

	bh.sendText(ctx, b, chatID, messages.UserUnbanned(userID))
}

// cmdBroadcast copies the replied-to message to every known user.
// Users that can no longer be reached are dropped from the store, the
// way a blocked bot sheds dead subscribers.
func (bh *Handlers) cmdBroadcast(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID

	if update.Message.ReplyToMessage == nil {
		bh.sendText(ctx, b, chatID, messages.BroadcastNothing())
		return
	}
	source := update.Message.ReplyToMessage

	ids, err := bh.users.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Broadcast: list users: %v", err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}

	started := time.Now()
	status, _ := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      messages.BroadcastProgress(0, 0, len(ids)),
		ParseMode: messages.ParseModeHTML,
	})

	sent, failed, removed := 0, 0, 0
	for i, userID := range ids {
		_, err := b.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:     userID,
			FromChatID: source.Chat.ID,
			MessageID:  source.ID,
		})
		if err != nil {
			failed++
			if ok, delErr := bh.users.DelUser(ctx, userID); delErr == nil && ok {
				removed++
			}
		} else {
			sent++
		}

		if status != nil && (i+1)%10 == 0 {
			_, _ = b.EditMessageText(ctx, &bot.EditMessageTextParams{
				ChatID:    chatID,
				MessageID: status.ID,
				Text:      messages.BroadcastProgress(sent, failed, len(ids)),
				ParseMode: messages.ParseModeHTML,
			})
		}

		// Stay well under the Bot API flood limits.
		time.Sleep(50 * time.Millisecond)
	}

	done := messages.BroadcastDone(sent, failed, removed, time.Since(started))
	if status != nil {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: status.ID,
			Text:      done,
			ParseMode: messages.ParseModeHTML,
		})
		if err == nil {
			return
		}
	}
	bh.sendText(ctx, b, chatID, done)
}

func (bh *Handlers) cmdSendTo(ctx context.Context, b *bot.Bot, update *models.Update, fields []string) {
	chatID := update.Message.Chat.ID

	userID, arg, ok := parseUserIDArg(fields)
	if !ok {
		if arg != "" {
			bh.sendText(ctx, b, chatID, messages.BadUserID(arg))
			return
		}
		bh.sendText(ctx, b, chatID, messages.Usage("/sendto <user_id> <text> (or reply to a message)"))
		return
	}

	if update.Message.ReplyToMessage != nil {
		source := update.Message.ReplyToMessage
		_, err := b.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:     userID,
			FromChatID: source.Chat.ID,
			MessageID:  source.ID,
		})
		if err != nil {
			log.Printf("SendTo: copy to %d: %v", userID, err)
			bh.sendText(ctx, b, chatID, messages.SendToFailed(userID))
			return
		}
		bh.sendText(ctx, b, chatID, messages.SentTo(userID))
		return
	}

	text := strings.TrimSpace(strings.Join(fields[2:], " "))
	if text == "" {
		bh.sendText(ctx, b, chatID, messages.Usage("/sendto <user_id> <text> (or reply to a message)"))
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		log.Printf("SendTo: send to %d: %v", userID, err)
		bh.sendText(ctx, b, chatID, messages.SendToFailed(userID))
		return
	}
	bh.sendText(ctx, b, chatID, messages.SentTo(userID))
}

func (bh *Handlers) cmdMaintenance(ctx context.Context, b *bot.Bot, chatID int64, fields []string) {
	if len(fields) < 2 {
		enabled, err := bh.maintenance.IsMaintenanceEnabled(ctx)
		if err != nil {
			log.Printf("Maintenance: read state: %v", err)
			bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
			return
		}
		bh.sendText(ctx, b, chatID, messages.MaintenanceSet(enabled))
		return
	}

	var enabled bool
	switch strings.ToLower(strings.TrimSpace(fields[1])) {
	case "on", "true", "1":
		enabled = true
	case "off", "false", "0":
		enabled = false
	default:
		bh.sendText(ctx, b, chatID, messages.Usage("/maintenance on|off"))
		return
	}

	if err := bh.maintenance.SetMaintenance(ctx, enabled); err != nil {
		log.Printf("Maintenance: set %v: %v", enabled, err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}

	bh.sendText(ctx, b, chatID, messages.MaintenanceSet(enabled))
}

func (bh *Handlers) cmdCleanTasks(ctx context.Context, b *bot.Bot, chatID int64) {
	n, err := bh.tasks.PurgeOngoingTasks(ctx)
	if err != nil {
		log.Printf("CleanTasks: %v", err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	bh.sendText(ctx, b, chatID, messages.TasksPurged(n))
}

func (bh *Handlers) cmdLogs(ctx context.Context, b *bot.Bot, chatID int64) {
	path := strings.TrimSpace(bh.cfg.LogFile)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		bh.sendText(ctx, b, chatID, messages.LogsEmpty())
		return
	}

	file, err := os.Open(path)
	if err != nil {
		log.Printf("Logs: open %s: %v", path, err)
		bh.sendText(ctx, b, chatID, messages.LogsEmpty())
		return
	}
	defer file.Close()

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: "unarch-bot.log",
			Data:     file,
		},
	})
	if err != nil {
		log.Printf("Logs: send document: %v", err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
	}
}

func (bh *Handlers) cmdUsers(ctx context.Context, b *bot.Bot, chatID int64) {
	total, err := bh.users.CountUsers(ctx)
	if err != nil {
		log.Printf("Users: count: %v", err)
		bh.sendText(ctx, b, chatID, messages.ErrorDefault(langFromCtx(ctx)))
		return
	}
	banned, err := bh.users.CountBannedUsers(ctx)
	if err != nil {
		log.Printf("Users: count banned: %v", err)
		banned = -1
	}
	bh.sendText(ctx, b, chatID, messages.UsersCount(total, banned))
}
