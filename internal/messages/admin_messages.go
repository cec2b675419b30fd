package messages

import (
	"fmt"
	"strings"
	"time"
)

// Admin-facing text is English-only; the owner talks to the bot in
// English regardless of the stored language.

func VipAdded(userID int64, subscription string, endsOn time.Time) string {
	return fmt.Sprintf("⭐ <b>VIP granted</b>\nUser: <code>%d</code>\nPlan: %s\nEnds on: %s",
		userID, Escape(subscription), endsOn.UTC().Format("2006-01-02"))
}

func VipRemoved(userID int64) string {
	return fmt.Sprintf("🗑 <b>VIP removed</b>\nUser: <code>%d</code>", userID)
}

func VipNotFound(userID int64) string {
	return fmt.Sprintf("🤷 <b>No VIP record</b>\nUser: <code>%d</code>", userID)
}

func VipRecordInfo(userID int64, subscription string, endsOn time.Time, active bool) string {
	state := "expired"
	if active {
		state = "active"
	}
	return fmt.Sprintf("⭐ <b>VIP record</b>\nUser: <code>%d</code>\nPlan: %s\nEnds on: %s\nState: %s",
		userID, Escape(subscription), endsOn.UTC().Format("2006-01-02"), state)
}

func VipCount(n int) string {
	return fmt.Sprintf("⭐ <b>VIP users:</b> %d", n)
}

func VipListHeader(n int) string {
	return fmt.Sprintf("⭐ <b>VIP users (%d)</b>", n)
}

func VipListLine(userID int64, subscription string, endsOn time.Time, active bool) string {
	mark := "💤"
	if active {
		mark = "✅"
	}
	return fmt.Sprintf("%s <code>%d</code> — %s until %s", mark, userID, Escape(subscription), endsOn.UTC().Format("2006-01-02"))
}

func VipHelp() string {
	return "⭐ <b>VIP administration</b>\n" +
		"/addvip &lt;user_id&gt; &lt;days&gt; [plan] — grant or extend VIP\n" +
		"/removevip &lt;user_id&gt; — revoke VIP\n" +
		"/isvip &lt;user_id&gt; — show the VIP record\n" +
		"/isvipactive &lt;user_id&gt; — check whether VIP is active today\n" +
		"/vipcount — number of VIP users\n" +
		"/listvip — list VIP users\n" +
		"/checksubscription &lt;user_id&gt; — check channel membership"
}

func MembershipResult(userID int64, member bool) string {
	if member {
		return fmt.Sprintf("✅ <code>%d</code> is subscribed to the channel", userID)
	}
	return fmt.Sprintf("🙈 <code>%d</code> is not subscribed to the channel", userID)
}

func UserBanned(userID int64) string {
	return fmt.Sprintf("🔨 <b>Banned</b>\nUser: <code>%d</code>", userID)
}

func UserAlreadyBanned(userID int64) string {
	return fmt.Sprintf("🔨 <code>%d</code> is already banned", userID)
}

func UserUnbanned(userID int64) string {
	return fmt.Sprintf("🕊 <b>Unbanned</b>\nUser: <code>%d</code>", userID)
}

func UserNotBanned(userID int64) string {
	return fmt.Sprintf("🤷 <code>%d</code> was not banned", userID)
}

func BadUserID(arg string) string {
	return fmt.Sprintf("🚫 <b>Bad user id:</b> %s", Escape(arg))
}

func Usage(usage string) string {
	return fmt.Sprintf("ℹ️ <b>Usage:</b> <code>%s</code>", Escape(usage))
}

func BroadcastNothing() string {
	return "🚫 <b>Nothing to broadcast</b>\nReply to a message with /broadcast."
}

func BroadcastProgress(sent, failed, total int) string {
	return fmt.Sprintf("📣 <b>Broadcasting…</b>\nSent: %d\nFailed: %d\nTotal: %d", sent, failed, total)
}

func BroadcastDone(sent, failed, removed int, took time.Duration) string {
	return fmt.Sprintf("📣 <b>Broadcast finished</b>\nSent: %d\nFailed: %d\nRemoved dead users: %d\nTook: %s",
		sent, failed, removed, took.Round(time.Second))
}

func SentTo(userID int64) string {
	return fmt.Sprintf("📨 <b>Delivered</b> to <code>%d</code>", userID)
}

func SendToFailed(userID int64) string {
	return fmt.Sprintf("🚫 <b>Could not deliver</b> to <code>%d</code>", userID)
}

func MaintenanceSet(enabled bool) string {
	if enabled {
		return "🔧 <b>Maintenance mode enabled</b>\nOnly the admin can use the bot now."
	}
	return "✅ <b>Maintenance mode disabled</b>"
}

func TasksPurged(n int) string {
	return fmt.Sprintf("🧹 <b>Purged %d ongoing task(s)</b>", n)
}

func OwnerStats(totalUsers, bannedUsers, vipUsers, ongoing int, sys string) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "📊 <b>Statistics</b>\n")
	fmt.Fprintf(b, "👥 Users: %d\n", totalUsers)
	fmt.Fprintf(b, "🔨 Banned: %d\n", bannedUsers)
	fmt.Fprintf(b, "⭐ VIP: %d\n", vipUsers)
	fmt.Fprintf(b, "⚙️ Tasks in flight: %d\n", ongoing)
	if sys != "" {
		fmt.Fprintf(b, "\n%s", sys)
	}
	return b.String()
}

func UsersCount(total, banned int) string {
	return fmt.Sprintf("👥 <b>Users:</b> %d\n🔨 <b>Banned:</b> %d", total, banned)
}

func LogsEmpty() string {
	return "🤷 <b>Log file is empty or missing</b>"
}
