package messages

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smolenkov/unarch-bot/internal/i18n"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func FileLine(lang i18n.Lang, fileName string) string {
	name := strings.TrimSpace(fileName)
	if name == "" {
		if lang == i18n.RU {
			name = "файл"
		} else {
			name = "file"
		}
	}
	if lang == i18n.RU {
		return fmt.Sprintf("📄 <b>Файл:</b> %s", Escape(name))
	}
	return fmt.Sprintf("📄 <b>File:</b> %s", Escape(name))
}

func ErrorDefault(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🚫 <b>Ошибка</b>\nПопробуйте ещё раз."
	}
	return "🚫 <b>Something went wrong</b>\nPlease try again."
}

func ErrorUnknownCommand(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "❓ <b>Команда не найдена</b>\nНаберите /help."
	}
	return "❓ <b>Unknown command</b>\nTry /help."
}

func ErrorUnsupportedMessageType(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🤖 <b>Я так не умею</b>\nОтправьте архив или ссылку на него."
	}
	return "🤖 <b>I can't work with that</b>\nSend me an archive or a direct link to one."
}

func StartWelcome(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "👋 <b>Привет!</b>\nЯ распаковываю архивы.\n\n" +
			"📎 Отправьте архив (zip, rar, 7z, tar и другие) или прямую ссылку на него.\n" +
			"🧩 Для многотомных архивов используйте /merge.\n\n" +
			"ℹ️ Полный список команд: /help"
	}
	return "👋 <b>Hi!</b>\nI extract archives.\n\n" +
		"📎 Send me an archive (zip, rar, 7z, tar and more) or a direct link to one.\n" +
		"🧩 For multi-volume archives use /merge.\n\n" +
		"ℹ️ Full command list: /help"
}

func Help(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "ℹ️ <b>Как пользоваться</b>\n\n" +
			"📎 Отправьте архив — я распакую его и пришлю файлы.\n" +
			"🔗 Или отправьте прямую ссылку на архив.\n" +
			"🧩 /merge — собрать многотомный архив (затем отправьте части и /done).\n" +
			"❌ /cancel — отменить текущую задачу.\n" +
			"🌐 /lang — сменить язык.\n" +
			"⭐ /mysubscription — ваша VIP-подписка.\n" +
			"📊 /stats — статистика.\n" +
			"📝 /report — сообщить о проблеме.\n" +
			"📋 /commands — все команды."
	}
	return "ℹ️ <b>How to use me</b>\n\n" +
		"📎 Send an archive and I will extract it and send the files back.\n" +
		"🔗 Or send a direct link to an archive.\n" +
		"🧩 /merge starts a multi-volume merge (send the parts, then /done).\n" +
		"❌ /cancel cancels your current task.\n" +
		"🌐 /lang switches the language.\n" +
		"⭐ /mysubscription shows your VIP subscription.\n" +
		"📊 /stats shows statistics.\n" +
		"📝 /report sends a problem report to the admin.\n" +
		"📋 /commands lists every command."
}

func About(lang i18n.Lang, ownerUsername string) string {
	owner := strings.TrimSpace(ownerUsername)
	if owner == "" {
		owner = "admin"
	}
	if lang == i18n.RU {
		return fmt.Sprintf("🤖 <b>Unarch Bot</b>\nРаспаковка архивов прямо в Telegram.\n\n👤 Администратор: @%s", Escape(owner))
	}
	return fmt.Sprintf("🤖 <b>Unarch Bot</b>\nArchive extraction right inside Telegram.\n\n👤 Admin: @%s", Escape(owner))
}

func Privacy(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🔒 <b>Конфиденциальность</b>\n" +
			"Файлы скачиваются только на время распаковки и удаляются сразу после отправки результата.\n" +
			"Хранится только ваш ID, имя пользователя и язык."
	}
	return "🔒 <b>Privacy</b>\n" +
		"Files are downloaded only for the duration of extraction and deleted right after the result is sent.\n" +
		"Only your ID, username and language preference are stored."
}

func Commands(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "📋 <b>Команды</b>\n" +
			"/start — начать\n" +
			"/help — помощь\n" +
			"/merge — многотомный архив\n" +
			"/done — завершить сбор частей\n" +
			"/cancel — отменить задачу\n" +
			"/lang — язык\n" +
			"/mysubscription — подписка\n" +
			"/stats — статистика\n" +
			"/report — сообщить о проблеме\n" +
			"/about — о боте\n" +
			"/privacy — конфиденциальность"
	}
	return "📋 <b>Commands</b>\n" +
		"/start — get started\n" +
		"/help — help\n" +
		"/merge — multi-volume archive\n" +
		"/done — finish collecting parts\n" +
		"/cancel — cancel your task\n" +
		"/lang — language\n" +
		"/mysubscription — your subscription\n" +
		"/stats — statistics\n" +
		"/report — report a problem\n" +
		"/about — about the bot\n" +
		"/privacy — privacy"
}

func LangUsage(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🌐 <b>Язык</b>\nИспользование: /lang en или /lang ru"
	}
	return "🌐 <b>Language</b>\nUsage: /lang en or /lang ru"
}

func LangSet(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🌐 <b>Язык переключён на русский</b>"
	}
	return "🌐 <b>Language switched to English</b>"
}

func MaintenanceOn(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🔧 <b>Технические работы</b>\nБот временно недоступен. Попробуйте позже."
	}
	return "🔧 <b>Maintenance</b>\nThe bot is temporarily unavailable. Please try again later."
}

func MaxTasksReached(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⏳ <b>Бот перегружен</b>\nСейчас выполняется максимум задач. Попробуйте через пару минут."
	}
	return "⏳ <b>Bot is at full capacity</b>\nThe maximum number of tasks is running right now. Try again in a couple of minutes."
}

func AlreadyRunning(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⚠️ <b>У вас уже есть задача</b>\nДождитесь её завершения или отмените: /cancel"
	}
	return "⚠️ <b>You already have a task running</b>\nWait for it to finish or cancel it with /cancel."
}

func NotSubscribed(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "📢 <b>Подпишитесь на канал</b>\nЧтобы пользоваться ботом, подпишитесь на наш канал и нажмите «Я подписался»."
	}
	return "📢 <b>Join our channel</b>\nTo use the bot, join our channel and press \"I joined\"."
}

func StillNotSubscribed(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🙈 <b>Подписка не найдена</b>\nПодпишитесь на канал и нажмите кнопку ещё раз."
	}
	return "🙈 <b>Subscription not found</b>\nJoin the channel and press the button again."
}

func SubscriptionConfirmed(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "✅ <b>Подписка подтверждена</b>\nТеперь отправьте архив."
	}
	return "✅ <b>Subscription confirmed</b>\nNow send me an archive."
}

func RateLimited(lang i18n.Lang, remainingSeconds int) string {
	minutes := remainingSeconds / 60
	seconds := remainingSeconds % 60
	if lang == i18n.RU {
		return fmt.Sprintf("🕒 <b>Не так быстро</b>\nСледующая задача будет доступна через %dм %dс.\n\n⭐ VIP-подписка снимает это ограничение.", minutes, seconds)
	}
	return fmt.Sprintf("🕒 <b>Not so fast</b>\nYour next task unlocks in %dm %ds.\n\n⭐ A VIP subscription removes this limit.", minutes, seconds)
}

func CheckFailed(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🚧 <b>Временная неполадка</b>\nНе удалось проверить ваш запрос. Попробуйте ещё раз через минуту."
	}
	return "🚧 <b>Temporary hiccup</b>\nI could not verify your request. Please try again in a minute."
}

func BtnJoinChannel(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "📢 Подписаться"
	}
	return "📢 Join channel"
}

func BtnBuyVip(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⭐ Купить VIP"
	}
	return "⭐ Buy VIP"
}

func BtnIJoined(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "✅ Я подписался"
	}
	return "✅ I joined"
}

func ExtractQueued(lang i18n.Lang, fileName string, position int) string {
	if lang == i18n.RU {
		return fmt.Sprintf("⏳ <b>В очереди:</b> %d\n%s", position, FileLine(lang, fileName))
	}
	return fmt.Sprintf("⏳ <b>Queued at position:</b> %d\n%s", position, FileLine(lang, fileName))
}

func ExtractStarted(lang i18n.Lang, fileName string) string {
	if lang == i18n.RU {
		return "⚙️ <b>Распаковка началась</b>\n" + FileLine(lang, fileName)
	}
	return "⚙️ <b>Extraction started</b>\n" + FileLine(lang, fileName)
}

func ExtractDone(lang i18n.Lang, fileName string, fileCount int) string {
	if lang == i18n.RU {
		return fmt.Sprintf("✅ <b>Готово</b>\n%s\n📦 Файлов отправлено: %d", FileLine(lang, fileName), fileCount)
	}
	return fmt.Sprintf("✅ <b>Done</b>\n%s\n📦 Files sent: %d", FileLine(lang, fileName), fileCount)
}

func ExtractFailed(lang i18n.Lang, fileName string) string {
	if lang == i18n.RU {
		return "🚫 <b>Не удалось распаковать архив</b>\n" + FileLine(lang, fileName)
	}
	return "🚫 <b>Could not extract the archive</b>\n" + FileLine(lang, fileName)
}

func DownloadFailed(lang i18n.Lang, fileName string) string {
	if lang == i18n.RU {
		return "🚫 <b>Не удалось скачать файл</b>\n" + FileLine(lang, fileName)
	}
	return "🚫 <b>Could not download the file</b>\n" + FileLine(lang, fileName)
}

func FileTooDeep(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🚫 <b>Файл не похож на архив</b>\nПоддерживаются zip, rar, 7z, tar и другие распространённые форматы."
	}
	return "🚫 <b>That file does not look like an archive</b>\nSupported formats include zip, rar, 7z, tar and other common ones."
}

func MergeStarted(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🧩 <b>Режим сборки</b>\nОтправляйте части архива по одной (part1.rar, file.7z.001 и так далее).\nКогда закончите, отправьте /done."
	}
	return "🧩 <b>Merge mode</b>\nSend the archive parts one by one (part1.rar, file.7z.001 and so on).\nWhen you are finished, send /done."
}

func MergePartAdded(lang i18n.Lang, fileName string, total int) string {
	if lang == i18n.RU {
		return fmt.Sprintf("➕ <b>Часть добавлена</b> (всего: %d)\n%s", total, FileLine(lang, fileName))
	}
	return fmt.Sprintf("➕ <b>Part added</b> (total: %d)\n%s", total, FileLine(lang, fileName))
}

func MergeNoParts(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⚠️ <b>Нет частей</b>\nСначала отправьте части архива, затем /done."
	}
	return "⚠️ <b>No parts yet</b>\nSend the archive parts first, then /done."
}

func MergeNotActive(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⚠️ <b>Режим сборки не запущен</b>\nНачните с команды /merge."
	}
	return "⚠️ <b>Merge mode is not active</b>\nStart it with /merge."
}

func TaskCancelled(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "❌ <b>Задача отменена</b>"
	}
	return "❌ <b>Task cancelled</b>"
}

func CannotCancelRunning(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⚙️ <b>Задача уже выполняется</b>\nЕё нельзя отменить, дождитесь завершения."
	}
	return "⚙️ <b>Your task is already being processed</b>\nIt cannot be cancelled now, please wait for it to finish."
}

func NoTaskToCancel(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "🤷 <b>Нечего отменять</b>\nУ вас нет активных задач."
	}
	return "🤷 <b>Nothing to cancel</b>\nYou have no active task."
}

func ModeIdle(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "📎 <b>Режим: распаковка</b>\nОтправьте архив, и я его распакую. Для многотомных архивов — /merge."
	}
	return "📎 <b>Mode: extract</b>\nSend an archive and I will unpack it. For multi-volume archives use /merge."
}

func ModeMergeCollecting(lang i18n.Lang, parts int) string {
	if lang == i18n.RU {
		return fmt.Sprintf("🧩 <b>Режим: сборка</b>\nЧастей получено: %d. Завершите командой /done или отмените /cancel.", parts)
	}
	return fmt.Sprintf("🧩 <b>Mode: merge</b>\nParts received: %d. Finish with /done or cancel with /cancel.", parts)
}

func ModeBusy(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "⚙️ <b>Выполняется задача</b>\nДождитесь её завершения или отмените: /cancel"
	}
	return "⚙️ <b>A task is running</b>\nWait for it to finish or cancel it with /cancel."
}

func VipStatus(lang i18n.Lang, subscription string, endsOn string, active bool) string {
	if lang == i18n.RU {
		if active {
			return fmt.Sprintf("⭐ <b>VIP активна</b>\nТариф: %s\nДействует до: %s", Escape(subscription), Escape(endsOn))
		}
		return fmt.Sprintf("💤 <b>VIP истекла</b>\nТариф: %s\nЗакончилась: %s", Escape(subscription), Escape(endsOn))
	}
	if active {
		return fmt.Sprintf("⭐ <b>VIP active</b>\nPlan: %s\nValid until: %s", Escape(subscription), Escape(endsOn))
	}
	return fmt.Sprintf("💤 <b>VIP expired</b>\nPlan: %s\nEnded on: %s", Escape(subscription), Escape(endsOn))
}

func NoVip(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "💤 <b>VIP-подписка не найдена</b>\nБез неё действует ограничение на частоту задач."
	}
	return "💤 <b>No VIP subscription</b>\nWithout one the task cooldown applies."
}

func ReportUsage(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "📝 <b>Сообщить о проблеме</b>\nИспользование: /report ваш текст"
	}
	return "📝 <b>Report a problem</b>\nUsage: /report your message"
}

func ReportSent(lang i18n.Lang) string {
	if lang == i18n.RU {
		return "📨 <b>Отправлено</b>\nСпасибо, администратор получил ваше сообщение."
	}
	return "📨 <b>Sent</b>\nThanks, the admin has received your message."
}

func ReportFrom(userID int64, username, text string) string {
	who := fmt.Sprintf("%d", userID)
	if strings.TrimSpace(username) != "" {
		who = fmt.Sprintf("@%s (%d)", Escape(username), userID)
	}
	return fmt.Sprintf("📝 <b>Report</b>\nFrom: %s\n\n%s", who, Escape(text))
}

func UserStats(lang i18n.Lang, totalUsers, vipUsers, ongoing int) string {
	if lang == i18n.RU {
		return fmt.Sprintf("📊 <b>Статистика</b>\n👥 Пользователей: %d\n⭐ VIP: %d\n⚙️ Задач в работе: %d", totalUsers, vipUsers, ongoing)
	}
	return fmt.Sprintf("📊 <b>Statistics</b>\n👥 Users: %d\n⭐ VIP: %d\n⚙️ Tasks in flight: %d", totalUsers, vipUsers, ongoing)
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
