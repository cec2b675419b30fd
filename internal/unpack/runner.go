package unpack

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/smolenkov/unarch-bot/internal/i18n"
	"github.com/smolenkov/unarch-bot/internal/messages"
	"github.com/smolenkov/unarch-bot/types"
)

type Config struct {
	Workers        int
	DownloadDir    string
	ExtractTimeout time.Duration
	MergeTimeout   time.Duration
}

// Runner is the worker pool that downloads archives, shells out to 7z
// and uploads the extracted files back to the user. Tasks are keyed by
// user, matching the one-task-per-user registry.
type Runner struct {
	tasks      types.TaskStore
	botClient  *bot.Bot
	cfg        Config
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
	taskQueue  chan int64
	inFlight   map[int64]*inFlightEntry
	inFlightMu sync.RWMutex
}

type inFlightEntry struct {
	chatID    int64
	messageID int
	position  int
	fileName  string
	lang      i18n.Lang
}

func NewRunner(tasks types.TaskStore, botClient *bot.Bot, cfg Config) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = os.TempDir()
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 2 * time.Hour
	}
	if cfg.MergeTimeout <= 0 {
		cfg.MergeTimeout = 4 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())

	queueSize := cfg.Workers * 2
	if queueSize < 10 {
		queueSize = 10
	}

	return &Runner{
		tasks:     tasks,
		botClient: botClient,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan int64, queueSize),
		inFlight:  make(map[int64]*inFlightEntry),
	}
}

func (r *Runner) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	log.Printf("Runner started with %d workers", r.cfg.Workers)

	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	go r.recoverOngoingTasks()
}

// recoverOngoingTasks re-enqueues tasks that survived a restart in the
// registry. Merge tasks still collecting parts are left alone.
func (r *Runner) recoverOngoingTasks() {
	tasks, err := r.tasks.ListOngoingTasks(r.ctx)
	if err != nil {
		log.Printf("Runner recovery: failed to list ongoing tasks: %v", err)
		return
	}

	enqueued := 0
	skipped := 0
	for _, task := range tasks {
		if task == nil {
			continue
		}
		if task.Kind == types.TaskMerge && task.FileID == "" {
			skipped++
			continue
		}
		r.Enqueue(task.UserID, task.ChatID, 0, task.FileName, i18n.Parse(task.Lang))
		enqueued++
	}

	if enqueued > 0 || skipped > 0 {
		log.Printf("Runner recovery: enqueued=%d skipped=%d (ongoing tasks=%d)", enqueued, skipped, len(tasks))
	}
}

func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	log.Println("Stopping runner...")
	r.cancel()
	r.wg.Wait()
	log.Println("Runner stopped")
}

// Enqueue schedules the user's registered task. The return value is
// the queue position: 0 when a worker picks it up immediately, -1 when
// the task is already queued.
func (r *Runner) Enqueue(userID, chatID int64, messageID int, fileName string, lang i18n.Lang) int {
	r.inFlightMu.Lock()
	if _, exists := r.inFlight[userID]; exists {
		r.inFlightMu.Unlock()
		return -1
	}

	running := 0
	maxPos := 0
	for _, e := range r.inFlight {
		if e == nil {
			continue
		}
		if e.position == 0 {
			running++
			continue
		}
		if e.position > maxPos {
			maxPos = e.position
		}
	}

	position := 0
	if running >= r.cfg.Workers {
		position = maxPos + 1
	}

	r.inFlight[userID] = &inFlightEntry{
		chatID:    chatID,
		messageID: messageID,
		position:  position,
		fileName:  fileName,
		lang:      lang,
	}
	r.inFlightMu.Unlock()

	go func() {
		select {
		case r.taskQueue <- userID:
		case <-r.ctx.Done():
			r.inFlightMu.Lock()
			delete(r.inFlight, userID)
			r.inFlightMu.Unlock()
		}
	}()

	return position
}

// completeTask removes the user's registry record, but only when it
// still belongs to the task the worker just finished. The user may
// have cancelled and registered a fresh task in the meantime; that
// record must survive.
func (r *Runner) completeTask(ctx context.Context, userID int64, taskID string) error {
	current, err := r.tasks.GetOngoingTask(ctx, userID)
	if err != nil {
		return err
	}
	if current == nil || current.ID != taskID {
		return nil
	}
	return r.tasks.DelOngoingTask(ctx, userID)
}

// Running reports whether a worker is currently processing the user's
// task, as opposed to it merely waiting in the queue.
func (r *Runner) Running(userID int64) bool {
	r.inFlightMu.RLock()
	defer r.inFlightMu.RUnlock()

	entry, exists := r.inFlight[userID]
	return exists && entry != nil && entry.position == 0
}

// Dequeue drops a queued task, used by /cancel. Tasks already being
// processed by a worker are not interrupted.
func (r *Runner) Dequeue(userID int64) bool {
	r.inFlightMu.Lock()
	defer r.inFlightMu.Unlock()

	entry, exists := r.inFlight[userID]
	if !exists || entry == nil || entry.position == 0 {
		return false
	}
	delete(r.inFlight, userID)
	return true
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	log.Printf("Worker %d started", id)

	for {
		select {
		case <-r.ctx.Done():
			log.Printf("Worker %d stopped", id)
			return
		case userID := <-r.taskQueue:
			task, err := r.tasks.GetOngoingTask(r.ctx, userID)
			if err != nil || task == nil {
				if err != nil {
					log.Printf("Worker %d: error getting task for user %d: %v", id, userID, err)
				}
				r.inFlightMu.Lock()
				delete(r.inFlight, userID)
				r.inFlightMu.Unlock()
				continue
			}

			if err := r.processTask(task); err != nil {
				log.Printf("Worker %d: error processing task %s: %v", id, task.ID, err)
			}

			if err := r.completeTask(r.ctx, userID, task.ID); err != nil {
				log.Printf("Worker %d: error deleting task for user %d: %v", id, userID, err)
			}

			var entry *inFlightEntry
			r.inFlightMu.RLock()
			entry = r.inFlight[userID]
			r.inFlightMu.RUnlock()
			if entry != nil && entry.chatID != 0 && entry.messageID != 0 {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				_, err := r.botClient.DeleteMessage(ctx, &bot.DeleteMessageParams{
					ChatID:    entry.chatID,
					MessageID: entry.messageID,
				})
				cancel()
				if err != nil {
					log.Printf("Failed to delete status message chat=%d msg=%d: %v", entry.chatID, entry.messageID, err)
				}
			}

			r.inFlightMu.Lock()
			delete(r.inFlight, userID)
			r.inFlightMu.Unlock()

			go r.decrementQueueAndUpdateMessages()
		}
	}
}

func (r *Runner) decrementQueueAndUpdateMessages() {
	type upd struct {
		chatID    int64
		messageID int
		text      string
	}
	updates := make([]upd, 0)

	r.inFlightMu.Lock()
	for _, entry := range r.inFlight {
		if entry == nil || entry.position == 0 {
			continue
		}

		entry.position--

		if entry.chatID == 0 || entry.messageID == 0 {
			continue
		}

		if entry.position == 0 {
			updates = append(updates, upd{
				chatID:    entry.chatID,
				messageID: entry.messageID,
				text:      messages.ExtractStarted(entry.lang, entry.fileName),
			})
		} else {
			updates = append(updates, upd{
				chatID:    entry.chatID,
				messageID: entry.messageID,
				text:      messages.ExtractQueued(entry.lang, entry.fileName, entry.position),
			})
		}
	}
	r.inFlightMu.Unlock()

	if len(updates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, u := range updates {
		_, err := r.botClient.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    u.chatID,
			MessageID: u.messageID,
			Text:      u.text,
			ParseMode: messages.ParseModeHTML,
		})
		if err != nil {
			log.Printf("Queue update: failed to edit message chat=%d msg=%d: %v", u.chatID, u.messageID, err)
		}
	}
}

func (r *Runner) processTask(task *types.OngoingTask) error {
	lang := i18n.Parse(task.Lang)

	timeout := r.cfg.ExtractTimeout
	if task.Kind == types.TaskMerge {
		timeout = r.cfg.MergeTimeout
	}
	ctx, cancel := context.WithTimeout(r.ctx, timeout)
	defer cancel()

	workDir := filepath.Join(r.cfg.DownloadDir, task.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	archivePath, err := r.fetchArchives(ctx, task, workDir)
	if err != nil {
		r.reply(ctx, task.ChatID, messages.DownloadFailed(lang, task.FileName))
		return err
	}

	outDir := filepath.Join(workDir, "extracted")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	if err := extract(ctx, archivePath, outDir); err != nil {
		r.reply(ctx, task.ChatID, messages.ExtractFailed(lang, task.FileName))
		return err
	}

	sent, err := r.sendExtracted(ctx, task.ChatID, outDir)
	if err != nil {
		r.reply(ctx, task.ChatID, messages.ErrorDefault(lang))
		return err
	}
	if sent == 0 {
		r.reply(ctx, task.ChatID, messages.ExtractFailed(lang, task.FileName))
		return fmt.Errorf("archive %s produced no files", task.FileName)
	}

	r.reply(ctx, task.ChatID, messages.ExtractDone(lang, task.FileName, sent))
	log.Printf("Task %s completed: %d file(s) sent", task.ID, sent)
	return nil
}

// fetchArchives downloads every part of the task into workDir and
// returns the path extraction should start from. For merge tasks that
// is the first volume.
func (r *Runner) fetchArchives(ctx context.Context, task *types.OngoingTask, workDir string) (string, error) {
	if task.URL != "" {
		dest := filepath.Join(workDir, safeBaseName(task.FileName))
		if err := r.downloadURL(ctx, task.URL, dest); err != nil {
			return "", err
		}
		return dest, nil
	}

	fileIDs := task.FileIDs
	fileNames := task.FileNames
	if len(fileIDs) == 0 {
		fileIDs = []string{task.FileID}
		fileNames = []string{task.FileName}
	}

	paths := make([]string, 0, len(fileIDs))
	for i, fileID := range fileIDs {
		name := ""
		if i < len(fileNames) {
			name = fileNames[i]
		}
		dest := filepath.Join(workDir, safeBaseName(name))
		if err := r.downloadTelegramFile(ctx, fileID, dest); err != nil {
			return "", err
		}
		paths = append(paths, dest)
	}

	return startVolume(paths), nil
}

// startVolume picks the path 7z should be pointed at. Volumes sort so
// that .001 and .z01 come first; for .partN.rar sets 7z wants part1.
func startVolume(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	for _, p := range sorted {
		if IsFirstVolume(filepath.Base(p)) {
			return p
		}
	}
	return sorted[0]
}

func (r *Runner) downloadTelegramFile(ctx context.Context, fileID, destPath string) error {
	fileInfo, err := r.botClient.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return fmt.Errorf("get file %s: %w", fileID, err)
	}

	fileURL := r.botClient.FileDownloadLink(fileInfo)
	return r.downloadURL(ctx, fileURL, destPath)
}

func (r *Runner) downloadURL(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extract(ctx context.Context, archivePath, outDir string) error {
	cmd := exec.CommandContext(ctx, "7z", "x", "-y", "-o"+outDir, archivePath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("7z failed: %v, output: %s", err, string(output))
	}
	return nil
}

func (r *Runner) sendExtracted(ctx context.Context, chatID int64, outDir string) (int, error) {
	sent := 0
	err := filepath.Walk(outDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Size() == 0 {
			return nil
		}

		if err := r.sendDocumentFromPath(ctx, chatID, path); err != nil {
			log.Printf("Error sending %s: %v", path, err)
			return nil
		}
		sent++
		return nil
	})
	return sent, err
}

func (r *Runner) sendDocumentFromPath(ctx context.Context, chatID int64, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fileName := filepath.Base(filePath)
	_, err = r.botClient.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: fileName,
			Data:     file,
		},
		Caption: fileName,
	})
	return err
}

func (r *Runner) reply(ctx context.Context, chatID int64, text string) {
	if text == "" || chatID == 0 {
		return
	}
	_, err := r.botClient.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func safeBaseName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = fmt.Sprintf("archive_%d", time.Now().UnixNano())
	}
	return name
}
