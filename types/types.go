package types

import (
	"context"
	"time"
)

type User struct {
	UserID    int64
	ChatID    int64
	Username  string
	Lang      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VipRecord persists past its expiry date; expiry is computed, never
// enforced by deletion.
type VipRecord struct {
	UserID       int64
	Subscription string
	EndsOn       time.Time
	CreatedAt    time.Time
}

// ActiveOn reports whether the record is still valid on the given
// instant. The comparison is date-granular in UTC: a record ending
// today stays active for the whole of today.
func (v VipRecord) ActiveOn(now time.Time) bool {
	today := dateOf(now)
	ends := dateOf(v.EndsOn)
	return !today.After(ends)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type TaskKind string

const (
	TaskExtract TaskKind = "extract"
	TaskMerge   TaskKind = "merge"
)

// OngoingTask is a registered in-flight extraction or merge job.
// At most one per user.
type OngoingTask struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	MessageID int       `json:"message_id,omitempty"`
	Kind      TaskKind  `json:"kind"`
	FileID    string    `json:"file_id,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	URL       string    `json:"url,omitempty"`
	FileIDs   []string  `json:"file_ids,omitempty"`
	FileNames []string  `json:"file_names,omitempty"`
	Lang      string    `json:"lang,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

type UserStore interface {
	UpsertUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID int64) (*User, error)
	SetUserLang(ctx context.Context, userID int64, lang string) error
	DelUser(ctx context.Context, userID int64) (bool, error)
	CountUsers(ctx context.Context) (int, error)
	ListUserIDs(ctx context.Context) ([]int64, error)

	AddBannedUser(ctx context.Context, userID int64) (bool, error)
	DelBannedUser(ctx context.Context, userID int64) (bool, error)
	IsBanned(ctx context.Context, userID int64) (bool, error)
	CountBannedUsers(ctx context.Context) (int, error)
}

type VipStore interface {
	AddVipUser(ctx context.Context, rec VipRecord) error
	RemoveVipUser(ctx context.Context, userID int64) (bool, error)
	// GetVipRecord returns (nil, nil) when the user has never been VIP.
	GetVipRecord(ctx context.Context, userID int64) (*VipRecord, error)
	ListVipUsers(ctx context.Context) ([]VipRecord, error)
	CountVipUsers(ctx context.Context) (int, error)
}

type MaintenanceStore interface {
	IsMaintenanceEnabled(ctx context.Context) (bool, error)
	SetMaintenance(ctx context.Context, enabled bool) error
}

type TaskStore interface {
	AddOngoingTask(ctx context.Context, task *OngoingTask) error
	// GetOngoingTask returns (nil, nil) when the user has no task.
	GetOngoingTask(ctx context.Context, userID int64) (*OngoingTask, error)
	UpdateOngoingTask(ctx context.Context, task *OngoingTask) error
	HasOngoingTask(ctx context.Context, userID int64) (bool, error)
	CountOngoingTasks(ctx context.Context) (int, error)
	ListOngoingTasks(ctx context.Context) ([]*OngoingTask, error)
	DelOngoingTask(ctx context.Context, userID int64) error
	PurgeOngoingTasks(ctx context.Context) (int, error)
}
