package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smolenkov/unarch-bot/types"
)

// Gate decides whether an inbound extract/merge request may proceed.
// Every check reads point-in-time state from a collaborator; the only
// state the gate owns is the in-process rate-limit cache.

var (
	ErrStoreUnavailable        = errors.New("store unavailable")
	ErrSubscriptionCheckFailed = errors.New("subscription check failed")
	ErrInvalidInput            = errors.New("invalid request")
)

type CommandKind string

const (
	CommandExtract CommandKind = "extract"
	CommandMerge   CommandKind = "merge"
)

type Request struct {
	UserID  int64
	IsOwner bool
	Kind    CommandKind
	Now     time.Time
}

type Outcome int

const (
	OutcomeAllow Outcome = iota
	OutcomeDeny
	OutcomeCheckFailed
)

type Reason string

const (
	ReasonBanned         Reason = "banned"
	ReasonMaintenance    Reason = "maintenance"
	ReasonAtCapacity     Reason = "at_capacity"
	ReasonAlreadyRunning Reason = "already_running"
	ReasonNotSubscribed  Reason = "not_subscribed"
	ReasonRateLimited    Reason = "rate_limited"
)

// Check names which collaborator call was in progress when a
// CheckFailed decision was produced.
type Check string

const (
	CheckRequest     Check = "request"
	CheckBan         Check = "ban"
	CheckMaintenance Check = "maintenance"
	CheckCapacity    Check = "capacity"
	CheckOngoing     Check = "ongoing"
	CheckMembership  Check = "membership"
	CheckVip         Check = "vip"
)

type Decision struct {
	Outcome          Outcome
	Reason           Reason
	RemainingSeconds int
	FailedCheck      Check
	Err              error
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

func allow() Decision { return Decision{Outcome: OutcomeAllow} }

func deny(reason Reason) Decision {
	return Decision{Outcome: OutcomeDeny, Reason: reason}
}

func checkFailed(check Check, err error) Decision {
	return Decision{Outcome: OutcomeCheckFailed, FailedCheck: check, Err: err}
}

type BanChecker interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}

type MaintenanceChecker interface {
	IsMaintenanceEnabled(ctx context.Context) (bool, error)
}

type TaskCounter interface {
	CountOngoingTasks(ctx context.Context) (int, error)
	HasOngoingTask(ctx context.Context, userID int64) (bool, error)
}

// MembershipChecker reports channel membership. A false result means
// the user is not a member; an error means the lookup itself failed.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, channelID, userID int64) (bool, error)
}

type VipReader interface {
	GetVipRecord(ctx context.Context, userID int64) (*types.VipRecord, error)
}

type Config struct {
	MaxConcurrentTasks int
	CooldownWindow     time.Duration
	AuthChannelID      int64
}

type Gate struct {
	cfg         Config
	bans        BanChecker
	maintenance MaintenanceChecker
	tasks       TaskCounter
	membership  MembershipChecker
	vips        VipReader
	lastAllowed *Cache
}

func New(cfg Config, bans BanChecker, maintenance MaintenanceChecker, tasks TaskCounter, membership MembershipChecker, vips VipReader) *Gate {
	if cfg.MaxConcurrentTasks <= 0 {
		cfg.MaxConcurrentTasks = 75
	}
	if cfg.CooldownWindow <= 0 {
		cfg.CooldownWindow = 1800 * time.Second
	}
	return &Gate{
		cfg:         cfg,
		bans:        bans,
		maintenance: maintenance,
		tasks:       tasks,
		membership:  membership,
		vips:        vips,
		lastAllowed: NewCache(cfg.CooldownWindow),
	}
}

// Evaluate runs the checks in fixed order and short-circuits on the
// first non-allow outcome. The rate-limit cache is written only on the
// allow path, so a denied request never resets the user's cooldown.
func (g *Gate) Evaluate(ctx context.Context, req Request) Decision {
	if req.UserID == 0 {
		return checkFailed(CheckRequest, fmt.Errorf("%w: missing user id", ErrInvalidInput))
	}
	if req.Now.IsZero() {
		req.Now = time.Now().UTC()
	}

	// Owner bypasses every user-facing check.
	if req.IsOwner {
		return allow()
	}

	banned, err := g.bans.IsBanned(ctx, req.UserID)
	if err != nil {
		return checkFailed(CheckBan, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if banned {
		return deny(ReasonBanned)
	}

	enabled, err := g.maintenance.IsMaintenanceEnabled(ctx)
	if err != nil {
		return checkFailed(CheckMaintenance, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if enabled {
		return deny(ReasonMaintenance)
	}

	count, err := g.tasks.CountOngoingTasks(ctx)
	if err != nil {
		return checkFailed(CheckCapacity, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	hasTask, err := g.tasks.HasOngoingTask(ctx, req.UserID)
	if err != nil {
		return checkFailed(CheckOngoing, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	// The ceiling only blocks new entrants: a user with a task already
	// in flight is never stopped by the global count.
	if count >= g.cfg.MaxConcurrentTasks && !hasTask {
		return deny(ReasonAtCapacity)
	}
	if hasTask {
		return deny(ReasonAlreadyRunning)
	}

	member, err := g.membership.IsChannelMember(ctx, g.cfg.AuthChannelID, req.UserID)
	if err != nil {
		return checkFailed(CheckMembership, fmt.Errorf("%w: %v", ErrSubscriptionCheckFailed, err))
	}
	if !member {
		return deny(ReasonNotSubscribed)
	}

	vip, err := g.vips.GetVipRecord(ctx, req.UserID)
	if err != nil {
		return checkFailed(CheckVip, fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if vip != nil && vip.ActiveOn(req.Now) {
		return allow()
	}

	if last, ok := g.lastAllowed.Get(req.UserID, req.Now); ok {
		elapsed := req.Now.Sub(last)
		if elapsed < g.cfg.CooldownWindow {
			remaining := g.cfg.CooldownWindow - elapsed
			return Decision{
				Outcome:          OutcomeDeny,
				Reason:           ReasonRateLimited,
				RemainingSeconds: ceilSeconds(remaining),
			}
		}
	}

	g.lastAllowed.Put(req.UserID, req.Now)
	return allow()
}

// RecheckMembership repeats only the channel-subscription check. It is
// idempotent and backs the "I joined" button.
func (g *Gate) RecheckMembership(ctx context.Context, userID int64) (bool, error) {
	member, err := g.membership.IsChannelMember(ctx, g.cfg.AuthChannelID, userID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSubscriptionCheckFailed, err)
	}
	return member, nil
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
