package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolenkov/unarch-bot/types"
)

type fakeState struct {
	banned      map[int64]bool
	maintenance bool
	taskCount   int
	hasTask     map[int64]bool
	members     map[int64]bool
	vips        map[int64]types.VipRecord

	banErr         error
	maintenanceErr error
	countErr       error
	hasErr         error
	memberErr      error
	vipErr         error
}

func newFakeState() *fakeState {
	return &fakeState{
		banned:  map[int64]bool{},
		hasTask: map[int64]bool{},
		members: map[int64]bool{},
		vips:    map[int64]types.VipRecord{},
	}
}

func (f *fakeState) IsBanned(_ context.Context, userID int64) (bool, error) {
	return f.banned[userID], f.banErr
}

func (f *fakeState) IsMaintenanceEnabled(_ context.Context) (bool, error) {
	return f.maintenance, f.maintenanceErr
}

func (f *fakeState) CountOngoingTasks(_ context.Context) (int, error) {
	return f.taskCount, f.countErr
}

func (f *fakeState) HasOngoingTask(_ context.Context, userID int64) (bool, error) {
	return f.hasTask[userID], f.hasErr
}

func (f *fakeState) IsChannelMember(_ context.Context, _, userID int64) (bool, error) {
	return f.members[userID], f.memberErr
}

func (f *fakeState) GetVipRecord(_ context.Context, userID int64) (*types.VipRecord, error) {
	if f.vipErr != nil {
		return nil, f.vipErr
	}
	rec, ok := f.vips[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func newTestGate(f *fakeState) *Gate {
	return New(Config{
		MaxConcurrentTasks: 75,
		CooldownWindow:     1800 * time.Second,
		AuthChannelID:      -1001234,
	}, f, f, f, f, f)
}

var testNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

func request(userID int64) Request {
	return Request{UserID: userID, Kind: CommandExtract, Now: testNow}
}

func TestOwnerBypassesEverything(t *testing.T) {
	f := newFakeState()
	f.banned[1] = true
	f.maintenance = true
	f.taskCount = 75
	f.members[1] = false
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), Request{UserID: 1, IsOwner: true, Kind: CommandExtract, Now: testNow})
	assert.True(t, d.Allowed())
}

func TestBannedUserDenied(t *testing.T) {
	f := newFakeState()
	f.banned[7] = true
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(7))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonBanned, d.Reason)
}

func TestMaintenanceDeniesRegardlessOfOtherState(t *testing.T) {
	f := newFakeState()
	f.maintenance = true
	f.members[7] = true
	f.vips[7] = types.VipRecord{UserID: 7, EndsOn: testNow.AddDate(0, 0, 30)}
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(7))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonMaintenance, d.Reason)
}

func TestCapacityBlocksNewEntrantsOnly(t *testing.T) {
	f := newFakeState()
	f.taskCount = 75
	f.members[10] = true
	f.members[11] = true
	f.hasTask[11] = true
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(10))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonAtCapacity, d.Reason)

	// A user already holding a task slips past the ceiling and is
	// stopped by the double-submission check instead.
	d = g.Evaluate(context.Background(), request(11))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonAlreadyRunning, d.Reason)
}

func TestDoubleSubmissionDenied(t *testing.T) {
	f := newFakeState()
	f.taskCount = 10
	f.hasTask[5] = true
	f.members[5] = true
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(5))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonAlreadyRunning, d.Reason)
}

func TestNonMemberDenied(t *testing.T) {
	f := newFakeState()
	f.taskCount = 10
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(20))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonNotSubscribed, d.Reason)
}

func TestVipSkipsRateLimitAndNeverTouchesCache(t *testing.T) {
	f := newFakeState()
	f.members[3] = true
	f.vips[3] = types.VipRecord{UserID: 3, Subscription: "premium", EndsOn: testNow.AddDate(0, 0, 5)}
	g := newTestGate(f)

	for i := 0; i < 2; i++ {
		d := g.Evaluate(context.Background(), request(3))
		assert.True(t, d.Allowed())
	}
	assert.Equal(t, 0, g.lastAllowed.Len())
}

func TestVipDateBoundary(t *testing.T) {
	f := newFakeState()
	f.members[3] = true
	g := newTestGate(f)

	// Ends today at midnight: active for the whole of today.
	f.vips[3] = types.VipRecord{UserID: 3, EndsOn: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}
	d := g.Evaluate(context.Background(), request(3))
	assert.True(t, d.Allowed())
	assert.Equal(t, 0, g.lastAllowed.Len())

	// Ended yesterday: the record still exists but the user is rate
	// limited like everyone else.
	f.vips[3] = types.VipRecord{UserID: 3, EndsOn: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)}
	d = g.Evaluate(context.Background(), request(3))
	assert.True(t, d.Allowed())
	assert.Equal(t, 1, g.lastAllowed.Len())
}

func TestFirstRequestAllowedAndCached(t *testing.T) {
	f := newFakeState()
	f.taskCount = 10
	f.members[9] = true
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(9))
	require.True(t, d.Allowed())

	last, ok := g.lastAllowed.Get(9, testNow)
	require.True(t, ok)
	assert.Equal(t, testNow, last)
}

func TestRepeatWithinWindowDenied(t *testing.T) {
	f := newFakeState()
	f.members[9] = true
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(9))
	require.True(t, d.Allowed())

	req := request(9)
	req.Now = testNow.Add(10 * time.Second)
	d = g.Evaluate(context.Background(), req)
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonRateLimited, d.Reason)
	assert.Equal(t, 1790, d.RemainingSeconds)
}

func TestCooldownBoundaryIsExclusive(t *testing.T) {
	f := newFakeState()
	f.members[9] = true
	g := newTestGate(f)

	require.True(t, g.Evaluate(context.Background(), request(9)).Allowed())

	req := request(9)
	req.Now = testNow.Add(1799 * time.Second)
	d := g.Evaluate(context.Background(), req)
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonRateLimited, d.Reason)
	assert.Equal(t, 1, d.RemainingSeconds)

	req.Now = testNow.Add(1800 * time.Second)
	d = g.Evaluate(context.Background(), req)
	assert.True(t, d.Allowed())
}

func TestDenialDoesNotResetCooldown(t *testing.T) {
	f := newFakeState()
	f.members[9] = true
	g := newTestGate(f)

	require.True(t, g.Evaluate(context.Background(), request(9)).Allowed())

	// Hammer the gate; each denial must measure from the original
	// allowed pass, not from the previous attempt.
	for i := 1; i <= 3; i++ {
		req := request(9)
		req.Now = testNow.Add(time.Duration(i*60) * time.Second)
		d := g.Evaluate(context.Background(), req)
		require.Equal(t, ReasonRateLimited, d.Reason)
		assert.Equal(t, 1800-i*60, d.RemainingSeconds)
	}
}

func TestBecameVipWithinWindow(t *testing.T) {
	f := newFakeState()
	f.members[9] = true
	g := newTestGate(f)

	require.True(t, g.Evaluate(context.Background(), request(9)).Allowed())

	f.vips[9] = types.VipRecord{UserID: 9, EndsOn: testNow.AddDate(0, 0, 5)}
	req := request(9)
	req.Now = testNow.Add(10 * time.Second)
	d := g.Evaluate(context.Background(), req)
	assert.True(t, d.Allowed())
}

func TestScenarioUnderCapacityButNotSubscribed(t *testing.T) {
	f := newFakeState()
	f.taskCount = 10
	g := newTestGate(f)

	d := g.Evaluate(context.Background(), request(42))
	require.Equal(t, OutcomeDeny, d.Outcome)
	assert.Equal(t, ReasonNotSubscribed, d.Reason)
}

func TestCollaboratorFailuresClassified(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*fakeState)
		check    Check
		sentinel error
	}{
		{"ban store down", func(f *fakeState) { f.banErr = errors.New("conn refused") }, CheckBan, ErrStoreUnavailable},
		{"maintenance store down", func(f *fakeState) { f.maintenanceErr = errors.New("conn refused") }, CheckMaintenance, ErrStoreUnavailable},
		{"count store down", func(f *fakeState) { f.countErr = errors.New("conn refused") }, CheckCapacity, ErrStoreUnavailable},
		{"has store down", func(f *fakeState) { f.hasErr = errors.New("conn refused") }, CheckOngoing, ErrStoreUnavailable},
		{"membership api down", func(f *fakeState) { f.memberErr = errors.New("api timeout") }, CheckMembership, ErrSubscriptionCheckFailed},
		{"vip store down", func(f *fakeState) { f.vipErr = errors.New("conn refused") }, CheckVip, ErrStoreUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeState()
			f.members[9] = true
			tc.mutate(f)
			g := newTestGate(f)

			d := g.Evaluate(context.Background(), request(9))
			require.Equal(t, OutcomeCheckFailed, d.Outcome)
			assert.Equal(t, tc.check, d.FailedCheck)
			assert.ErrorIs(t, d.Err, tc.sentinel)
			// A failed check is never an allow, so the cache stays
			// untouched.
			assert.Equal(t, 0, g.lastAllowed.Len())
		})
	}
}

func TestMissingUserID(t *testing.T) {
	g := newTestGate(newFakeState())

	d := g.Evaluate(context.Background(), Request{Now: testNow})
	require.Equal(t, OutcomeCheckFailed, d.Outcome)
	assert.Equal(t, CheckRequest, d.FailedCheck)
	assert.ErrorIs(t, d.Err, ErrInvalidInput)
}

func TestRecheckMembership(t *testing.T) {
	f := newFakeState()
	g := newTestGate(f)

	member, err := g.RecheckMembership(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, member)

	f.members[9] = true
	member, err = g.RecheckMembership(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, member)

	f.memberErr = errors.New("api timeout")
	_, err = g.RecheckMembership(context.Background(), 9)
	assert.ErrorIs(t, err, ErrSubscriptionCheckFailed)
}
