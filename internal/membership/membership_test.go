package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	member *models.ChatMember
	err    error
}

func (f *fakeAPI) GetChatMember(_ context.Context, _ *bot.GetChatMemberParams) (*models.ChatMember, error) {
	return f.member, f.err
}

func TestIsChannelMember(t *testing.T) {
	cases := []struct {
		name   string
		member *models.ChatMember
		want   bool
	}{
		{"plain member", &models.ChatMember{Member: &models.ChatMemberMember{}}, true},
		{"owner", &models.ChatMember{Owner: &models.ChatMemberOwner{}}, true},
		{"admin", &models.ChatMember{Administrator: &models.ChatMemberAdministrator{}}, true},
		{"restricted but member", &models.ChatMember{Restricted: &models.ChatMemberRestricted{IsMember: true}}, true},
		{"restricted and out", &models.ChatMember{Restricted: &models.ChatMemberRestricted{}}, false},
		{"left", &models.ChatMember{Left: &models.ChatMemberLeft{}}, false},
		{"banned", &models.ChatMember{Banned: &models.ChatMemberBanned{}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChecker(&fakeAPI{member: tc.member})
			got, err := c.IsChannelMember(context.Background(), -100123, 7)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNeverSeenUserIsNotAMember(t *testing.T) {
	c := NewChecker(&fakeAPI{err: errors.New("bad request, user not found")})
	got, err := c.IsChannelMember(context.Background(), -100123, 7)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestLookupFailurePropagates(t *testing.T) {
	apiErr := errors.New("telegram: timeout")
	c := NewChecker(&fakeAPI{err: apiErr})
	_, err := c.IsChannelMember(context.Background(), -100123, 7)
	assert.ErrorIs(t, err, apiErr)
}
