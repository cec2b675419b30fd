package membership

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatMemberAPI is the slice of the bot client the checker needs.
type ChatMemberAPI interface {
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

// Checker answers whether a user belongs to the auth channel. A
// negative answer and a failed lookup are different things: the first
// is (false, nil), the second is (false, err).
type Checker struct {
	api ChatMemberAPI
}

func NewChecker(api ChatMemberAPI) *Checker {
	return &Checker{api: api}
}

func (c *Checker) IsChannelMember(ctx context.Context, channelID, userID int64) (bool, error) {
	member, err := c.api.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: channelID,
		UserID: userID,
	})
	if err != nil {
		// Bot API reports users it has never seen as an error rather
		// than a left-member record.
		if isNotParticipant(err) {
			return false, nil
		}
		return false, err
	}
	if member == nil {
		return false, nil
	}

	switch {
	case member.Owner != nil, member.Administrator != nil, member.Member != nil:
		return true, nil
	case member.Restricted != nil:
		return member.Restricted.IsMember, nil
	default:
		// Left, banned or unknown.
		return false, nil
	}
}

func isNotParticipant(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user not found") ||
		strings.Contains(msg, "member not found") ||
		strings.Contains(msg, "participant_id_invalid")
}
