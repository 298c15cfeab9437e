package chat

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/tartampluch/go-celebrations/internal/config"
	"github.com/tartampluch/go-celebrations/internal/engine"
)

// Client is the Slack side of a run: it lists the workspace roster and posts notices.
type Client struct {
	api           *slack.Client
	botUsername   string
	rosterChannel string
}

// New creates a Slack client. When rosterChannel is set, only members of that
// channel are part of the roster.
func New(token, botUsername, rosterChannel string, opts ...slack.Option) *Client {
	return &Client{
		api:           slack.New(token, opts...),
		botUsername:   botUsername,
		rosterChannel: rosterChannel,
	}
}

// ListMembers returns every workspace member, all pages included.
// Bot and deleted flags are passed through; filtering is left to the roster index.
func (c *Client) ListMembers(ctx context.Context) ([]engine.MemberRecord, error) {
	users, err := c.api.GetUsersContext(ctx, slack.GetUsersOptionLimit(config.SlackUsersPageLimit))
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if c.rosterChannel != "" {
		if allowed, err = c.channelMembers(ctx); err != nil {
			return nil, err
		}
	}

	members := make([]engine.MemberRecord, 0, len(users))
	for _, u := range users {
		if allowed != nil && !allowed[u.ID] {
			continue
		}
		members = append(members, engine.MemberRecord{
			Email:      u.Profile.Email,
			Handle:     u.Name,
			IsBot:      u.IsBot,
			IsDisabled: u.Deleted,
		})
	}

	slog.DebugContext(ctx, config.MsgRosterFetched,
		config.LogKeyComponent, config.CompChat,
		config.LogKeyCount, len(members),
	)
	return members, nil
}

func (c *Client) channelMembers(ctx context.Context) (map[string]bool, error) {
	ids := make(map[string]bool)
	params := &slack.GetUsersInConversationParameters{
		ChannelID: c.rosterChannel,
		Limit:     config.SlackUsersPageLimit,
	}
	for {
		page, cursor, err := c.api.GetUsersInConversationContext(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, id := range page {
			ids[id] = true
		}
		if cursor == "" {
			return ids, nil
		}
		params.Cursor = cursor
	}
}

// Deliver posts text to channel under the bot username. Names are linked so
// "@handle" in the text becomes a real mention. Every other posting option
// keeps the Slack default.
func (c *Client) Deliver(ctx context.Context, channel, text string) error {
	params := slack.NewPostMessageParameters()
	params.Username = c.botUsername
	params.LinkNames = 1

	_, _, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionPostMessageParameters(params),
	)
	return err
}
