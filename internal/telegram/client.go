package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/gate"
	"github.com/svnig/filesearchbot/internal/ingest"
)

// Client adapts the go-telegram/bot API to the interfaces the components
// depend on (gate.ChatClient, broadcast.Sender, ingest.MessageSource). Each
// component receives it by constructor injection, so tests can substitute
// fakes.
type Client struct {
	bot            *bot.Bot
	logger         *slog.Logger
	logChannelID   int64
	requestTimeout time.Duration
}

// NewClient creates a transport adapter. logChannelID is the scratch chat
// used by FetchMessage to inspect forwarded history during a reindex.
// requestTimeout caps each outbound API call; zero disables the cap.
func NewClient(b *bot.Bot, logger *slog.Logger, logChannelID int64, requestTimeout time.Duration) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		bot:            b,
		logger:         logger.With("component", "telegram_client"),
		logChannelID:   logChannelID,
		requestTimeout: requestTimeout,
	}
}

// callCtx derives the per-call context for one outbound API request.
func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// GetChatMemberStatus returns the membership status of userID in chatID.
func (c *Client) GetChatMemberStatus(ctx context.Context, chatID, userID int64) (gate.MemberStatus, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	member, err := c.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member (chat %d, user %d): %w", chatID, userID, err)
	}

	return memberStatus(member.Type)
}

// memberStatus maps the transport's chat member type onto the gate's
// membership statuses.
func memberStatus(t models.ChatMemberType) (gate.MemberStatus, error) {
	switch t {
	case models.ChatMemberTypeOwner:
		return gate.StatusCreator, nil
	case models.ChatMemberTypeAdministrator:
		return gate.StatusAdministrator, nil
	case models.ChatMemberTypeMember:
		return gate.StatusMember, nil
	case models.ChatMemberTypeRestricted:
		return gate.StatusRestricted, nil
	case models.ChatMemberTypeLeft:
		return gate.StatusLeft, nil
	case models.ChatMemberTypeBanned:
		return gate.StatusKicked, nil
	default:
		return "", fmt.Errorf("unknown chat member type %v", t)
	}
}

// GetChatUsername returns the public handle of chatID, or "" for private chats.
func (c *Client) GetChatUsername(ctx context.Context, chatID int64) (string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	chat, err := c.bot.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return "", fmt.Errorf("failed to get chat %d: %w", chatID, err)
	}
	return chat.Username, nil
}

// CreateInviteLink generates a fresh invite link for chatID.
func (c *Client) CreateInviteLink(ctx context.Context, chatID int64) (string, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	link, err := c.bot.CreateChatInviteLink(ctx, &bot.CreateChatInviteLinkParams{ChatID: chatID})
	if err != nil {
		return "", fmt.Errorf("failed to create invite link for chat %d: %w", chatID, err)
	}
	return link.InviteLink, nil
}

// SendMessage delivers a plain text message to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// FetchMessage reads one channel message for the bulk reindexer. The Bot
// API offers no history call, so the message is forwarded to the log channel
// to read its media and caption; the forwarded copy is deleted afterwards.
func (c *Client) FetchMessage(ctx context.Context, chatID int64, messageID int) (*ingest.Media, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	fwd, err := c.bot.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:              c.logChannelID,
		FromChatID:          chatID,
		MessageID:           messageID,
		DisableNotification: true,
	})
	if err != nil {
		if isMessageMissing(err) {
			return nil, ingest.ErrMessageMissing
		}
		return nil, fmt.Errorf("failed to fetch message %d in chat %d: %w", messageID, chatID, err)
	}

	media := ingest.FromMessage(fwd)
	if media != nil {
		// The forwarded copy lives in the log channel; the index must point
		// at the original.
		media.ChatID = chatID
		media.MessageID = messageID
	}

	if _, err := c.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    c.logChannelID,
		MessageID: fwd.ID,
	}); err != nil {
		c.logger.DebugContext(ctx, "Failed to delete forwarded copy",
			"message_id", fwd.ID, "error", err)
	}

	return media, nil
}

// isMessageMissing reports whether a forward failure means the requested
// message id does not exist.
func isMessageMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "message to forward not found") ||
		strings.Contains(msg, "message not found") ||
		strings.Contains(msg, "message_id_invalid")
}
