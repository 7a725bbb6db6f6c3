// Package gate implements the membership gate that decides whether a
// requester may use any bot feature. A requester must be a member of both the
// configured channel and the configured group; any ambiguity (missing user,
// bot not in chat, transport failure) resolves to denial.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-telegram/bot/models"

	"github.com/svnig/filesearchbot/internal/database"
)

// CallbackRecheck is the callback action carried by the re-check button on
// the remediation keyboard.
const CallbackRecheck = "recheck"

// fallbackLink is used when neither a public handle nor a fresh invite link
// is available for a required chat.
const fallbackLink = "https://t.me"

// MemberStatus is a chat membership status as reported by the transport.
type MemberStatus string

// Membership statuses. Only the first three authorize access.
const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// ChatClient is the transport surface the gate needs: membership queries,
// chat metadata for join links, and message delivery for the first-seen
// notification.
type ChatClient interface {
	// GetChatMemberStatus returns the membership status of userID in chatID.
	GetChatMemberStatus(ctx context.Context, chatID, userID int64) (MemberStatus, error)

	// GetChatUsername returns the public handle of chatID, or "" if the chat
	// is private.
	GetChatUsername(ctx context.Context, chatID int64) (string, error)

	// CreateInviteLink generates a fresh invite link for chatID.
	CreateInviteLink(ctx context.Context, chatID int64) (string, error)

	// SendMessage delivers a plain text message to chatID.
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Decision is the outcome of an authorization check. When Verified is false,
// Remediation carries the keyboard with join links and a re-check button.
// Decisions are computed fresh on every request and never cached.
type Decision struct {
	Verified    bool
	Remediation *models.InlineKeyboardMarkup
}

// Gate checks the two required memberships and maintains the user registry as
// a side effect of every check.
type Gate struct {
	client       ChatClient
	store        database.Store
	logger       *slog.Logger
	channelID    int64
	groupID      int64
	logChannelID int64

	mu        sync.Mutex
	linkCache map[int64]string
}

// New creates a Gate requiring membership in channelID and groupID.
// logChannelID receives one-line first-seen notifications; zero disables them.
func New(client ChatClient, store database.Store, logger *slog.Logger, channelID, groupID, logChannelID int64) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		client:       client,
		store:        store,
		logger:       logger.With("component", "gate"),
		channelID:    channelID,
		groupID:      groupID,
		logChannelID: logChannelID,
		linkCache:    make(map[int64]string),
	}
}

// Authorize checks whether the user may use the bot. It always upserts the
// user record first (name refresh) and, when the record is newly created,
// sends a best-effort notification to the log channel. Membership failures of
// any kind produce an unverified decision with a remediation keyboard.
func (g *Gate) Authorize(ctx context.Context, userID int64, displayName string) Decision {
	g.registerUser(ctx, userID, displayName)

	for _, chatID := range []int64{g.channelID, g.groupID} {
		status, err := g.client.GetChatMemberStatus(ctx, chatID, userID)
		if err != nil {
			// Transient outages and genuine non-membership both deny, but
			// only the former is worth a warning.
			g.logger.WarnContext(ctx, "Membership check failed, denying access",
				"user_id", userID, "chat_id", chatID, "error", err)
			return Decision{Verified: false, Remediation: g.remediationKeyboard(ctx)}
		}
		if !authorizedStatus(status) {
			g.logger.DebugContext(ctx, "User not a member",
				"user_id", userID, "chat_id", chatID, "status", status)
			return Decision{Verified: false, Remediation: g.remediationKeyboard(ctx)}
		}
	}

	return Decision{Verified: true}
}

func authorizedStatus(status MemberStatus) bool {
	switch status {
	case StatusCreator, StatusAdministrator, StatusMember:
		return true
	default:
		return false
	}
}

// registerUser upserts the user record and emits the first-seen notification
// when the upsert created a new row. Both steps are best-effort; failures
// never block the membership check.
func (g *Gate) registerUser(ctx context.Context, userID int64, displayName string) {
	created, err := g.store.UpsertUser(ctx, &database.User{
		UserID:      userID,
		DisplayName: displayName,
	})
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to upsert user", "user_id", userID, "error", err)
		return
	}

	if created && g.logChannelID != 0 {
		text := fmt.Sprintf("👤 New user: %s (%d)", displayName, userID)
		if err := g.client.SendMessage(ctx, g.logChannelID, text); err != nil {
			g.logger.WarnContext(ctx, "Failed to send first-seen notification",
				"user_id", userID, "error", err)
		}
	}
}

// remediationKeyboard builds the join-channel / join-group / re-check keyboard.
func (g *Gate) remediationKeyboard(ctx context.Context) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📢 Join Channel", URL: g.joinLink(ctx, g.channelID)},
				{Text: "👥 Join Group", URL: g.joinLink(ctx, g.groupID)},
			},
			{
				{Text: "🔄 I've Joined", CallbackData: CallbackRecheck},
			},
		},
	}
}

// joinLink resolves a join URL for chatID: public handle first, then a
// freshly generated invite link, then a generic landing link. Resolved links
// are cached for the process lifetime.
func (g *Gate) joinLink(ctx context.Context, chatID int64) string {
	g.mu.Lock()
	if link, ok := g.linkCache[chatID]; ok {
		g.mu.Unlock()
		return link
	}
	g.mu.Unlock()

	link := g.resolveLink(ctx, chatID)
	if link != fallbackLink {
		g.mu.Lock()
		g.linkCache[chatID] = link
		g.mu.Unlock()
	}
	return link
}

func (g *Gate) resolveLink(ctx context.Context, chatID int64) string {
	username, err := g.client.GetChatUsername(ctx, chatID)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to fetch chat info for join link",
			"chat_id", chatID, "error", err)
	} else if username != "" {
		return "https://t.me/" + username
	}

	link, err := g.client.CreateInviteLink(ctx, chatID)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to create invite link",
			"chat_id", chatID, "error", err)
		return fallbackLink
	}
	return link
}
