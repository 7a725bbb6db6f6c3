package gate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/svnig/filesearchbot/internal/database"
	"github.com/svnig/filesearchbot/internal/gate"
)

const (
	testChannelID    = int64(-1001)
	testGroupID      = int64(-1002)
	testLogChannelID = int64(-1003)
)

// fakeChatClient scripts membership answers per chat and records sent
// messages.
type fakeChatClient struct {
	statuses  map[int64]gate.MemberStatus
	statusErr map[int64]error
	usernames map[int64]string
	messages  []string
	msgChats  []int64
}

func (f *fakeChatClient) GetChatMemberStatus(_ context.Context, chatID, _ int64) (gate.MemberStatus, error) {
	if err := f.statusErr[chatID]; err != nil {
		return "", err
	}
	return f.statuses[chatID], nil
}

func (f *fakeChatClient) GetChatUsername(_ context.Context, chatID int64) (string, error) {
	return f.usernames[chatID], nil
}

func (f *fakeChatClient) CreateInviteLink(_ context.Context, chatID int64) (string, error) {
	return "https://t.me/+invite", nil
}

func (f *fakeChatClient) SendMessage(_ context.Context, chatID int64, text string) error {
	f.msgChats = append(f.msgChats, chatID)
	f.messages = append(f.messages, text)
	return nil
}

// fakeStore overrides just the user registry; everything else panics if
// touched.
type fakeStore struct {
	database.Store
	seen map[int64]bool
	err  error
}

func (f *fakeStore) UpsertUser(_ context.Context, u *database.User) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	created := !f.seen[u.UserID]
	f.seen[u.UserID] = true
	return created, nil
}

func newTestGate(client *fakeChatClient, store *fakeStore) *gate.Gate {
	return gate.New(client, store, nil, testChannelID, testGroupID, testLogChannelID)
}

func bothMember() *fakeChatClient {
	return &fakeChatClient{
		statuses: map[int64]gate.MemberStatus{
			testChannelID: gate.StatusMember,
			testGroupID:   gate.StatusMember,
		},
		statusErr: map[int64]error{},
		usernames: map[int64]string{},
	}
}

func TestAuthorizeStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		channel      gate.MemberStatus
		group        gate.MemberStatus
		wantVerified bool
	}{
		{name: "member of both", channel: gate.StatusMember, group: gate.StatusMember, wantVerified: true},
		{name: "admin counts as member", channel: gate.StatusAdministrator, group: gate.StatusCreator, wantVerified: true},
		{name: "left the channel", channel: gate.StatusLeft, group: gate.StatusMember, wantVerified: false},
		{name: "left the group", channel: gate.StatusMember, group: gate.StatusLeft, wantVerified: false},
		{name: "kicked from group", channel: gate.StatusMember, group: gate.StatusKicked, wantVerified: false},
		{name: "restricted does not count", channel: gate.StatusRestricted, group: gate.StatusMember, wantVerified: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := bothMember()
			client.statuses[testChannelID] = tc.channel
			client.statuses[testGroupID] = tc.group

			g := newTestGate(client, &fakeStore{seen: map[int64]bool{7: true}})
			decision := g.Authorize(context.Background(), 7, "Test User")

			if decision.Verified != tc.wantVerified {
				t.Errorf("expected verified=%v, got %v", tc.wantVerified, decision.Verified)
			}
			if !tc.wantVerified && decision.Remediation == nil {
				t.Error("expected remediation keyboard on denial")
			}
			if tc.wantVerified && decision.Remediation != nil {
				t.Error("expected no remediation keyboard on success")
			}
		})
	}
}

func TestAuthorizeFailsClosedOnTransportError(t *testing.T) {
	t.Parallel()

	client := bothMember()
	client.statusErr[testGroupID] = errors.New("bot is not a member of the chat")

	g := newTestGate(client, &fakeStore{seen: map[int64]bool{7: true}})
	decision := g.Authorize(context.Background(), 7, "Test User")

	if decision.Verified {
		t.Error("expected denial when membership cannot be determined")
	}
	if decision.Remediation == nil {
		t.Error("expected remediation keyboard on fail-closed denial")
	}
}

func TestAuthorizeSurvivesRegistryFailure(t *testing.T) {
	t.Parallel()

	client := bothMember()
	g := newTestGate(client, &fakeStore{err: errors.New("disk full")})

	decision := g.Authorize(context.Background(), 7, "Test User")
	if !decision.Verified {
		t.Error("registry failure must not block a valid member")
	}
}

func TestFirstSeenNotification(t *testing.T) {
	t.Parallel()

	client := bothMember()
	store := &fakeStore{seen: map[int64]bool{}}
	g := newTestGate(client, store)

	g.Authorize(context.Background(), 7, "Ada")
	g.Authorize(context.Background(), 7, "Ada")

	if len(client.messages) != 1 {
		t.Fatalf("expected exactly one first-seen notification, got %d", len(client.messages))
	}
	if client.msgChats[0] != testLogChannelID {
		t.Errorf("notification sent to chat %d, expected log channel %d", client.msgChats[0], testLogChannelID)
	}
	if !strings.Contains(client.messages[0], "Ada") {
		t.Errorf("notification should carry the display name, got %q", client.messages[0])
	}
}

func TestRemediationKeyboard(t *testing.T) {
	t.Parallel()

	client := bothMember()
	client.statuses[testChannelID] = gate.StatusLeft
	client.usernames[testChannelID] = "mychannel"
	// Group has no public handle; the invite link fallback applies.

	g := newTestGate(client, &fakeStore{seen: map[int64]bool{7: true}})
	decision := g.Authorize(context.Background(), 7, "Test User")

	kb := decision.Remediation
	if kb == nil {
		t.Fatal("expected remediation keyboard")
	}
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %d", len(kb.InlineKeyboard))
	}

	joinRow := kb.InlineKeyboard[0]
	if len(joinRow) != 2 {
		t.Fatalf("expected 2 join buttons, got %d", len(joinRow))
	}
	if joinRow[0].URL != "https://t.me/mychannel" {
		t.Errorf("channel button should use the public handle, got %q", joinRow[0].URL)
	}
	if joinRow[1].URL != "https://t.me/+invite" {
		t.Errorf("group button should use the invite link, got %q", joinRow[1].URL)
	}

	recheckRow := kb.InlineKeyboard[1]
	if len(recheckRow) != 1 || recheckRow[0].CallbackData != gate.CallbackRecheck {
		t.Errorf("expected a single re-check button with data %q, got %+v", gate.CallbackRecheck, recheckRow)
	}
}
