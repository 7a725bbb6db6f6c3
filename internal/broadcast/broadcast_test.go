package broadcast_test

import (
	"context"
	"errors"
	"testing"

	"github.com/svnig/filesearchbot/internal/broadcast"
	"github.com/svnig/filesearchbot/internal/database"
)

// userListStore serves a fixed recipient list; everything else panics if
// touched.
type userListStore struct {
	database.Store
	ids []int64
	err error
}

func (s *userListStore) ListUserIDs(_ context.Context) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

// fakeSender fails delivery for the configured chat ids.
type fakeSender struct {
	failFor map[int64]bool
	sent    []int64
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, _ string) error {
	if f.failFor[chatID] {
		return errors.New("forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func TestBroadcastCountsPartialFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ids        []int64
		failFor    map[int64]bool
		wantSent   int
		wantFailed int
	}{
		{name: "all delivered", ids: []int64{1, 2, 3}, wantSent: 3, wantFailed: 0},
		{name: "some blocked", ids: []int64{1, 2, 3, 4}, failFor: map[int64]bool{2: true, 4: true}, wantSent: 2, wantFailed: 2},
		{name: "all blocked", ids: []int64{1, 2}, failFor: map[int64]bool{1: true, 2: true}, wantSent: 0, wantFailed: 2},
		{name: "no recipients", ids: nil, wantSent: 0, wantFailed: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sender := &fakeSender{failFor: tc.failFor}
			d := broadcast.NewDispatcher(&userListStore{ids: tc.ids}, sender, nil)

			result, err := d.Broadcast(context.Background(), "hello")
			if err != nil {
				t.Fatalf("broadcast failed: %v", err)
			}
			if result.Sent != tc.wantSent || result.Failed != tc.wantFailed {
				t.Errorf("expected sent=%d failed=%d, got sent=%d failed=%d",
					tc.wantSent, tc.wantFailed, result.Sent, result.Failed)
			}
		})
	}
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	t.Parallel()

	// A failure in the middle must not stop delivery to later recipients.
	sender := &fakeSender{failFor: map[int64]bool{2: true}}
	d := broadcast.NewDispatcher(&userListStore{ids: []int64{1, 2, 3}}, sender, nil)

	if _, err := d.Broadcast(context.Background(), "hello"); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	if len(sender.sent) != 2 || sender.sent[0] != 1 || sender.sent[1] != 3 {
		t.Errorf("expected deliveries to users 1 and 3, got %v", sender.sent)
	}
}

func TestBroadcastRecipientListFailure(t *testing.T) {
	t.Parallel()

	d := broadcast.NewDispatcher(&userListStore{err: errors.New("db closed")}, &fakeSender{}, nil)

	if _, err := d.Broadcast(context.Background(), "hello"); err == nil {
		t.Error("expected error when recipients cannot be listed")
	}
}

func TestBroadcastHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := broadcast.NewDispatcher(&userListStore{ids: []int64{1, 2, 3}}, &fakeSender{}, nil)
	result, err := d.Broadcast(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result.Sent != 0 {
		t.Errorf("expected no deliveries after cancellation, got %d", result.Sent)
	}
}
