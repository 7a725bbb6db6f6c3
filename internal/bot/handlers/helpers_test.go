package handlers

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestCommandArgument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "bare command", text: "/search", want: ""},
		{name: "single argument", text: "/search golang", want: "golang"},
		{name: "multi word argument", text: "/search go tutorial part 1", want: "go tutorial part 1"},
		{name: "surrounding whitespace", text: "/broadcast   hello there  ", want: "hello there"},
		{name: "deep link payload", text: "/start get_42", want: "get_42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := commandArgument(tc.text); got != tc.want {
				t.Errorf("commandArgument(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user *models.User
		want string
	}{
		{name: "nil user", user: nil, want: ""},
		{name: "first name only", user: &models.User{FirstName: "Ada"}, want: "Ada"},
		{name: "full name", user: &models.User{FirstName: "Ada", LastName: "Lovelace"}, want: "Ada Lovelace"},
		{name: "padded names", user: &models.User{FirstName: " Ada ", LastName: " L "}, want: "Ada L"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := displayName(tc.user); got != tc.want {
				t.Errorf("displayName = %q, want %q", got, tc.want)
			}
		})
	}
}
