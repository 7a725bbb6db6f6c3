// Package handlers contains Telegram bot command, callback, and inline
// handlers, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OwnerOnly creates a middleware that restricts a handler to the configured
// bot owner. Non-owners receive a denial message (or callback alert) and
// processing stops.
func OwnerOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "owner_only")

			switch {
			case update.Message != nil && update.Message.From != nil:
				if !deps.Config.IsOwner(update.Message.From.ID) {
					log.WarnContext(ctx, "Unauthorized owner command attempt",
						"user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)
					_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
						ChatID: update.Message.Chat.ID,
						Text:   deps.Config.Messages.NotOwner,
					})
					if err != nil {
						log.ErrorContext(ctx, "Failed to send denial message", "error", err)
					}
					return
				}

			case update.CallbackQuery != nil:
				if !deps.Config.IsOwner(update.CallbackQuery.From.ID) {
					log.WarnContext(ctx, "Unauthorized owner callback attempt",
						"user_id", update.CallbackQuery.From.ID)
					answerCallback(ctx, b, log, update.CallbackQuery.ID, deps.Config.Messages.NotOwner, true)
					return
				}
			}

			next(ctx, b, update)
		}
	}
}

// RequireMembership creates a middleware that runs the access gate before a
// handler. Unverified message senders receive the join prompt with the
// remediation keyboard; unverified callback senders receive an alert.
// Verification is checked fresh on every request and never cached.
func RequireMembership(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "require_membership")

			switch {
			case update.Message != nil && update.Message.From != nil:
				decision := deps.Gate.Authorize(ctx, update.Message.From.ID, displayName(update.Message.From))
				if !decision.Verified {
					_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
						ChatID:      update.Message.Chat.ID,
						Text:        deps.Config.Messages.JoinPrompt,
						ReplyMarkup: decision.Remediation,
					})
					if err != nil {
						log.ErrorContext(ctx, "Failed to send join prompt", "error", err)
					}
					return
				}

			case update.CallbackQuery != nil:
				from := update.CallbackQuery.From
				decision := deps.Gate.Authorize(ctx, from.ID, displayName(&from))
				if !decision.Verified {
					answerCallback(ctx, b, log, update.CallbackQuery.ID, deps.Config.Messages.JoinPrompt, true)
					return
				}
			}

			next(ctx, b, update)
		}
	}
}
