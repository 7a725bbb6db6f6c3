package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/svnig/filesearchbot/internal/gate"
	"github.com/svnig/filesearchbot/internal/search"
)

// Callback data values for the owner configuration panel.
const (
	callbackToggleMode = "cfg:toggle"
	callbackReload     = "cfg:reload"
)

// RegisteredHandler represents a handler with its pattern and middleware.
// It encapsulates all information needed to register a handler with the bot.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all command and
// callback handlers, each configured with its middleware chain. Inline
// queries and channel posts cannot be matched by pattern and are routed
// through the default handler instead (see NewDefaultHandler).
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	gated := []tgbot.Middleware{RequireMembership(deps)}
	ownerOnly := []tgbot.Middleware{OwnerOnly(deps)}

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  gated,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  gated,
	}
	handlers["/search"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "search",
		Handler:     NewSearchHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  gated,
	}
	handlers["/stats"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "stats",
		Handler:     NewStatsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  gated,
	}

	handlers["/settings"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "settings",
		Handler:     NewSettingsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/admin"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "admin",
		Handler:     NewAdminHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/indexall"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "indexall",
		Handler:     NewIndexAllHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/broadcast"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "broadcast",
		Handler:     NewBroadcastHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}

	handlers["recheck"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     gate.CallbackRecheck,
		Handler:     NewRecheckHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}
	handlers["page"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     search.CallbackPagePrefix,
		Handler:     NewPageHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  gated,
	}
	handlers["config"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "cfg:",
		Handler:     NewConfigCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  ownerOnly,
	}

	return handlers
}
