// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package bot implements the Sakura Haruna Telegram bot.
//
// The bot greets users with an inline keyboard menu, chats with them in an
// anime persona backed by Gemini and lets group admins kick, ban, mute and
// unmute members by replying to their messages.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Smale3886/sakura-haruno/internal/api/gemini"
	"github.com/Smale3886/sakura-haruno/internal/api/telegram"
	"github.com/Smale3886/sakura-haruno/internal/logger"
	"github.com/Smale3886/sakura-haruno/internal/util/syncx"
	"github.com/Smale3886/sakura-haruno/internal/web"
)

// Opts configures a [Bot].
type Opts struct {
	// Telegram is the Telegram Bot API client. Required.
	Telegram *telegram.Client
	// Gemini is the generative text API client used for chat replies. Required.
	Gemini *gemini.Client
	// Username is the bot's username, used to strip the @botname suffix from
	// commands in groups.
	Username string
	// WebhookSecret, if not empty, is compared with the
	// X-Telegram-Bot-Api-Secret-Token header of incoming webhook requests.
	WebhookSecret string
	// Logf is used for logging. If nil, log.Printf is used.
	Logf logger.Logf
}

// New returns an initialized [Bot].
func New(opts Opts) *Bot {
	if opts.Logf == nil {
		opts.Logf = log.Printf
	}
	return &Bot{
		tg:       opts.Telegram,
		gemini:   opts.Gemini,
		username: opts.Username,
		secret:   opts.WebhookSecret,
		logf:     opts.Logf,
		sessions: syncx.Protect(make(map[sessionKey]state)),
	}
}

// Bot routes incoming Telegram updates to handlers and keeps per-conversation
// state.
type Bot struct {
	tg       *telegram.Client
	gemini   *gemini.Client
	username string
	secret   string
	logf     logger.Logf

	sessions *syncx.Protected[map[sessionKey]state]
}

// sessionKey identifies a conversation. Each user has their own state even
// inside a shared group chat.
type sessionKey struct {
	chatID int64
	userID int64
}

type state int

const (
	stateIdle state = iota
	stateChatting
)

// HandleTelegramWebhook is the handler of Telegram bot API webhook requests.
//
// Any error past the secret token check is logged and answered with HTTP 200,
// because otherwise Telegram will keep retrying the update indefinitely.
func (b *Bot) HandleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if b.secret != "" && r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != b.secret {
		web.RespondJSONError(w, r, web.ErrNotFound)
		return
	}

	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		web.RespondJSONError(w, r, fmt.Errorf("decoding update: %w", err))
		return
	}

	if err := b.HandleUpdate(r.Context(), upd); err != nil {
		b.logf("Handling update %d failed: %v", upd.ID, err)
	}
	jsonOK(w)
}

// HandleUpdate routes a single update. The returned error is for logging
// only; every user-facing failure is already converted into a reply by the
// time HandleUpdate returns.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		return b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil && upd.Message.Text != "":
		return b.handleMessage(ctx, upd.Message)
	}
	return nil
}

func (b *Bot) session(chatID, userID int64) state {
	var s state
	b.sessions.RAccess(func(m map[sessionKey]state) {
		s = m[sessionKey{chatID, userID}]
	})
	return s
}

func (b *Bot) setSession(chatID, userID int64, s state) {
	b.sessions.Access(func(m map[sessionKey]state) {
		m[sessionKey{chatID, userID}] = s
	})
}

func jsonOK(w http.ResponseWriter) {
	var res struct {
		Status string `json:"status"`
	}
	res.Status = "success"
	web.RespondJSON(w, res)
}
