// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Smale3886/sakura-haruno/internal/api/telegram"
	"github.com/Smale3886/sakura-haruno/internal/tgmarkup"
)

// Callback tags attached to inline keyboard buttons.
const (
	callbackChatStart   = "chat_start"
	callbackManageGroup = "manage_group"
	callbackHelpMenu    = "help_menu"
	callbackMainMenu    = "main_menu"
)

const helpText = `Here's a list of things I can do, desu! 💖

- **Chat with me:** Just send me a message and I'll reply with my kawaii anime personality!
- **Group Management:** Admins can use the buttons to kick, ban, or mute users.
- **Commands:**
  - ` + "`/start`" + `: Shows the main menu.
  - ` + "`/help`" + `: Shows this help message.
  - ` + "`/kick`" + `: Kicks a user from the group (admin only).
  - ` + "`/ban`" + `: Bans a user from the group (admin only).
  - ` + "`/mute`" + `: Mutes a user (admin only).
  - ` + "`/unmute`" + `: Unmutes a user (admin only).

If you have any questions, feel free to ask me, ne~!`

func mainMenuKeyboard() *telegram.ReplyMarkup {
	return &telegram.ReplyMarkup{
		InlineKeyboard: telegram.InlineKeyboard{
			{{Text: "🌸 Chat with Sakura", CallbackData: callbackChatStart}},
			{{Text: "🛠️ Group Management", CallbackData: callbackManageGroup}},
			{{Text: "❓ Help", CallbackData: callbackHelpMenu}},
		},
	}
}

func manageMenuKeyboard() *telegram.ReplyMarkup {
	return &telegram.ReplyMarkup{
		InlineKeyboard: telegram.InlineKeyboard{
			{
				{Text: "Kick User", CallbackData: "kick_user"},
				{Text: "Ban User", CallbackData: "ban_user"},
			},
			{
				{Text: "Mute User", CallbackData: "mute_user"},
				{Text: "Unmute User", CallbackData: "unmute_user"},
			},
			{{Text: "⏪ Back to Main Menu", CallbackData: callbackMainMenu}},
		},
	}
}

func backKeyboard() *telegram.ReplyMarkup {
	return &telegram.ReplyMarkup{
		InlineKeyboard: telegram.InlineKeyboard{
			{{Text: "⏪ Back to Main Menu", CallbackData: callbackMainMenu}},
		},
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if cmd, ok := b.parseCommand(msg.Text); ok {
		return b.handleCommand(ctx, cmd, msg)
	}

	if b.session(msg.Chat.ID, msg.From.ID) == stateChatting {
		reply := b.respond(ctx, msg.Text)
		return b.reply(ctx, msg, tgmarkup.FromMarkdown(reply), nil)
	}

	// Text outside of chat mode is none of our business.
	return nil
}

// parseCommand extracts the command name from a message that begins with a
// slash. The @botname suffix Telegram appends in groups is stripped.
func (b *Bot) parseCommand(text string) (cmd string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd, _, _ = strings.Cut(text, " ")
	cmd = strings.ToLower(cmd)
	if b.username != "" {
		cmd = strings.TrimSuffix(cmd, "@"+strings.ToLower(b.username))
	}
	return cmd, true
}

func (b *Bot) handleCommand(ctx context.Context, cmd string, msg *telegram.Message) error {
	switch cmd {
	case "/start":
		b.setSession(msg.Chat.ID, msg.From.ID, stateIdle)
		welcome := fmt.Sprintf(
			"Hello, %s-senpai! I am Sakura Haruna, your friendly group management bot, desu! It's so nice to meet you, ne~ ✨\n\nWhat would you like to do? Kawaii~!",
			msg.From.FirstName,
		)
		return b.reply(ctx, msg, tgmarkup.Plain(welcome), mainMenuKeyboard())
	case "/help":
		b.setSession(msg.Chat.ID, msg.From.ID, stateIdle)
		return b.reply(ctx, msg, tgmarkup.FromMarkdown(helpText), backKeyboard())
	case "/kick":
		return b.moderate(ctx, actionKick, msg)
	case "/ban":
		return b.moderate(ctx, actionBan, msg)
	case "/mute":
		return b.moderate(ctx, actionMute, msg)
	case "/unmute":
		return b.moderate(ctx, actionUnmute, msg)
	}
	// Unknown commands are ignored, Telegram shows them to everyone in the
	// group and most of them belong to other bots.
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq.Message == nil {
		return nil
	}
	chat := cq.Message.Chat

	switch cq.Data {
	case callbackChatStart:
		if err := b.tg.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			return err
		}
		b.setSession(chat.ID, cq.From.ID, stateChatting)
		return b.tg.EditMessageText(ctx, chat.ID, cq.Message.ID, tgmarkup.Plain(
			"Yay! Let's chat, senpai! You can talk to me now, desu! Just send me a message! Kawaii~",
		), nil)
	case callbackManageGroup:
		if err := b.tg.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			return err
		}
		b.setSession(chat.ID, cq.From.ID, stateIdle)
		if !b.isAdmin(ctx, chat, cq.From.ID) {
			return b.send(ctx, chat.ID, tgmarkup.Plain("You must be an admin to access this, baka!"), nil)
		}
		return b.tg.EditMessageText(ctx, chat.ID, cq.Message.ID, tgmarkup.Plain(
			"Okay, senpai! How can I help you manage the group? Choose a command, desu!",
		), manageMenuKeyboard())
	case callbackHelpMenu:
		if err := b.tg.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			return err
		}
		b.setSession(chat.ID, cq.From.ID, stateIdle)
		return b.tg.EditMessageText(ctx, chat.ID, cq.Message.ID, tgmarkup.FromMarkdown(helpText), backKeyboard())
	case callbackMainMenu:
		if err := b.tg.AnswerCallbackQuery(ctx, cq.ID); err != nil {
			return err
		}
		b.setSession(chat.ID, cq.From.ID, stateIdle)
		welcome := fmt.Sprintf(
			"Welcome back, %s-senpai! I am Sakura Haruna, desu! What would you like to do now? ✨",
			cq.From.FirstName,
		)
		return b.tg.EditMessageText(ctx, chat.ID, cq.Message.ID, tgmarkup.Plain(welcome), mainMenuKeyboard())
	}

	// Unknown callback tags (including the management menu action buttons,
	// which only describe the slash commands) are silently dropped.
	return nil
}

// reply sends msg as a reply to the message that triggered it.
func (b *Bot) reply(ctx context.Context, to *telegram.Message, msg tgmarkup.Message, markup *telegram.ReplyMarkup) error {
	_, err := b.tg.SendMessage(ctx, telegram.OutgoingMessage{
		ChatID:             to.Chat.ID,
		Message:            msg,
		ReplyMarkup:        markup,
		ReplyParameters:    &telegram.ReplyParameters{MessageID: to.ID},
		LinkPreviewOptions: &telegram.LinkPreviewOptions{IsDisabled: true},
	})
	return err
}

// send sends msg to the chat without replying to anything.
func (b *Bot) send(ctx context.Context, chatID int64, msg tgmarkup.Message, markup *telegram.ReplyMarkup) error {
	_, err := b.tg.SendMessage(ctx, telegram.OutgoingMessage{
		ChatID:             chatID,
		Message:            msg,
		ReplyMarkup:        markup,
		LinkPreviewOptions: &telegram.LinkPreviewOptions{IsDisabled: true},
	})
	return err
}
