// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"fmt"

	"github.com/Smale3886/sakura-haruno/internal/api/telegram"
	"github.com/Smale3886/sakura-haruno/internal/tgmarkup"
)

type action int

const (
	actionKick action = iota
	actionBan
	actionMute
	actionUnmute
)

func (a action) String() string {
	switch a {
	case actionKick:
		return "kick"
	case actionBan:
		return "ban"
	case actionMute:
		return "mute"
	case actionUnmute:
		return "unmute"
	}
	return "unknown"
}

// isAdmin reports whether the user can administer the chat. It fails closed:
// outside of groups, or when the membership lookup errors out, the user is
// not an admin.
func (b *Bot) isAdmin(ctx context.Context, chat telegram.Chat, userID int64) bool {
	if !chat.IsGroup() {
		return false
	}
	member, err := b.tg.GetChatMember(ctx, chat.ID, userID)
	if err != nil {
		b.logf("Checking admin status of %d in chat %d failed: %v", userID, chat.ID, err)
		return false
	}
	return member.IsAdmin()
}

// moderate executes a moderation command. The command message must be a reply
// to a message of the user being moderated. Every failure mode ends in a
// user-visible reply, nothing propagates past this point.
func (b *Bot) moderate(ctx context.Context, a action, msg *telegram.Message) error {
	if !b.isAdmin(ctx, msg.Chat, msg.From.ID) {
		return b.reply(ctx, msg, tgmarkup.Plain("You must be an admin to use this command, desu!"), nil)
	}

	if msg.ReplyTo == nil || msg.ReplyTo.From == nil {
		hint := fmt.Sprintf("Please reply to a user's message with /%s to %s them, desu!", a, a)
		return b.reply(ctx, msg, tgmarkup.Plain(hint), nil)
	}
	target := msg.ReplyTo.From

	var err error
	switch a {
	case actionKick:
		// Telegram has no dedicated kick method. Banning and immediately
		// unbanning removes the user but lets them rejoin later.
		err = b.tg.BanChatMember(ctx, msg.Chat.ID, target.ID)
		if err == nil {
			err = b.tg.UnbanChatMember(ctx, msg.Chat.ID, target.ID, false)
		}
	case actionBan:
		err = b.tg.BanChatMember(ctx, msg.Chat.ID, target.ID)
	case actionMute:
		err = b.tg.RestrictChatMember(ctx, msg.Chat.ID, target.ID, telegram.ChatPermissions{})
	case actionUnmute:
		err = b.tg.RestrictChatMember(ctx, msg.Chat.ID, target.ID, telegram.ChatPermissions{
			CanSendMessages:      true,
			CanSendMediaMessages: true,
			CanSendPolls:         true,
			CanSendOtherMessages: true,
		})
	}
	if err != nil {
		b.logf("Moderation action %s on %d in chat %d failed: %v", a, target.ID, msg.Chat.ID, err)
		return b.reply(ctx, msg, tgmarkup.Plain(failureText(a)), nil)
	}

	return b.reply(ctx, msg, tgmarkup.Plain(successText(a, target.FirstName)), nil)
}

func successText(a action, name string) string {
	switch a {
	case actionKick:
		return fmt.Sprintf("Sayonara, %s-kun! Hehe~ 😜", name)
	case actionBan:
		return fmt.Sprintf("The ban hammer has been dropped on %s-kun! 🔨", name)
	case actionMute:
		return fmt.Sprintf("Shhh! %s-kun has been silenced! Muted, desu! 🤫", name)
	case actionUnmute:
		return fmt.Sprintf("Yay! %s-kun can speak again, desu! 🎉", name)
	}
	return ""
}

func failureText(a action) string {
	switch a {
	case actionKick:
		return "I couldn't kick them, senpai! Maybe they're too powerful for me, baka! 😭"
	case actionBan:
		return "I couldn't ban them, senpai! It seems my powers have been challenged! 😟"
	case actionMute:
		return "I couldn't mute them, senpai! It's not working, baka! 😫"
	case actionUnmute:
		return "I couldn't unmute them, senpai! It's not working, ne! 😫"
	}
	return ""
}
