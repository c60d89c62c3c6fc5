// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package telegram provides a client for a subset of the Telegram Bot API
// that a chat bot needs. See https://core.telegram.org/bots/api.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Smale3886/sakura-haruno/internal/request"
	"github.com/Smale3886/sakura-haruno/internal/tgmarkup"
)

// APIEndpoint is the base URL of the Telegram Bot API.
const APIEndpoint = "https://api.telegram.org"

// N attempts to retry a rate limited request.
const sendRetryLimit = 5

// Client is a Telegram Bot API client.
type Client struct {
	// Token is the bot token obtained from BotFather.
	Token string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data from
	// error messages.
	Scrubber *strings.Replacer
}

// User represents a Telegram user or bot.
// https://core.telegram.org/bots/api#user
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the name under which the user shows up in chats.
func (u User) DisplayName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// Chat represents a Telegram chat.
// https://core.telegram.org/bots/api#chat
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // "private", "group", "supergroup" or "channel"
}

// IsGroup reports whether the chat is a group or a supergroup.
func (c Chat) IsGroup() bool { return c.Type == "group" || c.Type == "supergroup" }

// Message represents a Telegram message.
// https://core.telegram.org/bots/api#message
type Message struct {
	ID      int64    `json:"message_id"`
	From    *User    `json:"from,omitempty"`
	Chat    Chat     `json:"chat"`
	Text    string   `json:"text,omitempty"`
	ReplyTo *Message `json:"reply_to_message,omitempty"`
}

// CallbackQuery represents an incoming callback query from an inline keyboard
// button. https://core.telegram.org/bots/api#callbackquery
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Update represents an incoming update.
// https://core.telegram.org/bots/api#update
type Update struct {
	ID            int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// ChatMember holds information about one member of a chat.
// https://core.telegram.org/bots/api#chatmember
type ChatMember struct {
	// Status is one of "creator", "administrator", "member", "restricted",
	// "left" or "kicked".
	Status string `json:"status"`
	User   User   `json:"user"`
}

// IsAdmin reports whether the member can administer the chat.
func (m ChatMember) IsAdmin() bool {
	return m.Status == "creator" || m.Status == "administrator"
}

// ChatPermissions describes actions that a non-administrator user is allowed
// to take in a chat. https://core.telegram.org/bots/api#chatpermissions
type ChatPermissions struct {
	CanSendMessages      bool `json:"can_send_messages"`
	CanSendMediaMessages bool `json:"can_send_media_messages"`
	CanSendPolls         bool `json:"can_send_polls"`
	CanSendOtherMessages bool `json:"can_send_other_messages"`
}

// InlineKeyboardButton represents one button of an inline keyboard.
// https://core.telegram.org/bots/api#inlinekeyboardbutton
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// InlineKeyboard is a grid of inline keyboard buttons.
type InlineKeyboard [][]InlineKeyboardButton

// ReplyMarkup wraps an inline keyboard for attaching to an outgoing message.
type ReplyMarkup struct {
	InlineKeyboard InlineKeyboard `json:"inline_keyboard"`
}

// ReplyParameters describes the message being replied to.
// https://core.telegram.org/bots/api#replyparameters
type ReplyParameters struct {
	MessageID int64 `json:"message_id"`
}

// LinkPreviewOptions describes the options used for link preview generation.
type LinkPreviewOptions struct {
	IsDisabled bool `json:"is_disabled"`
}

// OutgoingMessage is the request body of the sendMessage method.
// https://core.telegram.org/bots/api#sendmessage
type OutgoingMessage struct {
	ChatID             int64               `json:"chat_id"`
	ReplyMarkup        *ReplyMarkup        `json:"reply_markup,omitempty"`
	ReplyParameters    *ReplyParameters    `json:"reply_parameters,omitempty"`
	LinkPreviewOptions *LinkPreviewOptions `json:"link_preview_options,omitempty"`
	tgmarkup.Message
}

// https://core.telegram.org/bots/api#making-requests
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// call invokes a Bot API method with the given arguments and unmarshals the
// result into Result. Requests rejected with HTTP 429 are retried after the
// duration Telegram asks for, up to sendRetryLimit attempts.
func call[Result any](ctx context.Context, c *Client, method string, args any) (Result, error) {
	var zero Result

	var (
		resp apiResponse
		err  error
	)
	for range sendRetryLimit {
		resp, err = request.Make[apiResponse](ctx, request.Params{
			Method:     http.MethodPost,
			URL:        APIEndpoint + "/bot" + c.Token + "/" + method,
			Body:       args,
			HTTPClient: c.HTTPClient,
			Scrubber:   c.Scrubber,
		})
		if err == nil {
			break
		}
		retryable, wait := isRateLimited(err)
		if !retryable {
			return zero, err
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	if err != nil {
		return zero, err
	}
	if !resp.OK {
		return zero, errors.New(method + ": " + resp.Description)
	}

	if _, ok := any(zero).(request.IgnoreResponse); ok {
		return zero, nil
	}
	var res Result
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		return zero, err
	}
	return res, nil
}

func isRateLimited(err error) (retryable bool, wait time.Duration) {
	var statusErr *request.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		return false, 0
	}

	var errorResponse struct {
		Parameters struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(statusErr.Body, &errorResponse); err != nil {
		return false, 0
	}

	return true, time.Duration(errorResponse.Parameters.RetryAfter) * time.Second
}

// GetMe returns basic information about the bot.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	return call[User](ctx, c, "getMe", nil)
}

// SetWebhook specifies the URL to receive incoming updates via an outgoing
// webhook. secret, if not empty, is sent back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header of every webhook request.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	args := map[string]string{"url": url}
	if secret != "" {
		args["secret_token"] = secret
	}
	_, err := call[request.IgnoreResponse](ctx, c, "setWebhook", args)
	return err
}

// GetUpdates receives incoming updates using long polling, starting from
// offset. timeout is the long polling timeout in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	return call[[]Update](ctx, c, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": timeout,
	})
}

// SendMessage sends a text message and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, msg OutgoingMessage) (Message, error) {
	return call[Message](ctx, c, "sendMessage", msg)
}

// EditMessageText edits text and reply markup of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, msg tgmarkup.Message, markup *ReplyMarkup) error {
	args := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       msg.Text,
	}
	if len(msg.Entities) > 0 {
		args["entities"] = msg.Entities
	}
	if markup != nil {
		args["reply_markup"] = markup
	}
	_, err := call[request.IgnoreResponse](ctx, c, "editMessageText", args)
	return err
}

// AnswerCallbackQuery acknowledges a callback query so the client stops
// displaying a progress indicator on the pressed button.
func (c *Client) AnswerCallbackQuery(ctx context.Context, id string) error {
	_, err := call[request.IgnoreResponse](ctx, c, "answerCallbackQuery", map[string]string{
		"callback_query_id": id,
	})
	return err
}

// GetChatMember returns information about a member of a chat.
func (c *Client) GetChatMember(ctx context.Context, chatID, userID int64) (ChatMember, error) {
	return call[ChatMember](ctx, c, "getChatMember", map[string]int64{
		"chat_id": chatID,
		"user_id": userID,
	})
}

// BanChatMember bans a user in a group or a supergroup.
func (c *Client) BanChatMember(ctx context.Context, chatID, userID int64) error {
	_, err := call[request.IgnoreResponse](ctx, c, "banChatMember", map[string]int64{
		"chat_id": chatID,
		"user_id": userID,
	})
	return err
}

// UnbanChatMember lifts a ban, allowing the user to rejoin via link or invite.
// only_if_banned keeps the call from removing a present member from the chat.
func (c *Client) UnbanChatMember(ctx context.Context, chatID, userID int64, onlyIfBanned bool) error {
	_, err := call[request.IgnoreResponse](ctx, c, "unbanChatMember", map[string]any{
		"chat_id":        chatID,
		"user_id":        userID,
		"only_if_banned": onlyIfBanned,
	})
	return err
}

// RestrictChatMember changes what a user is allowed to do in a supergroup.
func (c *Client) RestrictChatMember(ctx context.Context, chatID, userID int64, perms ChatPermissions) error {
	_, err := call[request.IgnoreResponse](ctx, c, "restrictChatMember", map[string]any{
		"chat_id":     chatID,
		"user_id":     userID,
		"permissions": perms,
	})
	return err
}
