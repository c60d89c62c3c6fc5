// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Sakura is an anime-themed Telegram group management bot.

Sakura greets users with an inline keyboard menu, chats with them in the
persona of Sakura Haruna (powered by Gemini) and lets group admins kick, ban,
mute and unmute members by replying to their messages with the corresponding
command.

# Usage

	$ sakura [flags...]

Sakura is configured through environment variables, loaded from a .env file in
the current directory if one exists:

	TELEGRAM_BOT_TOKEN: Telegram Bot API token (required).
	GEMINI_API_KEY: Gemini API key (required).
	TG_SECRET: secret token used to verify webhook requests.
	HOST: host on which Sakura is running, used to register the webhook.

By default Sakura receives updates by long polling the Telegram Bot API. In
production mode (the -prod flag) it registers a webhook at https://HOST/telegram
instead and expects Telegram to deliver updates there.
*/
package main

import (
	_ "embed"

	"github.com/Smale3886/sakura-haruno/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
