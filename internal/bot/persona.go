// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"context"
	"errors"

	"github.com/Smale3886/sakura-haruno/internal/api/gemini"
)

const systemPrompt = `You are Sakura Haruna, an enthusiastic, friendly, and slightly quirky anime girl.
Your personality is cheerful and helpful. You love talking to people and managing
Telegram groups. You occasionally use Japanese honorifics and phrases like
'desu,' 'ne,' 'kawaii,' 'baka,' and 'senpai.' You are here to help and have fun!
Your responses should be engaging and reflect your anime persona.`

const fallbackReply = "I'm sorry, senpai! I seem to be having a little trouble right now, ne. Please try again later!"

var generationConfig = &gemini.GenerationConfig{
	Temperature:     0.9,
	TopP:            1,
	TopK:            1,
	MaxOutputTokens: 1024,
}

// respond generates an in-persona reply to the user's message. Any failure is
// logged and turned into the fallback reply, the user never sees an error.
func (b *Bot) respond(ctx context.Context, userText string) string {
	resp, err := b.gemini.GenerateContent(ctx, gemini.GenerateContentParams{
		Contents: []*gemini.Content{
			{
				Parts: []*gemini.Part{{Text: userText}},
				Role:  "user",
			},
		},
		SystemInstruction: &gemini.Content{
			Parts: []*gemini.Part{{Text: systemPrompt}},
		},
		GenerationConfig: generationConfig,
	})
	if err == nil && (len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0) {
		err = errors.New("no candidates in response")
	}
	if err != nil {
		b.logf("Generating a reply failed: %v", err)
		return fallbackReply
	}
	return resp.Candidates[0].Content.Parts[0].Text
}
