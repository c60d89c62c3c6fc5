// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package tgmarkup

import (
	"testing"

	"github.com/Smale3886/sakura-haruno/internal/testutil"
)

func TestFromMarkdown(t *testing.T) {
	cases := map[string]struct {
		in   string
		want Message
	}{
		"plain text": {
			in:   "Hello, world!",
			want: Message{Text: "Hello, world!"},
		},
		"bold": {
			in: "**bold**",
			want: Message{
				Text:     "bold",
				Entities: []Entity{{Type: Bold, Offset: 0, Length: 4}},
			},
		},
		"italic and code": {
			in: "*italic* and `code`",
			want: Message{
				Text: "italic and code",
				Entities: []Entity{
					{Type: Italic, Offset: 0, Length: 6},
					{Type: Code, Offset: 11, Length: 4},
				},
			},
		},
		"link": {
			in: "[Go](https://go.dev)",
			want: Message{
				Text:     "Go",
				Entities: []Entity{{Type: TextLink, Offset: 0, Length: 2, URL: "https://go.dev"}},
			},
		},
		"autolink": {
			in: "<https://telegram.org>",
			want: Message{
				Text:     "https://telegram.org",
				Entities: []Entity{{Type: URL, Offset: 0, Length: 20}},
			},
		},
		"heading": {
			in: "# Title\n\ntext",
			want: Message{
				Text:     "Title\ntext",
				Entities: []Entity{{Type: Bold, Offset: 0, Length: 5}},
			},
		},
		"code block": {
			in: "```go\npackage main\n```",
			want: Message{
				Text:     "package main",
				Entities: []Entity{{Type: Pre, Offset: 0, Length: 12, Language: "go"}},
			},
		},
		"emoji offsets are in UTF-16 code units": {
			in: "🌸 **sakura**",
			want: Message{
				Text:     "🌸 sakura",
				Entities: []Entity{{Type: Bold, Offset: 3, Length: 6}},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, FromMarkdown(tc.in), tc.want)
		})
	}
}

func TestPlain(t *testing.T) {
	msg := Plain("**not markdown**")
	testutil.AssertEqual(t, msg, Message{Text: "**not markdown**"})
}
