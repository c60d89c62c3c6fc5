// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package gemini

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Smale3886/sakura-haruno/internal/request"
	"github.com/Smale3886/sakura-haruno/internal/testutil"
	"github.com/Smale3886/sakura-haruno/internal/web"
)

func TestGenerateContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("x-goog-api-key"), "test")

		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		params := testutil.UnmarshalJSON[GenerateContentParams](t, b)
		if params.SystemInstruction == nil || len(params.SystemInstruction.Parts) == 0 {
			t.Error("system instruction is missing from the request")
		}
		if params.GenerationConfig == nil {
			t.Fatal("generation config is missing from the request")
		}
		testutil.AssertEqual(t, *params.GenerationConfig, GenerationConfig{
			Temperature:     0.9,
			TopP:            1,
			TopK:            1,
			MaxOutputTokens: 1024,
		})

		web.RespondJSON(w, GenerateContentResponse{
			Candidates: []*Candidate{
				{Content: &Content{Parts: []*Part{{Text: "Konnichiwa!"}}, Role: "model"}},
			},
		})
	})

	c := &Client{
		APIKey:     "test",
		Model:      "gemini-1.5-flash",
		HTTPClient: testutil.MockHTTPClient(mux),
	}

	resp, err := c.GenerateContent(t.Context(), GenerateContentParams{
		Contents: []*Content{
			{Parts: []*Part{{Text: "hello"}}, Role: "user"},
		},
		SystemInstruction: &Content{Parts: []*Part{{Text: "You are Sakura Haruna."}}},
		GenerationConfig: &GenerationConfig{
			Temperature:     0.9,
			TopP:            1,
			TopK:            1,
			MaxOutputTokens: 1024,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, resp.Candidates[0].Content.Parts[0].Text, "Konnichiwa!")
}

func TestGenerateContentError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST generativelanguage.googleapis.com/{path...}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	c := &Client{
		APIKey:     "test",
		Model:      "gemini-1.5-flash",
		HTTPClient: testutil.MockHTTPClient(mux),
	}

	_, err := c.GenerateContent(t.Context(), GenerateContentParams{
		Contents: []*Content{{Parts: []*Part{{Text: "hello"}}}},
	})
	var statusErr *request.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want a StatusError, got %v", err)
	}
	testutil.AssertEqual(t, statusErr.StatusCode, http.StatusTooManyRequests)
	if !strings.Contains(string(statusErr.Body), "quota exceeded") {
		t.Errorf("error body %q is not retained", statusErr.Body)
	}
}
