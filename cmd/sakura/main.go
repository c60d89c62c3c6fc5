// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Smale3886/sakura-haruno/internal/api/gemini"
	"github.com/Smale3886/sakura-haruno/internal/api/telegram"
	"github.com/Smale3886/sakura-haruno/internal/bot"
	"github.com/Smale3886/sakura-haruno/internal/cli"
	"github.com/Smale3886/sakura-haruno/internal/logger"
	"github.com/Smale3886/sakura-haruno/internal/util/syncx"
	"github.com/Smale3886/sakura-haruno/internal/web"

	"github.com/joho/godotenv"
)

const geminiModel = "gemini-1.5-flash"

func main() { cli.Main(new(engine)) }

func (e *engine) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&e.prod, "prod", false, "Run in production mode (receive updates via webhook instead of long polling).")
	fs.StringVar(&e.addr, "addr", "localhost:3000", "Listen on `host:port`.")
}

type engine struct {
	init syncx.Lazy[error] // main initialization

	// initialized by doInit
	bot       *bot.Bot
	tgc       *telegram.Client
	geminic   *gemini.Client
	logStream logger.Streamer
	logf      logger.Logf
	mux       *http.ServeMux
	scrubber  *strings.Replacer

	// configuration, read-only after initialization
	addr      string
	geminiKey string
	host      string
	httpc     *http.Client
	me        telegram.User // obtained from Telegram Bot API
	prod      bool
	stderr    io.Writer
	tgSecret  string
	tgToken   string

	// for tests
	noServerStart bool
	ready         func() // see web.ListenAndServeConfig.Ready
}

const (
	longPollTimeout = 30 // seconds
	pollRetryDelay  = 5 * time.Second
)

func (e *engine) Run(ctx context.Context, env *cli.Env) error {
	// Load configuration from a .env file, if any, and environment variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	e.tgToken = cmp.Or(e.tgToken, env.Getenv("TELEGRAM_BOT_TOKEN"))
	e.geminiKey = cmp.Or(e.geminiKey, env.Getenv("GEMINI_API_KEY"))
	e.tgSecret = cmp.Or(e.tgSecret, env.Getenv("TG_SECRET"))
	e.host = cmp.Or(e.host, env.Getenv("HOST"))
	e.addr = cmp.Or(env.Getenv("ADDR"), e.addr)

	if e.tgToken == "" {
		return fmt.Errorf("%w: the TELEGRAM_BOT_TOKEN environment variable is not set", cli.ErrInvalidArgs)
	}
	if e.geminiKey == "" {
		return fmt.Errorf("%w: the GEMINI_API_KEY environment variable is not set", cli.ErrInvalidArgs)
	}

	e.stderr = env.Stderr

	// Initialize internal state.
	if err := e.init.Get(func() error {
		return e.doInit(ctx)
	}); err != nil {
		return err
	}

	// Used in tests.
	if e.noServerStart {
		return nil
	}

	if e.prod {
		if err := e.setWebhook(ctx); err != nil {
			return err
		}
		e.logf("Running in production mode.")
	} else {
		e.logf("Running in development mode.")
		go e.pollUpdates(ctx)
	}

	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr:  e.addr,
		Mux:   e.mux,
		Logf:  e.logf,
		Ready: e.ready,
	})
}

func (e *engine) doInit(ctx context.Context) error {
	if e.httpc == nil {
		e.httpc = &http.Client{
			// Increase timeout to properly handle Gemini API response times.
			Timeout: 60 * time.Second,
		}
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}

	const logLineLimit = 300
	e.logStream = logger.NewStreamer(logLineLimit)
	e.logf = log.New(io.MultiWriter(e.stderr, &timestampWriter{e.logStream}), "", 0).Printf

	var scrubPairs []string
	for _, val := range []string{
		e.tgToken,
		e.geminiKey,
		e.tgSecret,
	} {
		if val != "" {
			scrubPairs = append(scrubPairs, val, "[EXPUNGED]")
		}
	}
	if len(scrubPairs) > 0 {
		e.scrubber = strings.NewReplacer(scrubPairs...)
	}

	e.tgc = &telegram.Client{
		Token:      e.tgToken,
		HTTPClient: e.httpc,
		Scrubber:   e.scrubber,
	}
	e.geminic = &gemini.Client{
		APIKey:     e.geminiKey,
		Model:      geminiModel,
		HTTPClient: e.httpc,
		Scrubber:   e.scrubber,
	}

	me, err := e.tgc.GetMe(ctx)
	if err != nil {
		return err
	}
	e.me = me
	e.logf("Running as @%s (ID: %d).", me.Username, me.ID)

	e.bot = bot.New(bot.Opts{
		Telegram:      e.tgc,
		Gemini:        e.geminic,
		Username:      me.Username,
		WebhookSecret: e.tgSecret,
		Logf:          e.logf,
	})

	e.initRoutes()

	return nil
}

func (e *engine) initRoutes() {
	e.mux = http.NewServeMux()
	e.mux.HandleFunc("POST /telegram", e.bot.HandleTelegramWebhook)
	if !e.prod {
		e.mux.Handle("/debug/log", e.logStream)
	}
}

var errNoHost = errors.New("the HOST environment variable is not set")

func (e *engine) setWebhook(ctx context.Context) error {
	if e.host == "" {
		return errNoHost
	}
	u := &url.URL{
		Scheme: "https",
		Host:   e.host,
		Path:   "/telegram",
	}
	return e.tgc.SetWebhook(ctx, u.String(), e.tgSecret)
}

// pollUpdates receives updates from the Telegram Bot API by long polling and
// feeds them to the bot. It runs until ctx is canceled.
func (e *engine) pollUpdates(ctx context.Context) {
	var offset int64
	for ctx.Err() == nil {
		updates, err := e.tgc.GetUpdates(ctx, offset, longPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logf("Polling for updates failed: %v", err)
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}
		for _, upd := range updates {
			offset = upd.ID + 1
			if err := e.bot.HandleUpdate(ctx, upd); err != nil {
				e.logf("Handling update %d failed: %v", upd.ID, err)
			}
		}
	}
}

// timestampWriter is an io.Writer that prefixes each line with the current date and time.
type timestampWriter struct {
	w io.Writer
}

func (tw *timestampWriter) Write(p []byte) (n int, err error) {
	lines := strings.SplitAfter(string(p), "\n")

	for _, line := range lines {
		if len(line) > 0 {
			timestamp := time.Now().Format(time.DateTime + "\t")
			_, err := io.WriteString(tw.w, timestamp)
			if err != nil {
				return n, err
			}
			nn, err := io.WriteString(tw.w, line)
			n += nn
			if err != nil {
				return n, err
			}
		}
	}

	return n, nil
}
