// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/Smale3886/sakura-haruno/internal/testutil"
)

func testEnv(args ...string) (*Env, *bytes.Buffer) {
	var stderr bytes.Buffer
	return &Env{
		Args:   args,
		Getenv: func(string) string { return "" },
		Stderr: &stderr,
	}, &stderr
}

func TestRun(t *testing.T) {
	var ran bool
	app := AppFunc(func(ctx context.Context, env *Env) error {
		ran = true
		return nil
	})

	env, _ := testEnv()
	if err := Run(t.Context(), app, env); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, ran, true)
}

func TestRunVersionFlag(t *testing.T) {
	app := AppFunc(func(ctx context.Context, env *Env) error {
		t.Fatal("app must not run when -version is passed")
		return nil
	})

	env, stderr := testEnv("-version")
	err := Run(t.Context(), app, env)
	if !errors.Is(err, ErrExitVersion) {
		t.Fatalf("got %v, want ErrExitVersion", err)
	}
	if stderr.Len() == 0 {
		t.Error("version output is empty")
	}
}

func TestRunPassesRemainingArgs(t *testing.T) {
	var got []string
	app := AppFunc(func(ctx context.Context, env *Env) error {
		got = env.Args
		return nil
	})

	env, _ := testEnv("foo", "bar")
	if err := Run(t.Context(), app, env); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, []string{"foo", "bar"})
}

func TestRunAppFlags(t *testing.T) {
	var prod bool
	app := &flaggedApp{prod: &prod}

	env, _ := testEnv("-prod")
	if err := Run(t.Context(), app, env); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, prod, true)
}

type flaggedApp struct{ prod *bool }

func (a *flaggedApp) Flags(fs *flag.FlagSet) { fs.BoolVar(a.prod, "prod", false, "") }
func (a *flaggedApp) Run(ctx context.Context, env *Env) error {
	return nil
}

func TestRunInvalidFlag(t *testing.T) {
	app := AppFunc(func(ctx context.Context, env *Env) error { return nil })

	env, stderr := testEnv("-nonexistent")
	err := Run(t.Context(), app, env)
	if err == nil {
		t.Fatal("expected an error")
	}
	if isPrintableError(err) {
		t.Error("flag parse errors must not be printed twice")
	}
	if !strings.Contains(stderr.String(), "flag provided but not defined") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestErrInvalidArgsIsPrintable(t *testing.T) {
	testutil.AssertEqual(t, isPrintableError(ErrInvalidArgs), true)
	testutil.AssertEqual(t, isPrintableError(ErrExitVersion), false)
	testutil.AssertEqual(t, isPrintableError(flag.ErrHelp), false)
}
