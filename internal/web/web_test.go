// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Smale3886/sakura-haruno/internal/testutil"
)

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, map[string]string{"status": "success"})

	res := w.Result()
	defer res.Body.Close()
	testutil.AssertEqual(t, res.Header.Get("Content-Type"), "application/json")
	testutil.AssertEqual(t, w.Body.String(), "{\n  \"status\": \"success\"\n}\n")
}

func TestRespondJSONError(t *testing.T) {
	cases := map[string]struct {
		err        error
		wantStatus int
	}{
		"status error": {
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		"wrapped status error": {
			err:        fmt.Errorf("resource %w", ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		"bad request": {
			err:        ErrBadRequest,
			wantStatus: http.StatusBadRequest,
		},
		"generic error": {
			err:        fmt.Errorf("something broke"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			RespondJSONError(w, r, tc.err)

			res := w.Result()
			defer res.Body.Close()
			testutil.AssertEqual(t, res.StatusCode, tc.wantStatus)
			if !strings.Contains(w.Body.String(), `"status": "error"`) {
				t.Errorf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	h := Health(mux)

	// Registering twice returns the same handler.
	testutil.AssertEqual(t, Health(mux) == h, true)

	h.RegisterFunc("telegram", func() (string, bool) { return "ok", true })

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	res := w.Result()
	defer res.Body.Close()
	testutil.AssertEqual(t, res.StatusCode, http.StatusOK)

	hr := testutil.UnmarshalJSON[HealthResponse](t, w.Body.Bytes())
	testutil.AssertEqual(t, hr.OK, true)
	testutil.AssertEqual(t, hr.Checks["telegram"], CheckResponse{Status: "ok", OK: true})
}

func TestHealthFailingCheck(t *testing.T) {
	mux := http.NewServeMux()
	h := Health(mux)
	h.RegisterFunc("gemini", func() (string, bool) { return "quota exceeded", false })

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	res := w.Result()
	defer res.Body.Close()
	testutil.AssertEqual(t, res.StatusCode, http.StatusInternalServerError)

	hr := testutil.UnmarshalJSON[HealthResponse](t, w.Body.Bytes())
	testutil.AssertEqual(t, hr.OK, false)
}

func TestHealthDuplicateCheckPanics(t *testing.T) {
	h := Health(http.NewServeMux())
	h.RegisterFunc("dup", func() (string, bool) { return "", true })

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	h.RegisterFunc("dup", func() (string, bool) { return "", true })
}

func TestListenAndServe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, map[string]string{"status": "success"})
	})

	ctx, cancel := context.WithCancel(t.Context())
	ready := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, &ListenAndServeConfig{
			Addr:  "localhost:0",
			Mux:   mux,
			Logf:  t.Logf,
			Ready: func() { close(ready) },
		})
	}()

	select {
	case <-ready:
	case err := <-errCh:
		t.Fatalf("server didn't start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server didn't become ready in time")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("server shut down with error: %v", err)
	}
}

func TestListenAndServeValidation(t *testing.T) {
	cases := map[string]*ListenAndServeConfig{
		"no addr": {Mux: http.NewServeMux()},
		"no mux":  {Addr: "localhost:0"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ListenAndServe(t.Context(), c); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
