// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package syncx

import (
	"errors"
	"sync"
	"testing"

	"github.com/Smale3886/sakura-haruno/internal/testutil"
)

func TestProtected(t *testing.T) {
	p := Protect(make(map[string]int))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Access(func(m map[string]int) {
				m["counter"]++
			})
		}()
	}
	wg.Wait()

	var got int
	p.RAccess(func(m map[string]int) {
		got = m["counter"]
	})
	testutil.AssertEqual(t, got, 10)
}

func TestLazy(t *testing.T) {
	var (
		l     Lazy[int]
		calls int
	)
	f := func() int {
		calls++
		return 42
	}

	testutil.AssertEqual(t, l.Get(f), 42)
	testutil.AssertEqual(t, l.Get(f), 42)
	testutil.AssertEqual(t, calls, 1)
}

func TestLazyErr(t *testing.T) {
	var (
		l       Lazy[error]
		calls   int
		wantErr = errors.New("init failed")
	)
	f := func() error {
		calls++
		return wantErr
	}

	if err := l.Get(f); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
	// The result is memoized, even when it is an error.
	l.Get(f)
	testutil.AssertEqual(t, calls, 1)
}
