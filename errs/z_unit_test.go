// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestKindConstructors(t *testing.T) {
	cases := []struct {
		err  *E
		kind Kind
		lv   ErrLevel
	}{
		{Validation("bad bet"), KindValidation, Warn},
		{Insufficient("no money"), KindInsufficientFunds, Warn},
		{Insolvency("platform broke"), KindInsolvency, Fatal},
		{NotFound("game x"), KindNotFound, Warn},
	}
	for _, c := range cases {
		if c.err.Kind != c.kind {
			t.Fatalf("kind mismatch: got %v want %v", c.err.Kind, c.kind)
		}
		if c.err.ErrLv != c.lv {
			t.Fatalf("level mismatch for %v: got %v want %v", c.kind, c.err.ErrLv, c.lv)
		}
		if !strings.Contains(c.err.Error(), c.kind.String()) {
			t.Fatalf("error text should carry kind: %s", c.err.Error())
		}
	}
}

func TestWrapKeepsKindAndLevel(t *testing.T) {
	base := Insufficient("balance 3 < 5")
	w := Wrap(base, "process bet")
	if w.Kind != KindInsufficientFunds || w.ErrLv != Warn {
		t.Fatalf("wrap should inherit kind/level, got %v/%v", w.Kind, w.ErrLv)
	}
	if !errors.Is(w, base) {
		t.Fatalf("wrapped error should unwrap to base")
	}
	if !IsKind(w, KindInsufficientFunds) {
		t.Fatalf("IsKind should see through wrap")
	}
}

func TestWrapForeignErrorIsFatal(t *testing.T) {
	w := WrapWithExtra(io.EOF, "read config", "classic.yaml")
	if w.ErrLv != Fatal || w.Kind != KindNone {
		t.Fatalf("foreign cause should be fatal without kind, got %v/%v", w.ErrLv, w.Kind)
	}
	if !strings.Contains(w.Error(), "classic.yaml") {
		t.Fatalf("extra missing from message: %s", w.Error())
	}
}

func TestLevelAndKindOf(t *testing.T) {
	if Level(nil) != None {
		t.Fatalf("nil error should be None")
	}
	if Level(io.EOF) != Fatal {
		t.Fatalf("foreign error should be Fatal")
	}
	if KindOf(io.EOF) != KindNone {
		t.Fatalf("foreign error has no kind")
	}
	if IsKind(nil, KindNone) {
		t.Fatalf("nil error never matches a kind")
	}
}
