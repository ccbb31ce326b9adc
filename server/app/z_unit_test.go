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

package app

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

type fakeComp struct {
	runErr   error
	stop     chan struct{}
	shutdown atomic.Int32
}

func newFake(runErr error) *fakeComp {
	return &fakeComp{runErr: runErr, stop: make(chan struct{})}
}

func (f *fakeComp) Run() error {
	if f.runErr != nil {
		return f.runErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeComp) Shutdown(ctx context.Context) error {
	if f.shutdown.Add(1) == 1 && f.runErr == nil {
		close(f.stop)
	}
	return nil
}

func TestRunContextStopsAll(t *testing.T) {
	a, b := newFake(nil), newFake(nil)
	app := NewWith(a, b)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on ctx cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("app did not stop")
	}
	if a.shutdown.Load() != 1 || b.shutdown.Load() != 1 {
		t.Fatalf("every component must be shut down once, got %d/%d", a.shutdown.Load(), b.shutdown.Load())
	}
}

func TestRunContextComponentError(t *testing.T) {
	boom := errors.New("listen: address in use")
	a, b := newFake(boom), newFake(nil)
	app := NewWith(a, b)
	app.SetShutdownTimeout(time.Second)

	err := app.RunContext(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected component error, got %v", err)
	}
	if b.shutdown.Load() != 1 {
		t.Fatalf("healthy component must be shut down")
	}
}
