package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/scribe/pkg/lifecycle"
)

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()

	release := make(chan struct{})
	lc.OnStartup(func() { <-release })

	if lc.Ready() || lc.Started() {
		t.Fatal("coordinator should not be ready before startup completes")
	}

	close(release)
	lc.WaitForStartup()

	if !lc.Started() || !lc.Ready() {
		t.Error("coordinator should be ready after startup")
	}
}

func TestRegisteredChecks(t *testing.T) {
	lc := lifecycle.New()

	var engineReady atomic.Bool
	lc.Register("engine", lifecycle.ReadinessFunc(engineReady.Load))
	lc.Register("static", lifecycle.ReadinessFunc(func() bool { return true }))
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("coordinator should not be ready while a check fails")
	}

	checks := lc.Checks()
	if checks["engine"] || !checks["static"] {
		t.Errorf("checks: got %v", checks)
	}

	engineReady.Store(true)
	if !lc.Ready() {
		t.Error("coordinator should be ready once every check passes")
	}
}

func TestShutdownRunsHooks(t *testing.T) {
	lc := lifecycle.New()

	var ran atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		ran.Store(true)
	})

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !ran.Load() {
		t.Error("shutdown hook did not run")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	block := make(chan struct{})
	defer close(block)
	lc.OnShutdown(func() { <-block })

	if err := lc.Shutdown(10 * time.Millisecond); err == nil {
		t.Error("expected timeout error")
	}
}
