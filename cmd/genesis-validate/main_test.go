package main

import (
	"syscall"
	"testing"
	"time"
)

func TestRootContextCancelsOnTermination(t *testing.T) {
	ctx, stop := rootContext()
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}

func TestRootContextStopRestoresDefaultHandling(t *testing.T) {
	ctx, stop := rootContext()
	stop()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("stop must cancel the context")
	}
}
