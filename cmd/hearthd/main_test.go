package main

import (
	"testing"
	"time"

	"github.com/hearthd/hearthd/internal/transport"
)

func TestWaitForAddrTimesOutWhenUnbound(t *testing.T) {
	srv := &transport.Server{}
	addr, ok := waitForAddr(srv, 20*time.Millisecond)
	if ok || addr != nil {
		t.Fatalf("expected timeout with no bound listener, got addr=%v ok=%v", addr, ok)
	}
}

func TestWaitForAddrReturnsOnceBound(t *testing.T) {
	srv := &transport.Server{}
	go srv.Start("127.0.0.1:0")
	t.Cleanup(func() { srv.Close() })

	addr, ok := waitForAddr(srv, 2*time.Second)
	if !ok || addr == nil {
		t.Fatal("expected waitForAddr to observe the bound listener")
	}
}
