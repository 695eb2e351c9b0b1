package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func peerContext(addr string) context.Context {
	tcp, _ := net.ResolveTCPAddr("tcp", addr)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcp})
}

func TestPeerRateLimiter_PerPeerBuckets(t *testing.T) {
	l := NewPeerRateLimiter(1, 2, nil, "ListAvailableSlots")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	interceptor := l.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("ListAvailableSlots")}
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	call := func(ctx context.Context) error {
		_, err := interceptor(ctx, nil, info, handler)
		return err
	}

	a := peerContext("10.0.0.1:5000")
	for i := 0; i < 2; i++ {
		if err := call(a); err != nil {
			t.Fatalf("call %d error: %v", i, err)
		}
	}
	if err := call(a); status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.ResourceExhausted)
	}

	// a different port on the same host shares the bucket
	if err := call(peerContext("10.0.0.1:6000")); status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("code = %v, want %v", status.Code(err), codes.ResourceExhausted)
	}
	if err := call(peerContext("10.0.0.2:5000")); err != nil {
		t.Fatalf("other peer error: %v", err)
	}

	now = now.Add(time.Second)
	if err := call(a); err != nil {
		t.Fatalf("after refill error: %v", err)
	}
}

func TestPeerRateLimiter_SweepsIdlePeers(t *testing.T) {
	l := NewPeerRateLimiter(1, 1, nil, "ListAvailableSlots")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(2 * idleLimiterTTL)
	l.allow("10.0.0.2")

	if _, ok := l.limiters["10.0.0.1"]; ok {
		t.Fatalf("expected idle limiter to be removed")
	}
	if len(l.limiters) != 1 {
		t.Fatalf("len(limiters) = %d, want 1", len(l.limiters))
	}
}

func TestPeerRateLimiter_DisabledAndUnlistedMethods(t *testing.T) {
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	disabled := NewPeerRateLimiter(0, 1, nil, "ListAvailableSlots").UnaryInterceptor()
	for i := 0; i < 5; i++ {
		if _, err := disabled(peerContext("10.0.0.1:1"), nil, &grpc.UnaryServerInfo{FullMethod: fullMethod("ListAvailableSlots")}, handler); err != nil {
			t.Fatalf("disabled limiter error: %v", err)
		}
	}

	limited := NewPeerRateLimiter(0.001, 1, nil, "ListAvailableSlots").UnaryInterceptor()
	for i := 0; i < 5; i++ {
		if _, err := limited(peerContext("10.0.0.1:1"), nil, &grpc.UnaryServerInfo{FullMethod: fullMethod("CreateBooking")}, handler); err != nil {
			t.Fatalf("unlisted method error: %v", err)
		}
	}
}
