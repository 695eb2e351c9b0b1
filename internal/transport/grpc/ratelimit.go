package grpc

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// idleLimiterTTL is how long a peer's limiter is kept after its last call.
const idleLimiterTTL = 10 * time.Minute

type peerLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// PeerRateLimiter throttles selected methods per remote host.
type PeerRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	methods   map[string]bool
	limiters  map[string]*peerLimiter
	lastSweep time.Time
	now       func() time.Time
	log       *slog.Logger
}

// NewPeerRateLimiter limits each peer to rps calls per second with the given
// burst on the named methods of the Scheduling service, e.g.
// "ListAvailableSlots". A non-positive rps disables limiting.
func NewPeerRateLimiter(rps float64, burst int, log *slog.Logger, methods ...string) *PeerRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if log == nil {
		log = slog.Default()
	}
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[fullMethod(m)] = true
	}
	return &PeerRateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		methods:  set,
		limiters: make(map[string]*peerLimiter),
		now:      time.Now,
		log:      log.With(slog.String("component", "grpc.ratelimit")),
	}
}

func (l *PeerRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for k, p := range l.limiters {
			if now.Sub(p.lastSeen) > idleLimiterTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	p, ok := l.limiters[key]
	if !ok {
		p = &peerLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = p
	}
	p.lastSeen = now
	return p.lim.AllowN(now, 1)
}

func (l *PeerRateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if l.limit <= 0 || !l.methods[info.FullMethod] {
			return handler(ctx, req)
		}
		key := peerKey(ctx)
		if !l.allow(key) {
			l.log.Warn("rate limit exceeded", slog.String("peer", key), slog.String("method", info.FullMethod))
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded, try again later")
		}
		return handler(ctx, req)
	}
}

func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
