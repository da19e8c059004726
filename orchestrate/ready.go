package orchestrate

import (
	"context"
	"fmt"
	"net"
	"time"
)

// WaitReady blocks until addr accepts TCP connections or the context ends.
// A plain connect probe is the whole readiness contract; there is no richer
// health protocol.
func WaitReady(ctx context.Context, addr string) error {
	dialer := net.Dialer{Timeout: 250 * time.Millisecond}
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn.Close()
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("endpoint %s not ready: %w", addr, ctx.Err())
		case <-ticker.C:
		}
	}
}
