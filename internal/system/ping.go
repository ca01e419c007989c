package system

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const pingCommand = "ping"

// Ping sends a single echo request to host and returns the round trip in
// milliseconds, rounded to one decimal. The whole call is bounded by timeout.
func Ping(ctx context.Context, r Runner, host string, timeout time.Duration) (float64, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	stdout, stderr, err := r.Run(ctx, pingCommand, "-c", "1", "-W", "3", host)
	if err != nil {
		return 0, fmt.Errorf("ping %s failed: %v: %s", host, err, strings.TrimSpace(stderr))
	}
	ms, ok := ParsePing(stdout)
	if !ok {
		return 0, fmt.Errorf("ping %s: no round trip time in output", host)
	}
	return ms, nil
}

// ParsePing extracts the first "time=" value from ping output.
func ParsePing(out string) (float64, bool) {
	for _, line := range strings.Split(out, "\n") {
		_, rest, found := strings.Cut(line, "time=")
		if !found {
			continue
		}
		field := strings.Fields(rest)
		if len(field) == 0 {
			continue
		}
		ms, err := strconv.ParseFloat(strings.TrimSuffix(field[0], "ms"), 64)
		if err != nil {
			continue
		}
		return math.Round(ms*10) / 10, true
	}
	return 0, false
}
