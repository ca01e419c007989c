package system

import (
	"context"
	"fmt"
	"strings"
)

// Status is the outcome of one container or service check.
type Status int

const (
	// StatusUnknown means the check itself could not be performed.
	StatusUnknown Status = iota
	StatusRunning
	// StatusStopped covers both stopped and missing entries.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	}
	return "unknown"
}

// Summarize folds many results into one: running when all are running,
// stopped when any is stopped and unknown otherwise.
func Summarize(statuses []Status) Status {
	out := StatusRunning
	for _, s := range statuses {
		switch s {
		case StatusStopped:
			return StatusStopped
		case StatusUnknown:
			out = StatusUnknown
		}
	}
	return out
}

// AllUnknown returns a result map with every name marked unknown.
func AllUnknown(names []string) map[string]Status {
	out := make(map[string]Status, len(names))
	for _, n := range names {
		out[n] = StatusUnknown
	}
	return out
}

// CheckDocker lists all containers on r in one call and reports the state of
// each allow-listed name. On any failure every name is unknown and the error
// is returned for logging.
func CheckDocker(ctx context.Context, r Runner, names []string) (map[string]Status, error) {
	if len(names) == 0 {
		return map[string]Status{}, nil
	}
	stdout, stderr, err := r.Run(ctx, "sudo", "docker", "ps", "-a", "--format", "{{.Names}}:{{.Status}}")
	if err != nil {
		return AllUnknown(names), fmt.Errorf("docker ps failed: %w: %s", err, strings.TrimSpace(stderr))
	}
	return ParseDockerPS(stdout, names), nil
}

// ParseDockerPS reads "name:status" lines. A listed container whose status
// starts with "Up" is running; any other listed or absent name is stopped.
func ParseDockerPS(out string, names []string) map[string]Status {
	found := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		name, status, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		found[strings.TrimSpace(name)] = strings.HasPrefix(strings.ToLower(strings.TrimSpace(status)), "up")
	}
	result := make(map[string]Status, len(names))
	for _, n := range names {
		if found[n] {
			result[n] = StatusRunning
		} else {
			result[n] = StatusStopped
		}
	}
	return result
}

// CheckSystemd asks systemctl for the state of every allow-listed unit in a
// single call. systemctl exits non-zero when any unit is inactive, so a
// *CommandError still carries usable output.
func CheckSystemd(ctx context.Context, r Runner, names []string) (map[string]Status, error) {
	if len(names) == 0 {
		return map[string]Status{}, nil
	}
	args := []string{"is-active"}
	for _, n := range names {
		args = append(args, n+".service")
	}
	stdout, stderr, err := r.Run(ctx, "systemctl", args...)
	if err != nil && ExitCode(err) < 0 {
		return AllUnknown(names), fmt.Errorf("systemctl is-active failed: %w: %s", err, strings.TrimSpace(stderr))
	}
	return ParseIsActive(stdout, names), nil
}

// ParseIsActive maps line i of systemctl output to names[i]. "active" is
// running, any other token is stopped and a missing line is unknown.
func ParseIsActive(out string, names []string) map[string]Status {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	result := AllUnknown(names)
	for i, n := range names {
		if i >= len(lines) {
			break
		}
		if lines[i] == "active" {
			result[n] = StatusRunning
		} else {
			result[n] = StatusStopped
		}
	}
	return result
}
