// pattern: Functional Core

package tmux

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// listSessionsFormat yields "name created attached" per session.
const listSessionsFormat = "#{session_name} #{session_created} #{session_attached}"

// ParseListSessions parses list-sessions output produced with listSessionsFormat.
// Blank lines are skipped. Any other line must have exactly three fields with
// an integer epoch and client count, otherwise ErrParse is returned and no
// sessions are.
func ParseListSessions(output string) ([]Session, error) {
	var sessions []Session

	scanner := bufio.NewScanner(strings.NewReader(output))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		session, err := parseSessionLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrParse, lineNo, err)
		}
		sessions = append(sessions, session)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return sessions, nil
}

// parseSessionLine parses a single "name created attached" line.
func parseSessionLine(line string) (Session, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Session{}, fmt.Errorf("want 3 fields, got %d in %q", len(fields), line)
	}

	epoch, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("invalid creation time %q", fields[1])
	}
	clients, err := strconv.Atoi(fields[2])
	if err != nil || clients < 0 {
		return Session{}, fmt.Errorf("invalid attached count %q", fields[2])
	}

	return Session{
		Name:         fields[0],
		CreatedEpoch: epoch,
		CreatedAt:    time.Unix(epoch, 0),
		Attached:     clients > 0,
		Clients:      clients,
	}, nil
}
