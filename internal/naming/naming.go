// pattern: Functional Core

package naming

import (
	"path/filepath"
	"strings"
)

// ProjectDir associates a project's key name with its directory.
type ProjectDir struct {
	Name           string
	StartDirectory string
}

// tmux rejects "." in session names and treats ":" as a target separator.
var sessionNameReplacer = strings.NewReplacer(".", "-", ":", "-")

// KnownProjects indexes dirs by their last path segment. Several projects may
// share a key.
func KnownProjects(dirs []string) map[string][]ProjectDir {
	known := make(map[string][]ProjectDir, len(dirs))
	for _, d := range dirs {
		name := filepath.Base(d)
		known[name] = append(known[name], ProjectDir{Name: name, StartDirectory: d})
	}
	return known
}

// DirToSessionName derives a session name for dirPath. It tries the last
// segment, then the last two joined, and so on, returning the first candidate
// that no other known project would also produce from the same number of
// trailing segments. When every candidate is taken the full path is used.
// Dots and colons are replaced with "-".
func DirToSessionName(dirPath string, known map[string][]ProjectDir) string {
	segments := strings.Split(dirPath, string(filepath.Separator))

	for n := 1; n < len(segments); n++ {
		candidate := SanitizeSessionName(trailing(segments, n))
		if candidate == "" {
			continue
		}
		if !claimedByOther(known, dirPath, n, candidate) {
			return candidate
		}
	}
	return SanitizeSessionName(dirPath)
}

// claimedByOther reports whether a project other than dirPath yields
// candidate from its own last n segments. Names are compared after
// sanitizing since "a.b" and "a-b" end up as the same session.
func claimedByOther(known map[string][]ProjectDir, dirPath string, n int, candidate string) bool {
	for _, projects := range known {
		for _, p := range projects {
			if p.StartDirectory == dirPath {
				continue
			}
			other := strings.Split(p.StartDirectory, string(filepath.Separator))
			if len(other) < n {
				continue
			}
			if SanitizeSessionName(trailing(other, n)) == candidate {
				return true
			}
		}
	}
	return false
}

// trailing joins the last n segments.
func trailing(segments []string, n int) string {
	return strings.Join(segments[len(segments)-n:], string(filepath.Separator))
}

// SanitizeSessionName replaces characters tmux does not accept in a session name.
func SanitizeSessionName(name string) string {
	return sessionNameReplacer.Replace(name)
}
