// pattern: Functional Core

package discovery

import "errors"

// DefaultMaxDepth is used when a scanner is given a non-positive depth.
const DefaultMaxDepth = 3

// ErrFilesystem is returned when a scan root exists but cannot be read.
var ErrFilesystem = errors.New("filesystem error")

// Options configures a Scanner.
type Options struct {
	Markers  []string // Entry names marking a project root, e.g. ".git"
	MaxDepth int      // Deepest level below the root at which a marker is looked for
	Eager    bool     // Keep descending after a level produced matches
}
