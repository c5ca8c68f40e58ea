package config

import "context"

// Loader is the interface for a format-specific pipeline loader.
type Loader interface {
	// Load reads one pipeline definition file and translates it into the
	// format-agnostic model. The returned pipeline is not yet validated.
	Load(ctx context.Context, path string) (*Pipeline, error)

	// Extensions reports the file extensions this loader accepts,
	// including the leading dot.
	Extensions() []string
}
