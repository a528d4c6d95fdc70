package registry

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// LoaderToolFilter hides the file-loading tools when no filesystem
// allow-list is configured. With file access disabled the server still
// accepts records via ingest_records; only the load_* tools disappear from
// discovery.
type LoaderToolFilter struct {
	fileAccess bool
}

// NewLoaderToolFilter constructs a filter from the security manager's state.
func NewLoaderToolFilter(fileAccessEnabled bool) *LoaderToolFilter {
	return &LoaderToolFilter{fileAccess: fileAccessEnabled}
}

// FilterTools implements server tool filtering semantics.
func (f *LoaderToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.fileAccess {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if strings.HasPrefix(strings.ToLower(t.Name), "load_") {
			continue
		}
		out = append(out, t)
	}
	return out
}
