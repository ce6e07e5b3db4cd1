package mdpress

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// IntermediateNaming selects how the fallback HTML file is named.
type IntermediateNaming int

const (
	// NamingStem replaces the source extension: docs/Report.md -> docs/Report.html.
	NamingStem IntermediateNaming = iota
	// NamingUnique adds a random fragment: docs/Report.md -> docs/Report.1b9d6bcd.html.
	// Use it when the same source may be converted by several processes at once.
	NamingUnique
)

const (
	intermediateExt = ".html"
	uniqueIDLength  = 8
)

// IntermediatePath returns the HTML path used by the fallback path for source.
// The file lives next to the source so relative links (images, stylesheet) resolve.
func IntermediatePath(source string, naming IntermediateNaming) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if naming == NamingUnique {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:uniqueIDLength]
		return base + "." + id + intermediateExt
	}
	if path := base + intermediateExt; path != source {
		return path
	}
	// Never reuse the source itself as the artifact that gets deleted.
	return base + ".fallback" + intermediateExt
}
