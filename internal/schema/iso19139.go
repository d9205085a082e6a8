package schema

import (
	"strings"

	"github.com/catalogbridge/ckan2csw/internal/mcf"
)

// ISO is an ISO 19139 output schema rendered from a template profile.
type ISO struct {
	name        string
	description string
	renderer    Renderer
	anchors     bool
}

var (
	_ OutputSchema = (*ISO)(nil)
)

// NewISO19139 returns the base ISO 19139 schema.
func NewISO19139(renderer Renderer) *ISO {
	return &ISO{
		name:        ISO19139,
		description: "ISO 19139 geographic metadata XML",
		renderer:    renderer,
	}
}

// NewInspire returns the ISO 19139 schema with INSPIRE Technical Guidelines
// extensions (gmx:Anchor references, conformity report, reference system).
func NewInspire(renderer Renderer) *ISO {
	return &ISO{
		name:        ISO19139Inspire,
		description: "ISO 19139 - INSPIRE Technical Guidelines 2.0",
		renderer:    renderer,
		anchors:     true,
	}
}

// Name returns the schema identifier.
func (s *ISO) Name() string {
	return s.name
}

// Description returns a human-readable schema description.
func (s *ISO) Description() string {
	return s.description
}

// Write renders m with the schema's template profile.
func (s *ISO) Write(m mcf.Model) (string, error) {
	return s.renderer.RenderDocument(m, s.name)
}

// Import reconstructs a canonical model from an ISO 19139 document.
func (s *ISO) Import(doc string) (mcf.Model, error) {
	return importISO(doc, s.anchors)
}

// Detect guesses the schema of an ISO 19139 document from its metadata
// standard name.
func Detect(doc string) string {
	if strings.Contains(doc, "INSPIRE Technical Guidelines") {
		return ISO19139Inspire
	}
	return ISO19139
}
