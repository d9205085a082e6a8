// Package assets embeds the default profile templates and mapping tables.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed all:schemas
var schemasFS embed.FS

//go:embed all:mappings
var mappingsFS embed.FS

// Templates returns the embedded template tree rooted at ckan/ and iso/.
func Templates() fs.FS {
	sub, err := fs.Sub(schemasFS, "schemas")
	if err != nil {
		panic(err)
	}
	return sub
}

// Mappings returns the embedded codelist tables and schema-mapping documents.
func Mappings() fs.FS {
	sub, err := fs.Sub(mappingsFS, "mappings")
	if err != nil {
		panic(err)
	}
	return sub
}
