package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/catalogbridge/ckan2csw/internal/output"
)

// Export writes every record to dir as <identifier>.xml, replacing the XML
// files of earlier exports. At most workers files are written concurrently.
func (ix *Index) Export(ctx context.Context, dir string, workers int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}
	if err := removeXML(dir); err != nil {
		return 0, err
	}

	records, err := ix.List(ctx)
	if err != nil {
		return 0, err
	}

	if workers <= 0 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, r := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, FileName(r.Identifier))
			if err := os.WriteFile(path, []byte(r.XML), 0o644); err != nil {
				return fmt.Errorf("export %s: %w", r.Identifier, err)
			}
			output.Debug("exported record", "identifier", r.Identifier, "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(records), nil
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")

// FileName maps an identifier to a safe file name. Identifiers that had to
// be rewritten carry a short hash of the original so distinct identifiers
// never share a file.
func FileName(identifier string) string {
	safe := unsafeName.Replace(identifier)
	if safe == identifier {
		return safe + ".xml"
	}
	sum := sha256.Sum256([]byte(identifier))
	return safe + "-" + hex.EncodeToString(sum[:4]) + ".xml"
}

func removeXML(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".xml" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale export: %w", err)
		}
	}
	return nil
}
