package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/catalogbridge/ckan2csw/internal/dataset"
	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
	"github.com/catalogbridge/ckan2csw/internal/render"
)

// readRecord loads a catalog record from path, or stdin when path is "-".
// A package_show response envelope is unwrapped.
func readRecord(path string, stdin io.Reader) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("record file not found", path, "")
		}
		return nil, fmt.Errorf("reading record: %w", err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: record %s is not a JSON object: %v", oerrors.ErrParse, path, err)
	}

	if result, ok := record["result"].(map[string]any); ok {
		if _, ok := record["success"]; ok {
			record = result
		}
	}
	return record, nil
}

// canonicalModel renders record through profile as the catalog at baseURL
// would publish it.
func canonicalModel(engine *render.Engine, record map[string]any, baseURL, profile string) (mcf.Model, error) {
	ds, err := dataset.New(record, baseURL, dataset.Options{TemplateDir: profile})
	if err != nil {
		return nil, err
	}
	return ds.Render(engine)
}
