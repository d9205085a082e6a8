package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/schema"
)

var (
	renderFormat string
	renderOutput string
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <record.json>",
		Short: "Render one catalog record",
		Long: `Render one catalog record without touching the index.

The record is a package_show result, or the whole package_show response. Use
"-" to read it from stdin.

Formats:
  xml   the document in the configured output schema (default)
  mcf   the canonical model as YAML
  json  the canonical model as JSON

Examples:
  # Show the ISO19139 document for a record
  ckan2csw render rivers.json

  # Inspect the canonical model
  curl -s https://data.example.org/api/3/action/package_show?id=rivers | ckan2csw render - -o mcf`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}

	cmd.Flags().StringVarP(&renderFormat, "format", "o", "xml", "Output format: xml, mcf, json")
	cmd.Flags().StringVarP(&renderOutput, "file", "f", "", "Write to file instead of stdout")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	format := output.ParseOutputFormat(renderFormat)

	record, err := readRecord(args[0], cmd.InOrStdin())
	if err != nil {
		return exitError(err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return exitError(err)
	}

	model, err := canonicalModel(engine, record, cfg.CKANURL, cfg.CKANSchema)
	if err != nil {
		return exitError(err)
	}

	var data []byte
	switch format {
	case output.FormatMCF:
		data, err = model.ToYAML()
	case output.FormatJSON:
		data, err = json.MarshalIndent(model, "", "  ")
		data = append(data, '\n')
	default:
		var doc string
		doc, err = schema.NewRegistry(engine).Select(cfg.OutputSchema).Write(model)
		data = []byte(doc)
	}
	if err != nil {
		return exitError(err)
	}

	if renderOutput != "" {
		if err := os.WriteFile(renderOutput, data, 0o644); err != nil {
			return exitError(fmt.Errorf("writing %s: %w", renderOutput, err))
		}
		output.Debug("rendered record written", "path", renderOutput, "format", format)
		return nil
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
