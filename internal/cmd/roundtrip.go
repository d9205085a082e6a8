package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalogbridge/ckan2csw/internal/output"
	"github.com/catalogbridge/ckan2csw/internal/schema"
)

// NewRoundtripCmd creates the roundtrip command.
func NewRoundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <record.json>",
		Short: "Show what a written document loses on import",
		Long: `Render one record into the output schema, import the document back into
the canonical model and print a semantic diff between the two models.

Fields the document does not carry, or that the importer does not read back,
show up as removals.

Examples:
  ckan2csw roundtrip rivers.json
  ckan2csw roundtrip rivers.json --output-schema iso19139`,
		Args: cobra.ExactArgs(1),
		RunE: runRoundtrip,
	}
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	record, err := readRecord(args[0], cmd.InOrStdin())
	if err != nil {
		return exitError(err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return exitError(err)
	}

	written, err := canonicalModel(engine, record, cfg.CKANURL, cfg.CKANSchema)
	if err != nil {
		return exitError(err)
	}

	out := schema.NewRegistry(engine).Select(cfg.OutputSchema)
	doc, err := out.Write(written)
	if err != nil {
		return exitError(err)
	}

	imported, err := out.Import(doc)
	if err != nil {
		return exitError(err)
	}

	from, err := written.ToYAML()
	if err != nil {
		return exitError(err)
	}
	to, err := imported.ToYAML()
	if err != nil {
		return exitError(err)
	}

	report, err := output.DiffYAML("written", from, out.Name(), to, output.UseColor())
	if err != nil {
		return exitError(err)
	}

	if report == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("No differences after "+out.Name()+" round trip"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}
