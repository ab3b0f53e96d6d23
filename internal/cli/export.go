package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/render"
)

// exportCommand creates the export command for rendering documents.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file.json>",
		Short: "Render a document to DOT, SVG, PNG, or PDF",
		Long: `Validate a document file and render its node graph as a diagram.

The output format follows the -o extension: .dot for Graphviz source,
.svg for an in-process Graphviz rendering, .png or .pdf for converted
output (requires librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if output == "" {
				output = strings.TrimSuffix(path, ".json") + ".svg"
			}

			doc, err := canvas.Import(path)
			if err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return errors.Wrap(errors.CodeInvalidDocument, err, "validate %s", path)
			}

			prog := newProgress(c.Logger)
			spin := newSpinnerWithContext(cmd.Context(), "rendering "+output)
			spin.Start()
			err = render.RenderFile(cmd.Context(), doc, output)
			if err != nil {
				spin.StopWithError("render failed")
				return err
			}
			spin.Stop()
			prog.done("rendered " + output)

			printSuccess("exported %s", path)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (.dot, .svg, .png, or .pdf; default: input with .svg)")
	return cmd
}
