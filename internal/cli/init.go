package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
)

// initCommand creates the init command for writing a starter document.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <file.json>",
		Short: "Write a starter document",
		Long: `Write a small working document to the given path: a number slider
driving a sphere's radius through a math node, with a viewport showing
the result. Useful as a seed for experimenting with the editor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return errors.New(errors.CodeInvalidInput, "%s already exists (use --force to overwrite)", path)
				}
			}
			doc := starterDocument()
			if err := canvas.Export(path, doc); err != nil {
				return err
			}
			printSuccess("wrote starter document to %s", path)
			printDetail("%d nodes, %d connections", len(doc.Nodes), len(doc.Connections))
			printNextStep("inspect it", appName+" inspect "+path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// starterDocument builds the document written by init: a number
// feeding a math node, driving a sphere shown in a viewport.
func starterDocument() canvas.Document {
	return canvas.Document{
		Nodes: []canvas.Node{
			{
				ID:       "number-radius",
				Type:     canvas.TypeNumber,
				Position: canvas.Point{X: 40, Y: 120},
				Data:     canvas.NumberData{Value: 1.5, Min: 0, Max: 5, Step: 0.1},
			},
			{
				ID:       "math-scale",
				Type:     canvas.TypeMath,
				Position: canvas.Point{X: 320, Y: 120},
				Data:     canvas.MathData{Op: canvas.MathMultiply, Operands: 2},
			},
			{
				ID:       "sphere-main",
				Type:     canvas.TypeSphere,
				Position: canvas.Point{X: 600, Y: 100},
				Data:     canvas.SphereData{Radius: 1.5, Transform: canvas.DefaultTransform()},
			},
			{
				ID:       "viewport-main",
				Type:     canvas.TypeViewport,
				Position: canvas.Point{X: 880, Y: 60},
				Data:     canvas.ViewportData{ShowGrid: true},
			},
		},
		Connections: []canvas.Connection{
			{ID: "conn-1", SourceNode: "number-radius", SourcePort: "value", TargetNode: "math-scale", TargetPort: "a"},
			{ID: "conn-2", SourceNode: "math-scale", SourcePort: "result", TargetNode: "sphere-main", TargetPort: "radius"},
			{ID: "conn-3", SourceNode: "sphere-main", SourcePort: "shape", TargetNode: "viewport-main", TargetPort: "shape"},
		},
	}
}
