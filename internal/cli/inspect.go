package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

// inspectCommand creates the inspect command for validating documents
// and showing their statistics.
func (c *CLI) inspectCommand() *cobra.Command {
	var useStore bool

	cmd := &cobra.Command{
		Use:   "inspect [file.json]",
		Short: "Validate a document and show its statistics",
		Long: `Validate a document and print a statistics table: node counts by
type, connections, and groups.

With a file argument, the document is read from disk. With --store and
no argument, an interactive picker lists the configured store's
documents.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			var (
				doc  canvas.Document
				name string
			)
			switch {
			case len(args) == 1:
				doc, err = canvas.Import(args[0])
				if err != nil {
					return err
				}
				name = args[0]
			case useStore:
				doc, name, err = c.pickStoredDocument(cmd, cfg)
				if err != nil || name == "" {
					return err
				}
			default:
				return errors.New(errors.CodeInvalidInput, "pass a document file or --store")
			}

			printTitle(name)
			if err := doc.Validate(); err != nil {
				printError("invalid document: %v", err)
				return errors.Wrap(errors.CodeInvalidDocument, err, "validate %s", name)
			}
			printSuccess("document is valid")
			if len(doc.Nodes) == 0 {
				printWarning("document has no nodes")
			}
			printNewline()
			fmt.Println(statsTable(doc, cfg.History.Limit))
			return nil
		},
	}

	cmd.Flags().BoolVar(&useStore, "store", false, "pick a document from the configured store")
	return cmd
}

// pickStoredDocument runs the interactive picker over the store's
// listing. An empty name with a nil error means the user quit.
func (c *CLI) pickStoredDocument(cmd *cobra.Command, cfg Config) (canvas.Document, string, error) {
	ctx := cmd.Context()
	st, err := store.Open(ctx, cfg.storeConfig())
	if err != nil {
		return canvas.Document{}, "", err
	}
	defer st.Close()

	infos, err := st.List(ctx)
	if err != nil {
		return canvas.Document{}, "", err
	}
	if len(infos) == 0 {
		printInfo("the store holds no documents")
		return canvas.Document{}, "", nil
	}

	id, err := pickDocument(infos)
	if err != nil || id == "" {
		return canvas.Document{}, "", err
	}

	rec, err := st.Get(ctx, id)
	if err != nil {
		return canvas.Document{}, "", err
	}
	name := rec.Name
	if name == "" {
		name = rec.ID
	}
	return rec.Document, name, nil
}

// statsTable renders the document statistics as a lipgloss table.
func statsTable(doc canvas.Document, historyLimit int) string {
	counts := doc.CountByType()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	rows := make([][]string, 0, len(types)+3)
	for _, t := range types {
		rows = append(rows, []string{t, fmt.Sprintf("%d", counts[canvas.Type(t)])})
	}
	rows = append(rows,
		[]string{"connections", fmt.Sprintf("%d", len(doc.Connections))},
		[]string{"groups", fmt.Sprintf("%d", len(doc.Groups()))},
		[]string{"history capacity", fmt.Sprintf("%d", historyLimit)},
	)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 1 {
				return StyleNumber.PaddingLeft(1).PaddingRight(1)
			}
			return StyleValue.PaddingLeft(1).PaddingRight(1)
		}).
		Headers("kind", "count").
		Rows(rows...).
		String()
}

// printTitle prints the inspected document's heading.
func printTitle(name string) {
	fmt.Println(StyleTitle.Render(name))
}
