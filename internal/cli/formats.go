package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/mockup"
)

// formatsCommand lists the mockup formats.
func (c *CLI) formatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the mockup formats and their canvas sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(renderTable([]string{"Slug", "Name", "Width", "Height", "File"}, formatRows()))
			return nil
		},
	}
}

func formatRows() [][]string {
	rows := make([][]string, len(mockup.Formats))
	for i, f := range mockup.Formats {
		w, h := f.Size()
		rows[i] = []string{f.Slug(), f.DisplayName(), strconv.Itoa(w), strconv.Itoa(h), mockup.Filename(f)}
	}
	return rows
}
