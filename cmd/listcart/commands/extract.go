package commands

import (
	"github.com/spf13/cobra"

	"github.com/listcart/backend/internal/domain"
	"github.com/listcart/backend/internal/usecase"
)

func newExtractCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print the normalized text, item name, quantity and unit of each line",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(cmd, input)
			if err != nil {
				return err
			}

			extracted := make([]domain.ExtractedLine, 0, len(lines))
			for _, line := range lines {
				extracted = append(extracted, usecase.ExtractLine(line))
			}
			return printJSON(cmd, extracted)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "file with one list line per row (default stdin)")
	return cmd
}
