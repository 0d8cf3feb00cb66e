package commands

import (
	"github.com/spf13/cobra"

	"github.com/listcart/backend/internal/infrastructure/catalog"
	"github.com/listcart/backend/internal/usecase"
)

type matchOptions struct {
	catalogPath string
	input       string
	config      usecase.MatchConfig
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match list lines against a catalog file and print the result as JSON",
		Example: `  listcart match --catalog catalog.yaml --input list.txt
  printf 'Apple 2kg\nMilk 1L\n' | listcart match --catalog catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := catalog.NewFileRepository(opts.catalogPath)
			if err != nil {
				return err
			}

			lines, err := readLines(cmd, opts.input)
			if err != nil {
				return err
			}

			cfg := opts.config
			if cfg.MaxAlternatives == 0 {
				cfg.MaxAlternatives = usecase.NoAlternatives
			}
			matcher := usecase.NewMatchingService(repo, cfg, root.logger(cmd))
			result, err := matcher.Match(cmd.Context(), lines)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalogPath, "catalog", "catalog.yaml", "catalog seed file (YAML)")
	f.StringVarP(&opts.input, "input", "i", "", "file with one list line per row (default stdin)")
	f.Float64Var(&opts.config.IndexThreshold, "index-threshold", usecase.DefaultIndexThreshold, "maximum distance the catalog index returns")
	f.Float64Var(&opts.config.SuggestionThreshold, "suggestion-threshold", usecase.DefaultSuggestionThreshold, "maximum distance of suggestions offered for unmatched lines")
	f.Float64Var(&opts.config.MatchThreshold, "match-threshold", usecase.DefaultMatchThreshold, "distance below which a line is matched")
	f.Float64Var(&opts.config.ConfirmThreshold, "confirm-threshold", usecase.DefaultConfirmThreshold, "confidence below which a match needs confirmation")
	f.IntVar(&opts.config.MaxCandidates, "max-candidates", usecase.DefaultMaxCandidates, "candidates considered per line")
	f.IntVar(&opts.config.MaxAlternatives, "max-alternatives", usecase.DefaultMaxAlternatives, "alternatives offered per matched item (0 for none)")

	return cmd
}
