package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listcart/backend/internal/infrastructure/catalog"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	var catalogPath, dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog seed file into a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)

			seed, err := catalog.NewFileRepository(catalogPath)
			if err != nil {
				return err
			}

			db, err := catalog.OpenSQLite(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Upsert(cmd.Context(), seed.Products()); err != nil {
				return err
			}

			logger.Info().Str("db", dbPath).Int("products", len(seed.Products())).Msg("catalog seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products into %s\n", len(seed.Products()), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "catalog.yaml", "catalog seed file (YAML)")
	cmd.Flags().StringVar(&dbPath, "db", "listcart.db", "SQLite database path")
	return cmd
}
