package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/bookmeta/config"
)

var lookupCover bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <title or isbn>",
	Short: "Looks a book up once and prints the record as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		// Keep stdout for the result.
		initLogger(cfg.Log, cmd.ErrOrStderr())

		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		query := strings.Join(args, " ")
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")

		if lookupCover {
			img, err := a.client.Cover(cmd.Context(), query)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(img.Data)
			return err
		}

		rec, err := a.client.Lookup(cmd.Context(), query)
		if err != nil {
			return err
		}
		return enc.Encode(rec)
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupCover, "cover", false, "write the large cover image bytes to stdout instead (query must be an ISBN)")
	rootCmd.AddCommand(lookupCmd)
}
