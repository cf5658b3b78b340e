package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/spf13/cobra"
)

var renderJSON bool

var renderCmd = &cobra.Command{
	Use:   "render <section>",
	Short: "Navigate to a section once and print its content as markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		serviceInstance, err := newService(cfg.Site, logger)
		if err != nil {
			return err
		}

		snapshot, err := serviceInstance.Navigate(cmd.Context(), vo.Section(args[0]))
		if err != nil {
			return fmt.Errorf("rendering %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if renderJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		}
		_, err = fmt.Fprintln(out, snapshot.Markdown)
		return err
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print the full page snapshot as JSON")
	rootCmd.AddCommand(renderCmd)
}
