package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/artpar/querybench/internal/config"
	"github.com/artpar/querybench/internal/importer"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// NewRoutesCommand creates the routes command and its import subcommand.
func NewRoutesCommand(root *rootOptions) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the configured routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(root.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			routes, err := config.LoadRoutes(settings.RoutesFile)
			if err != nil {
				return err
			}

			if asYAML {
				data, err := config.MarshalRoutes(routes)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("NAME", "ROUTE", "METHODS", "ID", "PRESETS")
			for _, r := range routes {
				methods := make([]string, len(r.AllowedMethods))
				for i, m := range r.AllowedMethods {
					methods[i] = m.String()
				}
				id := ""
				if r.RequiresResourceID {
					id = "yes"
				}
				presets := ""
				if r.HasPresets() {
					presets = strconv.Itoa(len(r.DefaultPayloads))
				}
				t.Row(r.Title(), r.RouteName, strings.Join(methods, ","), id, presets)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			fmt.Fprintf(cmd.OutOrStdout(), "base URL: %s\n", settings.APIURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the routes as a routes file")

	cmd.AddCommand(newRoutesImportCommand())
	return cmd
}

func newRoutesImportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Convert an OpenAPI 3 document into a routes file",
		Long: "Read an OpenAPI 3 document (YAML or JSON) and print a routes file with one\n" +
			"route per path. Paths ending in a {parameter} take a resource id.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			routes, err := importer.FromOpenAPI(cmd.Context(), content)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			data, err := config.MarshalRoutes(routes)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d routes to %s\n", len(routes), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to FILE instead of stdout")
	return cmd
}
