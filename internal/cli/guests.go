package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wedding-rsvp/internal/factory"
)

func newGuestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Manage the guest list",
	}

	cmd.AddCommand(newGuestsListCmd())
	cmd.AddCommand(newGuestsImportCmd())
	cmd.AddCommand(newGuestsExportCmd())

	return cmd
}

func newGuestsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all guests",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory.New(cmd.Context(), cfg, newLogger(cfg, os.Stderr), factory.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.Guests.List(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.output).Guests("All Guests", list)
			return nil
		},
	}
}

func newGuestsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|file.json>",
		Short: "Append guests from a Name,Phone,Seats CSV or replace them from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			app, err := factory.New(cmd.Context(), cfg, newLogger(cfg, os.Stderr), factory.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			if strings.EqualFold(filepath.Ext(args[0]), ".json") {
				guests, err := app.Guests.ImportJSON(cmd.Context(), bufio.NewReader(f))
				if err != nil {
					return err
				}
				NewOutput(cmd.OutOrStdout(), opts.output).Message(fmt.Sprintf("Guest list replaced with %d guests", len(guests)))
				return nil
			}

			guests, err := app.Guests.ImportCSV(cmd.Context(), bufio.NewReader(f))
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.output).Message(fmt.Sprintf("Imported %d guests", len(guests)))
			return nil
		},
	}
}

func newGuestsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the guest list as JSON to file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory.New(cmd.Context(), cfg, newLogger(cfg, os.Stderr), factory.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			if len(args) == 0 {
				return app.Guests.ExportJSON(cmd.Context(), cmd.OutOrStdout())
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := app.Guests.ExportJSON(cmd.Context(), f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
}
