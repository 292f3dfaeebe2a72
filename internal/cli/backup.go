package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wedding-rsvp/internal/factory"
)

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload guest list and RSVP snapshots to S3 (env: BACKUP_BUCKET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory.New(cmd.Context(), cfg, newLogger(cfg, os.Stderr), factory.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Backup == nil {
				return errors.New("BACKUP_BUCKET is not set")
			}
			result, err := app.Backup.Backup(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.output).Print(result)
			return nil
		},
	}
}
