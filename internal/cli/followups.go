package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wedding-rsvp/internal/factory"
	"wedding-rsvp/internal/followup"
)

func newFollowupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "followups",
		Short: "Find and message invited guests who have not RSVPed",
	}

	cmd.AddCommand(newFollowupsListCmd())
	cmd.AddCommand(newFollowupsLinksCmd())
	cmd.AddCommand(newFollowupsSendCmd())

	return cmd
}

func newFollowupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List invited guests with no matching RSVP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory.New(cmd.Context(), cfg, newLogger(cfg, os.Stderr), factory.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			pending, err := app.Followups.Pending(cmd.Context())
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.output).Guests("Guests awaiting an RSVP", pending)
			return nil
		},
	}
}

func newFollowupsLinksCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Print wa.me links with the message pre-filled, for sending by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := followup.ParseMode(mode)
			if err != nil {
				return err
			}
			app, err := factory.New(cmd.Context(), cfg, newLogger(cfg, os.Stderr), factory.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			links, err := app.Followups.Links(cmd.Context(), m)
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.output).Links(links)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(followup.ModeReminder), "Message to pre-fill: initial or followup")
	return cmd
}

func newFollowupsSendCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send reminders (or invitations with --mode initial) over WhatsApp",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := followup.ParseMode(mode)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := factory.New(ctx, cfg, newLogger(cfg, os.Stderr), factory.Options{WhatsApp: true, QROut: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			defer app.Close()

			send := app.Followups.SendReminders
			if m == followup.ModeInvitation {
				send = app.Followups.SendInvitations
			}
			result, err := send(ctx)
			if result.Total > 0 || err == nil {
				NewOutput(cmd.OutOrStdout(), opts.output).Bulk(result)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(followup.ModeReminder), "Message to send: initial or followup")
	return cmd
}
