package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"wedding-rsvp/internal/factory"
	"wedding-rsvp/internal/followup"
	"wedding-rsvp/internal/guests"
	"wedding-rsvp/internal/whatsapp"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Connect to WhatsApp, answer RSVP replies and run the interactive menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			logger := newLogger(cfg, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(out, "🎉 Wedding WhatsApp RSVP Bot")
			fmt.Fprintln(out, "============================")
			fmt.Fprintln(out, "Connecting to WhatsApp...")

			app, err := factory.New(ctx, cfg, logger, factory.Options{WhatsApp: true, QROut: out})
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintln(out, "\n✅ Connected to WhatsApp!")
			fmt.Fprintln(out, "The bot is now listening for RSVP replies.")

			m := &menu{app: app, in: bufio.NewScanner(cmd.InOrStdin()), out: out}
			done := make(chan struct{})
			go func() {
				m.run(ctx)
				close(done)
			}()

			select {
			case <-ctx.Done():
			case <-done:
			}
			fmt.Fprintln(out, "\nShutting down...")
			return nil
		},
	}
}

type menu struct {
	app *factory.App
	in  *bufio.Scanner
	out io.Writer
}

func (m *menu) run(ctx context.Context) {
	for {
		fmt.Fprintln(m.out, "\nCommands:")
		fmt.Fprintln(m.out, "  1. Send invitation")
		fmt.Fprintln(m.out, "  2. View all guests")
		fmt.Fprintln(m.out, "  3. View guests awaiting an RSVP")
		fmt.Fprintln(m.out, "  4. Send reminders to guests awaiting an RSVP")
		fmt.Fprintln(m.out, "  5. Exit")
		fmt.Fprint(m.out, "\nEnter command (1-5): ")

		if !m.in.Scan() {
			return
		}

		switch strings.TrimSpace(m.in.Text()) {
		case "1":
			m.sendInvitation(ctx)
		case "2":
			m.viewAllGuests(ctx)
		case "3":
			m.viewPending(ctx)
		case "4":
			m.sendReminders(ctx)
		case "5":
			fmt.Fprintln(m.out, "Exiting...")
			return
		default:
			fmt.Fprintln(m.out, "Invalid command. Please try again.")
		}
	}
}

func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// sendInvitation adds a guest, sends the invitation and marks it sent
func (m *menu) sendInvitation(ctx context.Context) {
	name, ok := m.prompt("Enter guest name: ")
	if !ok {
		return
	}
	phone, ok := m.prompt("Enter phone number (with country code, e.g., +503 7742 8772): ")
	if !ok {
		return
	}
	seatsText, ok := m.prompt("Enter number of seats (default 2): ")
	if !ok {
		return
	}
	seats, _ := strconv.Atoi(seatsText)

	g, err := m.app.Guests.Add(ctx, guests.NewGuest{Name: name, Phone: phone, SeatCount: seats})
	if err != nil {
		fmt.Fprintf(m.out, "❌ Error adding guest: %v\n", err)
		return
	}

	fmt.Fprintf(m.out, "\nSending invitation to %s (%s)...\n", g.Name, whatsapp.NormalizePhoneNumber(g.Phone, m.app.Config.CountryCode))
	res, err := m.app.Followups.Invite(ctx, followup.InviteRequest{GuestID: g.ID})
	switch {
	case err != nil && res.Success:
		fmt.Fprintf(m.out, "❌ Invitation sent but not recorded: %v\n", err)
	case err != nil:
		fmt.Fprintf(m.out, "❌ Error sending invitation: %v\n", err)
	case !res.Success:
		fmt.Fprintf(m.out, "❌ Error sending invitation: %s\n", res.Error)
		fmt.Fprintf(m.out, "   Send it by hand: %s\n", res.WhatsAppURL)
	default:
		fmt.Fprintln(m.out, "✅ Invitation sent successfully!")
	}
}

func (m *menu) viewAllGuests(ctx context.Context) {
	list, err := m.app.Guests.List(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "❌ Error loading guests: %v\n", err)
		return
	}
	NewOutput(m.out, "text").Guests("All Guests", list)
}

func (m *menu) viewPending(ctx context.Context) {
	pending, err := m.app.Followups.Pending(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "❌ Error computing follow-ups: %v\n", err)
		return
	}
	NewOutput(m.out, "text").Guests("Guests awaiting an RSVP", pending)
}

func (m *menu) sendReminders(ctx context.Context) {
	result, err := m.app.Followups.SendReminders(ctx)
	if err != nil {
		fmt.Fprintf(m.out, "❌ Error sending reminders: %v\n", err)
	}
	NewOutput(m.out, "text").Bulk(result)
}
