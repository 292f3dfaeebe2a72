package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"wedding-rsvp/internal/followup"
	"wedding-rsvp/internal/models"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

func (o *Output) JSON() bool {
	return o.format == "json"
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// Guests prints a guest list under title
func (o *Output) Guests(title string, guests []models.Guest) {
	if o.JSON() {
		o.printJSON(guests)
		return
	}
	if len(guests) == 0 {
		fmt.Fprintln(o.w, "\nNo guests found.")
		return
	}

	fmt.Fprintf(o.w, "\n📋 %s (%d total):\n", title, len(guests))
	fmt.Fprintln(o.w, strings.Repeat("-", 60))
	for _, g := range guests {
		status := "pending"
		if g.InvitationSent {
			status = "invited"
		}
		fmt.Fprintf(o.w, "Name:   %s\n", g.Name)
		fmt.Fprintf(o.w, "Phone:  %s\n", g.Phone)
		fmt.Fprintf(o.w, "Seats:  %d\n", g.SeatCount)
		fmt.Fprintf(o.w, "Status: %s\n", status)
		if !g.InvitedAt.IsZero() {
			fmt.Fprintf(o.w, "Invited: %s\n", g.InvitedAt.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(o.w, strings.Repeat("-", 60))
	}
}

func (o *Output) Links(links []followup.Link) {
	if o.JSON() {
		o.printJSON(links)
		return
	}
	if len(links) == 0 {
		fmt.Fprintln(o.w, "Nobody to message.")
		return
	}
	for _, l := range links {
		fmt.Fprintf(o.w, "%s (%s)\n  %s\n", l.Guest, l.Phone, l.WhatsAppURL)
	}
}

func (o *Output) Bulk(result followup.BulkResult) {
	if o.JSON() {
		o.printJSON(result)
		return
	}
	for _, r := range result.Sent {
		fmt.Fprintf(o.w, "✅ %s (%s)\n", r.Guest, r.Phone)
	}
	for _, r := range result.Failed {
		fmt.Fprintf(o.w, "❌ %s (%s): %s\n", r.Guest, r.Phone, r.Error)
	}
	fmt.Fprintf(o.w, "\nSent %d of %d (%s)\n", len(result.Sent), result.Total, result.SuccessRate)
}

// Message prints a one-line status message
func (o *Output) Message(msg string) {
	if o.JSON() {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) Print(data any) {
	o.printJSON(data)
}
