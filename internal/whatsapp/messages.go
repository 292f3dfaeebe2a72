package whatsapp

import (
	"fmt"
	"strings"
	"time"

	"wedding-rsvp/internal/models"
)

// Event holds the wedding details quoted in outgoing messages
type Event struct {
	CoupleNames string
	Date        string
	Ceremony    string
	Reception   string
	SiteURL     string
}

func seats(n int) string {
	if n > 1 {
		return fmt.Sprintf("%d asientos reservados", n)
	}
	return fmt.Sprintf("%d asiento reservado", n)
}

// InvitationMessage is the first message a guest receives
func InvitationMessage(ev Event, guest models.Guest) string {
	return fmt.Sprintf(
		"Hola %s!\n\n"+
			"Es con gran placer que %s los invitan a su boda.\n\n"+
			"FECHA: %s\n"+
			"CEREMONIA: %s\n"+
			"RECEPCION: %s\n\n"+
			"Tenemos %s para ustedes.\n\n"+
			"Por favor confirmen su asistencia aqui: %s\n\n"+
			"Con amor,\n"+
			"%s",
		guest.Name, ev.CoupleNames, ev.Date, ev.Ceremony, ev.Reception,
		seats(guest.SeatCount), ev.SiteURL, ev.CoupleNames,
	)
}

// ReminderMessage goes to invited guests with no matching RSVP
func ReminderMessage(ev Event, guest models.Guest) string {
	return fmt.Sprintf(
		"Hola %s!\n\n"+
			"Les recordamos con cariño la boda de %s el %s.\n\n"+
			"Aun no hemos recibido su confirmacion. Tenemos %s para ustedes.\n\n"+
			"Por favor confirmen su asistencia aqui: %s\n"+
			"o respondan SI o NO a este mensaje.\n\n"+
			"Con amor,\n"+
			"%s",
		guest.Name, ev.CoupleNames, ev.Date, seats(guest.SeatCount), ev.SiteURL, ev.CoupleNames,
	)
}

// CoupleNotification tells the couple a new RSVP arrived. withActual says
// whether the store tracks actual seats separately from assigned ones.
func CoupleNotification(r models.RSVP, withActual bool, received time.Time) string {
	attendance := "NO asistira"
	if r.Attendance == models.AttendanceYes {
		attendance = "SI asistira"
	}

	var seatInfo string
	switch {
	case r.Attendance == models.AttendanceYes && withActual && r.ActualGuestCount != nil:
		if *r.ActualGuestCount == r.GuestCount {
			seatInfo = fmt.Sprintf("ASIENTOS: Usara todos los %d asientos asignados", r.GuestCount)
		} else {
			seatInfo = fmt.Sprintf("ASIENTOS: Usara %d de %d asientos asignados", *r.ActualGuestCount, r.GuestCount)
		}
	case r.Attendance == models.AttendanceYes:
		seatInfo = fmt.Sprintf("ASIENTOS: %d asientos asignados", r.GuestCount)
	default:
		seatInfo = fmt.Sprintf("ASIENTOS: Tenia %d asientos asignados", r.GuestCount)
	}

	message := strings.TrimSpace(r.Message)
	if message == "" {
		message = "Sin mensaje"
	}

	return "Nueva confirmacion de boda\n\n" +
		"INVITADO: " + r.GuestName + "\n" +
		"ASISTENCIA: " + attendance + "\n" +
		seatInfo + "\n" +
		"MENSAJE: " + message + "\n\n" +
		"RECIBIDO: " + received.Format("02/01/2006 15:04:05")
}

// ReplyConfirmation answers a guest who replied to an invitation on WhatsApp
func ReplyConfirmation(ev Event, attendance models.Attendance) string {
	if attendance == models.AttendanceYes {
		return fmt.Sprintf(
			"🎉 ¡Qué alegría! Confirmamos tu asistencia a la boda de %s el %s.\n\n¡Nos vemos pronto! 💕",
			ev.CoupleNames, ev.Date,
		)
	}
	return fmt.Sprintf(
		"Gracias por avisarnos. Lamentamos que no puedas acompañarnos en la boda de %s.\n\n¡Te vamos a extrañar! 💕",
		ev.CoupleNames,
	)
}
