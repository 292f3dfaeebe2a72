package followup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage/memory"
	redisstore "wedding-rsvp/internal/storage/redis"
	"wedding-rsvp/internal/whatsapp"
)

type fakeMessenger struct {
	sent   []string
	failOn map[string]bool
}

func (f *fakeMessenger) SendMessage(ctx context.Context, phone, text string) error {
	if f.failOn[phone] {
		return errors.New("not on whatsapp")
	}
	f.sent = append(f.sent, phone)
	return nil
}

var event = whatsapp.Event{CoupleNames: "Ana & Luis", Date: "20 de diciembre", SiteURL: "https://example.com"}

func fixture() (*memory.GuestRepository, *memory.RSVPStore) {
	guests := memory.NewGuestRepository(
		models.Guest{ID: "g1", Name: "Juan Pérez", Phone: "+50370000001", SeatCount: 2, InvitationSent: true},
		models.Guest{ID: "g2", Name: "María García", Phone: "+50370000002", SeatCount: 2, InvitationSent: true},
		models.Guest{ID: "g3", Name: "Carlos López", Phone: "+50370000003", SeatCount: 4, InvitationSent: false},
		models.Guest{ID: "g4", Name: "Rosa Martínez", Phone: "+50370000004", SeatCount: 1, InvitationSent: true},
	)
	rsvps := memory.NewRSVPStore(
		models.RSVP{ID: "r1", GuestName: "juan perez", Attendance: models.AttendanceYes, GuestCount: 2, CreatedAt: time.Now()},
	)
	return guests, rsvps
}

func newService(m Messenger) (*Service, *memory.GuestRepository) {
	guests, rsvps := fixture()
	s := NewService(guests, rsvps, m, Config{Event: event, CountryCode: "503"}, zerolog.Nop())
	return s, guests
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeReminder, m)

	m, err = ParseMode("initial")
	require.NoError(t, err)
	assert.Equal(t, ModeInvitation, m)

	_, err = ParseMode("bulk")
	assert.Error(t, err)
}

func TestPending(t *testing.T) {
	s, _ := newService(nil)

	pending, err := s.Pending(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(pending))
	for _, g := range pending {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"María García", "Rosa Martínez"}, names)
}

func TestUninvited(t *testing.T) {
	s, _ := newService(nil)

	uninvited, err := s.Uninvited(context.Background())
	require.NoError(t, err)
	require.Len(t, uninvited, 1)
	assert.Equal(t, "g3", uninvited[0].ID)
}

func TestLinks(t *testing.T) {
	s, _ := newService(nil)

	links, err := s.Links(context.Background(), ModeReminder)
	require.NoError(t, err)
	require.Len(t, links, 2)

	l := links[0]
	assert.Equal(t, "g2", l.GuestID)
	assert.Equal(t, "50370000002", l.CleanPhone)
	assert.True(t, strings.HasPrefix(l.WhatsAppURL, "https://wa.me/50370000002?text="))
	assert.NotContains(t, l.WhatsAppURL, "+")
	assert.Contains(t, l.Message, "María García")

	links, err = s.Links(context.Background(), ModeInvitation)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, whatsapp.InvitationMessage(event, models.Guest{ID: "g3", Name: "Carlos López", Phone: "+50370000003", SeatCount: 4}), links[0].Message)
}

func TestSendReminders(t *testing.T) {
	m := &fakeMessenger{failOn: map[string]bool{"+50370000004": true}}
	s, _ := newService(m)

	result, err := s.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"+50370000002"}, m.sent)
	assert.Len(t, result.Sent, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Rosa Martínez", result.Failed[0].Guest)
	assert.Equal(t, "not on whatsapp", result.Failed[0].Error)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "50%", result.SuccessRate)
}

func TestSendRemindersWaitsBetweenMessages(t *testing.T) {
	m := &fakeMessenger{}
	s, _ := newService(m)
	s.cfg.Interval = time.Second

	var waits []time.Duration
	s.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	_, err := s.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, waits)
}

func TestSendRemindersStopsOnCancel(t *testing.T) {
	m := &fakeMessenger{}
	s, _ := newService(m)
	s.cfg.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	s.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleep(ctx, d)
	}

	result, err := s.SendReminders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, result.Sent, 1)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "100%", result.SuccessRate)
}

func TestSendInvitationsMarksSent(t *testing.T) {
	m := &fakeMessenger{}
	s, guests := newService(m)

	result, err := s.SendInvitations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"+50370000003"}, m.sent)
	assert.Equal(t, "100%", result.SuccessRate)

	list, err := guests.Load(context.Background())
	require.NoError(t, err)
	for _, g := range list {
		assert.True(t, g.InvitationSent, g.Name)
	}
	assert.False(t, list[2].InvitedAt.IsZero())
}

func TestSendWithoutMessenger(t *testing.T) {
	s, _ := newService(nil)

	result, err := s.SendReminders(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, "0%", result.SuccessRate)
}

func TestSendInvitationsKeepsSentFlagsOnCancel(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	repo := redisstore.NewWithClient(client, redisstore.DefaultConfig())
	t.Cleanup(func() { _ = repo.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, repo.Save(ctx, []models.Guest{
		{ID: "a", Name: "Ana Torres", Phone: "+50370000001", SeatCount: 2},
		{ID: "b", Name: "Beto Ruiz", Phone: "+50370000002", SeatCount: 2},
	}))

	m := &fakeMessenger{}
	s := NewService(repo, memory.NewRSVPStore(), m, Config{Event: event, CountryCode: "503", Interval: time.Hour}, zerolog.Nop())
	s.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleep(ctx, d)
	}

	result, err := s.SendInvitations(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"+50370000001"}, m.sent)
	assert.Len(t, result.Sent, 1)

	list, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].InvitationSent)
	assert.False(t, list[0].InvitedAt.IsZero())
	assert.False(t, list[1].InvitationSent)

	// A second run only reaches the guest that was never messaged.
	m.sent = nil
	s.wait = sleep
	_, err = s.SendInvitations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"+50370000002"}, m.sent)
}

func TestInviteByID(t *testing.T) {
	m := &fakeMessenger{}
	s, guests := newService(m)

	res, err := s.Invite(context.Background(), InviteRequest{GuestID: "g3"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MethodWhatsApp, res.Method)
	assert.Equal(t, "Carlos López", res.Guest)
	assert.Empty(t, res.WhatsAppURL)
	assert.Equal(t, []string{"+50370000003"}, m.sent)

	list, err := guests.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, list[2].InvitationSent)
}

func TestInviteByNameMarksMatchingGuest(t *testing.T) {
	m := &fakeMessenger{}
	s, guests := newService(m)

	res, err := s.Invite(context.Background(), InviteRequest{GuestName: "Carlos López", Phone: "+50370000003", SeatCount: 4})
	require.NoError(t, err)
	assert.True(t, res.Success)

	list, err := guests.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, list[2].InvitationSent)
}

func TestInviteFallsBackToLink(t *testing.T) {
	t.Run("no messenger", func(t *testing.T) {
		s, guests := newService(nil)

		res, err := s.Invite(context.Background(), InviteRequest{GuestID: "g3"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, MethodWebLink, res.Method)
		assert.True(t, strings.HasPrefix(res.WhatsAppURL, "https://wa.me/50370000003?text="))

		list, err := guests.Load(context.Background())
		require.NoError(t, err)
		assert.False(t, list[2].InvitationSent)
	})

	t.Run("send fails", func(t *testing.T) {
		m := &fakeMessenger{failOn: map[string]bool{"+50370000003": true}}
		s, guests := newService(m)

		res, err := s.Invite(context.Background(), InviteRequest{GuestID: "g3"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, MethodWebLink, res.Method)
		assert.Equal(t, "not on whatsapp", res.Error)
		assert.NotEmpty(t, res.WhatsAppURL)

		list, err := guests.Load(context.Background())
		require.NoError(t, err)
		assert.False(t, list[2].InvitationSent)
	})
}

func TestInviteErrors(t *testing.T) {
	s, _ := newService(&fakeMessenger{})

	_, err := s.Invite(context.Background(), InviteRequest{GuestID: "missing"})
	assert.ErrorIs(t, err, models.ErrGuestNotFound)

	_, err = s.Invite(context.Background(), InviteRequest{GuestName: "Sin Teléfono"})
	assert.ErrorIs(t, err, models.ErrInvalidGuest)
}
