package rsvp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
	"wedding-rsvp/internal/storage/memory"
)

type sentMessage struct {
	phone, text string
}

type fakeMessenger struct {
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendMessage(ctx context.Context, phone, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{phone, text})
	return nil
}

var fixedNow = time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

func newService(store storage.RSVPStore, m Messenger, schema storage.Schema) *Service {
	s := NewService(store, m, Config{CouplePhone: "+50370000000", Schema: schema}, zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSubmitDefaults(t *testing.T) {
	store := memory.NewRSVPStore()
	messenger := &fakeMessenger{}
	s := newService(store, messenger, storage.SchemaV2)

	r, err := s.Submit(context.Background(), Submission{
		GuestName:  "  Juan Pérez ",
		Attendance: "yes",
		IPAddress:  "10.0.0.1",
		UserAgent:  "Mozilla",
	})
	require.NoError(t, err)

	assert.Equal(t, "Juan Pérez", r.GuestName)
	assert.Equal(t, models.DefaultSeatCount, r.GuestCount)
	require.NotNil(t, r.ActualGuestCount)
	assert.Equal(t, models.DefaultSeatCount, *r.ActualGuestCount)
	assert.Equal(t, "10.0.0.1", r.IPAddress)

	stored, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "+50370000000", messenger.sent[0].phone)
	assert.Contains(t, messenger.sent[0].text, "INVITADO: Juan Pérez")
	assert.Contains(t, messenger.sent[0].text, "Usara todos los 2 asientos asignados")
}

func TestSubmitDeclineUsesNoSeats(t *testing.T) {
	s := newService(memory.NewRSVPStore(), nil, storage.SchemaV2)

	r, err := s.Submit(context.Background(), Submission{
		GuestName: "Luis", Attendance: "no", GuestCount: "4", ActualGuestCount: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, r.GuestCount)
	require.NotNil(t, r.ActualGuestCount)
	assert.Equal(t, 0, *r.ActualGuestCount)
	assert.Equal(t, 0, r.SeatsUsed())
}

func TestSubmitValidation(t *testing.T) {
	s := newService(memory.NewRSVPStore(), nil, storage.SchemaV2)
	ctx := context.Background()

	_, err := s.Submit(ctx, Submission{Attendance: "yes"})
	assert.ErrorIs(t, err, models.ErrInvalidRSVP)

	_, err = s.Submit(ctx, Submission{GuestName: "Ana"})
	assert.ErrorIs(t, err, models.ErrInvalidRSVP)

	_, err = s.Submit(ctx, Submission{GuestName: "Ana", Attendance: "maybe"})
	assert.ErrorIs(t, err, models.ErrInvalidRSVP)

	_, err = s.Submit(ctx, Submission{GuestName: "Ana", Attendance: "yes", GuestCount: "2", ActualGuestCount: "3"})
	assert.ErrorIs(t, err, models.ErrSeatsExceeded)
}

func TestSubmitSchemaV1(t *testing.T) {
	messenger := &fakeMessenger{}
	s := newService(memory.NewRSVPStore(), messenger, storage.SchemaV1)

	r, err := s.Submit(context.Background(), Submission{
		GuestName: "Ana", Attendance: "yes", GuestCount: "3", ActualGuestCount: "1",
	})
	require.NoError(t, err)
	assert.Nil(t, r.ActualGuestCount)
	assert.Equal(t, 3, r.SeatsUsed())

	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].text, "ASIENTOS: 3 asientos asignados")
}

func TestSubmitSucceedsWhenNotificationFails(t *testing.T) {
	store := memory.NewRSVPStore()
	s := newService(store, &fakeMessenger{err: errors.New("offline")}, storage.SchemaV2)

	_, err := s.Submit(context.Background(), Submission{GuestName: "Ana", Attendance: "yes"})
	require.NoError(t, err)

	stored, _ := store.List(context.Background())
	assert.Len(t, stored, 1)
}

func TestRecord(t *testing.T) {
	messenger := &fakeMessenger{}
	s := newService(memory.NewRSVPStore(), messenger, storage.SchemaV1)
	seats := 2

	r, err := s.Record(context.Background(), models.RSVP{
		GuestName: "María García", Attendance: models.AttendanceYes, GuestCount: 2, ActualGuestCount: &seats,
	})
	require.NoError(t, err)
	assert.Nil(t, r.ActualGuestCount)
	assert.Len(t, messenger.sent, 1)

	_, err = s.Record(context.Background(), models.RSVP{Attendance: models.AttendanceYes})
	assert.ErrorIs(t, err, models.ErrInvalidRSVP)
}

func TestStats(t *testing.T) {
	store := memory.NewRSVPStore(
		models.RSVP{ID: "1", GuestName: "Juan", Attendance: models.AttendanceYes, GuestCount: 2, CreatedAt: fixedNow.Add(-time.Hour)},
		models.RSVP{ID: "2", GuestName: "Luis", Attendance: models.AttendanceNo, GuestCount: 3, CreatedAt: fixedNow.AddDate(0, 0, -2)},
	)
	s := newService(store, nil, storage.SchemaV2)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RSVPStats{Total: 2, Attending: 1, NotAttending: 1, TotalGuests: 2, AssignedSeats: 5, Today: 1}, stats)
}

func TestIsTestData(t *testing.T) {
	old := fixedNow.AddDate(0, 0, -5)

	assert.True(t, IsTestData(models.RSVP{GuestName: "TEST - Database Check", CreatedAt: old}, fixedNow))
	assert.True(t, IsTestData(models.RSVP{GuestName: "Prueba uno", CreatedAt: old}, fixedNow))
	assert.True(t, IsTestData(models.RSVP{GuestName: "demo", CreatedAt: old}, fixedNow))
	assert.True(t, IsTestData(models.RSVP{GuestName: "Juan Pérez", CreatedAt: fixedNow.Add(-time.Minute)}, fixedNow))
	assert.False(t, IsTestData(models.RSVP{GuestName: "Juan Pérez", CreatedAt: old}, fixedNow))
}

func TestPurge(t *testing.T) {
	old := fixedNow.AddDate(0, 0, -5)
	store := memory.NewRSVPStore(
		models.RSVP{ID: "1", GuestName: "Juan Pérez", Attendance: models.AttendanceYes, CreatedAt: old},
		models.RSVP{ID: "2", GuestName: "TEST - Database Check", Attendance: models.AttendanceYes, CreatedAt: old},
		models.RSVP{ID: "3", GuestName: "María García", Attendance: models.AttendanceNo, CreatedAt: fixedNow},
	)
	s := newService(store, nil, storage.SchemaV2)
	ctx := context.Background()

	n, err := s.PurgeTestData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, _ := s.List(ctx)
	require.Len(t, left, 1)
	assert.Equal(t, "1", left[0].ID)

	require.NoError(t, s.PurgeAll(ctx))
	left, _ = s.List(ctx)
	assert.Empty(t, left)
}
