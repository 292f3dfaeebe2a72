package guests

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	repo    *memory.GuestRepository
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.repo = memory.NewGuestRepository()
	s.service = NewService(s.repo, zerolog.Nop())
	s.ctx = context.Background()
}

func (s *ServiceSuite) add(name string) models.Guest {
	g, err := s.service.Add(s.ctx, NewGuest{Name: name, Phone: "+50377428772"})
	s.Require().NoError(err)
	return g
}

func (s *ServiceSuite) TestAddDefaults() {
	g := s.add("  Juan Pérez ")

	s.NotEmpty(g.ID)
	s.Equal("Juan Pérez", g.Name)
	s.Equal(models.DefaultSeatCount, g.SeatCount)
	s.False(g.InvitationSent)

	list, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]models.Guest{g}, list)
}

func (s *ServiceSuite) TestAddRequiresNameAndPhone() {
	_, err := s.service.Add(s.ctx, NewGuest{Name: "Ana"})
	s.ErrorIs(err, models.ErrInvalidGuest)

	_, err = s.service.Add(s.ctx, NewGuest{Phone: "123"})
	s.ErrorIs(err, models.ErrInvalidGuest)
}

func (s *ServiceSuite) TestRemove() {
	a := s.add("Ana")
	b := s.add("Luis")

	s.Require().NoError(s.service.Remove(s.ctx, a.ID))
	list, _ := s.service.List(s.ctx)
	s.Equal([]models.Guest{b}, list)

	s.ErrorIs(s.service.Remove(s.ctx, a.ID), models.ErrGuestNotFound)
}

func (s *ServiceSuite) TestToggleInvitation() {
	g := s.add("Ana")

	toggled, err := s.service.ToggleInvitation(s.ctx, g.ID)
	s.Require().NoError(err)
	s.True(toggled.InvitationSent)
	s.False(toggled.InvitedAt.IsZero())

	toggled, err = s.service.ToggleInvitation(s.ctx, g.ID)
	s.Require().NoError(err)
	s.False(toggled.InvitationSent)

	_, err = s.service.ToggleInvitation(s.ctx, "missing")
	s.ErrorIs(err, models.ErrGuestNotFound)
}

func (s *ServiceSuite) TestMarkAllSent() {
	a := s.add("Ana")
	s.add("Luis")
	_, err := s.service.ToggleInvitation(s.ctx, a.ID)
	s.Require().NoError(err)

	n, err := s.service.MarkAllSent(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	list, _ := s.service.List(s.ctx)
	for _, g := range list {
		s.True(g.InvitationSent, g.Name)
	}
}

func (s *ServiceSuite) TestMarkSentAndMarkSentByName() {
	a := s.add("Ana Torres")
	b := s.add("Luis Gómez")
	s.add("Pedro Ruiz")

	s.Require().NoError(s.service.MarkSent(s.ctx, a.ID, "unknown"))
	n, err := s.service.MarkSentByName(s.ctx, b.Name)
	s.Require().NoError(err)
	s.Equal(1, n)

	list, _ := s.service.List(s.ctx)
	s.True(list[0].InvitationSent)
	s.True(list[1].InvitationSent)
	s.False(list[2].InvitationSent)
}

func (s *ServiceSuite) TestImportCSV() {
	s.add("Existing Guest")

	csv := "Juan Pérez,+50377428772,2\n\nMaría García,+50377428773,4\nCarlos López, +50377428774\nAna Ruiz,+50377428775,abc\n"
	imported, err := s.service.ImportCSV(s.ctx, strings.NewReader(csv))
	s.Require().NoError(err)
	s.Require().Len(imported, 4)

	s.Equal("Juan Pérez", imported[0].Name)
	s.Equal(2, imported[0].SeatCount)
	s.Equal(4, imported[1].SeatCount)
	s.Equal("+50377428774", imported[2].Phone)
	s.Equal(models.DefaultSeatCount, imported[2].SeatCount)
	s.Equal(models.DefaultSeatCount, imported[3].SeatCount)
	for _, g := range imported {
		s.False(g.InvitationSent)
		s.NotEmpty(g.ID)
	}

	list, _ := s.service.List(s.ctx)
	s.Len(list, 5)
	s.Equal("Existing Guest", list[0].Name)
}

func (s *ServiceSuite) TestImportCSVRejectsShortLine() {
	_, err := s.service.ImportCSV(s.ctx, strings.NewReader("Juan Pérez,+50377428772,2\nSolo Nombre\n"))
	s.ErrorIs(err, models.ErrInvalidGuest)
	s.Contains(err.Error(), "line 2")

	list, _ := s.service.List(s.ctx)
	s.Empty(list)
}

func (s *ServiceSuite) TestExportImportJSONRoundTrip() {
	a := s.add("Ana")
	_, err := s.service.ToggleInvitation(s.ctx, a.ID)
	s.Require().NoError(err)
	s.add("Luis")

	var buf bytes.Buffer
	s.Require().NoError(s.service.ExportJSON(s.ctx, &buf))
	before, _ := s.service.List(s.ctx)

	s.Require().NoError(s.service.Clear(s.ctx))
	empty, _ := s.service.List(s.ctx)
	s.Empty(empty)

	imported, err := s.service.ImportJSON(s.ctx, &buf)
	s.Require().NoError(err)
	s.Len(imported, 2)

	after, _ := s.service.List(s.ctx)
	s.Require().Len(after, 2)
	for i := range before {
		s.Equal(before[i].ID, after[i].ID)
		s.Equal(before[i].InvitationSent, after[i].InvitationSent)
		s.True(before[i].InvitedAt.Equal(after[i].InvitedAt))
	}
}

func (s *ServiceSuite) TestImportJSONRejectsNonArray() {
	s.add("Ana")

	_, err := s.service.ImportJSON(s.ctx, strings.NewReader(`{"name":"x"}`))
	s.ErrorIs(err, models.ErrInvalidGuest)

	list, _ := s.service.List(s.ctx)
	s.Len(list, 1)
}

func (s *ServiceSuite) TestImportJSONAssignsIDs() {
	imported, err := s.service.ImportJSON(s.ctx, strings.NewReader(`[{"name":"Ana","phone":"1","seatCount":3,"invitationSent":true}]`))
	s.Require().NoError(err)
	s.Require().Len(imported, 1)
	s.NotEmpty(imported[0].ID)
	s.True(imported[0].InvitationSent)
}
