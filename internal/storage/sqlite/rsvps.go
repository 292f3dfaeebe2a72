package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"wedding-rsvp/internal/models"
	"wedding-rsvp/internal/storage"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

// RSVPStore keeps RSVPs in a SQLite database
type RSVPStore struct {
	db     *sql.DB
	schema storage.Schema
	now    func() time.Time
}

var _ storage.RSVPStore = (*RSVPStore)(nil)

// Open opens (creating if needed) the database at path and migrates it up
// to schema. The store reads and writes only the columns schema declares.
func Open(ctx context.Context, path string, schema storage.Schema) (*RSVPStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db, schema.Version); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &RSVPStore{db: db, schema: schema, now: time.Now}, nil
}

// Close closes the database
func (s *RSVPStore) Close() error {
	return s.db.Close()
}

// Schema returns the schema the store was opened with
func (s *RSVPStore) Schema() storage.Schema {
	return s.schema
}

func (s *RSVPStore) Insert(ctx context.Context, r models.RSVP) (models.RSVP, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	if !s.schema.HasActualGuestCount() {
		r.ActualGuestCount = nil
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO rsvps (id, guest_name, attendance, guest_count, message, created_at, ip_address, user_agent)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.GuestName, string(r.Attendance), r.GuestCount,
			nullString(r.Message), r.CreatedAt.Format(timeLayout),
			nullString(r.IPAddress), nullString(r.UserAgent),
		)
		if err != nil {
			return models.RSVP{}, fmt.Errorf("insert rsvp: %w", err)
		}
		return r, nil
	}

	var actual sql.NullInt64
	if r.ActualGuestCount != nil {
		actual = sql.NullInt64{Int64: int64(*r.ActualGuestCount), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rsvps (id, guest_name, attendance, guest_count, actual_guest_count, message, created_at, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GuestName, string(r.Attendance), r.GuestCount, actual,
		nullString(r.Message), r.CreatedAt.Format(timeLayout),
		nullString(r.IPAddress), nullString(r.UserAgent),
	)
	if err != nil {
		return models.RSVP{}, fmt.Errorf("insert rsvp: %w", err)
	}
	return r, nil
}

func (s *RSVPStore) List(ctx context.Context) ([]models.RSVP, error) {
	columns := `id, guest_name, attendance, guest_count, message, created_at, ip_address, user_agent`
	if s.schema.HasActualGuestCount() {
		columns += `, actual_guest_count`
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM rsvps ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query rsvps: %w", err)
	}
	defer rows.Close()

	rsvps := make([]models.RSVP, 0)
	for rows.Next() {
		var (
			r                      models.RSVP
			attendance, createdAt  string
			message, ip, userAgent sql.NullString
			actual                 sql.NullInt64
		)
		dest := []any{&r.ID, &r.GuestName, &attendance, &r.GuestCount, &message, &createdAt, &ip, &userAgent}
		if s.schema.HasActualGuestCount() {
			dest = append(dest, &actual)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}

		r.Attendance = models.Attendance(attendance)
		r.Message = message.String
		r.IPAddress = ip.String
		r.UserAgent = userAgent.String
		if actual.Valid {
			v := int(actual.Int64)
			r.ActualGuestCount = &v
		}
		if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", r.ID, err)
		}
		rsvps = append(rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rsvps: %w", err)
	}
	return rsvps, nil
}

func (s *RSVPStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rsvps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	if n == 0 {
		return models.ErrRSVPNotFound
	}
	return nil
}

func (s *RSVPStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rsvps`); err != nil {
		return fmt.Errorf("delete rsvps: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
