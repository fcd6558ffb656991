package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Stream is a named channel with a subscriber set and a configurable colour.
type Stream struct {
	ID                  int64
	Name                string
	Color               string // "#rrggbb"
	Description         string // Markdown source
	RenderedDescription string // Styled terminal text
	InviteOnly          bool
	WebPublic           bool
	Deleted             bool
	UpdatedAt           time.Time
}

// IsPublic reports whether any organization member can see the stream.
func (st *Stream) IsPublic() bool {
	return !st.InviteOnly
}

// SettingsPath returns the stream's settings route, e.g. "#streams/42/general".
func (st *Stream) SettingsPath() string {
	return fmt.Sprintf("#streams/%d/%s", st.ID, st.Name)
}

const streamColumns = `id, name, color, description, rendered_description,
	invite_only, web_public, deleted, updated_at`

func scanStream(row interface{ Scan(...any) error }) (*Stream, error) {
	var st Stream
	var updated int64
	if err := row.Scan(
		&st.ID, &st.Name, &st.Color, &st.Description, &st.RenderedDescription,
		&st.InviteOnly, &st.WebPublic, &st.Deleted, &updated,
	); err != nil {
		return nil, err
	}
	st.UpdatedAt = time.Unix(0, updated)
	return &st, nil
}

// UpsertStream inserts a stream or updates the existing row with the same ID.
// A zero ID allocates a new one, which is written back to st.
func (s *Store) UpsertStream(st *Stream) error {
	if st.Name == "" {
		return fmt.Errorf("upsert stream: name is required")
	}
	if st.Color == "" {
		st.Color = "#c2c2c2"
	}
	stamp := s.stamp()

	var id any
	if st.ID != 0 {
		id = st.ID
	}
	res, err := s.db.Exec(`
		INSERT INTO streams (id, name, color, description, rendered_description,
		                     invite_only, web_public, deleted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			description = excluded.description,
			rendered_description = excluded.rendered_description,
			invite_only = excluded.invite_only,
			web_public = excluded.web_public,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`, id, st.Name, st.Color, st.Description, st.RenderedDescription,
		st.InviteOnly, st.WebPublic, st.Deleted, stamp)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert stream %q: name already in use", st.Name)
		}
		return fmt.Errorf("upsert stream %q: %w", st.Name, err)
	}
	if st.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("upsert stream %q: last insert id: %w", st.Name, err)
		}
		st.ID = newID
	}
	st.UpdatedAt = time.Unix(0, stamp)
	return nil
}

// GetStream returns the stream with the given ID, including deleted streams.
func (s *Store) GetStream(id int64) (*Stream, error) {
	row := s.db.QueryRow(`SELECT `+streamColumns+` FROM streams WHERE id = ?`, id)
	st, err := scanStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get stream %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get stream %d: %w", id, err)
	}
	return st, nil
}

// StreamByName looks a stream up by case-insensitive name.
func (s *Store) StreamByName(name string) (*Stream, error) {
	row := s.db.QueryRow(`SELECT `+streamColumns+` FROM streams WHERE name = ?`, name)
	st, err := scanStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stream %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stream %q: %w", name, err)
	}
	return st, nil
}

// ListStreams returns all non-deleted streams ordered by name.
func (s *Store) ListStreams() ([]*Stream, error) {
	rows, err := s.db.Query(`SELECT ` + streamColumns + ` FROM streams WHERE deleted = 0 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var streams []*Stream
	for rows.Next() {
		st, err := scanStream(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		streams = append(streams, st)
	}
	return streams, rows.Err()
}

// SetColor changes a stream's colour.
func (s *Store) SetColor(id int64, color string) error {
	return s.updateStream(id, "set color", `UPDATE streams SET color = ?, updated_at = ? WHERE id = ?`, color)
}

// SetDescription stores a stream's markdown description with its rendered form.
func (s *Store) SetDescription(id int64, description, rendered string) error {
	return s.updateStream(id, "set description",
		`UPDATE streams SET description = ?, rendered_description = ?, updated_at = ? WHERE id = ?`,
		description, rendered)
}

// Rename changes a stream's name.
func (s *Store) Rename(id int64, name string) error {
	err := s.updateStream(id, "rename", `UPDATE streams SET name = ?, updated_at = ? WHERE id = ?`, name)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("rename stream %d: name %q already in use", id, name)
	}
	return err
}

// Archive marks a stream deleted. Archived streams no longer resolve in narrows.
func (s *Store) Archive(id int64) error {
	return s.updateStream(id, "archive", `UPDATE streams SET deleted = 1, updated_at = ? WHERE id = ?`)
}

// updateStream runs an UPDATE whose last two parameters are updated_at and id.
func (s *Store) updateStream(id int64, verb, query string, args ...any) error {
	args = append(args, s.stamp(), id)
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s stream %d: %w", verb, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s stream %d: %w", verb, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s stream %d: %w", verb, id, ErrNotFound)
	}
	return nil
}

// touch bumps a stream's change stamp inside a transaction.
func (s *Store) touch(tx *sql.Tx, id int64) error {
	res, err := tx.Exec(`UPDATE streams SET updated_at = ? WHERE id = ?`, s.stamp(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangedSince returns the IDs of streams modified strictly after t,
// together with the newest change stamp seen (t if nothing changed).
func (s *Store) ChangedSince(t time.Time) ([]int64, time.Time, error) {
	rows, err := s.db.Query(`SELECT id, updated_at FROM streams WHERE updated_at > ? ORDER BY updated_at`, t.UnixNano())
	if err != nil {
		return nil, t, fmt.Errorf("query changed streams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	latest := t
	var ids []int64
	for rows.Next() {
		var id, updated int64
		if err := rows.Scan(&id, &updated); err != nil {
			return nil, t, fmt.Errorf("scan changed stream: %w", err)
		}
		ids = append(ids, id)
		if ts := time.Unix(0, updated); ts.After(latest) {
			latest = ts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, t, err
	}
	return ids, latest, nil
}
