package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/whisperspace/server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	is_guest      BOOLEAN NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rooms (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	code       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	pin_hash   TEXT NOT NULL,
	creator_id INTEGER NOT NULL,
	is_active  BOOLEAN NOT NULL DEFAULT 1,
	empty_at   DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (creator_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS room_members (
	room_code TEXT NOT NULL,
	user_id   INTEGER NOT NULL,
	joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (room_code, user_id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code  TEXT NOT NULL,
	sender_id  INTEGER NOT NULL,
	content    TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT 'text',
	is_edited  BOOLEAN NOT NULL DEFAULT 0,
	edited_at  DATETIME,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (sender_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_code, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_rooms_empty_at ON rooms(empty_at) WHERE empty_at IS NOT NULL;
`

// New creates a SQLite store at dbPath and bootstraps the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a SQLite store and runs a setup function.
// Useful for tests that need to seed or replace the schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_guest) VALUES (?, ?, 0)`,
		username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) CreateGuestUser(ctx context.Context, username string) (*store.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_guest) VALUES (?, '', 1)`,
		username)
	if err != nil {
		return nil, fmt.Errorf("insert guest user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_guest, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_guest, created_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsGuest, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ==== RoomStore implementation ====

func (s *SQLiteStore) CreateRoom(ctx context.Context, room *store.Room) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (code, name, pin_hash, creator_id, is_active) VALUES (?, ?, ?, ?, 1)`,
		room.Code, room.Name, room.PINHash, room.CreatorID)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}

	room.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_members (room_code, user_id) VALUES (?, ?)`,
		room.Code, room.CreatorID); err != nil {
		return fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	room.IsActive = true
	room.EmptyAt = nil
	return nil
}

func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*store.Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, pin_hash, creator_id, is_active, empty_at, created_at
		 FROM rooms WHERE code = ?`, code)

	var r store.Room
	var emptyAt sql.NullTime
	err := row.Scan(&r.ID, &r.Code, &r.Name, &r.PINHash, &r.CreatorID, &r.IsActive, &emptyAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan room: %w", err)
	}
	if emptyAt.Valid {
		t := emptyAt.Time
		r.EmptyAt = &t
	}
	return &r, nil
}

func (s *SQLiteStore) AddMember(ctx context.Context, code string, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO room_members (room_code, user_id) VALUES (?, ?)`,
		code, userID); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}

	// A joined room is occupied again.
	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET empty_at = NULL, is_active = 1 WHERE code = ?`, code); err != nil {
		return fmt.Errorf("clear empty_at: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) RemoveMember(ctx context.Context, code string, userID int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM room_members WHERE room_code = ? AND user_id = ?`,
		code, userID); err != nil {
		return 0, fmt.Errorf("delete membership: %w", err)
	}

	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_members WHERE room_code = ?`, code).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}

	if remaining == 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE rooms SET empty_at = ?, is_active = 0 WHERE code = ?`,
			time.Now().UTC(), code); err != nil {
			return 0, fmt.Errorf("set empty_at: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return remaining, nil
}

func (s *SQLiteStore) IsMember(ctx context.Context, code string, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_members WHERE room_code = ? AND user_id = ?`,
		code, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count membership: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) FindRoomsEmptySince(ctx context.Context, cutoff time.Time) ([]*store.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, pin_hash, creator_id, is_active, empty_at, created_at
		 FROM rooms
		 WHERE is_active = 0 AND empty_at IS NOT NULL AND empty_at < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query empty rooms: %w", err)
	}
	defer rows.Close()

	var result []*store.Room
	for rows.Next() {
		var r store.Room
		var emptyAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.PINHash, &r.CreatorID, &r.IsActive, &emptyAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		if emptyAt.Valid {
			t := emptyAt.Time
			r.EmptyAt = &t
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) DeleteRoom(ctx context.Context, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM room_members WHERE room_code = ?`, code); err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM rooms WHERE code = ?`, code); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	return tx.Commit()
}

// ==== MessageStore implementation ====

func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	if msg.Type == "" {
		msg.Type = store.MessageTypeText
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (room_code, sender_id, content, type, is_edited, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		msg.Room, msg.SenderID, msg.Content, string(msg.Type), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	msg.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*store.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, room_code, sender_id, content, type, is_edited, edited_at, created_at
		 FROM messages WHERE id = ?`, id)

	var m store.Message
	var editedAt sql.NullTime
	var mtype string
	err := row.Scan(&m.ID, &m.Room, &m.SenderID, &m.Content, &mtype, &m.IsEdited, &editedAt, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	m.Type = store.MessageType(mtype)
	if editedAt.Valid {
		t := editedAt.Time
		m.EditedAt = &t
	}
	return &m, nil
}

func (s *SQLiteStore) UpdateMessage(ctx context.Context, msg *store.Message) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET content = ?, is_edited = ?, edited_at = ? WHERE id = ?`,
		msg.Content, msg.IsEdited, msg.EditedAt, msg.ID)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteMessagesByRoom(ctx context.Context, code string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE room_code = ?`, code)
	if err != nil {
		return 0, fmt.Errorf("delete room messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
