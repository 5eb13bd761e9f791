// Package storage provides the SQLite game journal: every dealt board and
// every move, so games can be listed and replayed.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/multiplayer"
)

// Game modes stored in the journal.
const (
	ModeLocal  = "local"
	ModeShared = "shared"
)

// ErrNotFound is returned when a journaled game does not exist.
var ErrNotFound = errors.New("storage: game not found")

// Store manages the SQLite database connection for the game journal.
type Store struct {
	db *sql.DB
}

// GameRecord is one dealt board.
// Seed and Palette rebuild random boards; LayoutID names a fixed one.
type GameRecord struct {
	ID        int64
	GameID    string // Registry ID, e.g. "tilefall"
	Mode      string // ModeLocal or ModeShared
	TableCode string // Shared tables only
	Player    string // Who dealt the board
	Seed      int64
	Width     int
	Height    int
	Palette   []core.Colour
	LayoutID  string
	Tiles     int // Tiles on the starting board
	CreatedAt time.Time
}

// MoveRecord is one selection that removed tiles.
type MoveRecord struct {
	ID        int64
	GameRef   int64
	Seq       int // 1-based order within the game
	X, Y      int
	Removed   int
	Player    string
	CreatedAt time.Time
}

// GameSummary is a GameRecord with its move totals.
type GameSummary struct {
	GameRecord
	Moves   int
	Cleared int // Tiles removed so far
}

// Finished reports whether every starting tile was removed.
func (s GameSummary) Finished() bool {
	return s.Tiles > 0 && s.Cleared >= s.Tiles
}

// Stats contains aggregated journal statistics.
type Stats struct {
	Games         int
	Moves         int
	TilesCleared  int64
	BoardsCleared int
	LastPlayed    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			table_code TEXT NOT NULL DEFAULT '',
			player TEXT NOT NULL DEFAULT '',
			seed INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			palette TEXT NOT NULL DEFAULT '',
			layout_id TEXT NOT NULL DEFAULT '',
			tiles INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_games_table_code ON games(table_code);

		CREATE TABLE IF NOT EXISTS moves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_ref INTEGER NOT NULL REFERENCES games(id),
			seq INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			removed INTEGER NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(game_ref, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_moves_game_ref ON moves(game_ref);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateGame journals a new board.
// Returns the ID of the inserted record.
func (s *Store) CreateGame(g GameRecord) (int64, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return 0, fmt.Errorf("storage: cannot save game: invalid size %dx%d", g.Width, g.Height)
	}
	if g.Mode == "" {
		g.Mode = ModeLocal
	}

	result, err := s.db.Exec(
		`INSERT INTO games
		 (game_id, mode, table_code, player, seed, width, height, palette, layout_id, tiles)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.GameID, g.Mode, g.TableCode, g.Player, g.Seed, g.Width, g.Height,
		EncodePalette(g.Palette), g.LayoutID, g.Tiles,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecordMove appends a move to a journaled game.
func (s *Store) RecordMove(m MoveRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO moves (game_ref, seq, x, y, removed, player) VALUES (?, ?, ?, ?, ?, ?)",
		m.GameRef, m.Seq, m.X, m.Y, m.Removed, m.Player,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save move: %w", err)
	}
	return nil
}

const gameColumns = `g.id, g.game_id, g.mode, g.table_code, g.player, g.seed, g.width, g.height,
	g.palette, g.layout_id, g.tiles, g.created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner, extra ...any) (GameRecord, error) {
	var g GameRecord
	var palette string
	var createdAt any
	dest := append([]any{
		&g.ID, &g.GameID, &g.Mode, &g.TableCode, &g.Player, &g.Seed, &g.Width, &g.Height,
		&palette, &g.LayoutID, &g.Tiles, &createdAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return g, err
	}
	p, err := DecodePalette(palette)
	if err != nil {
		return g, fmt.Errorf("storage: game %d: %w", g.ID, err)
	}
	g.Palette = p
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

// Game retrieves a journaled game by ID.
func (s *Store) Game(id int64) (GameRecord, error) {
	row := s.db.QueryRow("SELECT "+gameColumns+" FROM games g WHERE g.id = ?", id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("storage: cannot query game: %w", err)
	}
	return g, nil
}

// Moves retrieves every move of a game in order.
func (s *Store) Moves(gameRef int64) ([]MoveRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, game_ref, seq, x, y, removed, player, created_at
		 FROM moves
		 WHERE game_ref = ?
		 ORDER BY seq`,
		gameRef,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		var createdAt any
		if err := rows.Scan(&m.ID, &m.GameRef, &m.Seq, &m.X, &m.Y, &m.Removed, &m.Player, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		m.CreatedAt = parseTime(createdAt)
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return moves, nil
}

// RecentGames retrieves the most recent games with their move totals.
func (s *Store) RecentGames(limit int) ([]GameSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+gameColumns+`, COUNT(m.id), COALESCE(SUM(m.removed), 0)
		 FROM games g
		 LEFT JOIN moves m ON m.game_ref = g.id
		 GROUP BY g.id
		 ORDER BY g.id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	defer rows.Close()

	var summaries []GameSummary
	for rows.Next() {
		var sum GameSummary
		g, err := scanGame(rows, &sum.Moves, &sum.Cleared)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sum.GameRecord = g
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return summaries, nil
}

// Stats retrieves aggregated statistics over the whole journal.
func (s *Store) Stats() (Stats, error) {
	var st Stats

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(removed), 0) FROM moves`,
	).Scan(&st.Moves, &st.TilesCleared)
	if err != nil {
		return st, fmt.Errorf("storage: cannot get move stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT COUNT(*), MAX(created_at) FROM games`,
	).Scan(&st.Games, &lastPlayed)
	if err != nil {
		return st, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	st.LastPlayed = parseTime(lastPlayed)

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM (
			SELECT g.id FROM games g
			JOIN moves m ON m.game_ref = g.id
			WHERE g.tiles > 0
			GROUP BY g.id
			HAVING SUM(m.removed) >= g.tiles
		)`,
	).Scan(&st.BoardsCleared)
	if err != nil {
		return st, fmt.Errorf("storage: cannot get cleared boards: %w", err)
	}

	return st, nil
}

// DeleteGame removes a game and its moves.
func (s *Store) DeleteGame(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec("DELETE FROM moves WHERE game_ref = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete moves: %w", err)
	}
	res, err := tx.Exec("DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete game: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit: %w", err)
	}
	return nil
}

// StartTable implements multiplayer.TableJournal.
// This adapter allows the coordinator to journal shared boards without direct storage dependency.
func (s *Store) StartTable(start multiplayer.TableStart) (int64, error) {
	return s.CreateGame(GameRecord{
		GameID:    "tilefall",
		Mode:      ModeShared,
		TableCode: start.Code,
		Player:    string(start.Host),
		Seed:      start.Seed,
		Width:     start.Width,
		Height:    start.Height,
		Palette:   start.Palette,
		Tiles:     start.Tiles,
	})
}

// RecordTableMove implements multiplayer.TableJournal.
func (s *Store) RecordTableMove(m multiplayer.TableMove) error {
	return s.RecordMove(MoveRecord{
		GameRef: m.GameRef,
		Seq:     m.Seq,
		X:       m.X,
		Y:       m.Y,
		Removed: m.Removed,
		Player:  string(m.Player),
	})
}

// Ensure Store implements TableJournal
var _ multiplayer.TableJournal = (*Store)(nil)

// EncodePalette stores colours as comma-separated names.
func EncodePalette(p []core.Colour) string {
	names := make([]string, len(p))
	for i, c := range p {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

// DecodePalette is the inverse of EncodePalette.
func DecodePalette(s string) ([]core.Colour, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]core.Colour, len(parts))
	for i, name := range parts {
		c, ok := core.ParseColour(name)
		if !ok || c.IsEmpty() {
			return nil, fmt.Errorf("unknown palette colour %q", name)
		}
		out[i] = c
	}
	return out, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
