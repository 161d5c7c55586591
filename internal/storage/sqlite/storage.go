// Package sqlite persists users, match history, and the dictionary in a
// single SQLite database, keeping the table layout of the legacy server so
// existing databases remain readable.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/storage"
)

// timeLayout matches the strftime format the legacy server wrote.
const timeLayout = "2006-01-02 15:04:05"

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema.
func New(path string) (*Storage, error) {
	// WAL keeps concurrent readers from stalling the game loop's writes
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS user (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		isOnline INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS game_history (
		game_id TEXT PRIMARY KEY,
		player1 TEXT NOT NULL,
		player2 TEXT NOT NULL,
		player1_score INTEGER NOT NULL,
		player2_score INTEGER NOT NULL,
		winner TEXT NOT NULL,
		word TEXT NOT NULL,
		end_reason TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_player1 ON game_history(player1);
	CREATE INDEX IF NOT EXISTS idx_history_player2 ON game_history(player2);

	CREATE TABLE IF NOT EXISTS moves (
		game_id TEXT NOT NULL,
		move_index INTEGER NOT NULL,
		player_name TEXT NOT NULL,
		guess TEXT NOT NULL,
		result TEXT NOT NULL,
		played_at TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (game_id, move_index)
	);

	CREATE TABLE IF NOT EXISTS dictionary (
		word_index INTEGER PRIMARY KEY AUTOINCREMENT,
		word TEXT NOT NULL UNIQUE
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	exists, err := s.UserExists(ctx, user.Username)
	if err != nil {
		return err
	}
	if exists {
		return model.ErrUserExists
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user (username, password, score, isOnline) VALUES (?, ?, ?, ?)`,
		user.Username, user.Password, user.Score, boolToInt(user.IsOnline))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT username, password, score, isOnline FROM user WHERE username = ?`, username)

	var user model.User
	var online int
	if err := row.Scan(&user.Username, &user.Password, &user.Score, &online); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.IsOnline = online != 0
	return &user, nil
}

func (s *Storage) UserExists(ctx context.Context, username string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return count > 0, nil
}

func (s *Storage) SetUserOnline(ctx context.Context, username string, online bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user SET isOnline = ? WHERE username = ?`, boolToInt(online), username)
	if err != nil {
		return fmt.Errorf("set user online: %w", err)
	}
	return requireRow(res)
}

func (s *Storage) UpdateUserScore(ctx context.Context, username string, score int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user SET score = ? WHERE username = ?`, score, username)
	if err != nil {
		return fmt.Errorf("update user score: %w", err)
	}
	return requireRow(res)
}

func (s *Storage) ListOnlineUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password, score, isOnline FROM user WHERE isOnline = 1 ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *Storage) ListUsersByScoreProximity(ctx context.Context, username string, limit int) ([]*model.User, error) {
	ref, err := s.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, score, isOnline
		FROM user
		WHERE username != ?
		ORDER BY ABS(score - ?) ASC, username ASC
		LIMIT ?`,
		username, ref.Score, limit)
	if err != nil {
		return nil, fmt.Errorf("list users by score proximity: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]*model.User, error) {
	var users []*model.User
	for rows.Next() {
		var user model.User
		var online int
		if err := rows.Scan(&user.Username, &user.Password, &user.Score, &online); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.IsOnline = online != 0
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Game history operations

func (s *Storage) SaveGameHistory(ctx context.Context, record *model.GameHistoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO game_history
			(game_id, player1, player2, player1_score, player2_score, winner, word, end_reason, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(record.SessionID), record.Player1, record.Player2,
		record.Player1Score, record.Player2Score,
		record.Winner, record.FinalWord, record.EndReason,
		record.StartTime.UTC().Format(timeLayout),
		record.EndTime.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save game history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM moves WHERE game_id = ?`, string(record.SessionID)); err != nil {
		return fmt.Errorf("clear moves: %w", err)
	}

	for i, move := range record.Moves {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO moves (game_id, move_index, player_name, guess, result, played_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			string(record.SessionID), i, move.PlayerName, move.Guess, move.Result,
			move.PlayedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("save move %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (s *Storage) GetGameHistory(ctx context.Context, id model.SessionID) (*model.GameHistoryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT game_id, player1, player2, player1_score, player2_score, winner, word, end_reason, start_time, end_time
		FROM game_history WHERE game_id = ?`, string(id))

	record, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	if err := s.loadMoves(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Storage) ListGameHistoryByPlayer(ctx context.Context, playerName string) ([]*model.GameHistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, player1, player2, player1_score, player2_score, winner, word, end_reason, start_time, end_time
		FROM game_history
		WHERE player1 = ? OR player2 = ?
		ORDER BY start_time ASC, game_id ASC`,
		playerName, playerName)
	if err != nil {
		return nil, fmt.Errorf("list game history: %w", err)
	}
	defer rows.Close()

	var records []*model.GameHistoryRecord
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, record := range records {
		if err := s.loadMoves(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*model.GameHistoryRecord, error) {
	var record model.GameHistoryRecord
	var id, start, end string
	err := row.Scan(&id, &record.Player1, &record.Player2,
		&record.Player1Score, &record.Player2Score,
		&record.Winner, &record.FinalWord, &record.EndReason, &start, &end)
	if err != nil {
		return nil, err
	}
	record.SessionID = model.SessionID(id)
	if record.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if record.EndTime, err = parseTime(end); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) loadMoves(ctx context.Context, record *model.GameHistoryRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_name, guess, result, played_at
		FROM moves WHERE game_id = ? ORDER BY move_index ASC`,
		string(record.SessionID))
	if err != nil {
		return fmt.Errorf("load moves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var move model.Move
		var playedAt string
		if err := rows.Scan(&move.PlayerName, &move.Guess, &move.Result, &playedAt); err != nil {
			return fmt.Errorf("scan move: %w", err)
		}
		if move.PlayedAt, err = parseTime(playedAt); err != nil {
			return err
		}
		record.Moves = append(record.Moves, move)
	}
	return rows.Err()
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return t, nil
}

// Dictionary operations

func (s *Storage) SaveDictionaryWords(ctx context.Context, words []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dictionary save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dictionary`); err != nil {
		return fmt.Errorf("clear dictionary: %w", err)
	}
	for _, word := range words {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO dictionary (word) VALUES (?)`, word); err != nil {
			return fmt.Errorf("save dictionary word: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Storage) GetDictionaryWords(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word FROM dictionary ORDER BY word_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("get dictionary words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan dictionary word: %w", err)
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
