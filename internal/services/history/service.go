// Package history converts terminated sessions into persisted match
// records and serves queries over them.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/hmngo/wordchain/internal/model"
	"github.com/hmngo/wordchain/internal/storage"
)

// Service is the history archiver
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new history service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// BuildRecord snapshots a terminated session into an immutable record.
// The move log is truncated to model.MaxStoredMoves; storing long games
// lossy is accepted behavior carried over from the legacy format.
func (s *Service) BuildRecord(sess *model.Session, winner, reason string, endTime time.Time) *model.GameHistoryRecord {
	moves := sess.Moves
	if len(moves) > model.MaxStoredMoves {
		moves = moves[:model.MaxStoredMoves]
	}

	return &model.GameHistoryRecord{
		SessionID:    sess.ID,
		Player1:      sess.Player1,
		Player2:      sess.Player2,
		Player1Score: sess.Player1Score,
		Player2Score: sess.Player2Score,
		Winner:       winner,
		FinalWord:    sess.LastWord,
		EndReason:    reason,
		Moves:        append([]model.Move(nil), moves...),
		StartTime:    sess.StartTime,
		EndTime:      endTime,
	}
}

// Archive persists a record.
func (s *Service) Archive(ctx context.Context, record *model.GameHistoryRecord) error {
	if err := s.storage.SaveGameHistory(ctx, record); err != nil {
		s.logger.Error("failed to save game history",
			slog.String("session_id", string(record.SessionID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.logger.Info("game history saved",
		slog.String("session_id", string(record.SessionID)),
		slog.String("winner", record.Winner),
		slog.String("end_reason", record.EndReason),
	)
	return nil
}

// Record returns one persisted match record by session id.
func (s *Service) Record(ctx context.Context, id model.SessionID) (*model.GameHistoryRecord, error) {
	return s.storage.GetGameHistory(ctx, id)
}

// RecordsForPlayer returns every persisted record a player appears in.
func (s *Service) RecordsForPlayer(ctx context.Context, playerName string) ([]*model.GameHistoryRecord, error) {
	return s.storage.ListGameHistoryByPlayer(ctx, playerName)
}
