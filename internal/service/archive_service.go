package service

import (
	"context"
	"log"
	"time"

	"quizarena/internal/cache"
	"quizarena/internal/game"
	"quizarena/internal/model"
	"quizarena/internal/repository"
)

// ArchiveService records finished rounds to Mongo and mirrors career points
// to the Redis leaderboard. The game core hands it records synchronously;
// the writes happen in the background so no session operation ever waits on
// a database.
type ArchiveService struct {
	rounds      repository.RoundRepo
	leaderboard cache.LeaderboardCache
	timeout     time.Duration
}

// NewArchiveService creates a new archive service.
func NewArchiveService(rounds repository.RoundRepo, leaderboard cache.LeaderboardCache) *ArchiveService {
	return &ArchiveService{
		rounds:      rounds,
		leaderboard: leaderboard,
		timeout:     5 * time.Second,
	}
}

// ArchiveRound implements game.Archiver.
func (s *ArchiveService) ArchiveRound(rec model.RoundRecord) {
	go s.record(rec)
}

func (s *ArchiveService) record(rec model.RoundRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.rounds.Insert(ctx, &rec); err != nil {
		log.Printf("archive round for session %s: %v", rec.SessionID, err)
	}

	if rec.Winner == "" {
		return
	}
	if err := s.leaderboard.AddPoints(ctx, rec.Winner, game.PointsPerCorrectGuess); err != nil {
		log.Printf("update leaderboard for %s: %v", rec.Winner, err)
	}
}

// ListRounds returns the archived rounds for a session id, newest first.
func (s *ArchiveService) ListRounds(ctx context.Context, sessionID string) ([]*model.RoundRecord, error) {
	return s.rounds.ListBySession(ctx, sessionID)
}
