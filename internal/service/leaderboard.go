package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey = "nextbet:leaderboard"
	leaderboardTTL = 30 * time.Second
)

// LeaderboardService serves the points leaderboard, cached in a Redis
// sorted set. The cache is short-lived and rebuilt from Postgres on
// expiry; a nil Redis client disables caching entirely.
type LeaderboardService struct {
	pool     *pgxpool.Pool
	profiles repository.ProfileRepository
	redis    *redis.Client
	logger   *slog.Logger
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(pool *pgxpool.Pool, profiles repository.ProfileRepository, rdb *redis.Client, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{pool: pool, profiles: profiles, redis: rdb, logger: logger}
}

// Top returns the highest-points profiles.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	if s.redis != nil {
		entries, err := s.fromCache(ctx, limit)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", "error", err)
		} else if entries != nil {
			return entries, nil
		}
	}

	entries, err := s.profiles.Leaderboard(ctx, s.pool, limit)
	if err != nil {
		return nil, domain.ErrInternal("query leaderboard", err)
	}

	if s.redis != nil {
		if err := s.fillCache(ctx, entries); err != nil {
			s.logger.Warn("leaderboard cache fill failed", "error", err)
		}
	}
	return entries, nil
}

func (s *LeaderboardService) fromCache(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	results, err := s.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for _, z := range results {
		username, _ := z.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{
			Username: username,
			Points:   int64(z.Score),
		})
	}
	return entries, nil
}

func (s *LeaderboardService) fillCache(ctx context.Context, entries []domain.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{Score: float64(e.Points), Member: e.Username})
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	pipe.ZAdd(ctx, leaderboardKey, members...)
	pipe.Expire(ctx, leaderboardKey, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return err
}
