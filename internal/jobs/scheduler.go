package jobs

import (
	"context"
	"time"

	"app/internal/repository"
	"app/internal/token"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler は定期掃除をまとめる。
// 期限切れrefresh tokenの削除と、メモリdeny-listの期限切れエントリの掃除。
type Scheduler struct {
	cron     *cron.Cron
	rtRepo   repository.RefreshTokenRepository
	denylist *token.MemoryDenylist // Redis利用時はnil（TTLはRedisが面倒を見る）
	log      zerolog.Logger
}

// DI
func NewScheduler(rtRepo repository.RefreshTokenRepository, denylist *token.MemoryDenylist, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		rtRepo:   rtRepo,
		denylist: denylist,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	// 毎時0分にrefresh tokenの期限切れを削除
	if _, err := s.cron.AddFunc("0 * * * *", s.cleanupRefreshTokens); err != nil {
		return err
	}

	if s.denylist != nil {
		if _, err := s.cron.AddFunc("*/10 * * * *", s.purgeDenylist); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) cleanupRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.rtRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("refresh token cleanup failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired refresh tokens removed")
	}
}

func (s *Scheduler) purgeDenylist() {
	if n := s.denylist.Purge(); n > 0 {
		s.log.Debug().Int("purged", n).Msg("denylist entries expired")
	}
}
