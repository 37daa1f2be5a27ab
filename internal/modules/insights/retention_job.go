package insights

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetentionJob removes insights older than the retention window
type RetentionJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewRetentionJob creates a retention job keeping insights for retention
func NewRetentionJob(repo *Repository, retention time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		repo:      repo,
		retention: retention,
		log:       log.With().Str("job", "insight_retention").Logger(),
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "insight_retention"
}

// Run deletes expired insights. A non-positive retention keeps everything.
func (j *RetentionJob) Run() error {
	if j.retention <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := j.repo.DeleteOlderThan(ctx, j.repo.now().Add(-j.retention))
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Dur("retention", j.retention).Msg("Pruned old insights")
	}
	return nil
}
