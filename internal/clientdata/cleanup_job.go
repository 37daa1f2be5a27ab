package clientdata

import (
	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/events"
)

// EventEmitter publishes cleanup results
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// Checkpointer truncates the write-ahead log after large deletes
type Checkpointer interface {
	WALCheckpoint(mode string) error
}

// CleanupJob removes expired entries from all cache tables.
type CleanupJob struct {
	repo   *Repository
	db     Checkpointer
	events EventEmitter
	log    zerolog.Logger
}

// NewCleanupJob creates a cache cleanup job. db and emitter may be nil.
func NewCleanupJob(repo *Repository, db Checkpointer, emitter EventEmitter, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:   repo,
		db:     db,
		events: emitter,
		log:    log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run removes all expired entries from all tables.
func (j *CleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired cache entries")
		return err
	}

	var totalDeleted int64
	for table, count := range results {
		if count > 0 {
			j.log.Debug().
				Str("table", table).
				Int64("deleted", count).
				Msg("Cleaned up expired cache entries")
			totalDeleted += count
		}
	}

	if totalDeleted == 0 {
		return nil
	}

	if j.db != nil {
		if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint after cleanup failed")
		}
	}

	if j.events != nil {
		j.events.Emit("clientdata", &events.CacheCleanedData{Deleted: totalDeleted})
	}

	j.log.Info().Int64("total_deleted", totalDeleted).Msg("Cache cleanup completed")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
