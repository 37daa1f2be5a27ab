package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdash/backend/internal/database"
)

// walFrameThreshold is the WAL size in frames above which a TRUNCATE
// checkpoint is forced
const walFrameThreshold = 1000

// DatabaseMaintenanceJob health-checks each database and keeps WAL files small
type DatabaseMaintenanceJob struct {
	databases []*database.DB
	timeout   time.Duration
	log       zerolog.Logger
}

// NewDatabaseMaintenanceJob creates the job. Nil databases are ignored.
func NewDatabaseMaintenanceJob(log zerolog.Logger, databases ...*database.DB) *DatabaseMaintenanceJob {
	dbs := make([]*database.DB, 0, len(databases))
	for _, db := range databases {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return &DatabaseMaintenanceJob{
		databases: dbs,
		timeout:   30 * time.Second,
		log:       log.With().Str("job", "database_maintenance").Logger(),
	}
}

// Name returns the job name
func (j *DatabaseMaintenanceJob) Name() string {
	return "database_maintenance"
}

// Run checks every database. A failed health check fails the job; WAL
// problems are only logged.
func (j *DatabaseMaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	var errs []error
	for _, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			errs = append(errs, err)
			continue
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.Conn().QueryRowContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to check WAL checkpoint")
			continue
		}

		if frames > walFrameThreshold {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, truncating")
			if err := db.WALCheckpoint("TRUNCATE"); err != nil {
				j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL truncate failed")
			}
			continue
		}

		j.log.Debug().
			Str("database", db.Name()).
			Int("wal_frames", frames).
			Msg("WAL checkpoint status OK")
	}

	if len(errs) > 0 {
		return fmt.Errorf("database maintenance: %w", errors.Join(errs...))
	}
	return nil
}
