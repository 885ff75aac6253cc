package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/vieri-corp/vieribot/internal/models"
)

// ErrNotFound is returned when a delete or stats update targets a monitor
// that does not exist.
var ErrNotFound = errors.New("monitor not found")

// InsertOutcome classifies a successful InsertMonitor call. A duplicate is
// an expected outcome under the (channel, username) uniqueness constraint,
// not an error.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	Duplicate
)

// MonitorStats carries the refreshable fields of a monitor row. UserID and
// ChannelID never change after insert.
type MonitorStats struct {
	Username              string
	GameTime              float64
	GamesPlayed           int
	LastPersonalBest40L   *int
	LastPersonalBestBlitz *int
}

// Repository handles database operations for monitors
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository instance
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListMonitors returns all monitors for a channel.
func (r *Repository) ListMonitors(ctx context.Context, channelID string) ([]models.Monitor, error) {
	var monitors []models.Monitor
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Where("channel_id = ?", channelID).Find(&monitors).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list monitors: %w", err)
	}
	return monitors, nil
}

// GetMonitor returns one monitor by channel and username, or ErrNotFound.
func (r *Repository) GetMonitor(ctx context.Context, channelID, username string) (*models.Monitor, error) {
	var monitor models.Monitor
	err := withRetry(func() error {
		return r.db.WithContext(ctx).
			Where("channel_id = ? AND username = ?", channelID, username).
			First(&monitor).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monitor: %w", err)
	}
	return &monitor, nil
}

// InsertMonitor stores a new monitor. A uniqueness violation on
// (channel_id, username) reports Duplicate; every other failure is an error.
func (r *Repository) InsertMonitor(ctx context.Context, monitor *models.Monitor) (InsertOutcome, error) {
	var result *gorm.DB
	err := withRetry(func() error {
		result = r.db.WithContext(ctx).Create(monitor)
		return result.Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Duplicate, nil
		}
		return 0, fmt.Errorf("failed to insert monitor: %w", err)
	}
	if result.RowsAffected != 1 {
		return 0, fmt.Errorf("insert affected %d rows, want 1", result.RowsAffected)
	}
	return Inserted, nil
}

// UpdateMonitorStats overwrites the refreshable fields of the monitor keyed
// by channel and user id. ErrNotFound when no row matches.
func (r *Repository) UpdateMonitorStats(ctx context.Context, channelID, userID string, stats MonitorStats) error {
	var result *gorm.DB
	err := withRetry(func() error {
		result = r.db.WithContext(ctx).Model(&models.Monitor{}).
			Where("channel_id = ? AND user_id = ?", channelID, userID).
			Updates(map[string]any{
				"username":                 stats.Username,
				"game_time":                stats.GameTime,
				"games_played":             stats.GamesPlayed,
				"last_personal_best_40l":   stats.LastPersonalBest40L,
				"last_personal_best_blitz": stats.LastPersonalBestBlitz,
			})
		return result.Error
	})
	if err != nil {
		return fmt.Errorf("failed to update monitor stats: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("stats update affected %d rows, want 1", result.RowsAffected)
	}
	return nil
}

// DeleteMonitor removes one monitor and returns the removed row.
// ErrNotFound when no row matches.
func (r *Repository) DeleteMonitor(ctx context.Context, channelID, username string) (*models.Monitor, error) {
	var deleted models.Monitor
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("channel_id = ? AND username = ?", channelID, username).
				First(&deleted).Error; err != nil {
				return err
			}
			result := tx.Where("channel_id = ? AND username = ?", channelID, username).
				Delete(&models.Monitor{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != 1 {
				return fmt.Errorf("delete affected %d rows, want 1", result.RowsAffected)
			}
			return nil
		})
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete monitor: %w", err)
	}
	return &deleted, nil
}

// ListChannelIDs returns the distinct channels that have monitors.
func (r *Repository) ListChannelIDs(ctx context.Context) ([]string, error) {
	var channels []string
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Model(&models.Monitor{}).
			Distinct().Pluck("channel_id", &channels).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// isUniqueViolation reports whether err is the database's unique-constraint
// signal: code 23505 on postgres, a unique or primary-key constraint
// extended code on sqlite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
