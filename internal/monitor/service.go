// Package monitor implements the reconciliation pipeline between the
// persisted monitor roster and the tetr.io channel API.
package monitor

import (
	"context"
	"time"

	"github.com/vieri-corp/vieribot/api"
	"github.com/vieri-corp/vieribot/internal/database"
	"github.com/vieri-corp/vieribot/internal/fanout"
	"github.com/vieri-corp/vieribot/internal/logger"
	"github.com/vieri-corp/vieribot/internal/models"
)

// TetrClient is the slice of the tetr.io API the pipeline consumes.
type TetrClient interface {
	GetUser(ctx context.Context, user string) (*api.User, error)
	GetUserRecords(ctx context.Context, user string) (*api.UserRecords, error)
}

// MonitorStore is the persistence surface the pipeline consumes.
type MonitorStore interface {
	ListMonitors(ctx context.Context, channelID string) ([]models.Monitor, error)
	InsertMonitor(ctx context.Context, monitor *models.Monitor) (database.InsertOutcome, error)
	UpdateMonitorStats(ctx context.Context, channelID, userID string, stats database.MonitorStats) error
	DeleteMonitor(ctx context.Context, channelID, username string) (*models.Monitor, error)
	ListChannelIDs(ctx context.Context) ([]string, error)
}

// Service orchestrates fetch fan-out and duplicate-aware persistence for a
// channel's monitor roster.
type Service struct {
	client TetrClient
	store  MonitorStore
	log    *logger.Logger
	limit  int
}

func NewService(client TetrClient, store MonitorStore, log *logger.Logger, limit int) *Service {
	if limit < 1 {
		limit = fanout.DefaultLimit
	}
	return &Service{client: client, store: store, log: log, limit: limit}
}

// FailedIdentity records one identity a batch operation could not process,
// with enough detail to retry it manually.
type FailedIdentity struct {
	Identity string
	Err      error
}

// AddSummary reports the outcome of a BulkAdd, one classification per input
// identity.
type AddSummary struct {
	Inserted  int
	Duplicate int
	Failed    []FailedIdentity
	Elapsed   time.Duration
}

// RefreshSummary reports the outcome of a RefreshAll.
type RefreshSummary struct {
	Attempted int
	Succeeded int
	Failed    []FailedIdentity
	Elapsed   time.Duration
}

// BulkAdd resolves identities against tetr.io under the concurrency cap and
// inserts a monitor for each resolved one. Per-identity failures land in the
// summary and never abort the batch.
func (s *Service) BulkAdd(ctx context.Context, channelID string, identities []string) *AddSummary {
	start := time.Now()
	summary := &AddSummary{}

	results := fanout.Map(ctx, identities, s.limit, func(ctx context.Context, identity string) (*api.User, error) {
		return s.client.GetUser(ctx, identity)
	})

	var fetched []*api.User
	for _, res := range results {
		if res.Err != nil {
			s.log.Warn("failed to fetch tetr.io user", "channel", channelID, "identity", res.Input, "error", res.Err)
			summary.Failed = append(summary.Failed, FailedIdentity{Identity: res.Input, Err: res.Err})
			continue
		}
		fetched = append(fetched, res.Output)
	}

	// Inserts run sequentially against the store; a failure on one never
	// rolls back the others.
	for _, user := range fetched {
		m := &models.Monitor{
			ChannelID:   channelID,
			UserID:      user.ID,
			Username:    user.Username,
			GameTime:    user.GameTime,
			GamesPlayed: user.GamesPlayed,
		}
		outcome, err := s.store.InsertMonitor(ctx, m)
		if err != nil {
			s.log.Warn("failed to insert monitor", "channel", channelID, "username", user.Username, "error", err)
			summary.Failed = append(summary.Failed, FailedIdentity{Identity: user.Username, Err: err})
			continue
		}
		switch outcome {
		case database.Inserted:
			summary.Inserted++
		case database.Duplicate:
			summary.Duplicate++
		}
	}

	summary.Elapsed = time.Since(start)
	s.log.Info("bulk add finished",
		"channel", channelID,
		"requested", len(identities),
		"inserted", summary.Inserted,
		"duplicate", summary.Duplicate,
		"failed", len(summary.Failed),
		"elapsed", summary.Elapsed,
	)
	return summary
}

type refreshed struct {
	user    *api.User
	records *api.UserRecords
}

// RefreshAll re-fetches every monitored identity of a channel and persists
// the refreshed stats. Failure to load the roster aborts the operation;
// everything after that is per-item and aggregated into the summary.
func (s *Service) RefreshAll(ctx context.Context, channelID string) (*RefreshSummary, error) {
	start := time.Now()

	monitors, err := s.store.ListMonitors(ctx, channelID)
	if err != nil {
		return nil, err
	}

	summary := &RefreshSummary{Attempted: len(monitors)}
	if len(monitors) == 0 {
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	results := fanout.Map(ctx, monitors, s.limit, func(ctx context.Context, m models.Monitor) (refreshed, error) {
		user, err := s.client.GetUser(ctx, m.UserID)
		if err != nil {
			return refreshed{}, err
		}
		records, err := s.client.GetUserRecords(ctx, m.UserID)
		if err != nil {
			return refreshed{}, err
		}
		return refreshed{user: user, records: records}, nil
	})

	for _, res := range results {
		m := res.Input
		if res.Err != nil {
			s.log.Warn("failed to refresh monitor", "channel", channelID, "user_id", m.UserID, "error", res.Err)
			summary.Failed = append(summary.Failed, FailedIdentity{Identity: m.Username, Err: res.Err})
			continue
		}
		stats := database.MonitorStats{
			Username:              res.Output.user.Username,
			GameTime:              res.Output.user.GameTime,
			GamesPlayed:           res.Output.user.GamesPlayed,
			LastPersonalBest40L:   personalBest40L(res.Output.records),
			LastPersonalBestBlitz: personalBestBlitz(res.Output.records),
		}
		if err := s.store.UpdateMonitorStats(ctx, channelID, m.UserID, stats); err != nil {
			s.log.Warn("failed to persist refreshed stats", "channel", channelID, "user_id", m.UserID, "error", err)
			summary.Failed = append(summary.Failed, FailedIdentity{Identity: m.Username, Err: err})
			continue
		}
		summary.Succeeded++
	}

	summary.Elapsed = time.Since(start)
	s.log.Info("refresh finished",
		"channel", channelID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", len(summary.Failed),
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

// List returns the channel's monitor roster.
func (s *Service) List(ctx context.Context, channelID string) ([]models.Monitor, error) {
	return s.store.ListMonitors(ctx, channelID)
}

// Remove deletes one monitor by username and returns the removed row.
// database.ErrNotFound passes through when no such monitor exists.
func (s *Service) Remove(ctx context.Context, channelID, username string) (*models.Monitor, error) {
	return s.store.DeleteMonitor(ctx, channelID, username)
}

// Record resolves a handle and fetches its per-mode personal bests without
// touching the store.
func (s *Service) Record(ctx context.Context, user string) (*api.User, *api.UserRecords, error) {
	resolved, err := s.client.GetUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.client.GetUserRecords(ctx, resolved.ID)
	if err != nil {
		return nil, nil, err
	}
	return resolved, records, nil
}

// Channels returns every channel id that has at least one monitor. The
// background refresh loop iterates these.
func (s *Service) Channels(ctx context.Context) ([]string, error) {
	return s.store.ListChannelIDs(ctx)
}

// personalBest40L extracts the 40 lines final time in whole milliseconds.
func personalBest40L(records *api.UserRecords) *int {
	if records == nil || records.Records.FortyLines.Record == nil {
		return nil
	}
	ms, ok := records.Records.FortyLines.Record.FinalTimeMillis()
	if !ok {
		return nil
	}
	return &ms
}

// personalBestBlitz extracts the blitz score.
func personalBestBlitz(records *api.UserRecords) *int {
	if records == nil || records.Records.Blitz.Record == nil {
		return nil
	}
	score, ok := records.Records.Blitz.Record.Score()
	if !ok {
		return nil
	}
	return &score
}
