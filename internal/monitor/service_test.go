package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vieri-corp/vieribot/api"
	"github.com/vieri-corp/vieribot/internal/database"
	"github.com/vieri-corp/vieribot/internal/logger"
	"github.com/vieri-corp/vieribot/internal/models"
)

func newTestService(client *TetrClientMock, store *MonitorStoreMock, limit int) *Service {
	return NewService(client, store, logger.NewNop(), limit)
}

func tetrUser(id, username string) *api.User {
	return &api.User{
		ID:          id,
		Username:    username,
		GamesPlayed: 42,
		GamesWon:    21,
		GameTime:    3600.5,
	}
}

func tetrRecords() *api.UserRecords {
	return &api.UserRecords{
		Records: api.RankedRecords{
			FortyLines: api.ModeRecord{
				Record: &api.Record{EndContext: json.RawMessage(`{"finalTime": 52345.7}`)},
			},
			Blitz: api.ModeRecord{
				Record: &api.Record{EndContext: json.RawMessage(`{"score": 456789}`)},
			},
		},
	}
}

func TestBulkAddSingleSuccess(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	client.On("GetUser", "alice").Return(tetrUser("id-alice", "alice"), nil)
	store.On("InsertMonitor", mock.MatchedBy(func(m *models.Monitor) bool {
		return m.ChannelID == "c1" && m.UserID == "id-alice" && m.Username == "alice" &&
			m.GamesPlayed == 42 && m.GameTime == 3600.5
	})).Return(database.Inserted, nil)

	summary := svc.BulkAdd(context.Background(), "c1", []string{"alice"})
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 0, summary.Duplicate)
	assert.Empty(t, summary.Failed)
	client.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestBulkAddDuplicate(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	client.On("GetUser", "alice").Return(tetrUser("id-alice", "alice"), nil)
	store.On("InsertMonitor", mock.Anything).Return(database.Duplicate, nil)

	summary := svc.BulkAdd(context.Background(), "c1", []string{"alice"})
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicate)
	assert.Empty(t, summary.Failed)
}

func TestBulkAddFetchFailure(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	client.On("GetUser", "alice").Return(tetrUser("id-alice", "alice"), nil)
	client.On("GetUser", "bob").Return(nil, &api.Error{Kind: api.KindUnreachable, Handle: "bob"})
	client.On("GetUser", "carol").Return(tetrUser("id-carol", "carol"), nil)
	store.On("InsertMonitor", mock.Anything).Return(database.Inserted, nil)

	summary := svc.BulkAdd(context.Background(), "c1", []string{"alice", "bob", "carol"})
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 0, summary.Duplicate)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "bob", summary.Failed[0].Identity)
	kind, ok := api.KindOf(summary.Failed[0].Err)
	require.True(t, ok)
	assert.Equal(t, api.KindUnreachable, kind)

	// Every input identity has exactly one classification.
	total := summary.Inserted + summary.Duplicate + len(summary.Failed)
	assert.Equal(t, 3, total)
}

func TestBulkAddInsertFailure(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	client.On("GetUser", "alice").Return(tetrUser("id-alice", "alice"), nil)
	store.On("InsertMonitor", mock.Anything).Return(database.InsertOutcome(0), errors.New("connection reset"))

	summary := svc.BulkAdd(context.Background(), "c1", []string{"alice"})
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 0, summary.Duplicate)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "alice", summary.Failed[0].Identity)
}

func TestRefreshAllEmpty(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("ListMonitors", "c1").Return([]models.Monitor{}, nil)

	summary, err := svc.RefreshAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	store.AssertNotCalled(t, "UpdateMonitorStats", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "GetUser", mock.Anything)
}

func TestRefreshAllPersistsStats(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("ListMonitors", "c1").Return([]models.Monitor{
		{ChannelID: "c1", UserID: "id-alice", Username: "alice"},
	}, nil)
	refreshedUser := tetrUser("id-alice", "alice2")
	refreshedUser.GamesPlayed = 50
	refreshedUser.GameTime = 4000
	client.On("GetUser", "id-alice").Return(refreshedUser, nil)
	client.On("GetUserRecords", "id-alice").Return(tetrRecords(), nil)
	store.On("UpdateMonitorStats", "c1", "id-alice", mock.MatchedBy(func(stats database.MonitorStats) bool {
		return stats.Username == "alice2" &&
			stats.GamesPlayed == 50 &&
			stats.GameTime == 4000 &&
			stats.LastPersonalBest40L != nil && *stats.LastPersonalBest40L == 52345 &&
			stats.LastPersonalBestBlitz != nil && *stats.LastPersonalBestBlitz == 456789
	})).Return(nil)

	summary, err := svc.RefreshAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	store.AssertExpectations(t)
}

func TestRefreshAllPartialFailure(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("ListMonitors", "c1").Return([]models.Monitor{
		{ChannelID: "c1", UserID: "id-alice", Username: "alice"},
		{ChannelID: "c1", UserID: "id-bob", Username: "bob"},
		{ChannelID: "c1", UserID: "id-carol", Username: "carol"},
	}, nil)
	client.On("GetUser", "id-alice").Return(tetrUser("id-alice", "alice"), nil)
	client.On("GetUser", "id-bob").Return(nil, &api.Error{Kind: api.KindAPIError, Handle: "id-bob", Message: "boom"})
	client.On("GetUser", "id-carol").Return(tetrUser("id-carol", "carol"), nil)
	client.On("GetUserRecords", "id-alice").Return(tetrRecords(), nil)
	client.On("GetUserRecords", "id-carol").Return(tetrRecords(), nil)
	store.On("UpdateMonitorStats", "c1", "id-alice", mock.Anything).Return(nil)
	store.On("UpdateMonitorStats", "c1", "id-carol", mock.Anything).Return(nil)

	summary, err := svc.RefreshAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "bob", summary.Failed[0].Identity)
}

func TestRefreshAllUpdateFailure(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("ListMonitors", "c1").Return([]models.Monitor{
		{ChannelID: "c1", UserID: "id-alice", Username: "alice"},
	}, nil)
	client.On("GetUser", "id-alice").Return(tetrUser("id-alice", "alice"), nil)
	client.On("GetUserRecords", "id-alice").Return(tetrRecords(), nil)
	store.On("UpdateMonitorStats", "c1", "id-alice", mock.Anything).Return(errors.New("disk full"))

	summary, err := svc.RefreshAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
	require.Len(t, summary.Failed, 1)
}

func TestRefreshAllListFailureAborts(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("ListMonitors", "c1").Return(nil, errors.New("connection refused"))

	summary, err := svc.RefreshAll(context.Background(), "c1")
	require.Error(t, err)
	assert.Nil(t, summary)
	client.AssertNotCalled(t, "GetUser", mock.Anything)
}

func TestRefreshAllManyMonitors(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 64)

	monitors := make([]models.Monitor, 100)
	for i := range monitors {
		id := fmt.Sprintf("id-%03d", i)
		monitors[i] = models.Monitor{ChannelID: "c1", UserID: id, Username: fmt.Sprintf("user%03d", i)}
		client.On("GetUser", id).Return(tetrUser(id, fmt.Sprintf("user%03d", i)), nil)
		client.On("GetUserRecords", id).Return(tetrRecords(), nil)
	}
	store.On("ListMonitors", "c1").Return(monitors, nil)
	store.On("UpdateMonitorStats", "c1", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.RefreshAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 100, summary.Attempted)
	assert.Equal(t, 100, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	store.AssertNumberOfCalls(t, "UpdateMonitorStats", 100)
}

func TestRemove(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("DeleteMonitor", "c1", "alice").
		Return(&models.Monitor{ChannelID: "c1", UserID: "id-alice", Username: "alice"}, nil)

	m, err := svc.Remove(context.Background(), "c1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-alice", m.UserID)
}

func TestRemoveNotFound(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	store.On("DeleteMonitor", "c1", "ghost").Return(nil, database.ErrNotFound)

	_, err := svc.Remove(context.Background(), "c1", "ghost")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRecord(t *testing.T) {
	client := &TetrClientMock{}
	store := &MonitorStoreMock{}
	svc := newTestService(client, store, 4)

	client.On("GetUser", "alice").Return(tetrUser("id-alice", "alice"), nil)
	client.On("GetUserRecords", "id-alice").Return(tetrRecords(), nil)

	user, records, err := svc.Record(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-alice", user.ID)
	require.NotNil(t, records.Records.Blitz.Record)
}
