package monitor

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vieri-corp/vieribot/api"
	"github.com/vieri-corp/vieribot/internal/database"
	"github.com/vieri-corp/vieribot/internal/models"
)

type TetrClientMock struct {
	mock.Mock
}

func (m *TetrClientMock) GetUser(_ context.Context, user string) (*api.User, error) {
	args := m.Called(user)
	if u, ok := args.Get(0).(*api.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TetrClientMock) GetUserRecords(_ context.Context, user string) (*api.UserRecords, error) {
	args := m.Called(user)
	if r, ok := args.Get(0).(*api.UserRecords); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MonitorStoreMock struct {
	mock.Mock
}

func (m *MonitorStoreMock) ListMonitors(_ context.Context, channelID string) ([]models.Monitor, error) {
	args := m.Called(channelID)
	if monitors, ok := args.Get(0).([]models.Monitor); ok {
		return monitors, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MonitorStoreMock) InsertMonitor(_ context.Context, monitor *models.Monitor) (database.InsertOutcome, error) {
	args := m.Called(monitor)
	return args.Get(0).(database.InsertOutcome), args.Error(1)
}

func (m *MonitorStoreMock) UpdateMonitorStats(_ context.Context, channelID, userID string, stats database.MonitorStats) error {
	args := m.Called(channelID, userID, stats)
	return args.Error(0)
}

func (m *MonitorStoreMock) DeleteMonitor(_ context.Context, channelID, username string) (*models.Monitor, error) {
	args := m.Called(channelID, username)
	if monitor, ok := args.Get(0).(*models.Monitor); ok {
		return monitor, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MonitorStoreMock) ListChannelIDs(_ context.Context) ([]string, error) {
	args := m.Called()
	if channels, ok := args.Get(0).([]string); ok {
		return channels, args.Error(1)
	}
	return nil, args.Error(1)
}
