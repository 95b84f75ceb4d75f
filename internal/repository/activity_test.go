package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMealLogQueries(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clientID := insertClient(t, database, "Ana", nil)
	other := insertClient(t, database, "Ben", nil)

	insertMealLog(t, database, clientID, at(8))
	insertMealLog(t, database, clientID, at(13))
	insertMealLog(t, database, clientID, at(19))
	insertMealLog(t, database, other, at(12))

	repo := NewActivityRepository(database)

	count, err := repo.CountMealLogs(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	times, err := repo.RecentMealLogTimes(ctx, clientID, 2)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, times[0].Equal(at(19)))
	assert.True(t, times[1].Equal(at(13)))
}

func TestDailyLogQueries(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clientID := insertClient(t, database, "Ana", ptr(1800))

	day := func(n int) time.Time { return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC) }
	insertDailyLog(t, database, clientID, day(1), ptr(82.0), ptr(2500), nil)
	insertDailyLog(t, database, clientID, day(2), nil, ptr(1000), ptr(30))
	insertDailyLog(t, database, clientID, day(3), ptr(79.4), nil, ptr(45))

	repo := NewActivityRepository(database)

	dates, err := repo.RecentWeighInDates(ctx, clientID, 30)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].Equal(day(3)))
	assert.True(t, dates[1].Equal(day(1)))

	logs, err := repo.RecentDailyLogs(ctx, clientID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].LogDate.Equal(day(3)))
	assert.Nil(t, logs[0].WaterMl)
	require.NotNil(t, logs[1].ActivityMinutes)
	assert.Equal(t, 30, *logs[1].ActivityMinutes)

	first, latest, err := repo.FirstAndLatestWeight(ctx, clientID)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.NotNil(t, latest)
	assert.InDelta(t, 82.0, *first, 0.001)
	assert.InDelta(t, 79.4, *latest, 0.001)
}

func TestFirstAndLatestWeightWithoutWeighIns(t *testing.T) {
	database := newTestDB(t)
	clientID := insertClient(t, database, "Ana", nil)

	first, latest, err := NewActivityRepository(database).FirstAndLatestWeight(context.Background(), clientID)
	require.NoError(t, err)
	assert.Nil(t, first)
	assert.Nil(t, latest)
}

func TestClientByID(t *testing.T) {
	database := newTestDB(t)
	clientID := insertClient(t, database, "Ana Lima", ptr(1800))
	repo := NewClientRepository(database)

	client, err := repo.ByID(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", client.FirstName())
	assert.Equal(t, 1800, client.Calories())

	_, err = repo.ByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrClientNotFound)
}
