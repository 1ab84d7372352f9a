package service

import (
	"context"
	"fmt"
	"testing"

	"alcyxob/trainlog/internal/progress"
	"alcyxob/trainlog/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProgressService_HistoryAndPRs(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	sessions := NewSessionService(repos)
	svc := NewProgressService(repos)
	me := primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")

	for day, weight := range []float64{100, 110, 105} {
		session := newSession(t, sessions, me, fmt.Sprintf("2024-01-%02d", day+1), nil)
		se := addEntry(t, sessions, me, session.ID, squat, 0)
		_, err := sessions.UpsertSetLogs(ctx, me, session.ID, logsRequest(t,
			validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(5), Weight: floatPtr(weight)},
			validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(1), Reps: intPtr(5), Weight: floatPtr(weight - 10)},
		))
		require.NoError(t, err)
	}

	got, err := svc.ExerciseHistory(ctx, me, squat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Squat", got.Exercise.Name)
	require.Len(t, got.DataPoints, 3)
	assert.Equal(t, "2024-01-01", got.DataPoints[0].Date)
	assert.Equal(t, "2024-01-03", got.DataPoints[2].Date)
	require.NotNil(t, got.DataPoints[1].BestSet)
	assert.Equal(t, 110.0, got.DataPoints[1].BestSet.Weight)
	assert.Equal(t, 5*110.0+5*100.0, got.DataPoints[1].Volume)
	assert.Nil(t, got.DataPoints[0].DurationSec)
	assert.Len(t, got.RecentPRs, 3)

	best, err := svc.LastBestSet(ctx, me, squat.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 105.0, best.Weight)
	assert.Equal(t, 5, best.Reps)
}

func TestProgressService_OnlyOwnSessionsCount(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	sessions := NewSessionService(repos)
	svc := NewProgressService(repos)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")

	session := newSession(t, sessions, other, "2024-01-01", nil)
	se := addEntry(t, sessions, other, session.ID, squat, 0)
	_, err := sessions.UpsertSetLogs(ctx, other, session.ID, logsRequest(t,
		validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(1), Weight: floatPtr(500)},
	))
	require.NoError(t, err)

	got, err := svc.ExerciseHistory(ctx, me, squat.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DataPoints)
	assert.Empty(t, got.RecentPRs)

	best, err := svc.LastBestSet(ctx, me, squat.ID)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestProgressService_InvisibleExerciseIsNotFound(t *testing.T) {
	repos := newRepos()
	svc := NewProgressService(repos)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	hidden := createExercise(t, repos, &other, "Hidden")

	_, err := svc.ExerciseHistory(context.Background(), me, hidden.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	_, err = svc.ExerciseHistory(context.Background(), me, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestProgressService_HistoryKeepsMostRecentSessions(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	sessions := NewSessionService(repos)
	svc := NewProgressService(repos)
	me := primitive.NewObjectID()
	squat := createExercise(t, repos, nil, "Squat")

	for day := 1; day <= HistoryLimit+1; day++ {
		session := newSession(t, sessions, me, fmt.Sprintf("2024-01-%02d", day), nil)
		se := addEntry(t, sessions, me, session.ID, squat, 0)
		_, err := sessions.UpsertSetLogs(ctx, me, session.ID, logsRequest(t,
			validation.SetLogRequest{SessionExerciseID: se.ID.Hex(), SetIndex: intPtr(0), Reps: intPtr(5), Weight: floatPtr(float64(100 + day))},
		))
		require.NoError(t, err)
	}

	got, err := svc.ExerciseHistory(ctx, me, squat.ID)
	require.NoError(t, err)
	require.Len(t, got.DataPoints, HistoryLimit)
	assert.Equal(t, "2024-01-02", got.DataPoints[0].Date)
	assert.Equal(t, "2024-01-31", got.DataPoints[HistoryLimit-1].Date)

	require.Len(t, got.RecentPRs, progress.RecentPRLimit)
	assert.Equal(t, "2024-01-22", got.RecentPRs[0].Date)
	assert.Equal(t, 131.0, got.RecentPRs[progress.RecentPRLimit-1].BestSet.Weight)
}
