//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"
	repomongo "alcyxob/trainlog/internal/repository/mongo"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var testClient *mongo.Client

func TestMain(m *testing.M) {
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("run mongo: %s", err)
	}

	uri := fmt.Sprintf("mongodb://localhost:%s", resource.GetPort("27017/tcp"))
	pool.MaxWait = time.Minute
	if err = pool.Retry(func() error {
		testClient, err = repomongo.ConnectDB(uri)
		return err
	}); err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("connect to mongo: %s", err)
	}

	code := m.Run()

	_ = repomongo.DisconnectDB(testClient)
	if err := pool.Purge(resource); err != nil {
		log.Printf("purge mongo: %s", err)
	}
	os.Exit(code)
}

// newRepos returns repositories over a fresh database with indexes in place.
func newRepos(t *testing.T) repository.Repositories {
	t.Helper()
	db := testClient.Database("trainlog_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	require.NoError(t, repomongo.EnsureIndexes(context.Background(), db))
	return repomongo.NewRepositories(db)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)

	user := &domain.User{Email: "ana@example.com", Name: "Ana", PasswordHash: "hash"}
	_, err := repos.Users.Create(ctx, user)
	require.NoError(t, err)

	_, err = repos.Users.Create(ctx, &domain.User{Email: "ana@example.com", Name: "Again"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	now := time.Now().UTC()
	require.NoError(t, repos.Users.SetResetToken(ctx, user.ID, "token-hash", now.Add(time.Hour)))
	found, err := repos.Users.GetByResetToken(ctx, "token-hash", now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repos.Users.GetByResetToken(ctx, "token-hash", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.Users.UpdatePassword(ctx, user.ID, "new-hash"))
	_, err = repos.Users.GetByResetToken(ctx, "token-hash", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	found, err = repos.Users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
}

func TestExerciseRepository_ListVisible(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()

	for _, e := range []*domain.Exercise{
		{Name: "Back Squat", Category: domain.CategoryStrength},
		{Name: "Front Squat (paused)", Category: domain.CategoryStrength, OwnerID: &me},
		{Name: "Zone 2 Run", Category: domain.CategoryZone2, OwnerID: &me},
		{Name: "Hidden Squat", Category: domain.CategoryStrength, OwnerID: &other},
	} {
		_, err := repos.Exercises.Create(ctx, e)
		require.NoError(t, err)
	}

	all, err := repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: me})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Back Squat", all[0].Name)

	squats, err := repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: me, Query: "SQUAT", Category: domain.CategoryStrength})
	require.NoError(t, err)
	assert.Len(t, squats, 2)

	// Regex metacharacters in the query are matched literally.
	paused, err := repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{OwnerID: me, Query: "(paused)"})
	require.NoError(t, err)
	require.Len(t, paused, 1)
}

func TestSetLogRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	seID := primitive.NewObjectID()

	first, err := repos.SetLogs.Upsert(ctx, &domain.SetLog{SessionExerciseID: seID, SetIndex: 0, Reps: intPtr(5), Unit: domain.UnitLb, Completed: true})
	require.NoError(t, err)
	second, err := repos.SetLogs.Upsert(ctx, &domain.SetLog{SessionExerciseID: seID, SetIndex: 0, Reps: intPtr(8), Unit: domain.UnitKg, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 8, *second.Reps)

	logs, err := repos.SetLogs.ListBySessionExerciseIDs(ctx, []primitive.ObjectID{seID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.UnitKg, logs[0].Unit)
}

func TestProgressRepository_ExerciseHistory(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	me, other := primitive.NewObjectID(), primitive.NewObjectID()
	exerciseID := primitive.NewObjectID()

	logSession := func(owner primitive.ObjectID, day string, weights ...float64) {
		date, err := time.Parse(domain.DateLayout, day)
		require.NoError(t, err)
		session := &domain.Session{OwnerID: owner, Title: day, Category: domain.CategoryStrength, Date: date}
		_, err = repos.Sessions.Create(ctx, session)
		require.NoError(t, err)
		se := &domain.SessionExercise{SessionID: session.ID, ExerciseID: exerciseID}
		_, err = repos.SessionExercises.Create(ctx, se)
		require.NoError(t, err)
		// Written out of order to check the setIndex sort.
		for i := len(weights) - 1; i >= 0; i-- {
			_, err = repos.SetLogs.Upsert(ctx, &domain.SetLog{SessionExerciseID: se.ID, SetIndex: i, Reps: intPtr(5), Weight: floatPtr(weights[i]), Unit: domain.UnitLb})
			require.NoError(t, err)
		}
	}
	logSession(me, "2024-01-01", 100, 90)
	logSession(me, "2024-01-03", 110)
	logSession(me, "2024-01-02", 105)
	logSession(other, "2024-01-04", 300)

	history, err := repos.Progress.ExerciseHistory(ctx, me, exerciseID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2024-01-03", history[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-01", history[2].Date.Format(domain.DateLayout))
	require.Len(t, history[2].SetLogs, 2)
	assert.Equal(t, 0, history[2].SetLogs[0].SetIndex)
	assert.Equal(t, 100.0, *history[2].SetLogs[0].Weight)

	limited, err := repos.Progress.ExerciseHistory(ctx, me, exerciseID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
