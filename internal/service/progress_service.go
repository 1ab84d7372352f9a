package service

import (
	"context"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/progress"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryLimit is how many of the most recent sessions feed the progress view.
const HistoryLimit = 30

// ExerciseProgress is the progress view of one exercise.
type ExerciseProgress struct {
	Exercise *domain.Exercise `json:"exercise"`
	progress.Summary
}

type ProgressService interface {
	ExerciseHistory(ctx context.Context, userID, exerciseID primitive.ObjectID) (*ExerciseProgress, error)
	// LastBestSet returns nil when no session of the user has a set with reps and weight.
	LastBestSet(ctx context.Context, userID, exerciseID primitive.ObjectID) (*progress.BestSet, error)
}

type progressService struct {
	exercises repository.ExerciseRepository
	history   repository.ProgressRepository
}

func NewProgressService(repos repository.Repositories) ProgressService {
	return &progressService{exercises: repos.Exercises, history: repos.Progress}
}

func (s *progressService) ExerciseHistory(ctx context.Context, userID, exerciseID primitive.ObjectID) (*ExerciseProgress, error) {
	exercise, err := visibleExercise(ctx, s.exercises, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	history, err := s.history.ExerciseHistory(ctx, userID, exerciseID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	return &ExerciseProgress{Exercise: exercise, Summary: progress.Summarize(history)}, nil
}

// LastBestSet only reads the caller's own sessions, so it needs no visibility check.
func (s *progressService) LastBestSet(ctx context.Context, userID, exerciseID primitive.ObjectID) (*progress.BestSet, error) {
	history, err := s.history.ExerciseHistory(ctx, userID, exerciseID, 0)
	if err != nil {
		return nil, err
	}
	return progress.LastBestSet(history), nil
}
