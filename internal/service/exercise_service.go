package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
)

type ExerciseService interface {
	ListExercises(ctx context.Context, userID primitive.ObjectID, query string, category domain.Category) ([]domain.Exercise, error)
	CreateExercise(ctx context.Context, userID primitive.ObjectID, req validation.CreateExerciseRequest) (*domain.Exercise, error)
	GetExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, req validation.UpdateExerciseRequest) (*domain.Exercise, error)
	// DeleteExercise removes an owned exercise together with every session and
	// template entry that references it.
	DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	repos repository.Repositories
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(repos repository.Repositories) ExerciseService {
	return &exerciseService{repos: repos}
}

func (s *exerciseService) ListExercises(ctx context.Context, userID primitive.ObjectID, query string, category domain.Category) ([]domain.Exercise, error) {
	return s.repos.Exercises.ListVisible(ctx, repository.ExerciseFilter{
		OwnerID:  userID,
		Query:    strings.TrimSpace(query),
		Category: category,
	})
}

// CreateExercise adds an exercise owned by the caller.
func (s *exerciseService) CreateExercise(ctx context.Context, userID primitive.ObjectID, req validation.CreateExerciseRequest) (*domain.Exercise, error) {
	owner := userID
	exercise := &domain.Exercise{
		OwnerID:      &owner,
		Name:         req.Name,
		Category:     req.Category,
		Muscles:      req.Muscles,
		Equipment:    req.Equipment,
		Instructions: req.Instructions,
		YoutubeID:    req.YoutubeID,
	}
	if _, err := s.repos.Exercises.Create(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

// GetExercise returns an exercise visible to the caller. Invisible ones read as missing.
func (s *exerciseService) GetExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	return visibleExercise(ctx, s.repos.Exercises, userID, exerciseID)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, req validation.UpdateExerciseRequest) (*domain.Exercise, error) {
	exercise, err := s.getExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if !exercise.Ownership().CanEdit(userID) {
		return nil, ErrExerciseAccessDenied
	}

	if req.Name != nil {
		exercise.Name = *req.Name
	}
	if req.Category != nil {
		exercise.Category = *req.Category
	}
	if req.Equipment != nil {
		exercise.Equipment = req.Equipment
	}
	if req.Muscles != nil {
		exercise.Muscles = req.Muscles
	}
	if req.Instructions != nil {
		exercise.Instructions = *req.Instructions
	}
	if req.YoutubeID.Set {
		exercise.YoutubeID = req.YoutubeID.Ptr()
	}

	if err := s.repos.Exercises.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	exercise, err := s.getExercise(ctx, exerciseID)
	if err != nil {
		return err
	}
	if !exercise.Ownership().CanDelete(userID) {
		return ErrExerciseAccessDenied
	}

	// Children first, so an interrupted delete never leaves dangling references.
	sessionExercises, err := s.repos.SessionExercises.ListByExerciseID(ctx, exerciseID)
	if err != nil {
		return err
	}
	if err := s.repos.SetLogs.DeleteBySessionExerciseIDs(ctx, sessionExerciseIDs(sessionExercises)); err != nil {
		return err
	}
	if err := s.repos.SessionExercises.DeleteByExerciseID(ctx, exerciseID); err != nil {
		return err
	}
	if err := s.repos.TemplateExercises.DeleteByExerciseID(ctx, exerciseID); err != nil {
		return err
	}

	err = s.repos.Exercises.Delete(ctx, exerciseID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}

func (s *exerciseService) getExercise(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// visibleExercise loads an exercise the user may view, or ErrExerciseNotFound.
func visibleExercise(ctx context.Context, repo repository.ExerciseRepository, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := repo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if !exercise.Ownership().CanView(userID) {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

func sessionExerciseIDs(items []domain.SessionExercise) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(items))
	for i, se := range items {
		ids[i] = se.ID
	}
	return ids
}
