package service

import (
	"context"
	"errors"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound         = errors.New("template not found")
	ErrTemplateExerciseNotFound = errors.New("template exercise not found")
)

// TemplateDetail is a session template with its planned exercises in order.
type TemplateDetail struct {
	domain.SessionTemplate
	Exercises []TemplateExerciseDetail `json:"exercises"`
}

type TemplateExerciseDetail struct {
	domain.TemplateExercise
	Exercise *domain.Exercise `json:"exercise"`
}

type TemplateService interface {
	ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]TemplateDetail, error)
	CreateTemplate(ctx context.Context, userID primitive.ObjectID, req validation.CreateTemplateRequest) (*TemplateDetail, error)
	GetTemplate(ctx context.Context, userID, templateID primitive.ObjectID) (*TemplateDetail, error)
	UpdateTemplate(ctx context.Context, userID, templateID primitive.ObjectID, req validation.UpdateTemplateRequest) (*domain.SessionTemplate, error)
	DeleteTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error
	AddTemplateExercise(ctx context.Context, userID, templateID primitive.ObjectID, req validation.AddTemplateExerciseRequest) (*TemplateExerciseDetail, error)
	UpdateTemplateExercise(ctx context.Context, userID, templateID, teID primitive.ObjectID, req validation.UpdateTemplateExerciseRequest) (*domain.TemplateExercise, error)
	DeleteTemplateExercise(ctx context.Context, userID, templateID, teID primitive.ObjectID) error
}

type templateService struct {
	repos repository.Repositories
}

func NewTemplateService(repos repository.Repositories) TemplateService {
	return &templateService{repos: repos}
}

func (s *templateService) ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]TemplateDetail, error) {
	templates, err := s.repos.Templates.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadDetails(ctx, templates)
}

func (s *templateService) CreateTemplate(ctx context.Context, userID primitive.ObjectID, req validation.CreateTemplateRequest) (*TemplateDetail, error) {
	template := &domain.SessionTemplate{
		OwnerID:  userID,
		Title:    req.Title,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if _, err := s.repos.Templates.Create(ctx, template); err != nil {
		return nil, err
	}
	return &TemplateDetail{SessionTemplate: *template, Exercises: []TemplateExerciseDetail{}}, nil
}

func (s *templateService) GetTemplate(ctx context.Context, userID, templateID primitive.ObjectID) (*TemplateDetail, error) {
	template, err := s.ownedTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}
	details, err := s.loadDetails(ctx, []domain.SessionTemplate{*template})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, userID, templateID primitive.ObjectID, req validation.UpdateTemplateRequest) (*domain.SessionTemplate, error) {
	template, err := s.ownedTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		template.Title = *req.Title
	}
	if req.Category != nil {
		template.Category = *req.Category
	}
	if req.Notes.Set {
		template.Notes = req.Notes.Ptr()
	}

	if err := s.repos.Templates.Update(ctx, template); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes the template after its planned exercises. Sessions
// created from it keep their copies.
func (s *templateService) DeleteTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error {
	if _, err := s.ownedTemplate(ctx, userID, templateID); err != nil {
		return err
	}
	if err := s.repos.TemplateExercises.DeleteByTemplateID(ctx, templateID); err != nil {
		return err
	}
	err := s.repos.Templates.Delete(ctx, templateID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

func (s *templateService) AddTemplateExercise(ctx context.Context, userID, templateID primitive.ObjectID, req validation.AddTemplateExerciseRequest) (*TemplateExerciseDetail, error) {
	if _, err := s.ownedTemplate(ctx, userID, templateID); err != nil {
		return nil, err
	}

	exercise, err := exerciseForEntry(ctx, s.repos.Exercises, userID, req.ExerciseID)
	if err != nil {
		return nil, err
	}

	te := &domain.TemplateExercise{
		TemplateID:         templateID,
		ExerciseID:         exercise.ID,
		Order:              *req.Order,
		DefaultSets:        req.DefaultSets,
		DefaultReps:        req.DefaultReps,
		DefaultWeight:      req.DefaultWeight,
		DefaultDurationSec: req.DefaultDurationSec,
	}
	if _, err := s.repos.TemplateExercises.Create(ctx, te); err != nil {
		return nil, err
	}
	return &TemplateExerciseDetail{TemplateExercise: *te, Exercise: exercise}, nil
}

func (s *templateService) UpdateTemplateExercise(ctx context.Context, userID, templateID, teID primitive.ObjectID, req validation.UpdateTemplateExerciseRequest) (*domain.TemplateExercise, error) {
	te, err := s.ownedTemplateExercise(ctx, userID, templateID, teID)
	if err != nil {
		return nil, err
	}

	if req.Order != nil {
		te.Order = *req.Order
	}
	if req.DefaultSets.Set {
		te.DefaultSets = req.DefaultSets.Ptr()
	}
	if req.DefaultReps.Set {
		te.DefaultReps = req.DefaultReps.Ptr()
	}
	if req.DefaultWeight.Set {
		te.DefaultWeight = req.DefaultWeight.Ptr()
	}
	if req.DefaultDurationSec.Set {
		te.DefaultDurationSec = req.DefaultDurationSec.Ptr()
	}

	if err := s.repos.TemplateExercises.Update(ctx, te); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateExerciseNotFound
		}
		return nil, err
	}
	return te, nil
}

func (s *templateService) DeleteTemplateExercise(ctx context.Context, userID, templateID, teID primitive.ObjectID) error {
	if _, err := s.ownedTemplateExercise(ctx, userID, templateID, teID); err != nil {
		return err
	}
	err := s.repos.TemplateExercises.Delete(ctx, teID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateExerciseNotFound
	}
	return err
}

func (s *templateService) ownedTemplate(ctx context.Context, userID, templateID primitive.ObjectID) (*domain.SessionTemplate, error) {
	template, err := s.repos.Templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.OwnerID != userID {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

// ownedTemplateExercise requires the template to be the user's and the entry to belong to it.
func (s *templateService) ownedTemplateExercise(ctx context.Context, userID, templateID, teID primitive.ObjectID) (*domain.TemplateExercise, error) {
	if _, err := s.ownedTemplate(ctx, userID, templateID); err != nil {
		return nil, err
	}
	te, err := s.repos.TemplateExercises.GetByID(ctx, teID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateExerciseNotFound
		}
		return nil, err
	}
	if te.TemplateID != templateID {
		return nil, ErrTemplateExerciseNotFound
	}
	return te, nil
}

func (s *templateService) loadDetails(ctx context.Context, templates []domain.SessionTemplate) ([]TemplateDetail, error) {
	details := make([]TemplateDetail, len(templates))
	if len(templates) == 0 {
		return details, nil
	}

	ids := make([]primitive.ObjectID, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	items, err := s.repos.TemplateExercises.ListByTemplateIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	exercises, err := exercisesByID(ctx, s.repos.Exercises, items, func(te domain.TemplateExercise) primitive.ObjectID { return te.ExerciseID })
	if err != nil {
		return nil, err
	}

	byTemplate := map[primitive.ObjectID][]TemplateExerciseDetail{}
	for _, te := range items {
		byTemplate[te.TemplateID] = append(byTemplate[te.TemplateID], TemplateExerciseDetail{
			TemplateExercise: te,
			Exercise:         exercises[te.ExerciseID],
		})
	}
	for i, t := range templates {
		details[i] = TemplateDetail{SessionTemplate: t, Exercises: byTemplate[t.ID]}
		if details[i].Exercises == nil {
			details[i].Exercises = []TemplateExerciseDetail{}
		}
	}
	return details, nil
}
