package validation

import (
	"strings"

	"alcyxob/trainlog/internal/domain"
)

type CreateExerciseRequest struct {
	Name         string          `json:"name" validate:"min=1,max=200"`
	Category     domain.Category `json:"category" validate:"category"`
	Equipment    []string        `json:"equipment"`
	Muscles      []string        `json:"muscles"`
	Instructions string          `json:"instructions"`
	YoutubeID    *string         `json:"youtubeId"`
}

func (r *CreateExerciseRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateExerciseRequest) ApplyDefaults() {
	if r.Equipment == nil {
		r.Equipment = []string{}
	}
	if r.Muscles == nil {
		r.Muscles = []string{}
	}
}

// UpdateExerciseRequest is a partial update. Nil slices mean "unchanged".
type UpdateExerciseRequest struct {
	Name         *string          `json:"name" validate:"omitnil,min=1,max=200"`
	Category     *domain.Category `json:"category" validate:"omitempty,category"`
	Equipment    []string         `json:"equipment"`
	Muscles      []string         `json:"muscles"`
	Instructions *string          `json:"instructions"`
	YoutubeID    Nullable[string] `json:"youtubeId"`
}

func (r *UpdateExerciseRequest) Normalize() {
	trimPtr(r.Name)
}
