package validation

import (
	"strings"

	"alcyxob/trainlog/internal/domain"
)

type CreateTemplateRequest struct {
	Title    string          `json:"title" validate:"min=1,max=200"`
	Category domain.Category `json:"category" validate:"category"`
	Notes    *string         `json:"notes"`
}

func (r *CreateTemplateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

type UpdateTemplateRequest struct {
	Title    *string          `json:"title" validate:"omitnil,min=1,max=200"`
	Category *domain.Category `json:"category" validate:"omitempty,category"`
	Notes    Nullable[string] `json:"notes"`
}

func (r *UpdateTemplateRequest) Normalize() {
	trimPtr(r.Title)
}

type AddTemplateExerciseRequest struct {
	ExerciseID         string   `json:"exerciseId" validate:"required,objectid"`
	Order              *int     `json:"order" validate:"required,min=0"`
	DefaultSets        *int     `json:"defaultSets" validate:"omitempty,min=0"`
	DefaultReps        *int     `json:"defaultReps" validate:"omitempty,min=0"`
	DefaultWeight      *float64 `json:"defaultWeight"`
	DefaultDurationSec *int     `json:"defaultDurationSec" validate:"omitempty,min=0"`
}

// UpdateTemplateExerciseRequest fields may be absent (unchanged) or null (cleared).
type UpdateTemplateExerciseRequest struct {
	Order              *int              `json:"order" validate:"omitempty,min=0"`
	DefaultSets        Nullable[int]     `json:"defaultSets" validate:"omitempty,min=0"`
	DefaultReps        Nullable[int]     `json:"defaultReps" validate:"omitempty,min=0"`
	DefaultWeight      Nullable[float64] `json:"defaultWeight"`
	DefaultDurationSec Nullable[int]     `json:"defaultDurationSec" validate:"omitempty,min=0"`
}
