// Package memory is an in-process implementation of every repository. It backs
// the "memory" database driver and the service and API tests.
package memory

import (
	"sort"
	"sync"

	"alcyxob/trainlog/internal/domain"
	"alcyxob/trainlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type setLogKey struct {
	sessionExerciseID primitive.ObjectID
	setIndex          int
}

// store holds all collections behind one lock so cross-collection reads are consistent.
type store struct {
	mu sync.RWMutex

	users             map[primitive.ObjectID]domain.User
	exercises         map[primitive.ObjectID]domain.Exercise
	sessions          map[primitive.ObjectID]domain.Session
	sessionExercises  map[primitive.ObjectID]domain.SessionExercise
	setLogs           map[setLogKey]domain.SetLog
	templates         map[primitive.ObjectID]domain.SessionTemplate
	templateExercises map[primitive.ObjectID]domain.TemplateExercise
}

// New returns a fresh, empty set of repositories sharing one store.
func New() repository.Repositories {
	s := &store{
		users:             map[primitive.ObjectID]domain.User{},
		exercises:         map[primitive.ObjectID]domain.Exercise{},
		sessions:          map[primitive.ObjectID]domain.Session{},
		sessionExercises:  map[primitive.ObjectID]domain.SessionExercise{},
		setLogs:           map[setLogKey]domain.SetLog{},
		templates:         map[primitive.ObjectID]domain.SessionTemplate{},
		templateExercises: map[primitive.ObjectID]domain.TemplateExercise{},
	}
	return repository.Repositories{
		Users:             &userRepo{s},
		Exercises:         &exerciseRepo{s},
		Sessions:          &sessionRepo{s},
		SessionExercises:  &sessionExerciseRepo{s},
		SetLogs:           &setLogRepo{s},
		Templates:         &templateRepo{s},
		TemplateExercises: &templateExerciseRepo{s},
		Progress:          &progressRepo{s},
	}
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// lessID orders ObjectIDs by their bytes, which follows creation order.
func lessID(a, b primitive.ObjectID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sortSessionExercises(items []domain.SessionExercise) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return lessID(items[i].ID, items[j].ID)
	})
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
