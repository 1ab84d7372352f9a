package domain

// Category classifies exercises, sessions and templates.
type Category string

const (
	CategoryStrength    Category = "strength"
	CategoryCardio      Category = "cardio"
	CategoryZone2       Category = "zone2"
	CategoryPilates     Category = "pilates"
	CategoryMobility    Category = "mobility"
	CategoryPlyometrics Category = "plyometrics"
	CategoryStretching  Category = "stretching"
	CategoryOther       Category = "other"
)

// Categories is the canonical list. Exercise, session and template validation all use it.
var Categories = []Category{
	CategoryStrength,
	CategoryCardio,
	CategoryZone2,
	CategoryPilates,
	CategoryMobility,
	CategoryPlyometrics,
	CategoryStretching,
	CategoryOther,
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
