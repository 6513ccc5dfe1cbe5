package models

import "strings"

// Category is the closed set of job categories.
type Category string

const (
	CategoryConstruction Category = "construction"
	CategoryDelivery     Category = "delivery"
	CategoryCleaning     Category = "cleaning"
	CategoryGardening    Category = "gardening"
	CategoryMoving       Category = "moving"
	CategoryHandyman     Category = "handyman"
	CategoryTutoring     Category = "tutoring"
	CategoryPetCare      Category = "pet_care"
	CategoryEventHelp    Category = "event_help"
	CategoryOther        Category = "other"
)

var categories = []Category{
	CategoryConstruction,
	CategoryDelivery,
	CategoryCleaning,
	CategoryGardening,
	CategoryMoving,
	CategoryHandyman,
	CategoryTutoring,
	CategoryPetCare,
	CategoryEventHelp,
	CategoryOther,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory validates a raw category value. Matching is exact after trimming.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	if c.Valid() {
		return c, true
	}
	return "", false
}

func (c Category) Valid() bool {
	return c.Label() != ""
}

// Label returns the human readable name, or "" for values outside the set.
func (c Category) Label() string {
	switch c {
	case CategoryConstruction:
		return "Construction"
	case CategoryDelivery:
		return "Delivery"
	case CategoryCleaning:
		return "Cleaning"
	case CategoryGardening:
		return "Gardening"
	case CategoryMoving:
		return "Moving"
	case CategoryHandyman:
		return "Handyman"
	case CategoryTutoring:
		return "Tutoring"
	case CategoryPetCare:
		return "Pet Care"
	case CategoryEventHelp:
		return "Event Help"
	case CategoryOther:
		return "Other"
	}
	return ""
}
