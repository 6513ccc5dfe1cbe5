package models

// JobSort orders browse results.
type JobSort string

const (
	SortNewest     JobSort = "newest"
	SortBudgetHigh JobSort = "budget_high"
	SortBudgetLow  JobSort = "budget_low"
)

// ParseJobSort maps a raw sort key to a JobSort, falling back to SortNewest.
func ParseJobSort(s string) JobSort {
	switch JobSort(s) {
	case SortBudgetHigh:
		return SortBudgetHigh
	case SortBudgetLow:
		return SortBudgetLow
	}
	return SortNewest
}

// JobQuery is a validated browse query handed to the store.
// It always targets active jobs.
type JobQuery struct {
	Search   string    // case-insensitive substring of title, description or location
	Category *Category // nil means any category
	Sort     JobSort
	Limit    int // 0 means unbounded
}
