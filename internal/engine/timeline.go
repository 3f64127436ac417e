package engine

import "sort"

// missingYear is the sentinel sort key for unknown birth/death years, so
// persons with unknown dates order last instead of failing the sort.
const missingYear = 9999

// TimelineSort selects the sort key for timeline entries.
type TimelineSort string

// Timeline sort keys.
const (
	TimelineSortBirth TimelineSort = "birth"
	TimelineSortDeath TimelineSort = "death"
	TimelineSortName  TimelineSort = "name"
)

// TimelineOptions bounds and orders a timeline request. A zero StartYear or
// EndYear means that side of the range is unbounded.
type TimelineOptions struct {
	Sort      TimelineSort
	StartYear int
	EndYear   int
}

// TimelineEntry is one lifespan row.
type TimelineEntry struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	BirthYear int    `json:"birth_year,omitempty"` // 0 when unknown
	DeathYear int    `json:"death_year,omitempty"` // 0 when unknown
	IsLiving  bool   `json:"is_living"`
}

// Timeline filters persons to those with a known birth or death date,
// applies the optional year range, and sorts by the requested key.
//
// A person is excluded only when one of its known boundary dates falls
// outside the range: a known birth year after EndYear, or a known death
// year before StartYear. An unknown date on one side never excludes.
func (e *Engine) Timeline(opts TimelineOptions) []TimelineEntry {
	entries := make([]TimelineEntry, 0)

	for _, id := range e.ordered {
		person := e.persons[id]
		birth := person.BirthYear()
		death := person.DeathYear()
		if birth == 0 && death == 0 {
			continue
		}
		if opts.EndYear > 0 && birth > 0 && birth > opts.EndYear {
			continue
		}
		if opts.StartYear > 0 && death > 0 && death < opts.StartYear {
			continue
		}

		entries = append(entries, TimelineEntry{
			ID:        id,
			FullName:  person.FullName(),
			BirthYear: birth,
			DeathYear: death,
			IsLiving:  person.IsLiving,
		})
	}

	sortKey := func(entry TimelineEntry) int {
		year := entry.BirthYear
		if opts.Sort == TimelineSortDeath {
			year = entry.DeathYear
		}
		if year == 0 {
			return missingYear
		}
		return year
	}

	switch opts.Sort {
	case TimelineSortName:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].FullName != entries[j].FullName {
				return entries[i].FullName < entries[j].FullName
			}
			return entries[i].ID < entries[j].ID
		})
	default: // birth (the default) or death
		sort.SliceStable(entries, func(i, j int) bool {
			yi, yj := sortKey(entries[i]), sortKey(entries[j])
			if yi != yj {
				return yi < yj
			}
			return entries[i].FullName < entries[j].FullName
		})
	}

	return entries
}
