package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kindredgraph/kindred/pkg/types"
)

// StatsOptions configures a statistics pass.
type StatsOptions struct {
	// LivingOnly restricts all passes to living persons.
	LivingOnly bool

	// Now is the reference instant for age computation. Zero means
	// time.Now(); tests pin it for reproducible brackets.
	Now time.Time
}

// Bucket is one labelled count with its percentage of the pass total,
// rounded to the nearest integer.
type Bucket struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// DecadeLifespan is the average lifespan of the deceased persons born in
// one decade.
type DecadeLifespan struct {
	Decade       int     `json:"decade"` // e.g. 1920 for 1920–1929
	AverageYears float64 `json:"average_years"`
	Count        int     `json:"count"`
}

// PersonSummary identifies a person in a statistics highlight.
type PersonSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
}

// Statistics is the aggregate demographic result.
type Statistics struct {
	TotalPersons       int              `json:"total_persons"`
	AgeBrackets        []Bucket         `json:"age_brackets"`
	GenerationSizes    []Bucket         `json:"generation_sizes"`
	GenderDistribution []Bucket         `json:"gender_distribution"`
	TopBirthPlaces     []Bucket         `json:"top_birth_places"`
	TopSurnames        []Bucket         `json:"top_surnames"`
	LifespanByDecade   []DecadeLifespan `json:"lifespan_by_decade"`
	OldestLiving       *PersonSummary   `json:"oldest_living,omitempty"`
	YoungestLiving     *PersonSummary   `json:"youngest_living,omitempty"`
}

const (
	topBirthPlaces = 10
	topSurnames    = 15
)

// Statistics runs the independent aggregation passes over the loaded person
// set. A zero-person input yields all-zero/empty results without error.
func (e *Engine) Statistics(opts StatsOptions) *Statistics {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var subset []*types.Person
	for _, id := range e.ordered {
		person := e.persons[id]
		if opts.LivingOnly && !person.IsLiving {
			continue
		}
		subset = append(subset, person)
	}

	stats := &Statistics{TotalPersons: len(subset)}
	stats.AgeBrackets = e.ageBrackets(subset, now)
	stats.GenerationSizes = e.generationSizes(subset)
	stats.GenderDistribution = genderDistribution(subset)
	stats.TopBirthPlaces = frequencyTable(subset, topBirthPlaces, func(p *types.Person) string {
		return p.BirthPlace
	})
	stats.TopSurnames = frequencyTable(subset, topSurnames, func(p *types.Person) string {
		return p.LastName
	})
	stats.LifespanByDecade = lifespanByDecade(subset)
	stats.OldestLiving, stats.YoungestLiving = livingExtremes(subset, now)
	return stats
}

// ageAtReference computes a person's age from birth to death, or to now for
// living persons. Returns -1 when no age is computable.
func ageAtReference(p *types.Person, now time.Time) int {
	if p.DateOfBirth == nil {
		return -1
	}
	end := now
	if !p.IsLiving {
		if p.DateOfPassing == nil {
			return -1
		}
		end = *p.DateOfPassing
	}
	return p.AgeAt(end)
}

// ageBrackets buckets computable ages into fixed decade brackets 0–9 … 90+.
// Percentages are relative to the count of persons with a computable age.
func (e *Engine) ageBrackets(subset []*types.Person, now time.Time) []Bucket {
	const brackets = 10
	counts := make([]int, brackets)
	total := 0

	for _, person := range subset {
		age := ageAtReference(person, now)
		if age < 0 {
			continue
		}
		idx := age / 10
		if idx >= brackets {
			idx = brackets - 1
		}
		counts[idx]++
		total++
	}

	out := make([]Bucket, 0, brackets)
	for i, count := range counts {
		label := fmt.Sprintf("%d-%d", i*10, i*10+9)
		if i == brackets-1 {
			label = "90+"
		}
		out = append(out, Bucket{
			Label:   label,
			Count:   count,
			Percent: percentOf(count, total),
		})
	}
	return out
}

// generationSizes layers the person set breadth-first from root persons
// (those with no recorded parent) outward via parentToChildren. A person
// reachable from multiple roots keeps the generation assigned on first
// visit; seeding all roots at generation 0 in sorted order makes that
// deterministic.
func (e *Engine) generationSizes(subset []*types.Person) []Bucket {
	inSubset := make(map[string]bool, len(subset))
	for _, person := range subset {
		inSubset[person.ID] = true
	}

	type layerItem struct {
		id  string
		gen int
	}
	var queue []layerItem
	for _, person := range subset {
		if !e.index.HasParents(person.ID) {
			queue = append(queue, layerItem{person.ID, 0})
		}
	}

	assigned := make(map[string]int)
	counts := make(map[int]int)
	maxGen := -1

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := assigned[current.id]; ok {
			continue
		}
		assigned[current.id] = current.gen
		counts[current.gen]++
		if current.gen > maxGen {
			maxGen = current.gen
		}
		for _, childID := range e.index.ChildrenOf(current.id) {
			if !inSubset[childID] {
				continue
			}
			if _, ok := assigned[childID]; !ok {
				queue = append(queue, layerItem{childID, current.gen + 1})
			}
		}
	}

	out := make([]Bucket, 0, maxGen+1)
	for gen := 0; gen <= maxGen; gen++ {
		out = append(out, Bucket{
			Label:   fmt.Sprintf("Generation %d", gen+1),
			Count:   counts[gen],
			Percent: percentOf(counts[gen], len(assigned)),
		})
	}
	return out
}

func genderDistribution(subset []*types.Person) []Bucket {
	labels := map[types.Gender]string{
		types.GenderMale:    "Male",
		types.GenderFemale:  "Female",
		types.GenderOther:   "Other",
		types.GenderUnknown: "Unknown",
	}
	counts := make(map[string]int)
	for _, person := range subset {
		label, ok := labels[person.Gender]
		if !ok {
			label = "Unknown"
		}
		counts[label]++
	}
	return sortedBuckets(counts, len(subset), 0)
}

// frequencyTable counts a string field across the subset, skipping empty
// values, and keeps the top limit entries sorted descending by count.
func frequencyTable(subset []*types.Person, limit int, field func(*types.Person) string) []Bucket {
	counts := make(map[string]int)
	for _, person := range subset {
		value := field(person)
		if value == "" {
			continue
		}
		counts[value]++
	}
	return sortedBuckets(counts, len(subset), limit)
}

// sortedBuckets converts a frequency map to buckets sorted descending by
// count (label ascending on ties), truncated to limit when limit > 0.
func sortedBuckets(counts map[string]int, total, limit int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for label, count := range counts {
		out = append(out, Bucket{
			Label:   label,
			Count:   count,
			Percent: percentOf(count, total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// lifespanByDecade averages the lifespan of deceased persons with both
// dates recorded, bucketed by decade of birth, ascending by decade.
func lifespanByDecade(subset []*types.Person) []DecadeLifespan {
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, person := range subset {
		if person.IsLiving {
			continue
		}
		years, ok := person.Lifespan()
		if !ok {
			continue
		}
		decade := (person.BirthYear() / 10) * 10
		sums[decade] += years
		counts[decade]++
	}

	out := make([]DecadeLifespan, 0, len(sums))
	for decade, sum := range sums {
		out = append(out, DecadeLifespan{
			Decade:       decade,
			AverageYears: float64(sum) / float64(counts[decade]),
			Count:        counts[decade],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Decade < out[j].Decade })
	return out
}

// livingExtremes finds the oldest and youngest living persons with known
// birth dates, by current age descending.
func livingExtremes(subset []*types.Person, now time.Time) (oldest, youngest *PersonSummary) {
	for _, person := range subset {
		if !person.IsLiving || person.DateOfBirth == nil {
			continue
		}
		age := person.AgeAt(now)
		if age < 0 {
			continue
		}
		summary := &PersonSummary{ID: person.ID, FullName: person.FullName(), Age: age}
		if oldest == nil || age > oldest.Age {
			oldest = summary
		}
		if youngest == nil || age < youngest.Age {
			youngest = summary
		}
	}
	return oldest, youngest
}

// percentOf rounds count/total to the nearest whole percent.
func percentOf(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
