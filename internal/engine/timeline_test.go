package engine

import (
	"testing"
	"time"

	"github.com/kindredgraph/kindred/pkg/types"
)

func timelinePerson(id, name string, birthYear, deathYear int) types.Person {
	p := types.Person{ID: id, FirstName: name, LastName: "Test", IsLiving: deathYear == 0}
	if birthYear > 0 {
		born := time.Date(birthYear, time.June, 1, 0, 0, 0, 0, time.UTC)
		p.DateOfBirth = &born
	}
	if deathYear > 0 {
		died := time.Date(deathYear, time.June, 1, 0, 0, 0, 0, time.UTC)
		p.DateOfPassing = &died
	}
	return p
}

func TestTimeline_UnknownBirthSortsLast(t *testing.T) {
	persons := []types.Person{
		timelinePerson("per:a", "A", 1990, 0),
		timelinePerson("per:b", "B", 0, 1960), // birth unknown, death known
		timelinePerson("per:c", "C", 1950, 0),
	}
	eng := New(persons, nil)

	entries := eng.Timeline(TimelineOptions{Sort: TimelineSortBirth})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	got := []string{entries[0].ID, entries[1].ID, entries[2].ID}
	want := []string{"per:c", "per:a", "per:b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s (order %v)", i, got[i], want[i], got)
		}
	}
}

func TestTimeline_ExcludesPersonsWithoutAnyDate(t *testing.T) {
	persons := []types.Person{
		timelinePerson("per:a", "A", 1990, 0),
		{ID: "per:none", FirstName: "No", LastName: "Dates", IsLiving: true},
	}
	eng := New(persons, nil)

	entries := eng.Timeline(TimelineOptions{})
	if len(entries) != 1 || entries[0].ID != "per:a" {
		t.Errorf("persons with no known dates must be excluded, got %v", entries)
	}
}

func TestTimeline_RangeExcludesOnlyKnownBoundaries(t *testing.T) {
	persons := []types.Person{
		timelinePerson("per:early", "Early", 1800, 1850),  // died before range
		timelinePerson("per:late", "Late", 1990, 0),       // born after range
		timelinePerson("per:inside", "Inside", 1900, 1950),
		timelinePerson("per:openBirth", "Open", 0, 1920), // unknown birth, death in range
	}
	eng := New(persons, nil)

	entries := eng.Timeline(TimelineOptions{StartYear: 1880, EndYear: 1960})

	ids := make(map[string]bool)
	for _, entry := range entries {
		ids[entry.ID] = true
	}

	if ids["per:early"] {
		t.Errorf("person with known death before range must be excluded")
	}
	if ids["per:late"] {
		t.Errorf("person with known birth after range must be excluded")
	}
	if !ids["per:inside"] {
		t.Errorf("person inside the range must be included")
	}
	// An unknown date on one side does not exclude.
	if !ids["per:openBirth"] {
		t.Errorf("unknown birth must not exclude when the known death is in range")
	}
}

func TestTimeline_SortByDeath(t *testing.T) {
	persons := []types.Person{
		timelinePerson("per:a", "A", 1900, 1990),
		timelinePerson("per:b", "B", 1905, 1940),
		timelinePerson("per:living", "Living", 1950, 0),
	}
	eng := New(persons, nil)

	entries := eng.Timeline(TimelineOptions{Sort: TimelineSortDeath})
	got := []string{entries[0].ID, entries[1].ID, entries[2].ID}
	want := []string{"per:b", "per:a", "per:living"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTimeline_SortByName(t *testing.T) {
	persons := []types.Person{
		timelinePerson("per:z", "Zelda", 1990, 0),
		timelinePerson("per:a", "Aaron", 1950, 0),
	}
	eng := New(persons, nil)

	entries := eng.Timeline(TimelineOptions{Sort: TimelineSortName})
	if entries[0].ID != "per:a" || entries[1].ID != "per:z" {
		t.Errorf("expected name order [Aaron, Zelda], got [%s, %s]",
			entries[0].FullName, entries[1].FullName)
	}
}
