package importer

import (
	"context"
	"testing"

	"github.com/kindredgraph/kindred/internal/storage/sqlite"
	"github.com/kindredgraph/kindred/pkg/types"
)

const sampleYAML = `
tree: Byrne Family
people:
  - key: anna
    first_name: Anna
    last_name: Byrne
    gender: female
    born: 1950-03-10
    birth_place: Dublin
  - key: brian
    first_name: Brian
    last_name: Byrne
    gender: male
    born: 1948
    died: 2020-06-01
  - key: cara
    first_name: Cara
    last_name: Byrne
    gender: female
    born: 1975-08
relationships:
  - person: cara
    related: anna
    type: parent
  - person: anna
    related: brian
    type: spouse
    married: 1972-05-01
`

func TestParse_ValidFile(t *testing.T) {
	file, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if file.Tree != "Byrne Family" {
		t.Errorf("tree = %q", file.Tree)
	}
	if len(file.People) != 3 || len(file.Relationships) != 2 {
		t.Errorf("parsed %d people, %d relationships", len(file.People), len(file.Relationships))
	}
}

func TestParse_RejectsBadReferences(t *testing.T) {
	bad := `
people:
  - key: anna
    first_name: Anna
relationships:
  - person: anna
    related: ghost
    type: parent
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for unknown relationship reference")
	}
}

func TestParse_RejectsDuplicateKeys(t *testing.T) {
	bad := `
people:
  - key: anna
    first_name: Anna
  - key: anna
    first_name: Other
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for duplicate person key")
	}
}

func TestParse_RejectsUnknownRelationType(t *testing.T) {
	bad := `
people:
  - key: a
    first_name: A
  - key: b
    first_name: B
relationships:
  - person: a
    related: b
    type: cousin
`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Error("expected error for unknown relationship type")
	}
}

func TestImport_WritesMirroredRows(t *testing.T) {
	store, err := sqlite.NewRecordStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	file, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	result, err := Import(ctx, store, file)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if result.PersonsCreated != 3 || result.RelationshipsCreated != 2 {
		t.Errorf("result = %+v", result)
	}

	persons, err := store.ListAllPersons(ctx)
	if err != nil {
		t.Fatalf("ListAllPersons() failed: %v", err)
	}
	if len(persons) != 3 {
		t.Fatalf("expected 3 persons, got %d", len(persons))
	}

	// Two facts become four directional rows.
	rows, err := store.ListAllRelationships(ctx)
	if err != nil {
		t.Fatalf("ListAllRelationships() failed: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("expected 4 directional rows, got %d", len(rows))
	}

	byName := make(map[string]types.Person)
	for _, p := range persons {
		byName[p.FirstName] = p
	}

	brian := byName["Brian"]
	if brian.IsLiving {
		t.Error("Brian has a death date and must not be living")
	}
	if brian.Gender != types.GenderMale {
		t.Errorf("Brian gender = %q", brian.Gender)
	}
	if brian.BirthYear() != 1948 {
		t.Errorf("Brian birth year = %d, want 1948", brian.BirthYear())
	}

	anna := byName["Anna"]
	if !anna.IsLiving {
		t.Error("Anna has no death date and should default to living")
	}

	// Cara's PARENT row mirrors into Anna's CHILD row.
	caraRows, err := store.GetRelationshipsForPerson(ctx, byName["Cara"].ID)
	if err != nil {
		t.Fatalf("GetRelationshipsForPerson() failed: %v", err)
	}
	if len(caraRows) != 1 || caraRows[0].Type != types.RelationParent {
		t.Errorf("Cara rows: %+v", caraRows)
	}
}

func TestParseDate_Layouts(t *testing.T) {
	cases := map[string]int{
		"1950-03-10": 1950,
		"1950-03":    1950,
		"1950":       1950,
	}
	for input, wantYear := range cases {
		got, err := parseDate(input)
		if err != nil {
			t.Errorf("parseDate(%q) failed: %v", input, err)
			continue
		}
		if got.Year() != wantYear {
			t.Errorf("parseDate(%q).Year() = %d", input, got.Year())
		}
	}

	if _, err := parseDate("March 1950"); err == nil {
		t.Error("expected error for unrecognised date format")
	}
}
