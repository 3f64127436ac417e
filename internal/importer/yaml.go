// Package importer loads family-tree datasets from YAML files and writes
// them through the storage layer, so every imported kinship fact gets its
// mirrored directional rows.
package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kindredgraph/kindred/internal/storage"
	"github.com/kindredgraph/kindred/pkg/types"
)

// File is the top-level structure of a dataset YAML file.
type File struct {
	// Tree is an optional display name for the dataset.
	Tree string `yaml:"tree"`

	People        []PersonEntry       `yaml:"people"`
	Relationships []RelationshipEntry `yaml:"relationships"`
}

// PersonEntry is one person in the YAML file. Key is a file-local handle
// used to reference the person from relationship entries; it does not
// survive the import.
type PersonEntry struct {
	Key        string `yaml:"key"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Gender     string `yaml:"gender"`
	Born       string `yaml:"born"`
	Died       string `yaml:"died"`
	Living     *bool  `yaml:"living"`
	BirthPlace string `yaml:"birth_place"`
	PhotoURL   string `yaml:"photo_url"`
}

// RelationshipEntry is one kinship fact. Type states what Related is to
// Person (e.g. type: parent means Related is Person's parent). Only the
// forward direction is written in the file; the store derives the mirror.
type RelationshipEntry struct {
	Person   string `yaml:"person"`
	Related  string `yaml:"related"`
	Type     string `yaml:"type"`
	Married  string `yaml:"married"`
	Divorced string `yaml:"divorced"`
	Active   *bool  `yaml:"active"`
}

// Result summarises a completed import.
type Result struct {
	Tree                 string        `json:"tree,omitempty"`
	PersonsCreated       int           `json:"persons_created"`
	RelationshipsCreated int           `json:"relationships_created"`
	Errors               []string      `json:"errors,omitempty"`
	Duration             time.Duration `json:"duration_ms"`
}

// Parse reads a dataset from YAML bytes and validates its references.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("importer: failed to parse YAML: %w", err)
	}

	keys := make(map[string]bool, len(file.People))
	for i := range file.People {
		entry := &file.People[i]
		if entry.Key == "" {
			return nil, fmt.Errorf("importer: person %d has no key", i)
		}
		if keys[entry.Key] {
			return nil, fmt.Errorf("importer: duplicate person key %q", entry.Key)
		}
		if strings.TrimSpace(entry.FirstName) == "" {
			return nil, fmt.Errorf("importer: person %q has no first name", entry.Key)
		}
		keys[entry.Key] = true
	}

	for i, rel := range file.Relationships {
		if !keys[rel.Person] {
			return nil, fmt.Errorf("importer: relationship %d references unknown person %q", i, rel.Person)
		}
		if !keys[rel.Related] {
			return nil, fmt.Errorf("importer: relationship %d references unknown person %q", i, rel.Related)
		}
		if _, err := relationType(rel.Type); err != nil {
			return nil, fmt.Errorf("importer: relationship %d: %w", i, err)
		}
	}

	return &file, nil
}

// ParseFile reads and parses a dataset YAML file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Import writes the parsed dataset through the given store. Person IDs are
// freshly generated; relationship mirroring is handled by the store.
func Import(ctx context.Context, store storage.RecordStore, file *File) (*Result, error) {
	start := time.Now()
	result := &Result{Tree: file.Tree}

	ids := make(map[string]string, len(file.People))

	for i := range file.People {
		entry := &file.People[i]

		person, err := entry.toPerson()
		if err != nil {
			return nil, fmt.Errorf("importer: person %q: %w", entry.Key, err)
		}

		if err := store.StorePerson(ctx, person); err != nil {
			return nil, fmt.Errorf("importer: failed to store person %q: %w", entry.Key, err)
		}
		ids[entry.Key] = person.ID
		result.PersonsCreated++
	}

	for i, entry := range file.Relationships {
		rel, err := entry.toRelationship(ids)
		if err != nil {
			return nil, fmt.Errorf("importer: relationship %d: %w", i, err)
		}

		if err := store.CreateRelationship(ctx, rel); err != nil {
			return nil, fmt.Errorf("importer: failed to store relationship %d: %w", i, err)
		}
		result.RelationshipsCreated++
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (e *PersonEntry) toPerson() (*types.Person, error) {
	person := &types.Person{
		ID:         "per:" + uuid.NewString(),
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		BirthPlace: e.BirthPlace,
		PhotoURL:   e.PhotoURL,
	}

	switch strings.ToLower(e.Gender) {
	case "male", "m":
		person.Gender = types.GenderMale
	case "female", "f":
		person.Gender = types.GenderFemale
	case "other":
		person.Gender = types.GenderOther
	case "":
		person.Gender = types.GenderUnknown
	default:
		return nil, fmt.Errorf("unknown gender %q", e.Gender)
	}

	if e.Born != "" {
		born, err := parseDate(e.Born)
		if err != nil {
			return nil, fmt.Errorf("bad born date: %w", err)
		}
		person.DateOfBirth = &born
	}
	if e.Died != "" {
		died, err := parseDate(e.Died)
		if err != nil {
			return nil, fmt.Errorf("bad died date: %w", err)
		}
		person.DateOfPassing = &died
	}

	// Living defaults to "no death date recorded" unless stated.
	if e.Living != nil {
		person.IsLiving = *e.Living
	} else {
		person.IsLiving = person.DateOfPassing == nil
	}

	return person, nil
}

func (e *RelationshipEntry) toRelationship(ids map[string]string) (*types.Relationship, error) {
	relType, err := relationType(e.Type)
	if err != nil {
		return nil, err
	}

	rel := &types.Relationship{
		PersonID:        ids[e.Person],
		RelatedPersonID: ids[e.Related],
		Type:            relType,
	}

	if e.Married != "" {
		married, err := parseDate(e.Married)
		if err != nil {
			return nil, fmt.Errorf("bad married date: %w", err)
		}
		rel.MarriageDate = &married
	}
	if e.Divorced != "" {
		divorced, err := parseDate(e.Divorced)
		if err != nil {
			return nil, fmt.Errorf("bad divorced date: %w", err)
		}
		rel.DivorceDate = &divorced
	}

	if e.Active != nil {
		rel.IsActive = *e.Active
	} else {
		rel.IsActive = rel.DivorceDate == nil
	}

	return rel, nil
}

func relationType(s string) (types.RelationType, error) {
	switch strings.ToLower(s) {
	case "parent":
		return types.RelationParent, nil
	case "child":
		return types.RelationChild, nil
	case "spouse":
		return types.RelationSpouse, nil
	case "sibling":
		return types.RelationSibling, nil
	default:
		return "", fmt.Errorf("unknown relationship type %q", s)
	}
}

// parseDate accepts full dates (2006-01-02), year-month (2006-01) and bare
// years (2006).
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
