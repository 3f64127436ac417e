package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kindredgraph/kindred/internal/storage"
	"github.com/kindredgraph/kindred/pkg/types"
)

// RecordStore implements storage.RecordStore using SQLite.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore opens a SQLite database, configures WAL mode, and creates
// the schema.
func NewRecordStore(dsn string) (*RecordStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load. WAL mode allows concurrent readers to proceed
	// without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout so that callers wait instead of getting an immediate
	// SQLITE_BUSY error when the connection is held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &RecordStore{db: db}, nil
}

// StorePerson creates or updates a person (upsert semantics).
func (s *RecordStore) StorePerson(ctx context.Context, person *types.Person) error {
	if person == nil {
		return storage.ErrInvalidInput
	}
	if person.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}
	if strings.TrimSpace(person.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", storage.ErrInvalidInput)
	}

	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now()
	}
	person.UpdatedAt = time.Now()

	query := `
		INSERT INTO persons (
			id, first_name, last_name,
			date_of_birth, date_of_passing, is_living, gender,
			photo_url, birth_place,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			date_of_birth = excluded.date_of_birth,
			date_of_passing = excluded.date_of_passing,
			is_living = excluded.is_living,
			gender = excluded.gender,
			photo_url = excluded.photo_url,
			birth_place = excluded.birth_place,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		person.ID,
		person.FirstName,
		person.LastName,
		nullableTime(person.DateOfBirth),
		nullableTime(person.DateOfPassing),
		person.IsLiving,
		string(person.Gender),
		person.PhotoURL,
		person.BirthPlace,
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store person: %w", err)
	}

	return nil
}

const personColumns = `
	id, first_name, last_name,
	date_of_birth, date_of_passing, is_living, gender,
	photo_url, birth_place,
	created_at, updated_at
`

// GetPerson retrieves a person by ID.
func (s *RecordStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM persons WHERE id = ?", id)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}

// ListPersons retrieves persons with pagination and filtering.
func (s *RecordStore) ListPersons(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Person], error) {
	// Normalize must run before ORDER BY construction: SortBy is
	// whitelist-validated there.
	opts.Normalize()

	var conditions []string
	var args []interface{}

	if opts.Search != "" {
		conditions = append(conditions,
			"(first_name LIKE ? COLLATE NOCASE OR last_name LIKE ? COLLATE NOCASE)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern)
	}
	if opts.LivingOnly {
		conditions = append(conditions, "is_living = 1")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM persons"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count persons: %w", err)
	}

	query := "SELECT " + personColumns + " FROM persons" + where +
		fmt.Sprintf(" ORDER BY %s %s, id ASC LIMIT ? OFFSET ?", opts.SortBy, opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	items, err := collectPersons(rows)
	if err != nil {
		return nil, err
	}

	return &storage.PaginatedResult[types.Person]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// ListAllPersons returns the full person set, unpaginated. This is the
// batch load used once per chart request.
func (s *RecordStore) ListAllPersons(ctx context.Context) ([]types.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+personColumns+" FROM persons ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	return collectPersons(rows)
}

// DeletePerson removes a person along with every relationship row that
// references it, in one transaction.
func (s *RecordStore) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM relationships WHERE person_id = ? OR related_person_id = ?",
		id, id); err != nil {
		return fmt.Errorf("failed to delete relationships: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit()
}

// CreateRelationship stores a kinship fact as a pair of mirrored directional
// rows in one transaction.
func (s *RecordStore) CreateRelationship(ctx context.Context, rel *types.Relationship) error {
	if rel == nil {
		return storage.ErrInvalidInput
	}
	if rel.PersonID == "" || rel.RelatedPersonID == "" {
		return fmt.Errorf("%w: both person IDs are required", storage.ErrInvalidInput)
	}
	if rel.PersonID == rel.RelatedPersonID {
		return fmt.Errorf("%w: a person cannot relate to themselves", storage.ErrInvalidInput)
	}
	if !rel.Type.Valid() {
		return fmt.Errorf("%w: unknown relationship type %q", storage.ErrInvalidInput, rel.Type)
	}

	if rel.ID == "" {
		rel.ID = "rel:" + uuid.NewString()
	}
	if rel.PairID == "" {
		rel.PairID = uuid.NewString()
	}
	now := time.Now()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	rel.UpdatedAt = now

	mirror := rel.Mirror()
	mirror.ID = "rel:" + uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range []*types.Relationship{rel, &mirror} {
		if err := insertRelationshipRow(ctx, tx, row); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertRelationshipRow(ctx context.Context, tx *sql.Tx, rel *types.Relationship) error {
	query := `
		INSERT INTO relationships (
			id, pair_id, person_id, related_person_id, type,
			marriage_date, divorce_date, is_active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		rel.ID,
		rel.PairID,
		rel.PersonID,
		rel.RelatedPersonID,
		string(rel.Type),
		nullableTime(rel.MarriageDate),
		nullableTime(rel.DivorceDate),
		rel.IsActive,
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store relationship row: %w", err)
	}
	return nil
}

const relationshipColumns = `
	id, pair_id, person_id, related_person_id, type,
	marriage_date, divorce_date, is_active,
	created_at, updated_at
`

// GetRelationshipsForPerson returns all rows where the given person is the
// PersonID endpoint.
func (s *RecordStore) GetRelationshipsForPerson(ctx context.Context, personID string) ([]types.Relationship, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+relationshipColumns+" FROM relationships WHERE person_id = ? ORDER BY created_at ASC, id ASC",
		personID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships: %w", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// ListAllRelationships returns the full relationship row set. This is the
// batch load used once per chart request.
func (s *RecordStore) ListAllRelationships(ctx context.Context) ([]types.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+relationshipColumns+" FROM relationships ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// DeleteRelationship removes both directional rows of the kinship fact the
// given row belongs to.
func (s *RecordStore) DeleteRelationship(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: relationship ID is required", storage.ErrInvalidInput)
	}

	var pairID string
	err := s.db.QueryRowContext(ctx,
		"SELECT pair_id FROM relationships WHERE id = ?", id).Scan(&pairID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to resolve relationship pair: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM relationships WHERE pair_id = ?", pairID); err != nil {
		return fmt.Errorf("failed to delete relationship pair: %w", err)
	}

	return nil
}

// Close checkpoints the WAL and closes the database.
func (s *RecordStore) Close() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Printf("sqlite: WAL checkpoint on close failed (non-fatal): %v", err)
	}

	return s.db.Close()
}

// GetDB exposes the underlying connection for maintenance tooling.
func (s *RecordStore) GetDB() *sql.DB {
	return s.db
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row rowScanner) (*types.Person, error) {
	var person types.Person
	var dateOfBirth, dateOfPassing sql.NullTime
	var gender string

	err := row.Scan(
		&person.ID,
		&person.FirstName,
		&person.LastName,
		&dateOfBirth,
		&dateOfPassing,
		&person.IsLiving,
		&gender,
		&person.PhotoURL,
		&person.BirthPlace,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dateOfBirth.Valid {
		t := dateOfBirth.Time
		person.DateOfBirth = &t
	}
	if dateOfPassing.Valid {
		t := dateOfPassing.Time
		person.DateOfPassing = &t
	}
	person.Gender = types.Gender(gender)

	return &person, nil
}

func collectPersons(rows *sql.Rows) ([]types.Person, error) {
	var persons []types.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, *person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return persons, nil
}

func collectRelationships(rows *sql.Rows) ([]types.Relationship, error) {
	var rels []types.Relationship
	for rows.Next() {
		var rel types.Relationship
		var marriageDate, divorceDate sql.NullTime
		var relType string

		err := rows.Scan(
			&rel.ID,
			&rel.PairID,
			&rel.PersonID,
			&rel.RelatedPersonID,
			&relType,
			&marriageDate,
			&divorceDate,
			&rel.IsActive,
			&rel.CreatedAt,
			&rel.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}

		rel.Type = types.RelationType(relType)
		if marriageDate.Valid {
			t := marriageDate.Time
			rel.MarriageDate = &t
		}
		if divorceDate.Valid {
			t := divorceDate.Time
			rel.DivorceDate = &t
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relationships: %w", err)
	}
	return rels, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
