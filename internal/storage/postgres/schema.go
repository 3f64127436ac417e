// Package postgres provides a PostgreSQL implementation of the storage
// interfaces.
package postgres

// Schema contains the SQL statements to create the database schema for
// PostgreSQL. All statements are idempotent.
const Schema = `
-- Persons table: one row per individual in the tree
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',

    date_of_birth TIMESTAMP,
    date_of_passing TIMESTAMP,
    is_living BOOLEAN NOT NULL DEFAULT TRUE,
    gender TEXT NOT NULL DEFAULT '',

    photo_url TEXT NOT NULL DEFAULT '',
    birth_place TEXT NOT NULL DEFAULT '',

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_persons_last_name ON persons(last_name);
CREATE INDEX IF NOT EXISTS idx_persons_is_living ON persons(is_living);

-- Relationships table: two directional rows per kinship fact, paired by
-- pair_id
CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    pair_id TEXT NOT NULL,
    person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
    related_person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
    type TEXT NOT NULL,

    marriage_date TIMESTAMP,
    divorce_date TIMESTAMP,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_relationships_person ON relationships(person_id);
CREATE INDEX IF NOT EXISTS idx_relationships_pair ON relationships(pair_id);
`
