// Package store persists translation profiles in a SQLite database, one row
// per collection.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atomic77/esfilter/pkg/mapping"
)

const profileTable = "profiles"

var ErrNotFound = errors.New("profile not found")

type Store struct {
	db *sqlx.DB
}

// Entry is a row of the profile listing.
type Entry struct {
	Collection string `db:"collection" json:"collection"`
	UpdatedAt  int64  `db:"updated_at" json:"updated_at"`
}

type profileRow struct {
	Collection string `db:"collection"`
	Body       string `db:"body"`
	UpdatedAt  int64  `db:"updated_at"`
}

// Open opens (creating if needed) the database at loc.
func Open(loc string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", loc)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", loc, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.createMetadata(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createMetadata() error {
	ctb := sqlbuilder.SQLite.NewCreateTableBuilder()
	ctb.CreateTable(profileTable).IfNotExists().
		Define("collection", "TEXT", "NOT NULL", "PRIMARY KEY").
		Define("body", "TEXT", "NOT NULL").
		Define("updated_at", "INTEGER", "NOT NULL")
	q, args := ctb.Build()
	if _, err := s.db.Exec(q, args...); err != nil {
		return fmt.Errorf("failed to create %s table: %w", profileTable, err)
	}
	return nil
}

// Put stores p, replacing any profile of the same collection. The profile is
// validated first.
func (s *Store) Put(ctx context.Context, p *mapping.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	body, err := mapping.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.Collection, err)
	}
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.ReplaceInto(profileTable).
		Cols("collection", "body", "updated_at").
		Values(p.Collection, string(body), time.Now().Unix())
	q, args := ib.Build()
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("failed to store profile %s: %w", p.Collection, err)
	}
	return nil
}

// Get loads the profile of a collection.
func (s *Store) Get(ctx context.Context, collection string) (*mapping.Profile, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("collection", "body", "updated_at").
		From(profileTable).
		Where(sb.Equal("collection", collection))
	q, args := sb.Build()

	var row profileRow
	err := s.db.GetContext(ctx, &row, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", collection, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", collection, err)
	}
	return mapping.Parse([]byte(row.Body))
}

// List returns every stored collection, by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("collection", "updated_at").From(profileTable).OrderBy("collection").Asc()
	q, args := sb.Build()

	entries := []Entry{}
	if err := s.db.SelectContext(ctx, &entries, q, args...); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return entries, nil
}

// Delete removes the profile of a collection.
func (s *Store) Delete(ctx context.Context, collection string) error {
	db := sqlbuilder.SQLite.NewDeleteBuilder()
	db.DeleteFrom(profileTable).Where(db.Equal("collection", collection))
	q, args := db.Build()

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", collection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", collection, ErrNotFound)
	}
	return nil
}
