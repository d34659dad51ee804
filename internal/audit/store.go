package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var schemas = map[string]string{
	DriverPostgres: `
create table if not exists moderation_action(
  id bigserial primary key,
  action text not null,
  guild_id text not null,
  target_id text not null,
  target_name text not null,
  detail text not null,
  actor text not null,
  created_at timestamptz not null
)
`,
	DriverSQLite: `
create table if not exists moderation_action(
  id integer primary key autoincrement,
  action text not null,
  guild_id text not null,
  target_id text not null,
  target_name text not null,
  detail text not null,
  actor text not null,
  created_at timestamp not null
)
`,
}

// Store implements Recorder on sql database
type Store struct {
	DB  *sqlx.DB
	Now func() time.Time
}

// Open connects to database and ensures schema
func Open(driver, dsn string) (*Store, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported audit driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(schema)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Store{
		DB:  db,
		Now: time.Now,
	}, nil
}

// Record inserts entry, filling its id and creation time
func (store *Store) Record(ctx context.Context, entry *Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = store.Now().UTC()
	}

	query, args, err := sqlx.Named(`
insert into moderation_action(
  action,
  guild_id,
  target_id,
  target_name,
  detail,
  actor,
  created_at
) values (
  :action,
  :guild_id,
  :target_id,
  :target_name,
  :detail,
  :actor,
  :created_at
) returning id
`, entry)
	if err != nil {
		return err
	}

	return store.DB.QueryRowxContext(ctx, store.DB.Rebind(query), args...).Scan(&entry.ID)
}

// Recent returns newest entries first
func (store *Store) Recent(ctx context.Context, limit int) (entries []*Entry, err error) {
	err = store.DB.SelectContext(ctx, &entries, store.DB.Rebind(`
select
  id,
  action,
  guild_id,
  target_id,
  target_name,
  detail,
  actor,
  created_at
from moderation_action
order by id desc
limit ?
`), limit)

	return
}

// Close closes database
func (store *Store) Close() error {
	return store.DB.Close()
}
