// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS records (
	kind TEXT NOT NULL,
	id   TEXT NOT NULL,
	pos  INTEGER NOT NULL DEFAULT 0,
	data JSONB NOT NULL,
	PRIMARY KEY (kind, id)
)`

// PostgresStore keeps all records in a single table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString and creates the records table if
// it does not exist.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (db *PostgresStore) List(ctx context.Context, kind Kind) ([]Record, error) {
	const query = `SELECT id, pos, data FROM records WHERE kind=@kind ORDER BY pos, id`
	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"kind": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", kind, err)
	}
	defer rows.Close()

	recs := make([]Record, 0, 16)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Pos, &rec.Data); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", kind, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (db *PostgresStore) Get(ctx context.Context, kind Kind, id string) (Record, error) {
	const query = `SELECT id, pos, data FROM records WHERE kind=@kind AND id=@id`
	var rec Record
	err := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"kind": string(kind), "id": id}).
		Scan(&rec.ID, &rec.Pos, &rec.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("error reading %s %s: %w", kind, id, err)
	}
	return rec, nil
}

const pgUpsert = `INSERT INTO records (kind, id, pos, data) VALUES (@kind, @id, @pos, @data)
	ON CONFLICT (kind, id) DO UPDATE SET pos = EXCLUDED.pos, data = EXCLUDED.data`

func upsertArgs(kind Kind, rec Record) pgx.NamedArgs {
	return pgx.NamedArgs{
		"kind": string(kind),
		"id":   rec.ID,
		"pos":  rec.Pos,
		"data": string(rec.Data),
	}
}

func (db *PostgresStore) Put(ctx context.Context, kind Kind, rec Record) error {
	if _, err := db.pool.Exec(ctx, pgUpsert, upsertArgs(kind, rec)); err != nil {
		return fmt.Errorf("error saving %s %s: %w", kind, rec.ID, err)
	}
	return nil
}

func (db *PostgresStore) ReplaceAll(ctx context.Context, kind Kind, recs []Record) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM records WHERE kind=@kind`, pgx.NamedArgs{"kind": string(kind)}); err != nil {
		return fmt.Errorf("error clearing %s: %w", kind, err)
	}
	for i, rec := range recs {
		rec.Pos = i
		if _, err := tx.Exec(ctx, pgUpsert, upsertArgs(kind, rec)); err != nil {
			return fmt.Errorf("error inserting %s %s: %w", kind, rec.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting transaction: %w", err)
	}
	return nil
}

func (db *PostgresStore) Close() error {
	db.pool.Close()
	return nil
}
