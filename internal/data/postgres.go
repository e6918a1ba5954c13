package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

const queryTimeout = 3 * time.Second

// table describes how one resource type maps onto a Postgres table. The id column is first in
// every scan and is generated by the database on insert.
type table[T Resource[T]] struct {
	name    string
	columns []string
	// fields returns scan destinations for id followed by columns.
	fields func(r *T) []any
	// values returns insert/update arguments in columns order.
	values func(r T) []any
}

func (t table[T]) selectList() string {
	return "id, " + strings.Join(t.columns, ", ")
}

// sqlModel implements Store for any resource described by a table.
type sqlModel[T Resource[T]] struct {
	db    *sql.DB
	table table[T]
}

func (m *sqlModel[T]) FindAll(ctx context.Context) iter.Seq2[T, error] {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY created_at, id`, m.table.selectList(), m.table.name)

	return func(yield func(T, error) bool) {
		var zero T

		rows, err := m.db.QueryContext(ctx, stmt)
		if err != nil {
			yield(zero, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r T
			if err := rows.Scan(m.table.fields(&r)...); err != nil {
				yield(zero, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, err)
		}
	}
}

func (m *sqlModel[T]) FindByID(ctx context.Context, id string) (T, error) {
	stmt := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1`, m.table.selectList(), m.table.name)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var r T
	err := m.db.QueryRowContext(ctx, stmt, id).Scan(m.table.fields(&r)...)
	if err != nil {
		var zero T
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return zero, ErrRecordNotFound
		default:
			return zero, err
		}
	}

	return r, nil
}

func (m *sqlModel[T]) Save(ctx context.Context, resource T) (T, error) {
	placeholders := make([]string, len(m.table.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		RETURNING id`, m.table.name, strings.Join(m.table.columns, ", "),
		strings.Join(placeholders, ", "))

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id string
	err := m.db.QueryRowContext(ctx, stmt, m.table.values(resource)...).Scan(&id)
	if err != nil {
		var zero T
		return zero, err
	}

	return resource.WithID(id), nil
}

func (m *sqlModel[T]) Update(ctx context.Context, resource T) (T, error) {
	assignments := make([]string, len(m.table.columns))
	for i, column := range m.table.columns {
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
	}

	stmt := fmt.Sprintf(`
		UPDATE %s
			SET %s, version = version + 1
			WHERE id = $%d
			RETURNING id`, m.table.name, strings.Join(assignments, ", "), len(m.table.columns)+1)

	args := append(m.table.values(resource), resource.ResourceID())

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id string
	err := m.db.QueryRowContext(ctx, stmt, args...).Scan(&id)
	if err != nil {
		var zero T
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return zero, ErrRecordNotFound
		default:
			return zero, err
		}
	}

	return resource, nil
}

func (m *sqlModel[T]) Delete(ctx context.Context, id string) error {
	stmt := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1`, m.table.name)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *sqlModel[T]) GetPage(ctx context.Context, filters Filters) (Page[T], error) {
	stmt := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM %s
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`, m.table.selectList(), m.table.name)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, filters.limit(), filters.offset())
	if err != nil {
		return Page[T]{}, err
	}
	defer rows.Close()

	totalRecords := 0
	items := make([]T, 0)

	for rows.Next() {
		var r T
		dest := append([]any{&totalRecords}, m.table.fields(&r)...)
		if err := rows.Scan(dest...); err != nil {
			return Page[T]{}, err
		}
		items = append(items, r)
	}

	if err = rows.Err(); err != nil {
		return Page[T]{}, err
	}

	if len(items) == 0 {
		return Page[T]{}, ErrRecordNotFound
	}

	return newPage(items, totalRecords, filters), nil
}
