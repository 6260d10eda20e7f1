package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/customerr"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var expenseColumns = []string{"id", "amount", "description", "category", "date", "created_at"}

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) FindAll(ctx context.Context) ([]expense.Record, error) {
	query := psql.Select(expenseColumns...).
		From("expenses").
		OrderBy("id")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find all")
	}
	return scanRecords(rows, "find all")
}

func (s *PostgresStorage) FindByID(ctx context.Context, id int64) (expense.Record, error) {
	query := psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"id": id})

	rec, err := scanRecord(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return expense.Record{}, &customerr.NotFoundError{ID: id}
	}
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "find by id")
	}
	return rec, nil
}

func (s *PostgresStorage) FindByDateRange(ctx context.Context, start, end time.Time) ([]expense.Record, error) {
	query := psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.GtOrEq{"date": start}).
		Where(sq.LtOrEq{"date": end}).
		OrderBy("id")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find by date range")
	}
	return scanRecords(rows, "find by date range")
}

func (s *PostgresStorage) FindByCategory(ctx context.Context, category string) ([]expense.Record, error) {
	query := psql.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"category": category}).
		OrderBy("id")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find by category")
	}
	return scanRecords(rows, "find by category")
}

// Save inserts rec when it has no ID yet and updates it otherwise. The
// persisted record is returned with its assigned ID.
func (s *PostgresStorage) Save(ctx context.Context, rec expense.Record) (expense.Record, error) {
	if rec.ID == 0 {
		query := psql.Insert("expenses").
			Columns("amount", "description", "category", "date", "created_at").
			Values(rec.Amount, rec.Description, rec.Category, rec.Date, rec.CreatedAt).
			Suffix("RETURNING id")

		err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&rec.ID)
		if err != nil {
			return expense.Record{}, errors.Wrap(err, "save expense")
		}
		return rec, nil
	}

	query := psql.Update("expenses").
		Set("amount", rec.Amount).
		Set("description", rec.Description).
		Set("category", rec.Category).
		Set("date", rec.Date).
		Where(sq.Eq{"id": rec.ID})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "save expense")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "save expense")
	}
	if affected == 0 {
		return expense.Record{}, &customerr.NotFoundError{ID: rec.ID}
	}
	return rec, nil
}

func (s *PostgresStorage) DeleteByID(ctx context.Context, id int64) error {
	query := psql.Delete("expenses").
		Where(sq.Eq{"id": id})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if affected == 0 {
		return &customerr.NotFoundError{ID: id}
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func scanRecord(row sq.RowScanner) (expense.Record, error) {
	var rec expense.Record
	err := row.Scan(&rec.ID, &rec.Amount, &rec.Description, &rec.Category, &rec.Date, &rec.CreatedAt)
	return rec, err
}

func scanRecords(rows *sql.Rows, op string) ([]expense.Record, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("error closing rows", zap.Error(err))
		}
	}()

	res := make([]expense.Record, 0)
	for rows.Next() {
		var rec expense.Record
		if err := rows.Scan(&rec.ID, &rec.Amount, &rec.Description, &rec.Category, &rec.Date, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, op)
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return res, nil
}
