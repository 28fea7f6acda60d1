package repository

import (
	"context"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/usersapp/internal/common/db"
	"github.com/AlibekovAA/usersapp/internal/user/domain"
)

const table = "users"

type Repository interface {
	Initialize(ctx context.Context) error
	Create(ctx context.Context, fields domain.Fields) error
	Read(ctx context.Context, filter domain.ReadFilter) ([]domain.User, error)
	Update(ctx context.Context, fields domain.Fields) (int64, error)
	Delete(ctx context.Context, fields domain.Fields) error
}

// Querier is the part of *pgxpool.Pool the repository needs. Each call
// leases a connection for exactly one statement.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

type PgRepository struct {
	pool Querier
}

func NewPgRepository(pool Querier) *PgRepository {
	return &PgRepository{pool: pool}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS users (
	id serial PRIMARY KEY,
	created timestamp with time zone DEFAULT clock_timestamp(),
	firstname text NOT NULL CHECK (firstname <> ''),
	lastname text NOT NULL CHECK (lastname <> ''),
	dob date,
	zipcode integer
)`

func (r *PgRepository) Initialize(ctx context.Context) error {
	start := time.Now()
	_, err := r.pool.Exec(ctx, createTableSQL)
	return db.HandleExecError(err, "initialize users table", table, start)
}

func (r *PgRepository) Create(ctx context.Context, fields domain.Fields) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (firstname, lastname, dob, zipcode) VALUES ($1, $2, $3, $4)`,
		fields.Firstname,
		fields.Lastname,
		fields.DOB,
		fields.Zipcode,
	)
	return db.HandleExecError(err, "create user", table, start)
}

// Read passes limit and offset to the database as text, so non-numeric or
// negative values fail the statement.
func (r *PgRepository) Read(ctx context.Context, filter domain.ReadFilter) ([]domain.User, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, created, firstname, lastname, dob, zipcode
		 FROM users
		 ORDER BY created, id
		 LIMIT $1
		 OFFSET $2`,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "read users", table, start)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			u       domain.User
			dob     pgtype.Date
			zipcode pgtype.Int4
		)
		if err := rows.Scan(&u.ID, &u.Created, &u.Firstname, &u.Lastname, &dob, &zipcode); err != nil {
			return nil, db.HandleQueryError(err, nil, "scan user", table, start)
		}
		if dob.Status == pgtype.Present {
			d := domain.Date{Time: dob.Time}
			u.DOB = &d
		}
		if zipcode.Status == pgtype.Present {
			z := zipcode.Int
			u.Zipcode = &z
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "read users", table, start)
	}

	db.MeasureQueryDuration("read users", table, start)
	return users, nil
}

func (r *PgRepository) Update(ctx context.Context, fields domain.Fields) (int64, error) {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET
			firstname = $1,
			lastname = $2,
			dob = $3,
			zipcode = $4
		 WHERE id = $5`,
		fields.Firstname,
		fields.Lastname,
		fields.DOB,
		fields.Zipcode,
		fields.ID,
	)
	if err := db.HandleExecError(err, "update user", table, start); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete is a no-op when no row has the id.
func (r *PgRepository) Delete(ctx context.Context, fields domain.Fields) error {
	start := time.Now()
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, fields.ID)
	return db.HandleExecError(err, "delete user", table, start)
}

var _ Repository = (*PgRepository)(nil)
