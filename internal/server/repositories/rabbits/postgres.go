package rabbits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

// PostgresRepository implements rabbit storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const viewQuery = `SELECT r.id, r.name, r.birthdate, u.id, u.username, u.email
		FROM rabbits r JOIN users u ON u.id = r.user_id`

// Create inserts a rabbit. A missing owner surfaces as common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, rabbit *models.Rabbit) (*models.Rabbit, error) {
	query :=
		`INSERT INTO rabbits (name, birthdate, user_id)
		 SELECT $1, $2, id FROM users WHERE id = $3
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, rabbit.Name, nullTime(rabbit), rabbit.UserID).
		Scan(&rabbit.ID, &rabbit.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rabbit, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Rabbit, error) {
	query := `SELECT id, name, birthdate, user_id, created_at FROM rabbits WHERE id = $1`

	rabbit := &models.Rabbit{}
	var birth sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&rabbit.ID, &rabbit.Name, &birth, &rabbit.UserID, &rabbit.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if birth.Valid {
		rabbit.Birthdate = &birth.Time
	}
	return rabbit, nil
}

// GetView returns the rabbit together with its owner summary.
func (r *PostgresRepository) GetView(ctx context.Context, id int64) (*models.RabbitView, error) {
	v, err := scanView(r.db.QueryRowContext(ctx, viewQuery+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) ListViews(ctx context.Context) ([]*models.RabbitView, error) {
	rows, err := r.db.QueryContext(ctx, viewQuery+` ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.RabbitView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update overwrites name and birthdate. Exactly one row must be affected.
func (r *PostgresRepository) Update(ctx context.Context, rabbit *models.Rabbit) error {
	query := `UPDATE rabbits SET name = $1, birthdate = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, rabbit.Name, nullTime(rabbit), rabbit.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Delete removes the rabbit; its photos and images are cascaded.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rabbits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanView(s scanner) (*models.RabbitView, error) {
	v := &models.RabbitView{}
	var birth sql.NullTime
	if err := s.Scan(&v.ID, &v.Name, &birth, &v.Owner.ID, &v.Owner.Username, &v.Owner.Email); err != nil {
		return nil, err
	}
	if birth.Valid {
		v.Birthdate = &birth.Time
	}
	return v, nil
}

func nullTime(rabbit *models.Rabbit) sql.NullTime {
	if rabbit.Birthdate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *rabbit.Birthdate, Valid: true}
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
