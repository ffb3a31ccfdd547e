package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

// Schema creates the applications table.
const Schema = `
CREATE TABLE IF NOT EXISTS applications (
	id               UUID PRIMARY KEY,
	customer_id      UUID NOT NULL,
	name             TEXT NOT NULL,
	birth_date       DATE NOT NULL,
	application_date DATE NOT NULL,
	status           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status);
CREATE INDEX IF NOT EXISTS idx_applications_name ON applications (name);
`

const selectColumns = `SELECT id, customer_id, name, birth_date, application_date, status FROM applications`

// PostgresStore persists applications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate applications: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, application *models.Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (id, customer_id, name, birth_date, application_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(application.ID),
		uuid.UUID(application.CustomerID),
		application.Name,
		application.BirthDate,
		application.ApplicationDate,
		string(application.Status),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, application *models.Application) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET name = $2, birth_date = $3, application_date = $4, status = $5
		WHERE id = $1`,
		uuid.UUID(application.ID),
		application.Name,
		application.BirthDate,
		application.ApplicationDate,
		string(application.Status),
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, uuid.UUID(applicationID))
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...models.ApplicationStatus) ([]*models.Application, error) {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE status = ANY($1) ORDER BY application_date, id`,
		pq.Array(values),
	)
	if err != nil {
		return nil, fmt.Errorf("list applications by status: %w", err)
	}
	return scanApplications(rows)
}

func (s *PostgresStore) ListByName(ctx context.Context, name string) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE name = $1 ORDER BY application_date, id`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("list applications by name: %w", err)
	}
	return scanApplications(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		appID, customerID          uuid.UUID
		name, status               string
		birthDate, applicationDate time.Time
	)
	if err := row.Scan(&appID, &customerID, &name, &birthDate, &applicationDate, &status); err != nil {
		return nil, err
	}
	parsedStatus, err := models.ParseApplicationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("scan application status: %w", err)
	}
	return &models.Application{
		ID:              id.ApplicationID(appID),
		CustomerID:      id.CustomerID(customerID),
		Name:            name,
		BirthDate:       models.DateOf(birthDate),
		ApplicationDate: models.DateOf(applicationDate),
		Status:          parsedStatus,
	}, nil
}

func scanApplications(rows *sql.Rows) ([]*models.Application, error) {
	defer rows.Close()
	result := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return result, nil
}
