package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
	"github.com/clearcompass/clearcompass/backend/internal/domain/repositories"
	"github.com/clearcompass/clearcompass/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/clearcompass/clearcompass/backend/pkg/errors"
)

// AidProgramAdapter implements AidProgramRepository
type AidProgramAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.AidProgramRepository = (*AidProgramAdapter)(nil)

// NewAidProgramAdapter creates a new aid program adapter
func NewAidProgramAdapter(client *postgres.Client) *AidProgramAdapter {
	return &AidProgramAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var aidProgramColumns = []interface{}{
	"id", "name", "program_type", "savings_rule", "income_limit_pct_fpl",
	"coverage", "requirements", "application_channel", "sort_order",
	"is_active", "created_at", "updated_at",
}

// List retrieves active programs in catalog order
func (a *AidProgramAdapter) List(ctx context.Context) ([]*entities.AidProgram, error) {
	query, args, err := a.db.Select(aidProgramColumns...).
		From("aid_programs").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.C("sort_order").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list aid programs", err)
	}
	defer rows.Close()

	var programs []*entities.AidProgram
	for rows.Next() {
		program, err := scanAidProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate aid programs", err)
	}
	return programs, nil
}

// GetByID retrieves a single program
func (a *AidProgramAdapter) GetByID(ctx context.Context, id string) (*entities.AidProgram, error) {
	query, args, err := a.db.Select(aidProgramColumns...).
		From("aid_programs").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	program, err := scanAidProgram(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("aid program %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return program, nil
}

// Create inserts a catalog row. Used by the seed tool.
func (a *AidProgramAdapter) Create(ctx context.Context, program *entities.AidProgram) error {
	record := goqu.Record{
		"id":                   program.ID,
		"name":                 program.Name,
		"program_type":         string(program.Type),
		"savings_rule":         string(program.Rule),
		"income_limit_pct_fpl": program.IncomeLimitPctFPL,
		"coverage":             sql.NullString{String: program.Coverage, Valid: program.Coverage != ""},
		"requirements":         pq.Array(program.Requirements),
		"application_channel":  sql.NullString{String: program.ApplicationChannel, Valid: program.ApplicationChannel != ""},
		"sort_order":           program.SortOrder,
		"is_active":            program.IsActive,
		"created_at":           program.CreatedAt,
		"updated_at":           program.UpdatedAt,
	}

	query, args, err := a.db.Insert("aid_programs").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create aid program", err)
	}
	return nil
}

func scanAidProgram(row rowScanner) (*entities.AidProgram, error) {
	program := &entities.AidProgram{}
	var coverage, channel sql.NullString
	var programType, rule string

	err := row.Scan(
		&program.ID,
		&program.Name,
		&programType,
		&rule,
		&program.IncomeLimitPctFPL,
		&coverage,
		pq.Array(&program.Requirements),
		&channel,
		&program.SortOrder,
		&program.IsActive,
		&program.CreatedAt,
		&program.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan aid program", err)
	}

	program.Type = entities.ProgramType(programType)
	program.Rule = entities.SavingsRule(rule)
	program.Coverage = coverage.String
	program.ApplicationChannel = channel.String
	return program, nil
}
