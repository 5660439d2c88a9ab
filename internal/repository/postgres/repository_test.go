package postgres

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

func TestProductionWhere(t *testing.T) {
	day := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	to := day.AddDate(0, 0, 3)

	where, args := productionWhere(models.ProductionFilter{})
	require.Empty(t, where)
	require.Empty(t, args)

	where, args = productionWhere(models.ProductionFilter{AnimalID: "a1", Date: &day, To: &to})
	require.Equal(t, " WHERE animal_id = $1 AND date = $2", where)
	require.Equal(t, []any{"a1", models.Normalize(day)}, args)

	where, args = productionWhere(models.ProductionFilter{From: &day, To: &to})
	require.Equal(t, " WHERE date >= $1 AND date <= $2", where)
	require.Len(t, args, 2)
}

func TestTranslate(t *testing.T) {
	require.NoError(t, translate("op", nil, nil))
	require.ErrorIs(t, translate("op", pgx.ErrNoRows, nil), models.ErrNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_production_animal_day"}
	require.ErrorIs(t, translate("op", dup, models.ErrDuplicateProduction), models.ErrDuplicateProduction)
	require.ErrorIs(t, translate("op", dup, nil), models.ErrTransient)

	require.ErrorIs(t, translate("op", errors.New("conn reset"), models.ErrAlreadyClosed), models.ErrTransient)
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements()
	require.NotEmpty(t, stmts)
	var joined strings.Builder
	for _, s := range stmts {
		require.NotEmpty(t, s)
		joined.WriteString(s)
	}
	require.Contains(t, joined.String(), "CONSTRAINT uq_production_animal_day UNIQUE (animal_id, date)")
	require.Contains(t, joined.String(), "date DATE PRIMARY KEY")
}
