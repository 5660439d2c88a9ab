package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

const uniqueViolation = "23505"

// Repository implements every ledger store on PostgreSQL.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository wraps an open pool.
func NewRepository(pool *pgxpool.Pool, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}
}

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return models.Transient("ping postgres", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

func translate(op string, err error, duplicate error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if duplicate != nil && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, duplicate)
	}
	return models.Transient(op, err)
}

const productionColumns = `id, animal_id, animal_type, date, morning_quantity, evening_quantity,
	calf_quantity, posho_quantity, total_quantity, available_for_sales, carry_over_quantity,
	recorded_by, notes, created_at, updated_at`

// GetAnimal reads the herd directory.
func (r *Repository) GetAnimal(ctx context.Context, id string) (models.Animal, error) {
	var a models.Animal
	err := r.pool.QueryRow(ctx,
		`SELECT id, tag_number, name, type, is_ready_for_production FROM animals WHERE id = $1`, id).
		Scan(&a.ID, &a.TagNumber, &a.Name, &a.Type, &a.IsReadyForProduction)
	if err != nil {
		return models.Animal{}, translate("find animal", err, nil)
	}
	return a, nil
}

// PutAnimal upserts a directory entry.
func (r *Repository) PutAnimal(ctx context.Context, a models.Animal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO animals (id, tag_number, name, type, is_ready_for_production)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET tag_number = EXCLUDED.tag_number, name = EXCLUDED.name,
			type = EXCLUDED.type, is_ready_for_production = EXCLUDED.is_ready_for_production`,
		a.ID, a.TagNumber, a.Name, string(a.Type), a.IsReadyForProduction)
	return translate("upsert animal", err, nil)
}

// CreateProduction inserts a record; uq_production_animal_day rejects a
// second record for the same animal and day.
func (r *Repository) CreateProduction(ctx context.Context, rec models.ProductionRecord) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO production_records (`+productionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.AnimalID, string(rec.AnimalType), models.Normalize(rec.Date),
		rec.MorningQuantity, rec.EveningQuantity, rec.CalfQuantity, rec.PoshoQuantity,
		rec.TotalQuantity, rec.AvailableForSales, rec.CarryOverQuantity,
		rec.RecordedBy, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	return translate("insert production record", err, models.ErrDuplicateProduction)
}

// GetProduction returns a record by id.
func (r *Repository) GetProduction(ctx context.Context, id string) (models.ProductionRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productionColumns+` FROM production_records WHERE id = $1`, id)
	rec, err := scanProduction(row)
	if err != nil {
		return models.ProductionRecord{}, translate("find production record", err, nil)
	}
	return rec, nil
}

// UpdateProduction rewrites quantities, notes and derived fields.
func (r *Repository) UpdateProduction(ctx context.Context, rec models.ProductionRecord) error {
	rec.Recalculate()
	tag, err := r.pool.Exec(ctx, `
		UPDATE production_records SET morning_quantity = $2, evening_quantity = $3, calf_quantity = $4,
			posho_quantity = $5, total_quantity = $6, available_for_sales = $7, notes = $8, updated_at = $9
		WHERE id = $1`,
		rec.ID, rec.MorningQuantity, rec.EveningQuantity, rec.CalfQuantity, rec.PoshoQuantity,
		rec.TotalQuantity, rec.AvailableForSales, rec.Notes, rec.UpdatedAt)
	if err != nil {
		return translate("update production record", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteProduction removes a record.
func (r *Repository) DeleteProduction(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM production_records WHERE id = $1`, id)
	if err != nil {
		return translate("delete production record", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListProduction pages records matching filter, newest day first.
func (r *Repository) ListProduction(ctx context.Context, filter models.ProductionFilter) (models.ProductionPage, error) {
	filter.Normalize()
	where, args := productionWhere(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM production_records`+where, args...).Scan(&total); err != nil {
		return models.ProductionPage{}, translate("count production records", err, nil)
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM production_records%s ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		productionColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return models.ProductionPage{}, translate("list production records", err, nil)
	}
	items, err := collectProduction(rows)
	if err != nil {
		return models.ProductionPage{}, translate("scan production records", err, nil)
	}
	return models.ProductionPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ProductionByDay returns every record of one calendar day.
func (r *Repository) ProductionByDay(ctx context.Context, day time.Time) ([]models.ProductionRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productionColumns+` FROM production_records WHERE date = $1`, models.Normalize(day))
	if err != nil {
		return nil, translate("find day production", err, nil)
	}
	items, err := collectProduction(rows)
	if err != nil {
		return nil, translate("scan day production", err, nil)
	}
	return items, nil
}

func productionWhere(filter models.ProductionFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.AnimalID != "" {
		add("animal_id = $%d", filter.AnimalID)
	}
	switch {
	case filter.Date != nil:
		add("date = $%d", models.Normalize(*filter.Date))
	default:
		if filter.From != nil {
			add("date >= $%d", models.Normalize(*filter.From))
		}
		if filter.To != nil {
			add("date <= $%d", models.Normalize(*filter.To))
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanProduction(row pgx.Row) (models.ProductionRecord, error) {
	var rec models.ProductionRecord
	err := row.Scan(&rec.ID, &rec.AnimalID, &rec.AnimalType, &rec.Date,
		&rec.MorningQuantity, &rec.EveningQuantity, &rec.CalfQuantity, &rec.PoshoQuantity,
		&rec.TotalQuantity, &rec.AvailableForSales, &rec.CarryOverQuantity,
		&rec.RecordedBy, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	rec.Date = models.Normalize(rec.Date)
	return rec, err
}

func collectProduction(rows pgx.Rows) ([]models.ProductionRecord, error) {
	defer rows.Close()
	out := make([]models.ProductionRecord, 0)
	for rows.Next() {
		rec, err := scanProduction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CreateSale appends a sale.
func (r *Repository) CreateSale(ctx context.Context, s models.SalesRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sales_records (id, date, time_recorded, quantity, price_per_liter, total_amount,
			payment_method, sold_by, customer_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, models.Normalize(s.Date), s.TimeRecorded, s.Quantity, s.PricePerLiter, s.TotalAmount,
		string(s.PaymentMethod), s.SoldBy, s.CustomerName)
	return translate("insert sale", err, models.ErrConflict)
}

// SalesByDay returns the sales of one calendar day in recording order.
func (r *Repository) SalesByDay(ctx context.Context, day time.Time) ([]models.SalesRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, time_recorded, quantity, price_per_liter, total_amount, payment_method, sold_by, customer_name
		FROM sales_records WHERE date = $1 ORDER BY time_recorded`, models.Normalize(day))
	if err != nil {
		return nil, translate("find day sales", err, nil)
	}
	defer rows.Close()

	out := make([]models.SalesRecord, 0)
	for rows.Next() {
		var s models.SalesRecord
		if err := rows.Scan(&s.ID, &s.Date, &s.TimeRecorded, &s.Quantity, &s.PricePerLiter, &s.TotalAmount,
			&s.PaymentMethod, &s.SoldBy, &s.CustomerName); err != nil {
			return nil, translate("scan day sales", err, nil)
		}
		s.Date = models.Normalize(s.Date)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("scan day sales", err, nil)
	}
	return out, nil
}

const summaryColumns = `date, total_production, total_calf_feeding, total_posho, net_production,
	carry_over, total_sold, final_balance, closed_at, closed_by, trigger`

// CreateSummary stores the close snapshot of a day; the date primary key
// rejects a second close.
func (r *Repository) CreateSummary(ctx context.Context, s models.ProductionSummary) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO production_summaries (`+summaryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		models.Normalize(s.Date), s.TotalProduction, s.TotalCalfFeeding, s.TotalPosho, s.NetProduction,
		s.CarryOver, s.TotalSold, s.FinalBalance, s.ClosedAt, s.ClosedBy, string(s.Trigger))
	if err != nil {
		return translate("insert summary", err, models.ErrAlreadyClosed)
	}
	r.logger.Debug("summary stored", zap.String("date", models.FormatDay(s.Date)))
	return nil
}

// GetSummary returns the summary of day.
func (r *Repository) GetSummary(ctx context.Context, day time.Time) (models.ProductionSummary, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+summaryColumns+` FROM production_summaries WHERE date = $1`, models.Normalize(day))
	s, err := scanSummary(row)
	if err != nil {
		return models.ProductionSummary{}, translate("find summary", err, nil)
	}
	return s, nil
}

// LatestSummary returns the summary with the greatest date.
func (r *Repository) LatestSummary(ctx context.Context) (models.ProductionSummary, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+summaryColumns+` FROM production_summaries ORDER BY date DESC LIMIT 1`)
	s, err := scanSummary(row)
	if err != nil {
		return models.ProductionSummary{}, translate("find latest summary", err, nil)
	}
	return s, nil
}

// ListSummaries returns summaries between from and to inclusive, oldest first.
func (r *Repository) ListSummaries(ctx context.Context, from, to time.Time) ([]models.ProductionSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+summaryColumns+` FROM production_summaries
		WHERE date >= $1 AND date <= $2 ORDER BY date`, models.Normalize(from), models.Normalize(to))
	if err != nil {
		return nil, translate("list summaries", err, nil)
	}
	defer rows.Close()

	out := make([]models.ProductionSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, translate("scan summaries", err, nil)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("scan summaries", err, nil)
	}
	return out, nil
}

func scanSummary(row pgx.Row) (models.ProductionSummary, error) {
	var s models.ProductionSummary
	err := row.Scan(&s.Date, &s.TotalProduction, &s.TotalCalfFeeding, &s.TotalPosho, &s.NetProduction,
		&s.CarryOver, &s.TotalSold, &s.FinalBalance, &s.ClosedAt, &s.ClosedBy, &s.Trigger)
	s.Date = models.Normalize(s.Date)
	s.ID = models.FormatDay(s.Date)
	return s, err
}
