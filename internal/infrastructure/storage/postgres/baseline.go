package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	corenumerator "inventra/internal/core/numerator"
	"inventra/pkg/logger"
)

var tracer = otel.Tracer("inventra/postgres")

// DefaultBaselineTable stores one row per document type.
const DefaultBaselineTable = "inventory_baselines"

// Ensure compile-time interface compliance.
var (
	_ corenumerator.BaselineStore = (*BaselineStore)(nil)
	_ Querier                     = (*Pool)(nil)
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	pgxscan.Querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type baselineRow struct {
	Key       string    `db:"key"`
	Code      string    `db:"code"`
	UpdatedAt time.Time `db:"updated_at"`
}

var baselineColumns = ExtractDBColumns[baselineRow]()

// BaselineStore keeps the last confirmed code per document type in PostgreSQL.
type BaselineStore struct {
	db    Querier
	table string
}

// NewBaselineStore creates a store over db using DefaultBaselineTable.
func NewBaselineStore(db Querier) *BaselineStore {
	return &BaselineStore{db: db, table: DefaultBaselineTable}
}

func (s *BaselineStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// EnsureSchema creates the table if it does not exist.
func (s *BaselineStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			code       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, pgx.Identifier{s.table}.Sanitize()))
	if err != nil {
		return fmt.Errorf("ensure %s: %w", s.table, err)
	}
	return nil
}

func (s *BaselineStore) selectQuery(key string) (string, []any, error) {
	return s.builder().
		Select(baselineColumns...).
		From(s.table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
}

func (s *BaselineStore) upsertQuery(key, code string, at time.Time) (string, []any, error) {
	row := baselineRow{Key: key, Code: code, UpdatedAt: at}
	return s.builder().
		Insert(s.table).
		Columns(baselineColumns...).
		Values(StructValues(row)...).
		Suffix("ON CONFLICT (key) DO UPDATE SET code = EXCLUDED.code, updated_at = EXCLUDED.updated_at").
		ToSql()
}

func (s *BaselineStore) deleteQuery(key string) (string, []any, error) {
	return s.builder().
		Delete(s.table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
}

// startSpan opens a client span for one statement.
func (s *BaselineStore) startSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "baseline."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.collection.name", s.table),
			attribute.String("baseline.key", key),
		))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Load implements corenumerator.BaselineStore.
func (s *BaselineStore) Load(ctx context.Context, key string) (string, bool, error) {
	ctx, span := s.startSpan(ctx, "load", key)
	defer span.End()

	sql, args, err := s.selectQuery(key)
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var row baselineRow
	if err := pgxscan.Get(ctx, s.db, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fail(span, fmt.Errorf("load baseline %s: %w", key, err))
	}
	return row.Code, true, nil
}

// Save implements corenumerator.BaselineStore.
func (s *BaselineStore) Save(ctx context.Context, key, code string) error {
	ctx, span := s.startSpan(ctx, "save", key)
	defer span.End()

	sql, args, err := s.upsertQuery(key, code, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fail(span, fmt.Errorf("save baseline %s: %w", key, err))
	}
	logger.Debug(ctx, "baseline saved", "key", key, "code", code)
	return nil
}

// Delete implements corenumerator.BaselineStore.
func (s *BaselineStore) Delete(ctx context.Context, key string) error {
	ctx, span := s.startSpan(ctx, "delete", key)
	defer span.End()

	sql, args, err := s.deleteQuery(key)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fail(span, fmt.Errorf("delete baseline %s: %w", key, err))
	}
	return nil
}
