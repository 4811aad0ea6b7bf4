package survey

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresSource reads form responses mirrored into a Postgres table. Every
// column is read as text, in table order.
type PostgresSource struct {
	db    *sql.DB
	query string
}

// NewPostgresSource opens a connection pool for dsn. table may be
// schema-qualified ("forms.respostas").
func NewPostgresSource(dsn, table string) (*PostgresSource, error) {
	query, err := selectAllQuery(table)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &PostgresSource{db: db, query: query}, nil
}

func selectAllQuery(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("source table is required")
	}
	ident := pgx.Identifier(strings.Split(table, "."))
	return "SELECT * FROM " + ident.Sanitize(), nil
}

func (s *PostgresSource) Load(ctx context.Context) (*Sheet, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	sheet := &Sheet{Header: cols}

	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			rec[i] = v.String
		}
		sheet.Records = append(sheet.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	return sheet, nil
}

// Ping checks the connection.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}
