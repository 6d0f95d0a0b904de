package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgxpool"
)

// readSorted returns the embedded .sql files of dir in lexical order.
func readSorted(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		stmts = append(stmts, string(raw))
	}
	return stmts, nil
}

// splitStatements breaks a migration file into individual statements so
// they can run through the extended query protocol one at a time.
func splitStatements(file string) []string {
	var stmts []string
	for _, chunk := range strings.Split(file, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			stmts = append(stmts, strings.Join(lines, "\n"))
		}
	}
	return stmts
}

// ApplyPostgres executes the embedded PostgreSQL migrations in order.
func ApplyPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := readSorted(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, file := range files {
		for _, stmt := range splitStatements(file) {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply postgres migration: %w", err)
			}
		}
	}
	return nil
}

// ApplyClickhouse executes the embedded ClickHouse migrations in order.
func ApplyClickhouse(ctx context.Context, conn driver.Conn) error {
	files, err := readSorted(ClickhouseFS, "clickhouse")
	if err != nil {
		return err
	}
	for _, file := range files {
		for _, stmt := range splitStatements(file) {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply clickhouse migration: %w", err)
			}
		}
	}
	return nil
}
