package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/feedwatch/feedwatch/internal/config"
)

// identRe matches bare ClickHouse identifiers. Source keys are interpolated
// into the query as table names, so anything else is rejected up front.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

type chSource struct {
	conn   driver.Conn
	column string
}

// newClickHouse opens a native-protocol connection to the configured server.
// The connection pool is lazy; a down server surfaces as per-query errors,
// which the evaluator contains per instrument.
func newClickHouse(cfg config.BackendConfig) (Source, error) {
	if !identRe.MatchString(cfg.TimestampColumn) {
		return nil, fmt.Errorf("source: invalid timestamp column %q", cfg.TimestampColumn)
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password(),
		},
		DialTimeout: defaultHTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("source: open clickhouse: %w", err)
	}
	return &chSource{conn: conn, column: cfg.TimestampColumn}, nil
}

// LastUpdate reads max(column) from the table named by sourceKey.
//
// An empty table yields the epoch zero value from max(); that and a no-rows
// result both mean the feed has never been observed. Timestamps come back in
// the server's timezone and are normalized by the caller.
func (s *chSource) LastUpdate(ctx context.Context, sourceKey string) (time.Time, bool, error) {
	if !identRe.MatchString(sourceKey) {
		return time.Time{}, false, fmt.Errorf("clickhouse: invalid source key %q", sourceKey)
	}

	query := fmt.Sprintf("SELECT max(%s) FROM %s", s.column, sourceKey)

	var ts time.Time
	row := s.conn.QueryRow(ctx, query)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("clickhouse: query %q: %w", sourceKey, err)
	}

	// max() over an empty table returns the type's zero value rather than
	// no rows. Treat anything at or before the epoch as never observed.
	if ts.IsZero() || !ts.After(time.Unix(0, 0)) {
		return time.Time{}, false, nil
	}
	return ts, true, nil
}
