package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/feedbackdash/internal/survey"
)

// OpenSource builds the configured response source, wrapped in a cache when
// SOURCE_CACHE_TTL is positive. The returned close func releases any
// connection the source holds. A Postgres source is pinged before use.
func (c Config) OpenSource(ctx context.Context, log *slog.Logger) (survey.Source, func() error, error) {
	noop := func() error { return nil }

	var (
		src     survey.Source
		closeFn = noop
	)
	switch c.Source {
	case SourceSheets:
		src = survey.NewSheetsSource(c.SheetURL, c.SheetName, log)
	case SourceFile:
		fs, err := survey.OpenFile(c.SourceFile, c.SheetName)
		if err != nil {
			return nil, noop, err
		}
		src = fs
	case SourcePostgres:
		pg, err := survey.NewPostgresSource(c.DatabaseURL, c.SourceTable)
		if err != nil {
			return nil, noop, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := pg.Ping(pingCtx); err != nil {
			pg.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		src, closeFn = pg, pg.Close
	default:
		return nil, noop, fmt.Errorf("unknown source %q", c.Source)
	}

	if c.SourceCacheTTL > 0 {
		src = survey.NewCachedSource(src, c.SourceCacheTTL)
	}
	return src, closeFn, nil
}
