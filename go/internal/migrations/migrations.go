package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/sqlutil"
)

//go:embed *.sql
var files embed.FS

// Apply runs every embedded schema file in name order inside one transaction.
// Statements are idempotent so Apply is safe on every start.
func Apply(ctx context.Context, db sqlutil.TxBeginner) error {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	return sqlutil.Run(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, name := range names {
			body, err := files.ReadFile(name)
			if err != nil {
				return fmt.Errorf("failed to read migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", name, err)
			}
			log.Debug().Str("migration", name).Msg("applied migration")
		}
		return nil
	})
}
