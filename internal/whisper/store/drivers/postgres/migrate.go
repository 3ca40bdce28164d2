package postgres

import (
	"context"

	"github.com/aussiebroadwan/whisper/internal/whisper/store/drivers/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// gooseUp is swapped out in tests.
var gooseUp = goose.UpContext

// ApplyMigrations runs the embedded goose migrations.
func (s *Store) ApplyMigrations() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUp(context.Background(), s.db, ".")
}
