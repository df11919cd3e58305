package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"

	"lodge/config"
	"lodge/infras/postgres"
	"lodge/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

const migrationDir = "postgres"

var ErrUnknownAction = errors.New("unknown migration action")

func newMigrator(config *config.Config) (*migrate.Migrate, error) {
	write := config.DB.Postgres.Write

	dsn, err := url.Parse(postgres.DSN(
		write.Username,
		write.Password,
		write.Host,
		write.Port,
		postgres.DatabaseName(config, write.Name),
		write.SSLMode,
		"",
	))
	if err != nil {
		return nil, fmt.Errorf("parsing migration dsn: %w", err)
	}

	if table := config.DB.Postgres.MigrationTable; table != "" {
		query := dsn.Query()
		query.Set("x-migrations-table", table)
		dsn.RawQuery = query.Encode()
	}

	source, err := iofs.New(migrations.Postgres, migrationDir)
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", source, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}

	return mig, nil
}

// Runner applies one action. force takes the target version in arg.
func Runner(config *config.Config, action string, arg int) error {
	mig, err := newMigrator(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	switch action {
	case "up":
		err = mig.Up()
	case "down":
		err = mig.Steps(-1)
	case "step-up":
		err = mig.Steps(1)
	case "drop":
		err = mig.Down()
	case "force":
		err = mig.Force(arg)
	case "version":
		version, dirty, verr := mig.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			return fmt.Errorf("reading migration version: %w", verr)
		}

		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current database migration version")

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s: %w", action, err)
	}

	log.Info().Str("action", action).Msg("Database migration finished")

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, "up", 0)
}
