package postgres

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"lodge/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const driverName = "postgres"

// Connection splits reads from writes. Both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	database string
	sslMode  string
	timezone string
}

func New(config *config.Config) *Connection {
	pg := config.DB.Postgres

	read := endpoint{
		name:     "read",
		username: pg.Read.Username,
		password: pg.Read.Password,
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		database: DatabaseName(config, pg.Read.Name),
		sslMode:  pg.Read.SSLMode,
		timezone: pg.Read.Timezone,
	}

	write := endpoint{
		name:     "write",
		username: pg.Write.Username,
		password: pg.Write.Password,
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		database: DatabaseName(config, pg.Write.Name),
		sslMode:  pg.Write.SSLMode,
		timezone: pg.Write.Timezone,
	}

	return &Connection{
		Read:  mustConnect(config, read),
		Write: mustConnect(config, write),
	}
}

// Close releases both pools.
func (c *Connection) Close() error {
	return errors.Join(c.Read.Close(), c.Write.Close())
}

// DatabaseName applies the configured prefix, used to isolate test databases.
func DatabaseName(config *config.Config, baseName string) string {
	return config.DB.Postgres.Prefix + baseName
}

// DSN renders a lib/pq connection URL.
func DSN(username, password, host, port, database, sslMode, timezone string) string {
	query := url.Values{}
	if sslMode != "" {
		query.Set("sslmode", sslMode)
	}

	if timezone != "" {
		query.Set("timezone", timezone)
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(username, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + database,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func mustConnect(config *config.Config, target endpoint) *sqlx.DB {
	pg := config.DB.Postgres
	dsn := DSN(target.username, target.password, target.host, target.port, target.database, target.sslMode, target.timezone)
	attempts := max(pg.MaxRetry, 1)

	var lastErr error

	for attempt := range attempts {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxOpenConns(pg.Pool.MaxOpen)
			db.SetMaxIdleConns(pg.Pool.MaxIdle)
			db.SetConnMaxLifetime(time.Duration(pg.Pool.MaxLifetimeMins) * time.Minute)

			log.Info().
				Str("name", target.name).
				Str("host", target.host).
				Str("port", target.port).
				Str("dbName", target.database).
				Msg("Connected to database")

			return db
		}

		lastErr = err

		log.Error().
			Err(err).
			Str("name", target.name).
			Str("host", target.host).
			Int("attempt", attempt+1).
			Int("of", attempts).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
	}

	log.Fatal().Err(fmt.Errorf("%s database unreachable: %w", target.name, lastErr)).Msg("Giving up on database")

	return nil
}
