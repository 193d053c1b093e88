package database

import (
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	dbdriver "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	src "github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr, downErr, closeErr error
	closed                   *bool
}

func (f fakeMigrator) Up() error   { return f.upErr }
func (f fakeMigrator) Down() error { return f.downErr }
func (f fakeMigrator) Close() (error, error) {
	if f.closed != nil {
		*f.closed = true
	}
	return nil, f.closeErr
}

func restore() {
	sqlOpenDB = sql.Open
	postgresWithInstanceFn = postgres.WithInstance
	iofsNewFn = iofs.New
	migrateNewWithInstance = func(sourceName string, sourceDriver src.Driver, databaseName string, databaseDriver dbdriver.Driver) (migrateInstance, error) {
		m, err := migrate.NewWithInstance(sourceName, sourceDriver, databaseName, databaseDriver)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func stubSetup() {
	sqlOpenDB = func(string, string) (*sql.DB, error) { return sql.Open("pgx", "") }
	postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, nil }
	iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, nil }
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Zero(t, len(entries)%2, "every up migration needs a down")
}

func TestMigratorSetupErrors(t *testing.T) {
	t.Cleanup(restore)
	for name, run := range map[string]func(string) error{"CreateAll": CreateAll, "DropAll": DropAll} {
		t.Run(name, func(t *testing.T) {
			restore()
			sqlOpenDB = func(string, string) (*sql.DB, error) { return nil, errors.New("open") }
			require.ErrorContains(t, run("url"), name)

			stubSetup()
			postgresWithInstanceFn = func(*sql.DB, *postgres.Config) (dbdriver.Driver, error) { return nil, errors.New("drv") }
			require.Error(t, run("url"))

			stubSetup()
			iofsNewFn = func(fs.FS, string) (src.Driver, error) { return nil, errors.New("src") }
			require.Error(t, run("url"))

			stubSetup()
			migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
				return nil, errors.New("mig")
			}
			require.Error(t, run("url"))
		})
	}
}

func TestCreateAll(t *testing.T) {
	t.Cleanup(restore)
	stubSetup()

	closed := false
	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{upErr: errors.New("u"), closed: &closed}, nil
	}
	require.Error(t, CreateAll("url"))
	require.True(t, closed)

	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{upErr: migrate.ErrNoChange}, nil
	}
	require.NoError(t, CreateAll("url"))

	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{closeErr: errors.New("close")}, nil
	}
	require.ErrorContains(t, CreateAll("url"), "close")

	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{}, nil
	}
	require.NoError(t, CreateAll("url"))
}

func TestDropAll(t *testing.T) {
	t.Cleanup(restore)
	stubSetup()

	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{downErr: migrate.ErrNoChange}, nil
	}
	require.NoError(t, DropAll("url"))

	closed := false
	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{downErr: errors.New("d"), closed: &closed}, nil
	}
	require.Error(t, DropAll("url"))
	require.True(t, closed)

	migrateNewWithInstance = func(string, src.Driver, string, dbdriver.Driver) (migrateInstance, error) {
		return fakeMigrator{}, nil
	}
	require.NoError(t, DropAll("url"))
}
