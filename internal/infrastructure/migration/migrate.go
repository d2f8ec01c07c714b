// Package migration applies the SQL schema with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// engine is the subset of *migrate.Migrate the Migrator drives
type engine interface {
	Up() error
	Down() error
	Steps(n int) error
	Migrate(version uint) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() (error, error)
}

// Migrator handles database migrations using golang-migrate
type Migrator struct {
	engine engine
	logger *zap.Logger
}

// New creates a Migrator reading migrations from migrationsPath and applying them to db
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return newMigrator(m, logger), nil
}

func newMigrator(e engine, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{engine: e, logger: logger}
}

// Command is a parsed migration command
type Command struct {
	Name string
	Arg  int
}

// Command names understood by Run
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandSteps   = "steps"
	CommandGoto    = "goto"
	CommandVersion = "version"
	CommandForce   = "force"
)

// ParseCommand parses CLI arguments such as ["steps", "-1"] or ["force", "3"]
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, errors.New("command required")
	}
	cmd := Command{Name: args[0]}

	switch cmd.Name {
	case CommandUp, CommandDown, CommandVersion:
		return cmd, nil
	case CommandSteps, CommandGoto, CommandForce:
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%s requires a numeric argument", cmd.Name)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return Command{}, fmt.Errorf("invalid %s argument %q", cmd.Name, args[1])
		}
		if cmd.Name == CommandSteps && n == 0 {
			return Command{}, errors.New("steps must not be zero")
		}
		if cmd.Name != CommandSteps && n < 0 {
			return Command{}, fmt.Errorf("%s version must not be negative", cmd.Name)
		}
		cmd.Arg = n
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", cmd.Name)
	}
}

// Run executes cmd
func (m *Migrator) Run(cmd Command) error {
	switch cmd.Name {
	case CommandUp:
		return m.Up()
	case CommandDown:
		return m.Down()
	case CommandSteps:
		return m.Steps(cmd.Arg)
	case CommandGoto:
		return m.GoTo(uint(cmd.Arg))
	case CommandForce:
		return m.Force(cmd.Arg)
	case CommandVersion:
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		m.logger.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd.Name)
	}
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	m.logger.Info("Running migrations up")
	if err := m.engine.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migrations to apply")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}
	return m.logCurrent("Migrations completed")
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	m.logger.Info("Running migrations down")
	if err := m.engine.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migrations to roll back")
			return nil
		}
		return fmt.Errorf("migration down failed: %w", err)
	}
	m.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations (positive = up, negative = down)
func (m *Migrator) Steps(n int) error {
	m.logger.Info("Running migration steps", zap.Int("steps", n))
	if err := m.engine.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("No migrations to apply")
			return nil
		}
		return fmt.Errorf("migration steps failed: %w", err)
	}
	return m.logCurrent("Migration steps completed")
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	m.logger.Info("Migrating to version", zap.Uint("target_version", version))
	if err := m.engine.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("Already at target version")
			return nil
		}
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	return m.logCurrent("Migration to version completed")
}

// Version returns the current migration version; 0 when nothing has been applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.engine.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the migration version without running migrations, clearing the dirty flag
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.engine.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close closes the migration source and database driver
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.engine.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}

func (m *Migrator) logCurrent(msg string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
