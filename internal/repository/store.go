package repository

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grocerysushi/stumbleupon-clone/internal/config"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

// Store regroupe les repositories ouverts sur un même backend.
type Store struct {
	Links  LinkRepository
	Events EventRepository
	Topics TopicRepository

	close func() error
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open opens the backend selected by cfg.Database.Driver and migrates it when relevant.
func Open(cfg *config.Config, log logrus.FieldLogger) (*Store, error) {
	switch cfg.Database.Driver {
	case "badger":
		repo, err := NewBadgerRepository(cfg.Database.BadgerPath, log)
		if err != nil {
			return nil, err
		}
		return &Store{Links: repo, Events: repo, Topics: repo, close: repo.Close}, nil
	case "sqlite", "":
		db, err := OpenSQLite(cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.WithField("database", cfg.Database.Name).Info("SQLite database ready")
		return NewGormStore(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// OpenSQLite ouvre la base SQLite via GORM (driver pur Go).
// A single connection serializes writers; busy_timeout covers external processes.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate exécute les migrations automatiques GORM.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Topic{}, &models.Link{}, &models.Event{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NewGormStore assemble les repositories GORM sur db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Links:  NewLinkRepository(db),
		Events: NewEventRepository(db),
		Topics: NewTopicRepository(db),
		close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
