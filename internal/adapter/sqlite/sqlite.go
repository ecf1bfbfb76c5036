// Package sqlite implements the domain repositories on an embedded SQLite
// database via GORM, a middle ground between the flat JSON files and a full
// PostgreSQL deployment.
package sqlite

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// presenceRow is the presence table model.
type presenceRow struct {
	Username     string    `gorm:"primaryKey;size:200"`
	SessionID    string    `gorm:"primaryKey;size:64"`
	LoginTime    time.Time `gorm:"not null"`
	LastActivity time.Time `gorm:"not null;index"`
}

func (presenceRow) TableName() string { return "presence" }

// messageRow is the messages table model.
type messageRow struct {
	ID       int64  `gorm:"primarykey"`
	Username string `gorm:"size:200;not null"`
	Trip     string `gorm:"size:16;not null"`
	Body     string `gorm:"size:2000;not null"`
	Stamp    string `gorm:"size:19;not null"`
}

func (messageRow) TableName() string { return "messages" }

// DB wraps a *gorm.DB shared by the repository views.
type DB struct {
	orm *gorm.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	orm, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := orm.AutoMigrate(&presenceRow{}, &messageRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &DB{orm: orm}, nil
}
