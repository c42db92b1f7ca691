package db

import (
	"stickynotes-server/internal/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	_ "github.com/ncruces/go-sqlite3/embed"
	sqlite "github.com/ncruces/go-sqlite3/gormlite"
)

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	err = gdb.AutoMigrate(&domain.User{}, &domain.Note{}, &domain.NoteHistory{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return gdb, nil
}
