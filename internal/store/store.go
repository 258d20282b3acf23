// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store keeps the capture and export history in SQLite.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN selects a private in-memory database.
const MemoryDSN = ":memory:"

// Store represents the database store
type Store struct {
	db *gorm.DB
}

// NewStore opens the database at dsn. MemoryDSN, or an empty dsn, gives a
// process-private in-memory database; anything else is a file path.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" || dsn == MemoryDSN {
		// Each store gets its own named shared-cache database so every pooled
		// connection sees the same tables.
		return open(fmt.Sprintf("file:webcloner-%s?mode=memory&cache=shared", uuid.NewString()), true)
	}

	dbDir := filepath.Dir(dsn)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}
	if info, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist after creation: %v", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("database path exists but is not a directory: %s", dbDir)
	}

	// WAL mode enables concurrent reads and writes
	// busy_timeout prevents immediate "database is locked" errors
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return open(dsn+sep+"_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", false)
}

// DefaultPath returns ~/.webcloner/history.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".webcloner", "history.db"), nil
}

func open(dsn string, memory bool) (*Store, error) {
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	// An in-memory database disappears with its last connection, and shared
	// cache connections lock each other out on concurrent writes.
	if memory {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	if err := database.AutoMigrate(&CaptureRecord{}, &ExportRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}
	return &Store{db: database}, nil
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
