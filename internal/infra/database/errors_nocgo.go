//go:build !cgo

package database

import (
	_ "github.com/mattn/go-sqlite3" // registers a stub "sqlite3" driver that fails on open
)

func cgoUniqueViolation(error) (string, bool, bool) { return "", false, false }

func cgoForeignKeyViolation(error) (bool, bool) { return false, false }
