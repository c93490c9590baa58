//go:build cgo

package database

import (
	"errors"

	"github.com/mattn/go-sqlite3" // registers "sqlite3"
)

func cgoUniqueViolation(err error) (detail string, ok, matched bool) {
	var cgoErr sqlite3.Error
	if !errors.As(err, &cgoErr) {
		return "", false, false
	}

	switch cgoErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return cgoErr.Error(), true, true
	}

	return "", false, true
}

func cgoForeignKeyViolation(err error) (ok, matched bool) {
	var cgoErr sqlite3.Error
	if !errors.As(err, &cgoErr) {
		return false, false
	}

	return cgoErr.ExtendedCode == sqlite3.ErrConstraintForeignKey, true
}
