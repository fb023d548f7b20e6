// Package dbtx binds gorm repositories to a database/sql transaction owned
// by a service.
package dbtx

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Bind returns a gorm handle whose statements run on tx. A nil tx returns db
// unchanged. db itself keeps its own connection pool.
func Bind(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}

	// a Context forces gorm to clone Statement; without it ConnPool would be
	// set on the shared root handle
	bound := db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	bound.Statement.ConnPool = tx
	return bound
}
