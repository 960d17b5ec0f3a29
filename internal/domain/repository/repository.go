package repository

import (
	"database/sql"

	"showcase/internal/platform/database"

	"github.com/jackc/pgx/v5/pgtype"
)

// arrayScanner decodes a PostgreSQL array column through database/sql.
// pgtype.Map caches scan plans and is not safe for concurrent use, so each
// call gets its own.
func arrayScanner(dst any) sql.Scanner {
	return pgtype.NewMap().SQLScanner(dst)
}

// conn picks the transaction when one is given.
func conn(db *sql.DB, tx *sql.Tx) database.DBTX {
	if tx != nil {
		return tx
	}
	return db
}
