package store

import (
	"database/sql"

	"github.com/adalundhe/forgecraft/core/database"
)

var migrations = []database.Migration{
	{
		Version:     1,
		Description: "create assets table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS assets (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					category   TEXT NOT NULL,
					prompt     TEXT NOT NULL,
					payload    TEXT NOT NULL,
					created_at INTEGER NOT NULL
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index assets by category and recency",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_assets_category_created
				ON assets (category, created_at DESC)`)
			return err
		},
	},
}
