// Package snapstore is the relational snapshot store: periodic imports of
// order exports and per-mall service usage, queryable as an alternative
// row source to a one-off CSV upload.
package snapstore

import (
	"context"
	"database/sql"
	"fmt"

	"uplens/internal/normalize"
	"uplens/internal/rowsource"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_date TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS services (
	service_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	service_name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS mall_service_usage (
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(snapshot_id),
	service_id  INTEGER NOT NULL REFERENCES services(service_id),
	shop_id     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS order_lines (
	snapshot_id    INTEGER NOT NULL REFERENCES snapshots(snapshot_id),
	order_id       TEXT NOT NULL,
	order_date     TEXT,
	order_total    TEXT,
	buyer_id       TEXT,
	class          TEXT,
	product_code   TEXT,
	product_name   TEXT,
	product_option TEXT,
	unit_price     TEXT,
	qty            TEXT
);
CREATE INDEX IF NOT EXISTS idx_order_lines_snapshot ON order_lines(snapshot_id);
`

// Store wraps the sqlite database holding snapshots.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for ad-hoc queries (rowsource.SQLSource).
func (s *Store) DB() *sql.DB { return s.db }

// AddSnapshot registers a snapshot date and returns its id.
func (s *Store) AddSnapshot(date string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO snapshots (snapshot_date) VALUES (?)`, date)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return res.LastInsertId()
}

// LatestSnapshot returns the id of the most recent snapshot, or ok=false
// when the store is empty.
func (s *Store) LatestSnapshot() (id int64, date string, ok bool, err error) {
	row := s.db.QueryRow(`SELECT snapshot_id, snapshot_date FROM snapshots ORDER BY snapshot_id DESC LIMIT 1`)
	if err := row.Scan(&id, &date); err != nil {
		if err == sql.ErrNoRows {
			return 0, "", false, nil
		}
		return 0, "", false, fmt.Errorf("latest snapshot: %w", err)
	}
	return id, date, true, nil
}

// ImportLines stores raw export rows under a snapshot, mapped through the
// schema. Values are stored as-is; coercion stays the normalizer's job.
func (s *Store) ImportLines(snapshotID int64, rows []rowsource.Row, sc normalize.Schema) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO order_lines
		(snapshot_id, order_id, order_date, order_total, buyer_id, class,
		 product_code, product_name, product_option, unit_price, qty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		_, err := stmt.Exec(snapshotID,
			r[sc.OrderID], r[sc.OrderDate], r[sc.OrderTotal], r[sc.BuyerID], r[sc.Class],
			r[sc.ProductCode], r[sc.ProductName], r[sc.ProductOption], r[sc.UnitPrice], r[sc.Qty])
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LineSource returns a row source over one snapshot's order lines, with
// columns aliased back to the schema's configured headers so the engine
// consumes snapshot rows and CSV rows identically.
func (s *Store) LineSource(snapshotID int64, sc normalize.Schema) rowsource.Source {
	q := fmt.Sprintf(`SELECT
		order_id AS %q, order_date AS %q, order_total AS %q, buyer_id AS %q,
		class AS %q, product_code AS %q, product_name AS %q,
		product_option AS %q, unit_price AS %q, qty AS %q
		FROM order_lines WHERE snapshot_id = ? ORDER BY rowid`,
		sc.OrderID, sc.OrderDate, sc.OrderTotal, sc.BuyerID,
		sc.Class, sc.ProductCode, sc.ProductName,
		sc.ProductOption, sc.UnitPrice, sc.Qty)
	return rowsource.NewSQLSource(s.db, q, snapshotID)
}

// RecordUsage marks a shop as an active user of a service in a snapshot.
func (s *Store) RecordUsage(snapshotID int64, service, shopID string) error {
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO services (service_name) VALUES (?)`, service); err != nil {
		return fmt.Errorf("upsert service: %w", err)
	}
	_, err := s.db.Exec(`INSERT INTO mall_service_usage (snapshot_id, service_id, shop_id)
		SELECT ?, service_id, ? FROM services WHERE service_name = ?`,
		snapshotID, shopID, service)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// UsageCell is the distinct active-shop count of one service at one
// snapshot date.
type UsageCell struct {
	Date    string `json:"date"`
	Service string `json:"service"`
	Shops   int    `json:"shops"`
}

// ServiceUsage pivots usage into per-date, per-service distinct shop
// counts, ordered by date then service name.
func (s *Store) ServiceUsage(ctx context.Context) ([]UsageCell, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snap.snapshot_date, sv.service_name, COUNT(DISTINCT msu.shop_id)
		FROM mall_service_usage msu
		JOIN services sv ON msu.service_id = sv.service_id
		JOIN snapshots snap ON msu.snapshot_id = snap.snapshot_id
		GROUP BY snap.snapshot_date, sv.service_name
		ORDER BY snap.snapshot_date, sv.service_name`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []UsageCell
	for rows.Next() {
		var c UsageCell
		if err := rows.Scan(&c.Date, &c.Service, &c.Shops); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}
	return out, nil
}
