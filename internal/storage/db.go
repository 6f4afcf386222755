package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pointake/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS parts (
  internalPartNumber TEXT PRIMARY KEY,
  description TEXT NOT NULL DEFAULT '',
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS customers (
  accountNumber TEXT PRIMARY KEY,
  companyName TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  postalCode TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_customers_companyName ON customers(companyName);

CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sourceRef TEXT NOT NULL UNIQUE,
  companyName TEXT NOT NULL DEFAULT '',
  billingCompanyName TEXT NOT NULL DEFAULT '',
  billingAddress TEXT NOT NULL DEFAULT '',
  shippingAddress TEXT NOT NULL DEFAULT '',
  poNumber TEXT NOT NULL DEFAULT '',
  poDate TEXT NOT NULL DEFAULT '',
  shippingMethod TEXT NOT NULL DEFAULT '',
  accountNumber TEXT,
  customerStatus TEXT NOT NULL,
  customerConfidence INTEGER NOT NULL,
  totalParts INTEGER NOT NULL,
  partsMapped INTEGER NOT NULL,
  partsNotFound INTEGER NOT NULL,
  partsManualReview INTEGER NOT NULL,
  successRate REAL NOT NULL,
  requiresReview INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'reconciled',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS order_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  orderId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  externalPartNumber TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  qty REAL NOT NULL DEFAULT 0,
  unitPrice REAL NOT NULL DEFAULT 0,
  internalPartNumber TEXT,
  status TEXT NOT NULL,
  confidence INTEGER NOT NULL,
  reason TEXT NOT NULL,
  candidatesJson TEXT NOT NULL DEFAULT '[]',
  UNIQUE(orderId, lineNo),
  FOREIGN KEY(orderId) REFERENCES orders(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  orderId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(orderId) REFERENCES orders(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertParts(parts []internal.Part) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO parts (internalPartNumber, description, lastSeenAt)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(internalPartNumber) DO UPDATE SET
  description=excluded.description,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range parts {
		if _, err := stmt.Exec(p.InternalPartNumber, p.Description); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListParts() ([]internal.Part, error) {
	rows, err := d.conn.Query(`SELECT internalPartNumber, description FROM parts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Part
	for rows.Next() {
		var p internal.Part
		if err := rows.Scan(&p.InternalPartNumber, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) UpsertCustomers(customers []internal.Customer) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO customers (accountNumber, companyName, address, city, state, postalCode, country, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(accountNumber) DO UPDATE SET
  companyName=excluded.companyName,
  address=excluded.address,
  city=excluded.city,
  state=excluded.state,
  postalCode=excluded.postalCode,
  country=excluded.country,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range customers {
		if _, err := stmt.Exec(c.AccountNumber, c.CompanyName, c.Address, c.City, c.State, c.PostalCode, c.Country); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCustomers() ([]internal.Customer, error) {
	rows, err := d.conn.Query(`
SELECT accountNumber, companyName, address, city, state, postalCode, country FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Customer
	for rows.Next() {
		var c internal.Customer
		if err := rows.Scan(&c.AccountNumber, &c.CompanyName, &c.Address, &c.City, &c.State, &c.PostalCode, &c.Country); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) InsertOrderResult(sourceRef string, res internal.OrderResult) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	info := res.CompanyInfo
	result, err := tx.Exec(`
INSERT INTO orders (
  sourceRef, companyName, billingCompanyName, billingAddress, shippingAddress,
  poNumber, poDate, shippingMethod, accountNumber, customerStatus, customerConfidence,
  totalParts, partsMapped, partsNotFound, partsManualReview, successRate, requiresReview, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'reconciled')
`,
		sourceRef, info.CompanyName, info.BillingCompanyName, info.BillingAddress, info.ShippingAddress,
		info.CustomerPONumber, info.PODate, info.ShippingMethod, info.AccountNumber,
		string(info.CustomerMatchStatus), info.CustomerMatchConfidence,
		res.TotalParts, res.PartsMapped, res.PartsNotFound, res.PartsManualReview,
		res.MappingSuccessRate, boolToInt(res.RequiresManualReview),
	)
	if err != nil {
		return 0, err
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertLines(tx, orderID, res.LineItems); err != nil {
		return 0, err
	}

	return orderID, tx.Commit()
}

func (d *DB) ReplaceOrderResult(orderID int, res internal.OrderResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	info := res.CompanyInfo
	if _, err := tx.Exec(`
UPDATE orders SET
  companyName=?, billingCompanyName=?, billingAddress=?, shippingAddress=?,
  poNumber=?, poDate=?, shippingMethod=?, accountNumber=?, customerStatus=?, customerConfidence=?,
  totalParts=?, partsMapped=?, partsNotFound=?, partsManualReview=?, successRate=?, requiresReview=?,
  updatedAt=CURRENT_TIMESTAMP
WHERE id=?
`,
		info.CompanyName, info.BillingCompanyName, info.BillingAddress, info.ShippingAddress,
		info.CustomerPONumber, info.PODate, info.ShippingMethod, info.AccountNumber,
		string(info.CustomerMatchStatus), info.CustomerMatchConfidence,
		res.TotalParts, res.PartsMapped, res.PartsNotFound, res.PartsManualReview,
		res.MappingSuccessRate, boolToInt(res.RequiresManualReview), orderID,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM order_lines WHERE orderId=?`, orderID); err != nil {
		return err
	}
	if err := insertLines(tx, int64(orderID), res.LineItems); err != nil {
		return err
	}

	return tx.Commit()
}

func insertLines(tx *sql.Tx, orderID int64, lines []internal.LineItem) error {
	stmt, err := tx.Prepare(`
INSERT INTO order_lines (
  orderId, lineNo, externalPartNumber, description, qty, unitPrice,
  internalPartNumber, status, confidence, reason, candidatesJson
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, line := range lines {
		candidatesJSON, _ := json.Marshal(line.Candidates)
		if _, err := stmt.Exec(
			orderID, i+1, line.ExternalPartNumber, line.Description, line.Quantity, line.UnitPrice,
			line.InternalPartNumber, string(line.MappingStatus), line.MappingConfidence,
			string(line.MatchReason), string(candidatesJSON),
		); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) GetOrderResult(orderID int) (*internal.OrderResult, error) {
	var res internal.OrderResult
	var customerStatus string
	var requiresReview int
	err := d.conn.QueryRow(`
SELECT companyName, billingCompanyName, billingAddress, shippingAddress,
       poNumber, poDate, shippingMethod, accountNumber, customerStatus, customerConfidence,
       totalParts, partsMapped, partsNotFound, partsManualReview, successRate, requiresReview
FROM orders WHERE id = ?
`, orderID).Scan(
		&res.CompanyInfo.CompanyName, &res.CompanyInfo.BillingCompanyName,
		&res.CompanyInfo.BillingAddress, &res.CompanyInfo.ShippingAddress,
		&res.CompanyInfo.CustomerPONumber, &res.CompanyInfo.PODate, &res.CompanyInfo.ShippingMethod,
		&res.CompanyInfo.AccountNumber, &customerStatus, &res.CompanyInfo.CustomerMatchConfidence,
		&res.TotalParts, &res.PartsMapped, &res.PartsNotFound, &res.PartsManualReview,
		&res.MappingSuccessRate, &requiresReview,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res.CompanyInfo.CustomerMatchStatus = internal.CustomerMatchStatus(customerStatus)
	res.CustomerMatched = res.CompanyInfo.CustomerMatchStatus == internal.CustomerMatched
	res.RequiresManualReview = requiresReview != 0

	rows, err := d.conn.Query(`
SELECT externalPartNumber, description, qty, unitPrice, internalPartNumber,
       status, confidence, reason, candidatesJson
FROM order_lines WHERE orderId = ? ORDER BY lineNo ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line internal.LineItem
		var status, reason, candidatesJSON string
		if err := rows.Scan(
			&line.ExternalPartNumber, &line.Description, &line.Quantity, &line.UnitPrice,
			&line.InternalPartNumber, &status, &line.MappingConfidence, &reason, &candidatesJSON,
		); err != nil {
			return nil, err
		}
		line.MappingStatus = internal.MappingStatus(status)
		line.MatchReason = internal.MatchReason(reason)
		_ = json.Unmarshal([]byte(candidatesJSON), &line.Candidates)
		res.LineItems = append(res.LineItems, line)
	}

	return &res, rows.Err()
}

func (d *DB) GetOrder(orderID int) (*internal.OrderRow, error) {
	var row internal.OrderRow
	err := d.conn.QueryRow(`
SELECT id, sourceRef, status, createdAt FROM orders WHERE id = ?
`, orderID).Scan(&row.ID, &row.SourceRef, &row.Status, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetOrderBySourceRef(sourceRef string) (*internal.OrderRow, error) {
	var row internal.OrderRow
	err := d.conn.QueryRow(`
SELECT id, sourceRef, status, createdAt FROM orders WHERE sourceRef = ?
`, sourceRef).Scan(&row.ID, &row.SourceRef, &row.Status, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListOrdersByStatus(status string, limit int) ([]internal.OrderRow, error) {
	rows, err := d.conn.Query(`
SELECT id, sourceRef, status, createdAt FROM orders WHERE status = ? ORDER BY id ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderRow
	for rows.Next() {
		var row internal.OrderRow
		if err := rows.Scan(&row.ID, &row.SourceRef, &row.Status, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateOrderStatus(orderID int, status string) error {
	_, err := d.conn.Exec(`UPDATE orders SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, orderID)
	return err
}

func (d *DB) InsertRun(traceID string, orderID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, orderId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		traceID, orderID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
