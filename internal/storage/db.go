package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/util"
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
CREATE TABLE IF NOT EXISTS locations (
  term TEXT PRIMARY KEY,
  aisle TEXT NOT NULL,
  zone TEXT,
  source TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS lists (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS list_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  listId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  rawLine TEXT NOT NULL,
  name TEXT,
  qty TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  lookupTerm TEXT,
  category TEXT,
  section TEXT,
  directive TEXT,
  aisle TEXT,
  zone TEXT,
  locationSource TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(listId, position),
  FOREIGN KEY(listId) REFERENCES lists(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  listId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(listId) REFERENCES lists(id)
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

// GetLocation looks up a cached aisle location. The key is the folded
// lookup term; a nil result means a cache miss, not an error.
func (d *DB) GetLocation(term string) (*internal.ItemLocation, error) {
	var loc internal.ItemLocation
	err := d.conn.QueryRow(`
SELECT term, aisle, zone, source FROM locations WHERE term = ?
`, util.FoldKey(term)).Scan(&loc.Term, &loc.Aisle, &loc.Zone, &loc.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	loc.Source = "cache"
	return &loc, nil
}

func (d *DB) PutLocation(loc internal.ItemLocation) error {
	_, err := d.conn.Exec(`
INSERT INTO locations (term, aisle, zone, source) VALUES (?, ?, ?, ?)
ON CONFLICT(term) DO UPDATE SET
  aisle=excluded.aisle,
  zone=excluded.zone,
  source=excluded.source,
  updatedAt=CURRENT_TIMESTAMP
`, util.FoldKey(loc.Term), loc.Aisle, loc.Zone, loc.Source)
	return err
}

func (d *DB) CountLocations() (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM locations`).Scan(&count)
	return count, err
}

func (d *DB) UpsertList(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.ListRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO lists (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.ListRow{}, err
	}

	row, err := d.GetListByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ListRow{}, err
	}
	if row == nil {
		return internal.ListRow{}, errors.New("failed to upsert list")
	}
	return *row, nil
}

func (d *DB) GetListByProviderMessageID(provider, messageID string) (*internal.ListRow, error) {
	var row internal.ListRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM lists WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetListByID(id int) (*internal.ListRow, error) {
	var row internal.ListRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM lists WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListListsByStatus(status string, limit int) ([]internal.ListRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM lists WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ListRow
	for rows.Next() {
		var row internal.ListRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateListStatus(listID int, status string) error {
	_, err := d.conn.Exec(`UPDATE lists SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, listID)
	return err
}

func (d *DB) ClearListItems(listID int) error {
	_, err := d.conn.Exec(`DELETE FROM list_items WHERE listId = ?`, listID)
	return err
}

func (d *DB) InsertListItem(listID, position int, item internal.ResolvedItem) error {
	var aisle, zone, source *string
	if item.Location != nil {
		aisle = util.StringPtr(item.Location.Aisle)
		zone = item.Location.Zone
		source = util.StringPtr(item.Location.Source)
	}
	_, err := d.conn.Exec(`
INSERT INTO list_items (listId, position, rawLine, name, qty, notes, lookupTerm, category, section, directive, aisle, zone, locationSource)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, listID, position, item.Raw, item.Name, item.Qty, item.Notes, item.LookupTerm, item.Category, item.Section, item.Directive, aisle, zone, source)
	return err
}

// GetResolvedItems returns a list's stored items in source order.
func (d *DB) GetResolvedItems(listID int) ([]internal.ResolvedItem, error) {
	rows, err := d.conn.Query(`
SELECT rawLine, name, qty, notes, lookupTerm, category, section, directive, aisle, zone, locationSource
FROM list_items WHERE listId = ? ORDER BY position ASC
`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ResolvedItem
	for rows.Next() {
		var item internal.ResolvedItem
		var aisle, zone, source *string
		if err := rows.Scan(
			&item.Raw, &item.Name, &item.Qty, &item.Notes, &item.LookupTerm,
			&item.Category, &item.Section, &item.Directive, &aisle, &zone, &source,
		); err != nil {
			return nil, err
		}
		if aisle != nil {
			term := ""
			if item.LookupTerm != nil {
				term = *item.LookupTerm
			}
			src := "cache"
			if source != nil {
				src = *source
			}
			item.Location = &internal.ItemLocation{Term: term, Aisle: *aisle, Zone: zone, Source: src}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, listID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, listId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, listID, string(timingsJSON), string(countsJSON))
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

func (d *DB) MustListByProviderMessageID(provider, messageID string) (internal.ListRow, error) {
	row, err := d.GetListByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ListRow{}, err
	}
	if row == nil {
		return internal.ListRow{}, fmt.Errorf("list not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}
