// Package database persists simulator snapshots in SQLite
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wasim/internal/constants"
	"wasim/internal/errors"
	"wasim/internal/migrations"
	"wasim/internal/models"
	"wasim/internal/security"
	"wasim/internal/state"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

// MigrateResult describes what a migration run changed
type MigrateResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// SnapshotInfo summarizes the most recent save
type SnapshotInfo struct {
	SavedAt      time.Time
	ChatCount    int
	MessageCount int
}

// New opens (creating if needed) the database at dbPath and migrates it to the latest schema
func New(dbPath string) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, errors.NewConfigError("database.path", fmt.Sprintf("invalid database path: %v", err))
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultDirectoryPermissions); err != nil {
			return nil, errors.NewDatabaseError("create directory", err)
		}
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, constants.DefaultFilePermissions) // #nosec G304 - Path validated above
	if err != nil {
		return nil, errors.NewDatabaseError("create", err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewDatabaseError("create", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewDatabaseError("open", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.NewDatabaseError("ping", err)
	}

	d := &Database{db: db}
	if _, err := d.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	d.encryptor, err = NewEncryptor()
	if err != nil {
		_ = db.Close()
		return nil, errors.NewConfigError(constants.EnvEncryptionSecret, err.Error())
	}
	return d, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Migrate applies pending migrations from the embedded schema files
func (d *Database) Migrate() (*MigrateResult, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseMigration, "migration source")
	}

	driver, err := sqlite3.WithInstance(d.db, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseMigration, "migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseMigration, "migration instance")
	}

	err = m.Up()
	changed := true
	if err == migrate.ErrNoChange {
		changed = false
		err = nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseMigration, "migration up")
	}

	version, dirty, _ := m.Version()
	return &MigrateResult{Version: version, Dirty: dirty, Changed: changed}, nil
}

// SaveSnapshot replaces the stored state with snap in a single transaction
func (d *Database) SaveSnapshot(ctx context.Context, snap *state.Snapshot) error {
	err := retryableDBOperationNoReturn(ctx, func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := d.writeSnapshot(ctx, tx, snap); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}, "save snapshot")
	if err != nil {
		return errors.NewDatabaseError("save snapshot", err)
	}
	return nil
}

func (d *Database) writeSnapshot(ctx context.Context, tx *sql.Tx, snap *state.Snapshot) error {
	for _, q := range []string{DeleteMessagesQuery, DeleteChatsQuery, DeleteContactsQuery, DeleteMetaQuery} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}

	currentUser, err := d.encryptor.Encrypt(snap.CurrentUserJID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, InsertMetaQuery, metaCurrentUserJID, currentUser); err != nil {
		return err
	}

	for i, c := range snap.Contacts {
		key, payload, err := d.sealRow(c.ResourceName, c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, InsertContactQuery, i, key, payload); err != nil {
			return fmt.Errorf("contact %d: %w", i, err)
		}
	}

	messageCount := 0
	for i, c := range snap.Chats {
		header := c
		header.Messages = nil
		key, payload, err := d.sealRow(c.ChatJID, header)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, InsertChatQuery, i, key, payload); err != nil {
			return fmt.Errorf("chat %d: %w", i, err)
		}

		for j, m := range c.Messages {
			key, payload, err := d.sealRow(m.MessageID, m)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, InsertMessageQuery, i, j, key, payload); err != nil {
				return fmt.Errorf("chat %d message %d: %w", i, j, err)
			}
			messageCount++
		}
	}

	_, err = tx.ExecContext(ctx, InsertSnapshotQuery, time.Now().UTC(), len(snap.Chats), messageCount)
	return err
}

// sealRow encodes a row's key and JSON payload, encrypting both when enabled
func (d *Database) sealRow(key string, v interface{}) (string, string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", "", err
	}
	sealedKey, err := d.encryptor.EncryptForLookup(key)
	if err != nil {
		return "", "", err
	}
	payload, err := d.encryptor.Encrypt(string(raw))
	if err != nil {
		return "", "", err
	}
	return sealedKey, payload, nil
}

func (d *Database) openRow(payload string, v interface{}) error {
	raw, err := d.encryptor.Decrypt(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

// LoadSnapshot reads the stored state in its saved order. It returns nil when nothing
// has been saved yet.
func (d *Database) LoadSnapshot(ctx context.Context) (*state.Snapshot, error) {
	var currentUser string
	err := d.db.QueryRowContext(ctx, SelectMetaQuery, metaCurrentUserJID).Scan(&currentUser)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDatabaseError("load snapshot", err)
	}

	snap := &state.Snapshot{}
	if snap.CurrentUserJID, err = d.encryptor.Decrypt(currentUser); err != nil {
		return nil, errors.NewDatabaseError("decrypt", err)
	}

	if err := d.loadContacts(ctx, snap); err != nil {
		return nil, errors.NewDatabaseError("load contacts", err)
	}
	if err := d.loadChats(ctx, snap); err != nil {
		return nil, errors.NewDatabaseError("load chats", err)
	}

	if err := state.Validate(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (d *Database) loadContacts(ctx context.Context, snap *state.Snapshot) error {
	rows, err := d.db.QueryContext(ctx, SelectContactsQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		var c models.Contact
		if err := d.openRow(payload, &c); err != nil {
			return err
		}
		snap.Contacts = append(snap.Contacts, c)
	}
	return rows.Err()
}

func (d *Database) loadChats(ctx context.Context, snap *state.Snapshot) error {
	rows, err := d.db.QueryContext(ctx, SelectChatsQuery)
	if err != nil {
		return err
	}
	byPosition := make(map[int]int)
	for rows.Next() {
		var position int
		var payload string
		if err := rows.Scan(&position, &payload); err != nil {
			rows.Close()
			return err
		}
		var c models.Chat
		if err := d.openRow(payload, &c); err != nil {
			rows.Close()
			return err
		}
		c.Messages = []models.Message{}
		byPosition[position] = len(snap.Chats)
		snap.Chats = append(snap.Chats, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	msgRows, err := d.db.QueryContext(ctx, SelectMessagesQuery)
	if err != nil {
		return err
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var chatPosition int
		var payload string
		if err := msgRows.Scan(&chatPosition, &payload); err != nil {
			return err
		}
		idx, ok := byPosition[chatPosition]
		if !ok {
			return fmt.Errorf("message references missing chat position %d", chatPosition)
		}
		var m models.Message
		if err := d.openRow(payload, &m); err != nil {
			return err
		}
		snap.Chats[idx].Messages = append(snap.Chats[idx].Messages, m)
	}
	return msgRows.Err()
}

// LatestSnapshot returns metadata of the last save, or nil when there is none
func (d *Database) LatestSnapshot(ctx context.Context) (*SnapshotInfo, error) {
	info := &SnapshotInfo{}
	err := d.db.QueryRowContext(ctx, SelectLatestSnapshotQuery).Scan(&info.SavedAt, &info.ChatCount, &info.MessageCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewDatabaseError("latest snapshot", err)
	}
	return info, nil
}
