package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"repodoc/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store, applying any pending schema
// migrations
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSnapshot records a snapshot identity
func (s *SQLiteStore) CreateSnapshot(ctx context.Context, snap *Snapshot) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (root_path, snapshot_hash, file_count) VALUES (?, ?, ?)`,
		snap.RootPath, snap.Hash, snap.FileCount)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	snap.ID, err = result.LastInsertId()
	return err
}

// GetSnapshot looks up a snapshot by root path and content hash
func (s *SQLiteStore) GetSnapshot(ctx context.Context, rootPath, hash string) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, root_path, snapshot_hash, file_count, created_at
		 FROM snapshots WHERE root_path = ? AND snapshot_hash = ?`,
		rootPath, hash).Scan(&snap.ID, &snap.RootPath, &snap.Hash, &snap.FileCount, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return snap, nil
}

// SavePartition stores a partition and its sections in one transaction,
// replacing any previous partition under the same key
func (s *SQLiteStore) SavePartition(ctx context.Context, key PartitionKey, p *types.Partition) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM partitions WHERE snapshot_id = ? AND method = ? AND min_section_size = ? AND max_section_size = ?`,
		key.SnapshotID, key.Method, key.MinSize, key.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("failed to clear previous partition: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO partitions (snapshot_id, method, min_section_size, max_section_size) VALUES (?, ?, ?, ?)`,
		key.SnapshotID, key.Method, key.MinSize, key.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("failed to save partition: %w", err)
	}
	partitionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, sec := range p.Sections {
		paths, err := json.Marshal(sec.Paths())
		if err != nil {
			return 0, fmt.Errorf("failed to encode section paths: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sections (partition_id, name, total_size, file_paths, position) VALUES (?, ?, ?, ?, ?)`,
			partitionID, sec.Name, sec.TotalSize, string(paths), i)
		if err != nil {
			return 0, fmt.Errorf("failed to save section %s: %w", sec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit partition: %w", err)
	}
	return partitionID, nil
}

// GetPartition loads a cached partition. Section file records carry paths
// only; re-hydrating contents is the caller's concern.
func (s *SQLiteStore) GetPartition(ctx context.Context, key PartitionKey) (int64, *types.Partition, error) {
	var partitionID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM partitions WHERE snapshot_id = ? AND method = ? AND min_section_size = ? AND max_section_size = ?`,
		key.SnapshotID, key.Method, key.MinSize, key.MaxSize).Scan(&partitionID)
	if err == sql.ErrNoRows {
		return 0, nil, ErrNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get partition: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total_size, file_paths FROM sections WHERE partition_id = ? ORDER BY position`,
		partitionID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	p := &types.Partition{Method: key.Method}
	for rows.Next() {
		var (
			name      string
			totalSize int
			pathsJSON string
		)
		if err := rows.Scan(&name, &totalSize, &pathsJSON); err != nil {
			return 0, nil, fmt.Errorf("failed to scan section: %w", err)
		}
		var paths []string
		if err := json.Unmarshal([]byte(pathsJSON), &paths); err != nil {
			return 0, nil, fmt.Errorf("failed to decode section paths: %w", err)
		}
		files := make([]types.FileRecord, 0, len(paths))
		for _, path := range paths {
			files = append(files, types.FileRecord{Path: path})
		}
		sec := types.Section{Name: name, Files: files, TotalSize: totalSize}
		p.Sections = append(p.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return partitionID, p, nil
}

// DeletePartitionsBySnapshot removes every cached partition of a snapshot
func (s *SQLiteStore) DeletePartitionsBySnapshot(ctx context.Context, snapshotID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM partitions WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return fmt.Errorf("failed to delete partitions: %w", err)
	}
	return nil
}

// SaveAnalysis records one section's documentation outcome
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *Analysis) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (run_id, partition_id, section_name, state, analysis, error)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, section_name) DO UPDATE SET
		   state = excluded.state,
		   analysis = excluded.analysis,
		   error = excluded.error`,
		a.RunID, a.PartitionID, a.SectionName, a.State, a.Analysis, a.Error)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// ListAnalysesByRun returns every analysis of a run, by section name
func (s *SQLiteStore) ListAnalysesByRun(ctx context.Context, runID string) ([]*Analysis, error) {
	return s.listAnalyses(ctx,
		`SELECT id, run_id, partition_id, section_name, state, analysis, error, created_at
		 FROM analyses WHERE run_id = ? ORDER BY section_name`, runID)
}

// ListAnalysesByPartition returns every analysis recorded against a
// partition across all runs
func (s *SQLiteStore) ListAnalysesByPartition(ctx context.Context, partitionID int64) ([]*Analysis, error) {
	return s.listAnalyses(ctx,
		`SELECT id, run_id, partition_id, section_name, state, analysis, error, created_at
		 FROM analyses WHERE partition_id = ? ORDER BY run_id, section_name`, partitionID)
}

func (s *SQLiteStore) listAnalyses(ctx context.Context, query string, arg any) ([]*Analysis, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Analysis
	for rows.Next() {
		a := &Analysis{}
		var analysis, errMsg sql.NullString
		if err := rows.Scan(&a.ID, &a.RunID, &a.PartitionID, &a.SectionName, &a.State, &analysis, &errMsg, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.Analysis = analysis.String
		a.Error = errMsg.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a unique-constraint failure,
// matched textually so both drivers are covered
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
