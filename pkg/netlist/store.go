package netlist

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/OpenTraceLab/OpenTraceNet/pkg/connectivity"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps netlists and ERC markers in a SQLite database. Each save is a
// run identified by a UUID.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// OpenStore opens (creating if needed) the database at path.
// Use ":memory:" for an in-memory database.
func OpenStore(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one connection: pragmas are per connection and :memory: is per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path, log: log}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveNetlist stores nl as a new run and returns the run id
func (s *Store) SaveNetlist(ctx context.Context, nl *Netlist) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, created_at) VALUES (?, ?, ?)`,
		runID, nl.Source, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}

	for _, c := range nl.Components {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO components (run_id, ref, value, lib_id) VALUES (?, ?, ?, ?)`,
			runID, c.Ref, c.Value, c.LibID,
		); err != nil {
			return "", fmt.Errorf("failed to save component %s: %w", c.Ref, err)
		}
	}

	for _, net := range nl.Nets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO nets (run_id, code, name) VALUES (?, ?, ?)`,
			runID, net.Code, net.Name,
		); err != nil {
			return "", fmt.Errorf("failed to save net %s: %w", net.Name, err)
		}
		for _, node := range net.Nodes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO nodes (run_id, net_code, ref, pin, pin_name, pin_type) VALUES (?, ?, ?, ?, ?, ?)`,
				runID, net.Code, node.Ref, node.Pin, nullString(node.PinName), node.PinType,
			); err != nil {
				return "", fmt.Errorf("failed to save node %s.%s: %w", node.Ref, node.Pin, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit netlist: %w", err)
	}

	s.log.Debug("netlist: saved run", "run", runID, "nets", len(nl.Nets), "components", len(nl.Components))
	return runID, nil
}

// SaveMarkers stores ERC markers under an existing run
func (s *Store) SaveMarkers(ctx context.Context, runID string, markers []*connectivity.Marker) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range markers {
		sheet := ""
		if m.Sheet != nil {
			sheet = m.Sheet.HumanPath()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO markers (id, run_id, kind, severity, message, sheet, x, y) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, runID, m.Kind.String(), m.Severity.String(), m.Message, sheet, m.Pos.X, m.Pos.Y,
		); err != nil {
			return fmt.Errorf("failed to save marker: %w", err)
		}
	}

	return tx.Commit()
}

// Netlist reads back the netlist of a run
func (s *Store) Netlist(ctx context.Context, runID string) (*Netlist, error) {
	nl := &Netlist{}
	err := s.db.QueryRowContext(ctx, `SELECT source FROM runs WHERE id = ?`, runID).Scan(&nl.Source)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ref, value, lib_id FROM components WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.Ref, &c.Value, &c.LibID); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		nl.Components = append(nl.Components, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	byCode := make(map[int]*Net)
	rows, err = s.db.QueryContext(ctx,
		`SELECT code, name FROM nets WHERE run_id = ? ORDER BY code`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nets: %w", err)
	}
	for rows.Next() {
		net := &Net{}
		if err := rows.Scan(&net.Code, &net.Name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan net: %w", err)
		}
		byCode[net.Code] = net
		nl.Nets = append(nl.Nets, net)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT net_code, ref, pin, pin_name, pin_type FROM nodes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var code int
		var node Node
		var pinName sql.NullString
		if err := rows.Scan(&code, &node.Ref, &node.Pin, &pinName, &node.PinType); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		node.PinName = pinName.String
		if net := byCode[code]; net != nil {
			net.Nodes = append(net.Nodes, node)
		}
	}

	return nl, rows.Err()
}

// MarkerCount returns the number of markers saved for a run, by severity
func (s *Store) MarkerCount(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT severity, COUNT(*) FROM markers WHERE run_id = ? GROUP BY severity`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count markers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, err
		}
		counts[sev] = n
	}
	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
