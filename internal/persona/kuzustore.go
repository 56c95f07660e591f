//go:build cgo

package persona

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Store using KuzuDB. Personas and styles are nodes
// joined by HAS_STYLE edges, so style lookups are graph traversals.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at
// dbPath. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Persona(
		id STRING,
		name STRING,
		description STRING,
		style STRING,
		active BOOLEAN,
		sort_order INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Style(
		name STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_STYLE(FROM Persona TO Style)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Put upserts a Persona node and re-points its HAS_STYLE edge.
func (s *KuzuStore) Put(_ context.Context, p Persona) error {
	style := string(ParseStyle(string(p.ReasoningStyle)))
	if err := s.exec(
		`MERGE (p:Persona {id: $id})
		 SET p.name = $name, p.description = $desc, p.style = $style,
		     p.active = $active, p.sort_order = $sort`,
		map[string]any{
			"id":     p.ID,
			"name":   p.Name,
			"desc":   p.Description,
			"style":  style,
			"active": p.Active,
			"sort":   int64(p.SortOrder),
		},
	); err != nil {
		return err
	}
	if err := s.exec(
		"MATCH (p:Persona {id: $id})-[r:HAS_STYLE]->(:Style) DELETE r",
		map[string]any{"id": p.ID},
	); err != nil {
		return err
	}
	if err := s.exec("MERGE (:Style {name: $style})", map[string]any{"style": style}); err != nil {
		return err
	}
	return s.exec(
		`MATCH (p:Persona {id: $id}), (st:Style {name: $style})
		 CREATE (p)-[:HAS_STYLE]->(st)`,
		map[string]any{"id": p.ID, "style": style},
	)
}

const personaColumns = "p.id, p.name, p.description, p.style, p.active, p.sort_order"

// Get retrieves a single Persona node by id, or nil if not found.
func (s *KuzuStore) Get(_ context.Context, id string) (*Persona, error) {
	rows, err := s.query(
		"MATCH (p:Persona {id: $id}) RETURN "+personaColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rowToPersona(rows[0])
	return &p, nil
}

// List returns every Persona node ordered by id.
func (s *KuzuStore) List(_ context.Context) ([]Persona, error) {
	rows, err := s.query("MATCH (p:Persona) RETURN "+personaColumns+" ORDER BY p.id", nil)
	if err != nil {
		return nil, err
	}
	return rowsToPersonas(rows), nil
}

// ByStyle follows HAS_STYLE edges into the given Style node.
func (s *KuzuStore) ByStyle(_ context.Context, style Style) ([]Persona, error) {
	rows, err := s.query(
		"MATCH (p:Persona)-[:HAS_STYLE]->(:Style {name: $style}) RETURN "+personaColumns+" ORDER BY p.id",
		map[string]any{"style": string(ParseStyle(string(style)))},
	)
	if err != nil {
		return nil, err
	}
	return rowsToPersonas(rows), nil
}

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// rowToPersona converts a personaColumns row.
func rowToPersona(r []any) Persona {
	return Persona{
		ID:             toString(r[0]),
		Name:           toString(r[1]),
		Description:    toString(r[2]),
		ReasoningStyle: Style(toString(r[3])),
		Active:         toBool(r[4]),
		SortOrder:      toInt(r[5]),
	}
}

func rowsToPersonas(rows [][]any) []Persona {
	out := make([]Persona, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToPersona(r))
	}
	return out
}

// KuzuDB returns typed Go values; these coerce any -> concrete type.

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
