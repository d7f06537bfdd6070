// Package refseq implements the reference-sequence catalog (C4): DDL/DML
// for the _gri_refseq table, bulk-loading of bundled assemblies, and
// read-side lookup producing name<->rid maps (§4.4).
package refseq

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/genomicsqlite/gogenomicsqlite/util"
)

// Refseq is one row of _gri_refseq (§3).
type Refseq struct {
	Rid      int64
	Name     string
	Length   int64
	Assembly string
	RefgetID string
	MetaJSON string
}

const createTableTemplate = `CREATE TABLE IF NOT EXISTS %s (
	_gri_rid INTEGER PRIMARY KEY,
	gri_refseq_name TEXT NOT NULL,
	gri_refseq_length INTEGER NOT NULL,
	gri_assembly TEXT,
	gri_refget_id TEXT,
	gri_refseq_meta_json TEXT DEFAULT '{}'
)`

// _gri_refseq_name_global enforces uniqueness on gri_refseq_name for rows
// with no assembly, and _gri_refseq_name_assembly scopes it per assembly
// otherwise (§3 "Uniqueness on gri_refseq_name, scoped by assembly if both
// are populated"). A single index on (gri_refseq_name, gri_assembly) can't
// express this: SQLite treats NULL as distinct from any other value in a
// unique index, so two assembly-less rows sharing a name would both pass.
// Their %s is the schema prefix ("" or "aux."): SQLite qualifies an index by
// its own name, not by the table after ON.
const createNameIndexGlobalTemplate = `CREATE UNIQUE INDEX IF NOT EXISTS %s_gri_refseq_name_global ON _gri_refseq(gri_refseq_name) WHERE gri_assembly IS NULL`
const createNameIndexAssemblyTemplate = `CREATE UNIQUE INDEX IF NOT EXISTS %s_gri_refseq_name_assembly ON _gri_refseq(gri_refseq_name, gri_assembly) WHERE gri_assembly IS NOT NULL`

func qualify(table, attachedSchema string) string {
	if attachedSchema == "" {
		return table
	}
	return attachedSchema + "." + table
}

// ListBundledAssemblies returns the names of assemblies compiled into the
// extension (§4.4 "The bundled assembly data is a static table"), in
// deterministic order.
func ListBundledAssemblies() []string {
	names := make([]string, 0, len(bundledAssemblies))
	for name := range util.CanonicalMapIter(bundledAssemblies) {
		names = append(names, name)
	}
	return names
}

// EmitPutAssembly emits idempotent DDL creating _gri_refseq (if needed) plus
// INSERT statements loading every contig of a bundled assembly (§4.4).
// attachedSchema, if non-empty, names an ATTACHed database the DDL/DML
// targets instead of "main".
func EmitPutAssembly(name, attachedSchema string) ([]string, error) {
	contigs, ok := bundledAssemblies[name]
	if !ok {
		return nil, fmt.Errorf("refseq: unknown bundled assembly %q", name)
	}

	table := qualify("_gri_refseq", attachedSchema)
	stmts := []string{
		fmt.Sprintf(createTableTemplate, table),
		fmt.Sprintf(createNameIndexGlobalTemplate, qualify("", attachedSchema)),
		fmt.Sprintf(createNameIndexAssemblyTemplate, qualify("", attachedSchema)),
	}
	inserts := util.TransformSlice(contigs, func(c contig) string {
		return fmt.Sprintf(
			"INSERT INTO %s (gri_refseq_name, gri_refseq_length, gri_assembly, gri_refget_id, gri_refseq_meta_json) VALUES (%s, %d, %s, %s, '{}')",
			table, sqlString(c.Name), c.Length, sqlString(name), sqlStringOrNull(c.RefgetID),
		)
	})
	return append(stmts, inserts...), nil
}

// EmitPutRefseq emits a single INSERT into _gri_refseq (§4.4). rid == -1
// auto-assigns via the INTEGER PRIMARY KEY's native rowid behavior.
func EmitPutRefseq(name string, length int64, assembly, refgetID, metaJSON string, rid int64, attachedSchema string) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("refseq: length must be nonnegative, got %d", length)
	}
	if metaJSON == "" {
		metaJSON = "{}"
	}
	if !json.Valid([]byte(metaJSON)) {
		return "", fmt.Errorf("refseq: meta_json is not valid JSON: %s", metaJSON)
	}

	table := qualify("_gri_refseq", attachedSchema)
	ridExpr := "NULL"
	if rid >= 0 {
		ridExpr = fmt.Sprintf("%d", rid)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (_gri_rid, gri_refseq_name, gri_refseq_length, gri_assembly, gri_refget_id, gri_refseq_meta_json) VALUES (%s, %s, %d, %s, %s, %s)",
		table, ridExpr, sqlString(name), length, sqlStringOrNull(assembly), sqlStringOrNull(refgetID), sqlString(metaJSON),
	), nil
}

// GetRefseqsByRid returns a snapshot of _gri_refseq keyed by rid (§4.4).
// assembly, if non-empty, restricts the snapshot to that assembly.
func GetRefseqsByRid(ctx context.Context, db *sql.DB, assembly, attachedSchema string) (map[int64]Refseq, error) {
	rows, err := queryRefseqs(ctx, db, assembly, attachedSchema)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Refseq, len(rows))
	for _, r := range rows {
		out[r.Rid] = r
	}
	return out, nil
}

// GetRefseqsByName returns a snapshot of _gri_refseq keyed by name (§4.4).
func GetRefseqsByName(ctx context.Context, db *sql.DB, assembly, attachedSchema string) (map[string]Refseq, error) {
	rows, err := queryRefseqs(ctx, db, assembly, attachedSchema)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Refseq, len(rows))
	for _, r := range rows {
		out[r.Name] = r
	}
	return out, nil
}

func queryRefseqs(ctx context.Context, db *sql.DB, assembly, attachedSchema string) ([]Refseq, error) {
	table := qualify("_gri_refseq", attachedSchema)
	query := fmt.Sprintf(
		"SELECT _gri_rid, gri_refseq_name, gri_refseq_length, COALESCE(gri_assembly,''), COALESCE(gri_refget_id,''), gri_refseq_meta_json FROM %s",
		table,
	)
	args := []interface{}{}
	if assembly != "" {
		query += " WHERE gri_assembly = ?"
		args = append(args, assembly)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Refseq
	for rows.Next() {
		var r Refseq
		if err := rows.Scan(&r.Rid, &r.Name, &r.Length, &r.Assembly, &r.RefgetID, &r.MetaJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func sqlString(s string) string {
	return "'" + escapeSingleQuotes(s) + "'"
}

func sqlStringOrNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return sqlString(s)
}

func escapeSingleQuotes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
		} else {
			out = append(out, s[i])
		}
	}
	return string(out)
}
