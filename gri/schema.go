package gri

import (
	"fmt"
	"strings"
)

// EmitCreateGRI implements C2 (§4.2): given a rowid table and three SQL
// expressions for its reference-sequence id, begin, and end coordinates, it
// returns the DDL statements that add the four generated columns and the
// composite index.
//
// ridExpr, begExpr, and endExpr are interpolated into the emitted SQL
// verbatim (§9 "String templating risk") — they may be bare column names or
// arithmetic, and gri does not validate or sanitize them; that is the
// caller's responsibility. table is validated as a bare identifier because
// it is also used, unescaped, to derive the generated column owner and the
// index name.
//
// The caller must execute the returned statements within a single
// transaction and roll back on any failure (§4.2 contract); re-running
// against an already-indexed table surfaces the host engine's own
// duplicate-column or duplicate-index error.
func EmitCreateGRI(table, ridExpr, begExpr, endExpr string, floor int) ([]string, error) {
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}
	if floor < -1 || floor > MaxLevel {
		return nil, &ConfigError{Key: "floor", Value: floor, Msg: fmt.Sprintf("must be in [-1,%d]", MaxLevel)}
	}

	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s AS (%s) VIRTUAL", table, colRid, ridExpr),
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s AS (%s) VIRTUAL", table, colBeg, begExpr),
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s AS (%s - %s) VIRTUAL", table, colLen, endExpr, begExpr),
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s AS (%s) VIRTUAL", table, colLvl, levelCaseExpr(colLen, floor)),
		fmt.Sprintf("CREATE INDEX %s ON %s(%s, %s, %s)", indexName(table), table, colRid, colLvl, colBeg),
	}
	return stmts, nil
}

// EmitCreateGRISQL is a convenience wrapper joining EmitCreateGRI's
// statements into one semicolon-terminated script.
func EmitCreateGRISQL(table, ridExpr, begExpr, endExpr string, floor int) (string, error) {
	stmts, err := EmitCreateGRI(table, ridExpr, begExpr, endExpr, floor)
	if err != nil {
		return "", err
	}
	return strings.Join(stmts, ";\n") + ";", nil
}

// levelCaseExpr returns a SQL CASE expression computing _gri_lvl from a
// length expression (typically the _gri_len column), using the same
// thresholds as Level (§4.2): the two must agree, since the generated
// column is the source of truth inside SQLite and Level is the Go-side
// form of the same classification.
func levelCaseExpr(lenExpr string, floor int) string {
	effectiveFloor := floor
	if effectiveFloor < 0 {
		effectiveFloor = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CASE WHEN %s IS NULL OR %s <= 0 THEN NULL ELSE (CASE", lenExpr, lenExpr)
	for level := 0; level < MaxLevel; level++ {
		clamped := level
		if clamped < effectiveFloor {
			clamped = effectiveFloor
		}
		fmt.Fprintf(&b, " WHEN %s <= %d THEN %d", lenExpr, BinWidth(level), clamped)
	}
	fmt.Fprintf(&b, " ELSE %d END) END", MaxLevel)
	return b.String()
}
