package gri

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// DefaultQRid, DefaultQBeg, and DefaultQEnd are the expressions
// EmitRangeRowids and EmitRangeRowidsProbed use when the caller leaves the
// query coordinate expressions empty (§4.3 "default ?1, ?2, ?3").
const (
	DefaultQRid = "?1"
	DefaultQBeg = "?2"
	DefaultQEnd = "?3"
)

// PlannerResult is the output of EmitRangeRowidsProbed: the emitted SQL plus
// the observed side-information the probe discovered, so callers can cache
// the SQL and know when it needs to be regenerated (§9 "Probe coupling").
type PlannerResult struct {
	SQL     string
	Floor   int
	Ceiling int
	// Levels is the exact set of populated _gri_lvl values the probe found,
	// baked into SQL's UNION ALL branches in ascending order.
	Levels []int
}

func coalesce(expr, def string) string {
	if expr == "" {
		return def
	}
	return expr
}

// EmitRangeRowids implements C3's fallback mode (§4.3): the caller supplies
// an explicit, non-negative ceiling, so the emitter never touches the
// database and instead emits the full numeric level range [floor', ceiling].
// This trades a few possibly-empty UNION ALL branches for SQL that stays
// correct under any future write whose length stays within ceiling.
//
// qrid, qbeg, and qend are arbitrary SQL expressions, pasted verbatim; an
// empty string uses the positional-parameter defaults ?1, ?2, ?3.
func EmitRangeRowids(table, qrid, qbeg, qend string, ceiling, floor int) (string, error) {
	if err := validateIdentifier("table", table); err != nil {
		return "", err
	}
	if ceiling < 0 {
		return "", &ConfigError{Key: "ceiling", Value: ceiling, Msg: "must be supplied (>= 0) in non-probing emission; use EmitRangeRowidsProbed otherwise"}
	}
	if ceiling > MaxLevel {
		return "", &ConfigError{Key: "ceiling", Value: ceiling, Msg: fmt.Sprintf("must be <= %d", MaxLevel)}
	}
	effectiveFloor := floor
	if effectiveFloor < 0 {
		effectiveFloor = 0
	}
	if effectiveFloor > ceiling {
		return "", &ConfigError{Key: "floor", Value: floor, Msg: fmt.Sprintf("must be <= ceiling %d", ceiling)}
	}

	levels := make([]int, 0, ceiling-effectiveFloor+1)
	for l := effectiveFloor; l <= ceiling; l++ {
		levels = append(levels, l)
	}
	return buildUnionQuery(table, coalesce(qrid, DefaultQRid), coalesce(qbeg, DefaultQBeg), coalesce(qend, DefaultQEnd), levels), nil
}

// EmitRangeRowidsProbed implements C3's probing mode (§4.3): it issues a
// single indexed DISTINCT query against the live connection to discover
// which _gri_lvl values are actually populated, then bakes that fixed set
// into the emitted SQL's UNION ALL branches. The probe is not atomic with
// the SQL's later execution (§9 Open Question b): writes that extend the
// level range after probing are invisible to the emitted SQL until the
// caller regenerates it. Callers touching a live-writer database should
// prefer EmitRangeRowids with an explicit ceiling instead.
func EmitRangeRowidsProbed(ctx context.Context, db *sql.DB, table, qrid, qbeg, qend string, floor int) (PlannerResult, error) {
	if err := validateIdentifier("table", table); err != nil {
		return PlannerResult{}, err
	}

	levels, err := probeLevels(ctx, db, table, floor)
	if err != nil {
		return PlannerResult{}, &ProbeError{Table: table, Err: err}
	}

	result := PlannerResult{Levels: levels}
	if len(levels) == 0 {
		result.SQL = fmt.Sprintf("(SELECT _rowid_ FROM %s WHERE 0)", table)
		return result, nil
	}

	result.Floor = levels[0]
	result.Ceiling = levels[len(levels)-1]
	result.SQL = buildUnionQuery(table, coalesce(qrid, DefaultQRid), coalesce(qbeg, DefaultQBeg), coalesce(qend, DefaultQEnd), levels)
	return result, nil
}

// ValidateCeiling probes table's live maximum populated level and returns an
// IntegrityError if it exceeds ceiling (§7): a caller holding a ceiling
// cached from an earlier probe (§9 "Probe coupling") can run this cheaply
// before trusting EmitRangeRowids' fallback SQL against a table that may
// have grown since.
func ValidateCeiling(ctx context.Context, db *sql.DB, table string, ceiling int) error {
	if err := validateIdentifier("table", table); err != nil {
		return err
	}

	levels, err := probeLevels(ctx, db, table, -1)
	if err != nil {
		return &ProbeError{Table: table, Err: err}
	}
	if len(levels) == 0 {
		return nil
	}

	observedMax := levels[len(levels)-1]
	if observedMax > ceiling {
		return &IntegrityError{Table: table, Ceiling: ceiling, ObservedMax: observedMax}
	}
	return nil
}

// probeLevels runs the single-scan probe described in §4.3: a SELECT
// DISTINCT over the indexed _gri_lvl column, exploiting the composite
// index so the probe never degrades to a table scan.
func probeLevels(ctx context.Context, db *sql.DB, table string, floor int) ([]int, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s INDEXED BY %s WHERE %s IS NOT NULL",
		colLvl, table, indexName(table), colLvl,
	)
	if floor >= 0 {
		query += fmt.Sprintf(" AND %s >= %d", colLvl, floor)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []int
	for rows.Next() {
		var l int
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Ints(levels)
	return levels, nil
}

// buildUnionQuery assembles the UNION ALL of one range-scan SELECT per
// level (§4.3), ordering the combined result by rowid unconditionally.
func buildUnionQuery(table, qrid, qbeg, qend string, levels []int) string {
	branches := make([]string, len(levels))
	for i, level := range levels {
		branches[i] = levelBranch(table, qrid, qbeg, qend, level)
	}
	return "(" + strings.Join(branches, " UNION ALL ") + " ORDER BY _rowid_)"
}

// levelBranch emits the per-level SELECT described in §4.3: a range scan on
// the composite index, narrowed to rows whose rid matches and whose length
// class is exactly this level, with the two-sided overlap test on beg/end.
func levelBranch(table, qrid, qbeg, qend string, level int) string {
	lowerBound := fmt.Sprintf("(%s) - %d", qbeg, BinWidth(level))
	return fmt.Sprintf(
		"SELECT _rowid_ FROM %s INDEXED BY %s WHERE %s = %s AND %s = %d AND %s >= %s AND %s < (%s) AND %s + %s >= (%s)",
		table, indexName(table),
		qrid, colRid,
		colLvl, level,
		colBeg, lowerBound,
		colBeg, qend,
		colBeg, colLen, qbeg,
	)
}
