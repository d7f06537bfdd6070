package gri

import "regexp"

// identifierPattern is a conservative check for bare SQL identifiers (table
// and index names). Coordinate expressions (rid_expr, beg_expr, end_expr,
// qrid, qbeg, qend) are NOT run through this check: they are allowed to be
// arbitrary SQL expressions and are interpolated verbatim, per §9 "String
// templating risk". This only guards the names gri itself synthesizes
// (generated column names, the index name) and the caller-supplied table
// name that those synthesized names are derived from.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return &SchemaError{Table: name, Msg: kind + " is not a valid bare identifier"}
	}
	return nil
}

// The four generated columns C2 adds to an indexed table (§3).
const (
	colRid = "_gri_rid"
	colBeg = "_gri_beg"
	colLen = "_gri_len"
	colLvl = "_gri_lvl"
)

func indexName(table string) string {
	return "_gri_" + table
}
