// Package gri implements the Genomic Range Index: a binning scheme (C1), a
// schema emitter that adds generated columns and a composite index to a
// rowid table (C2), and a query planner that emits interval-overlap
// subqueries tuned to the observed length distribution of the indexed data
// (C3).
//
// gri never executes DDL or DML beyond the query planner's optional probe
// (§4.3); every other operation is a pure string builder. Callers are
// responsible for running the emitted SQL inside their own transaction.
package gri

import "math/bits"

// MaxLevel is the highest level the binning scheme will assign (§4.1).
const MaxLevel = 15

// binShift is the number of bits a position is shifted right to obtain its
// bin number at level 1 (log2(16)).
const binShift = 4

// Level returns the bin level for an interval of the given length under the
// given floor, following §4.1/§4.2:
//
//	level = max(floor', ceil(log16(length)))   floor' = max(0, floor)
//
// ok is false when length <= 0, mirroring the generated column's NULL
// level for empty or malformed (end < beg) intervals (§9 Open Question a).
func Level(length int64, floor int) (level int, ok bool) {
	if length <= 0 {
		return 0, false
	}

	effectiveFloor := floor
	if effectiveFloor < 0 {
		effectiveFloor = 0
	}

	// ceil(log16(length)) via a closed-form bit shift: the number of
	// hex digits needed to represent length-1, i.e. ceil(bitlen(length-1)/4).
	l := (bits.Len64(uint64(length-1)) + (binShift - 1)) / binShift
	if l < effectiveFloor {
		l = effectiveFloor
	}
	if l > MaxLevel {
		l = MaxLevel
	}
	return l, true
}

// BinWidth returns 16^level, the width of a bin at the given level.
func BinWidth(level int) int64 {
	return int64(1) << uint(binShift*level)
}
