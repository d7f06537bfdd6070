package genomicsqlite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitVacuumInto_Statements(t *testing.T) {
	stmts, err := EmitVacuumInto("/data/out.db", map[string]interface{}{
		"inner_page_KiB": 8,
		"outer_page_KiB": 64,
		"zstd_level":     19,
	})
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Equal(t, "PRAGMA page_size = 8192", stmts[0])
	assert.Contains(t, stmts[1], "VACUUM INTO")
	assert.Contains(t, stmts[1], "vfs=zstd")
	assert.Contains(t, stmts[1], "outer_page_size=65536")
	assert.Contains(t, stmts[1], "level=19")
}

func TestEmitVacuumInto_PropagatesConfigErrors(t *testing.T) {
	_, err := EmitVacuumInto("/data/out.db", map[string]interface{}{"zstd_level": 100})
	require.Error(t, err)
}

func TestEmitVacuumIntoSQL_JoinsStatements(t *testing.T) {
	sql, err := EmitVacuumIntoSQL("/data/out.db", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(sql, ";"))
}
