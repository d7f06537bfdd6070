package refseq

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestEndToEnd_Scenario6 is §8 end-to-end scenario 6.
func TestEndToEnd_Scenario6(t *testing.T) {
	db := openTestDB(t)

	stmts, err := EmitPutAssembly("GRCh38_no_alt_analysis_set", "")
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	byName, err := GetRefseqsByName(context.Background(), db, "", "")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(byName), 24)

	for _, name := range []string{"chr1", "chr22", "chrX", "chrY", "chrM"} {
		r, ok := byName[name]
		assert.True(t, ok, "missing %s", name)
		assert.Equal(t, name, r.Name)
		assert.Greater(t, r.Length, int64(0))
	}
	assert.Equal(t, int64(248956422), byName["chr1"].Length)
	assert.Equal(t, int64(16569), byName["chrM"].Length)
}

func TestEmitPutAssembly_UnknownName(t *testing.T) {
	_, err := EmitPutAssembly("not_a_real_assembly", "")
	require.Error(t, err)
}

// TestRoundTrip_PutThenGet is the §8 "round-trip on refseq catalog" property.
func TestRoundTrip_PutThenGet(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(createTableSQL(t))
	require.NoError(t, err)

	metaJSON := `{"source":"test","confidence":0.9}`
	stmt, err := EmitPutRefseq("chr1_patch", 12345, "myAssembly", "refget123", metaJSON, -1, "")
	require.NoError(t, err)
	_, err = db.Exec(stmt)
	require.NoError(t, err)

	byName, err := GetRefseqsByName(context.Background(), db, "", "")
	require.NoError(t, err)

	r, ok := byName["chr1_patch"]
	require.True(t, ok)
	assert.Equal(t, int64(12345), r.Length)
	assert.Equal(t, "myAssembly", r.Assembly)
	assert.Equal(t, "refget123", r.RefgetID)
	assert.JSONEq(t, metaJSON, r.MetaJSON)
}

func TestEmitPutRefseq_RejectsInvalidJSON(t *testing.T) {
	_, err := EmitPutRefseq("chrZ", 100, "", "", "{not json", -1, "")
	require.Error(t, err)
}

func TestEmitPutRefseq_ExplicitRid(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, exec(db, createTableSQL(t)))

	stmt, err := EmitPutRefseq("chrZ", 1, "", "", "", 99, "")
	require.NoError(t, err)
	require.NoError(t, exec(db, stmt))

	byRid, err := GetRefseqsByRid(context.Background(), db, "", "")
	require.NoError(t, err)
	r, ok := byRid[99]
	require.True(t, ok)
	assert.Equal(t, "chrZ", r.Name)
	assert.Equal(t, "{}", r.MetaJSON)
}

func TestEmitPutAssembly_RejectsDuplicateNameWithNoAssembly(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, exec(db, createTableSQL(t)))
	require.NoError(t, exec(db, `CREATE UNIQUE INDEX _gri_refseq_name_global ON _gri_refseq(gri_refseq_name) WHERE gri_assembly IS NULL`))
	require.NoError(t, exec(db, `CREATE UNIQUE INDEX _gri_refseq_name_assembly ON _gri_refseq(gri_refseq_name, gri_assembly) WHERE gri_assembly IS NOT NULL`))

	stmt, err := EmitPutRefseq("chr1", 100, "", "", "", -1, "")
	require.NoError(t, err)
	require.NoError(t, exec(db, stmt))

	stmt, err = EmitPutRefseq("chr1", 200, "", "", "", -1, "")
	require.NoError(t, err)
	assert.Error(t, exec(db, stmt), "two assembly-less rows sharing a name must violate the global uniqueness index")
}

func TestEmitPutAssembly_AllowsSameNameAcrossDifferentAssemblies(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, exec(db, createTableSQL(t)))
	require.NoError(t, exec(db, `CREATE UNIQUE INDEX _gri_refseq_name_global ON _gri_refseq(gri_refseq_name) WHERE gri_assembly IS NULL`))
	require.NoError(t, exec(db, `CREATE UNIQUE INDEX _gri_refseq_name_assembly ON _gri_refseq(gri_refseq_name, gri_assembly) WHERE gri_assembly IS NOT NULL`))

	stmt, err := EmitPutRefseq("chr1", 100, "assemblyA", "", "", -1, "")
	require.NoError(t, err)
	require.NoError(t, exec(db, stmt))

	stmt, err = EmitPutRefseq("chr1", 100, "assemblyB", "", "", -1, "")
	require.NoError(t, err)
	assert.NoError(t, exec(db, stmt), "the same name under two different assemblies must not conflict")
}

func TestEmitPutAssembly_RejectsDuplicateNameWithinSameAssembly(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, exec(db, createTableSQL(t)))
	require.NoError(t, exec(db, `CREATE UNIQUE INDEX _gri_refseq_name_global ON _gri_refseq(gri_refseq_name) WHERE gri_assembly IS NULL`))
	require.NoError(t, exec(db, `CREATE UNIQUE INDEX _gri_refseq_name_assembly ON _gri_refseq(gri_refseq_name, gri_assembly) WHERE gri_assembly IS NOT NULL`))

	stmt, err := EmitPutRefseq("chr1", 100, "assemblyA", "", "", -1, "")
	require.NoError(t, err)
	require.NoError(t, exec(db, stmt))

	stmt, err = EmitPutRefseq("chr1", 200, "assemblyA", "", "", -1, "")
	require.NoError(t, err)
	assert.Error(t, exec(db, stmt), "duplicate name within the same assembly must violate the scoped uniqueness index")
}

func TestListBundledAssemblies_Deterministic(t *testing.T) {
	a := ListBundledAssemblies()
	b := ListBundledAssemblies()
	assert.Equal(t, a, b)
	assert.Contains(t, a, "GRCh38_no_alt_analysis_set")
}

func exec(db *sql.DB, stmt string) error {
	_, err := db.Exec(stmt)
	return err
}

func createTableSQL(t *testing.T) string {
	t.Helper()
	return `CREATE TABLE _gri_refseq (
		_gri_rid INTEGER PRIMARY KEY,
		gri_refseq_name TEXT NOT NULL,
		gri_refseq_length INTEGER NOT NULL,
		gri_assembly TEXT,
		gri_refget_id TEXT,
		gri_refseq_meta_json TEXT DEFAULT '{}'
	)`
}
