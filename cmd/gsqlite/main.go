// Command gsqlite is a small CLI wiring the genomicsqlite, gri, and refseq
// packages together for interactive use, following the same
// parseOptions/main split and go-flags option parsing as the teacher's
// cmd/sqlite3def/sqlite3def.go.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/genomicsqlite/gogenomicsqlite/genomicsqlite"
	"github.com/genomicsqlite/gogenomicsqlite/gri"
	"github.com/genomicsqlite/gogenomicsqlite/refseq"
	"github.com/genomicsqlite/gogenomicsqlite/util"
)

type options struct {
	Config string `long:"config" description:"YAML file of connection config (page_cache_MiB, threads, zstd_level, ...)"`

	Index struct {
		Positional struct {
			Database string `positional-arg-name:"database"`
			Table    string `positional-arg-name:"table"`
		} `positional-args:"yes" required:"yes"`
		Rid   string `long:"rid" default:"rid" description:"rid column/expression"`
		Beg   string `long:"beg" default:"beg" description:"begin column/expression"`
		End   string `long:"end" default:"end" description:"end column/expression"`
		Floor int    `long:"floor" default:"-1" description:"GRI floor parameter"`
	} `command:"index" description:"Add a GRI to an existing table"`

	Query struct {
		Positional struct {
			Database string `positional-arg-name:"database"`
			Table    string `positional-arg-name:"table"`
		} `positional-args:"yes" required:"yes"`
		Rid     string `long:"rid" description:"query rid expression (default ?1)"`
		Beg     string `long:"beg" description:"query beg expression (default ?2)"`
		End     string `long:"end" description:"query end expression (default ?3)"`
		Ceiling int    `long:"ceiling" default:"-1" description:"explicit ceiling, skips probing"`
		Floor   int    `long:"floor" default:"-1" description:"explicit floor"`
	} `command:"query" description:"Emit a range-rowids subquery, probing the index unless --ceiling is given"`

	LoadAssembly struct {
		Positional struct {
			Database string `positional-arg-name:"database"`
			Assembly string `positional-arg-name:"assembly"`
		} `positional-args:"yes" required:"yes"`
	} `command:"load-assembly" description:"Load a bundled reference assembly"`

	VacuumInto struct {
		Positional struct {
			Database string `positional-arg-name:"database"`
			Dest     string `positional-arg-name:"dest"`
		} `positional-args:"yes" required:"yes"`
	} `command:"vacuum-into" description:"Emit VACUUM INTO for a compressed destination"`
}

func main() {
	util.InitSlog()

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Command.Name = "gsqlite"

	args, err := parser.Parse()
	if err != nil {
		os.Exit(1)
	}
	_ = args

	ctx := context.Background()

	switch parser.Active.Name {
	case "index":
		runIndex(ctx, opts)
	case "query":
		runQuery(ctx, opts)
	case "load-assembly":
		runLoadAssembly(ctx, opts)
	case "vacuum-into":
		runVacuumInto(opts)
	default:
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
}

// loadConfig reads opts.Config, if given, into the map-shaped form Open
// expects; the teacher's sqlite3def/mysqldef commands take their
// generator config the same way, as an optional YAML file flag.
func loadConfig(opts options) map[string]interface{} {
	if opts.Config == "" {
		return nil
	}
	cfg, err := genomicsqlite.ParseConfigFile(opts.Config)
	if err != nil {
		log.Fatal(err)
	}
	return cfg.ToMap()
}

func runIndex(ctx context.Context, opts options) {
	p := opts.Index.Positional
	db, err := genomicsqlite.Open(ctx, p.Database, genomicsqlite.FlagReadWrite, loadConfig(opts))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	stmts, err := gri.EmitCreateGRI(p.Table, opts.Index.Rid, opts.Index.Beg, opts.Index.End, opts.Index.Floor)
	if err != nil {
		log.Fatal(err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, stmt := range stmts {
		fmt.Println(stmt + ";")
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			log.Fatal(err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Fatal(err)
	}
}

func runQuery(ctx context.Context, opts options) {
	p := opts.Query.Positional
	db, err := genomicsqlite.Open(ctx, p.Database, genomicsqlite.FlagReadOnly, loadConfig(opts))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if opts.Query.Ceiling >= 0 {
		if err := gri.ValidateCeiling(ctx, db.DB, p.Table, opts.Query.Ceiling); err != nil {
			log.Fatal(err)
		}
		sql, err := gri.EmitRangeRowids(p.Table, opts.Query.Rid, opts.Query.Beg, opts.Query.End, opts.Query.Ceiling, opts.Query.Floor)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(sql)
		return
	}

	result, err := gri.EmitRangeRowidsProbed(ctx, db.DB, p.Table, opts.Query.Rid, opts.Query.Beg, opts.Query.End, opts.Query.Floor)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result.SQL)
}

func runLoadAssembly(ctx context.Context, opts options) {
	p := opts.LoadAssembly.Positional
	db, err := genomicsqlite.Open(ctx, p.Database, genomicsqlite.FlagReadWrite|genomicsqlite.FlagCreate, loadConfig(opts))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	stmts, err := refseq.EmitPutAssembly(p.Assembly, "")
	if err != nil {
		log.Fatal(err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			log.Fatal(err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Fatal(err)
	}
}

func runVacuumInto(opts options) {
	p := opts.VacuumInto.Positional
	sql, err := genomicsqlite.EmitVacuumIntoSQL(p.Dest, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(sql)
}
