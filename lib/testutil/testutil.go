package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"recipescrape/lib/telemetry"

	_ "modernc.org/sqlite"
)

type DBParams struct {
	Name string
	// if unspecified, the db is left empty
	Schema string
	// if unspecified, it will use `:memory:`
	Path string
}

// SetupDB sets up telemetry for the test named `params.Name` and opens a
// sqlite database with `params.Schema` applied.
func SetupDB(t testing.TB, params DBParams) (*sql.DB, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	dbpath := ":memory:"
	if params.Path != "" {
		dbpath = params.Path
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is its own database
	sqlite.SetMaxOpenConns(1)

	if params.Schema != "" {
		_, err = sqlite.Exec(params.Schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}

	return sqlite, func() {
		sqlite.Close()
		cleanup()
	}
}
