package recipedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) Enabled() bool {
	return config.File != "" || config.Url != ""
}

// OpenDB opens the remote libsql database when a url is configured and the
// local sqlite file otherwise.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		var opts []libsql.Option
		if config.AuthToken != "" {
			opts = append(opts, libsql.WithAuthToken(config.AuthToken))
		}
		connector, err := libsql.NewConnector(config.Url, opts...)
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	}

	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	if config.File != ":memory:" {
		err := os.MkdirAll(filepath.Dir(config.File), 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// sqlite only supports a single writer
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
