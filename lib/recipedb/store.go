package recipedb

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"recipescrape/lib/scrapers/magimix"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed schema.sql
var Schema string

var tracer = otel.Tracer("recipescrape.lib.recipedb")

type Store struct {
	db *sql.DB
}

// Open opens the configured database and makes sure its tables exist.
func Open(ctx context.Context, config Config) (Store, error) {
	db, err := config.OpenDB()
	if err != nil {
		return Store{}, err
	}
	store := NewStore(db)
	err = store.Init(ctx)
	if err != nil {
		db.Close()
		return Store{}, err
	}
	return store, nil
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Init creates the tables, statements are sent one by one since remote
// libsql connections do not accept multiple statements in one call.
func (s Store) Init(ctx context.Context) error {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := s.db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s Store) replace(ctx context.Context, table string, rows int, insert func(tx *sql.Tx) error) error {
	ctx, span := tracer.Start(ctx, "replace", trace.WithAttributes(
		attribute.String("table", table),
		attribute.Int("rows", rows),
	))
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "delete from "+table)
	if err != nil {
		return err
	}
	err = insert(tx)
	if err != nil {
		span.RecordError(err)
		return err
	}
	err = tx.Commit()
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "replaced table contents", "table", table, "rows", rows)
	return nil
}

// SaveListing replaces the contents of the listing table with records.
func (s Store) SaveListing(ctx context.Context, records []magimix.ListingRecord) error {
	return s.replace(ctx, "listing", len(records), func(tx *sql.Tx) error {
		for i, r := range records {
			_, err := tx.ExecContext(
				ctx,
				`insert into listing(position, recipe_name, tag, image_url, recipe_url, page)
				values (?, ?, ?, ?, ?, ?)`,
				i, r.RecipeName, r.Tag, r.ImageURL, r.RecipeURL, r.Page,
			)
			if err != nil {
				return fmt.Errorf("insert listing %q: %w", r.RecipeName, err)
			}
		}
		return nil
	})
}

// SaveDetails replaces the contents of the details table with records,
// failed records are kept with found = 0 and their error.
func (s Store) SaveDetails(ctx context.Context, records []magimix.DetailRecord) error {
	return s.replace(ctx, "details", len(records), func(tx *sql.Tx) error {
		for i, r := range records {
			var err error
			if !r.Found() {
				var reason sql.NullString
				if r.Err != nil {
					reason = sql.NullString{String: r.Err.Error(), Valid: true}
				}
				_, err = tx.ExecContext(
					ctx,
					`insert into details(position, recipe_name, recipe_url, found, error)
					values (?, ?, ?, 0, ?)`,
					i, r.RecipeName, r.RecipeURL, reason,
				)
			} else {
				ingredients := r.Details.Ingredients
				if ingredients == nil {
					ingredients = []string{}
				}
				encoded, merr := json.Marshal(ingredients)
				if merr != nil {
					return merr
				}
				_, err = tx.ExecContext(
					ctx,
					`insert into details(
						position, recipe_name, recipe_url, found,
						author, preparation_time, cook_time, total_time, rest_time,
						quantity, ingredients
					) values (?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?)`,
					i, r.RecipeName, r.RecipeURL,
					r.Details.Author,
					r.Details.PreparationTime,
					r.Details.CookTime,
					r.Details.TotalTime,
					r.Details.RestTime,
					r.Details.Quantity,
					string(encoded),
				)
			}
			if err != nil {
				return fmt.Errorf("insert details %q: %w", r.RecipeName, err)
			}
		}
		return nil
	})
}

// Listing returns the stored listing records in their original order.
func (s Store) Listing(ctx context.Context) ([]magimix.ListingRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select recipe_name, tag, image_url, recipe_url, page from listing order by position",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []magimix.ListingRecord
	for rows.Next() {
		var r magimix.ListingRecord
		err := rows.Scan(&r.RecipeName, &r.Tag, &r.ImageURL, &r.RecipeURL, &r.Page)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StoredDetail is a row of the details table.
type StoredDetail struct {
	RecipeName string
	RecipeURL  string
	Found      bool
	Details    *magimix.RecipeDetails
	Error      string
}

// Details returns the stored detail rows in their original order.
func (s Store) Details(ctx context.Context) ([]StoredDetail, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select
			recipe_name, recipe_url, found,
			author, preparation_time, cook_time, total_time, rest_time,
			quantity, ingredients, error
		from details order by position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredDetail
	for rows.Next() {
		var d StoredDetail
		var author, prep, cook, total, rest, quantity, ingredients, reason sql.NullString
		err := rows.Scan(
			&d.RecipeName, &d.RecipeURL, &d.Found,
			&author, &prep, &cook, &total, &rest,
			&quantity, &ingredients, &reason,
		)
		if err != nil {
			return nil, err
		}
		d.Error = reason.String
		if d.Found {
			details := magimix.RecipeDetails{
				Author:          author.String,
				PreparationTime: prep.String,
				CookTime:        cook.String,
				TotalTime:       total.String,
				RestTime:        rest.String,
				Quantity:        quantity.String,
			}
			err = json.Unmarshal([]byte(ingredients.String), &details.Ingredients)
			if err != nil {
				return nil, fmt.Errorf("decode ingredients of %q: %w", d.RecipeName, err)
			}
			d.Details = &details
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
