package recipecsv

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"recipescrape/lib/scrapers/magimix"

	"github.com/gocarina/gocsv"
)

type listingRow struct {
	RecipeName string `csv:"recipe_name"`
	Tag        string `csv:"tag"`
	ImageURL   string `csv:"image_url"`
	RecipeURL  string `csv:"recipe_url"`
	Page       string `csv:"page"`
}

type detailRow struct {
	RecipeName      string `csv:"recipe_name"`
	Author          string `csv:"author"`
	PreparationTime string `csv:"preparation_time"`
	CookTime        string `csv:"cook_time"`
	TotalTime       string `csv:"total_time"`
	RestTime        string `csv:"rest_time"`
	Quantity        string `csv:"quantity"`
	Ingredients     string `csv:"ingredients"`
}

var requiredListingColumns = []string{"recipe_name", "recipe_url"}

func createFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	return os.Create(path)
}

func writeRows[T any](path string, rows []T) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	err = gocsv.MarshalFile(&rows, f)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteListing writes the listing table, creating parent directories as needed.
func WriteListing(path string, records []magimix.ListingRecord) error {
	rows := make([]listingRow, len(records))
	for i, r := range records {
		rows[i] = listingRow{
			RecipeName: r.RecipeName,
			Tag:        r.Tag,
			ImageURL:   r.ImageURL,
			RecipeURL:  r.RecipeURL,
			Page:       strconv.Itoa(r.Page),
		}
	}
	return writeRows(path, rows)
}

// EncodeIngredients serializes an ingredient list as a JSON array.
func EncodeIngredients(ingredients []string) (string, error) {
	if ingredients == nil {
		ingredients = []string{}
	}
	out, err := json.Marshal(ingredients)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toDetailRow(r magimix.DetailRecord) (detailRow, error) {
	if !r.Found() {
		return detailRow{
			RecipeName:      r.RecipeName,
			Author:          magimix.NotFound,
			PreparationTime: magimix.NotFound,
			CookTime:        magimix.NotFound,
			TotalTime:       magimix.NotFound,
			RestTime:        magimix.NotFound,
			Quantity:        magimix.NotFound,
			Ingredients:     magimix.NotFound,
		}, nil
	}
	ingredients, err := EncodeIngredients(r.Details.Ingredients)
	if err != nil {
		return detailRow{}, err
	}
	return detailRow{
		RecipeName:      r.RecipeName,
		Author:          r.Details.Author,
		PreparationTime: r.Details.PreparationTime,
		CookTime:        r.Details.CookTime,
		TotalTime:       r.Details.TotalTime,
		RestTime:        r.Details.RestTime,
		Quantity:        r.Details.Quantity,
		Ingredients:     ingredients,
	}, nil
}

// WriteDetails writes the details table, failed records get "Not found" in
// every column but the recipe name.
func WriteDetails(path string, records []magimix.DetailRecord) error {
	rows := make([]detailRow, len(records))
	for i, r := range records {
		row, err := toDetailRow(r)
		if err != nil {
			return fmt.Errorf("recipe %q: %w", r.RecipeName, err)
		}
		rows[i] = row
	}
	return writeRows(path, rows)
}

var utf8Bom = []byte{0xEF, 0xBB, 0xBF}

func decodeListing(contents []byte) ([]magimix.ListingRecord, error) {
	contents = bytes.TrimPrefix(contents, utf8Bom)

	header, err := csv.NewReader(bytes.NewReader(contents)).Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	for _, column := range requiredListingColumns {
		if !slices.Contains(header, column) {
			return nil, fmt.Errorf("missing required column %q", column)
		}
	}

	var rows []listingRow
	err = gocsv.UnmarshalBytes(contents, &rows)
	if err != nil {
		return nil, err
	}

	records := make([]magimix.ListingRecord, len(rows))
	for i, row := range rows {
		page := 0
		if strings.TrimSpace(row.Page) != "" {
			page, err = strconv.Atoi(strings.TrimSpace(row.Page))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid page %q", i+1, row.Page)
			}
		}
		records[i] = magimix.ListingRecord{
			RecipeName: row.RecipeName,
			Tag:        row.Tag,
			ImageURL:   row.ImageURL,
			RecipeURL:  row.RecipeURL,
			Page:       page,
		}
	}
	return records, nil
}

// ReadListing reads a listing table, only the recipe_name and recipe_url
// columns are required.
func ReadListing(path string) ([]magimix.ListingRecord, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := decodeListing(contents)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
