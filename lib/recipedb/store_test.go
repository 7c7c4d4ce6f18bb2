package recipedb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"recipescrape/lib/scrapers/magimix"
	"recipescrape/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (Store, func()) {
	db, cleanup := testutil.SetupDB(t, testutil.DBParams{
		Name:   "lib/recipedb",
		Schema: Schema,
	})
	return NewStore(db), cleanup
}

func TestSaveListing(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	first := []magimix.ListingRecord{
		{RecipeName: "Quiche", Tag: "Plat", ImageURL: "https://x/q.jpg", RecipeURL: "https://x/q", Page: 1},
		{RecipeName: "Crêpes", Tag: "Dessert", ImageURL: "https://x/c.jpg", RecipeURL: "https://x/c", Page: 1},
	}
	err := store.SaveListing(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	stored, err := store.Listing(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, stored); diff != "" {
		t.Fatal(diff)
	}

	second := []magimix.ListingRecord{
		{RecipeName: "Gaspacho", Tag: "Entrée", ImageURL: "https://x/g.jpg", RecipeURL: "https://x/g", Page: 2},
	}
	err = store.SaveListing(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	stored, err = store.Listing(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(second, stored); diff != "" {
		t.Fatal(diff)
	}
}

func TestSaveDetails(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	quiche := magimix.RecipeDetails{
		Author:          "Magimix",
		PreparationTime: "15 min",
		CookTime:        "35 min",
		TotalTime:       "50 min",
		RestTime:        "0 min",
		Quantity:        "Pour 4 personnes",
		Ingredients:     []string{"1 pâte brisée", "3 oeufs"},
	}
	records := []magimix.DetailRecord{
		{RecipeName: "Quiche", RecipeURL: "https://x/q", Details: &quiche},
		{RecipeName: "Disparue", RecipeURL: "https://x/d", Err: errors.New("http 404")},
	}
	err := store.SaveDetails(ctx, records)
	if err != nil {
		t.Fatal(err)
	}

	stored, err := store.Details(ctx)
	if err != nil {
		t.Fatal(err)
	}
	expected := []StoredDetail{
		{RecipeName: "Quiche", RecipeURL: "https://x/q", Found: true, Details: &quiche},
		{RecipeName: "Disparue", RecipeURL: "https://x/d", Found: false, Error: "http 404"},
	}
	if diff := cmp.Diff(expected, stored); diff != "" {
		t.Fatal(diff)
	}
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage", "recipes.db")

	store, err := Open(ctx, Config{File: path})
	if err != nil {
		t.Fatal(err)
	}
	err = store.SaveListing(ctx, []magimix.ListingRecord{
		{RecipeName: "Quiche", RecipeURL: "https://x/q", Page: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.NoError(t, store.Close())

	store, err = Open(ctx, Config{File: path})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	stored, err := store.Listing(ctx)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, stored, 1)
	require.Equal(t, "Quiche", stored[0].RecipeName)
}

func TestConfig(t *testing.T) {
	require.False(t, Config{}.Enabled())
	require.True(t, Config{File: "recipes.db"}.Enabled())
	require.True(t, Config{Url: "libsql://recipes.turso.io"}.Enabled())

	_, err := Config{}.OpenDB()
	require.Error(t, err)
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// init is idempotent
	require.NoError(t, store.Init(ctx))
	stored, err := store.Listing(ctx)
	require.NoError(t, err)
	require.Empty(t, stored)
}
