package magimix

import "time"

// NotFound is written in place of every detail column of a recipe whose
// page could not be scraped.
const NotFound = "Not found"

// ListingRecord is one recipe card found on a listing page.
type ListingRecord struct {
	RecipeName string
	Tag        string
	ImageURL   string
	RecipeURL  string
	// 1-indexed listing page the card was found on
	Page int
}

type ListingResult struct {
	LastPage int
	Records  []ListingRecord
	Elapsed  time.Duration
}

type RecipeDetails struct {
	Author          string
	PreparationTime string
	CookTime        string
	TotalTime       string
	RestTime        string
	Quantity        string
	Ingredients     []string
}

// DetailRecord is the outcome of scraping one recipe page, Details is nil
// when extraction failed and Err holds the reason.
type DetailRecord struct {
	RecipeName string
	RecipeURL  string
	Details    *RecipeDetails
	Err        error
}

func (r DetailRecord) Found() bool {
	return r.Details != nil
}

type DetailResult struct {
	Records  []DetailRecord
	NotFound int
	Elapsed  time.Duration
}

func (r ListingRecord) Ref() RecipeRef {
	return RecipeRef{RecipeName: r.RecipeName, RecipeURL: r.RecipeURL}
}
