package magimix

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recipescrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// RecipeRef is the part of a listing row needed to scrape its recipe page.
type RecipeRef struct {
	RecipeName string
	RecipeURL  string
}

func labelled(sel *goquery.Selection, what string) (string, error) {
	value, ok := htmlutil.AfterLabel(sel.Text())
	if !ok {
		return "", &ParseError{
			What: what,
			Err:  fmt.Errorf("no label separator in %q", htmlutil.Clean(sel.Text())),
		}
	}
	return value, nil
}

// ParseDetails extracts author, timings, quantity and ingredients from a
// recipe page.
func ParseDetails(doc *goquery.Document, sel Selectors) (RecipeDetails, error) {
	var details RecipeDetails

	author := doc.Find(sel.Author).First()
	if author.Length() == 0 {
		return details, &ParseError{What: "author", Err: errMissingElement}
	}
	value, err := labelled(author, "author")
	if err != nil {
		return details, err
	}
	details.Author = value

	info := doc.Find(sel.PreparationInfo)
	if info.Length() < 4 {
		return details, &ParseError{
			What: "preparation info",
			Err:  fmt.Errorf("expected 4 blocks, found %d", info.Length()),
		}
	}
	timings := []*string{
		&details.PreparationTime,
		&details.CookTime,
		&details.TotalTime,
		&details.RestTime,
	}
	for i, field := range timings {
		value, err := labelled(info.Eq(i), fmt.Sprintf("preparation info %d", i))
		if err != nil {
			return details, err
		}
		*field = value
	}

	quantity := doc.Find(sel.Quantity).First()
	if quantity.Length() == 0 {
		return details, &ParseError{What: "quantity", Err: errMissingElement}
	}
	details.Quantity = htmlutil.Clean(quantity.Text())

	details.Ingredients = []string{}
	doc.Find(sel.Ingredients).Each(func(_ int, block *goquery.Selection) {
		details.Ingredients = append(details.Ingredients, htmlutil.Lines(htmlutil.SelectionText(block))...)
	})

	return details, nil
}

func (c *Client) scrapeRecipe(ctx context.Context, ref RecipeRef) (RecipeDetails, error) {
	if ref.RecipeURL == "" {
		return RecipeDetails{}, &FetchError{Err: fmt.Errorf("recipe has no url")}
	}
	doc, err := c.fetch(ctx, ref.RecipeURL)
	if err != nil {
		return RecipeDetails{}, err
	}
	details, err := ParseDetails(doc, c.selectors)
	if err != nil {
		return RecipeDetails{}, withURL(err, ref.RecipeURL)
	}
	return details, nil
}

// ScrapeDetails scrapes the recipe page of every ref. A recipe that fails to
// scrape becomes a record without details, the returned error is only set
// when ctx is cancelled.
func (c *Client) ScrapeDetails(ctx context.Context, refs []RecipeRef) (DetailResult, error) {
	ctx, span := tracer.Start(ctx, "ScrapeDetails")
	defer span.End()
	span.SetAttributes(attribute.Int("recipes", len(refs)))

	start := time.Now()
	records := make([]DetailRecord, len(refs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.workers)
	for i, ref := range refs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			slog.InfoContext(
				groupCtx, "scraping recipe",
				"name", ref.RecipeName,
				"number", i+1,
				"of", len(refs),
			)

			record := DetailRecord{
				RecipeName: ref.RecipeName,
				RecipeURL:  ref.RecipeURL,
			}
			details, err := c.scrapeRecipe(groupCtx, ref)
			if err != nil {
				// a cancelled run is not a missing recipe
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.WarnContext(groupCtx, "recipe not found", "name", ref.RecipeName, "url", ref.RecipeURL, "err", err)
				record.Err = err
				records[i] = record
				return nil
			}
			record.Details = &details
			records[i] = record
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		span.RecordError(err)
		return DetailResult{}, err
	}

	notFound := 0
	for _, r := range records {
		if !r.Found() {
			notFound++
		}
	}
	recipesScraped.Add(ctx, int64(len(records)-notFound))
	recipesNotFound.Add(ctx, int64(notFound))

	result := DetailResult{
		Records:  records,
		NotFound: notFound,
		Elapsed:  time.Since(start),
	}
	slog.InfoContext(
		ctx, "details scrape done",
		"recipes", len(records),
		"not_found", notFound,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
