package magimix

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"recipescrape/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var pageCountRegex = regexp.MustCompile(`^\s*(\d+)\s*/\s*(\d+)\s*$`)

// MaxPages bounds the page count a listing indicator may announce.
const MaxPages = 10000

// ParsePageCount reads the "N/M" pagination indicator of a listing page and
// returns M.
func ParsePageCount(doc *goquery.Document, sel Selectors) (int, error) {
	indicator := doc.Find(sel.PageCount).First()
	if indicator.Length() == 0 {
		return 0, &ParseError{What: "page count", Err: errMissingElement}
	}
	text := htmlutil.Clean(indicator.Text())
	groups := pageCountRegex.FindStringSubmatch(text)
	if groups == nil {
		return 0, &ParseError{What: "page count", Err: fmt.Errorf("unexpected indicator %q", text)}
	}
	last, err := strconv.Atoi(groups[2])
	if err != nil {
		return 0, &ParseError{What: "page count", Err: err}
	}
	if last < 1 {
		return 0, &ParseError{What: "page count", Err: fmt.Errorf("invalid page count %d", last)}
	}
	if last > MaxPages {
		return 0, &ParseError{What: "page count", Err: fmt.Errorf("page count %d exceeds %d", last, MaxPages)}
	}
	return last, nil
}

// cardOf widens a title element to the largest ancestor that contains no
// other title.
func cardOf(title *goquery.Selection, titleSel string) *goquery.Selection {
	card := title
	for parent := title.Parent(); parent.Length() > 0; parent = parent.Parent() {
		if parent.Find(titleSel).Length() > 1 {
			break
		}
		card = parent
	}
	return card
}

func findInCard(card *goquery.Selection, sel string) *goquery.Selection {
	if card.Is(sel) {
		return card
	}
	return card.Find(sel).First()
}

func imageSource(img *goquery.Selection) string {
	src := img.AttrOr("src", "")
	if src == "" {
		// lazy loaded pictures only carry the real source in data-src
		src = img.AttrOr("data-src", "")
	}
	return src
}

func newListingRecord(origin *url.URL, page, i int, title, tag, img, link *goquery.Selection) (ListingRecord, bool) {
	imageUrl, err := htmlutil.AbsoluteURL(origin, imageSource(img))
	if err != nil {
		slog.Warn("skipping recipe card with invalid image url", "page", page, "card", i, "err", err)
		return ListingRecord{}, false
	}
	recipeUrl, err := htmlutil.AbsoluteURL(origin, link.AttrOr("href", ""))
	if err != nil {
		slog.Warn("skipping recipe card with invalid recipe url", "page", page, "card", i, "err", err)
		return ListingRecord{}, false
	}
	return ListingRecord{
		RecipeName: htmlutil.Clean(title.Text()),
		Tag:        htmlutil.Clean(tag.Text()),
		ImageURL:   imageUrl,
		RecipeURL:  recipeUrl,
		Page:       page,
	}, true
}

// parseByPosition pairs the i-th title with the i-th tag, image and link of
// the page, stopping at the shortest of the four lists.
func parseByPosition(doc *goquery.Document, origin *url.URL, sel Selectors, page int) []ListingRecord {
	titles := doc.Find(sel.CardTitle)
	tags := doc.Find(sel.CardTag)
	imgs := doc.Find(sel.CardImage)
	links := doc.Find(sel.CardLink)
	n := min(titles.Length(), tags.Length(), imgs.Length(), links.Length())

	var records []ListingRecord
	for i := 0; i < n; i++ {
		record, ok := newListingRecord(origin, page, i, titles.Eq(i), tags.Eq(i), imgs.Eq(i), links.Eq(i))
		if ok {
			records = append(records, record)
		}
	}
	return records
}

// ParseListingPage extracts every recipe card of a listing page. Cards that
// lack one of their fields are skipped with a warning. When no card on the
// page is complete the fields are paired by position instead.
func ParseListingPage(doc *goquery.Document, origin *url.URL, sel Selectors, page int) []ListingRecord {
	var records []ListingRecord
	titles := doc.Find(sel.CardTitle)
	titles.Each(func(i int, title *goquery.Selection) {
		card := cardOf(title, sel.CardTitle)

		tag := findInCard(card, sel.CardTag)
		img := findInCard(card, sel.CardImage)
		link := findInCard(card, sel.CardLink)
		if tag.Length() == 0 || img.Length() == 0 || link.Length() == 0 {
			slog.Warn(
				"skipping incomplete recipe card",
				"page", page,
				"card", i,
				"has_tag", tag.Length() > 0,
				"has_image", img.Length() > 0,
				"has_link", link.Length() > 0,
			)
			return
		}

		record, ok := newListingRecord(origin, page, i, title, tag, img, link)
		if ok {
			records = append(records, record)
		}
	})

	if len(records) == 0 && titles.Length() > 0 {
		slog.Warn("no complete recipe card, pairing fields by position", "page", page, "titles", titles.Length())
		records = parseByPosition(doc, origin, sel, page)
	}
	return records
}

// ScrapeListing walks every listing page and returns the recipe cards in
// page order. The first fetch or parse error aborts the whole crawl.
func (c *Client) ScrapeListing(ctx context.Context) (ListingResult, error) {
	ctx, span := tracer.Start(ctx, "ScrapeListing")
	defer span.End()

	start := time.Now()

	firstUrl := c.ListingPageURL(1)
	first, err := c.fetch(ctx, firstUrl)
	if err != nil {
		return ListingResult{}, fmt.Errorf("listing page 1: %w", err)
	}
	lastPage, err := ParsePageCount(first, c.selectors)
	if err != nil {
		return ListingResult{}, fmt.Errorf("listing page 1: %w", withURL(err, firstUrl))
	}
	span.SetAttributes(attribute.Int("pages", lastPage))
	slog.InfoContext(ctx, "found listing pages", "pages", lastPage)

	pages := make([][]ListingRecord, lastPage)
	pages[0] = ParseListingPage(first, c.origin, c.selectors, 1)
	slog.InfoContext(ctx, "scraped listing page", "page", 1, "of", lastPage, "recipes", len(pages[0]))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.workers)
	for page := 2; page <= lastPage; page++ {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			link := c.ListingPageURL(page)
			doc, err := c.fetch(groupCtx, link)
			if err != nil {
				return fmt.Errorf("listing page %d: %w", page, err)
			}
			pages[page-1] = ParseListingPage(doc, c.origin, c.selectors, page)
			slog.InfoContext(
				groupCtx, "scraped listing page",
				"page", page,
				"of", lastPage,
				"recipes", len(pages[page-1]),
			)
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		span.RecordError(err)
		return ListingResult{}, err
	}

	var records []ListingRecord
	for _, p := range pages {
		records = append(records, p...)
	}
	recipesScraped.Add(ctx, int64(len(records)))

	result := ListingResult{
		LastPage: lastPage,
		Records:  records,
		Elapsed:  time.Since(start),
	}
	slog.InfoContext(
		ctx, "listing scrape done",
		"pages", lastPage,
		"recipes", len(records),
		"elapsed", result.Elapsed,
	)
	return result, nil
}
