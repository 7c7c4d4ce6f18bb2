package magimix

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("recipescrape.lib.scrapers.magimix")
var meter = otel.Meter("recipescrape.lib.scrapers.magimix")

var pagesFetched, _ = meter.Int64Counter("recipescrape.pages_fetched")
var recipesScraped, _ = meter.Int64Counter("recipescrape.recipes_scraped")
var recipesNotFound, _ = meter.Int64Counter("recipescrape.recipes_not_found")
