package magimix

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultOrigin      = "https://www.magimix.fr"
	DefaultListingPath = "/content/23-recettes"
	DefaultPageParam   = "page"
)

type ClientOptions struct {
	Origin      string
	ListingPath string
	PageParam   string
	Selectors   Selectors
	// fetches run with at most this many in flight, values below 1 mean 1
	Workers int
}

type Client struct {
	http        *resty.Client
	origin      *url.URL
	listingPath string
	pageParam   string
	selectors   Selectors
	workers     int
}

func NewClient(http *resty.Client, opts ClientOptions) (*Client, error) {
	origin := opts.Origin
	if origin == "" {
		origin = DefaultOrigin
	}
	originUrl, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if originUrl.Scheme == "" || originUrl.Host == "" {
		return nil, fmt.Errorf("origin %q is not an absolute url", origin)
	}

	listingPath := opts.ListingPath
	if listingPath == "" {
		listingPath = DefaultListingPath
	}
	pageParam := opts.PageParam
	if pageParam == "" {
		pageParam = DefaultPageParam
	}
	selectors := opts.Selectors
	if selectors == (Selectors{}) {
		selectors = DefaultSelectors
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Client{
		http:        http,
		origin:      originUrl,
		listingPath: listingPath,
		pageParam:   pageParam,
		selectors:   selectors,
		workers:     workers,
	}, nil
}

// ListingPageURL returns the absolute url of the given 1-indexed listing page.
func (c *Client) ListingPageURL(page int) string {
	link := c.origin.ResolveReference(&url.URL{Path: c.listingPath})
	query := link.Query()
	query.Set(c.pageParam, strconv.Itoa(page))
	link.RawQuery = query.Encode()
	return link.String()
}

func (c *Client) fetch(ctx context.Context, link string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "fetch", trace.WithAttributes(
		attribute.String("url", link),
	))
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &FetchError{URL: link, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		span.SetStatus(codes.Error, "unexpected status")
		return nil, &FetchError{URL: link, StatusCode: res.StatusCode()}
	}
	pagesFetched.Add(ctx, 1)

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid html")
		return nil, &ParseError{URL: link, What: "html", Err: err}
	}
	return doc, nil
}
