package magimix

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"recipescrape/lib/restyutil"
)

type card struct {
	name string
	tag  string
	slug string
}

func cardHtml(c card) string {
	return fmt.Sprintf(`
		<div class="rse_results-recipes">
			<a class="rse_results-recipes_href" href="/recette/%s">
				<img class="rse_results-recipes_picture" src="/img/%s.jpg">
				<div class="rse_results-recipes_type">%s</div>
				<div class="rse_results-recipes_title">%s</div>
			</a>
		</div>`, c.slug, c.slug, c.tag, c.name)
}

func listingHtml(page, last int, cards []card) string {
	var body strings.Builder
	for _, c := range cards {
		body.WriteString(cardHtml(c))
	}
	return fmt.Sprintf(`<html><body>
		<div class="rse_results">%s</div>
		<nav><span class="page-link page-number">%d/%d</span></nav>
	</body></html>`, body.String(), page, last)
}

func detailHtml(author string, timings [4]string, quantity string, ingredients ...string) string {
	var body strings.Builder
	fmt.Fprintf(&body, `<html><body><p><span class="author">Auteur : %s</span></p>`, author)
	labels := [4]string{"Préparation", "Cuisson", "Total", "Repos"}
	for i, t := range timings {
		fmt.Fprintf(&body, `<div class="recipe-preparation-info"><span>%s</span> : %s</div>`, labels[i], t)
	}
	fmt.Fprintf(&body, `<div class="recipe-ingredients-title">  %s  </div>`, quantity)
	for _, block := range ingredients {
		fmt.Fprintf(&body, `<div class="recipe-ingredients-content">%s</div>`, block)
	}
	body.WriteString(`</body></html>`)
	return body.String()
}

// site serves listing pages under /content/23-recettes and recipe pages
// under /recette/<slug>, unknown recipes are 404.
type site struct {
	pages   [][]card
	recipes map[string]string
	// listing pages answering with this status instead of their markup
	failPages map[int]int
}

func (s site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == DefaultListingPath:
		page, err := strconv.Atoi(r.URL.Query().Get(DefaultPageParam))
		if err != nil || page < 1 || page > len(s.pages) {
			http.NotFound(w, r)
			return
		}
		if status, ok := s.failPages[page]; ok {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		fmt.Fprint(w, listingHtml(page, len(s.pages), s.pages[page-1]))
	case strings.HasPrefix(r.URL.Path, "/recette/"):
		contents, ok := s.recipes[strings.TrimPrefix(r.URL.Path, "/recette/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		fmt.Fprint(w, contents)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t testing.TB, s site, workers int) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)

	client, err := NewClient(restyutil.NewClient(restyutil.ClientOptions{}), ClientOptions{
		Origin:  server.URL,
		Workers: workers,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}
