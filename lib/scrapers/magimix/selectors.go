package magimix

// Selectors are the css selectors used to locate every scraped field.
type Selectors struct {
	PageCount string `json:"page_count"`

	CardTitle string `json:"card_title"`
	CardTag   string `json:"card_tag"`
	CardImage string `json:"card_image"`
	CardLink  string `json:"card_link"`

	Author          string `json:"author"`
	PreparationInfo string `json:"preparation_info"`
	Quantity        string `json:"quantity"`
	Ingredients     string `json:"ingredients"`
}

var DefaultSelectors = Selectors{
	PageCount: "span.page-link.page-number",

	CardTitle: "div.rse_results-recipes_title",
	CardTag:   "div.rse_results-recipes_type",
	CardImage: "img.rse_results-recipes_picture",
	CardLink:  "a.rse_results-recipes_href",

	Author:          "span.author",
	PreparationInfo: "div.recipe-preparation-info",
	Quantity:        "div.recipe-ingredients-title",
	Ingredients:     "div.recipe-ingredients-content",
}
