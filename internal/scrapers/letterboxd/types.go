package letterboxd

// UnknownTitle is used when no title could be extracted from a grid item.
const UnknownTitle = "Unknown"

// Film is a single entry of a user's film grid.
//
// Poster is always nil when returned from the scraper, it is only ever
// populated by poster enrichment.
type Film struct {
	Title  string   `json:"title"`
	Poster *string  `json:"image"`
	Rating *float64 `json:"rating"`
}
