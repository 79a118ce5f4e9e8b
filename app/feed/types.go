package feed

// Item is the normalized output of feed parsing. PublishedAt carries the
// raw date string as found in the source; freshness is evaluated
// downstream, not here.
type Item struct {
	Title       string
	URL         string
	PublishedAt string
	Source      string
}

// Article is the result of readability extraction from a raw HTML page,
// used when a site exposes no machine-readable feed.
type Article struct {
	Title   string
	Excerpt string
	Content string
}
