package types

// CrawlTarget is a frontier entry: a URL and its distance from a seed.
type CrawlTarget struct {
	URL   string
	Depth int
}
