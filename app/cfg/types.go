package cfg

type Cfg struct {
	// Application configuration
	Port            string
	RequestTimeout  int // seconds, overall deadline for one curation request
	FetchTimeout    int // seconds, per outbound call
	SkewTolerance   int // minutes, future-date tolerance for clock skew
	StalenessPolicy string
	APIAccessKey    string

	// Source adapter credentials (optional; adapters without a key report
	// a structured per-source error instead of failing the request)
	NewsAPIKey    string
	YouTubeAPIKey string
	GitHubToken   string

	// Curated sources lookup
	CuratedSourcesURL  string
	CuratedSourcesFile string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
