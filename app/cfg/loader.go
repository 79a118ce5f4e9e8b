package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RequestTimeout  int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"45" description:"Overall curation request deadline in seconds"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"8" description:"Per outbound HTTP call timeout in seconds"`
	SkewTolerance   int    `long:"skew-tolerance" env:"SKEW_TOLERANCE" default:"45" description:"Clock skew tolerance for future-dated items in minutes"`
	StalenessPolicy string `long:"staleness-policy" env:"STALENESS_POLICY" default:"hard-exclude" choice:"hard-exclude" choice:"keep-with-penalty" description:"How stale items are handled during reranking"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Source adapter credentials
	NewsAPIKey    string `long:"newsapi-key" env:"NEWSAPI_KEY" description:"NewsAPI.org API key (optional)"`
	YouTubeAPIKey string `long:"youtube-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key (optional)"`
	GitHubToken   string `long:"github-token" env:"GITHUB_TOKEN" description:"GitHub API token (optional, raises rate limits)"`

	// Curated sources lookup
	CuratedSourcesURL  string `long:"curated-sources-url" env:"CURATED_SOURCES_URL" description:"HTTP endpoint returning curated source descriptors (optional)"`
	CuratedSourcesFile string `long:"curated-sources-file" env:"CURATED_SOURCES_FILE" default:"./sources.yml" description:"YAML file with curated source descriptors"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TechTrendAgent/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:               raw.Port,
		RequestTimeout:     raw.RequestTimeout,
		FetchTimeout:       raw.FetchTimeout,
		SkewTolerance:      raw.SkewTolerance,
		StalenessPolicy:    raw.StalenessPolicy,
		APIAccessKey:       raw.APIAccessKey,
		NewsAPIKey:         raw.NewsAPIKey,
		YouTubeAPIKey:      raw.YouTubeAPIKey,
		GitHubToken:        raw.GitHubToken,
		CuratedSourcesURL:  raw.CuratedSourcesURL,
		CuratedSourcesFile: raw.CuratedSourcesFile,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
