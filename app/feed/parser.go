package feed

import (
	"bytes"
	"cmp"
	"html"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser converts raw feed markup into a bounded list of normalized
// items. gofeed handles well-formed RSS 2.0, Atom and JSON Feed; when it
// fails or recovers nothing, a tolerant pattern-based pass extracts what
// it can from the same text so that malformed feeds still yield items.
// Parsing never returns an error: the worst case is an empty list.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

var (
	itemBlockRe  = regexp.MustCompile(`(?is)<item[\s>].*?</item>`)
	entryBlockRe = regexp.MustCompile(`(?is)<entry[\s>].*?</entry>`)
	titleRe      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	linkHrefRe   = regexp.MustCompile(`(?i)<link[^>]*href=["']([^"']+)["']`)
	linkTextRe   = regexp.MustCompile(`(?is)<link[^>]*>([^<]+)</link>`)
	dateRe       = regexp.MustCompile(`(?is)<(pubDate|published|updated|dc:date)[^>]*>(.*?)</(?:pubDate|published|updated|dc:date)>`)
)

// Run parses data and returns at most max items in document order.
// fallbackSource labels items when the feed itself carries no title.
func (p *Parser) Run(data []byte, max int, fallbackSource string) []Item {
	if max <= 0 {
		max = 20
	}

	if items := p.parseStrict(data, max, fallbackSource); len(items) > 0 {
		return items
	}

	// Tolerant fallback: RSS <item> blocks first, Atom <entry> blocks
	// only if RSS recovers nothing.
	text := string(data)
	items := p.extractBlocks(itemBlockRe.FindAllString(text, max), false, fallbackSource)
	if len(items) == 0 {
		items = p.extractBlocks(entryBlockRe.FindAllString(text, max), true, fallbackSource)
	}
	return items
}

func (p *Parser) parseStrict(data []byte, max int, fallbackSource string) []Item {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil || parsed == nil {
		return nil
	}

	source := cmp.Or(cleanTitle(parsed.Title), fallbackSource)

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if len(items) >= max {
			break
		}
		title := cleanTitle(entry.Title)
		if title == "" {
			continue
		}
		items = append(items, Item{
			Title:       title,
			URL:         strings.TrimSpace(entry.Link),
			PublishedAt: cmp.Or(strings.TrimSpace(entry.Published), strings.TrimSpace(entry.Updated)),
			Source:      source,
		})
	}
	return items
}

func (p *Parser) extractBlocks(blocks []string, atom bool, fallbackSource string) []Item {
	items := make([]Item, 0, len(blocks))
	for _, block := range blocks {
		title := ""
		if m := titleRe.FindStringSubmatch(block); len(m) > 1 {
			title = cleanTitle(m[1])
		}
		// A missing title skips the item; any other missing field
		// yields an empty string.
		if title == "" {
			continue
		}

		items = append(items, Item{
			Title:       title,
			URL:         extractLink(block, atom),
			PublishedAt: extractDate(block),
			Source:      fallbackSource,
		})
	}
	return items
}

func extractLink(block string, atom bool) string {
	// Atom uses <link href="...">, RSS uses <link>text</link>. Try the
	// form the dialect prefers first, then the other.
	if atom {
		if m := linkHrefRe.FindStringSubmatch(block); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	if m := linkTextRe.FindStringSubmatch(block); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := linkHrefRe.FindStringSubmatch(block); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractDate(block string) string {
	if m := dateRe.FindStringSubmatch(block); len(m) > 2 {
		return strings.TrimSpace(m[2])
	}
	return ""
}

// cleanTitle unwraps CDATA and decodes HTML entities, including numeric
// references and smart quotes.
func cleanTitle(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "<![CDATA[") {
		s = strings.TrimPrefix(s, "<![CDATA[")
		s = strings.TrimSuffix(s, "]]>")
	}
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}
