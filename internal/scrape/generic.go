package scrape

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
	"github.com/gruberb/game-compatibility-tracker/internal/config"
)

// Generic scrapes a ranking page driven entirely by configured selectors.
type Generic struct {
	name          string
	url           string
	itemSelector  string
	titleSelector string
	pattern       *regexp.Regexp
	rankGroup     int
	titleGroup    int
}

// NewGeneric creates a selector-driven adapter from a source config. When a
// pattern is configured it must contain `rank` and `title` named groups.
func NewGeneric(source config.Source) (*Generic, error) {
	g := &Generic{
		name:          source.Name,
		url:           source.URL,
		itemSelector:  source.ItemSelector,
		titleSelector: source.TitleSelector,
	}
	if strings.TrimSpace(source.Pattern) != "" {
		pattern, err := regexp.Compile(source.Pattern)
		if err != nil {
			return nil, fmt.Errorf("source %q: compile pattern: %w", source.Name, err)
		}
		g.pattern = pattern
		for i, name := range pattern.SubexpNames() {
			switch name {
			case "rank":
				g.rankGroup = i
			case "title":
				g.titleGroup = i
			}
		}
		if g.rankGroup == 0 || g.titleGroup == 0 {
			return nil, fmt.Errorf("source %q: pattern needs rank and title named groups", source.Name)
		}
	}
	return g, nil
}

// Name returns the source identifier attached to every scraped entry.
func (g *Generic) Name() string {
	return g.name
}

// Scrape fetches the page and extracts ranked titles. Items the pattern
// does not match are skipped; without a pattern the item position supplies
// the rank.
func (g *Generic) Scrape(ctx context.Context, client *http.Client) ([]aggregate.RawEntry, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", g.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source %q returned %d", g.name, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", g.url, err)
	}

	var entries []aggregate.RawEntry
	doc.Find(g.itemSelector).Each(func(position int, item *goquery.Selection) {
		text := item.Text()
		if g.titleSelector != "" {
			text = item.Find(g.titleSelector).First().Text()
		}
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			return
		}

		rank := position + 1
		title := text
		if g.pattern != nil {
			match := g.pattern.FindStringSubmatch(text)
			if match == nil {
				return
			}
			parsed, err := strconv.Atoi(match[g.rankGroup])
			if err != nil {
				return
			}
			rank = parsed
			title = strings.TrimSpace(match[g.titleGroup])
		}
		if title == "" || rank <= 0 {
			return
		}
		entries = append(entries, aggregate.RawEntry{
			Rank:   rank,
			Title:  title,
			Source: g.name,
		})
	})

	return entries, nil
}
