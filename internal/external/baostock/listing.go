package baostock

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TangUsers/stock-analysis-saas/internal/contracts"
	"github.com/TangUsers/stock-analysis-saas/pkg/redis"
)

// codes look like sh.600519 / sz.000001
var codeRe = regexp.MustCompile(`^(sh|sz)\.\d{6}$`)

// excluded names: ST flags, fresh listings, delisting stocks
var excludedNameRe = regexp.MustCompile(`ST|N天|退`)

// Listing scrapes the exchange listing page and returns tradable
// instruments, excluding ST, freshly listed and delisting names.
func (c *Client) Listing(ctx context.Context) ([]contracts.ListedInstrument, error) {
	cacheKey := redis.ListingKey()
	var cached []contracts.ListedInstrument
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	body, err := c.http.GetBody(ctx, c.cfg.Provider.ListBaseURL)
	if err != nil {
		return nil, fmt.Errorf("listing fetch failed: %w", err)
	}

	listing, err := parseListingHTML(string(body))
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, cacheKey, listing, redis.TTLListing); err != nil {
		c.logger.WithError(err).Warn("Failed to cache listing")
	}

	c.logger.WithField("count", len(listing)).Debug("Fetched listing")
	return listing, nil
}

// parseListingHTML extracts code/name pairs from the listing table.
// Expected row shape: | code | name | ... |
func parseListingHTML(html string) ([]contracts.ListedInstrument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing HTML failed: %w", err)
	}

	listing := make([]contracts.ListedInstrument, 0)
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		code := strings.TrimSpace(cells.Eq(0).Text())
		name := strings.TrimSpace(cells.Eq(1).Text())

		if !codeRe.MatchString(code) {
			return
		}
		if name == "" || excludedNameRe.MatchString(name) {
			return
		}

		listing = append(listing, contracts.ListedInstrument{Code: code, Name: name})
	})

	return listing, nil
}
