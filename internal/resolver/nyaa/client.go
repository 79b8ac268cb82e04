package nyaa

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"seasonarr/internal/config"
	"seasonarr/internal/logging"
	"seasonarr/internal/resolver"
	"seasonarr/internal/services"
)

// filterMap translates the human-readable trust filter from configuration
// into the numeric filter the RSS endpoint expects.
var filterMap = map[string]int{
	"show all":       0,
	"filter remakes": 1,
	"trusted only":   2,
	"a+ only":        3,
}

// categoryMap translates the human-readable category from configuration into
// the category code the RSS endpoint expects.
var categoryMap = map[string]string{
	"all categories":                       "0_0",
	"anime":                                "1_0",
	"anime - anime music video":            "1_32",
	"anime - english-translated":           "1_37",
	"anime - non-english-translated":       "1_38",
	"anime - raw":                          "1_11",
	"literature":                           "2_0",
	"literature - english-translated":      "2_12",
	"literature - non-english-translated":  "2_39",
	"literature - raw":                     "2_13",
	"live action":                          "5_0",
	"live action - english-translated":     "5_19",
	"live action - non-english-translated": "5_21",
	"live action - raw":                    "5_20",
}

// Client searches a nyaa-compatible RSS endpoint for release groups.
type Client struct {
	baseURL    string
	category   string
	filter     int
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a resolver from configuration. Unknown category or filter names
// are a configuration error.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	category, ok := categoryMap[cfg.Nyaa.Category]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "nyaa", "init",
			fmt.Sprintf("unknown category %q", cfg.Nyaa.Category), nil)
	}
	filter, ok := filterMap[cfg.Nyaa.Filter]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "nyaa", "init",
			fmt.Sprintf("unknown filter %q", cfg.Nyaa.Filter), nil)
	}

	return &Client{
		baseURL:    cfg.Nyaa.BaseURL,
		category:   category,
		filter:     filter,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Nyaa.RequestTimeout) * time.Second},
		logger:     logger.With(logging.String("component", "nyaa")),
	}, nil
}

var _ resolver.Resolver = (*Client)(nil)

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
		} `xml:"item"`
	} `xml:"channel"`
}

// FindGroups searches the release index for the query term and extracts the
// distinct release group names from the result titles.
func (c *Client) FindGroups(ctx context.Context, q resolver.Query) ([]string, error) {
	searchURL := fmt.Sprintf("%s/?page=rss&c=%s&f=%d&q=%s",
		c.baseURL, c.category, c.filter, url.QueryEscape(q.Term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, services.Wrap(nil, "nyaa", "find groups", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.ClassifyTransport("nyaa", "find groups", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrUpstreamUnavailable, "nyaa", "find groups",
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, services.Wrap(services.ErrUpstreamUnavailable, "nyaa", "find groups", "decode feed", err)
	}

	titles := make([]string, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		titles = append(titles, item.Title)
	}
	groups := ExtractGroups(titles)

	c.logger.Debug("resolved release groups",
		logging.String("term", q.Term),
		logging.Int("results", len(titles)),
		logging.Int("groups", len(groups)))
	return groups, nil
}

// rejectTokens are strings commonly found in brackets that are not release
// group names.
var rejectTokens = []string{"720", "1080", "480", "x264", "AAC", "8bit", "8 bit", "10bit", "10 bit"}

// ExtractGroups parses release titles of the usual
// "[Group] Show Name - 01 [1080p]" shape and returns the distinct group
// names, sorted. Titles without a leading bracket pair and brackets holding
// resolution or codec tokens are skipped.
func ExtractGroups(releaseTitles []string) []string {
	seen := make(map[string]struct{})
	for _, title := range releaseTitles {
		group, ok := bracketContent(title)
		if !ok {
			continue
		}
		if rejected(group) {
			continue
		}
		seen[group] = struct{}{}
	}

	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

func bracketContent(title string) (string, bool) {
	open := -1
	for i, r := range title {
		switch r {
		case '[':
			if open < 0 {
				open = i + 1
			}
		case ']':
			if open >= 0 {
				return title[open:i], true
			}
		}
	}
	return "", false
}

func rejected(group string) bool {
	for _, token := range rejectTokens {
		if strings.Contains(group, token) {
			return true
		}
	}
	return false
}
