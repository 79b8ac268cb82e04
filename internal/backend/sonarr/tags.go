package sonarr

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"seasonarr/internal/logging"
)

type tag struct {
	ID    int64  `json:"id,omitempty"`
	Label string `json:"label"`
}

type releaseProfile struct {
	Required []string `json:"required"`
	Tags     []int64  `json:"tags"`
	Enabled  bool     `json:"enabled"`
}

type qualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// groupTagLabel builds the managed tag label for a release group.
func groupTagLabel(group string) string {
	return tagPrefix + strings.ReplaceAll(strings.ToLower(group), " ", "_")
}

// ensureGroupTag returns the tag ID for a release group, creating the tag and
// its release restriction downstream when missing.
func (c *Client) ensureGroupTag(ctx context.Context, group string) (int64, error) {
	label := groupTagLabel(group)

	var tags []tag
	if err := c.do(ctx, http.MethodGet, "/api/v3/tag", nil, &tags, "ensure tag"); err != nil {
		return 0, err
	}
	for _, t := range tags {
		if t.Label == label {
			return t.ID, nil
		}
	}

	var created tag
	if err := c.do(ctx, http.MethodPost, "/api/v3/tag", tag{Label: label}, &created, "ensure tag"); err != nil {
		return 0, err
	}

	restriction := releaseProfile{
		Required: []string{group},
		Tags:     []int64{created.ID},
		Enabled:  true,
	}
	if err := c.do(ctx, http.MethodPost, "/api/v3/releaseprofile", restriction, nil, "ensure tag"); err != nil {
		return 0, err
	}

	return created.ID, nil
}

func (c *Client) tagLabel(ctx context.Context, tagID int64) (string, error) {
	var t tag
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v3/tag/%d", tagID), nil, &t, "tag label"); err != nil {
		return "", err
	}
	return t.Label, nil
}

// qualityProfileID resolves the configured quality profile name to its
// downstream ID. Comparison ignores case and spaces. Falls back to profile 1
// when the name is unknown.
func (c *Client) qualityProfileID(ctx context.Context) (int64, error) {
	var profiles []qualityProfile
	if err := c.do(ctx, http.MethodGet, "/api/v3/qualityprofile", nil, &profiles, "quality profile"); err != nil {
		return 0, err
	}

	want := canonicalProfileName(c.qualityProfile)
	for _, profile := range profiles {
		if canonicalProfileName(profile.Name) == want {
			return profile.ID, nil
		}
	}

	c.logger.Warn("quality profile not found, using default",
		logging.String("profile", c.qualityProfile))
	return 1, nil
}

func canonicalProfileName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "")
}
