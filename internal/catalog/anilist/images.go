package anilist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"seasonarr/internal/services"
)

// cachePoster downloads a poster image into the local cache directory unless
// a copy already exists, and returns the on-disk path.
func (c *Client) cachePoster(ctx context.Context, imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "anilist", "cache poster",
			fmt.Sprintf("bad image URL %q", imageURL), err)
	}
	filename := path.Base(parsed.Path)
	if filename == "" || filename == "." || filename == "/" {
		return "", services.Wrap(services.ErrValidation, "anilist", "cache poster",
			fmt.Sprintf("image URL %q has no filename", imageURL), nil)
	}

	if err := os.MkdirAll(c.imageDir, 0o755); err != nil {
		return "", fmt.Errorf("create image cache dir: %w", err)
	}

	target := filepath.Join(c.imageDir, filename)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", services.Wrap(nil, "anilist", "cache poster", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.ClassifyTransport("anilist", "cache poster", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrUpstreamUnavailable, "anilist", "cache poster",
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	tmp, err := os.CreateTemp(c.imageDir, filename+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create poster temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", services.ClassifyTransport("anilist", "cache poster", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close poster temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("move poster into cache: %w", err)
	}
	return target, nil
}
