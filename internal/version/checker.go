// Package version checks the project's release feed for a newer build.
package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	releaseAPIURL = "https://api.github.com/repos/secretpeek/secretpeek/releases/latest"
	checkTimeout  = 5 * time.Second
)

type release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdate asks the release feed whether a version newer than current
// exists. It returns the latest version and its release page either way.
func CheckForUpdate(current string) (available bool, latest string, url string, err error) {
	client := &http.Client{Timeout: checkTimeout}

	req, err := http.NewRequest(http.MethodGet, releaseAPIURL, nil)
	if err != nil {
		return false, "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "secretpeek/"+current)

	resp, err := client.Do(req)
	if err != nil {
		return false, "", "", fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, "", "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return false, "", "", fmt.Errorf("failed to decode release: %w", err)
	}

	latest = strings.TrimPrefix(rel.TagName, "v")
	current = strings.TrimPrefix(current, "v")

	if latest != "" && isNewer(latest, current) {
		return true, latest, rel.HTMLURL, nil
	}
	return false, latest, rel.HTMLURL, nil
}

// isNewer compares two dotted versions, ignoring pre-release suffixes.
func isNewer(latest, current string) bool {
	lp := parseVersion(latest)
	cp := parseVersion(current)

	n := len(lp)
	if len(cp) > n {
		n = len(cp)
	}
	for len(lp) < n {
		lp = append(lp, 0)
	}
	for len(cp) < n {
		cp = append(cp, 0)
	}

	for i := 0; i < n; i++ {
		if lp[i] != cp[i] {
			return lp[i] > cp[i]
		}
	}
	return false
}

func parseVersion(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		out = append(out, num)
	}
	return out
}
