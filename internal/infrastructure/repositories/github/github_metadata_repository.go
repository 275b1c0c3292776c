package github

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/releasebot/cascade/internal/domain/entities"
	"github.com/releasebot/cascade/internal/domain/repositories"
)

const (
	httpRetries   = 3
	httpRetryWait = 2 * time.Second
	versionPrefix = "version="
)

// MetadataRepository reads module metadata from GitHub: raw repository
// files for versions and dependency declarations, and the releases API
// for published tags. Raw fetches retry with exponential backoff.
type MetadataRepository struct {
	source entities.SourceSettings
	http   *http.Client
	client *gh.Client
}

// NewMetadataRepository creates a GitHub-backed metadata repository for
// the configured source.
func NewMetadataRepository(source entities.SourceSettings) *MetadataRepository {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = httpRetries
	retryClient.RetryWaitMin = httpRetryWait
	retryClient.Logger = nil

	httpClient := retryClient.StandardClient()

	client := gh.NewClient(httpClient)
	if source.Token != "" {
		client = client.WithAuthToken(source.Token)
	}

	return &MetadataRepository{
		source: source,
		http:   httpClient,
		client: client,
	}
}

var _ repositories.MetadataRepository = (*MetadataRepository)(nil)

// FetchVersion reads the module's version properties file and returns
// the value of its "version=" line.
func (it *MetadataRepository) FetchVersion(ctx context.Context, name string) (string, error) {
	content, err := it.fetchRawFile(ctx, name, it.source.VersionFile)
	if err != nil {
		return "", err
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, versionPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, versionPrefix)), nil
		}
	}

	return "", fmt.Errorf("no version property in %s of %s", it.source.VersionFile, name)
}

// FetchDependencies scans the module's build file for lines referencing
// sibling modules and returns the referenced module names.
func (it *MetadataRepository) FetchDependencies(ctx context.Context, name string) ([]string, error) {
	content, err := it.fetchRawFile(ctx, name, it.source.BuildFile)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deps []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, it.source.DependencyPattern) {
			continue
		}

		dep := extractModuleName(line)
		if dep == "" || dep == name || seen[dep] {
			continue
		}
		seen[dep] = true
		deps = append(deps, dep)
	}

	return deps, nil
}

// LatestReleaseTag returns the tag of the module's latest GitHub
// release, without any leading "v".
func (it *MetadataRepository) LatestReleaseTag(ctx context.Context, name string) (string, error) {
	release, _, err := it.client.Repositories.GetLatestRelease(
		ctx, it.source.Organization, name,
	)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release of %s: %w", name, err)
	}
	return strings.TrimPrefix(release.GetTagName(), "v"), nil
}

// fetchRawFile downloads a file from the module repository's metadata
// branch over the raw file host.
func (it *MetadataRepository) fetchRawFile(ctx context.Context, name, file string) (string, error) {
	url := fmt.Sprintf(
		"%s/%s/%s/%s/%s",
		strings.TrimSuffix(it.source.RawBaseURL, "/"),
		it.source.Organization, name, it.source.Branch, file,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if it.source.Token != "" {
		req.Header.Set("Authorization", "token "+it.source.Token)
	}

	resp, doErr := it.http.Do(req)
	if doErr != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, readErr)
	}
	return string(body), nil
}

// extractModuleName pulls the module name out of a build-file dependency
// reference such as:
//
//	implementation project(':module-platform-io')
//	compile group: 'org.platform', name: 'module-platform-io', version: '1.2.0'
//	https://github.com/example-platform/module-platform-io
//
// The name is the last path-like segment on the line that starts with
// "module".
func extractModuleName(line string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(line), `"')`)
	segment := trimmed
	if idx := strings.LastIndexAny(trimmed, "/:'\""); idx >= 0 && idx+1 < len(trimmed) {
		segment = trimmed[idx+1:]
	}
	if !strings.HasPrefix(segment, "module") {
		return ""
	}
	return segment
}
