package stats

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Traffic collects visitor and submission statistics for the statistics API.
type Traffic struct {
	UniqueVisitors  map[string]time.Time `json:"uniqueVisitors"` // IP -> last visit
	Submissions     int                  `json:"submissions"`
	ErrorCount      int                  `json:"errorCount"`
	PopularURLs     map[string]int       `json:"popularUrls"`
	AverageLoadTime float64              `json:"averageLoadTime"` // milliseconds
	TotalLoadTime   float64              `json:"totalLoadTime"`
	LastPersisted   time.Time            `json:"lastPersisted"`

	mutex    sync.RWMutex
	filePath string
	now      func() time.Time
}

// NewTraffic loads traffic statistics from dataDir/traffic.json if present.
func NewTraffic(dataDir string) (*Traffic, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	t := &Traffic{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		filePath:       filepath.Join(dataDir, "traffic.json"),
		now:            time.Now,
	}
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// TrackVisitor records a visit from ip.
func (t *Traffic) TrackVisitor(ip string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.UniqueVisitors[ip] = t.now()
}

// cleanURL reduces a submitted URL to scheme, host and path. Local and API
// URLs are not tracked.
func cleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleaned := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}
	return strings.TrimSuffix(cleaned, "/")
}

// TrackSubmission records one analysis submission and how long it took.
func (t *Traffic) TrackSubmission(target string, elapsed time.Duration, failed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.Submissions++
	if cleaned := cleanURL(target); cleaned != "" {
		t.PopularURLs[cleaned]++
	}
	if failed {
		t.ErrorCount++
	}

	t.TotalLoadTime += float64(elapsed.Milliseconds())
	t.AverageLoadTime = t.TotalLoadTime / float64(t.Submissions)
}

func (t *Traffic) uniqueVisitors24h() int {
	cutoff := t.now().Add(-24 * time.Hour)
	count := 0
	for _, lastVisit := range t.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

func (t *Traffic) errorRate() float64 {
	if t.Submissions == 0 {
		return 0
	}
	return float64(t.ErrorCount) / float64(t.Submissions) * 100
}

// PopularURL is a submitted URL and how often it was analyzed.
type PopularURL struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

func (t *Traffic) popular(n int) []PopularURL {
	out := make([]PopularURL, 0, len(t.PopularURLs))
	for u, count := range t.PopularURLs {
		out = append(out, PopularURL{URL: u, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].URL < out[j].URL
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Snapshot returns the public statistics. Popular URLs are only included
// in development mode.
func (t *Traffic) Snapshot(devMode bool) map[string]any {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	out := map[string]any{
		"uniqueVisitors24h": t.uniqueVisitors24h(),
		"totalRequests":     t.Submissions,
		"errorRate":         t.errorRate(),
		"averageLoadTime":   t.AverageLoadTime,
	}
	if devMode {
		out["popularUrls"] = t.popular(5)
	}
	return out
}

// Save persists the statistics to disk.
func (t *Traffic) Save() error {
	t.mutex.Lock()
	t.LastPersisted = t.now()
	data, err := json.Marshal(t)
	t.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode traffic statistics: %w", err)
	}

	tempFile := t.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("could not write traffic statistics: %w", err)
	}
	if err := os.Rename(tempFile, t.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("could not replace traffic statistics: %w", err)
	}
	return nil
}

// Load reads the statistics from disk. A missing file is not an error.
func (t *Traffic) Load() error {
	data, err := os.ReadFile(t.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open traffic statistics: %w", err)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := json.Unmarshal(data, t); err != nil {
		return fmt.Errorf("could not decode traffic statistics: %w", err)
	}
	if t.UniqueVisitors == nil {
		t.UniqueVisitors = make(map[string]time.Time)
	}
	if t.PopularURLs == nil {
		t.PopularURLs = make(map[string]int)
	}
	return nil
}
