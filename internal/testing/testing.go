// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/desertthunder/reelx/internal/models"
)

// MockCatalog is a test double for [services.Catalog]
type MockCatalog struct {
	mu sync.Mutex

	Releases   []models.CatalogItem
	Categories map[models.Category][]models.CatalogItem
	Details    map[string]*models.CatalogDetail
	Results    []models.CatalogItem

	// SearchFunc overrides Results when set.
	SearchFunc func(ctx context.Context, keyword string, limit int) []models.CatalogItem

	calls    map[string]int
	keywords []string
}

func (m *MockCatalog) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

func (m *MockCatalog) NewReleases(ctx context.Context, page int) []models.CatalogItem {
	m.record("NewReleases")
	return m.Releases
}

func (m *MockCatalog) ByCategory(ctx context.Context, category models.Category, page int) []models.CatalogItem {
	m.record("ByCategory")
	return m.Categories[category]
}

func (m *MockCatalog) Detail(ctx context.Context, slug string) (*models.CatalogDetail, bool) {
	m.record("Detail")
	d, ok := m.Details[slug]
	return d, ok
}

func (m *MockCatalog) Search(ctx context.Context, keyword string, limit int) []models.CatalogItem {
	m.record("Search")
	m.mu.Lock()
	m.keywords = append(m.keywords, keyword)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, keyword, limit)
	}
	if limit > 0 && len(m.Results) > limit {
		return m.Results[:limit]
	}
	return m.Results
}

// Calls returns how many times op was invoked.
func (m *MockCatalog) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Keywords returns the search keywords received, in order.
func (m *MockCatalog) Keywords() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keywords...)
}

// FailingStore is an in-memory key-value store whose writes and removes fail with Err once set.
type FailingStore struct {
	mu   sync.Mutex
	data map[string]string
	Err  error
}

func NewFailingStore(err error) *FailingStore {
	return &FailingStore{data: make(map[string]string), Err: err}
}

func (f *FailingStore) Read(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FailingStore) Write(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.data[key] = value
	return nil
}

func (f *FailingStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	delete(f.data, key)
	return nil
}

// Fail sets the error returned by subsequent writes. nil restores normal behavior.
func (f *FailingStore) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// Seed stores a raw value regardless of Err.
func (f *FailingStore) Seed(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

// StepClock returns Start, Start+Step, Start+2*Step, ... in milliseconds.
type StepClock struct {
	mu    sync.Mutex
	Start int64
	Step  int64
	n     int64
}

func (c *StepClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.Start + c.n*c.Step
	c.n++
	return v
}

// FixedClock always returns the same millisecond timestamp.
type FixedClock int64

func (c FixedClock) Now() int64 { return int64(c) }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// SampleItem builds a catalog item for tests.
func SampleItem(slug, name string) models.CatalogItem {
	return models.CatalogItem{
		ID:         "id-" + slug,
		Slug:       slug,
		Name:       name,
		OriginName: name + " (original)",
		ThumbURL:   "upload/vod/" + slug + "-thumb.jpg",
		PosterURL:  "upload/vod/" + slug + "-poster.jpg",
		Year:       2024,
		Lang:       "Vietsub",
	}
}

// SampleDetail builds a detail record with n episodes named "Tập 1".."Tập n".
func SampleDetail(slug, name string, n int) *models.CatalogDetail {
	eps := make([]models.Episode, 0, n)
	for i := 1; i <= n; i++ {
		eps = append(eps, models.Episode{
			Name:      "Tập " + strconv.Itoa(i),
			Slug:      "tap-" + strconv.Itoa(i),
			LinkEmbed: "https://player.example/embed/" + slug + "/" + strconv.Itoa(i),
		})
	}
	return &models.CatalogDetail{
		CatalogItem: SampleItem(slug, name),
		Episodes:    []models.ServerGroup{{ServerName: "Vietsub #1", ServerData: eps}},
		Status:      "completed",
	}
}
