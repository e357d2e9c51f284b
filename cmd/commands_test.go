package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	tu "github.com/desertthunder/reelx/internal/testing"
)

func sampleCatalog() *tu.MockCatalog {
	return &tu.MockCatalog{
		Releases: []models.CatalogItem{
			tu.SampleItem("tay-du-ky", "Tây Du Ký"),
			tu.SampleItem("hong-lau-mong", "Hồng Lâu Mộng"),
		},
		Categories: map[models.Category][]models.CatalogItem{
			models.Animation: {tu.SampleItem("doraemon", "Doraemon")},
		},
		Details: map[string]*models.CatalogDetail{
			"tay-du-ky": tu.SampleDetail("tay-du-ky", "Tây Du Ký", 3),
		},
		Results: []models.CatalogItem{tu.SampleItem("tay-du-ky", "Tây Du Ký")},
	}
}

func TestCatalogCommands(t *testing.T) {
	t.Run("Home", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "home"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Phim Mới", "Tây Du Ký", "tay-du-ky"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected output to contain %q, got %s", want, output.String())
			}
		}
	})

	t.Run("Home Catalog Unavailable", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, &tu.MockCatalog{})

		if err := run(runner, "home"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Catalog unavailable") {
			t.Errorf("expected unavailable notice, got %s", output.String())
		}
	})

	t.Run("Browse", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "browse", "--json", "hoat-hinh"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var items []models.CatalogItem
		if err := json.Unmarshal(output.Bytes(), &items); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if len(items) != 1 || items[0].Slug != "doraemon" {
			t.Errorf("unexpected items %+v", items)
		}
	})

	t.Run("Browse Unknown Category", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		err := run(runner, "browse", "phim-hay")
		if !errors.Is(err, shared.ErrInvalidCategory) {
			t.Errorf("expected ErrInvalidCategory, got %v", err)
		}
	})

	t.Run("Browse Missing Argument", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		err := run(runner, "browse")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		catalog := sampleCatalog()
		runner, output, _ := newTestRunner(t, catalog)

		if err := run(runner, "search", "tây du"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `Kết quả cho "tây du" (1)`) {
			t.Errorf("unexpected output %s", output.String())
		}
		if catalog.Calls("Search") != 1 {
			t.Errorf("expected 1 search call, got %d", catalog.Calls("Search"))
		}
	})

	t.Run("Suggest", func(t *testing.T) {
		catalog := sampleCatalog()
		runner, output, _ := newTestRunner(t, catalog)

		if err := run(runner, "suggest", "tay"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "tay-du-ky") {
			t.Errorf("expected suggestion, got %s", output.String())
		}
		if kw := catalog.Keywords(); len(kw) != 1 || kw[0] != "tay" {
			t.Errorf("expected one lookup for %q, got %v", "tay", kw)
		}
	})

	t.Run("Suggest Short Query", func(t *testing.T) {
		catalog := sampleCatalog()
		runner, output, _ := newTestRunner(t, catalog)

		if err := run(runner, "suggest", "t"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Type at least 2 characters") {
			t.Errorf("expected min length hint, got %s", output.String())
		}
		if catalog.Calls("Search") != 0 {
			t.Errorf("expected no catalog call, got %d", catalog.Calls("Search"))
		}
	})

	t.Run("Detail", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "detail", "tay-du-ky"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Tây Du Ký", "Episodes (3):", "tap-2"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected output to contain %q, got %s", want, output.String())
			}
		}
	})

	t.Run("Detail Not Found", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "detail", "khong-co"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Watch", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "watch", "tay-du-ky"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Tập 1") || !strings.Contains(output.String(), "next: Tập 2") {
			t.Errorf("unexpected output %s", output.String())
		}

		engine, _ := runner.Engine()
		entry, ok := engine.History().Get("tay-du-ky")
		if !ok || entry.EpisodeSlug != "tap-1" {
			t.Errorf("expected history at tap-1, got %+v", entry)
		}
	})

	t.Run("Watch Next And Open", func(t *testing.T) {
		var opened string
		previous := openBrowser
		openBrowser = func(u string) error { opened = u; return nil }
		t.Cleanup(func() { openBrowser = previous })

		runner, output, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "watch", "--next", "--open", "tay-du-ky", "tap-2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Tập 3") || !strings.Contains(output.String(), "last episode") {
			t.Errorf("unexpected output %s", output.String())
		}
		if !strings.HasSuffix(opened, "/tay-du-ky/3") {
			t.Errorf("expected player for episode 3, got %q", opened)
		}

		engine, _ := runner.Engine()
		if entry, _ := engine.History().Get("tay-du-ky"); entry.EpisodeSlug != "tap-3" {
			t.Errorf("expected history at tap-3, got %q", entry.EpisodeSlug)
		}
	})

	t.Run("Watch Unknown Episode", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "watch", "tay-du-ky", "tap-9"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLibraryCommands(t *testing.T) {
	t.Run("Favorites Toggle", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "favorites", "toggle", "--json", "tay-du-ky"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var state favoriteState
		if err := json.Unmarshal(output.Bytes(), &state); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if !state.Favorite {
			t.Error("expected title to be added")
		}

		output.Reset()
		if err := run(runner, "favorites", "toggle", "tay-du-ky"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Removed tay-du-ky") {
			t.Errorf("expected removal message, got %s", output.String())
		}
	})

	t.Run("Favorites Toggle Alias Slug", func(t *testing.T) {
		catalog := sampleCatalog()
		catalog.Details["tdk"] = catalog.Details["tay-du-ky"]
		runner, output, _ := newTestRunner(t, catalog)
		engine, _ := runner.Engine()

		if err := run(runner, "favorites", "toggle", "tdk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !engine.Favorites().Has("tay-du-ky") || engine.Favorites().Has("tdk") {
			t.Fatalf("expected favorite stored under the canonical slug, got %+v", engine.Favorites().List())
		}

		output.Reset()
		if err := run(runner, "favorites", "toggle", "tdk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Removed tdk") {
			t.Errorf("expected removal message, got %s", output.String())
		}
		if got := engine.Favorites().List(); len(got) != 0 {
			t.Errorf("expected alias toggle to remove the canonical favorite, got %+v", got)
		}
	})

	t.Run("Favorites Toggle Unknown Title", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "favorites", "toggle", "khong-co"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Favorites List And Has", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, sampleCatalog())
		engine, _ := runner.Engine()
		engine.Favorites().Toggle(tu.SampleItem("tay-du-ky", "Tây Du Ký"))
		engine.Favorites().Toggle(tu.SampleItem("doraemon", "Doraemon"))

		if err := run(runner, "favorites", "list", "--query", "tay du"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "(1)") || strings.Contains(output.String(), "Doraemon") {
			t.Errorf("expected filtered list, got %s", output.String())
		}

		output.Reset()
		if err := run(runner, "favorites", "has", "doraemon"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.TrimSpace(output.String()) != "true" {
			t.Errorf("expected true, got %q", output.String())
		}
	})

	t.Run("Favorites Export", func(t *testing.T) {
		runner, output, fs := newTestRunner(t, sampleCatalog())
		engine, _ := runner.Engine()
		engine.Favorites().Toggle(tu.SampleItem("tay-du-ky", "Tây Du Ký"))

		if err := run(runner, "favorites", "export", "--format", "csv", "-o", "out/favs.csv"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		data, err := afero.ReadFile(fs, "out/favs.csv")
		if err != nil {
			t.Fatalf("expected export file, got %v", err)
		}
		if !strings.Contains(string(data), "tay-du-ky") {
			t.Errorf("expected slug in export, got %s", data)
		}
		if !strings.Contains(output.String(), "Exported 1 favorites") {
			t.Errorf("unexpected output %s", output.String())
		}
	})

	t.Run("Favorites Export Bad Format", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "favorites", "export", "--format", "xlsx"); !errors.Is(err, shared.ErrUnsupportedValue) {
			t.Errorf("expected ErrUnsupportedValue, got %v", err)
		}
	})

	t.Run("History", func(t *testing.T) {
		runner, output, fs := newTestRunner(t, sampleCatalog())
		engine, _ := runner.Engine()
		item := tu.SampleItem("tay-du-ky", "Tây Du Ký")
		engine.History().RecordProgress("tay-du-ky", "tap-2", "Tập 2", item)
		engine.History().RecordProgress("doraemon", "tap-1", "Tập 1", tu.SampleItem("doraemon", "Doraemon"))

		if err := run(runner, "history", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Lịch Sử Xem (2)") {
			t.Errorf("unexpected output %s", output.String())
		}
		if strings.Index(output.String(), "doraemon") > strings.Index(output.String(), "tay-du-ky") {
			t.Error("expected most recent entry first")
		}

		if err := run(runner, "history", "export", "-o", "hist.json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok, _ := afero.Exists(fs, "hist.json"); !ok {
			t.Error("expected history export file")
		}

		if err := run(runner, "history", "remove", "doraemon"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := engine.History().Get("doraemon"); ok {
			t.Error("expected doraemon to be removed")
		}

		if err := run(runner, "history", "clear"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(engine.History().List()) != 0 {
			t.Error("expected empty history after clear")
		}
	})

	t.Run("Export", func(t *testing.T) {
		runner, output, fs := newTestRunner(t, sampleCatalog())
		engine, _ := runner.Engine()
		engine.Favorites().Toggle(tu.SampleItem("tay-du-ky", "Tây Du Ký"))

		if err := run(runner, "export", "--format", "md", "-o", "backup"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Exported 1 favorites and 0 history entries") {
			t.Errorf("unexpected output %s", output.String())
		}
		if ok, _ := afero.Exists(fs, "backup/export_manifest.json"); !ok {
			t.Error("expected manifest in output directory")
		}
	})
}

func TestAPIGet(t *testing.T) {
	t.Run("prints JSON response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/phim/tay-du-ky" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"movie":{"slug":"tay-du-ky"}}`))
		}))
		defer ts.Close()

		runner, output, _ := newTestRunner(t, sampleCatalog())
		runner.api = services.NewAPIService(ts.URL, ts.Client())

		if err := run(runner, "api", "get", "--json", "/phim/tay-du-ky"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"slug":"tay-du-ky"`) {
			t.Errorf("expected compact JSON, got %s", output.String())
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		runner, _, _ := newTestRunner(t, sampleCatalog())
		runner.api = services.NewAPIService(ts.URL, ts.Client())

		if err := run(runner, "api", "get", "/danh-sach"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, sampleCatalog())

		if err := run(runner, "api", "get"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
