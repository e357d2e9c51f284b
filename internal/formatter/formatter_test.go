package formatter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	tu "github.com/desertthunder/reelx/internal/testing"
)

func sampleFavorites() []models.FavoriteEntry {
	a := tu.SampleItem("ban-dem", "Bạn Đêm")
	a.EpisodeCurrent = "Hoàn Tất (16/16)"
	b := tu.SampleItem("toy-story", "Câu Chuyện Đồ Chơi")
	b.Lang = "Lồng Tiếng"
	return []models.FavoriteEntry{
		{CatalogItem: a, AddedAt: 1700000000000, Seq: 1},
		{CatalogItem: b, AddedAt: 1690000000000, Seq: 2},
	}
}

func sampleHistory() []models.HistoryEntry {
	return []models.HistoryEntry{
		{Slug: "ban-dem", EpisodeSlug: "tap-02", Name: "Bạn Đêm", EpName: "Tập 2", Timestamp: 1700000000000},
		{Slug: "pipe", EpisodeSlug: "full", Name: "A | B", EpName: "Full", Timestamp: 1600000000000},
	}
}

func TestExporters(t *testing.T) {
	t.Run("FavoritesToCSV", func(t *testing.T) {
		data, err := FavoritesToCSV(sampleFavorites())
		if err != nil {
			t.Fatalf("FavoritesToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Slug,Name,Origin Name,Year,Quality,Language,Episode,Added At") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "ban-dem,Bạn Đêm") {
			t.Errorf("CSV missing first favorite, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 3 {
			t.Errorf("expected 3 lines, got %d", lines)
		}
	})

	t.Run("HistoryToCSV", func(t *testing.T) {
		data, err := HistoryToCSV(sampleHistory())
		if err != nil {
			t.Fatalf("HistoryToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Slug,Name,Origin Name,Episode Slug,Episode,Watched At") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "tap-02,Tập 2") {
			t.Errorf("CSV missing episode data, got: %s", output)
		}
	})

	t.Run("FavoritesToMarkdown", func(t *testing.T) {
		t.Run("resolves images", func(t *testing.T) {
			resolve := func(p string) string { return "https://img.example/" + p }
			data, err := FavoritesToMarkdown(sampleFavorites(), resolve)
			if err != nil {
				t.Fatalf("FavoritesToMarkdown failed: %v", err)
			}
			output := string(data)

			if !strings.Contains(output, "# Phim Yêu Thích") {
				t.Error("Markdown missing title")
			}
			if !strings.Contains(output, "## 1. Bạn Đêm (2024)") {
				t.Errorf("Markdown missing numbered heading, got: %s", output)
			}
			if !strings.Contains(output, "](https://img.example/upload/vod/ban-dem-thumb.jpg)") {
				t.Errorf("Markdown missing resolved image, got: %s", output)
			}
			if !strings.Contains(output, "**Audio**: Lồng Tiếng") {
				t.Error("Markdown missing audio badge")
			}
		})

		t.Run("without resolver", func(t *testing.T) {
			data, err := FavoritesToMarkdown(sampleFavorites(), nil)
			if err != nil {
				t.Fatalf("FavoritesToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "](upload/vod/ban-dem-thumb.jpg)") {
				t.Error("expected raw image path")
			}
		})
	})

	t.Run("HistoryToMarkdown", func(t *testing.T) {
		data, err := HistoryToMarkdown(sampleHistory())
		if err != nil {
			t.Fatalf("HistoryToMarkdown failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "| Title | Episode | Watched |") {
			t.Error("Markdown missing table header")
		}
		if !strings.Contains(output, `A \| B`) {
			t.Errorf("pipes in cells should be escaped, got: %s", output)
		}

		empty, _ := HistoryToMarkdown(nil)
		if strings.Contains(string(empty), "| Title |") {
			t.Error("empty history should not render a table")
		}
	})

	t.Run("ToText", func(t *testing.T) {
		fav, _ := FavoritesToText(sampleFavorites())
		if !strings.Contains(string(fav), "Favorites: 2") || !strings.Contains(string(fav), "1. Bạn Đêm (2024) [Vietsub]") {
			t.Errorf("unexpected favorites text: %s", fav)
		}

		hist, _ := HistoryToText(sampleHistory())
		if !strings.Contains(string(hist), "History: 2") || !strings.Contains(string(hist), "1. Bạn Đêm - Tập 2") {
			t.Errorf("unexpected history text: %s", hist)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := FormatFavorites(sampleFavorites(), "json", nil)
		if err != nil {
			t.Fatalf("FormatFavorites failed: %v", err)
		}

		var decoded []models.FavoriteEntry
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].AddedAt != 1700000000000 {
			t.Errorf("unexpected decoded favorites: %+v", decoded)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{in: "", want: "json"},
		{in: "CSV", want: "csv"},
		{in: "md", want: "markdown"},
		{in: "text", want: "txt"},
	}
	for _, tt := range tc {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xlsx"); !errors.Is(err, shared.ErrUnsupportedValue) {
		t.Errorf("expected ErrUnsupportedValue, got %v", err)
	}
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(context.Background(), nil, ""); err == nil {
			t.Error("expected error for empty URL")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(context.Background(), server.Client(), server.URL+"/a.jpg")
		if err != nil || string(data) != "jpeg-bytes" {
			t.Errorf("unexpected result %q, %v", data, err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(context.Background(), nil, server.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteFavoritesExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path, err := WriteFavoritesExport(fs, sampleFavorites(), "csv", "", nil)
			if err != nil {
				t.Fatalf("WriteFavoritesExport failed: %v", err)
			}
			if path != "favorites.csv" {
				t.Errorf("expected favorites.csv, got %s", path)
			}
			if ok, _ := afero.Exists(fs, path); !ok {
				t.Error("export file was not written")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path, err := WriteFavoritesExport(fs, sampleFavorites(), "markdown", "out/nested/favs.md", nil)
			if err != nil {
				t.Fatalf("WriteFavoritesExport failed: %v", err)
			}

			data, err := afero.ReadFile(fs, path)
			if err != nil {
				t.Fatalf("failed to read export: %v", err)
			}
			if !strings.HasPrefix(string(data), "# Phim Yêu Thích") {
				t.Errorf("unexpected content: %s", data)
			}
		})

		t.Run("ReadOnlyFs", func(t *testing.T) {
			fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
			if _, err := WriteFavoritesExport(fs, sampleFavorites(), "txt", "favorites.txt", nil); err == nil {
				t.Error("expected write error on read-only filesystem")
			}
		})
	})

	t.Run("WriteHistoryExport", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		path, err := WriteHistoryExport(fs, sampleHistory(), "txt", "")
		if err != nil {
			t.Fatalf("WriteHistoryExport failed: %v", err)
		}
		if path != "history.txt" {
			t.Errorf("expected history.txt, got %s", path)
		}
	})

	t.Run("WriteExportManifest", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		result := &LibraryExportResult{
			OutputDirectory: "export",
			Format:          "csv",
			Favorites:       2,
			History:         1,
			Files:           []string{"export/favorites.csv", "export/history.csv"},
			Posters: []PosterResult{
				{Slug: "a", File: "export/posters/a.jpg", Success: true},
				{Slug: "b", Error: errors.New("status 404")},
			},
			PostersSaved:  1,
			PostersFailed: 1,
		}

		if err := WriteExportManifest(fs, result, "export/export_manifest.json"); err != nil {
			t.Fatalf("WriteExportManifest failed: %v", err)
		}

		data, _ := afero.ReadFile(fs, "export/export_manifest.json")
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if m["format"] != "csv" || m["posters_failed"].(float64) != 1 {
			t.Errorf("unexpected manifest: %s", data)
		}
		if !strings.Contains(string(data), "status 404") {
			t.Error("manifest should include poster errors")
		}
	})
}
