// package services defines interface Catalog for interacting with the remote movie API
package services

import (
	"context"

	"github.com/desertthunder/reelx/internal/models"
)

// Catalog is the read-only remote movie catalog.
//
// Implementations never return errors: failures degrade to an empty result so callers render an
// empty state instead of handling transport problems.
type Catalog interface {
	// NewReleases returns a page of the newest titles.
	NewReleases(ctx context.Context, page int) []models.CatalogItem

	// ByCategory returns a page of titles of one [models.Category].
	ByCategory(ctx context.Context, category models.Category, page int) []models.CatalogItem

	// Detail returns a title with its episode lists, or false when there is no such title.
	Detail(ctx context.Context, slug string) (*models.CatalogDetail, bool)

	// Search returns at most limit titles matching keyword.
	Search(ctx context.Context, keyword string, limit int) []models.CatalogItem
}

// ImageResolver turns stored image paths into absolute URLs.
type ImageResolver interface {
	ImageURL(path string) string
}
