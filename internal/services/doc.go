// Package services defines the [Catalog] interface for the remote movie API and implements it
// with [CatalogService].
//
// # Catalog Interface
//
// The catalog is read-only and never fails loudly. Every operation returns a possibly empty
// result; callers render empty states rather than handling transport problems.
//
// # Endpoints
//
// [CatalogService] maps each operation to one request against https://phimapi.com:
//   - NewReleases : GET /danh-sach/phim-moi-cap-nhat?page=N (list under "items")
//   - ByCategory  : GET /v1/api/danh-sach/{type}?page=N&limit=24 (list under "data.items")
//   - Detail      : GET /phim/{slug} ("movie" plus "episodes" server groups)
//   - Search      : GET /v1/api/tim-kiem?keyword=K&limit=N (list under "data.items")
//
// Image paths in responses are relative to https://phimimg.com/; [CatalogService.ImageURL]
// resolves them and substitutes a placeholder for missing artwork.
//
// # Resilience
//
// Requests are throttled with a token bucket ([rate.Limiter]) and wrapped in a circuit breaker
// ([gobreaker.CircuitBreaker]). Server errors and transport failures trip the breaker; client
// errors (4xx) and cancellations do not. Nothing is retried.
//
// # Raw Requests
//
// [APIService] returns unprocessed responses for inspecting payloads from the CLI.
package services
