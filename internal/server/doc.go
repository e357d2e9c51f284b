// Package server provides the local JSON API, its HTTP routing and middleware.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the two middlewares installed by [New].
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, registering "METHOD /path" patterns
// so path values ({slug}, {category}) are available through [http.Request.PathValue].
//
// # Endpoints
//
//	GET    /api/home                      home feed sections
//	GET    /api/danh-sach/{category}      category page (?page=N)
//	GET    /api/tim-kiem?k=               keyword search
//	GET    /api/phim/{slug}               title detail with favorite and history state
//	POST   /api/xem-phim/{slug}/{episode} open an episode and record history
//	GET    /api/yeu-thich                 favorites, newest first (?q= filters)
//	POST   /api/yeu-thich                 toggle the posted catalog item
//	GET    /api/yeu-thich/{slug}          membership check
//	DELETE /api/yeu-thich/{slug}          remove a favorite
//	GET    /api/lich-su                   watch history, most recent first
//	DELETE /api/lich-su                   clear history
//	GET    /api/lich-su/{slug}            one history entry
//	DELETE /api/lich-su/{slug}            remove one history entry
//	GET    /api/events                    server-sent change notifications
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// [EventsHandler] is registered this way.
package server
