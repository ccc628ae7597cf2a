// Package server provides HTTP routing, middleware, and handlers for the musicapp web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers; router-wide middleware runs in the order it was added,
// while per-route middleware passed to [Chain] is applied in reverse order (last added wraps first).
//
// The [BasicRouter] implementation uses a chi mux internally, so paths may carry
// parameters such as /artist/{artist_id}.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface and return their own [Route] list,
// which keeps route definitions next to the code that serves them:
//   - [ArtistHandler] lists, shows and edits artists
//   - [SongHandler] uploads, shows, deletes and likes songs, plus comments and replies
//   - [PlaylistHandler] manages the signed-in user's playlists
//   - [AccountHandler] registers users, starts and ends sessions, and resets passwords
//
// # Sessions
//
// Sessions are signed tokens in an HttpOnly cookie. [Session] resolves the cookie to a
// user on every request and [RequireUser] rejects anonymous requests with 401.
//
// # Errors
//
// Handlers return service errors to [writeError], which maps the shared sentinel errors
// to status codes and writes {"error": ..., "message": ...} JSON bodies.
package server
