// Package services implements the application's use cases on top of repositories and file storage.
//
// # Artists
//
// [ArtistService] lists the artist directory twelve per page, assembles artist detail
// views (songs, song count, total likes), and applies edits and deletions.
//
// Edits store a replacement image before the record update is committed and remove the
// previous image only after the commit succeeds. The reserved [models.DefaultArtistImage]
// is never removed.
//
// Deletion is guarded: an artist is only removed while it has at most one song, the song
// its caller is about to delete.
//
// # Accounts
//
// [UserService] registers users, checks credentials, and issues and redeems password reset tokens.
//
// # Songs, Likes, Comments and Playlists
//
// [SongService] handles uploads (reading ID3/MP4/FLAC tags to fill in missing metadata), song
// detail views and deletion. [SocialService] toggles likes and posts comments and replies.
// [PlaylistService] manages user-owned playlists.
//
// # Error Handling
//
// Services return sentinel errors from the shared package, wrapped with context:
//   - [shared.ErrNotFound] : referenced record does not exist
//   - [shared.ErrForbidden] : actor lacks the required role or ownership
//   - [shared.ErrNotAuthenticated] : no actor, or bad credentials
//   - [shared.ErrInvalidInput] : form data failed validation
//   - [shared.ErrConflict] : unique constraint violated
//   - [shared.ErrPersistence] : the database refused a commit
//
// Every service method takes the acting user explicitly; nothing reads request state.
package services
