// Package repositories implements SQLite persistence for all domain entities.
//
// Repositories are thin: one struct per table, plain SQL with "?" placeholders,
// and explicit association queries instead of lazy loading. Constructors accept a
// [DBTX] so the same repository code runs on the pool or inside [RunInTx].
//
// Key Implementations:
//   - [UserRepository] : accounts with email and username lookups
//   - [ArtistRepository] : artist directory with paginated listing
//   - [SongRepository] : uploaded songs, per-artist queries and counts
//   - [LikeRepository] : (user, song) likes and per-song counts
//   - [CommentRepository] and [ReplyRepository] : song discussion threads
//   - [PlaylistRepository] : playlists and playlist_songs membership
//
// Missing rows are reported as [shared.ErrNotFound]; unique constraint failures as [shared.ErrConflict].
package repositories
