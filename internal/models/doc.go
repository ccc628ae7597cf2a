// Package models defines domain entities and persistence interfaces for the music sharing service.
//
// Entities map one-to-one onto tables and carry their relationships as explicit
// foreign-key fields rather than embedded objects:
//   - [User] : accounts with the is_admin / is_manager role flags
//   - [Artist] : directory entries; Image set to [DefaultArtistImage] means no custom image
//   - [Song] : uploaded audio owned by a user (OwnerID) and optionally linked to an artist (ArtistID)
//   - [Like] : (user, song) pair, unique by primary key
//   - [Comment] and [Reply] : song discussion threads
//   - [Playlist] : user-owned song collections (many-to-many through playlist_songs)
//
// Related records are always fetched through an explicit repository query.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
