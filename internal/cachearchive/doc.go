// Package cachearchive moves the lookup cache database between its two
// on-disk forms.
//
// At rest the database lives only as a gzip archive next to where the live
// file would be. MaterializeLive expands the archive into the live path when a
// session starts; ArchiveAndDiscardLive compresses the live file back and
// deletes it when the session ends. After either call completes successfully
// exactly one form exists.
//
// Any I/O or decompression failure is reported as ErrCacheUnavailable. A
// damaged archive is never replaced with an empty database.
package cachearchive
