// Package bundle persists exported recordings ("bundles") by name.
//
// A bundle is one portable cache tree as produced by a recording session.
// The Store interface abstracts the persistence medium; the package ships
// three backends:
//
//   - FileStore: one encoded file per bundle under a directory
//   - RedisStore: one key per bundle, optionally expiring
//   - SQLStore: one row per bundle in a bundles table via bun
//
// All backends speak the same portable encodings (JSON for debuggability,
// msgpack for compactness), so a bundle saved by one backend loads from
// another after a plain byte copy.
package bundle
