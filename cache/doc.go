// Package cache provides the cache model underlying the caching proxy:
// canonical operation keys, the recorded-result tree, and a portable
// serialized form of that tree.
//
// # Overview
//
// The package exports three groups of types:
//
//   - KeyCodec and Fragment: turn one operation performed on a proxied
//     object (an attribute read, an item read, or a call) into a canonical,
//     deterministic key fragment
//   - Node: one node of the recorded-result tree; its children key the
//     operations performed on this node's own result
//   - PortableTree: a self-describing, domain-independent representation
//     of a Node tree that survives JSON or msgpack round-trips
//
// # Key encoding strategy
//
// Fragments are encoded as type-tagged, "::"-separated strings so that the
// same logical operation always produces the same key, across processes and
// serialization round-trips:
//
//   - attribute reads: "attr::name"
//   - item reads: "item::int:1"
//   - calls: "call::int:2::kw:page=int:3"
//
// Text payloads are escaped before entering the key, so a string argument
// containing "::" can never masquerade as two arguments.
//
// Only primitive arguments (text, integers, floats, booleans, nil) and
// values implementing KeyPather are encodable. Anything else fails with
// ErrUnencodableArgument; there is deliberately no silent fallback, because
// a cache key derived from an unstable identity would make replay
// non-deterministic.
//
// # Portable form
//
// Dump and Load convert between Node trees and PortableTree values. The
// portable form stores fragments as their canonical strings and leaf values
// as normalized primitives (int64, float64, string, bool, nil), which is
// what makes Load(Dump(n)) structurally equal to n regardless of the
// encoding used in between.
//
// # See Also
//
// The proxycache package builds the interception engine on top of these
// types.
package cache
