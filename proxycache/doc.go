// Package proxycache implements the transparent recording/replay proxy.
//
// # Overview
//
// A Session wraps a real object behind a Proxy that exposes the same three
// verbs the engine intercepts: attribute reads, item reads, and calls.
// Depending on the session mode, each operation is forwarded to the real
// object, recorded into the session's cache tree, served back from that
// tree, or some combination of the three:
//
//	session := proxycache.NewSession(proxycache.WithMode(proxycache.ModeRecord))
//	proxy := session.Wrap(realObject)
//	v, err := proxy.Get("x")        // hits realObject, records the result
//	tree, err := session.ToCache(proxy)
//
// A tree exported with ToCache can later rebuild a stand-in proxy in a
// process that has no access to the original object:
//
//	replay := proxycache.NewSession(proxycache.WithMode(proxycache.ModePure))
//	ghost, err := replay.FromCache(tree)
//	v, err := ghost.Get("x")        // served purely from the recording
//
// Results are either primitives, returned unwrapped, or further proxies
// that keep the interception chain going; the Value variant makes that
// decision explicit instead of duck-typing it.
//
// # Usage constraints
//
// Sessions are single-threaded by design: configure the mode, run a bounded
// recording or replay pass, then reconfigure. Changing the mode while
// operations are in flight from other goroutines is not guarded against.
package proxycache
