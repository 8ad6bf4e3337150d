package proxycache

import (
	"errors"
	"testing"

	"github.com/zyga/cachingproxy/cache"
)

func TestSessionDefaults(t *testing.T) {
	session := NewSession()

	if session.Mode() != ModeDisabled {
		t.Errorf("Mode() = %v, want ModeDisabled", session.Mode())
	}
	if session.ReprMode() != ReprReal {
		t.Errorf("ReprMode() = %v, want ReprReal", session.ReprMode())
	}
}

func TestSessionModeSwitching(t *testing.T) {
	session := NewSession()

	session.SetMode(ModeRecord)
	if session.Mode() != ModeRecord {
		t.Errorf("Mode() = %v, want ModeRecord", session.Mode())
	}
	session.SetReprMode(ReprFake)
	if session.ReprMode() != ReprFake {
		t.Errorf("ReprMode() = %v, want ReprFake", session.ReprMode())
	}
}

func TestWrapNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Wrap(nil) did not panic")
		}
	}()
	NewSession().Wrap(nil)
}

func TestToCacheExportsSubtree(t *testing.T) {
	real := newScenarioObject()
	session := NewSession(WithMode(ModeRecord))
	proxy := session.Wrap(real)

	yAny, err := proxy.Get("y")
	if err != nil {
		t.Fatalf("Get(y) error = %v", err)
	}
	y := yAny.(*Proxy)
	if _, err := y.Call([]any{2}, nil); err != nil {
		t.Fatalf("y(2) error = %v", err)
	}

	// Exporting the child proxy exports just its subtree.
	sub, err := session.ToCache(y)
	if err != nil {
		t.Fatalf("ToCache(y) error = %v", err)
	}
	if len(sub.Root.Children) != 1 || sub.Root.Children[0].Fragment != "call::int:2" {
		t.Errorf("subtree export = %+v, want the single call child", sub.Root)
	}
}

func TestFromCacheRejectsCorruptTrees(t *testing.T) {
	session := NewSession(WithMode(ModePure))

	if _, err := session.FromCache(nil); !errors.Is(err, cache.ErrCorruptCache) {
		t.Errorf("FromCache(nil) error = %v, want ErrCorruptCache", err)
	}

	bad := &cache.PortableTree{Version: 99, Root: &cache.PortableNode{HasValue: true, Ref: true}}
	if _, err := session.FromCache(bad); !errors.Is(err, cache.ErrCorruptCache) {
		t.Errorf("FromCache(bad version) error = %v, want ErrCorruptCache", err)
	}
}

func TestTwoSessionsAreIsolated(t *testing.T) {
	a := NewSession(WithMode(ModeRecord))
	b := NewSession(WithMode(ModePure))

	proxy := a.Wrap(&realThing{name: "a", attrs: map[string]Value{"x": Primitive(1)}})
	if _, err := proxy.Get("x"); err != nil {
		t.Fatalf("Get(x) error = %v", err)
	}

	// Session b never saw the recording and stays in pure mode.
	if a.Mode() != ModeRecord || b.Mode() != ModePure {
		t.Error("session modes interfered with each other")
	}
	if len(b.RecordedPaths()) != 0 {
		t.Errorf("session b recorded paths from session a: %v", b.RecordedPaths())
	}
}
