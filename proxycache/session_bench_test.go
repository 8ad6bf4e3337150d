package proxycache

import "testing"

func BenchmarkRecordAttribute(b *testing.B) {
	session := NewSession(WithMode(ModeRecord))
	proxy := session.Wrap(newScenarioObject())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := proxy.Get("x"); err != nil {
			b.Fatalf("Get(x) error = %v", err)
		}
	}
}

func BenchmarkPureReplayCall(b *testing.B) {
	record := NewSession(WithMode(ModeRecord))
	proxy := record.Wrap(newScenarioObject())
	yAny, err := proxy.Get("y")
	if err != nil {
		b.Fatalf("Get(y) error = %v", err)
	}
	if _, err := yAny.(*Proxy).Call([]any{2}, nil); err != nil {
		b.Fatalf("y(2) error = %v", err)
	}
	tree, err := record.ToCache(proxy)
	if err != nil {
		b.Fatalf("ToCache() error = %v", err)
	}

	replay := NewSession(WithMode(ModePure))
	ghost, err := replay.FromCache(tree)
	if err != nil {
		b.Fatalf("FromCache() error = %v", err)
	}
	ghostY, err := ghost.Get("y")
	if err != nil {
		b.Fatalf("replayed Get(y) error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ghostY.(*Proxy).Call([]any{2}, nil); err != nil {
			b.Fatalf("replayed y(2) error = %v", err)
		}
	}
}
