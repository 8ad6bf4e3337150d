package proxycache

import "fmt"

// FakePlaceholder is the fixed rendering of every proxy under ReprFake. It
// is identical for all proxies so that printing one can never leak cache
// structure into logs or reports.
const FakePlaceholder = "<cachingproxy.Proxy>"

// String implements fmt.Stringer. Under ReprReal it delegates to the real
// object's own rendering; under ReprFake it returns the fixed placeholder
// without evaluating anything. A proxy with no real object always renders
// as the placeholder, since there is nothing safe to delegate to.
func (p *Proxy) String() string {
	if p.session.ReprMode() == ReprFake {
		return FakePlaceholder
	}
	if p.real == nil {
		return FakePlaceholder
	}
	if s, ok := p.real.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", p.real)
}
