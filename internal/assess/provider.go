package assess

import "fmt"

// Provider selects which assessment backend serves a call. It is a closed
// enum; resolution into an attempt order happens in Resolve.
type Provider int

const (
	ProviderAuto Provider = iota
	ProviderPrimary
	ProviderSecondary
)

// String returns the wire name of the provider.
func (p Provider) String() string {
	switch p {
	case ProviderAuto:
		return "auto"
	case ProviderPrimary:
		return "primary"
	case ProviderSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// ParseProvider maps a wire name to the enum. Unknown names are an error
// rather than a silent default.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "", "auto":
		return ProviderAuto, nil
	case "primary":
		return ProviderPrimary, nil
	case "secondary":
		return ProviderSecondary, nil
	default:
		return ProviderAuto, fmt.Errorf("unknown provider %q", s)
	}
}

// Resolve returns the ordered backends to attempt. Auto means primary with
// secondary fallback; an explicit selection pins a single backend.
func (p Provider) Resolve() []Provider {
	switch p {
	case ProviderPrimary:
		return []Provider{ProviderPrimary}
	case ProviderSecondary:
		return []Provider{ProviderSecondary}
	default:
		return []Provider{ProviderPrimary, ProviderSecondary}
	}
}
