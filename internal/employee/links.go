package employee

import (
	"strings"
	"unicode"
)

const defaultSection = "dashboard"

// Linker builds admin page URLs from legacy tab class names such as
// "AdminOrders" or "AdminCustomerThreads".
type Linker struct {
	BasePath string
}

// NewLinker returns a Linker rooted at basePath ("/admin" when empty).
func NewLinker(basePath string) Linker {
	basePath = "/" + strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "/" {
		basePath = "/admin"
	}
	return Linker{BasePath: basePath}
}

// DefaultPage returns the landing page URL for tab.
func (l Linker) DefaultPage(tab string) string {
	base := l.BasePath
	if base == "" {
		base = "/admin"
	}
	return base + "/" + Section(tab)
}

// Section converts a tab class name to its URL segment: "AdminCustomerThreads"
// becomes "customer-threads". Unusable names map to the dashboard.
func Section(tab string) string {
	tab = strings.TrimPrefix(strings.TrimSpace(tab), "Admin")
	if tab == "" {
		return defaultSection
	}
	var b strings.Builder
	for i, r := range tab {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			return defaultSection
		}
	}
	return b.String()
}
