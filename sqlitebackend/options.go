package sqlitebackend

import (
	"github.com/sqlkit/sqlcore/log"
)

const defaultInlineLimit = 4096

type Option func(b *Backend)

// WithInlineLimit sets the size above which BLOB and CLOB values are sent as
// locators instead of inline data. Negative values are ignored.
func WithInlineLimit(n int) Option {
	return func(b *Backend) {
		if n >= 0 {
			b.inlineLimit = n
		}
	}
}

// WithLogger logs every served request at DEBUG level and every failed one
// at WARN level.
func WithLogger(l log.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}
