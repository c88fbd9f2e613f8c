package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DeriveKey computes the deterministic cache key for a query execution:
// a hash of the rendered SQL text, its positional parameters, the
// adapter name, and an optional tenant discriminator.
func DeriveKey(adapterName, sqlText string, params []any, tenant string) string {
	var b strings.Builder
	b.WriteString(adapterName)
	b.WriteByte('\x00')
	b.WriteString(tenant)
	b.WriteByte('\x00')
	b.WriteString(sqlText)
	for _, p := range params {
		b.WriteByte('\x00')
		fmt.Fprintf(&b, "%v", p)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
