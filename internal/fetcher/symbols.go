package fetcher

import "strings"

// SymbolAdapter converts a canonical symbol (exchange-suffixed, e.g. "VOD.L",
// or an index like "^FTSE") into a provider's expected format.
type SymbolAdapter func(canonical string) string

// YahooSymbol maps canonical symbols to Yahoo's format. Yahoo uses the same
// exchange suffix convention, so this is the identity mapping.
func YahooSymbol(canonical string) string {
	return canonical
}

// StooqSymbol maps canonical symbols to Stooq's format: lower case, the
// London ".L" suffix becomes ".uk", and index carets are preserved.
func StooqSymbol(canonical string) string {
	s := strings.ToLower(canonical)
	if strings.HasSuffix(s, ".l") {
		s = strings.TrimSuffix(s, ".l") + ".uk"
	}
	return s
}
