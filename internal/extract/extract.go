// Package extract maps external video URLs to canonical per-host identifiers.
//
// Extraction is purely syntactic: no network access, no side effects. An
// unrecognised URL yields ok == false and the caller decides what to do.
package extract

// Extractor recognises URLs of a single host service.
type Extractor interface {
	// HostService is the tag stored alongside extracted identifiers.
	HostService() string
	// ExtractID returns the canonical identifier for rawURL.
	ExtractID(rawURL string) (id string, ok bool)
}
