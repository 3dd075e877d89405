package protocol

import "strings"

// acceptedMIMEs are the base MIME types a BRC-20 inscription body may be
// declared under. A charset parameter ("; charset=utf-8") is tolerated and
// stripped before the comparison.
var acceptedMIMEs = map[string]struct{}{
	"text/plain":       {},
	"application/json": {},
}

func isAcceptedMIME(declared string) bool {
	base, _, _ := strings.Cut(declared, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	_, ok := acceptedMIMEs[base]
	return ok
}
