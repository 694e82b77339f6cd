package staff

import "strings"

// SafeKey turns an identity string into a document-key-safe form. Firestore
// keys tolerate most characters but the web client treats "@" and "." as
// path separators, so both are substituted.
func SafeKey(identity string) string {
	s := strings.TrimSpace(identity)
	s = strings.ReplaceAll(s, "@", "_at_")
	s = strings.ReplaceAll(s, ".", "_dot_")
	return s
}
