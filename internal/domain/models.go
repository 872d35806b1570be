// Package domain contains the payloads exchanged with the Lambda runtime.
package domain

// KeyPrefix namespaces short-link objects inside the bucket.
const KeyPrefix = "u/"

// ObjectKey returns the bucket key for a short id.
func ObjectKey(shortID string) string {
	return KeyPrefix + shortID
}

// ShortenRequest is the input to the shortener Lambda.
type ShortenRequest struct {
	URLLong   string `json:"url_long"`
	CDNPrefix string `json:"cdn_prefix"`
}

// ShortenResponse is the output from the shortener Lambda.
type ShortenResponse struct {
	URLShort string `json:"url_short"`
	URLLong  string `json:"url_long"`
}

// RedirectRequest is the input to the redirect Lambda. Key is the bare
// short id, without KeyPrefix.
type RedirectRequest struct {
	Key string `json:"Key"`
}

// RedirectResponse is the output from the redirect Lambda.
// Exactly one of Redirect and Error is set.
type RedirectResponse struct {
	Redirect string `json:"Redirect,omitempty"`
	Error    string `json:"Error,omitempty"`
}
