// Package netx holds helpers for turning user input into remote addresses.
package netx

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cryptonaut/internal/common"
)

const (
	secureScheme   = "https://"
	insecureScheme = "http://"
)

// SplitURL separates a combined "host/path" target into the base URL of the
// remote service and the node path inside it.
//
// The https:// prefix is optional; http:// is rejected with
// common.ErrInvalidURL. When no path follows the host the path defaults to "/".
//
//	SplitURL("dracoon.team/Room/Folder") // "https://dracoon.team", "/Room/Folder"
//	SplitURL("https://dracoon.team")     // "https://dracoon.team", "/"
func SplitURL(raw string) (baseURL, path string, err error) {
	if strings.HasPrefix(raw, insecureScheme) {
		return "", "", fmt.Errorf("%w: %s", common.ErrInvalidURL, raw)
	}

	stripped := strings.TrimPrefix(raw, secureScheme)

	if i := strings.IndexByte(stripped, '/'); i >= 0 {
		return secureScheme + stripped[:i], stripped[i:], nil
	}

	return secureScheme + stripped, "/", nil
}
