package fetch

import (
	"errors"
	"net/http"
)

// errTooManyRedirects is returned when the redirect hop limit is exceeded.
// The client maps it to a fetch Error of kind KindTooManyRedirects.
var errTooManyRedirects = errors.New("too many redirects")

// redirectPolicy returns a CheckRedirect function that follows redirects
// until the number of hops reaches maxHops, then returns errTooManyRedirects.
// When maxHops is <= 0, the default http client limit (10) applies.
func redirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if maxHops > 0 && len(via) >= maxHops {
			return errTooManyRedirects
		}
		return nil
	}
}
