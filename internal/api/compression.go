package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// decompressMiddleware inflates compressed request bodies before they reach
// the JSON decoders. Desktop trackers batch their activity uploads and send
// them zstd-compressed; browser callers post plain JSON. Any other encoding
// is refused up front with a 415.
func decompressMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch enc := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); enc {
			case "":
				next.ServeHTTP(w, r)
			case "zstd":
				dec, err := zstd.NewReader(r.Body)
				if err != nil {
					respondError(w, http.StatusBadRequest, "Malformed zstd request body")
					return
				}
				defer dec.Close()
				r.Body = io.NopCloser(dec)
				// Downstream must see a plain body of unknown length.
				r.Header.Del("Content-Encoding")
				r.Header.Del("Content-Length")
				r.ContentLength = -1
				next.ServeHTTP(w, r)
			default:
				respondError(w, http.StatusUnsupportedMediaType,
					"Unsupported Content-Encoding: "+enc)
			}
		})
	}
}
