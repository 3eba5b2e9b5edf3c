package query

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Linker renders the URL of another page of the same listing.
type Linker func(page, limit int) string

// RequestLinker links back to r's path with pageKey and limitKey substituted.
// Other query parameters are preserved. An empty limitKey leaves the limit
// out, for listings with a fixed page size.
func RequestLinker(r *http.Request, pageKey, limitKey string) Linker {
	base := requestBase(r)
	rest := url.Values{}
	for key, vals := range r.URL.Query() {
		if key == pageKey || key == limitKey {
			continue
		}
		rest[key] = vals
	}

	return func(page, limit int) string {
		var b strings.Builder
		b.WriteString(base)
		b.WriteString("?")
		b.WriteString(url.QueryEscape(pageKey))
		b.WriteString("=")
		b.WriteString(strconv.Itoa(page))
		if limitKey != "" {
			b.WriteString("&")
			b.WriteString(url.QueryEscape(limitKey))
			b.WriteString("=")
			b.WriteString(strconv.Itoa(limit))
		}
		if len(rest) > 0 {
			b.WriteString("&")
			b.WriteString(encodeSorted(rest))
		}
		return b.String()
	}
}

func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host + r.URL.EscapedPath()
}

func encodeSorted(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, val := range v[k] {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(val))
		}
	}
	return strings.Join(parts, "&")
}
