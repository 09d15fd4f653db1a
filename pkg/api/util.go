package api

import (
	"net/url"
	"strings"
)

func PercentEncode(s string) string {
	s = url.QueryEscape(s)
	return strings.ReplaceAll(s, "+", "%20")
}

// PathSegment escapes s for use as a single path segment.
func PathSegment(s string) string {
	return url.PathEscape(s)
}
