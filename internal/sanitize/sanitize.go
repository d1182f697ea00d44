// Package sanitize normalizes class identifiers and label text for the
// tabular, JSON and XML renderings of a class hierarchy.
package sanitize

import (
	"strings"
	"unicode"
)

var (
	controlReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	markupReplacer  = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrReplacer    = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	unmarkReplacer  = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// URIToID returns the substring after the last '/' of uri, or uri itself
// when it has no '/'.
func URIToID(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// CleanText strips trailing whitespace and replaces each tab, newline and
// carriage return with a single space.
func CleanText(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	return controlReplacer.Replace(s)
}

// EscapeMarkup escapes &, < and > for element text.
func EscapeMarkup(s string) string {
	return markupReplacer.Replace(s)
}

// EscapeAttr escapes a raw value for a double-quoted XML attribute.
func EscapeAttr(s string) string {
	return attrReplacer.Replace(s)
}

// Text cleans and escapes a label or comment. It must be applied exactly once.
func Text(s string) string {
	return EscapeMarkup(CleanText(s))
}

// UnescapeMarkup reverses EscapeMarkup. Stores that persist text produced
// by Text use it so a later reload is escaped only once.
func UnescapeMarkup(s string) string {
	return unmarkReplacer.Replace(s)
}
