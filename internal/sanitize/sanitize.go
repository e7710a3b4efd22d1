// Package sanitize strips untrusted markup down to a fixed allow-list.
//
// Disallowed tags are removed and their text is kept, except for raw-text
// elements such as script and style whose content is dropped as well.
// Disallowed attributes are removed from allowed tags. Nothing is escaped
// into visible markup.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// AllowedTags is the set of elements that survive Comment.
var AllowedTags = []string{
	"a", "abbr", "acronym", "address", "b", "br", "div", "dl", "dt",
	"em", "h1", "h2", "h3", "h4", "h5", "h6", "hr", "i", "img",
	"li", "ol", "p", "pre", "q", "s", "small", "strike",
	"span", "sub", "sup", "table", "tbody", "td", "tfoot", "th",
	"thead", "tr", "tt", "u", "ul",
}

// AllowedAttrs maps an element to the attributes it may keep.
var AllowedAttrs = map[string][]string{
	"a":   {"href", "target", "title"},
	"img": {"src", "alt", "width", "height"},
}

var commentPolicy = NewPolicy()

// NewPolicy builds the comment allow-list policy.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	for tag, attrs := range AllowedAttrs {
		p.AllowAttrs(attrs...).OnElements(tag)
	}
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// Comment sanitizes user-submitted comment text. Safe for concurrent use.
func Comment(text string) string {
	return commentPolicy.Sanitize(text)
}
