package poster

import (
	"errors"
	"fmt"
)

// ErrUnknownPostType is returned for post types outside the recognized set.
var ErrUnknownPostType = errors.New("unknown post type")

// PostType selects the message template and target site.
type PostType string

const (
	PostTypeSepsis PostType = "sepsis"
	PostTypeARDS   PostType = "ards"

	// DefaultPostType is used when the invocation payload names none.
	DefaultPostType = PostTypeSepsis
)

// template is the fixed per-type content of a post.
type template struct {
	label    string
	headline string
	siteURL  string
	hashtags string
}

var templates = map[PostType]template{
	PostTypeSepsis: {
		label:    "Sepsis",
		headline: "✅Today's Sepsis Research / 本日の敗血症",
		siteURL:  "https://www.sepsis-search.com",
		hashtags: "#Sepsis #敗血症",
	},
	PostTypeARDS: {
		label:    "ARDS",
		headline: "✅Today's ARDS Research / 本日のARDS",
		siteURL:  "https://www.ards-search.com",
		hashtags: "#ARDS #急性呼吸窮迫症候群",
	},
}

// PostTypes returns every recognized post type in a stable order.
func PostTypes() []PostType {
	return []PostType{PostTypeSepsis, PostTypeARDS}
}

// ParsePostType resolves a payload value. The empty string resolves to
// DefaultPostType; anything unrecognized is rejected, never coerced.
func ParsePostType(s string) (PostType, error) {
	if s == "" {
		return DefaultPostType, nil
	}
	pt := PostType(s)
	if !pt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPostType, s)
	}
	return pt, nil
}

// Valid reports whether pt is a recognized post type.
func (pt PostType) Valid() bool {
	_, ok := templates[pt]
	return ok
}

// Label returns the capitalized display name used in result messages.
func (pt PostType) Label() string {
	if t, ok := templates[pt]; ok {
		return t.label
	}
	return string(pt)
}

// SiteURL returns the base URL of the analysis site for pt.
func (pt PostType) SiteURL() string {
	return templates[pt].siteURL
}

func (pt PostType) String() string {
	return string(pt)
}
