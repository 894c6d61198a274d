package apify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RunInput is the JSON body accepted by the linkedin-profile-posts actor
type RunInput struct {
	Username string `json:"username"`
	// Items per page; the actor caps this at 100
	Limit int `json:"limit"`
	// Overall ceiling the actor paginates up to
	TotalPosts int `json:"total_posts"`
}

// Post is one record returned by the actor. The schema belongs to the
// actor and drifts, so it is kept as decoded JSON and read by path.
type Post map[string]interface{}

// Well-known paths inside a Post
const (
	PathPostedAt         = "posted_at.date"
	PathPostedAtRelative = "posted_at.relative"
	PathURL              = "url"
	PathPostType         = "post_type"
	PathText             = "text"
	PathTotalReactions   = "stats.total_reactions"
	PathLike             = "stats.like"
	PathSupport          = "stats.support"
	PathLove             = "stats.love"
	PathInsight          = "stats.insight"
	PathCelebrate        = "stats.celebrate"
	PathFunny            = "stats.funny"
	PathComments         = "stats.comments"
	PathReposts          = "stats.reposts"
	PathMediaType        = "media.type"
)

// Lookup walks a dotted path through nested objects. It reports false
// when any segment is missing or a non-object is hit on the way.
func (p Post) Lookup(path string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(p)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String renders the value at path as a table cell. Missing paths and
// JSON null become the empty string; nested values are re-encoded as JSON.
func (p Post) String(path string) string {
	v, ok := p.Lookup(path)
	if !ok {
		return ""
	}
	return formatValue(v)
}

// PostedAt returns the raw publish timestamp, or nil when absent
func (p Post) PostedAt() interface{} {
	v, _ := p.Lookup(PathPostedAt)
	return v
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}
