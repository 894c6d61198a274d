package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"liexport/pkg/apify"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// MIME types of the export formats
const (
	MIMEType     = "text/csv"
	MIMETypeJSON = "application/json"
)

// DefaultPreviewCount is how many records Preview shows by default
const DefaultPreviewCount = 3

// Column maps one output header to a path inside a post
type Column struct {
	Header string
	Path   string
}

// Columns is the fixed export schema, in output order
var Columns = []Column{
	{"Post Date", apify.PathPostedAt},
	{"posted_at/relative", apify.PathPostedAtRelative},
	{"url", apify.PathURL},
	{"Post Type", apify.PathPostType},
	{"Post Content", apify.PathText},
	{"total reactions", apify.PathTotalReactions},
	{"like", apify.PathLike},
	{"support", apify.PathSupport},
	{"love", apify.PathLove},
	{"insightful", apify.PathInsight},
	{"celebrate", apify.PathCelebrate},
	{"comments", apify.PathComments},
	{"reposts", apify.PathReposts},
	{"funny", apify.PathFunny},
	{"Media Type", apify.PathMediaType},
}

// Headers returns the header row
func Headers() []string {
	headers := make([]string, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Header
	}
	return headers
}

// Row flattens one post into cells. Missing paths become empty cells.
func Row(p apify.Post) []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		row[i] = p.String(c.Path)
	}
	return row
}

// ParseFormat accepts "csv" or "json" in any case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or json)", s)
	}
}

// MIME returns the content type of f
func (f Format) MIME() string {
	if f == FormatJSON {
		return MIMETypeJSON
	}
	return MIMEType
}

// WriteCSV writes the header row and one row per post, in input order
func WriteCSV(w io.Writer, posts []apify.Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, p := range posts {
		if err := cw.Write(Row(p)); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// CSV renders posts as CSV bytes
func CSV(posts []apify.Post) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, posts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the posts unchanged as an indented JSON array
func WriteJSON(w io.Writer, posts []apify.Post) error {
	if posts == nil {
		posts = []apify.Post{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// Render writes posts in the given format
func Render(w io.Writer, format Format, posts []apify.Post) error {
	switch format {
	case FormatCSV, "":
		return WriteCSV(w, posts)
	case FormatJSON:
		return WriteJSON(w, posts)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Filename returns linkedin_posts_<start>_to_<end>.<ext>
func Filename(start, end time.Time, format Format) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("linkedin_posts_%s_to_%s.%s",
		start.Format("2006-01-02"), end.Format("2006-01-02"), format)
}

// Preview returns the first n posts as indented JSON. n <= 0 means
// DefaultPreviewCount.
func Preview(posts []apify.Post, n int) (string, error) {
	if n <= 0 {
		n = DefaultPreviewCount
	}
	if len(posts) < n {
		n = len(posts)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, posts[:n]); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
