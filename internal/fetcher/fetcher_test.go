package fetcher

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liexport/pkg/apify"
	"liexport/pkg/errors"
	"liexport/pkg/logger"
)

// fakeSource replays one response per call and records the inputs
type fakeSource struct {
	responses [][]apify.Post
	errs      []error
	calls     []apify.RunInput
	tokens    []string
}

func (f *fakeSource) FetchPosts(ctx context.Context, token string, input apify.RunInput) ([]apify.Post, error) {
	i := len(f.calls)
	f.calls = append(f.calls, input)
	f.tokens = append(f.tokens, token)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return []apify.Post{}, nil
}

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token() (string, error) { return "", fmt.Errorf("keychain locked") }

func post(date string, id int) apify.Post {
	p := apify.Post{"url": fmt.Sprintf("https://www.linkedin.com/posts/%d", id)}
	if date != "" {
		p["posted_at"] = map[string]interface{}{"date": date, "relative": "1w"}
	}
	return p
}

func urls(posts []apify.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.String(apify.PathURL)
	}
	return out
}

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func newRequest(from, to string, target int) Request {
	return Request{
		Username:    "janedoe",
		Range:       NewDateRange(day(from), day(to), time.UTC),
		TargetTotal: target,
		PerPage:     100,
	}
}

func newFetcher(src PostSource) *Fetcher {
	return New(src, staticToken("tok"), DefaultPolicy(), time.UTC, logger.NewTestLogger())
}

func TestFetchEmptyBatchDoesNotWiden(t *testing.T) {
	src := &fakeSource{responses: [][]apify.Post{{}}}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 100))
	require.NoError(t, err)

	assert.Len(t, src.calls, 1)
	assert.Empty(t, res.All)
	assert.Empty(t, res.InRange)
	assert.False(t, res.Widened)
	assert.Equal(t, 1, res.Requests)
}

func TestFetchSendsRequestedSizing(t *testing.T) {
	src := &fakeSource{responses: [][]apify.Post{{post("2024-12-01 08:00:00", 1)}}}

	req := newRequest("2025-01-01", "2025-06-30", 250)
	req.PerPage = 40
	_, err := newFetcher(src).Fetch(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, src.calls, 1)
	assert.Equal(t, apify.RunInput{Username: "janedoe", Limit: 40, TotalPosts: 250}, src.calls[0])
	assert.Equal(t, "tok", src.tokens[0])
}

func TestFetchWidensWhenCappedBeforeStart(t *testing.T) {
	first := make([]apify.Post, 1000)
	for i := range first {
		first[i] = post("2025-05-01 12:00:00", i)
	}
	second := []apify.Post{
		post("2025-05-01 12:00:00", 1),
		post("2024-11-01 12:00:00", 2),
	}
	src := &fakeSource{responses: [][]apify.Post{first, second}}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 1000))
	require.NoError(t, err)

	require.Len(t, src.calls, 2)
	assert.Equal(t, 10000, src.calls[1].TotalPosts)
	assert.Equal(t, 100, src.calls[1].Limit)
	assert.True(t, res.Widened)
	assert.Equal(t, 2, res.Requests)
	assert.Equal(t, 10000, res.Ceiling)

	// The second batch replaces the first
	assert.Len(t, res.All, 2)
	assert.Equal(t, []string{"https://www.linkedin.com/posts/1"}, urls(res.InRange))
}

func TestFetchWidenCeilingScalesWithTarget(t *testing.T) {
	first := make([]apify.Post, 1000)
	for i := range first {
		first[i] = post("2025-05-01 12:00:00", i)
	}
	src := &fakeSource{responses: [][]apify.Post{first, nil}}

	// min(8000, 1000) = 1000 items is enough to look capped
	_, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 8000))
	require.NoError(t, err)

	require.Len(t, src.calls, 2)
	assert.Equal(t, 16000, src.calls[1].TotalPosts)
}

func TestFetchWidensWhenNothingParses(t *testing.T) {
	first := []apify.Post{post("", 1), post("three weeks ago", 2)}
	src := &fakeSource{responses: [][]apify.Post{first, first}}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 50))
	require.NoError(t, err)

	require.Len(t, src.calls, 2)
	assert.Equal(t, 10000, src.calls[1].TotalPosts)
	assert.Len(t, res.All, 2)
	assert.Empty(t, res.InRange)
}

func TestFetchNeverMoreThanTwoCalls(t *testing.T) {
	undated := []apify.Post{post("", 1)}
	src := &fakeSource{responses: [][]apify.Post{undated, undated, undated}}

	_, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 50))
	require.NoError(t, err)
	assert.Len(t, src.calls, 2)
}

func TestFetchNoWiden(t *testing.T) {
	tests := []struct {
		name   string
		target int
		batch  []apify.Post
	}{
		{
			name:   "oldest post already before start",
			target: 2,
			batch:  []apify.Post{post("2025-03-01 00:00:00", 1), post("2024-12-31 23:00:00", 2)},
		},
		{
			name:   "oldest post exactly at start",
			target: 1,
			batch:  []apify.Post{post("2025-01-01 00:00:00", 1)},
		},
		{
			name:   "after start but batch below ceiling",
			target: 100,
			batch:  []apify.Post{post("2025-03-01 00:00:00", 1), post("2025-02-01 00:00:00", 2)},
		},
		{
			name:   "one dated post is enough to skip the no-dates rule",
			target: 100,
			batch:  []apify.Post{post("", 1), post("2024-06-01 00:00:00", 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{responses: [][]apify.Post{tt.batch}}
			res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", tt.target))
			require.NoError(t, err)
			assert.Len(t, src.calls, 1)
			assert.False(t, res.Widened)
		})
	}
}

func TestFetchUpstreamErrorAborts(t *testing.T) {
	src := &fakeSource{errs: []error{errors.Upstream(500, "Internal Server Error")}}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 100))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Len(t, src.calls, 1)
	assert.Equal(t, errors.KindUpstream, errors.KindOf(err))
	assert.Equal(t, 500, errors.StatusCode(err))
	assert.Contains(t, err.Error(), "Internal Server Error")
}

func TestFetchSecondPassErrorAborts(t *testing.T) {
	src := &fakeSource{
		responses: [][]apify.Post{{post("", 1)}},
		errs:      []error{nil, errors.Upstream(502, "bad gateway")},
	}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 100))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 502, errors.StatusCode(err))
}

func TestFetchFiltersInclusiveRange(t *testing.T) {
	batch := []apify.Post{
		post("2025-01-31 23:59:59", 1), // end of last day
		post("2025-02-01 00:00:00", 2), // day after
		post("2025-01-01 00:00:00", 3), // start of first day
		post("2024-12-31 23:59:59", 4), // day before
		post("not a date", 5),
		post("", 6),
		post("2025-01-15T10:00:00Z", 7),
	}
	src := &fakeSource{responses: [][]apify.Post{batch}}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-01-31", 100))
	require.NoError(t, err)

	assert.Len(t, res.All, 7)
	assert.Equal(t, []string{
		"https://www.linkedin.com/posts/1",
		"https://www.linkedin.com/posts/7",
		"https://www.linkedin.com/posts/3",
	}, urls(res.InRange))

	for _, p := range res.InRange {
		assert.Contains(t, res.All, p)
	}
}

func TestFetchSortIsStableOnTies(t *testing.T) {
	batch := []apify.Post{
		post("2025-03-01 09:00:00", 1),
		post("2025-03-02 09:00:00", 2),
		post("2025-03-01 09:00:00", 3),
		post("2025-03-02 09:00:00", 4),
		post("2025-03-01T09:00:00Z", 5),
	}
	src := &fakeSource{responses: [][]apify.Post{batch}}

	res, err := newFetcher(src).Fetch(context.Background(), newRequest("2025-01-01", "2025-12-31", 5))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.linkedin.com/posts/2",
		"https://www.linkedin.com/posts/4",
		"https://www.linkedin.com/posts/1",
		"https://www.linkedin.com/posts/3",
		"https://www.linkedin.com/posts/5",
	}, urls(res.InRange))
}

func TestFetchRespectsTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 16:00 UTC on Jan 31 is already Feb 1 in Tokyo
	batch := []apify.Post{post("2025-01-31T16:00:00Z", 1)}
	src := &fakeSource{responses: [][]apify.Post{batch}}

	f := New(src, staticToken("tok"), DefaultPolicy(), tokyo, logger.NewNopLogger())
	res, err := f.Fetch(context.Background(), Request{
		Username:    "janedoe",
		Range:       NewDateRange(day("2025-01-01"), day("2025-01-31"), tokyo),
		TargetTotal: 1,
		PerPage:     1,
	})
	require.NoError(t, err)
	assert.Empty(t, res.InRange)
}

func TestFetchTokenProblemsAreInputErrors(t *testing.T) {
	src := &fakeSource{}

	f := New(src, failingToken{}, DefaultPolicy(), time.UTC, logger.NewNopLogger())
	_, err := f.Fetch(context.Background(), newRequest("2025-01-01", "2025-01-31", 10))
	require.Error(t, err)
	assert.Equal(t, errors.KindInput, errors.KindOf(err))

	f = New(src, staticToken(""), DefaultPolicy(), time.UTC, logger.NewNopLogger())
	_, err = f.Fetch(context.Background(), newRequest("2025-01-01", "2025-01-31", 10))
	require.Error(t, err)
	assert.Equal(t, errors.KindInput, errors.KindOf(err))

	assert.Empty(t, src.calls)
}

func TestFetchValidatesRequest(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
	}{
		{"missing username", func(r *Request) { r.Username = "" }},
		{"per page zero", func(r *Request) { r.PerPage = 0 }},
		{"per page over 100", func(r *Request) { r.PerPage = 101 }},
		{"target zero", func(r *Request) { r.TargetTotal = 0 }},
		{"inverted range", func(r *Request) { r.Range = NewDateRange(day("2025-02-01"), day("2025-01-01"), time.UTC) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			req := newRequest("2025-01-01", "2025-01-31", 10)
			tt.modify(&req)

			_, err := newFetcher(src).Fetch(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, errors.KindInput, errors.KindOf(err))
			assert.Empty(t, src.calls)
		})
	}
}

func TestPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 10000, p.RetryCeiling(1000))
	assert.Equal(t, 10000, p.RetryCeiling(5000))
	assert.Equal(t, 40000, p.RetryCeiling(20000))

	custom := Policy{RetryFloor: 500, RetryMultiplier: 3, CeilingThreshold: 50}
	assert.Equal(t, 600, custom.RetryCeiling(200))

	f := New(&fakeSource{}, staticToken("t"), Policy{}, nil, nil)
	assert.Equal(t, DefaultPolicy(), f.policy)
	assert.Equal(t, time.UTC, f.location)
}

func TestFetchCustomThreshold(t *testing.T) {
	batch := []apify.Post{post("2025-03-01 00:00:00", 1), post("2025-02-01 00:00:00", 2)}
	src := &fakeSource{responses: [][]apify.Post{batch, batch}}

	policy := Policy{RetryFloor: 300, RetryMultiplier: 2, CeilingThreshold: 2}
	f := New(src, staticToken("t"), policy, time.UTC, logger.NewNopLogger())

	res, err := f.Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 100))
	require.NoError(t, err)
	require.Len(t, src.calls, 2)
	assert.Equal(t, 300, src.calls[1].TotalPosts)
	assert.True(t, res.Widened)
}

func TestResultString(t *testing.T) {
	r := &Result{All: make([]apify.Post, 12), InRange: make([]apify.Post, 5)}
	assert.Equal(t, "Retrieved 12 total posts from Apify; 5 within selected range", r.String())
}

func TestDateRangeContains(t *testing.T) {
	r := NewDateRange(day("2025-01-01"), day("2025-01-01"), time.UTC)
	assert.True(t, r.Contains(day("2025-01-01")))
	assert.True(t, r.Contains(day("2025-01-02").Add(-time.Nanosecond)))
	assert.False(t, r.Contains(day("2025-01-02")))
	assert.False(t, r.Contains(day("2025-01-01").Add(-time.Nanosecond)))
}

func TestFetchReportsPasses(t *testing.T) {
	src := &fakeSource{responses: [][]apify.Post{{post("", 1)}, {post("", 1), post("", 2)}}}

	type pass struct{ n, requested, received int }
	var seen []pass

	f := newFetcher(src)
	f.OnPass(func(n, requested, received int) {
		seen = append(seen, pass{n, requested, received})
	})

	_, err := f.Fetch(context.Background(), newRequest("2025-01-01", "2025-06-30", 100))
	require.NoError(t, err)
	assert.Equal(t, []pass{{1, 100, 1}, {2, 10000, 2}}, seen)
}
