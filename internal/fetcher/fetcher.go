package fetcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"liexport/pkg/apify"
	"liexport/pkg/dates"
	"liexport/pkg/errors"
	"liexport/pkg/logger"
)

// PostSource is the actor call the fetcher depends on
type PostSource interface {
	FetchPosts(ctx context.Context, token string, input apify.RunInput) ([]apify.Post, error)
}

// TokenSource supplies the credential for the actor
type TokenSource interface {
	Token() (string, error)
}

// Policy tunes the second, wider fetch pass
type Policy struct {
	// Second-pass ceiling is max(RetryFloor, target*RetryMultiplier)
	RetryFloor      int
	RetryMultiplier int
	// The first batch counts as capped once it holds min(target, CeilingThreshold) items
	CeilingThreshold int
}

// DefaultPolicy returns the empirically chosen widening parameters
func DefaultPolicy() Policy {
	return Policy{
		RetryFloor:       10000,
		RetryMultiplier:  2,
		CeilingThreshold: 1000,
	}
}

// RetryCeiling returns the total_posts value used for the second pass
func (p Policy) RetryCeiling(target int) int {
	return max(p.RetryFloor, target*p.RetryMultiplier)
}

// DateRange is an inclusive window of whole days
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange expands the calendar days of from and to into
// [from 00:00, to 23:59:59.999999999] in loc
func NewDateRange(from, to time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	return DateRange{
		Start: dates.StartOfDay(from, loc),
		End:   dates.EndOfDay(to, loc),
	}
}

// Contains reports whether t lies within the range, bounds included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Request describes one bulk fetch
type Request struct {
	Username    string
	Range       DateRange
	TargetTotal int
	PerPage     int
}

// Result is the outcome of a bulk fetch
type Result struct {
	// Every record from the final batch, in actor order
	All []apify.Post
	// Records within the range, newest first
	InRange []apify.Post
	// Number of actor calls made (1 or 2)
	Requests int
	// Whether the wider second pass ran
	Widened bool
	// total_posts sent on the last call
	Ceiling int
}

// Fetcher runs the bulk fetch and range filter
type Fetcher struct {
	source   PostSource
	tokens   TokenSource
	policy   Policy
	location *time.Location
	logger   logger.Logger
	onPass   PassFunc
}

// PassFunc observes each completed actor call
type PassFunc func(pass, requested, received int)

// New creates a Fetcher. A nil location means UTC and a zero Policy
// means DefaultPolicy.
func New(source PostSource, tokens TokenSource, policy Policy, loc *time.Location, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if loc == nil {
		loc = time.UTC
	}
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	return &Fetcher{
		source:   source,
		tokens:   tokens,
		policy:   policy,
		location: loc,
		logger:   log,
	}
}

// OnPass registers fn to be called after every successful actor call
func (f *Fetcher) OnPass(fn PassFunc) {
	f.onPass = fn
}

// Fetch asks the actor for up to req.TargetTotal posts, widens the request
// once if the batch may not reach back to the range start, then returns
// the batch together with its in-range subset.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	token, err := f.tokens.Token()
	if err != nil {
		return nil, errors.Input("resolve token", "%v", err)
	}
	if token == "" {
		return nil, errors.Input("resolve token", "apify token is required")
	}

	log := f.logger.WithField("username", req.Username)

	batch, err := f.fetchPass(ctx, log, token, req, req.TargetTotal, 1)
	if err != nil {
		return nil, err
	}
	result := &Result{Requests: 1, Ceiling: req.TargetTotal}

	if len(batch) > 0 {
		d := f.decide(batch, req)
		log.DebugWithFields("evaluated first batch", map[string]interface{}{
			"received":          len(batch),
			"no_parsed_dates":   d.noParsedDates,
			"start_not_covered": d.startNotCovered,
			"hit_ceiling":       d.hitCeiling,
		})

		if d.widen() {
			ceiling := f.policy.RetryCeiling(req.TargetTotal)
			log.InfoWithFields("batch may not reach range start, widening request", map[string]interface{}{
				"ceiling": ceiling,
			})

			batch, err = f.fetchPass(ctx, log, token, req, ceiling, 2)
			if err != nil {
				return nil, err
			}
			result.Requests = 2
			result.Widened = true
			result.Ceiling = ceiling
		}
	}

	result.All = batch
	result.InRange = f.filterAndSort(batch, req.Range)

	log.InfoWithFields("bulk fetch finished", map[string]interface{}{
		"total":    len(result.All),
		"in_range": len(result.InRange),
		"requests": result.Requests,
	})

	return result, nil
}

func (f *Fetcher) fetchPass(ctx context.Context, log logger.Logger, token string, req Request, total, pass int) ([]apify.Post, error) {
	posts, err := f.source.FetchPosts(ctx, token, apify.RunInput{
		Username:   req.Username,
		Limit:      req.PerPage,
		TotalPosts: total,
	})
	if err != nil {
		log.WithError(err).WithField("pass", pass).Error("actor call failed")
		return nil, err
	}
	logger.LogFetchPass(log, req.Username, pass, total, len(posts))
	if f.onPass != nil {
		f.onPass(pass, total, len(posts))
	}
	return posts, nil
}

// decision holds the three conditions behind the widening heuristic
type decision struct {
	noParsedDates   bool
	startNotCovered bool
	hitCeiling      bool
}

// widen is true when nothing could be dated, or when the oldest post is
// still newer than the start and the batch looks truncated by the ceiling
func (d decision) widen() bool {
	return d.noParsedDates || (d.startNotCovered && d.hitCeiling)
}

func (f *Fetcher) decide(batch []apify.Post, req Request) decision {
	var oldest time.Time
	parsed := 0
	for _, p := range batch {
		t, ok := dates.Parse(p.PostedAt(), f.location)
		if !ok {
			continue
		}
		if parsed == 0 || t.Before(oldest) {
			oldest = t
		}
		parsed++
	}

	if parsed == 0 {
		return decision{noParsedDates: true}
	}
	return decision{
		startNotCovered: oldest.After(req.Range.Start),
		hitCeiling:      len(batch) >= min(req.TargetTotal, f.policy.CeilingThreshold),
	}
}

type datedPost struct {
	post apify.Post
	at   time.Time
}

// filterAndSort keeps posts dated inside r, newest first. Ties keep
// batch order.
func (f *Fetcher) filterAndSort(batch []apify.Post, r DateRange) []apify.Post {
	dated := make([]datedPost, 0, len(batch))
	for _, p := range batch {
		t, ok := dates.Parse(p.PostedAt(), f.location)
		if !ok || !r.Contains(t) {
			continue
		}
		dated = append(dated, datedPost{post: p, at: t})
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].at.After(dated[j].at)
	})

	out := make([]apify.Post, len(dated))
	for i, d := range dated {
		out[i] = d.post
	}
	return out
}

func validate(req Request) error {
	if req.Username == "" {
		return errors.Input("fetch", "username is required")
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		return errors.Input("fetch", "per page must be between 1 and 100, got %d", req.PerPage)
	}
	if req.TargetTotal < 1 {
		return errors.Input("fetch", "target total must be positive, got %d", req.TargetTotal)
	}
	if req.Range.End.Before(req.Range.Start) {
		return errors.Input("fetch", "start date %s is after end date %s",
			req.Range.Start.Format("2006-01-02"), req.Range.End.Format("2006-01-02"))
	}
	return nil
}

// String summarises a result for logs and the CLI
func (r *Result) String() string {
	return fmt.Sprintf("Retrieved %d total posts from Apify; %d within selected range", len(r.All), len(r.InRange))
}
