package exporter

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"liexport/internal/fetcher"
	"liexport/pkg/apify"
	"liexport/pkg/config"
	"liexport/pkg/dates"
	"liexport/pkg/errors"
	"liexport/pkg/export"
	"liexport/pkg/logger"
	"liexport/pkg/metadata"
	"liexport/pkg/profile"
	"liexport/pkg/storage"
	"liexport/pkg/ui"
)

// Request is one user-initiated export
type Request struct {
	ProfileURL string
	// Calendar days; only the date part is used
	From time.Time
	To   time.Time

	PerPage     int
	TargetTotal int
	Format      export.Format

	// When set the artifact is written here instead of the output directory
	Stdout io.Writer
}

// Result describes a finished export
type Result struct {
	RunID    string
	Username string
	Fetch    *fetcher.Result

	// Empty when the artifact went to Request.Stdout
	Artifact    string
	SummaryPath string
	Preview     string
	Summary     *metadata.RunSummary
}

// Message is the one-line outcome shown to the user
func (r *Result) Message() string {
	return r.Fetch.String()
}

// Outcome converts the result for display
func (r *Result) Outcome() ui.Outcome {
	return ui.Outcome{
		Message:     r.Message(),
		Artifact:    r.Artifact,
		SummaryPath: r.SummaryPath,
		Preview:     r.Preview,
		Total:       len(r.Fetch.All),
		InRange:     len(r.Fetch.InRange),
	}
}

// Exporter runs the extract, fetch, render and save pipeline
type Exporter struct {
	cfg      *config.Config
	source   fetcher.PostSource
	tokens   fetcher.TokenSource
	progress ui.Progress
	logger   logger.Logger

	now   func() time.Time
	newID func() string
}

// New creates an Exporter over the given actor client and token source
func New(cfg *config.Config, source fetcher.PostSource, tokens fetcher.TokenSource, log logger.Logger) *Exporter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Exporter{
		cfg:      cfg,
		source:   source,
		tokens:   tokens,
		progress: ui.NopProgress{},
		logger:   log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetProgress routes run events to p
func (e *Exporter) SetProgress(p ui.Progress) {
	if p == nil {
		p = ui.NopProgress{}
	}
	e.progress = p
}

// NewRequest fills a request from configuration defaults
func (e *Exporter) NewRequest(profileURL string, from, to time.Time) Request {
	format, err := export.ParseFormat(e.cfg.Output.Format)
	if err != nil {
		format = export.FormatCSV
	}
	return Request{
		ProfileURL:  profileURL,
		From:        from,
		To:          to,
		PerPage:     e.cfg.Fetch.PerPage,
		TargetTotal: e.cfg.Fetch.TargetTotal,
		Format:      format,
	}
}

// Run executes one export. Nothing is written unless the fetch succeeds.
func (e *Exporter) Run(ctx context.Context, req Request) (*Result, error) {
	started := e.now()
	runID := e.newID()
	log := e.logger.WithField("run_id", runID)

	loc, err := e.cfg.Location()
	if err != nil {
		return nil, errors.Input("load timezone", "%v", err)
	}

	format, err := export.ParseFormat(string(req.Format))
	if err != nil {
		return nil, errors.Input("validate", "%v", err)
	}
	req.Format = format

	username, err := e.validate(req, loc)
	if err != nil {
		return nil, err
	}
	log = log.WithField("username", username)
	e.progress.Stage(ui.StageResolve, username)

	log.InfoWithFields("starting export", map[string]interface{}{
		"profile_url":  req.ProfileURL,
		"from":         req.From.Format("2006-01-02"),
		"to":           req.To.Format("2006-01-02"),
		"per_page":     req.PerPage,
		"target_total": req.TargetTotal,
		"format":       string(req.Format),
	})

	f := fetcher.New(e.source, e.tokens, fetcher.Policy{
		RetryFloor:       e.cfg.Fetch.RetryFloor,
		RetryMultiplier:  e.cfg.Fetch.RetryMultiplier,
		CeilingThreshold: e.cfg.Fetch.CeilingThreshold,
	}, loc, log)
	f.OnPass(e.progress.FetchPass)

	e.progress.Stage(ui.StageFetch, username)
	dateRange := fetcher.NewDateRange(req.From, req.To, loc)
	fetched, err := f.Fetch(ctx, fetcher.Request{
		Username:    username,
		Range:       dateRange,
		TargetTotal: req.TargetTotal,
		PerPage:     req.PerPage,
	})
	if err != nil {
		return nil, err
	}

	e.progress.Stage(ui.StageRender, string(req.Format))
	var buf bytes.Buffer
	if err := export.Render(&buf, req.Format, fetched.InRange); err != nil {
		return nil, errors.Internal("render export", err)
	}

	result := &Result{
		RunID:    runID,
		Username: username,
		Fetch:    fetched,
	}

	e.progress.Stage(ui.StageSave, "")
	if req.Stdout != nil {
		if _, err := req.Stdout.Write(buf.Bytes()); err != nil {
			return nil, errors.Internal("write export", err)
		}
	} else {
		path, err := e.save(export.Filename(dateRange.Start, dateRange.End, req.Format), buf.Bytes())
		if err != nil {
			return nil, err
		}
		result.Artifact = path
	}

	preview, err := export.Preview(fetched.InRange, e.cfg.Output.PreviewCount)
	if err != nil {
		log.WithError(err).Warn("failed to build preview")
	}
	result.Preview = preview

	result.Summary = e.summarize(runID, username, req, dateRange, fetched, result.Artifact, started)
	if e.cfg.Output.SaveSummary && result.Artifact != "" {
		path, err := result.Summary.Save(result.Artifact, e.cfg.Output.SummaryFormat)
		if err != nil {
			log.WithError(err).Warn("failed to write run summary")
			e.progress.LogWarning("could not write run summary: %v", err)
		} else {
			result.SummaryPath = path
		}
	}

	logger.LogRunSummary(log, username, len(fetched.All), len(fetched.InRange), result.Artifact)
	return result, nil
}

func (e *Exporter) validate(req Request, loc *time.Location) (string, error) {
	if strings.TrimSpace(req.ProfileURL) == "" {
		return "", errors.Input("validate", "profile URL is required")
	}
	if req.PerPage < 1 || req.PerPage > config.MaxPerPage {
		return "", errors.Input("validate", "per page must be between 1 and %d, got %d", config.MaxPerPage, req.PerPage)
	}
	if req.TargetTotal < 1 || req.TargetTotal > config.MaxTargetTotal {
		return "", errors.Input("validate", "target total must be between 1 and %d, got %d", config.MaxTargetTotal, req.TargetTotal)
	}
	if req.From.IsZero() || req.To.IsZero() {
		return "", errors.Input("validate", "start and end dates are required")
	}
	if dates.StartOfDay(req.From, loc).After(dates.StartOfDay(req.To, loc)) {
		return "", errors.Input("validate", "start date %s is after end date %s",
			req.From.Format("2006-01-02"), req.To.Format("2006-01-02"))
	}
	username := profile.ExtractUsername(req.ProfileURL)
	if username == "" {
		return "", errors.Input("validate", "could not determine a profile from %q", req.ProfileURL)
	}
	return username, nil
}

func (e *Exporter) save(name string, data []byte) (string, error) {
	manager, err := storage.NewManager(e.cfg.Output.Directory, e.cfg.Output.OverwriteExisting)
	if err != nil {
		return "", errors.Internal("prepare output directory", err)
	}

	path, err := manager.SaveBytes(name, data)
	if stderrors.Is(err, storage.ErrExists) {
		return "", errors.Input("save export", "%v (pass --overwrite to replace it)", err)
	}
	if err != nil {
		return "", errors.Internal("save export", err)
	}
	return path, nil
}

func (e *Exporter) summarize(runID, username string, req Request, r fetcher.DateRange, fetched *fetcher.Result, artifact string, started time.Time) *metadata.RunSummary {
	s := &metadata.RunSummary{
		RunID:          runID,
		ProfileURL:     req.ProfileURL,
		Username:       username,
		From:           r.Start.Format("2006-01-02"),
		To:             r.End.Format("2006-01-02"),
		Timezone:       r.Start.Location().String(),
		PerPage:        req.PerPage,
		TargetTotal:    req.TargetTotal,
		Requests:       fetched.Requests,
		Widened:        fetched.Widened,
		Ceiling:        fetched.Ceiling,
		TotalRetrieved: len(fetched.All),
		InRange:        len(fetched.InRange),
		Artifact:       artifact,
		Format:         string(req.Format),
		StartedAt:      started,
	}
	if n := len(fetched.InRange); n > 0 {
		s.NewestPost = fetched.InRange[0].String(apify.PathPostedAt)
		s.OldestPost = fetched.InRange[n-1].String(apify.PathPostedAt)
	}
	s.Finish(e.now())
	return s
}
