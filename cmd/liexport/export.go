package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"liexport/pkg/apify"
	"liexport/pkg/auth"
	"liexport/pkg/config"
	"liexport/pkg/dates"
	"liexport/pkg/errors"
	"liexport/pkg/exporter"
	"liexport/pkg/logger"
	"liexport/pkg/ui"
	"liexport/pkg/ui/tui"
)

// DefaultFromDate is the range start used when --from is not given
const DefaultFromDate = "2025-01-01"

var (
	// Export command flags
	fromDate    string
	toDate      string
	perPage     int
	targetTotal int
	apifyToken  string
	format      string
	outputDir   string
	timezone    string
	overwrite   bool
	saveSummary bool
	toStdout    bool
	useTUI      bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <profile-url>",
	Short: "Export the posts of a LinkedIn profile",
	Long: `Export the posts of a LinkedIn profile published within a date range.

The profile may be given as a full URL (https://www.linkedin.com/in/janedoe/),
without the scheme, or as the bare username.

An Apify API token is required. It is looked up in this order:
  - the --token flag
  - LIEXPORT_APIFY_TOKEN or APIFY_TOKEN
  - the apify.token config key
  - credentials stored with 'liexport auth login'

The export is written to linkedin_posts_<from>_to_<to>.csv (or .json) in the
output directory. Existing files are not replaced unless --overwrite is set.`,
	Example: `  # Everything since 2025-01-01
  liexport export https://www.linkedin.com/in/janedoe/

  # A quarter, asking the actor for up to 500 posts
  liexport export janedoe --from 2025-01-01 --to 2025-03-31 --target-total 500

  # JSON to stdout, dates evaluated in New York time
  liexport export janedoe --format json --stdout --timezone America/New_York

  # Interactive progress view
  liexport export janedoe --tui`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	addExportFlags(exportCmd)
	// Also on the root command so a bare 'liexport <url>' takes the same flags
	addExportFlags(rootCmd)
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromDate, "from", DefaultFromDate, "first day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "last day of the range (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&perPage, "per-page", 100, "posts per actor page (1-100)")
	cmd.Flags().IntVar(&targetTotal, "target-total", 100, "posts to request on the first pass (1-20000)")
	cmd.Flags().StringVar(&apifyToken, "token", "", "Apify API token")
	cmd.Flags().StringVarP(&format, "format", "f", "", "export format: csv or json (default csv)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: current directory)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone for day boundaries (default UTC)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing export file")
	cmd.Flags().BoolVar(&saveSummary, "summary", false, "write a run summary next to the export")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the export to stdout instead of a file")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI")
}

// exportFlagMap collects the flags the user actually set
func exportFlagMap(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("token") {
		flags["token"] = apifyToken
	}
	if changed("per-page") {
		flags["per-page"] = perPage
	}
	if changed("target-total") {
		flags["target-total"] = targetTotal
	}
	if changed("format") {
		flags["format"] = format
	}
	if changed("output") {
		flags["output"] = outputDir
	}
	if changed("timezone") {
		flags["timezone"] = timezone
	}
	if changed("overwrite") {
		flags["overwrite"] = overwrite
	}
	if changed("summary") {
		flags["summary"] = saveSummary
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	if changed("log-level") || verbose {
		flags["log-level"] = logLevel
	}
	return flags
}

func runExport(cmd *cobra.Command, args []string) error {
	// The export owns stdout; everything else moves to stderr
	if toStdout {
		ui.Out = os.Stderr
	}
	if useTUI && !verbose {
		logger.Output = io.Discard
	}

	cfg, err := config.Load(configFile, exportFlagMap(cmd))
	if err != nil {
		return errors.Input("load configuration", "%v", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errors.Internal("initialize logger", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("liexport starting")

	loc, err := cfg.Location()
	if err != nil {
		return errors.Input("load timezone", "%v", err)
	}
	from, to, err := parseRange(fromDate, toDate, loc)
	if err != nil {
		return err
	}

	client := apify.NewClient(cfg.Apify.Endpoint, cfg.Apify.Timeout, log)
	exp := exporter.New(cfg, client, tokenChain(cfg, log), log)

	req := exp.NewRequest(args[0], from, to)
	if toStdout {
		req.Stdout = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	notifier := ui.NewNotifier(cfg.Notifications.Enabled, cfg.Notifications.OnComplete, cfg.Notifications.OnError)

	var res *exporter.Result
	if useTUI {
		res, err = runWithTUI(ctx, cancel, exp, req)
	} else {
		if !noLogo {
			ui.PrintLogo()
		}
		ui.PrintInfo("Profile", args[0])
		ui.PrintInfo("Range", from.Format("2006-01-02")+" to "+to.Format("2006-01-02"))
		exp.SetProgress(ui.NewProgressDisplay(ui.Out, verbose))
		res, err = exp.Run(ctx, req)
	}

	if err != nil {
		log.WithError(err).WithField("profile", args[0]).Error("Export failed")
		notifier.SendError("LinkedIn export failed", err.Error())
		return err
	}

	if !useTUI {
		ui.PrintOutcome(res.Outcome())
	}
	notifier.SendSuccess("LinkedIn export complete", res.Message())
	return nil
}

// parseRange reads the --from and --to days. An empty to means today in loc.
func parseRange(fromRaw, toRaw string, loc *time.Location) (time.Time, time.Time, error) {
	from, err := dates.ParseDay(fromRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Input("parse --from", "expected YYYY-MM-DD, got %q", fromRaw)
	}

	to := time.Now().In(loc)
	if toRaw != "" {
		to, err = dates.ParseDay(toRaw, loc)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Input("parse --to", "expected YYYY-MM-DD, got %q", toRaw)
		}
	}
	return from, to, nil
}

// tokenChain resolves the Apify token: flag, environment or config first,
// then the credential store
func tokenChain(cfg *config.Config, log logger.Logger) auth.Chain {
	chain := auth.Chain{auth.StaticToken(cfg.Apify.Token)}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential store unavailable")
		return chain
	}
	return append(chain, manager)
}

// runWithTUI runs the export in the background while the terminal UI
// holds the main goroutine
func runWithTUI(ctx context.Context, cancel context.CancelFunc, exp *exporter.Exporter, req exporter.Request) (*exporter.Result, error) {
	t := tui.NewTUI(req.ProfileURL, cancel, os.Stderr)
	exp.SetProgress(t)

	type runResult struct {
		res *exporter.Result
		err error
	}
	done := make(chan runResult, 1)

	go func() {
		res, err := exp.Run(ctx, req)
		if err != nil {
			t.Fail(err)
		} else {
			t.Done(res.Outcome())
		}
		done <- runResult{res: res, err: err}
	}()

	if err := t.Start(); err != nil {
		cancel()
		<-done
		return nil, errors.Internal("run terminal UI", err)
	}

	out := <-done
	return out.res, out.err
}
