package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/handler/http/dashboard"
	"ghstatus-dashboard/internal/infra/fetcher"
	"ghstatus-dashboard/internal/observability/logging"
	"ghstatus-dashboard/internal/usecase/incident"

	"github.com/spf13/cobra"
)

type snapshotOptions struct {
	url      string
	timezone string
	timeout  time.Duration
	json     bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ghstatus",
		Short:         "GitHub status feed tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSnapshotCmd())
	return root
}

func newSnapshotCmd() *cobra.Command {
	opts := snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the feed once and print status, counts and incidents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := time.LoadLocation(opts.timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", opts.timezone, err)
			}
			cfg := fetcher.DefaultConfig()
			cfg.URL = opts.url
			cfg.Timeout = opts.timeout
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := logging.New(cmd.ErrOrStderr(), "text", level)

			feed := fetcher.NewHTTPFetcher(cfg)
			svc := incident.NewService(feed, cfg.URL, loc)
			svc.Logger = logger
			return runSnapshot(cmd.Context(), svc, cmd.OutOrStdout(), opts.json)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", fetcher.DefaultFeedURL, "Atom feed URL")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "UTC", "IANA zone for incident dates")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "fetch timeout")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the dashboard as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log fetch and parse details to stderr")
	return cmd
}

// runSnapshot loads once and writes the result to w. A failed fetch still
// prints the empty state but makes the command exit non-zero.
func runSnapshot(ctx context.Context, svc dashboard.Loader, w io.Writer, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d := svc.Load(ctx)

	var err error
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(dashboard.NewDTO(d))
	} else {
		err = renderText(w, d)
	}
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if d.Err != nil {
		return fmt.Errorf("status feed unavailable: %w", d.Err)
	}
	return nil
}

func renderText(w io.Writer, d incident.Dashboard) error {
	status := d.Status()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Status:\t%s (%s)\n", status.Label(), status)
	if !d.WindowStart.IsZero() {
		fmt.Fprintf(tw, "Since:\t%s\n", d.WindowStart.Format(entity.DisplayDateLayout))
	}
	fmt.Fprintf(tw, "Incidents:\t%d\n", len(d.Incidents))

	if entries := d.Aggregation.CountByDate.Entries(); len(entries) > 0 {
		fmt.Fprintln(tw, "\nDATE\tCOUNT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%d\n", e.Date, e.Count)
		}
	}

	if len(d.Incidents) > 0 {
		fmt.Fprintln(tw, "\nDATE\tTIME\tTITLE")
		for _, inc := range d.Incidents {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", inc.Date, inc.TimeRange, inc.Title)
		}
	}
	if d.SkippedEntries > 0 {
		fmt.Fprintf(tw, "\n%d malformed entries skipped\n", d.SkippedEntries)
	}

	return tw.Flush()
}
