package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/dualopinion/internal/app"
	"github.com/dusk-indust/dualopinion/internal/opinion"
	"github.com/dusk-indust/dualopinion/internal/orchestrator"
	"github.com/dusk-indust/dualopinion/internal/report"
)

func newAskCommand(c *cli) *cobra.Command {
	var (
		prefer string
		format string
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Get two opinions on a question and optionally merge them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pref opinion.Preference
			if prefer != "" {
				var err error
				if pref, err = opinion.ParsePreference(prefer); err != nil {
					return userError(err)
				}
			}
			if format != "markdown" && format != "json" {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			return c.ask(cmd, strings.Join(args, " "), pref, format, quiet)
		},
	}
	cmd.Flags().StringVar(&prefer, "prefer", "", "consolidate the opinions: A, B or merge")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or json")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func (c *cli) ask(cmd *cobra.Command, query string, pref opinion.Preference, format string, quiet bool) error {
	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()
	if quiet {
		errOut = io.Discard
	}

	reporter := orchestrator.NewProgressReporter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range reporter.Subscribe() {
			fmt.Fprintln(errOut, orchestrator.FormatProgress(ev))
		}
	}()
	stopProgress := func() {
		reporter.Close()
		<-done
	}

	e, err := app.Build(ctx, c.cfg, app.Options{Logger: c.logger, Progress: reporter.Emit})
	if err != nil {
		stopProgress()
		return err
	}
	defer e.Close()

	sess := e.Sessions.Start()
	fmt.Fprintln(errOut, orchestrator.FormatQueryHeader(sess.ID()[:8], query))
	comparison, err := sess.Ask(ctx, query)
	stopProgress()
	if err != nil {
		return userError(err)
	}

	var merged *opinion.Consolidated
	if pref != "" {
		m, err := sess.Merge(pref)
		if err != nil {
			return userError(err)
		}
		merged = &m
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		exp, err := report.Export(sess.ID(), comparison, merged, time.Now())
		if err != nil {
			return err
		}
		data, err := exp.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fmt.Fprint(out, report.RenderComparison(comparison))
	if merged != nil {
		fmt.Fprintln(out)
		fmt.Fprint(out, report.Render(*merged))
	}
	return nil
}
