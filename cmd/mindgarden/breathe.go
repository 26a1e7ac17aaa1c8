package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mindgarden/backend/internal/breathing"
	"mindgarden/backend/internal/client"
)

type breatheOptions struct {
	pattern      string
	patternsFile string
	inhale       int
	hold         int
	exhale       int
	rest         int
	cycles       int
	interval     time.Duration
	stressBefore int
	stressAfter  int
	notes        string
	server       string
	token        string
}

func newBreatheCmd(a *app) *cobra.Command {
	opts := breatheOptions{}
	cmd := &cobra.Command{
		Use:   "breathe",
		Short: "Run a guided breathing session in the terminal",
		Long: `Breathe counts a breathing pattern down in the terminal, one line per
second. Interrupt with Ctrl-C to finish early. With --server and --token the
finished session is recorded in your history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, err := opts.resolvePattern(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBreathe(ctx, a, cmd.OutOrStdout(), pattern, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.pattern, "pattern", "p", breathing.DefaultPatternName, "Pattern name from the catalog or --patterns-file")
	flags.StringVar(&opts.patternsFile, "patterns-file", "", "YAML file with extra patterns")
	flags.IntVar(&opts.inhale, "inhale", 0, "Custom inhale seconds")
	flags.IntVar(&opts.hold, "hold", 0, "Custom hold seconds")
	flags.IntVar(&opts.exhale, "exhale", 0, "Custom exhale seconds")
	flags.IntVar(&opts.rest, "rest", 0, "Custom rest seconds")
	flags.IntVarP(&opts.cycles, "cycles", "n", 4, "Cycles to complete; 0 runs until interrupted")
	flags.DurationVar(&opts.interval, "interval", time.Second, "Tick interval")
	flags.IntVar(&opts.stressBefore, "stress-before", 0, "Stress rating before the session (1-10)")
	flags.IntVar(&opts.stressAfter, "stress-after", 0, "Stress rating after the session (1-10)")
	flags.StringVar(&opts.notes, "notes", "", "Notes stored with the session")
	flags.StringVar(&opts.server, "server", "", "Server base URL to record the session on")
	flags.StringVar(&opts.token, "token", os.Getenv("MINDGARDEN_TOKEN"), "Bearer token for --server")
	return cmd
}

func (o breatheOptions) resolvePattern(cmd *cobra.Command) (breathing.Pattern, error) {
	flags := cmd.Flags()
	if flags.Changed("inhale") || flags.Changed("hold") || flags.Changed("exhale") || flags.Changed("rest") {
		custom := breathing.Pattern{Name: "Custom", Inhale: o.inhale, Hold: o.hold, Exhale: o.exhale, Rest: o.rest}
		return custom, custom.Validate()
	}
	var extra []breathing.Pattern
	if o.patternsFile != "" {
		loaded, err := breathing.LoadPatterns(o.patternsFile)
		if err != nil {
			return breathing.Pattern{}, err
		}
		extra = loaded
	}
	pattern, ok := breathing.LookupIn(extra, o.pattern)
	if !ok {
		return breathing.Pattern{}, fmt.Errorf("unknown pattern %q", o.pattern)
	}
	return pattern, nil
}

func optionalRating(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func runBreathe(ctx context.Context, a *app, out io.Writer, pattern breathing.Pattern, opts breatheOptions) error {
	before := optionalRating(opts.stressBefore)
	if err := breathing.ValidateRating("stress-before", before); err != nil {
		return err
	}
	after := optionalRating(opts.stressAfter)
	if err := breathing.ValidateRating("stress-after", after); err != nil {
		return err
	}

	machine := breathing.NewMachine()
	if err := machine.Start(pattern); err != nil {
		return err
	}

	fmt.Fprintln(out, pattern)
	printState(out, pattern, machine.State())

	runner := breathing.NewRunner(machine,
		breathing.WithInterval(opts.interval),
		breathing.WithTargetCycles(opts.cycles),
		breathing.WithLogger(a.logger),
		breathing.WithOnTick(func(s breathing.State) { printState(out, pattern, s) }),
	)
	progress, err := runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(out, "\nDone: %d cycles in %ds\n", progress.CompletedCycles, progress.ElapsedSeconds)

	summary, err := breathing.NewSummary(machine, before, after, opts.notes)
	if err != nil {
		return err
	}
	if opts.server == "" || summary.TotalDurationSeconds == 0 {
		return nil
	}

	recordCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.NewRecorder(opts.server, opts.token, nil).RecordSession(recordCtx, summary); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	a.logger.Info("session recorded", "server", opts.server, "cycles", summary.CompletedCycles, "seconds", summary.TotalDurationSeconds)
	return nil
}

func printState(out io.Writer, pattern breathing.Pattern, s breathing.State) {
	fmt.Fprintf(out, "[cycle %d] %-7s %2d/%ds\n",
		s.CompletedCycles+1, s.Phase.Instruction(), s.SecondsRemaining, pattern.Duration(s.Phase))
}
