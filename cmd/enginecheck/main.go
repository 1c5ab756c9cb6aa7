// Command enginecheck probes a workbench interpreter installation from
// the command line: is the interpreter reachable, which version does it
// run, and are the statistics packages an analysis needs importable.
//
//	enginecheck status --binary python3 --args wrapper.py
//	enginecheck probe pandas pingouin semopy
//	enginecheck run descriptives --data '{"variables":["score"]}'
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/methodstudio/statengine"
	"github.com/methodstudio/statengine/engine/ephemeral"
	"github.com/methodstudio/statengine/engine/persistent"
	"github.com/methodstudio/statengine/wire"
)

var (
	flagBinary     string
	flagArgs       []string
	flagScriptDir  string
	flagTimeout    time.Duration
	flagPersistent bool
	flagVerbose    bool

	rootCmd = &cobra.Command{
		Use:           "enginecheck",
		Short:         "Probe a statistics interpreter installation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Report interpreter availability and version",
		RunE:  runStatus,
	}

	probeCmd = &cobra.Command{
		Use:   "probe [package...]",
		Short: "Check that interpreter packages are importable",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runProbe,
	}

	runCmd = &cobra.Command{
		Use:   "run [spec-id]",
		Short: "Execute a bundled analysis script and print its result",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalysis,
	}

	flagData string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "enginecheck:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBinary, "binary", "python3", "interpreter wrapper binary")
	rootCmd.PersistentFlags().StringSliceVar(&flagArgs, "args", nil, "arguments passed to the binary")
	rootCmd.PersistentFlags().StringVar(&flagScriptDir, "script-dir", "", "bundled analysis script directory")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 60*time.Second, "per-call deadline")
	rootCmd.PersistentFlags().BoolVar(&flagPersistent, "persistent", false, "use a long-lived interpreter process")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log engine internals")

	runCmd.Flags().StringVar(&flagData, "data", "{}", "JSON object of script bindings")

	rootCmd.AddCommand(statusCmd, probeCmd, runCmd)
}

func logger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// newEngine builds the engine the flags describe. The returned stop
// function is a no-op for the ephemeral model.
func newEngine(ctx context.Context) (statengine.Engine, func(), error) {
	log := logger()

	if flagPersistent {
		eng := persistent.New(
			persistent.WithBinary(flagBinary),
			persistent.WithArgs(flagArgs...),
			persistent.WithScriptDir(flagScriptDir),
			persistent.WithDefaultDeadline(flagTimeout),
			persistent.WithLogger(log),
		)
		if err := eng.Initialize(ctx); err != nil {
			return nil, nil, err
		}
		return eng, func() { _ = eng.Stop(context.Background()) }, nil
	}

	eng := ephemeral.New(
		ephemeral.WithBinary(flagBinary),
		ephemeral.WithArgs(flagArgs...),
		ephemeral.WithScriptDir(flagScriptDir),
		ephemeral.WithDefaultDeadline(flagTimeout),
		ephemeral.WithLogger(log),
	)
	return eng, func() {}, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	eng, stop, err := newEngine(ctx)
	if err != nil {
		fmt.Printf("interpreter: unavailable (%v)\n", err)
		return nil
	}
	defer stop()

	if err := eng.Validate(); err != nil {
		fmt.Printf("interpreter: unavailable (%v)\n", err)
		return nil
	}

	resp := statengine.RunScript(ctx, eng,
		"import sys\nresult = sys.version.split()[0]", nil,
		statengine.WithDeadline(flagTimeout))
	if !resp.OK() {
		fmt.Printf("interpreter: broken (%s: %s)\n", resp.Failure.Kind, resp.Failure.Message)
		return nil
	}
	fmt.Printf("interpreter: ok (version %v)\n", resp.Value)
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	eng, stop, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer stop()

	missing := 0
	for _, pkg := range args {
		ok, err := statengine.PackageAvailable(ctx, eng, pkg)
		switch {
		case err != nil:
			fmt.Printf("%-20s error: %v\n", pkg, err)
			missing++
		case ok:
			fmt.Printf("%-20s ok\n", pkg)
		default:
			fmt.Printf("%-20s missing\n", pkg)
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%d package(s) unavailable", missing)
	}
	return nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	var raw map[string]any
	if err := json.Unmarshal([]byte(flagData), &raw); err != nil {
		return fmt.Errorf("parse --data: %w", err)
	}
	bindings := make(map[string]statengine.Value, len(raw))
	for name, v := range raw {
		val, err := statengine.FromGo(v)
		if err != nil {
			return fmt.Errorf("binding %s: %w", name, err)
		}
		bindings[name] = val
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	eng, stop, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer stop()

	resp := statengine.RunNamedScript(ctx, eng, args[0], bindings,
		statengine.WithDeadline(flagTimeout))
	if !resp.OK() {
		if resp.Failure.PartialConsoleText != "" {
			fmt.Fprint(os.Stderr, resp.Failure.PartialConsoleText)
		}
		return fmt.Errorf("%s: %s", resp.Failure.Kind, resp.Failure.Message)
	}

	if resp.ConsoleText != "" {
		fmt.Fprint(os.Stderr, resp.ConsoleText)
	}
	out, err := json.MarshalIndent(wire.ToWire(resp.Value), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
