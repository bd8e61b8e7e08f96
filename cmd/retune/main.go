package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/retune/internal/chart"
	"github.com/linuxmatters/retune/internal/cli"
	"github.com/linuxmatters/retune/internal/config"
	"github.com/linuxmatters/retune/internal/logging"
	"github.com/linuxmatters/retune/internal/resource"
	"github.com/linuxmatters/retune/internal/session"
	"github.com/linuxmatters/retune/internal/tuning"
	"github.com/linuxmatters/retune/internal/ui"
	"github.com/linuxmatters/retune/internal/waveform"
)

var (
	version = "0.0.1"
)

// debugLogName is used by --debug when no log path is configured
const debugLogName = "retune-debug.log"

// CLI defines the command-line interface
type CLI struct {
	Version    bool            `short:"v" help:"Show version information"`
	Config     kong.ConfigFlag `short:"c" help:"Path to JSON config file (optional)"`
	Service    string          `short:"s" default:"${service_url}" help:"Tuning service endpoint"`
	Timeout    time.Duration   `default:"${timeout}" help:"Request timeout"`
	Key        string          `short:"k" default:"${key}" help:"Target key: chromatic, auto, or note:mode"`
	Correction float64         `short:"r" default:"${correction}" help:"Correction strength, 0 to 1"`
	Player     string          `default:"${player}" help:"Playback command with {file} and {offset}"`
	OutDir     string          `short:"o" type:"path" default:"${output_dir}" help:"Directory for the tuned file"`
	TempDir    string          `default:"${temp_dir}" help:"Directory for playable references"`
	DebugLog   string          `default:"${debug_log}" help:"Debug log file"`
	Debug      bool            `help:"Write a debug log (retune-debug.log unless --debug-log is set)"`
	Logs       bool            `help:"Save a tuning report next to each download"`
	Batch      bool            `short:"b" help:"Tune once, save the result and exit without the UI"`
	File       string          `arg:"" name:"file" help:"Audio file to tune" type:"existingfile" optional:""`
}

// app holds everything main builds and tears down
type app struct {
	args      *CLI
	log       logging.Debugf
	client    *tuning.Client
	resources *resource.Manager
	input     *waveform.Player
	output    *waveform.Player
	ctrl      *session.Controller
	events    chan tea.Msg
}

func main() {
	cfg := config.Load()

	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("retune"),
		kong.Description("Pitch correction with a remote tuning service"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Vars(cfg.Vars()),
		kong.Configuration(kong.JSON),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.Batch && cliArgs.File == "" {
		cli.PrintError("--batch needs an input file")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	logPath := cliArgs.DebugLog
	if cliArgs.Debug && logPath == "" {
		logPath = debugLogName
	}
	log, closeLog, err := logging.OpenDebugLog(logPath)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	a, err := newApp(cliArgs, log)
	if err == nil {
		if cliArgs.Batch {
			err = a.runBatch()
		} else {
			err = a.runUI()
		}
		err = errors.Join(err, a.close())
	}
	_ = closeLog()

	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func newApp(args *CLI, log logging.Debugf) (*app, error) {
	params, err := tuning.DefaultParameters().Apply(tuning.Update{
		Key:        tuning.KeyPtr(args.Key),
		Correction: tuning.CorrectionPtr(args.Correction),
	})
	if err != nil {
		return nil, err
	}

	launcher, err := waveform.NewExecLauncher(args.Player)
	if err != nil {
		return nil, err
	}

	a := &app{
		args:      args,
		log:       log,
		client:    tuning.NewClient(args.Service, args.Timeout),
		resources: resource.NewManager(args.TempDir),
		events:    ui.NewEvents(),
	}
	a.input = waveform.New("Input", a.resources, launcher,
		waveform.WithEvents(ui.PlayerEvents(a.events, log)),
		waveform.WithLogger(log))
	a.output = waveform.New("Tuned", a.resources, launcher,
		waveform.WithEvents(ui.PlayerEvents(a.events, log)),
		waveform.WithLogger(log))
	a.ctrl = session.New(a.client, a.resources,
		session.WithParameters(params),
		session.WithListener(ui.SessionListener(a.input, a.output, a.events, log)),
		session.WithLogger(log))

	log("[MAIN] service=%s timeout=%s key=%s correction=%.2f", args.Service, args.Timeout, params.Key, params.Correction)
	return a, nil
}

// close disposes the session before the players so every reference is
// released while the manager still tracks it
func (a *app) close() error {
	return errors.Join(
		a.ctrl.Dispose(),
		a.input.Close(),
		a.output.Close(),
		a.resources.Close(),
	)
}

func (a *app) runUI() error {
	model := ui.NewModel(ui.Options{
		Controller: a.ctrl,
		Input:      a.input,
		Output:     a.output,
		Events:     a.events,
		Log:        a.log,
		ServiceURL: a.args.Service,
		OutputDir:  a.args.OutDir,
		Reports:    a.args.Logs,
	})

	if a.args.File != "" {
		if err := ui.Open(a.ctrl, a.input, a.args.File); err != nil {
			return err
		}
		model.SourcePath = a.args.File
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

func (a *app) runBatch() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.client.Health(ctx); err != nil {
		return fmt.Errorf("tuning service unavailable at %s: %w", a.client.Endpoint(), err)
	}
	if err := ui.Open(a.ctrl, a.input, a.args.File); err != nil {
		return err
	}

	start := time.Now()
	cli.PrintField("Tuning", filepath.Base(a.args.File))
	if err := a.ctrl.Submit(ctx); err != nil {
		return err
	}
	a.input.Wait()
	a.output.Wait()

	snap := a.ctrl.Snapshot()
	cli.PrintField("Key", snap.Parameters.Key.String())
	if snap.DetectedKey != "" {
		cli.PrintField("Detected", snap.DetectedKey)
	}
	cli.PrintField("Correction", fmt.Sprintf("%.2f", snap.Parameters.Correction))
	cli.PrintField("Request", a.ctrl.Stats().LastDuration.Round(time.Millisecond).String())
	fmt.Println()
	fmt.Println(a.input.Render(80))
	fmt.Println(a.output.Render(80))
	fmt.Println()
	fmt.Println(chart.Build(snap.Result.Time, snap.Result.Original, snap.Result.Tuned).Render(80, 16))
	fmt.Println()

	path, err := a.ctrl.Download(a.args.OutDir)
	if err != nil {
		return err
	}
	cli.PrintSuccess("Saved " + path)

	if a.args.Logs {
		report, err := ui.WriteReport(ui.ReportInput{
			SourcePath: a.args.File,
			OutputPath: path,
			ServiceURL: a.client.Endpoint(),
			StartTime:  start,
			Snapshot:   snap,
			Stats:      a.ctrl.Stats(),
			Input:      a.input,
			Output:     a.output,
		})
		if err != nil {
			return err
		}
		cli.PrintSuccess("Report " + report)
	}
	return nil
}
