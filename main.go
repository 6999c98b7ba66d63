package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-drift/config"
	"go-drift/debug"
	"go-drift/midi"
	"go-drift/sequencer"
	"go-drift/status"
	"go-drift/theme"
	"go-drift/transport"
	"go-drift/tui"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "go-drift",
	Short: "Play a generative piece to a MIDI port",
	Long: `go-drift plays an endless, never-repeating piece: a tongue drum loop
that slowly mutates, sparse percussion, a drone, a breathing melody and a
tone that wanders across the stereo field.

Examples:
  go-drift --port "IAC Bus 1"
  go-drift --headless --seed 42 --record take.mid
  go-drift --status :8080`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runPlay,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the piece to a MIDI file without playing it",
	Long: `Run the piece offline, as fast as possible, and write it as a
Standard MIDI File.

Examples:
  go-drift render --duration 600 -o piece.mid
  go-drift render --seed 7 --kit tr8s -o seven.mid`,
	RunE: runRender,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	RunE:  runPorts,
}

var takesCmd = &cobra.Command{
	Use:   "takes",
	Short: "List recorded takes",
	RunE:  runTakes,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long: `Write the default configuration, with every voice and its channel, so
it can be edited.

Examples:
  go-drift init
  go-drift init --config ./drift.json --force`,
	RunE: runInit,
}

// Flags
var (
	configPath string
	portName   string
	seed       int64
	unit       float64
	kit        string
	debugPath  string

	headless   bool
	recordPath string
	statusAddr string

	renderOut      string
	renderDuration float64

	forceInit bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.config/go-drift/config.json)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.Float64Var(&unit, "unit", 0, "base time unit in seconds")
	pf.StringVar(&kit, "kit", "", "drum note layout: "+fmt.Sprint(sequencer.KitNames()))
	pf.StringVar(&debugPath, "debug", "", "write a debug log to this file")

	rootCmd.Flags().StringVarP(&portName, "port", "p", "", "MIDI output port (substring match)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "play without the terminal UI")
	rootCmd.Flags().StringVarP(&recordPath, "record", "r", "", "record the session to a MIDI file")
	rootCmd.Flags().StringVar(&statusAddr, "status", "", "serve voice status over HTTP on this address")

	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "output file (default: a new take)")
	renderCmd.Flags().Float64VarP(&renderDuration, "duration", "d", 600, "length in seconds")

	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing config")

	rootCmd.AddCommand(renderCmd, portsCmd, takesCmd, initCmd)
}

// loadConfig reads the config file and applies the flags set on cmd
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("unit") {
		cfg.TimeUnit = unit
	}
	if flags.Changed("kit") {
		cfg.Output.Kit = kit
	}
	if flags.Changed("debug") {
		cfg.Debug = debugPath
	}
	if flags.Changed("port") {
		cfg.Output.PortName = portName
	}
	if flags.Changed("status") {
		cfg.Status = statusAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Debug != "" {
		if err := debug.Enable(cfg.Debug); err != nil {
			return nil, fmt.Errorf("debug log: %w", err)
		}
	}
	return cfg, nil
}

func pieceOptions(cfg *config.Config) sequencer.PieceOptions {
	voices := make(map[string]sequencer.VoiceOptions)
	for _, name := range sequencer.VoiceNames() {
		v := cfg.Voice(name)
		voices[name] = sequencer.VoiceOptions{
			Enabled:  v.Enabled,
			Channel:  v.Channel,
			Velocity: v.Velocity,
		}
	}
	return sequencer.PieceOptions{
		Unit:   cfg.TimeUnit,
		Kit:    cfg.Output.Kit,
		Voices: voices,
	}
}

// takeMeta is written next to every saved take
type takeMeta struct {
	Seed     int64   `json:"seed"`
	Unit     float64 `json:"unit"`
	Kit      string  `json:"kit"`
	Duration float64 `json:"duration"`
	Port     string  `json:"port,omitempty"`
}

// nameTracks labels each recorded channel with the voices playing on it
func nameTracks(rec *midi.Recorder, opts sequencer.PieceOptions) {
	names := make(map[int]string)
	for _, name := range sequencer.VoiceNames() {
		v := opts.Voices[name]
		if !v.Enabled {
			continue
		}
		if prev, ok := names[v.Channel]; ok {
			names[v.Channel] = prev + "+" + name
		} else {
			names[v.Channel] = name
		}
	}
	for ch, name := range names {
		rec.NameChannel(ch, name)
	}
}

func takePath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := midi.TakesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, midi.TakeFilename(time.Now(), name)), nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr := transport.New()
	out := midi.NewOutput(tr)
	defer out.Close()
	deviceMgr := midi.NewDeviceManager(out, cfg.Output.PortName)

	opts := pieceOptions(cfg)
	var (
		engine sequencer.Engine = out
		rec    *midi.Recorder
	)
	if recordPath != "" {
		rec = midi.NewRecorder(cfg.Output.BPM)
		nameTracks(rec, opts)
		engine = midi.Tee{out, rec}
	}

	manager := sequencer.NewManager(tr, cfg.Seed, sequencer.Piece(engine, opts))
	debug.Log("main", "seed %d unit %.3f kit %s", cfg.Seed, opts.Unit, opts.Kit)

	go tr.Run(ctx)
	go out.Run(ctx)
	go deviceMgr.Run(ctx)
	if rec != nil {
		go rec.Run(ctx, tr)
	}
	manager.Start(ctx)

	if cfg.Status != "" {
		// the terminal belongs to the TUI unless headless
		var logw io.Writer = io.Discard
		if headless {
			logw = os.Stderr
		}
		srv := status.New(manager, logw)
		go func() {
			if err := srv.Run(ctx, cfg.Status); err != nil {
				debug.Log("status", "server: %v", err)
			}
		}()
	}

	if headless {
		fmt.Printf("go-drift seed %d, ctrl+c to stop\n", cfg.Seed)
		<-ctx.Done()
		manager.Stop()
	} else {
		m := tui.NewModel(manager, deviceMgr, theme.New(palette))
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		manager.Stop()
	}
	stop()

	if rec == nil {
		return nil
	}
	end := tr.Position()
	rec.Flush(end)
	path, err := takePath(recordPath, "")
	if err != nil {
		return err
	}
	meta := takeMeta{Seed: cfg.Seed, Unit: opts.Unit, Kit: opts.Kit, Duration: end, Port: deviceMgr.Connected()}
	if err := midi.SaveTake(rec, path, meta); err != nil {
		return err
	}
	fmt.Printf("recorded %d events to %s\n", rec.Len(), path)
	return nil
}

// renderStep is how far the offline transport moves between parameter samples
const renderStep = 1.0

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if renderDuration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", renderDuration)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := pieceOptions(cfg)
	rec := midi.NewRecorder(cfg.Output.BPM)
	nameTracks(rec, opts)

	tr := transport.New()
	manager := sequencer.NewManager(tr, cfg.Seed, sequencer.Piece(rec, opts))
	manager.Start(ctx)
	manager.Wait()

	select {
	case <-manager.Ready():
	default:
		for _, vs := range manager.Snapshot() {
			if vs.State == sequencer.StateFailed {
				fmt.Fprintf(os.Stderr, "%s: %s\n", vs.Name, vs.Error)
			}
		}
		return fmt.Errorf("start group failed to load")
	}

	for t := renderStep; t < renderDuration; t += renderStep {
		tr.Advance(t)
		rec.Flush(t)
	}
	tr.Advance(renderDuration)
	rec.Flush(renderDuration)
	manager.Stop()

	path, err := takePath(renderOut, fmt.Sprintf("seed%d", cfg.Seed))
	if err != nil {
		return err
	}
	meta := takeMeta{Seed: cfg.Seed, Unit: opts.Unit, Kit: opts.Kit, Duration: renderDuration}
	if err := midi.SaveTake(rec, path, meta); err != nil {
		return err
	}
	fmt.Printf("rendered %.0fs (%d events, seed %d) to %s\n", renderDuration, rec.Len(), cfg.Seed, path)
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := midi.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no MIDI output ports")
		return nil
	}
	for i, name := range ports {
		fmt.Printf("%d: %s\n", i, name)
	}
	return nil
}

func runTakes(cmd *cobra.Command, args []string) error {
	dir, err := midi.TakesDir()
	if err != nil {
		return err
	}
	takes, err := midi.ListTakes(dir)
	if err != nil {
		return err
	}
	if len(takes) == 0 {
		fmt.Printf("no takes in %s\n", dir)
		return nil
	}
	for _, t := range takes {
		name := t.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%s  %-12s %s\n", t.Timestamp.Format("2006-01-02 15:04:05"), name, t.Filename)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	var err error
	if configPath == "" {
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(configPath)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
