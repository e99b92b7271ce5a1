package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudchamber-io/geigerctl/internal/config"
	"github.com/cloudchamber-io/geigerctl/internal/device"
	"github.com/cloudchamber-io/geigerctl/internal/observability"
	"github.com/cloudchamber-io/geigerctl/internal/protocol"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/gqrfc"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
)

const defaultTemplatePath = "geigerctl.toml"

type options struct {
	configPath string
	port       string
	addr       string
	baud       int
	revision   string
	timeout    time.Duration
	force      bool
	verbose    bool
}

// App holds parsed flags and the logger for one invocation.
type App struct {
	opts options
	log  zerolog.Logger
}

func main() {
	opts, args := parseFlags()
	log := observability.InitLogger("geigerctl", opts.verbose)
	app := &App{opts: opts, log: log}
	if err := app.Run(context.Background(), args); err != nil {
		fmt.Fprintf(os.Stderr, "geigerctl: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, []string) {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "TOML config file")
	flag.StringVar(&opts.port, "port", "", "serial port, e.g. /dev/ttyUSB0")
	flag.StringVar(&opts.addr, "addr", "", "serial-over-TCP bridge address, e.g. 192.168.1.50:2000")
	flag.IntVar(&opts.baud, "baud", 0, "serial baud rate (default 115200)")
	flag.StringVar(&opts.revision, "revision", "", "pin a protocol revision instead of probing")
	flag.DurationVar(&opts.timeout, "timeout", 0, "per-exchange read timeout override")
	flag.BoolVar(&opts.force, "force", false, "overwrite an existing file (config verb)")
	flag.BoolVar(&opts.verbose, "verbose", false, "debug logging")
	flag.Usage = usage
	flag.Parse()
	return opts, flag.Args()
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: geigerctl [flags] <verb> [args]

Verbs:
  list [REVISION]        protocol revisions, or one revision's command table
  identify               probe the device and report model and revision
  run COMMAND [ARG...]   execute one command and print the decoded reply
  ports                  list serial ports on this machine
  config [PATH]          write a config template (default %s)

Flags:
`, defaultTemplatePath)
	flag.PrintDefaults()
}

// Run dispatches one verb.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing verb")
	}
	verb, rest := args[0], args[1:]
	switch verb {
	case "list":
		return a.runList(rest)
	case "identify":
		return a.runIdentify(ctx)
	case "run":
		return a.runCommand(ctx, rest)
	case "ports":
		return a.runPorts()
	case "config":
		return a.runConfigTemplate(rest)
	default:
		flag.Usage()
		return fmt.Errorf("unknown verb %q", verb)
	}
}

func (a *App) runList(args []string) error {
	if len(args) == 0 {
		for _, label := range gqrfc.Labels() {
			fmt.Println(label)
		}
		return nil
	}
	catalog, err := gqrfc.Lookup(args[0])
	if err != nil {
		return err
	}
	fmt.Print(renderCatalog(catalog))
	return nil
}

func (a *App) runIdentify(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	transport, err := openTransport(ctx, cfg.Device)
	if err != nil {
		return err
	}
	identity, s, err := device.Identify(ctx, transport,
		session.WithConfig(cfg.Session), session.WithLogger(a.log))
	if err != nil {
		transport.Close()
		return err
	}
	defer s.Close()
	fmt.Printf("version:  %s\n", identity.Version)
	fmt.Printf("revision: %s\n", identity.Catalog.Label())
	fmt.Printf("commands: %d\n", identity.Catalog.Len())
	return nil
}

func (a *App) runCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("run needs a command name, see the list verb")
	}
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	value, err := s.Run(ctx, strings.ToUpper(args[0]), args[1:]...)
	if err != nil {
		return err
	}
	fmt.Println(value.String())
	return nil
}

func (a *App) runPorts() error {
	ports, err := device.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, port := range ports {
		fmt.Println(port)
	}
	return nil
}

func (a *App) runConfigTemplate(args []string) error {
	path := defaultTemplatePath
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteTemplate(path, a.opts.force); err != nil {
		return err
	}
	fmt.Printf("wrote config template to %s\n", path)
	return nil
}

// loadConfig layers flags over the optional config file and validates
// the result.
func (a *App) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if a.opts.configPath != "" {
		loaded, err := config.Load(a.opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	applyFlags(&cfg, a.opts)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyFlags overrides config fields with explicitly set flags. A lone
// -port or -addr also clears the competing transport so a flag can
// redirect a config file; passing both leaves both set for Validate to
// reject.
func applyFlags(cfg *config.Config, opts options) {
	if opts.port != "" {
		cfg.Device.Port = opts.port
		cfg.Device.Address = ""
	}
	if opts.addr != "" {
		cfg.Device.Address = opts.addr
		if opts.port == "" {
			cfg.Device.Port = ""
		}
	}
	if opts.baud > 0 {
		cfg.Device.Baud = opts.baud
	}
	if opts.revision != "" {
		cfg.Device.Revision = opts.revision
	}
	if opts.timeout > 0 {
		cfg.Session.ReadTimeout = opts.timeout
	}
}

func (a *App) openSession(ctx context.Context) (*session.Session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	transport, err := openTransport(ctx, cfg.Device)
	if err != nil {
		return nil, err
	}
	if cfg.Device.Revision != "" {
		catalog, err := gqrfc.Lookup(cfg.Device.Revision)
		if err != nil {
			transport.Close()
			return nil, err
		}
		return session.New(catalog, transport,
			session.WithConfig(cfg.Session), session.WithLogger(a.log)), nil
	}
	identity, s, err := device.Identify(ctx, transport,
		session.WithConfig(cfg.Session), session.WithLogger(a.log))
	if err != nil {
		transport.Close()
		return nil, err
	}
	a.log.Debug().
		Str("version", identity.Version).
		Str("revision", identity.Catalog.Label()).
		Msg("device identified")
	return s, nil
}

func openTransport(ctx context.Context, dev config.DeviceConfig) (session.Transport, error) {
	switch {
	case dev.Port != "":
		return device.OpenSerial(device.SerialConfig{Port: dev.Port, Baud: dev.Baud})
	case dev.Address != "":
		return device.DialTCP(ctx, device.TCPConfig{Address: dev.Address})
	}
	return nil, errors.New("no device selected: set -port or -addr, or use a config file")
}

func renderCatalog(catalog *protocol.CommandSet) string {
	names := catalog.Names()
	usages := make([]string, len(names))
	shapes := make([]string, len(names))
	helps := make([]string, len(names))
	usageWidth, shapeWidth := 0, 0
	for i, name := range names {
		cmd, err := catalog.Lookup(name)
		if err != nil {
			continue
		}
		usages[i] = commandUsage(cmd)
		shapes[i] = cmd.Shape().String()
		helps[i] = cmd.Help()
		if len(usages[i]) > usageWidth {
			usageWidth = len(usages[i])
		}
		if len(shapes[i]) > shapeWidth {
			shapeWidth = len(shapes[i])
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d commands)\n", catalog.Label(), catalog.Len())
	for i := range names {
		fmt.Fprintf(&b, "  %-*s  %-*s  %s\n", usageWidth, usages[i], shapeWidth, shapes[i], helps[i])
	}
	return b.String()
}

func commandUsage(cmd protocol.Command) string {
	parts := []string{cmd.Name()}
	for _, spec := range cmd.Args() {
		parts = append(parts, argToken(spec))
	}
	return strings.Join(parts, " ")
}

func argToken(spec protocol.ArgSpec) string {
	if len(spec.Choices) > 0 {
		tokens := make([]string, 0, len(spec.Choices))
		for token := range spec.Choices {
			tokens = append(tokens, token)
		}
		sort.Strings(tokens)
		return "<" + strings.Join(tokens, "|") + ">"
	}
	return "<" + spec.Name + ">"
}
