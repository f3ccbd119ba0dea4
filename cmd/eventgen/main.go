// Command eventgen generates typed event argument keys from a manifest.
//
// It's intended to be used with go:generate, where the package name defaults to $GOPACKAGE.
//
//	//go:generate go run github.com/saylorsolutions/eventx/cmd/eventgen generate -o events_gen.go events.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/saylorsolutions/eventx/cli"
	"github.com/saylorsolutions/eventx/codegen"
	"github.com/saylorsolutions/eventx/env"
	"github.com/saylorsolutions/eventx/slogx"
	flag "github.com/spf13/pflag"
)

const (
	envLogLevel = "EVENTGEN_LOG_LEVEL"
	envVerbose  = "EVENTGEN_VERBOSE"
	envPackage  = "GOPACKAGE"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Exec(os.Args[1:]); err != nil {
		if !cli.IsUsageError(err) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

type app struct {
	*cli.CommandSet
	stdout io.Writer
	log    *slog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	a := &app{
		CommandSet: cli.NewCommandSet("eventgen"),
		stdout:     stdout,
		log:        slogx.NewTextLogger(stderr, slog.LevelWarn),
	}
	a.Printer().Redirect(stderr)
	a.BeforeEach(a.setupLogging)

	gen := a.AddCommand("generate", "Generates Go source declaring event names and typed argument keys", "gen").
		Usage("[FLAGS] MANIFEST").
		Does(a.generate)
	gen.Flags().StringP("package", "p", "", "Package name of the generated source, overriding the manifest and $GOPACKAGE")
	gen.Flags().StringP("output", "o", "", "File to write, instead of STDOUT")
	gen.Flags().BoolP("verbose", "v", false, "Enables debug logging, also enabled with $"+envVerbose)

	list := a.AddCommand("list", "Lists the events and parameters declared in a manifest", "ls").
		Usage("[FLAGS] MANIFEST").
		Does(a.list)
	list.Flags().BoolP("verbose", "v", false, "Enables debug logging, also enabled with $"+envVerbose)
	return a
}

func (a *app) setupLogging(flags *flag.FlagSet) error {
	level, err := slogx.ParseLevel(env.OneOf(envLogLevel, "warn", slogx.LevelNames...))
	if err != nil {
		return err
	}
	if cli.MustGet(flags.GetBool("verbose")) || env.Bool(envVerbose, false) {
		level = slog.LevelDebug
	}
	a.log = slogx.NewTextLogger(a.Printer().Writer(), level)
	return nil
}

func (a *app) loadManifest(flags *flag.FlagSet) (*codegen.Manifest, error) {
	var path string
	if err := cli.MapArgs(flags.Args(), 1, &path); err != nil {
		return nil, err
	}
	a.log.Debug("Loading manifest", "path", path)
	m, err := codegen.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest '%s': %w", path, err)
	}
	a.log.Debug("Loaded manifest", "path", path, "package", m.Package, "events", len(m.Events))
	return m, nil
}

func (a *app) generate(flags *flag.FlagSet, _ *cli.Printer) error {
	m, err := a.loadManifest(flags)
	if err != nil {
		return err
	}
	if pkg := cli.MustGet(flags.GetString("package")); len(pkg) > 0 {
		m.Package = pkg
	} else if len(m.Package) == 0 {
		m.Package = env.Val(envPackage, "")
	}
	if len(m.Package) == 0 {
		return cli.NewUsageError("no package name in the manifest, and neither --package nor $%s is set", envPackage)
	}
	src, err := codegen.Generate(m)
	if err != nil {
		return err
	}

	output := cli.MustGet(flags.GetString("output"))
	if len(output) == 0 {
		_, err = a.stdout.Write(src)
		return err
	}
	if err := writeFile(output, src); err != nil {
		return fmt.Errorf("failed to write '%s': %w", output, err)
	}
	a.log.Info("Generated event keys", "output", output, "package", m.Package, "events", len(m.Events))
	return nil
}

func writeFile(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), ".eventgen-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

func (a *app) list(flags *flag.FlagSet, _ *cli.Printer) error {
	m, err := a.loadManifest(flags)
	if err != nil {
		return err
	}
	for _, event := range m.Events {
		_, _ = fmt.Fprintf(a.stdout, "%s\t%s\n", event.Name, codegen.Identifier(event.Name))
		for _, param := range event.Params {
			_, _ = fmt.Fprintf(a.stdout, "  %s\t%s\n", param.Name, param.Type)
		}
	}
	return nil
}
