package cli

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgMap         = errors.New("failed to map argument(s)")
	HelpPatterns      = []string{"--help", "-h", "help"} // HelpPatterns are the first arguments that print usage for a [CommandSet].

	keyCleansePattern = regexp.MustCompile(`\s`)
)

// CommandFunc is run by a [Command] after its flags are parsed.
type CommandFunc = func(flags *flag.FlagSet, printer *Printer) error

// PreExec runs before any [Command] in a [CommandSet], with that command's parsed flags.
// If it returns an error, then the command is not run.
type PreExec = func(flags *flag.FlagSet) error

func cleanseKey(key string) string {
	return keyCleansePattern.ReplaceAllString(strings.ToLower(key), "")
}

// Command is a sub-command of a [CommandSet].
type Command struct {
	set        *CommandSet
	flags      *flag.FlagSet
	exec       CommandFunc
	key        string
	shortUsage string
	usage      string
	aliases    []string
}

// Does specifies the [CommandFunc] that should be executed by this [Command].
func (c *Command) Does(commandFunc CommandFunc) *Command {
	if commandFunc != nil {
		c.exec = commandFunc
	}
	return c
}

// Flags returns the [flag.FlagSet] for this [Command].
func (c *Command) Flags() *flag.FlagSet {
	return c.flags
}

// CommandPath returns the words used to invoke this [Command].
func (c *Command) CommandPath() string {
	if len(c.set.name) == 0 {
		return c.key
	}
	return c.set.name + " " + c.key
}

// Usage sets the synopsis shown after "USAGE:", without the command path which is prepended automatically.
func (c *Command) Usage(format string, args ...any) *Command {
	c.usage = fmt.Sprintf(format, args...)
	return c
}

// PrintUsage writes the short description, synopsis, and flag usages with the [CommandSet]'s [Printer].
func (c *Command) PrintUsage() {
	var buf strings.Builder
	buf.WriteString(c.shortUsage)
	buf.WriteString("\n\nUSAGE:\n")
	buf.WriteString(c.CommandPath())
	if len(c.usage) > 0 {
		buf.WriteString(" " + c.usage)
	}
	buf.WriteString("\n\nFLAGS\n")
	buf.WriteString(c.flags.FlagUsages())
	c.set.Printer().Print(buf.String())
}

// Exec parses flags from args and runs the [Command].
// If the result is a [UsageError], then it's printed along with usage information.
func (c *Command) Exec(args []string) error {
	err := c.run(args)
	if IsUsageError(err) {
		c.set.Printer().Println(err)
		c.set.Printer().Println()
		c.PrintUsage()
	}
	return err
}

func (c *Command) run(args []string) error {
	if err := c.flags.Parse(args); err != nil {
		return &UsageError{wrapped: err}
	}
	if help, _ := c.flags.GetBool("help"); help {
		c.PrintUsage()
		return nil
	}
	for _, fn := range c.set.before {
		if err := fn(c.flags); err != nil {
			return err
		}
	}
	if c.exec == nil {
		c.PrintUsage()
		return nil
	}
	return c.exec(c.flags, c.set.Printer())
}

// CommandSet is the root of a CLI, holding its sub-commands.
type CommandSet struct {
	name     string
	commands map[string]*Command
	aliases  map[string]*Command
	printer  *Printer
	before   []PreExec
}

// NewCommandSet creates a [CommandSet] for a CLI invoked with the given name.
func NewCommandSet(name string) *CommandSet {
	return &CommandSet{name: name, printer: NewPrinter()}
}

// Printer returns the [Printer] shared by all commands in this [CommandSet].
func (s *CommandSet) Printer() *Printer {
	if s.printer == nil {
		s.printer = NewPrinter()
	}
	return s.printer
}

// BeforeEach adds a [PreExec] hook that runs before every [Command] in the set, in the order added.
// Passing a nil hook will panic.
func (s *CommandSet) BeforeEach(fn PreExec) *CommandSet {
	if fn == nil {
		panic("nil pre-exec function")
	}
	s.before = append(s.before, fn)
	return s
}

// AddCommand adds a sub-command, with a key that's normalized to lower case without spaces.
// Aliases may be given as shorter variants of the same [Command].
func (s *CommandSet) AddCommand(key, shortUsage string, aliases ...string) *Command {
	key = cleanseKey(key)
	fs := flag.NewFlagSet(key, flag.ContinueOnError)
	fs.BoolP("help", "h", false, "Prints this usage information")
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	cmd := &Command{set: s, flags: fs, key: key, shortUsage: shortUsage}
	if s.commands == nil {
		s.commands = map[string]*Command{}
	}
	s.commands[key] = cmd
	for _, alias := range aliases {
		alias = cleanseKey(alias)
		if len(alias) == 0 {
			continue
		}
		if s.aliases == nil {
			s.aliases = map[string]*Command{}
		}
		s.aliases[alias] = cmd
		cmd.aliases = append(cmd.aliases, alias)
	}
	slices.Sort(cmd.aliases)
	return cmd
}

// Exec runs the sub-command named by the first argument, matched case-insensitively.
// The set's usage is printed for one of [HelpPatterns], and a [UsageError] wrapping [ErrUnknownCommand] is returned if no command matches.
func (s *CommandSet) Exec(args []string) error {
	if len(args) == 0 {
		s.PrintUsage()
		return &UsageError{wrapped: fmt.Errorf("%w: no command given", ErrUnknownCommand)}
	}
	if slices.Contains(HelpPatterns, args[0]) {
		s.PrintUsage()
		return nil
	}
	key := strings.ToLower(args[0])
	cmd, ok := s.commands[key]
	if !ok {
		cmd, ok = s.aliases[key]
		if !ok {
			s.PrintUsage()
			return &UsageError{wrapped: fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])}
		}
	}
	return cmd.Exec(args[1:])
}

// PrintUsage lists the sub-commands with their aliases and short descriptions, sorted by key.
func (s *CommandSet) PrintUsage() {
	var (
		keys   = make([]string, 0, len(s.commands))
		labels = map[string]string{}
		maxLen int
	)
	for key, cmd := range s.commands {
		keys = append(keys, key)
		labels[key] = strings.Join(append([]string{key}, cmd.aliases...), ", ")
		maxLen = max(maxLen, len(labels[key]))
	}
	slices.Sort(keys)

	var buf strings.Builder
	buf.WriteString("USAGE:\n")
	buf.WriteString(strings.TrimSpace(s.name + " COMMAND [FLAGS...] [ARGS...]"))
	buf.WriteString("\n\nCOMMANDS:\n")
	fmtStr := fmt.Sprintf("  %%-%ds  %%s\n", maxLen)
	for _, key := range keys {
		buf.WriteString(fmt.Sprintf(fmtStr, labels[key], s.commands[key].shortUsage))
	}
	s.Printer().Print(buf.String())
}

// MustGet is used with a [flag.FlagSet] getter to panic if the flag is not defined, or is not the right type.
// The developer knows whether a get call can fail, so this avoids error handling that can't be reached.
func MustGet[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MapArgs maps positional arguments to targets, requiring at least minArgs and no more than len(targets).
// Errors wrap [ErrArgMap], and argument count errors are also a [UsageError].
func MapArgs(args []string, minArgs int, targets ...*string) error {
	if len(targets) < minArgs {
		return fmt.Errorf("%w: not enough targets (%d) to satisfy minArgs (%d)", ErrArgMap, len(targets), minArgs)
	}
	if len(args) < minArgs {
		return NewUsageError("%w: expected at least %d argument(s), got %d", ErrArgMap, minArgs, len(args))
	}
	if len(args) > len(targets) {
		return NewUsageError("%w: expected at most %d argument(s), got %d", ErrArgMap, len(targets), len(args))
	}
	for i, arg := range args {
		if targets[i] == nil {
			return fmt.Errorf("%w: target %d is nil", ErrArgMap, i)
		}
		*targets[i] = arg
	}
	return nil
}
