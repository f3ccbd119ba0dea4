/*
Package cli structures a command line tool as a set of sub-commands, each with its own [pflag] flags.

The policies are simple.
  - User-visible output goes to STDERR by default through a [Printer], which tests can redirect.
  - Flags are not interspersed with arguments, which keeps parsing predictable.
  - There are no global flags. Shared setup happens in hooks added with [CommandSet.BeforeEach].

Every invocation takes the same form.

	CLI_NAME SUB-COMMAND [FLAGS...] [ARGS...]

The '-h' and '--help' flags are set up for every [Command], and print its usage along with its flags.
A [CommandFunc] can return a [UsageError] to signal that the user needs to see usage information.

[pflag]: https://github.com/spf13/pflag
*/
package cli
