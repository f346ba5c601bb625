package cmds

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nimp-run/nimp-run/pkg/config"
	"github.com/nimp-run/nimp-run/pkg/logflags"
	"github.com/nimp-run/nimp-run/pkg/proc"
	"github.com/nimp-run/nimp-run/pkg/proc/native"
	"github.com/nimp-run/nimp-run/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// configPath is the path of the optional config file.
	configPath string

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command
)

// launch starts the debuggee. Tests replace it with a fake backend.
var launch = func(cmd []string) (proc.Process, error) {
	p, err := native.Launch(cmd)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ExitError is returned by the root command when nimp-run must exit with
// a nonzero status. The diagnostic, if any, was already printed.
type ExitError struct {
	Status int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Status)
}

const nimpRunCommandLongDesc = `nimp-run launches a program as its debugger and copies everything the
program writes with OutputDebugString to standard output.

Some runtimes, cygwin for example, only report diagnostics through the
debug string channel, which is invisible to a regular parent process. The
first two debug strings starting with "cYg" are dropped: they are the
banners the cygwin runtime prints while it initializes.

nimp-run flags must come before the program, everything after the program
is passed to it unchanged. Arguments containing spaces are quoted, double
quotes inside arguments are not escaped.

nimp-run exits with status 0 if the program exits with status 0, and 1
otherwise.

Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:

	launcher	Log process creation and teardown
	pump		Log every debug event
	config		Log configuration loading

Additionally --log-dest can be used to specify where the logs should be
written. If the argument is a number it will be interpreted as a file
descriptor, otherwise as a file path. Logs go to standard error by default.

The optional file given with --config is a YAML document:

	# number of startup banners to drop (default 2)
	startup-skip: 2
	# prefix of the startup banners (default "cYg", "" disables the filter)
	startup-signature: cYg
	# do not print the "executing" and "process exited" lines
	quiet: false
`

// New returns an initialized command tree.
func New() *cobra.Command {
	rootCommand = &cobra.Command{
		Use:           "nimp-run [flags] <program> [args...]",
		Short:         "Run a program and relay its debug strings to standard output.",
		Long:          nimpRunCommandLongDesc,
		Version:       version.NimpRunVersion.String(),
		Args:          cobra.ArbitraryArgs,
		RunE:          runCmd,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCommand.SetVersionTemplate("nimp-run\n{{.Version}}\n")
	rootCommand.Flags().SetInterspersed(false)
	addFlags(rootCommand.Flags())

	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

func addFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&log, "log", "", false, "Enable logging.")
	fs.StringVarP(&logOutput, "log-output", "", "", "Comma separated list of components that should produce debug output.")
	fs.StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")
	fs.StringVar(&configPath, "config", "", "Path of a YAML config file.")
}

func runCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) < 1 {
		fmt.Fprintln(out, "nimp-run: too few arguments.")
		return &ExitError{Status: 1}
	}

	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		fmt.Fprintf(out, "nimp-run: %v\n", err)
		return &ExitError{Status: 1}
	}
	defer logflags.Close()

	conf, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(out, "nimp-run: %v\n", err)
		return &ExitError{Status: 1}
	}

	if status := execute(args, conf, out); status != 0 {
		return &ExitError{Status: status}
	}
	return nil
}

func execute(args []string, conf *config.Config, out io.Writer) int {
	logger := logflags.LauncherLogger()
	if logflags.Launcher() {
		logger.Debugf("nimp-run %s\n%s", version.NimpRunVersion, version.BuildInfo())
	}

	cmdline := proc.BuildCommandLine(args)
	if got := proc.SplitCommandLine(cmdline); !slices.Equal(got, args) {
		logger.Warnf("arguments %q will be received as %q", args, got)
	}

	if !conf.Quiet {
		wd, err := os.Getwd()
		if err != nil {
			wd = "?"
		}
		fmt.Fprintf(out, "nimp-run: executing %s (%s) [in %s]\n", args[0], strings.TrimSuffix(cmdline, " "), wd)
	}

	p, err := launch(args)
	if err != nil {
		reportFatal(out, args[0], err)
		return 1
	}

	status, err := proc.NewPump(p, out, conf.PumpConfig()).Run()
	if err != nil {
		reportFatal(out, args[0], err)
		return 1
	}

	if !conf.Quiet {
		fmt.Fprintf(out, "nimp-run: process exited with status %d (0x%08x)\n", int32(status), status)
	}
	return proc.ExitStatus(status)
}

func reportFatal(out io.Writer, target string, err error) {
	var operr *proc.OpError
	if errors.As(err, &operr) {
		fmt.Fprintf(out, "nimp-run: cannot %s(%s): 0x%08x\n", operr.Op, operr.Target, operr.Code())
		logflags.LauncherLogger().Errorf("%s: %v", operr.Op, operr.Err)
		return
	}
	fmt.Fprintf(out, "nimp-run: cannot run %s: %v\n", target, err)
}
