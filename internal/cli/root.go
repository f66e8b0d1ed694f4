// Package cli implements the mpw command: resolve the user and site
// parameters from flags, environment and the sites file, derive the
// requested credential, and write the updated sites file back.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mpw-go/mpw/pkg/algorithm"
	"github.com/mpw-go/mpw/pkg/marshal"
)

// sysexits-style process exit codes.
const (
	exitOK       = 0
	exitUsage    = 64 // command line usage error
	exitData     = 65 // missing or invalid user input
	exitSoftware = 70 // derivation failure
)

// Environment variables consulted for defaults.
const (
	envFullName  = "MP_FULLNAME"
	envAlgorithm = "MP_ALGORITHM"
	envFormat    = "MP_FORMAT"
)

var opts struct {
	fullName    string
	updateUser  string
	typeName    string
	counter     uint32
	algorithm   int
	param       string
	purposeName string
	context     string
	format      string
	fixedFormat string
	redacted    string
	verbose     int
	quiet       int
}

var env = viper.New()

var rootCmd = &cobra.Command{
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Use:   "mpw [flags] site-name",
	Short: "Derive site-specific credentials from a master secret",
	Long: `mpw derives passwords, login names, security answers and keys for a
site from your full name and master secret. Nothing is stored: the same
inputs always derive the same credential.

Site parameters are remembered in ~/.mpw.d/<Full Name>.mpsites.json
(or the legacy .mpsites flat file).`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.fullName, "user", "u", "", "Full name of the user (checks the master secret against the sites file)")
	flags.StringVarP(&opts.updateUser, "update-user", "U", "", "Full name of the user, allowing a master secret update")
	flags.StringVarP(&opts.typeName, "type", "t", "", "Result type: x/maximum, l/long, m/medium, b/basic, s/short, i/pin, n/name, p/phrase, K/key, P/personal")
	flags.Uint32VarP(&opts.counter, "counter", "c", 1, "Site counter (0 selects a time-based counter)")
	flags.IntVarP(&opts.algorithm, "algorithm", "a", int(algorithm.VersionCurrent), "Algorithm version, 0-3")
	flags.StringVarP(&opts.param, "param", "s", "", "Value to save for -t P, or key size in bits for -t K")
	flags.StringVarP(&opts.purposeName, "purpose", "p", "a", "Purpose: a/auth, i/ident, r/rec")
	flags.StringVarP(&opts.context, "context", "C", "", "Purpose-specific context, e.g. the keyword of a security question")
	flags.StringVarP(&opts.format, "format", "f", "", "Sites file format (n/f/j), allowing fallback")
	flags.StringVarP(&opts.fixedFormat, "fixed-format", "F", "", "Sites file format (n/f/j), no fallback")
	flags.StringVarP(&opts.redacted, "redacted", "R", "", "Save the sites file redacted (1) or with visible passwords (0)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Increase output verbosity (repeatable)")
	flags.CountVarP(&opts.quiet, "quiet", "q", "Decrease output verbosity (repeatable)")

	env.BindEnv("fullname", envFullName)
	env.BindEnv("algorithm", envAlgorithm)
	env.BindEnv("format", envFormat)
}

// Execute runs the command and exits with a sysexits-style code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mpw: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

// exitCode classifies an error per the exit-code contract: 64 for
// usage problems, 65 for bad or missing user data, 70 for failures in
// the derivation machinery.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, algorithm.ErrCryptoFailure):
		return exitSoftware
	case errors.Is(err, marshal.ErrWrongMasterPassword),
		errors.Is(err, marshal.ErrMalformed),
		errors.Is(err, marshal.ErrMissingField),
		errors.Is(err, algorithm.ErrUnsupportedVersion),
		errors.Is(err, algorithm.ErrInvalidInput):
		return exitData
	}
	return exitUsage
}

// exitError pins an explicit exit code onto an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func dataErrorf(format string, args ...any) error {
	return &exitError{code: exitData, err: fmt.Errorf(format, args...)}
}

// loggerFactory builds the pion logger factory for the requested
// verbosity. The default level is warnings only.
func loggerFactory() logging.LoggerFactory {
	factory := logging.NewDefaultLoggerFactory()
	switch level := opts.verbose - opts.quiet; {
	case level <= -2:
		factory.DefaultLogLevel = logging.LogLevelDisabled
	case level == -1:
		factory.DefaultLogLevel = logging.LogLevelError
	case level == 0:
		factory.DefaultLogLevel = logging.LogLevelWarn
	case level == 1:
		factory.DefaultLogLevel = logging.LogLevelInfo
	case level == 2:
		factory.DefaultLogLevel = logging.LogLevelDebug
	default:
		factory.DefaultLogLevel = logging.LogLevelTrace
	}
	return factory
}
