package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pion/logging"

	"github.com/mpw-go/mpw/pkg/algorithm"
	"github.com/mpw-go/mpw/pkg/marshal"
)

func TestExitCodeClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"explicit_usage", usageErrorf("bad flag"), exitUsage},
		{"explicit_data", dataErrorf("no input"), exitData},
		{"wrong_master_password", fmt.Errorf("load: %w", marshal.ErrWrongMasterPassword), exitData},
		{"malformed", fmt.Errorf("load: %w", marshal.ErrMalformed), exitData},
		{"missing_field", marshal.ErrMissingField, exitData},
		{"unsupported_version", algorithm.ErrUnsupportedVersion, exitData},
		{"invalid_input", algorithm.ErrInvalidInput, exitData},
		{"crypto_failure", fmt.Errorf("derive: %w", algorithm.ErrCryptoFailure), exitSoftware},
		{"unknown", errors.New("flag provided but not defined"), exitUsage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestResolveFormat(t *testing.T) {
	restore := opts
	defer func() { opts = restore }()

	opts.format, opts.fixedFormat = "", ""
	f, fixed, err := resolveFormat()
	if err != nil || f != marshal.FormatJSON || fixed {
		t.Errorf("default = %v, %v, %v", f, fixed, err)
	}

	opts.format = "f"
	f, fixed, err = resolveFormat()
	if err != nil || f != marshal.FormatFlat || fixed {
		t.Errorf("-f flat = %v, %v, %v", f, fixed, err)
	}

	opts.fixedFormat = "j"
	f, fixed, err = resolveFormat()
	if err != nil || f != marshal.FormatJSON || !fixed {
		t.Errorf("-F json = %v, %v, %v", f, fixed, err)
	}

	opts.format, opts.fixedFormat = "bogus", ""
	if _, _, err = resolveFormat(); exitCode(err) != exitUsage {
		t.Errorf("bogus format error = %v", err)
	}
}

func TestLoggerFactoryLevels(t *testing.T) {
	restore := opts
	defer func() { opts = restore }()

	cases := []struct {
		verbose, quiet int
		want           logging.LogLevel
	}{
		{0, 0, logging.LogLevelWarn},
		{1, 0, logging.LogLevelInfo},
		{2, 0, logging.LogLevelDebug},
		{3, 0, logging.LogLevelTrace},
		{0, 1, logging.LogLevelError},
		{0, 2, logging.LogLevelDisabled},
	}
	for _, tc := range cases {
		opts.verbose, opts.quiet = tc.verbose, tc.quiet
		factory := loggerFactory().(*logging.DefaultLoggerFactory)
		if factory.DefaultLogLevel != tc.want {
			t.Errorf("verbosity %+d: level = %v, want %v", tc.verbose-tc.quiet, factory.DefaultLogLevel, tc.want)
		}
	}
}
