package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpw-go/mpw/pkg/algorithm"
	"github.com/mpw-go/mpw/pkg/identicon"
	"github.com/mpw-go/mpw/pkg/marshal"
	"github.com/mpw-go/mpw/pkg/vault"
)

// timeBasedCounterWindow is the interval a counter of 0 resolves over:
// the derived credential rotates every 5 minutes.
const timeBasedCounterWindow = 5 * time.Minute

func run(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageErrorf("expected exactly one site name")
	}
	siteName := args[0]

	purpose, err := algorithm.ParsePurpose(opts.purposeName)
	if err != nil {
		return usageErrorf("%v", err)
	}
	var explicitType algorithm.ResultType
	if opts.typeName != "" {
		if explicitType, err = algorithm.ParseResultType(opts.typeName); err != nil {
			return usageErrorf("%v", err)
		}
	}
	explicitVersion, err := resolveVersion(cmd)
	if err != nil {
		return err
	}
	preferred, fixed, err := resolveFormat()
	if err != nil {
		return err
	}

	fullName, allowUpdate, err := resolveFullName()
	if err != nil {
		return err
	}
	masterSecret, err := promptSecret(fmt.Sprintf("%s's master password:", fullName))
	if err != nil || masterSecret == "" {
		return dataErrorf("no master password given")
	}
	if id := identicon.New(fullName, masterSecret); id != nil {
		fmt.Fprintf(os.Stderr, "%s\n", id)
	}

	v, err := vault.New(vault.Config{LoggerFactory: loggerFactory()})
	if err != nil {
		return err
	}
	load := v.Load
	if allowUpdate {
		load = v.Reset
	}
	user, saveFormat, err := load(fullName, masterSecret, preferred, fixed)
	if err != nil {
		return err
	}
	defer user.Wipe()

	switch opts.redacted {
	case "":
	case "0":
		user.Redacted = false
	case "1":
		user.Redacted = true
	default:
		return usageErrorf("-R takes 0 or 1, got %q", opts.redacted)
	}

	site := user.FindSite(siteName)
	if site == nil {
		site = user.AddSite(siteName)
		if explicitVersion != nil {
			site.Algorithm = *explicitVersion
		}
	}
	if cmd.Flags().Changed("counter") {
		site.Counter = opts.counter
	}
	if cmd.Flags().Changed("algorithm") && explicitVersion != nil {
		site.Algorithm = *explicitVersion
	}

	// The site record remembers the authentication type; logins and
	// answers use the purpose's default unless -t overrides, and their
	// type is not persisted. Alternative types (-t K) are one-off
	// requests and do not become the site's stored default either.
	resultType := site.Type
	if purpose != algorithm.PurposeAuthentication {
		resultType = purpose.DefaultType()
	}
	if explicitType != 0 {
		resultType = explicitType
		if purpose == algorithm.PurposeAuthentication && !explicitType.Has(algorithm.FeatureAlternative) {
			site.Type = explicitType
		}
	}

	counter := site.Counter
	if counter == 0 {
		counter = uint32(time.Now().Unix() / int64(timeBasedCounterWindow.Seconds()))
	}

	key, err := user.MasterKey(site.Algorithm)
	if err != nil {
		return err
	}

	param := opts.param
	if resultType.Class() == algorithm.ResultClassStateful {
		if opts.param != "" {
			state, err := algorithm.SiteState(key, siteName, counter, purpose, opts.context, resultType, opts.param)
			if err != nil {
				return err
			}
			site.Content = state
			if resultType.Has(algorithm.FeatureDevicePrivate) {
				fmt.Fprintln(os.Stderr, "note: device-private content stays on this device and is never exported")
			}
		}
		param = site.Content
	}

	result, err := algorithm.SiteResult(key, siteName, counter, purpose, opts.context, resultType, param)
	if err != nil {
		return err
	}
	fmt.Println(result)

	now := time.Now()
	site.Use(now)
	user.LastUsed = now.UTC().Truncate(time.Second)
	return v.Save(user, saveFormat)
}

// resolveFullName picks the user's full name from -U, -u, the
// environment, or an interactive prompt, in that order.
func resolveFullName() (fullName string, allowUpdate bool, err error) {
	switch {
	case opts.updateUser != "":
		return opts.updateUser, true, nil
	case opts.fullName != "":
		return opts.fullName, false, nil
	}
	if name := env.GetString("fullname"); name != "" {
		return name, false, nil
	}
	name, err := promptLine("Your full name:")
	if err != nil || name == "" {
		return "", false, dataErrorf("no full name given")
	}
	return name, false, nil
}

// resolveVersion picks the algorithm version from -a or the
// environment; nil means no explicit choice.
func resolveVersion(cmd *cobra.Command) (*algorithm.Version, error) {
	if cmd.Flags().Changed("algorithm") {
		v, err := algorithm.ParseVersion(opts.algorithm)
		if err != nil {
			return nil, usageErrorf("%v", err)
		}
		return &v, nil
	}
	if s := env.GetString("algorithm"); s != "" {
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return nil, usageErrorf("invalid %s value %q", envAlgorithm, s)
		}
		v, err := algorithm.ParseVersion(n)
		if err != nil {
			return nil, usageErrorf("%v", err)
		}
		return &v, nil
	}
	return nil, nil
}

// resolveFormat picks the sites file format from -F, -f, or the
// environment; the default is the structured format with fallback to
// the legacy flat file.
func resolveFormat() (preferred marshal.Format, fixed bool, err error) {
	name, fixed := opts.format, false
	if opts.fixedFormat != "" {
		name, fixed = opts.fixedFormat, true
	}
	if name == "" {
		name = env.GetString("format")
	}
	if name == "" {
		return marshal.FormatJSON, false, nil
	}
	f, err := marshal.ParseFormat(name)
	if err != nil {
		return 0, false, usageErrorf("%v", err)
	}
	if f == marshal.FormatAuto {
		return 0, false, usageErrorf("format %q is only valid when reading", name)
	}
	return f, fixed, nil
}
