// Package launch starts the configurator after installation with the
// language the installer ran in.
package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
	"golang.org/x/text/language"
)

// Supported lists the UI translations shipped with the configurator, in the
// spelling its --language flag expects.
var Supported = []string{"en", "zh_CN", "pt", "de", "it", "ja"}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.SimplifiedChinese,
	language.Portuguese,
	language.German,
	language.Italian,
	language.Japanese,
})

// Options describes one launch.
type Options struct {
	Executable string
	Language   string
	Device     string
	ExtraArgs  string
}

// NormalizeLanguage maps a locale such as "de_DE.UTF-8", "pt-BR" or
// "zh-Hans" onto one of Supported. Unknown or empty input yields "en".
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" || raw == "C" || raw == "POSIX" {
		return "en"
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return "en"
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	return Supported[idx]
}

// DetectLanguage returns the configured language or, when empty, the one
// named by LC_ALL, LC_MESSAGES or LANG as read through getenv.
func DetectLanguage(configured string, getenv func(string) string) string {
	if configured != "" {
		return NormalizeLanguage(configured)
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, k := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(k); v != "" {
			return NormalizeLanguage(v)
		}
	}
	return "en"
}

// Args builds the configurator command line. English is the application
// default, so --language is only passed for other locales.
func Args(opts Options) ([]string, error) {
	var args []string
	if lang := NormalizeLanguage(opts.Language); lang != "en" {
		args = append(args, "--language", lang)
	}
	if opts.Device != "" {
		args = append(args, "--device", opts.Device)
	}
	if opts.ExtraArgs != "" {
		extra, err := shellquote.Split(opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("parse extra args: %w", err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// Command returns the command that would be started.
func Command(ctx context.Context, opts Options) (*exec.Cmd, error) {
	if opts.Executable == "" {
		return nil, fmt.Errorf("no executable configured")
	}
	args, err := Args(opts)
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, opts.Executable, args...), nil
}

// Start launches the configurator and returns its pid without waiting for it.
func Start(opts Options) (int, error) {
	// The application outlives the installer, so it must not be bound to a
	// context that the installer cancels on exit.
	cmd, err := Command(context.Background(), opts)
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", opts.Executable, err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
