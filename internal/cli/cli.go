package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/plugtree/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList collects a repeatable flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("plugtree", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
plugtree - Loads a directory of plugin units into a lazily built object tree.

Usage:
  plugtree [options] [PLUGINS_PATH]

Arguments:
  PLUGINS_PATH
    Directory containing .hcl plugin units. Sub-directories hold nested plugins.

Options:
`)
		flagSet.PrintDefaults()
	}

	var unwrap pathList
	pluginsFlag := flagSet.String("plugins", "", "Path to the plugin directory.")
	pFlag := flagSet.String("p", "", "Path to the plugin directory (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	treeFlag := flagSet.Bool("tree", false, "Print the node tree after loading.")
	continueFlag := flagSet.Bool("continue-on-error", false, "Keep loading other plugins when one fails.")
	flagSet.Var(&unwrap, "unwrap", "Tree path to materialize and print. Repeatable.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *pluginsFlag != "" {
		path = *pluginsFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Plugins path determined.", "path", path)

	if path == "" {
		slog.Debug("No plugins path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	for _, p := range unwrap {
		if !strings.HasPrefix(p, "/") {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid unwrap path %q: must be absolute", p)}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PluginsPath:     path,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Unwrap:          unwrap,
		PrintTree:       *treeFlag,
		ContinueOnError: *continueFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
