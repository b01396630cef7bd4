// Package config binds the server's command-line surface (spec §6 CLI)
// using cobra/pflag, the way the pack's other key-value store CLIs
// (flonle-diy-redis, neekrasov-kvdb) wire their root commands.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// SavePoint is one "seconds:changes" auto-save threshold from --save
// (§4.D: "after M seconds since last snapshot and >= K mutations, request a
// background snapshot").
type SavePoint struct {
	Seconds int
	Changes int
}

// Config holds every flag accepted by the ferrodb-server binary.
type Config struct {
	Bind       string
	Port       uint16
	Dir        string
	AppendOnly bool
	SavePoints []SavePoint
	LogFormat  string
	LogLevel   string
}

func defaults() *Config {
	return &Config{
		Bind:       "127.0.0.1",
		Port:       6379,
		Dir:        ".",
		AppendOnly: false,
		SavePoints: []SavePoint{{Seconds: 60, Changes: 1}},
		LogFormat:  "text",
		LogLevel:   "info",
	}
}

// NewRootCommand builds the cobra root command; run is invoked with the
// parsed Config once flags are bound.
func NewRootCommand(run func(cfg *Config) error) *cobra.Command {
	cfg := defaults()
	var saveFlags []string
	var appendOnlyStr string

	cmd := &cobra.Command{
		Use:   "ferrodb-server",
		Short: "An in-memory, Redis-protocol-compatible key-value store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appendOnlyStr != "" {
				switch strings.ToLower(appendOnlyStr) {
				case "yes":
					cfg.AppendOnly = true
				case "no":
					cfg.AppendOnly = false
				default:
					return fmt.Errorf("--appendonly must be yes or no, got %q", appendOnlyStr)
				}
			}
			if len(saveFlags) > 0 {
				points, err := parseSavePoints(saveFlags)
				if err != nil {
					return err
				}
				cfg.SavePoints = points
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Bind, "bind", cfg.Bind, "address to bind the TCP listener to")
	flags.Uint16Var(&cfg.Port, "port", cfg.Port, "port to listen on")
	flags.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory for snapshot and AOF files")
	flags.StringVar(&appendOnlyStr, "appendonly", "", "enable the append-only log: yes or no")
	flags.StringArrayVar(&saveFlags, "save", nil, "auto-save threshold seconds:changes (repeatable)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log encoding: text or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	return cmd
}

// parseSavePoints parses the repeatable --save flag's "seconds:changes"
// values.
func parseSavePoints(raw []string) ([]SavePoint, error) {
	points := make([]SavePoint, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(r, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("--save value %q must be seconds:changes", r)
		}
		seconds, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("--save value %q: invalid seconds: %w", r, err)
		}
		changes, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("--save value %q: invalid changes: %w", r, err)
		}
		points = append(points, SavePoint{Seconds: seconds, Changes: changes})
	}
	return points, nil
}
