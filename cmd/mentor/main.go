// Package main provides the mentor CLI entry point.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mentor/cmd/mentor/chat"
	"mentor/internal/config"
	"mentor/internal/extract"
	"mentor/internal/gateway"
)

var (
	// Global flags
	verbose   bool
	serverURL string
	speak     bool
	timeout   time.Duration
	outFile   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mentor",
	Short: "Mentor - interactive tech career counsellor",
	Long: `Mentor is an interactive career counselling client.

It walks you through a short conversation (name, education, domain),
runs a yes/no skill assessment against the counselling backend, and
presents your level, study topics, and an optional step-by-step roadmap.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.DefaultPath())
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("server") {
			cfg.Server.BaseURL = serverURL
		}
		if cmd.Flags().Changed("speak") {
			cfg.Speech.Enabled = speak
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Server.Timeout = timeout.String()
		}

		// Logs go to a file so they never fight the TUI for the terminal.
		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{cfg.Logging.File}
		zc.ErrorOutputPaths = []string{cfg.Logging.File}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if lvl, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			zc.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		m, err := chat.InitChat(cfg, logger)
		if err != nil {
			return err
		}
		return chat.Run(m)
	},
}

// roadmapCmd prints a detailed roadmap without entering the chat.
var roadmapCmd = &cobra.Command{
	Use:   "roadmap [domain]",
	Short: "Print the detailed learning roadmap for a domain",
	Long: `Fetches the step-by-step roadmap for a domain and renders it to the
terminal.

Example:
  mentor roadmap backend`,
	Args: cobra.MinimumNArgs(1),
	RunE: printRoadmap,
}

// downloadCmd saves the roadmap PDF produced by the backend.
var downloadCmd = &cobra.Command{
	Use:   "download [domain]",
	Short: "Download the roadmap PDF for a domain",
	Args:  cobra.MinimumNArgs(1),
	RunE:  downloadRoadmap,
}

func resolveDomain(args []string) (string, error) {
	raw := strings.Join(args, " ")
	domain, ok := extract.Domain(raw, extract.Catalog)
	if !ok {
		return "", fmt.Errorf("unknown domain %q (available: %s)", raw, strings.Join(extract.Catalog, ", "))
	}
	return domain, nil
}

func printRoadmap(cmd *cobra.Command, args []string) error {
	domain, err := resolveDomain(args)
	if err != nil {
		return err
	}

	gw := gateway.NewHTTPClient(cfg.Server.BaseURL, cfg.GetServerTimeout(), logger)
	rm, err := gw.RequestDetailedRoadmap(cmd.Context(), domain)
	if err != nil {
		return fmt.Errorf("fetch roadmap: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# " + rm.Title + "\n\n")
	if rm.Description != "" {
		sb.WriteString(rm.Description + "\n\n")
	}
	if rm.Duration != "" {
		sb.WriteString("**Estimated duration:** " + rm.Duration + "\n\n")
	}
	for _, step := range rm.Steps {
		sb.WriteString(fmt.Sprintf("## Step %d: %s\n\n", step.Step, step.Title))
		for _, t := range step.Topics {
			sb.WriteString("- " + t + "\n")
		}
		sb.WriteString("\n")
	}

	out, err := glamour.Render(sb.String(), "auto")
	if err != nil {
		// Unstyled is still useful.
		out = sb.String()
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func downloadRoadmap(cmd *cobra.Command, args []string) error {
	domain, err := resolveDomain(args)
	if err != nil {
		return err
	}

	gw := gateway.NewHTTPClient(cfg.Server.BaseURL, cfg.GetServerTimeout(), logger)
	data, err := gw.DownloadRoadmapArtifact(cmd.Context(), domain)
	if err != nil {
		return fmt.Errorf("download roadmap: %w", err)
	}

	path := outFile
	if path == "" {
		path = strings.ReplaceAll(domain, " ", "-") + "-roadmap.pdf"
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved roadmap to %s (%d bytes)\n", path, len(data))
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "counsellor backend base URL")
	rootCmd.PersistentFlags().BoolVar(&speak, "speak", false, "narrate counsellor replies aloud")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "gateway request timeout")

	downloadCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file path")

	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(downloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
