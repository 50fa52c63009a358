// Package cli provides the cobra command tree for veritas.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/core/ports/driving"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Service requirements a command declares through its annotations.
const (
	annotationServices = "veritas/services"
	servicesNone       = "none"
	servicesSettings   = "settings"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Services used by the commands. Tests assign these directly.
var (
	ingestService   driving.IngestService
	searchService   driving.SearchService
	answerService   driving.AnswerService
	documentService driving.DocumentService
	settingsService driving.SettingsService
)

// Config carries the global flags to the service factory.
type Config struct {
	ConfigDir string
	DataDir   string
	Verbose   bool
}

// Services bundles the driving ports built by a Factory.
// Only Settings is required when withIndex is false.
type Services struct {
	Ingest   driving.IngestService
	Search   driving.SearchService
	Answer   driving.AnswerService
	Document driving.DocumentService
	Settings driving.SettingsService

	// Warnings are printed once before the command runs.
	Warnings []string

	// Close releases the index, catalogue and model clients.
	Close func()
}

// Factory builds the services a command needs.
type Factory func(cfg Config, withIndex bool) (*Services, error)

var (
	factory  Factory
	closeAll func()
)

var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Answer questions strictly from your own documents",
	Long: `Veritas ingests PDF, DOCX, Markdown, text, CSV and XLSX files into a local
evidence index and answers questions only from that evidence.

When the documents do not support an answer, veritas says so instead of guessing.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.veritas)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "index and catalogue directory (default <config-dir>/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetFactory installs the function that builds services before a command runs.
func SetFactory(f Factory) {
	factory = f
}

// Execute runs the root command and releases services afterwards.
// An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if closeAll != nil {
			closeAll()
			closeAll = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// prepare applies global flags and builds the services the command declared.
func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	need := cmd.Annotations[annotationServices]
	if need == servicesNone || factory == nil {
		return nil
	}

	if err := loadEnv(configDir); err != nil {
		return err
	}

	svc, err := factory(Config{ConfigDir: configDir, DataDir: dataDir, Verbose: verbose}, need != servicesSettings)
	if err != nil {
		return err
	}
	install(svc)

	for _, w := range svc.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	return nil
}

// install copies a built service bundle into the package-level ports.
func install(svc *Services) {
	ingestService = svc.Ingest
	searchService = svc.Search
	answerService = svc.Answer
	documentService = svc.Document
	settingsService = svc.Settings
	closeAll = svc.Close
}

// loadEnv reads .env files from the working directory and the config
// directory. Variables already set in the environment win.
func loadEnv(dir string) error {
	files := []string{".env"}
	if dir != "" {
		files = append(files, filepath.Join(dir, ".env"))
	} else if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".veritas", ".env"))
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
