package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"bx-toolkit/internal/app"
	"bx-toolkit/internal/export"
	"bx-toolkit/pkg/models"
)

// Build-time variables injected via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	goVersion = runtime.Version()
)

var rootCmd = &cobra.Command{
	Use:   "bxkit [request]",
	Short: "Generate brand strategy and BX documents from a short brief",
	Long: `bxkit turns a short brand brief into a structured brand strategy and brand
experience (BX) document using an OpenAI-compatible chat model.

The request can be given as an argument, with --request, in a --brief file, or
entered interactively. Company and request are required; everything else has a
default. The generated document goes to the output target (stdout by default)
and is exported as .txt and .json files unless --no-export is set.

The API key is read from api_key in ~/.config/bxkit/config.toml, BXKIT_API_KEY
or OPENAI_API_KEY. Interactive runs ask for it when none is configured.

Interactive mode can be controlled via config (interactive_default), overridden with
-i (force interactive) or -y (force non-interactive).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
			versionCmd.Run(cmd, args)
			return nil
		}

		request, err := buildRequestFromFlags(cmd, args)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return app.Run(ctx, request)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print detailed version information including build version, commit, date, and platform details.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bxkit version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		fmt.Printf("  go version: %s\n", goVersion)
		fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported chat models",
	RunE: func(cmd *cobra.Command, args []string) error {
		request := models.NewRunRequest()
		request.ConfigPath, _ = cmd.Flags().GetString("config")
		return app.ListModels(request, cmd.OutOrStdout())
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt [request]",
	Short: "Print the prompts that would be sent, without calling the model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := buildRequestFromFlags(cmd, args)
		if err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return app.PrintPrompts(request, cmd.OutOrStdout())
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the exported record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.PrintSchema(cmd.OutOrStdout())
	},
}

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "List curated branding case studies and design guidelines",
	Run: func(cmd *cobra.Command, args []string) {
		app.ListReferences(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(refsCmd)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path (default ~/.config/bxkit/config.toml)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "noninteractive mode - use flags and defaults without prompts")
	rootCmd.PersistentFlags().BoolP("interactive", "i", false, "force interactive mode (overrides config default)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "print version information")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	addBriefFlags(rootCmd)
	addBriefFlags(promptCmd)

	// Main command flags
	rootCmd.Flags().StringP("target", "t", "", "output target (clipboard, stdout, file:/path)")
	rootCmd.Flags().StringP("editor", "e", "", "editor to open the document in")
	rootCmd.Flags().String("export", "", "export formats, comma separated (txt,json)")
	rootCmd.Flags().String("export-dir", "", "directory for exported files")
	rootCmd.Flags().Bool("no-export", false, "skip writing export files")
	rootCmd.Flags().Bool("dry-run", false, "print the prompts instead of calling the model")
	rootCmd.Flags().BoolP("numbers", "n", false, "enable number key selection in the form")
}

// addBriefFlags registers the brief and generation setting flags
func addBriefFlags(cmd *cobra.Command) {
	cmd.Flags().String("company", "", "company or brand name (required)")
	cmd.Flags().String("industry", "", "industry or category")
	cmd.Flags().String("region", "", "region or market")
	cmd.Flags().String("competitors", "", "main competitors")
	cmd.Flags().String("audience", "", "core target audience")
	cmd.Flags().String("mode", "", "project type: "+variantHelp(models.AllModes()))
	cmd.Flags().String("tone", "", "tone and manner: "+variantHelp(models.AllTones()))
	cmd.Flags().String("depth", "", "level of detail: "+variantHelp(models.AllDepths()))
	cmd.Flags().String("request", "", "what the document should deliver (required)")
	cmd.Flags().String("constraints", "", "constraints or notes")
	cmd.Flags().String("brief", "", "YAML or JSON brief file")
	cmd.Flags().String("model", "", "chat model ("+strings.Join(models.SupportedModels, ", ")+")")
	cmd.Flags().Float64("temperature", models.DefaultTemperature, "sampling temperature (0.0-2.0)")
	cmd.Flags().Int("max-tokens", 0, fmt.Sprintf("maximum tokens to generate (%d-%d)", models.MinMaxTokens, models.MaxMaxTokens))
}

type variant interface {
	Key() string
	String() string
}

func variantHelp[T variant](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s (%s)", v.Key(), v.String())
	}
	return strings.Join(parts, ", ")
}

// buildRequestFromFlags constructs a RunRequest from command flags and arguments
func buildRequestFromFlags(cmd *cobra.Command, args []string) (*models.RunRequest, error) {
	request := models.NewRunRequest()
	flags := cmd.Flags()
	var err error

	if request.ConfigPath, err = flags.GetString("config"); err != nil {
		return nil, fmt.Errorf("invalid config flag: %w", err)
	}

	// Handle interactive mode flags
	if request.ForceNonInteractive, err = flags.GetBool("yes"); err != nil {
		return nil, fmt.Errorf("invalid yes flag: %w", err)
	}
	if request.ForceInteractive, err = flags.GetBool("interactive"); err != nil {
		return nil, fmt.Errorf("invalid interactive flag: %w", err)
	}
	if request.ForceInteractive && request.ForceNonInteractive {
		return nil, fmt.Errorf("cannot use both --interactive and --yes flags")
	}

	// Set initial interactive mode (will be resolved after config loading)
	request.Interactive = true

	if request.LogLevel, err = flags.GetString("log-level"); err != nil {
		return nil, fmt.Errorf("invalid log-level flag: %w", err)
	}

	brief := request.Brief
	text := []struct {
		name string
		dst  *string
	}{
		{"company", &brief.Company},
		{"industry", &brief.Industry},
		{"region", &brief.Region},
		{"competitors", &brief.Competitors},
		{"audience", &brief.Target},
		{"request", &brief.Request},
		{"constraints", &brief.Constraints},
	}
	for _, f := range text {
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, fmt.Errorf("invalid %s flag: %w", f.name, err)
		}
	}

	// The positional request takes precedence over --request
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		brief.Request = strings.TrimSpace(args[0])
	}

	if value, _ := flags.GetString("mode"); value != "" {
		if brief.Mode, err = models.ParseProjectMode(value); err != nil {
			return nil, fmt.Errorf("invalid mode flag: %w", err)
		}
	}
	if value, _ := flags.GetString("tone"); value != "" {
		if brief.Tone, err = models.ParseTone(value); err != nil {
			return nil, fmt.Errorf("invalid tone flag: %w", err)
		}
	}
	if value, _ := flags.GetString("depth"); value != "" {
		if brief.Depth, err = models.ParseDepth(value); err != nil {
			return nil, fmt.Errorf("invalid depth flag: %w", err)
		}
	}

	if request.BriefFile, err = flags.GetString("brief"); err != nil {
		return nil, fmt.Errorf("invalid brief flag: %w", err)
	}

	if request.Model, err = flags.GetString("model"); err != nil {
		return nil, fmt.Errorf("invalid model flag: %w", err)
	}
	if request.Model != "" && !models.IsSupportedModel(request.Model) {
		return nil, fmt.Errorf("unsupported model %q (must be one of %s)", request.Model, strings.Join(models.SupportedModels, ", "))
	}

	// Only an explicitly set temperature overrides the config
	if flags.Changed("temperature") {
		temperature, err := flags.GetFloat64("temperature")
		if err != nil {
			return nil, fmt.Errorf("invalid temperature flag: %w", err)
		}
		request.Temperature = &temperature
	}

	if request.MaxTokens, err = flags.GetInt("max-tokens"); err != nil {
		return nil, fmt.Errorf("invalid max-tokens flag: %w", err)
	}

	// Output and export flags exist on the root command only
	if flags.Lookup("target") == nil {
		return request, nil
	}

	if request.Target, err = flags.GetString("target"); err != nil {
		return nil, fmt.Errorf("invalid target flag: %w", err)
	}

	if request.Editor, err = flags.GetString("editor"); err != nil {
		return nil, fmt.Errorf("invalid editor flag: %w", err)
	}
	// Track if --editor flag was explicitly set
	request.EditorRequested = flags.Changed("editor")

	if formats, err := flags.GetString("export"); err != nil {
		return nil, fmt.Errorf("invalid export flag: %w", err)
	} else if formats != "" {
		if request.ExportFormats, err = export.ParseFormats(formats); err != nil {
			return nil, fmt.Errorf("invalid export flag: %w", err)
		}
	}

	if request.ExportDir, err = flags.GetString("export-dir"); err != nil {
		return nil, fmt.Errorf("invalid export-dir flag: %w", err)
	}
	if request.NoExport, err = flags.GetBool("no-export"); err != nil {
		return nil, fmt.Errorf("invalid no-export flag: %w", err)
	}
	if request.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return nil, fmt.Errorf("invalid dry-run flag: %w", err)
	}
	if request.NumberSelect, err = flags.GetBool("numbers"); err != nil {
		return nil, fmt.Errorf("invalid numbers flag: %w", err)
	}

	return request, nil
}

func main() {
	// Disable usage on error to show only our custom error messages
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
