package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version string

	// Global flags
	flagAPIURL  string
	flagToken   string
	flagContext string
	flagOutput  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "folio-admin",
	Short: "Portfolio site administration CLI",
	Long: `folio-admin is a CLI for operating the portfolio site backend.

It provides commands to inspect traffic analytics, review detected
threats, and export the attacker blacklist.

Use "folio-admin config set-context" followed by "folio-admin login"
to configure your connection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Override API URL (env: FOLIO_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Override auth token (env: FOLIO_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&flagContext, "context", "c", "", "Use specific context (env: FOLIO_CONTEXT)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(realtimeCmd)
	rootCmd.AddCommand(securityCmd)
	rootCmd.AddCommand(blacklistCmd)
}

func initConfig() {
	if flagAPIURL == "" {
		flagAPIURL = os.Getenv("FOLIO_API_URL")
	}
	if flagToken == "" {
		flagToken = os.Getenv("FOLIO_TOKEN")
	}

	if flagAPIURL == "" || flagToken == "" {
		u, t := resolveFromConfigFile()
		if flagAPIURL == "" {
			flagAPIURL = u
		}
		if flagToken == "" {
			flagToken = t
		}
	}
}

func resolveFromConfigFile() (string, string) {
	ctxName := flagContext
	if ctxName == "" {
		ctxName = os.Getenv("FOLIO_CONTEXT")
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", ""
	}

	if ctxName == "" {
		ctxName = cfg.CurrentContext
	}

	ctx := cfg.GetContext(ctxName)
	if ctx == nil {
		return "", ""
	}

	token := ctx.Context.Token
	if token == "" && ctx.Context.TokenFile != "" {
		data, err := os.ReadFile(expandPath(ctx.Context.TokenFile))
		if err == nil {
			token = string(data)
		}
	}

	return ctx.Context.APIURL, token
}

func mustClient() *Client {
	if flagAPIURL == "" {
		fmt.Fprintln(os.Stderr, "Error: API URL not configured. Use --api-url, FOLIO_API_URL, or 'folio-admin config set-context'")
		os.Exit(1)
	}
	return NewClient(flagAPIURL, flagToken, flagVerbose)
}

func mustAuthClient() *Client {
	c := mustClient()
	if flagToken == "" {
		fmt.Fprintln(os.Stderr, "Error: not authenticated. Use --token, FOLIO_TOKEN, or 'folio-admin login'")
		os.Exit(1)
	}
	return c
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("folio-admin version %s\n", version)
		fmt.Printf("  Go:       %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display backend connection status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := mustClient()
		data, err := client.Get("/health")
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}

		var resp HealthResponse
		if err := unmarshal(data, &resp); err != nil {
			return err
		}

		if flagOutput == outputJSON {
			printJSON(resp)
			return nil
		}
		if flagOutput == outputYAML {
			printYAML(resp)
			return nil
		}

		fmt.Fprintf(os.Stdout, "Portfolio backend\n")
		fmt.Fprintf(os.Stdout, "  API URL:  %s\n", flagAPIURL)
		fmt.Fprintf(os.Stdout, "  Status:   %s\n", resp.Status)
		if len(resp.Checks) > 0 {
			fmt.Fprintf(os.Stdout, "\nChecks:\n")
			for name, check := range resp.Checks {
				if check.Error != "" {
					fmt.Fprintf(os.Stdout, "  %-10s %s (%s)\n", name+":", check.Status, check.Error)
				} else {
					fmt.Fprintf(os.Stdout, "  %-10s %s\n", name+":", check.Status)
				}
			}
		}
		return nil
	},
}
