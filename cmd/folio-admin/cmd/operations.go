package cmd

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// login

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store a token in the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		if username == "" {
			return fmt.Errorf("--username is required")
		}
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		client := mustClient()
		data, err := client.Post("/api/v1/auth/login", map[string]string{
			"username": username,
			"password": password,
		})
		if err != nil {
			return err
		}

		var resp LoginResponse
		if err := unmarshal(data, &resp); err != nil {
			return err
		}

		noSave, _ := cmd.Flags().GetBool("no-save")
		if noSave {
			fmt.Println(resp.Token)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("no config found, run 'folio-admin config set-context' first: %w", err)
		}

		ctxName := flagContext
		if ctxName == "" {
			ctxName = cfg.CurrentContext
		}
		ctx := cfg.GetContext(ctxName)
		if ctx == nil {
			return fmt.Errorf("context %q not found", ctxName)
		}

		ctx.Context.Token = resp.Token
		ctx.Context.TokenFile = ""
		if err := saveConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Printf("Logged in. Token stored in context %q (expires %s).\n", ctxName, shortTime(resp.ExpiresAt))
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "Admin username")
	loginCmd.Flags().String("password", "", "Admin password (prompted if omitted)")
	loginCmd.Flags().Bool("no-save", false, "Print the token instead of storing it")
}

// analytics

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show the traffic analytics summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeRange, _ := cmd.Flags().GetString("range")

		client := mustAuthClient()
		data, err := client.Get("/api/v1/analytics?timeRange=" + url.QueryEscape(timeRange))
		if err != nil {
			return err
		}

		var resp AnalyticsResponse
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

		fmt.Printf("Traffic summary (%s)\n", resp.TimeRange)
		fmt.Printf("  Total visits:     %d\n", resp.TotalVisits)
		fmt.Printf("  Unique visitors:  %d\n", resp.UniqueVisitors)
		fmt.Printf("  Avg per visitor:  %.2f\n", resp.AvgPerVisitor)

		if len(resp.TopPages) > 0 {
			fmt.Println("\nTop pages:")
			t := newTable("PATH", "VISITS")
			for _, p := range resp.TopPages {
				t.AddRow(truncate(p.Path, 60), itoa(p.Count))
			}
			t.Flush()
		}

		printBreakdown("Browsers", resp.Browsers)
		printBreakdown("Devices", resp.Devices)
		printBreakdown("Operating systems", resp.OperatingSystem)
		printBreakdown("Referers", resp.Referers)
		return nil
	},
}

func printBreakdown(title string, rows []LabelCount) {
	if len(rows) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	t := newTable("LABEL", "VISITS")
	for _, r := range rows {
		t.AddRow(truncate(r.Label, 40), itoa(r.Count))
	}
	t.Flush()
}

func init() {
	analyticsCmd.Flags().String("range", "24h", "Time range: 1h, 24h, 7d, 30d")
}

// realtime

var realtimeCmd = &cobra.Command{
	Use:   "realtime",
	Short: "Show visitors active in the last few minutes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := mustAuthClient()
		data, err := client.Get("/api/v1/analytics/real-time")
		if err != nil {
			return err
		}

		var resp RealTimeResponse
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

		fmt.Printf("Active visitors: %d\n", resp.ActiveVisitors)
		if len(resp.CurrentPages) > 0 {
			fmt.Println("\nCurrent pages:")
			t := newTable("PATH", "VIEWERS")
			for _, p := range resp.CurrentPages {
				t.AddRow(truncate(p.Path, 60), itoa(p.Count))
			}
			t.Flush()
		}
		return nil
	},
}

// security

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Show the security summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeRange, _ := cmd.Flags().GetString("range")

		client := mustAuthClient()
		data, err := client.Get("/api/v1/security?timeRange=" + url.QueryEscape(timeRange))
		if err != nil {
			return err
		}

		var resp SecurityResponse
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

		fmt.Printf("Security summary (%s)\n", resp.TimeRange)
		fmt.Printf("  Total attempts:  %d\n", resp.TotalAttempts)
		fmt.Printf("  Blocked IPs:     %d\n", resp.BlockedIPs)

		if len(resp.RecentAttempts) > 0 {
			fmt.Println("\nRecent attempts:")
			t := newTable("IP", "REQUESTS", "PATHS", "STATUS", "DETECTED")
			for _, e := range resp.RecentAttempts {
				t.AddRow(
					e.IP,
					itoa(e.RequestCount),
					truncate(strings.Join(e.Paths, ","), 50),
					blockedStr(e.Blocked),
					shortTime(e.DetectedAt),
				)
			}
			t.Flush()
		}

		if len(resp.TopAttackerIPs) > 0 {
			fmt.Println("\nTop attackers:")
			t := newTable("IP", "ATTEMPTS", "LAST-SEEN")
			for _, e := range resp.TopAttackerIPs {
				t.AddRow(e.IP, itoa(e.AttemptCount), shortTime(e.LastSeen))
			}
			t.Flush()
		}
		return nil
	},
}

func init() {
	securityCmd.Flags().String("range", "24h", "Time range: 1h, 24h, 7d, 30d")
}

// blacklist

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Export the attacker blacklist",
	Long: `Export the attacker blacklist in one of the published formats.

The export endpoint is public, so no authentication is needed. The raw
export body is written to stdout or to --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		file, _ := cmd.Flags().GetString("file")

		client := mustClient()
		data, err := client.Get("/api/v1/security/blacklist?format=" + url.QueryEscape(format))
		if err != nil {
			return err
		}

		if file != "" {
			if err := os.WriteFile(file, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", file, err)
			}
			fmt.Printf("Blacklist written to %s (%d bytes).\n", file, len(data))
			return nil
		}

		fmt.Print(string(data))
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	blacklistCmd.Flags().String("format", "txt", "Export format: txt, json, csv, apache, nginx")
	blacklistCmd.Flags().String("file", "", "Write the export to a file instead of stdout")
}
