// Package main is the coachctl command line tool: ask coaching
// questions, fetch status, and exercise the AI layer from a terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/liftwise/coach"
	"github.com/liftwise/coach/internal/config"
	"github.com/liftwise/coach/internal/observability"
)

var (
	configPath string
	userID     string
	exercise   string
	asJSON     bool
)

func main() {
	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Command line client for the coach AI layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&userID, "user", "cli", "user identifier")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print the full response envelope as JSON")

	ask := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a free-text coaching question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	ask.Flags().StringVar(&exercise, "exercise", "", "exercise the question is about")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show remote availability, budget, and cache state",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}

	motivate := &cobra.Command{
		Use:   "motivate",
		Short: "Print a motivational line",
		Args:  cobra.NoArgs,
		RunE:  runMotivate,
	}

	root.AddCommand(ask, status, motivate)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "coachctl:", err)
		os.Exit(1)
	}
}

// newClient builds a client from the config file when given, otherwise
// from defaults plus OPENAI_API_KEY.
func newClient() (*coach.Client, error) {
	if configPath == "" {
		return coach.New(coach.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
	}

	mgr, err := config.NewManager(configPath, nil)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:      parseLevel(cfg.Logging.Level),
		Output:     os.Stderr,
		JSONFormat: cfg.Logging.Format == "json",
	})

	return coach.New(
		coach.FromConfig(cfg),
		coach.WithLogger(logger),
	)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printResponse(resp *coach.Response) error {
	if asJSON {
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(resp.Data)
	if resp.Notice != "" {
		fmt.Fprintln(os.Stderr, "note:", resp.Notice)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.GetCoachingAnswer(cmd.Context(), coach.CoachingRequest{
		UserID:   userID,
		Query:    strings.Join(args, " "),
		Exercise: exercise,
	})
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.GetAIStatus(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printResponse(resp)
	}

	var report coach.StatusReport
	if err := json.Unmarshal([]byte(resp.Data), &report); err != nil {
		return err
	}
	fmt.Printf("provider:   %s (%s)\n", report.Remote.Provider, report.Remote.Model)
	fmt.Printf("available:  %v (online: %v)\n", report.Remote.Available, report.Remote.Online)
	fmt.Printf("budget:     %d/%d daily, %d/%d monthly units\n",
		report.Remote.Budget.DailyUsed, report.Remote.Budget.DailyLimit,
		report.Remote.Budget.MonthlyUsed, report.Remote.Budget.MonthlyLimit)
	fmt.Printf("cost:       $%.4f total\n", report.Remote.Budget.TotalCostUSD)
	fmt.Printf("cache:      %d entries, %.0f%% hit rate\n",
		report.Cache.Entries, report.Cache.HitRate*100)
	if report.Semantic != nil {
		fmt.Printf("semantic:   %d entries\n", report.Semantic.Entries)
	}
	return nil
}

func runMotivate(cmd *cobra.Command, _ []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.GetMotivationalLine(cmd.Context(), coach.MotivationRequest{UserID: userID})
	if err != nil {
		return err
	}
	return printResponse(resp)
}
