package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/frahmantamala/insight-pulse/internal/apiclient"
	"github.com/frahmantamala/insight-pulse/internal/console"
	"github.com/frahmantamala/insight-pulse/internal/remarks"
	"github.com/frahmantamala/insight-pulse/internal/session"
	"github.com/frahmantamala/insight-pulse/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	consoleVerbose  bool
	consoleBaseURL  string
	loginPassword   string
	alertPreset     string
	alertFrom       string
	alertTo         string
	surveyAnswers   []string
	surveySuggest   string
	remarkIncoming  int
	remarkOutgoing  int
	remarkResponse  remarks.ResponseForm
	togglePairsFlag []string
)

var consoleCmd = &cobra.Command{
	Use:     "console",
	Aliases: []string{"c"},
	Short:   "Terminal client for the InsightPulse API",
	Long:    `Log in, manage survey permissions, send mail alerts and answer surveys from the terminal`,
}

// runConsole builds the app from config and runs fn with it. Errors are
// printed and turn into a non-zero exit.
func runConsole(fn func(ctx context.Context, app *console.App) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}

		lg := logger.Discard()
		if consoleVerbose {
			lg = setupLogger(cfg)
		}

		client := apiclient.New(apiclient.Config{
			BaseURL: getStringFlag(consoleBaseURL, cfg.Client.BaseURL),
			Timeout: cfg.Client.Timeout,
		}, lg)

		app := console.New(console.Deps{
			Out:       os.Stdout,
			Backend:   client,
			Store:     session.NewFileStore(cfg.Client.StoragePath),
			Passwords: console.TermPasswordReader{In: os.Stdin, Out: os.Stderr},
			Logger:    lg,
		})

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := fn(ctx, app); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// parsePairs reads "FROM:TO" department name pairs.
func parsePairs(values []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(values))
	for _, v := range values {
		from, to, ok := strings.Cut(v, ":")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("pair %q must look like FROM:TO", v)
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(from), strings.TrimSpace(to)})
	}
	return pairs, nil
}

func init() {
	consoleCmd.PersistentFlags().BoolVarP(&consoleVerbose, "verbose", "v", false, "Log requests to stderr")
	consoleCmd.PersistentFlags().StringVar(&consoleBaseURL, "base-url", "", "API base URL (overrides config)")

	loginCmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and remember the user",
		Args:  cobra.ExactArgs(1),
	}
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password; prompted for when omitted")
	loginCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			return app.Login(ctx, args[0], loginPassword)
		})(cmd, args)
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the logged-in user",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			app.Logout()
			return nil
		}),
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			return app.WhoAmI()
		}),
	}

	departmentsCmd := &cobra.Command{
		Use:   "departments",
		Short: "List departments",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			return app.ListDepartments(ctx)
		}),
	}
	createDepartmentCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a department (admin)",
		Args:  cobra.ExactArgs(1),
	}
	createDepartmentCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			_, err := app.CreateDepartment(ctx, args[0])
			return err
		})(cmd, args)
	}
	departmentsCmd.AddCommand(createDepartmentCmd)

	permissionsCmd := &cobra.Command{
		Use:   "permissions",
		Short: "Show the survey permission matrix (admin)",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			return app.ShowPermissions(ctx)
		}),
	}
	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip FROM:TO pairs and save",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			pairs, err := parsePairs(togglePairsFlag)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return fmt.Errorf("at least one --pair is required")
			}
			return app.Toggle(ctx, pairs)
		}),
	}
	toggleCmd.Flags().StringArrayVar(&togglePairsFlag, "pair", nil, "FROM:TO department names, repeatable")
	allowAllCmd := &cobra.Command{
		Use:   "allow-all [department]",
		Short: "Let a department survey every other department and save",
		Args:  cobra.ExactArgs(1),
	}
	allowAllCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			return app.AllowAll(ctx, args[0])
		})(cmd, args)
	}
	revokeAllCmd := &cobra.Command{
		Use:   "revoke-all [department]",
		Short: "Stop a department from surveying anyone and save",
		Args:  cobra.ExactArgs(1),
	}
	revokeAllCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			return app.RevokeAll(ctx, args[0])
		})(cmd, args)
	}
	alertCmd := &cobra.Command{
		Use:   "alert",
		Short: "Mail every affected user about the saved permissions",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			_, err := app.SendAlert(ctx, console.AlertRequest{Preset: alertPreset, From: alertFrom, To: alertTo})
			return err
		}),
	}
	alertCmd.Flags().StringVar(&alertPreset, "preset", "", "custom, this-month, next-month or this-quarter")
	alertCmd.Flags().StringVar(&alertFrom, "from", "", "Start date YYYY-MM-DD (custom)")
	alertCmd.Flags().StringVar(&alertTo, "to", "", "End date YYYY-MM-DD, inclusive (custom)")
	permissionsCmd.AddCommand(toggleCmd, allowAllCmd, revokeAllCmd, alertCmd)

	surveyCmd := &cobra.Command{
		Use:   "survey [id]",
		Short: "Show a survey",
		Args:  cobra.ExactArgs(1),
	}
	surveyCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.ShowSurvey(ctx, id)
		})(cmd, args)
	}
	submitCmd := &cobra.Command{
		Use:   "submit [id]",
		Short: "Answer a survey",
		Args:  cobra.ExactArgs(1),
	}
	submitCmd.Flags().StringArrayVarP(&surveyAnswers, "answer", "a", nil, "QUESTION_ID=VALUE, repeatable")
	submitCmd.Flags().StringVar(&surveySuggest, "suggestion", "", "Final suggestion")
	submitCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = app.SubmitSurvey(ctx, id, surveyAnswers, surveySuggest)
			return err
		})(cmd, args)
	}
	surveyCmd.AddCommand(submitCmd)

	remarksCmd := &cobra.Command{
		Use:   "remarks",
		Short: "Browse feedback about your department and your feedback about others",
		Run: runConsole(func(ctx context.Context, app *console.App) error {
			return app.ShowRemarks(remarkIncoming, remarkOutgoing)
		}),
	}
	remarksCmd.Flags().IntVar(&remarkIncoming, "incoming", 1, "Incoming feedback page")
	remarksCmd.Flags().IntVar(&remarkOutgoing, "outgoing", 1, "Outgoing feedback page")
	respondCmd := &cobra.Command{
		Use:   "respond [page]",
		Short: "Answer the incoming feedback on a page",
		Args:  cobra.ExactArgs(1),
	}
	respondCmd.Flags().StringVar(&remarkResponse.Explanation, "explanation", "", "Why it happened")
	respondCmd.Flags().StringVar(&remarkResponse.ActionPlan, "action-plan", "", "What will change")
	respondCmd.Flags().StringVar(&remarkResponse.ResponsiblePerson, "responsible", "", "Who owns the action plan")
	respondCmd.Run = func(cmd *cobra.Command, args []string) {
		runConsole(func(ctx context.Context, app *console.App) error {
			page, err := strconv.Atoi(args[0])
			if err != nil || page < 1 {
				return fmt.Errorf("invalid page %q", args[0])
			}
			return app.RespondRemark(page, remarkResponse)
		})(cmd, args)
	}
	remarksCmd.AddCommand(respondCmd)

	consoleCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, departmentsCmd, permissionsCmd, surveyCmd, remarksCmd)
	rootCmd.AddCommand(consoleCmd)
}
