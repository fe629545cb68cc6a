package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/insight-pulse/internal/core/events"
	"github.com/frahmantamala/insight-pulse/internal/mailer"
	"github.com/spf13/cobra"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mail delivery commands",
	Long:  `Exercise the mail alert pipeline outside the HTTP server`,
}

var mailTestCmd = &cobra.Command{
	Use:   "test [email]",
	Short: "Send a sample permission alert",
	Long:  `Publish a mail alert event and wait until the dispatcher has delivered it`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := sendTestAlert(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "mail test failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var (
	mailDriver     string
	mailName       string
	mailDepartment string
	mailTargets    string
	mailWorkers    int
	mailQueueSize  int
	mailTimeout    time.Duration
)

func sendTestAlert(ctx context.Context, email string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	lg := setupLogger(cfg)

	mailCfg := cfg.Mail
	mailCfg.Driver = getStringFlag(mailDriver, mailCfg.Driver)
	if mailCfg.Driver == "sendgrid" && mailCfg.SendGridAPIKey == "" {
		return fmt.Errorf("mail.sendgrid_api_key is required for the sendgrid driver")
	}

	dispatcher := mailer.NewDispatcher(newMailer(mailCfg, lg), mailer.DispatcherConfig{
		MaxWorkers: getIntFlag(mailWorkers, mailCfg.MaxWorkers),
		QueueSize:  getIntFlag(mailQueueSize, mailCfg.QueueSize),
	}, lg)
	defer dispatcher.Shutdown()

	bus := events.NewEventBus(lg)
	dispatcher.Register(bus)

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	event := events.NewMailAlertRequestedEvent(email, mailName, email, mailDepartment, splitList(mailTargets), start, end)

	lg.Info("publishing test mail alert", "event_id", event.EventID(), "to", email, "driver", mailCfg.Driver)
	if err := bus.PublishSync(ctx, event); err != nil {
		return err
	}

	drainCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := dispatcher.Drain(drainCtx); err != nil {
		return fmt.Errorf("mail not delivered in time: %w", err)
	}
	lg.Info("test mail alert handled")
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getStringFlag prefers a non-empty flag over the config value.
func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue != 0 {
		return flagValue
	}
	return configValue
}

func init() {
	mailTestCmd.Flags().StringVar(&mailDriver, "driver", "", "Mail driver, log or sendgrid (overrides config)")
	mailTestCmd.Flags().StringVar(&mailName, "name", "Test User", "Recipient name")
	mailTestCmd.Flags().StringVar(&mailDepartment, "department", "HR", "Recipient department")
	mailTestCmd.Flags().StringVar(&mailTargets, "targets", "Finance,QA", "Comma separated departments the recipient may survey")
	mailTestCmd.Flags().IntVar(&mailWorkers, "max-workers", 0, "Maximum number of mail workers (overrides config)")
	mailTestCmd.Flags().IntVar(&mailQueueSize, "queue-size", 0, "Mail queue size (overrides config)")
	mailTestCmd.Flags().DurationVar(&mailTimeout, "timeout", 30*time.Second, "How long to wait for delivery")

	mailCmd.AddCommand(mailTestCmd)
	rootCmd.AddCommand(mailCmd)
}
