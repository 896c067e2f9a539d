package main

import (
	"context"
	"fmt"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/app"
	"kost-management/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is what every command needs: config, logger and database
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	_ = config.CloseDatabase(e.db)
	_ = e.logger.Sync()
}

// withContainer opens the environment, builds the services and runs fn
func withContainer(ctx context.Context, fn func(c *app.Container) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	c, err := app.New(ctx, e.cfg, e.db, e.logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := models.AutoMigrate(e.db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Println("Migration completed.")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the admin account from flags or ADMIN_* variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				admin := c.Config.Admin
				if v, _ := cmd.Flags().GetString("email"); v != "" {
					admin.Email = v
				}
				if v, _ := cmd.Flags().GetString("password"); v != "" {
					admin.Password = v
				}
				if v, _ := cmd.Flags().GetString("name"); v != "" {
					admin.Name = v
				}

				created, err := config.NewSeeder(c.Store, c.Logger).SeedAdmin(cmd.Context(), admin)
				if err != nil {
					return err
				}
				if !created {
					fmt.Printf("User %s already exists.\n", admin.Email)
					return nil
				}
				fmt.Printf("Admin %s created.\n", admin.Email)
				return nil
			})
		},
	}
	cmd.Flags().String("email", "", "admin email")
	cmd.Flags().String("password", "", "admin password")
	cmd.Flags().String("name", "", "admin display name")
	return cmd
}

// generateInvoicesCmd exits non-zero only when generation could not run.
// Per-tenant failures are reported and still count as success.
func generateInvoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-invoices",
		Short: "Generate monthly invoices for every tenant with a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, _ := cmd.Flags().GetString("month")
			dueDate, _ := cmd.Flags().GetString("due-date")

			return withContainer(cmd.Context(), func(c *app.Container) error {
				now := time.Now().In(c.Invoices.Location())
				period, due, err := c.Invoices.ResolvePeriod(month, dueDate, now, c.Config.Cron.InvoiceDueDay)
				if err != nil {
					return err
				}

				result, err := c.Invoices.GenerateMonthly(cmd.Context(), period, due)
				if err != nil {
					return fmt.Errorf("failed to generate invoices: %w", err)
				}
				fmt.Printf("Generated %d invoices for %s (due %s), skipped %d, failed %d.\n",
					result.Count, period, due.Format("2006-01-02"), result.Skipped, result.Failed)
				return nil
			})
		},
	}
	cmd.Flags().String("month", "", "billing month YYYY-MM (default: current month)")
	cmd.Flags().String("due-date", "", "due date YYYY-MM-DD (default: the configured due day)")
	return cmd
}

func sendRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-reminders",
		Short: "Remind tenants with invoices due soon or overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *app.Container) error {
				run, err := c.Reminders.EnqueueDueReminders(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to send reminders: %w", err)
				}
				fmt.Printf("Selected %d, sent %d, queued %d, skipped %d, failed %d.\n",
					run.Selected, run.Sent, run.Queued, run.Skipped, run.Failed)
				return nil
			})
		},
	}
}
