package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZertGraf/user-directory/internal/bootstrap"
	"github.com/ZertGraf/user-directory/internal/pkg/config"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/ZertGraf/user-directory/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	baseURL     string
	timeout     time.Duration
	theme       string
	searchScope string
	logFile     string
)

var rootCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the user directory in the terminal",
	Long: `browse fetches the user collection once and shows it as a searchable,
sortable, paginated list. Press enter on a user to open the detail view.`,
	SilenceUsage: true,
	RunE:         runBrowse,
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "users API base URL (default from USERS_API_BASE_URL)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "upstream request timeout (default from USERS_API_TIMEOUT)")
	rootCmd.Flags().StringVar(&theme, "theme", "light", "color theme: light or dark")
	rootCmd.Flags().StringVar(&searchScope, "search-scope", "", "search scope: page or collection (default from SEARCH_SCOPE)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	startTheme, err := tui.ParseTheme(theme)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, so logs go to a file or nowhere
	var logOutput io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}

	flags := cmd.Flags()
	app, err := bootstrap.New(
		bootstrap.WithLogOutput(logOutput),
		bootstrap.WithOverrides(func(cfg *config.Config) {
			if flags.Changed("base-url") {
				cfg.UsersAPIBaseURL = baseURL
			}
			if flags.Changed("timeout") {
				cfg.UsersAPITimeout = timeout
			}
			if flags.Changed("search-scope") {
				cfg.SearchScope = searchScope
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	if err = app.InitCore(ctx); err != nil {
		app.Logger.Error("failed to establish connections", "error", err)
		return err
	}

	app.Directory = service.NewDirectory(app.UserService, app.Logger)
	app.Directory.Start(ctx)

	loader := service.NewDetailLoader(app.UserService, app.Logger)
	defer loader.Close()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("application shutdown failed", "error", err)
		}
	}()

	app.Logger.Info("starting terminal browser",
		"users_api", app.Config.UsersAPIBaseURL,
		"search_scope", app.SearchScope,
		"theme", startTheme.Name)

	model := tui.New(ctx, tui.Options{
		Directory: app.Directory,
		Loader:    loader,
		Scope:     app.SearchScope,
		Theme:     startTheme,
	})

	if _, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("terminal browser failed: %w", err)
	}
	return nil
}
