package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pbaille/foldgrade/internal/api"
	"github.com/pbaille/foldgrade/internal/config"
	"github.com/pbaille/foldgrade/internal/domain"
	"github.com/pbaille/foldgrade/internal/export"
	"github.com/pbaille/foldgrade/internal/history"
	"github.com/pbaille/foldgrade/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dbPath string
	debug  bool
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	rootCmd := &cobra.Command{
		Use:   "foldgrade",
		Short: "Grade towel-folding episodes and keep a history log",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg.LogLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DB, "database path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(gradeCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(serveCmd(cfg))
	rootCmd.AddCommand(configCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// openLog opens the store and loads the history log from it.
func openLog() (*history.Log, *store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create db dir: %w", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return history.New(s, log.Logger), s, nil
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show today's graded episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, s, err := openLog()
			if err != nil {
				return err
			}
			defer s.Close()

			entries := l.Entries()
			if len(entries) == 0 {
				fmt.Println("No history yet. Use 'foldgrade grade' to grade an episode.")
				return nil
			}

			for _, entry := range entries {
				switch e := entry.(type) {
				case domain.GradingEntry:
					// C-grade episodes have no difficulty assessment to show.
					if e.Grade == domain.GradeC {
						fmt.Printf("%s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Grade)
					} else {
						fmt.Printf("%s  %s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Grade, e.Difficulty)
					}
				case domain.CountEntry:
					fmt.Printf("%s  count=%d\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Count)
				}
			}

			fmt.Printf("\n%d graded episode(s)\n", entries.GradingCount())
			return nil
		},
	}
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the canonical defect and difficulty tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, grade := range []domain.Grade{domain.GradeA, domain.GradeB, domain.GradeC} {
				fmt.Printf("Grade %s:\n", grade)
				for _, tag := range domain.GradeTags[grade] {
					fmt.Printf("  - %s\n", tag)
				}
			}
			for _, difficulty := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyHard} {
				fmt.Printf("Difficulty %s:\n", difficulty)
				for _, tag := range domain.DifficultyTags[difficulty] {
					fmt.Printf("  - %s\n", tag)
				}
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		date string
		all  bool
		out  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (date != "") {
				return fmt.Errorf("choose exactly one of --date or --all")
			}
			if strings.TrimSpace(out) == "" {
				return fmt.Errorf("output filename is required")
			}

			dateKey := date
			if all {
				dateKey = export.AllDates
			}

			l, s, err := openLog()
			if err != nil {
				return err
			}
			defer s.Close()

			entries := export.FilterByDate(l.Entries(), dateKey)
			csvText := export.ToCSV(entries, all, time.Now())

			if !strings.HasSuffix(out, ".csv") {
				out += ".csv"
			}
			if err := os.WriteFile(out, []byte(csvText+"\n"), 0644); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}

			fmt.Printf("Exported %d graded episode(s) to %s\n", entries.GradingCount(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "export a single date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&all, "all", false, "export all dates")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func serveCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server for the grading frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, _, err := openLog()
			if err != nil {
				return err
			}
			// Note: don't close the store as the server runs indefinitely

			server := api.New(l, addr, log.Logger)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", cfg.Addr, "server address")
	return cmd
}

func configCmd(cfg *config.Config) *cobra.Command {
	var (
		db       string
		addr     string
		logLevel string
		show     bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if show || (db == "" && addr == "" && logLevel == "") {
				fmt.Printf("db: %s\n", cfg.DB)
				fmt.Printf("addr: %s\n", cfg.Addr)
				fmt.Printf("log_level: %s\n", cfg.LogLevel)
				return nil
			}

			if db != "" {
				cfg.DB = db
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if logLevel != "" {
				if _, err := zerolog.ParseLevel(logLevel); err != nil {
					return fmt.Errorf("unknown log level %q", logLevel)
				}
				cfg.LogLevel = logLevel
			}

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Println("Configuration saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&db, "set-db", "", "database path")
	cmd.Flags().StringVar(&addr, "set-addr", "", "server address")
	cmd.Flags().StringVar(&logLevel, "set-log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&show, "show", false, "show current configuration")
	return cmd
}

func clearCmd() *cobra.Command {
	var (
		date string
		all  bool
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (date != "") {
				return fmt.Errorf("choose exactly one of --date or --all")
			}

			l, s, err := openLog()
			if err != nil {
				return err
			}
			defer s.Close()

			flow := history.NewDeleteFlow(l)
			if err := flow.Begin(); err != nil {
				return err
			}
			if all {
				err = flow.ChooseAll()
			} else {
				err = flow.ChooseDate(date)
			}
			if err != nil {
				return err
			}

			if !yes {
				scope := date
				if all {
					scope = "all dates"
				}
				fmt.Printf("Delete history for %s? [y/N] ", scope)
				var answer string
				fmt.Fscanln(cmd.InOrStdin(), &answer)
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					flow.Cancel()
					fmt.Println("Cancelled.")
					return nil
				}
			}

			remaining, err := flow.Confirm()
			if err != nil {
				return err
			}

			fmt.Printf("Done. %d entr(ies) remaining.\n", len(remaining))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "delete a single date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&all, "all", false, "delete everything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
