package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kaamgarau/internal/auth"
	"kaamgarau/internal/core"
	"kaamgarau/internal/leveling"
	"kaamgarau/internal/storage"
)

type rootOptions struct {
	lang string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "kaamgaractl",
		Short:         "Leveling and analytics tooling for kaamgarau",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if opts.lang != "en" && opts.lang != "np" {
				return fmt.Errorf("unsupported language %q: use en or np", opts.lang)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.lang, "lang", "en", "display language (en or np)")

	cmd.AddCommand(
		newLevelsCmd(opts),
		newLevelCmd(opts),
		newXPCmd(opts),
		newTokenCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func newLevelsCmd(opts *rootOptions) *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Print the XP required for each level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if from < 1 || to > leveling.MaxLevel || from > to {
				return fmt.Errorf("level range must satisfy 1 <= from <= to <= %d", leveling.MaxLevel)
			}
			table := leveling.Default()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tXP REQUIRED\tTIER")
			for lvl := from; lvl <= to; lvl++ {
				th, _ := table.Threshold(lvl)
				fmt.Fprintf(w, "%d\t%s\t%s\n", th.Level, humanize.Comma(th.XPRequired), th.Name.Text(opts.lang))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&from, "from", 1, "first level to print")
	cmd.Flags().IntVar(&to, "to", leveling.MaxLevel, "last level to print")
	return cmd
}

func newLevelCmd(opts *rootOptions) *cobra.Command {
	var xp float64
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Resolve an XP total to a level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("xp") {
				return errors.New("--xp is required")
			}
			printInfo(cmd.OutOrStdout(), leveling.Default(), xp, opts.lang)
			return nil
		},
	}
	cmd.Flags().Float64Var(&xp, "xp", 0, "experience points")
	return cmd
}

func newXPCmd(opts *rootOptions) *cobra.Command {
	var file, roleName string
	cmd := &cobra.Command{
		Use:   "xp",
		Short: "Score a TOML job history file for a role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := core.ParseRole(roleName)
			if err != nil {
				return err
			}
			history, err := loadHistoryFile(file)
			if err != nil {
				return err
			}
			table := leveling.Default()
			sum := table.Summarize(role, history)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Role:     %s\n", role)
			fmt.Fprintf(out, "Jobs:     %d\n", jobCount(role, history))
			fmt.Fprintf(out, "Volume:   Rs %s\n", humanize.CommafWithDigits(volume(role, history).Rupees(), 2))
			printInfo(out, table, sum.XP, opts.lang)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the history file")
	cmd.Flags().StringVar(&roleName, "role", string(core.RoleFreelancer), "freelancer or client")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var userID, roleName string
	var hours int
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			role, err := core.ParseRole(roleName)
			if err != nil {
				return err
			}
			svc, err := auth.NewJWTService(os.Getenv("JWT_SECRET"), hours)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(id, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user UUID")
	cmd.Flags().StringVar(&roleName, "role", string(core.RoleFreelancer), "freelancer or client")
	cmd.Flags().IntVar(&hours, "hours", 24, "token lifetime in hours")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := storage.NewSQLiteRepository(dbPath)
			if err != nil {
				return err
			}
			if err := repo.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOr("SQLITE_DB_PATH", "./data/kaamgarau.db"), "SQLite database path")
	return cmd
}

func printInfo(w io.Writer, table *leveling.Table, xp float64, lang string) {
	info := table.LevelInfo(xp)
	fmt.Fprintf(w, "XP:       %s\n", humanize.CommafWithDigits(xp, 2))
	fmt.Fprintf(w, "Level:    %d (%s)\n", info.Level, info.Name.Text(lang))
	fmt.Fprintf(w, "Progress: %d%%", info.Progress)
	if next, ok := table.Threshold(info.Level + 1); ok {
		fmt.Fprintf(w, " toward %s XP", humanize.Comma(next.XPRequired))
	}
	fmt.Fprintln(w)
}

func jobCount(role core.Role, h core.JobHistory) int {
	if role == core.RoleClient {
		return len(h.Posted)
	}
	return len(h.Completed)
}

func volume(role core.Role, h core.JobHistory) core.Money {
	var total core.Money
	if role == core.RoleClient {
		for _, j := range h.Posted {
			total = total.Add(j.Budget)
		}
		return total
	}
	for _, j := range h.Completed {
		total = total.Add(j.Budget)
	}
	return total
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
