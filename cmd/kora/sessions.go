package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newManager()
		sessions, err := mgr.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		idColor := color.New(color.FgCyan)
		ageColor := color.New(color.Faint)
		for _, info := range sessions {
			fmt.Printf("%s  %s  %s\n",
				idColor.Sprint(info.ID),
				info.Name,
				ageColor.Sprintf("(%s)", humanAge(time.Since(info.UpdatedAt))),
			)
		}
		return nil
	},
}

var (
	pruneDays   int
	pruneDryRun bool
)

// pruneCmd enforces session_max_age_days. Retention deliberately lives here
// and not in the engine, which never deletes sessions on its own.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sessions older than the retention horizon",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := pruneDays
		if days <= 0 {
			days = cfg.Memory.SessionMaxAgeDays
		}
		if days <= 0 {
			return fmt.Errorf("no retention horizon configured; pass --days or set memory.session_max_age_days")
		}
		cutoff := time.Now().AddDate(0, 0, -days)

		mgr := newManager()
		sessions, err := mgr.ListSessions(cmd.Context())
		if err != nil {
			return err
		}

		removed := 0
		for _, info := range sessions {
			if !info.UpdatedAt.Before(cutoff) {
				continue
			}
			if pruneDryRun {
				fmt.Printf("would delete %s (%s, updated %s)\n", info.ID, info.Name, info.UpdatedAt.Format("2006-01-02"))
				removed++
				continue
			}
			if err := mgr.Store().Delete(cmd.Context(), info.ID); err != nil {
				return err
			}
			fmt.Printf("deleted %s (%s)\n", info.ID, info.Name)
			removed++
		}
		if removed == 0 {
			fmt.Printf("No sessions older than %d days.\n", days)
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "retention horizon in days (default: memory.session_max_age_days)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "show what would be deleted without deleting")
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
