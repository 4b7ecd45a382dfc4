// Package main provides the Kinship CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinship",
		Short: "Kinship - a personal ledger of the people you care about",
		Long: `Kinship keeps friends, the time spent with them and the gifts and favors
exchanged, and reminds you of birthdays and friends you have not seen in a while.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Kinship v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the Kinship server",
		Long:  "Start the Connect API, REST endpoints, web client and notification dispatcher",
		RunE:  runServe,
	})

	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Backup archive operations",
	}
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup archive",
		RunE:  runBackupExport,
	}
	exportCmd.Flags().String("out", "", "Output file (default: Kinship_Backup_<date>.zip)")
	exportCmd.Flags().Bool("s3", false, "Upload the archive to the configured S3 bucket")
	backupCmd.AddCommand(exportCmd)

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all data with a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupImport,
	}
	importCmd.Flags().Bool("yes", false, "Confirm that all existing data is replaced")
	importCmd.Flags().Bool("s3", false, "Read the archive from the configured S3 bucket")
	backupCmd.AddCommand(importCmd)
	rootCmd.AddCommand(backupCmd)

	remindersCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder operations",
	}
	remindersCmd.AddCommand(&cobra.Command{
		Use:   "preview",
		Short: "List the notifications a sync would schedule",
		RunE:  runRemindersPreview,
	})
	remindersCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Replace pending notifications with a fresh plan",
		RunE:  runRemindersSync,
	})
	rootCmd.AddCommand(remindersCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show every friend with last contact, maintenance and birthday status",
		RunE:  runStatus,
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every friend, interaction and memo",
		RunE:  runClear,
	}
	clearCmd.Flags().Bool("yes", false, "Confirm deletion")
	rootCmd.AddCommand(clearCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
