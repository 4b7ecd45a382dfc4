package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/kinship/internal/auth"
	"github.com/mmynk/kinship/internal/backup"
	"github.com/mmynk/kinship/internal/ledger"
	"github.com/mmynk/kinship/internal/models"
	"github.com/mmynk/kinship/internal/notify"
	"github.com/mmynk/kinship/internal/server"
	"github.com/mmynk/kinship/internal/theme"
)

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("Starting Kinship", "version", version, "config", a.cfg.String())

		appearance, err := loadAppearance(ctx, a)
		if err != nil {
			return err
		}

		secret := a.cfg.Auth.JWTSecret
		if secret == "" {
			// Tokens then only survive until restart.
			if secret, err = randomSecret(); err != nil {
				return err
			}
		}
		jwtManager := auth.NewJWTManager(secret, a.cfg.Auth.TokenTTL)

		if _, err := a.syncer.Sync(ctx); err != nil {
			slog.Error("Initial reminder sync failed", "error", err)
		}
		go a.syncer.Watch(ctx, a.broker)

		if a.queue != nil {
			dispatcher := notify.NewDispatcher(a.queue, notify.LogDeliverer{}, a.cfg.Notify.DispatchInterval)
			go dispatcher.Run(ctx)
		}

		handler := server.NewHandler(a.cfg.Server, a.cfg.Auth.Enabled, server.Deps{
			Store:         a.store,
			Broker:        a.broker,
			Syncer:        a.syncer,
			Appearance:    appearance,
			Backups:       backup.NewService(a.store),
			Authenticator: auth.NewPasscodeAuthenticator(a.store),
			JWT:           jwtManager,
			Logger:        slog.Default(),
		})
		return server.Serve(ctx, a.cfg.Server.Addr, handler)
	})
}

func loadAppearance(ctx context.Context, a *app) (*theme.Cell, error) {
	setting, err := a.store.GetSetting(ctx, models.SettingAppearance)
	if err != nil {
		return nil, fmt.Errorf("loading appearance: %w", err)
	}
	var value []byte
	if setting != nil {
		value = setting.Value
	}
	mode, err := theme.DecodeMode(value)
	if err != nil {
		slog.Warn("Ignoring stored appearance", "error", err)
		mode = theme.System
	}
	return theme.NewCell(mode), nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func remote(ctx context.Context, a *app) (*backup.Remote, error) {
	if a.cfg.Backup.Bucket == "" {
		return nil, errors.New("no S3 bucket configured (set KINSHIP_S3_BUCKET)")
	}
	return backup.NewS3Remote(ctx, a.cfg.Backup.Region, a.cfg.Backup.Bucket, a.cfg.Backup.Prefix)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	toS3, _ := cmd.Flags().GetBool("s3")

	return withApp(cmd, func(ctx context.Context, a *app) error {
		data, err := backup.NewService(a.store).ExportBytes(ctx)
		if err != nil {
			return fmt.Errorf("exporting backup: %w", err)
		}
		name := backup.ArchiveName(time.Now())

		if toS3 {
			r, err := remote(ctx, a)
			if err != nil {
				return err
			}
			key, err := r.Upload(ctx, name, data)
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded s3://%s/%s (%d bytes)\n", a.cfg.Backup.Bucket, key, len(data))
			if out == "" {
				return nil
			}
		}

		if out == "" {
			out = name
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
		return nil
	})
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	fromS3, _ := cmd.Flags().GetBool("s3")
	if !yes {
		return errors.New("import replaces all friends, interactions and memos; pass --yes to confirm")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		var data []byte
		var err error
		if fromS3 {
			r, rerr := remote(ctx, a)
			if rerr != nil {
				return rerr
			}
			data, err = r.Download(ctx, args[0])
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading backup: %w", err)
		}

		summary, err := backup.NewService(a.store).RestoreBytes(ctx, data, yes)
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d friends, %d interactions, %d memos\n", summary.Friends, summary.Interactions, summary.Memos)

		if _, err := a.syncer.Sync(ctx); err != nil {
			slog.Warn("Reminder sync after restore failed", "error", err)
		}
		return nil
	})
}

func runRemindersPreview(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		plan, err := a.syncer.Preview(ctx, time.Now())
		if err != nil {
			return err
		}
		if len(plan) == 0 {
			fmt.Println("No reminders to schedule")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tTITLE\tBODY")
		for _, n := range plan {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, n.TriggerAt.Format("2006-01-02 15:04"), n.Title, n.Body)
		}
		return w.Flush()
	})
}

func runRemindersSync(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		n, err := a.syncer.Sync(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Scheduled %d reminders\n", n)
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		snap, err := a.store.Snapshot(ctx)
		if err != nil {
			return err
		}
		byFriend := snap.InteractionsByFriend()
		now := time.Now()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTAG\tLAST SEEN\tMAINTENANCE\tBIRTHDAY\tBALANCE")
		for i := range snap.Friends {
			f := &snap.Friends[i]
			st := ledger.Derive(f, byFriend[f.ID], now)

			lastSeen := "-"
			if st.DaysSinceContact != nil {
				lastSeen = ledger.LastSeenLabel(*st.DaysSinceContact)
			}
			birthday := "-"
			if st.BirthdayCountdown != nil {
				birthday = fmt.Sprintf("in %d days", *st.BirthdayCountdown)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.DisplayName(), f.Tag, lastSeen, st.Maintenance, birthday, st.Balance.Format())
		}
		return w.Flush()
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return errors.New("clear deletes all friends, interactions and memos; pass --yes to confirm")
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.store.ClearAll(ctx); err != nil {
			return err
		}
		if _, err := a.syncer.Sync(ctx); err != nil {
			slog.Warn("Reminder sync after clear failed", "error", err)
		}
		fmt.Println("All records cleared")
		return nil
	})
}
