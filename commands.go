package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tourdesk/accessor"
	"tourdesk/auth"
	"tourdesk/collections"
	"tourdesk/logger"
	"tourdesk/mq"
	"tourdesk/rdx"
	"tourdesk/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upload bundled fixtures and their images to the live store",
	Long: `Seed writes the bundled fixture records into the document store.
Image fields holding a local path are resized, uploaded to blob storage and
replaced with the public URL. A failed run removes everything it wrote.`,
	RunE: runSeed,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail content and inquiry events from Redis",
	RunE:  runEvents,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("images", ".", "directory local image paths are resolved against")
	seedCmd.Flags().StringSlice("kinds", nil, "content kinds to seed (default: all)")
	seedCmd.Flags().Int("max-dim", 1600, "longest image side after resizing")
}

// parseKinds validates kind names given on the command line.
func parseKinds(names []string) ([]collections.Kind, error) {
	var kinds []collections.Kind
	for _, n := range names {
		k := collections.Kind(strings.TrimSpace(n))
		if !collections.Known(k) || k == collections.Inquiries {
			return nil, fmt.Errorf("unknown content kind %q", n)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	names, _ := cmd.Flags().GetStringSlice("kinds")
	kinds, err := parseKinds(names)
	if err != nil {
		return err
	}
	imagesDir, _ := cmd.Flags().GetString("images")
	maxDim, _ := cmd.Flags().GetInt("max-dim")

	b, err := openBackends(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer b.close(log)

	u := &seed.Uploader{
		Acc:      accessor.New(b.store, log.Named("accessor")),
		Blobs:    b.blobs,
		Registry: collections.NewRegistry(cfg.Collections),
		Log:      log.Named("seed"),
		Images:   os.DirFS(imagesDir),
		Kinds:    kinds,
		MaxDim:   maxDim,
	}
	report, err := u.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents, %d images\n", report.Documents, report.Images)
	return nil
}

func runEvents(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc, err := rdx.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer rc.Close()

	return mq.Listen(ctx, rc, mq.Channel, log.Named("events"), func(ev mq.Event) {
		log.Info("event",
			zap.String("type", ev.Type),
			zap.String("collection", ev.Collection),
			zap.String("id", ev.ID),
			zap.Time("at", ev.At),
		)
	})
}
