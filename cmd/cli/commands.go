package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/marcelsud/webhook-recorder/message"
	"github.com/marcelsud/webhook-recorder/message/file"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultDir = "./data/webhook-messages"

type options struct {
	dir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "webhook-cli",
		Short:         "Inspect persisted webhook histories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.dir, "dir", defaultDir, "persistence directory")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
	)
	return cmd
}

// open loads every history of the directory into a service writing back to it
func open(ctx context.Context, opts *options) *message.Service {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	svc := message.NewService(file.NewRepository(opts.dir, logger), logger)
	svc.Load(ctx, nil)
	return svc
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored paths with their message counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := open(cmd.Context(), opts).Stats()
			if len(stats) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no stored messages in %s\n", opts.dir)
				return nil
			}
			paths := make([]string, 0, len(stats))
			for path := range stats {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", path, stats[path])
			}
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path> [index|start-end|all]",
		Short: "Print stored messages of a path as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := message.Latest()
			if len(args) == 2 {
				var err error
				if sel, err = message.ParseSelector(args[1]); err != nil {
					return err
				}
			}
			entries, err := open(cmd.Context(), opts).Query(args[0], sel)
			if err != nil {
				return fmt.Errorf("showing %s: %w", args[0], err)
			}
			formatter := dispatch.Formatter{Location: time.Local}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Format(args[0], entries, nil, ""))
			return nil
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path> <index|start-end|all|old>",
		Short: "Delete stored messages of a path and save the file back",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := message.ParseSelector(args[1])
			if err != nil {
				return err
			}
			result, err := open(cmd.Context(), opts).Delete(cmd.Context(), args[0], sel, true)
			if err != nil {
				return fmt.Errorf("deleting from %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}
}
