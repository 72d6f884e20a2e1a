package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/spf13/cobra"
)

func NewSnapshotCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage archived league snapshots",
	}

	cmd.AddCommand(newSnapshotListCommand(opts))
	cmd.AddCommand(newSnapshotCreateCommand(opts))
	cmd.AddCommand(newSnapshotShowCommand(opts))
	cmd.AddCommand(newSnapshotRestoreCommand(opts))

	return cmd
}

func newSnapshotListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			items, err := s.services.Snapshots.List(cmd.Context())
			if err != nil {
				return err
			}

			return s.out.write(items, func(w io.Writer) error {
				if len(items) == 0 {
					_, err := fmt.Fprintln(w, "no snapshots")
					return err
				}
				for _, item := range items {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", item.ID, item.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newSnapshotCreateCommand(opts *RootOptions) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Archive the current league document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			info, err := s.services.Snapshots.Create(cmd.Context(), label)
			if err != nil {
				return err
			}

			return s.out.write(info, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "created snapshot %s\n", info.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "label appended to the snapshot id")

	return cmd
}

func newSnapshotShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <snapshot-id>",
		Short: "Print an archived league document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			state, err := s.services.Snapshots.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, err := league.Encode(state)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

type restoreSummary struct {
	ID          string `json:"id"`
	Teams       int    `json:"teams"`
	PendingBids int    `json:"pendingBids"`
}

func newSnapshotRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Replace the live league document with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			state, err := s.services.Snapshots.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			summary := restoreSummary{ID: args[0], Teams: len(state.Teams), PendingBids: pendingBids(state)}
			return s.out.write(summary, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "restored snapshot %s (%d teams, %d pending bids)\n", summary.ID, summary.Teams, summary.PendingBids)
				return err
			})
		},
	}
}

func pendingBids(state league.State) int {
	n := 0
	for _, bid := range state.FreeAgents {
		if !bid.Resolved {
			n++
		}
	}
	return n
}
