package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func NewWindowCommand(opts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show the scheduler window ids and whether each job is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var instant time.Time
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				instant = parsed
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			windows, err := s.services.NewScheduler(s.cfg, nil, nil, s.logger).Windows(cmd.Context(), instant)
			if err != nil {
				return err
			}

			return s.out.write(windows, func(w io.Writer) error {
				for _, item := range windows {
					lastRun := item.LastRunWindowID
					if lastRun == "" {
						lastRun = "-"
					}
					if _, err := fmt.Fprintf(w, "%s\twindow=%s\tin_window=%t\tdue=%t\tlast_run=%s\n",
						item.Job, item.WindowID, item.InWindow, item.Due, lastRun); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC 3339 instant instead of now")

	return cmd
}
