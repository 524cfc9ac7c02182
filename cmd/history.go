package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"agent-dispatch/internal/config"
	"agent-dispatch/internal/history"
)

const historyPreviewLen = 60

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var filter history.Filter

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded dispatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled() {
				return errors.New("history is disabled; set history.driver (sqlite or postgres) and history.dsn or " + config.EnvHistoryDSN)
			}

			store, err := history.Open(cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tAGENT\tOUTCOME\tDURATION\tTEXT")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n",
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Agent,
					rec.Outcome,
					rec.DurationMS,
					preview(rec.Text),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.Agent, "agent", "", "only show dispatches to this agent")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of records")
	return cmd
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= historyPreviewLen {
		return text
	}
	return string(runes[:historyPreviewLen-3]) + "..."
}
