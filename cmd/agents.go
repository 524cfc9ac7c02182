package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agent-dispatch/internal/config"
)

func newAgentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cfg, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENDPOINT\tSLOT")
			for _, a := range rt.router.Agents() {
				endpoint := a.Endpoint
				if a.Simulated {
					endpoint = "(simulated)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, endpoint, a.AttachmentSlot)
			}
			return w.Flush()
		},
	}
}
