package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List configured ports and their compatibility",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := cfg.Ports.Registry()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PORT\tREFUEL\tCAN DOCK")
		for _, id := range reg.Ports() {
			p, err := reg.Capability(id)
			if err != nil {
				return err
			}
			targets := make([]string, len(p.CanDock))
			for i, t := range p.CanDock {
				targets[i] = t.String()
			}
			fmt.Fprintf(w, "%s\t%t\t%s\n", id, p.RefuelCapable, strings.Join(targets, ","))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
