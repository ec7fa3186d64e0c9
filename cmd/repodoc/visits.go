// cmd/repodoc/visits.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func visitsCmd() *cobra.Command {
	var increment bool

	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Show or increment the visit counter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			var n int64
			if increment {
				n, err = st.IncrementVisits(cmd.Context())
			} else {
				n, err = st.Visits(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&increment, "increment", false, "record a visit before printing the count")
	return cmd
}
