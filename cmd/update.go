package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xstream-util/xstream/internal/updater"
	"github.com/xstream-util/xstream/internal/version"
)

func newUpdateCmd() *cobra.Command {
	var check bool
	var prerelease bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update xstream to the latest released version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := updater.New(prerelease)
			if err != nil {
				return err
			}

			release, err := svc.Check(cmd.Context())
			if err != nil {
				return err
			}
			if release == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "xstream %s is up to date\n", version.String())
				return nil
			}
			if check {
				fmt.Fprintf(cmd.OutOrStdout(), "update available: %s (current %s)\n",
					release.Version(), version.String())
				return nil
			}

			if err := svc.Apply(cmd.Context(), release); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated to %s\n", release.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only check whether an update is available")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "include pre-release versions")
	return cmd
}
