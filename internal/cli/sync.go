package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskview/internal/render"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize with the backend's remote, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.source()
			if err != nil {
				return err
			}
			if err := src.Sync(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Synchronized"))
			return nil
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	var chart bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects with their pending task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.source()
			if err != nil {
				return err
			}
			projects, err := src.Projects()
			if err != nil {
				return err
			}
			if chart {
				fmt.Fprintln(cmd.OutOrStdout(), render.ProjectChart(projects, 60, 12))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Projects(projects))
			return nil
		},
	}
	cmd.Flags().BoolVar(&chart, "chart", false, "draw a bar chart instead of a table")
	return cmd
}
