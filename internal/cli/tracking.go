package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskview/internal/render"
	"github.com/sadopc/taskview/internal/timew"
)

func newTrackingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracking",
		Short: "Inspect Timewarrior integration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether Timewarrior is usable and what it is tracking",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tr, err := a.timew()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.TrackingStatus(tr.Status()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Re-query Timewarrior and list tracked tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				tr, err := a.timew()
				if err != nil {
					return err
				}
				tr.ForceRefresh()
				tracked := tr.Tracked()
				if len(tracked) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tracked tasks.")
					return nil
				}
				for id := range tracked {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "check <uuid>",
			Short: "Report whether one task is being tracked",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid uuid %q: %w", args[0], err)
				}
				tr, err := a.timew()
				if err != nil {
					return err
				}
				if tr.IsTracked(id) {
					fmt.Fprintln(cmd.OutOrStdout(), render.Success("tracked"))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "not tracked")
				}
				return nil
			},
		},
		newHookCmd(a),
	)
	return cmd
}

func newHookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Install or remove the Taskwarrior on-modify hook for Timewarrior",
	}

	var source string
	install := &cobra.Command{
		Use:   "install",
		Short: "Copy " + timew.HookFile + " into the Taskwarrior hooks directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.timew()
			if err != nil {
				return err
			}
			dest, err := tr.InstallHook(source)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Installed hook: "+dest))
			return nil
		},
	}
	install.Flags().StringVar(&source, "source", "", "hook script to install (default ./hooks/"+timew.HookFile+")")

	uninstall := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := a.timew()
			if err != nil {
				return err
			}
			removed, err := tr.UninstallHook()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), render.Warning("No hook installed"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Removed hook"))
			return nil
		},
	}

	cmd.AddCommand(install, uninstall)
	return cmd
}
