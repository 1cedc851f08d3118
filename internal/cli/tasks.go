package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskview/internal/render"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <description> [attr...]",
		Short: "Create a task",
		Example: `  taskview add "Write report" project:work +next due:2030-01-31`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.source()
			if err != nil {
				return err
			}
			if err := src.Add(args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Created task: "+args[0]))
			return nil
		},
	}
	// "-tag" after the description is an attribute, not a flag.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id|uuid>...",
		Short: "Mark tasks completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveIDs(args)
			if err != nil {
				return err
			}
			if err := a.src.MarkDone(ids); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success(fmt.Sprintf("Completed %d task(s)", len(ids))))
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id|uuid>...",
		Short: "Delete tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveIDs(args)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(fmt.Sprintf("Delete %d task(s)?", len(ids)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), render.Warning("Nothing deleted"))
					return nil
				}
			}
			if err := a.src.Delete(ids); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success(fmt.Sprintf("Deleted %d task(s)", len(ids))))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question on the terminal. Tests replace it.
var confirm = func(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func newModifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify <id|uuid> <attr>...",
		Short: "Change attributes of a task",
		Example: `  taskview modify 3 priority:H -next +later
  taskview modify 3 due:`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveIDs(args[:1])
			if err != nil {
				return err
			}
			if err := a.src.Modify(ids, args[1:]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Modified task "+ids[0].String()))
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <id|uuid>",
		Short: "Show every attribute of one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.resolveIDs(args)
			if err != nil {
				return err
			}
			rec, err := a.src.Detail(ids[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no task with uuid %s", ids[0])
			}
			tracked := false
			if tr, err := a.timew(); err == nil {
				tracked = tr.IsTracked(rec.UUID)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Detail(*rec, a.cfg.Formatter(), tracked))
			return nil
		},
	}
}

// resolveIDs accepts task uuids and working-set ids. Working-set ids are
// looked up in one export of every task.
func (a *app) resolveIDs(args []string) ([]uuid.UUID, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(args))
	var byNumber map[int]uuid.UUID
	for _, arg := range args {
		if id, err := uuid.Parse(arg); err == nil {
			ids = append(ids, id)
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid task id %q", arg)
		}
		if byNumber == nil {
			records, err := src.Export("status:pending", "all", "")
			if err != nil {
				return nil, err
			}
			byNumber = make(map[int]uuid.UUID, len(records))
			for _, r := range records {
				if r.ID > 0 {
					byNumber[r.ID] = r.UUID
				}
			}
		}
		id, ok := byNumber[n]
		if !ok {
			return nil, fmt.Errorf("no pending task with id %d", n)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
