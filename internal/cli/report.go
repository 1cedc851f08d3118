package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskview/internal/render"
	"github.com/sadopc/taskview/internal/report"
)

// reportSetter is implemented by backends that store report definitions
// themselves.
type reportSetter interface {
	SetReportSetting(name, key, value string) error
}

// reportLister is implemented by backends that can enumerate their reports.
type reportLister interface {
	Reports() ([]string, error)
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect or define reports",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List known reports and where each one is defined",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				reports, err := a.reportOrigins()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(reports))
				for name := range reports {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", name, reports[name])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print the columns and labels a report resolves to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				resolver, err := a.resolver()
				if err != nil {
					return err
				}
				spec, err := resolver.Resolve(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "report   %s\n", spec.Name)
				fmt.Fprintf(out, "columns  %s\n", strings.Join(spec.Columns, ","))
				fmt.Fprintf(out, "labels   %s\n", strings.Join(spec.Labels, ","))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <name> columns|labels|filter <value>",
			Short: "Define a report in the embedded database",
			Example: `  taskview report set mine columns id,project,description.count
  taskview report set mine filter "status:pending +work"`,
			Args: cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				src, err := a.source()
				if err != nil {
					return err
				}
				setter, ok := src.(reportSetter)
				if !ok {
					return errors.New("the shell backend reads reports from .taskrc; use `task config report." + args[0] + "." + args[1] + "` instead")
				}
				if err := setter.SetReportSetting(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.Success(fmt.Sprintf("Set report.%s.%s", args[0], args[1])))
				return nil
			},
		},
	)
	return cmd
}

// reportOrigins maps every known report to the place it resolves from, in
// resolver order: config, backend, builtin.
func (a *app) reportOrigins() (map[string]string, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	origins := make(map[string]string)
	add := func(name, origin string) {
		if _, ok := origins[name]; !ok {
			origins[name] = origin
		}
	}
	for name := range a.cfg.Reports {
		add(name, "config")
	}
	if lister, ok := src.(reportLister); ok {
		names, err := lister.Reports()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			add(name, "database")
		}
	}
	for name := range report.Builtin {
		add(name, "builtin")
	}
	return origins, nil
}
