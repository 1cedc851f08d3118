package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskview/internal/export"
	"github.com/sadopc/taskview/internal/render"
	"github.com/sadopc/taskview/internal/report"
)

type listOptions struct {
	context string
	format  string
	output  string
	watch   bool
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list [report] [filter...]",
		Short: "Show a report",
		Long: `Show a named report (default: the configured default_report).

Filter words narrow the report, for example:
  taskview list next project:work +urgent limit:10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.context, "context", "", "filter ANDed onto the report (overrides the configured context)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, csv or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write csv/json to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "redraw whenever the task data changes")
	// Flags go before the report so that "-tag" filters reach the backend.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// view is one resolved report request.
type view struct {
	report  string
	filter  string
	context string
}

func runList(cmd *cobra.Command, a *app, args []string, opts listOptions) error {
	switch opts.format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q (want table, csv or json)", opts.format)
	}
	if opts.watch && opts.format != "table" {
		return errors.New("--watch only supports the table format")
	}

	v, err := a.parseView(args, opts.context)
	if err != nil {
		return err
	}

	if opts.watch {
		return a.watch(cmd.Context(), v)
	}
	tbl, err := a.table(v)
	if err != nil {
		return err
	}
	return a.write(cmd.OutOrStdout(), tbl, v.report, opts)
}

// parseView treats the first argument as a report name when it is a known
// report, and everything else as filter words.
func (a *app) parseView(args []string, contextFlag string) (view, error) {
	if err := a.loadConfig(); err != nil {
		return view{}, err
	}
	v := view{report: a.cfg.DefaultReport, context: a.cfg.Context}
	if contextFlag != "" {
		v.context = contextFlag
	}

	if len(args) > 0 && looksLikeReport(args[0]) {
		resolver, err := a.resolver()
		if err != nil {
			return view{}, err
		}
		if _, err := resolver.Resolve(args[0]); err == nil {
			v.report, args = args[0], args[1:]
		} else if !errors.Is(err, report.ErrUnknownReport) {
			return view{}, err
		}
	}
	v.filter = strings.Join(args, " ")
	return v, nil
}

func looksLikeReport(arg string) bool {
	return arg != "" && !strings.ContainsAny(arg, ":+-= ")
}

// table resolves the report layout before fetching any task so that a broken
// report fails without touching the backend.
func (a *app) table(v view) (report.Table, error) {
	resolver, err := a.resolver()
	if err != nil {
		return report.Table{}, err
	}
	spec, err := resolver.Resolve(v.report)
	if err != nil {
		return report.Table{}, err
	}

	filter := v.filter
	if filter == "" {
		if rc, ok := a.cfg.Reports[v.report]; ok {
			filter = rc.Filter
		}
	}

	src, err := a.source()
	if err != nil {
		return report.Table{}, err
	}
	records, err := src.Export(filter, v.report, v.context)
	if err != nil {
		return report.Table{}, err
	}
	a.log.Debugf("report %s: %d tasks", v.report, len(records))
	return a.cfg.Formatter().Render(spec, records), nil
}

func (a *app) tracked() map[string]bool {
	tr, err := a.timew()
	if err != nil {
		return nil
	}
	return tr.Tracked()
}

func (a *app) write(w io.Writer, tbl report.Table, reportName string, opts listOptions) error {
	tracked := a.tracked()
	switch opts.format {
	case "csv":
		if opts.output != "" {
			return export.ToCSV(tbl, tracked, opts.output)
		}
		return export.WriteCSV(w, tbl, tracked)
	case "json":
		if opts.output != "" {
			return export.ToJSON(tbl, tracked, reportName, opts.output)
		}
		return export.WriteJSON(w, tbl, tracked, reportName)
	}
	_, err := fmt.Fprintln(w, render.Table(tbl, tracked))
	return err
}
