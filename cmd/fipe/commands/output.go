package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/notify"
	"fipe/consulta/internal/view"

	"github.com/spf13/cobra"
)

// report prints the notification the last operation raised, if any.
func (o *options) report(cmd *cobra.Command) {
	n := o.container.App.Banner.Current()
	if n == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", severityMark(n.Severity), n.Message)
	o.container.App.Banner.Dismiss()
}

func severityMark(s notify.Severity) string {
	switch s {
	case notify.SeverityError:
		return "❌"
	case notify.SeveritySuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

func printOptions(w io.Writer, options []domain.SelectableOption) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CÓDIGO\tNOME")
	for _, o := range options {
		fmt.Fprintf(tw, "%s\t%s\n", o.Code, o.Label)
	}
	tw.Flush()
}

func printResult(w io.Writer, r *view.Result) {
	if r == nil {
		return
	}
	fmt.Fprintln(w, r.Title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range r.Fields {
		fmt.Fprintf(tw, "  %s:\t%s\n", f.Label, f.Value)
	}
	if r.QueriedAt != "" {
		fmt.Fprintf(tw, "  Consultado em:\t%s\n", r.QueriedAt)
	}
	tw.Flush()
	fmt.Fprintf(w, "%s (%s)\n", r.Value, r.Caption)
}

func printFavorites(w io.Writer, f view.Favorites) {
	if f.Empty {
		fmt.Fprintln(w, f.EmptyMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVEÍCULO\tANO\tVALOR\tMÊS REFERÊNCIA\tCONSULTADO EM")
	for _, item := range f.Items {
		year := ""
		if len(item.Details) > 0 {
			year = item.Details[0].Value
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Title, year, item.Value, item.Reference, item.QueriedAt)
	}
	tw.Flush()
}
