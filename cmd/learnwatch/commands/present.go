package commands

import (
	"fmt"
	"io"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/delta"
	"learnwatch/lib/history"
	"learnwatch/lib/textutil"
	"learnwatch/lib/timezone"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func highlight(important bool, s string) string {
	if !important {
		return s
	}
	return text.FgRed.Sprint(s)
}

func renderDelta(w io.Writer, items []delta.Item) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Course", "Type", "Update", "Date"})
	for _, item := range items {
		t.AppendRow(table.Row{
			highlight(item.Important, item.Course.Title),
			item.Label(),
			item.Text,
			item.Date,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// dueText describes a homework deadline relative to now, empty for other
// items and for deadlines the site printed in an unknown format.
func dueText(now time.Time, item courseinfo.Item) string {
	hw, ok := item.(courseinfo.Homework)
	if !ok {
		return ""
	}
	deadline, err := timezone.ParseSiteDate(hw.Deadline)
	if err != nil {
		return ""
	}
	days := timezone.DaysUntil(now, deadline)
	switch {
	case days < 0:
		return text.FgRed.Sprint("overdue")
	case days == 0:
		return text.FgYellow.Sprint("due today")
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func renderSnapshot(w io.Writer, items []courseinfo.Item, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Course", "Kind", "Title", "Date", "Due"})
	for _, item := range items {
		base := item.Info()
		t.AppendRow(table.Row{
			base.Course.Title,
			item.Kind().String(),
			highlight(base.Important, base.Title),
			courseinfo.ContentDate(item),
			dueText(now, item),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderHistory(w io.Writer, runs []history.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Checked", "User", "Courses", "Items", "Updates"})
	for _, run := range runs {
		var updates []string
		for _, e := range run.Items {
			updates = append(updates, highlight(e.Important, e.Course+": "+e.Text))
		}
		t.AppendRow(table.Row{
			run.Time.In(timezone.Location).Format(time.DateTime),
			run.UserId,
			run.Courses,
			run.Total,
			strings.Join(updates, "\n"),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func filterItems(items []courseinfo.Item, filter string) []courseinfo.Item {
	var out []courseinfo.Item
	for _, item := range items {
		if textutil.Resembles(item.Info().Course.Title, filter) {
			out = append(out, item)
		}
	}
	return out
}
