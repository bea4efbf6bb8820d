// Package delta shapes the new items of a run for presentation: files are
// summarized per course, everything else is listed one by one.
package delta

import (
	"cmp"
	"fmt"
	"learnwatch/lib/courseinfo"
	"slices"
)

// Kind doubles as the presentation priority, lower sorts first.
type Kind int

const (
	KindNote      Kind = 1
	KindFileGroup Kind = 2
	KindHomework  Kind = 3
	KindDiscuss   Kind = 4
)

func (k Kind) Label() string {
	switch k {
	case KindNote:
		return "Note"
	case KindFileGroup:
		return "Files"
	case KindHomework:
		return "Homework"
	case KindDiscuss:
		return "Discussion"
	}
	return "Unknown"
}

type Item struct {
	Kind      Kind
	Course    courseinfo.CourseRef
	Url       string
	Text      string
	Important bool
	Date      string

	// set for everything but file groups
	Single courseinfo.Item
	// set for file groups only
	Files []courseinfo.FileInfo
}

func (i Item) Label() string {
	return i.Kind.Label()
}

func single(item courseinfo.Item) Item {
	var kind Kind
	switch item.Kind() {
	case courseinfo.KindNote:
		kind = KindNote
	case courseinfo.KindHomework:
		kind = KindHomework
	case courseinfo.KindDiscuss:
		kind = KindDiscuss
	}
	base := item.Info()
	return Item{
		Kind:      kind,
		Course:    base.Course,
		Url:       base.Url,
		Text:      base.Title,
		Important: base.Important,
		Date:      courseinfo.ContentDate(item),
		Single:    item,
	}
}

func fileGroup(files []courseinfo.FileInfo) Item {
	group := Item{
		Kind:   KindFileGroup,
		Course: files[0].Course,
		Url:    files[0].Url,
		Text:   fmt.Sprintf("%d files updated", len(files)),
		Files:  files,
	}
	if len(files) == 1 {
		group.Text = "1 file updated"
	}
	for _, f := range files {
		group.Important = group.Important || f.Important
		group.Date = max(group.Date, f.Date)
	}
	return group
}

// Compare orders by course title, then kind, then newest content first.
func Compare(a, b Item) int {
	if c := cmp.Compare(a.Course.Title, b.Course.Title); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(b.Date, a.Date)
}

// Project groups the files of items by course and sorts the result.
func Project(items []courseinfo.Item) []Item {
	var out []Item
	var order []courseinfo.CourseRef
	files := make(map[courseinfo.CourseRef][]courseinfo.FileInfo)

	for _, item := range items {
		f, ok := item.(courseinfo.FileInfo)
		if !ok {
			out = append(out, single(item))
			continue
		}
		if _, seen := files[f.Course]; !seen {
			order = append(order, f.Course)
		}
		files[f.Course] = append(files[f.Course], f)
	}
	for _, course := range order {
		out = append(out, fileGroup(files[course]))
	}

	slices.SortStableFunc(out, Compare)
	return out
}
