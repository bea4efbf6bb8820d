package delta

import (
	"learnwatch/lib/courseinfo"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	cs101 = courseinfo.CourseRef{Id: "1", Title: "CS101"}
	cs102 = courseinfo.CourseRef{Id: "2", Title: "CS102"}
)

func file(course courseinfo.CourseRef, title, date string, important bool) courseinfo.FileInfo {
	return courseinfo.FileInfo{
		Base: courseinfo.Base{
			Course:    course,
			Url:       "https://learn.example.edu/download.jsp?course_id=" + course.Id,
			Title:     title,
			Important: important,
		},
		Date: date,
	}
}

func TestFileGrouping(t *testing.T) {
	items := []courseinfo.Item{
		file(cs101, "a", "2012-09-01", false),
		file(cs102, "d", "2012-09-04", false),
		file(cs101, "b", "2012-09-03", true),
		file(cs101, "c", "2012-09-02", false),
	}

	projected := Project(items)
	require.Len(t, projected, 2)

	first := projected[0]
	require.Equal(t, KindFileGroup, first.Kind)
	require.Equal(t, cs101, first.Course)
	require.Len(t, first.Files, 3)
	require.Equal(t, "3 files updated", first.Text)
	require.Equal(t, "2012-09-03", first.Date)
	require.True(t, first.Important)
	require.Nil(t, first.Single)

	second := projected[1]
	require.Equal(t, cs102, second.Course)
	require.Len(t, second.Files, 1)
	require.Equal(t, "1 file updated", second.Text)
	require.False(t, second.Important)
}

func TestOrdering(t *testing.T) {
	note := func(course courseinfo.CourseRef, title, date string) courseinfo.Note {
		return courseinfo.Note{
			Base: courseinfo.Base{Course: course, Title: title},
			Date: date,
		}
	}
	items := []courseinfo.Item{
		courseinfo.Discuss{Base: courseinfo.Base{Course: cs101, Title: "thread"}, Date: "2012-10-01"},
		note(cs102, "late note", "2012-09-01"),
		courseinfo.Homework{Base: courseinfo.Base{Course: cs101, Title: "hw", Important: true}, StartDate: "2012-09-20"},
		note(cs101, "old note", "2012-09-01"),
		file(cs101, "slides", "2012-09-05", false),
		note(cs101, "new note", "2012-09-10"),
	}

	var texts []string
	for _, item := range Project(items) {
		texts = append(texts, item.Course.Title+" "+item.Label()+" "+item.Text)
	}
	require.Equal(t, []string{
		"CS101 Note new note",
		"CS101 Note old note",
		"CS101 Files 1 file updated",
		"CS101 Homework hw",
		"CS101 Discussion thread",
		"CS102 Note late note",
	}, texts)
}

func TestSingle(t *testing.T) {
	hw := courseinfo.Homework{
		Base:      courseinfo.Base{Course: cs101, Url: "https://x/hw", Title: "hw", Important: true},
		StartDate: "2012-09-20",
		Deadline:  "2012-09-27",
	}
	projected := Project([]courseinfo.Item{hw})
	require.Len(t, projected, 1)
	require.Equal(t, Item{
		Kind:      KindHomework,
		Course:    cs101,
		Url:       "https://x/hw",
		Text:      "hw",
		Important: true,
		Date:      "2012-09-20",
		Single:    hw,
	}, projected[0])
}

func TestEmpty(t *testing.T) {
	require.Empty(t, Project(nil))
}
