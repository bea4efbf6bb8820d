package courseinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var cs101 = CourseRef{Id: "101", Title: "CS101"}

func testCourses() []Course {
	return []Course{
		{
			Title: "CS101",
			Id:    "101",
			Notes: []Note{
				{Base: Base{Course: cs101, Title: "Welcome"}, Publisher: "Prof. Li", Date: "2012-09-01"},
			},
			Files: []FileInfo{
				{Base: Base{Course: cs101, Title: "Slides 1"}, Description: "intro", Date: "2012-09-02"},
			},
			Homework: []Homework{
				{Base: Base{Course: cs101, Title: "HW1", Important: true}, StartDate: "2012-09-03", Deadline: "2012-09-10"},
			},
			Discussions: []Discuss{
				{Base: Base{Course: cs101, Title: "Question"}, Publisher: "alice", ReplyCount: "2", Date: "2012-09-04"},
			},
		},
	}
}

func TestDiffFirstRun(t *testing.T) {
	current := NewSnapshot(testCourses())
	require.Len(t, Diff(nil, current), 4)
}

func TestDiffUnchangedSite(t *testing.T) {
	current := NewSnapshot(testCourses())
	previous := NewSnapshot(testCourses())
	require.Empty(t, Diff(&previous, current))
	require.Empty(t, Diff(&current, current))
}

func TestDiffEmptyPrevious(t *testing.T) {
	current := NewSnapshot(testCourses())
	require.Len(t, Diff(&Snapshot{}, current), 4)
}

func TestDiffChangedKeyField(t *testing.T) {
	previous := NewSnapshot(testCourses())

	courses := testCourses()
	courses[0].Notes[0].Date = "2012-09-05"
	current := NewSnapshot(courses)

	result := Diff(&previous, current)
	require.Len(t, result, 1)
	note, ok := result[0].(Note)
	require.True(t, ok)
	require.Equal(t, "2012-09-05", note.Date)
	require.NotEqual(t, previous.Items[0].Key(), note.Key())
}

func TestDiffIgnoresNonKeyFields(t *testing.T) {
	previous := NewSnapshot(testCourses())

	courses := testCourses()
	courses[0].Files[0].Url = "https://example.com/elsewhere"
	courses[0].Files[0].Important = true
	current := NewSnapshot(courses)

	require.Empty(t, Diff(&previous, current))
}

func TestDiffReportsDuplicatesOnce(t *testing.T) {
	note := Note{Base: Base{Course: cs101, Title: "Dup"}, Publisher: "p", Date: "d"}
	current := Snapshot{Items: []Item{note, note}}
	require.Len(t, Diff(&Snapshot{}, current), 1)
}

func TestKeysDistinguishKinds(t *testing.T) {
	note := Note{Base: Base{Course: cs101, Title: "x"}, Publisher: "a", Date: "b"}
	file := FileInfo{Base: Base{Course: cs101, Title: "x"}, Description: "a", Date: "b"}
	require.NotEqual(t, note.Key(), file.Key())
}

func TestKeyFieldBoundaries(t *testing.T) {
	a := Note{Base: Base{Course: cs101, Title: "ab"}, Publisher: "c", Date: "d"}
	b := Note{Base: Base{Course: cs101, Title: "a"}, Publisher: "bc", Date: "d"}
	require.NotEqual(t, a.Key(), b.Key())
}

func TestDiscussKeyIncludesReplyCount(t *testing.T) {
	d := testCourses()[0].Discussions[0]
	replied := d
	replied.ReplyCount = "3"
	require.NotEqual(t, d.Key(), replied.Key())
}

func TestCredentialLogValue(t *testing.T) {
	cred := Credential{UserId: "2012011234", Password: "secret"}
	require.NotContains(t, cred.LogValue().String(), "secret")
	require.NotContains(t, cred.String(), "secret")
}
