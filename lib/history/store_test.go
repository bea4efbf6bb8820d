package history

import (
	"context"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/delta"
	"learnwatch/lib/testutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	store := NewStore(testutil.OpenMemoryDB(t, Schema))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		runs, err := store.Recent(ctx, 10)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, runs, 0)
	}

	course := courseinfo.CourseRef{Id: "101", Title: "操作系统"}
	items := delta.Project([]courseinfo.Item{
		courseinfo.Note{
			Base: courseinfo.Base{Course: course, Url: "https://x/note", Title: "期中考试安排", Important: true},
			Date: "2012-10-20",
		},
		courseinfo.FileInfo{
			Base: courseinfo.Base{Course: course, Url: "https://x/files", Title: "Lecture 1"},
			Date: "2012-09-10",
		},
	})

	first := time.Unix(1350000000, 0)
	{
		err := store.Record(ctx, NewRun(first, "alice", 2, 8, items))
		if err != nil {
			t.Fatal(err)
		}
		err = store.Record(ctx, NewRun(first.Add(time.Hour), "alice", 2, 8, nil))
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 2)

	require.Equal(t, first.Add(time.Hour), runs[0].Time)
	require.Empty(t, runs[0].Items)

	require.Equal(t, Run{
		Time:    first,
		UserId:  "alice",
		Courses: 2,
		Total:   8,
		Items: []Entry{
			{Kind: delta.KindNote, Course: "操作系统", Text: "期中考试安排", Url: "https://x/note", Date: "2012-10-20", Important: true},
			{Kind: delta.KindFileGroup, Course: "操作系统", Text: "1 file updated", Url: "https://x/files", Date: "2012-09-10"},
		},
	}, runs[1])

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, limited, 1)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	err = store.Record(context.Background(), NewRun(time.Unix(1350000000, 0), "bob", 1, 0, nil))
	if err != nil {
		t.Fatal(err)
	}
	require.NoError(t, store.Close())

	// reopening keeps existing runs
	store, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 1)
	require.Equal(t, "bob", runs[0].UserId)
}
