package view

import (
	"context"
	"errors"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/platforms/learn/core"
	"learnwatch/lib/testutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (*Client, *testutil.FakeSite) {
	site := testutil.NewFakeSite(t, "2011011234", "hunter2")
	site.Populate()

	c, err := core.NewClient(core.ClientOptions{BaseUrl: site.Url()})
	if err != nil {
		t.Fatal(err)
	}
	err = c.Login(context.Background(), courseinfo.Credential{
		UserId:   site.UserId,
		Password: site.Password,
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(c), site
}

func TestCourses(t *testing.T) {
	client, _ := setup(t)

	courses, err := client.Courses(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, courses, 2)
	require.Equal(t, "101", courses[0].Id)
	require.Equal(t, "操作系统", courses[0].Title)
	require.Equal(t, uint(2), courses[0].UnsubmittedHomework)
	require.Equal(t, "102", courses[1].Id)
}

func TestCourseInfo(t *testing.T) {
	client, site := setup(t)
	ctx := context.Background()

	courses, err := client.Courses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := range courses {
		err = client.CourseInfo(ctx, &courses[i])
		if err != nil {
			t.Fatal(err)
		}
	}

	full := courses[0]
	require.Len(t, full.Notes, 2)
	require.Len(t, full.Files, 3)
	require.Len(t, full.Homework, 1)
	require.Len(t, full.Discussions, 2)
	for _, item := range full.Items() {
		require.Equal(t, full.Ref(), item.Info().Course)
	}

	// thread 7 has a newer reply, thread 8 has no page and keeps its
	// listing date
	require.Equal(t, "2012-09-18 09:30", full.Discussions[0].Date)
	require.Equal(t, "2012-10-01", full.Discussions[1].Date)
	require.Equal(t, 1, site.Hits(testutil.ThreadUri("7", "101")))
	require.Equal(t, 1, site.Hits(testutil.ThreadUri("8", "101")))

	empty := courses[1]
	require.Empty(t, empty.Items())

	// fetching again replaces the item lists
	err = client.CourseInfo(ctx, &full)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, full.Items(), 8)
}

func TestCourseInfoListingFailure(t *testing.T) {
	client, site := setup(t)
	site.RemovePage(testutil.HomeworkUri("101"))

	course := courseinfo.Course{Id: "101", Title: "操作系统"}
	err := client.CourseInfo(context.Background(), &course)

	var transportErr *core.TransportError
	require.True(t, errors.As(err, &transportErr), "expected a transport error, got %v", err)
	require.Equal(t, 404, transportErr.StatusCode)
}
