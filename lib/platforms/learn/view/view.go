package view

import (
	"context"
	"fmt"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/platforms/learn/core"
	"learnwatch/lib/platforms/learn/extract"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("learnwatch/learn/view")

const courseListPath = "/MultiLanguage/lesson/student/MyCourse.jsp?typepage=1"

// listing pages, each takes the course id as its last query parameter
var listingPaths = map[courseinfo.Kind]string{
	courseinfo.KindNote:     "/MultiLanguage/public/bbs/getnoteid_student.jsp?course_id=",
	courseinfo.KindFile:     "/MultiLanguage/lesson/student/download.jsp?course_id=",
	courseinfo.KindHomework: "/MultiLanguage/lesson/student/hom_wk_brw.jsp?course_id=",
	courseinfo.KindDiscuss:  "/MultiLanguage/public/bbs/gettalkid_student.jsp?course_id=",
}

// Client fetches listing pages through a logged in core client and runs
// them through the extractor.
type Client struct {
	Core    *core.Client
	extract extract.Extractor
}

func NewClient(c *core.Client) *Client {
	return &Client{
		Core:    c,
		extract: extract.New(c.BaseUrl),
	}
}

func (c *Client) document(ctx context.Context, endpoint string) (*goquery.Document, error) {
	text, err := c.Core.GetText(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(text))
}

// Courses returns the course list without any items.
func (c *Client) Courses(ctx context.Context) ([]courseinfo.Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	doc, err := c.document(ctx, courseListPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course list")
		return nil, err
	}
	courses, err := c.extract.CourseList(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse course list")
		return nil, err
	}
	span.SetAttributes(attribute.Int("courses", len(courses)))
	return courses, nil
}

// CourseInfo fills in every item list of course, fetching one listing per
// kind in order.
func (c *Client) CourseInfo(ctx context.Context, course *courseinfo.Course) error {
	ctx, span := tracer.Start(ctx, "client:CourseInfo")
	defer span.End()

	span.SetAttributes(
		attribute.String("course_id", course.Id),
		attribute.String("course_title", course.Title),
	)

	course.Notes, course.Files, course.Homework, course.Discussions = nil, nil, nil, nil

	ref := course.Ref()
	for _, kind := range courseinfo.Kinds {
		doc, err := c.document(ctx, listingPaths[kind]+course.Id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("failed to fetch %s listing", kind))
			return err
		}
		items, err := c.extract.Items(ref, doc, kind)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("failed to parse %s listing", kind))
			return err
		}
		assign(course, items)
	}

	for i, d := range course.Discussions {
		course.Discussions[i] = c.refreshDate(ctx, d)
	}
	return nil
}

func assign(course *courseinfo.Course, items []courseinfo.Item) {
	for _, item := range items {
		switch v := item.(type) {
		case courseinfo.Note:
			course.Notes = append(course.Notes, v)
		case courseinfo.FileInfo:
			course.Files = append(course.Files, v)
		case courseinfo.Homework:
			course.Homework = append(course.Homework, v)
		case courseinfo.Discuss:
			course.Discussions = append(course.Discussions, v)
		}
	}
}

// refreshDate replaces a discussion's listing date with the latest post
// date of its thread. Any failure leaves the discussion untouched.
func (c *Client) refreshDate(ctx context.Context, d courseinfo.Discuss) courseinfo.Discuss {
	ctx, span := tracer.Start(ctx, "client:refreshDate")
	defer span.End()

	doc, err := c.document(ctx, d.Url)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to fetch discussion thread", "url", d.Url, "err", err)
		return d
	}
	latest, ok := extract.LatestPostDate(doc)
	if !ok {
		slog.DebugContext(ctx, "discussion thread has no dated posts", "url", d.Url)
		return d
	}
	d.Date = latest
	return d
}
