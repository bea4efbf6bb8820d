// Package extract turns the site's listing pages into course records. Each
// listing is a marker table whose data rows carry a class attribute; fields
// are located by column position. A page without its marker table simply
// has no items.
package extract

import (
	"fmt"
	"learnwatch/lib/courseinfo"
	"learnwatch/lib/htmlutil"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	courseListRows = `table#info_1 tr[class]`
	noteRows       = `table#info_1 table tr[class]`
	fileRows       = `table#table_box tr[class]`
	homeworkRows   = `table#info_1 table tr[class]`
	discussRows    = `table#info_1 table table tr[class]`
	// the first row of every post on a thread page, its 4th column is the
	// post date
	threadDateCells = `table#info_1 table#table_box tr:first-of-type > td:nth-of-type(4)`

	importantMarker = `font[color="red"]`
)

// ParseError is returned when a listing row exists but does not have the
// shape its kind requires.
type ParseError struct {
	Page   string
	Row    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s listing, row %d: %s", e.Page, e.Row, e.Reason)
}

// Extractor resolves item links against the site's base url.
type Extractor struct {
	base *url.URL
}

func New(base *url.URL) Extractor {
	return Extractor{base: base}
}

func (e Extractor) link(prefix, href string) string {
	target, err := e.base.Parse(prefix + href)
	if err != nil {
		return prefix + href
	}
	return target.String()
}

// cell returns the n-th (1 based) td child of a row.
func cell(row *goquery.Selection, n int) *goquery.Selection {
	return row.ChildrenFiltered("td").Eq(n - 1)
}

type rowParser struct {
	page string
	row  int
}

func (p rowParser) fail(format string, args ...any) error {
	return &ParseError{Page: p.page, Row: p.row, Reason: fmt.Sprintf(format, args...)}
}

func (p rowParser) cell(row *goquery.Selection, n int) (*goquery.Selection, error) {
	c := cell(row, n)
	if c.Length() == 0 {
		return nil, p.fail("missing column %d", n)
	}
	return c, nil
}

func (p rowParser) text(row *goquery.Selection, n int) (string, error) {
	c, err := p.cell(row, n)
	if err != nil {
		return "", err
	}
	return htmlutil.SelectionText(c), nil
}

// anchor returns the link inside column n.
func (p rowParser) anchor(row *goquery.Selection, n int) (*goquery.Selection, error) {
	c, err := p.cell(row, n)
	if err != nil {
		return nil, err
	}
	a := c.ChildrenFiltered("a").First()
	if a.Length() == 0 {
		return nil, p.fail("missing link in column %d", n)
	}
	return a, nil
}

func isImportant(anchor *goquery.Selection) bool {
	return anchor.ChildrenFiltered(importantMarker).Length() > 0
}

var courseSuffix = regexp.MustCompile(`\([^()]*\)$`)

// CourseList parses the student's course list. Item lists are left empty.
func (e Extractor) CourseList(doc *goquery.Document) ([]courseinfo.Course, error) {
	rows := doc.Find(courseListRows)
	courses := make([]courseinfo.Course, 0, rows.Length())

	for i := range rows.Nodes {
		row := rows.Eq(i)
		p := rowParser{page: "course list", row: i}

		a, err := p.anchor(row, 1)
		if err != nil {
			return nil, err
		}
		title := courseSuffix.ReplaceAllString(htmlutil.SelectionText(a), "")

		href := a.AttrOr("href", "")
		_, id, found := strings.Cut(href, "=")
		if !found {
			return nil, p.fail("course link %q has no id", href)
		}
		if next := strings.IndexByte(id, '='); next >= 0 {
			id = id[:next]
		}

		c, err := p.cell(row, 2)
		if err != nil {
			return nil, err
		}
		countText := htmlutil.SelectionText(c.ChildrenFiltered("span").First())
		count, err := strconv.ParseUint(countText, 10, 32)
		if err != nil {
			return nil, p.fail("unsubmitted homework count %q: %s", countText, err.Error())
		}

		courses = append(courses, courseinfo.Course{
			Title:               title,
			Id:                  id,
			UnsubmittedHomework: uint(count),
		})
	}

	return courses, nil
}

func (e Extractor) Notes(course courseinfo.CourseRef, doc *goquery.Document) ([]courseinfo.Note, error) {
	rows := doc.Find(noteRows)
	notes := make([]courseinfo.Note, 0, rows.Length())

	for i := range rows.Nodes {
		row := rows.Eq(i)
		p := rowParser{page: "note", row: i}

		a, err := p.anchor(row, 2)
		if err != nil {
			return nil, err
		}
		publisher, err := p.text(row, 3)
		if err != nil {
			return nil, err
		}
		date, err := p.text(row, 4)
		if err != nil {
			return nil, err
		}

		// the link carries the board name unencoded
		href := strings.ReplaceAll(a.AttrOr("href", ""), "课程公告", "%E8%AF%BE%E7%A8%8B%E5%85%AC%E5%91%8A")

		notes = append(notes, courseinfo.Note{
			Base: courseinfo.Base{
				Course:    course,
				Url:       e.link("/MultiLanguage/public/bbs/", href),
				Title:     htmlutil.SelectionText(a),
				Important: isImportant(a),
			},
			Publisher: publisher,
			Date:      date,
		})
	}

	return notes, nil
}

func (e Extractor) Files(course courseinfo.CourseRef, doc *goquery.Document) ([]courseinfo.FileInfo, error) {
	rows := doc.Find(fileRows)
	files := make([]courseinfo.FileInfo, 0, rows.Length())

	for i := range rows.Nodes {
		row := rows.Eq(i)
		p := rowParser{page: "file", row: i}

		a, err := p.anchor(row, 2)
		if err != nil {
			return nil, err
		}
		description, err := p.text(row, 3)
		if err != nil {
			return nil, err
		}
		date, err := p.text(row, 5)
		if err != nil {
			return nil, err
		}

		files = append(files, courseinfo.FileInfo{
			Base: courseinfo.Base{
				Course:    course,
				Url:       e.link("/MultiLanguage/lesson/student/download.jsp?course_id=", course.Id),
				Title:     htmlutil.SelectionText(a),
				Important: isImportant(a),
			},
			Description: description,
			Date:        date,
		})
	}

	return files, nil
}

func (e Extractor) Homework(course courseinfo.CourseRef, doc *goquery.Document) ([]courseinfo.Homework, error) {
	rows := doc.Find(homeworkRows)
	homework := make([]courseinfo.Homework, 0, rows.Length())

	for i := range rows.Nodes {
		row := rows.Eq(i)
		p := rowParser{page: "homework", row: i}

		a, err := p.anchor(row, 1)
		if err != nil {
			return nil, err
		}
		start, err := p.text(row, 2)
		if err != nil {
			return nil, err
		}
		deadline, err := p.text(row, 3)
		if err != nil {
			return nil, err
		}

		homework = append(homework, courseinfo.Homework{
			Base: courseinfo.Base{
				Course:    course,
				Url:       e.link("/MultiLanguage/lesson/student/", a.AttrOr("href", "")),
				Title:     htmlutil.SelectionText(a),
				Important: true,
			},
			StartDate: start,
			Deadline:  deadline,
		})
	}

	return homework, nil
}

func (e Extractor) Discussions(course courseinfo.CourseRef, doc *goquery.Document) ([]courseinfo.Discuss, error) {
	rows := doc.Find(discussRows)
	discussions := make([]courseinfo.Discuss, 0, rows.Length())

	for i := range rows.Nodes {
		row := rows.Eq(i)
		p := rowParser{page: "discussion", row: i}

		a, err := p.anchor(row, 1)
		if err != nil {
			return nil, err
		}
		publisher, err := p.text(row, 2)
		if err != nil {
			return nil, err
		}
		replies, err := p.text(row, 3)
		if err != nil {
			return nil, err
		}
		date, err := p.text(row, 4)
		if err != nil {
			return nil, err
		}
		// the column reads "replies/views"
		replyCount, _, _ := strings.Cut(replies, "/")

		discussions = append(discussions, courseinfo.Discuss{
			Base: courseinfo.Base{
				Course:    course,
				Url:       e.link("/MultiLanguage/public/bbs/", a.AttrOr("href", "")),
				Title:     htmlutil.SelectionText(a),
				Important: false,
			},
			Publisher:  publisher,
			ReplyCount: replyCount,
			Date:       date,
		})
	}

	return discussions, nil
}

// Items dispatches to the parser for kind.
func (e Extractor) Items(course courseinfo.CourseRef, doc *goquery.Document, kind courseinfo.Kind) ([]courseinfo.Item, error) {
	var items []courseinfo.Item
	switch kind {
	case courseinfo.KindNote:
		notes, err := e.Notes(course, doc)
		for _, n := range notes {
			items = append(items, n)
		}
		return items, err
	case courseinfo.KindFile:
		files, err := e.Files(course, doc)
		for _, f := range files {
			items = append(items, f)
		}
		return items, err
	case courseinfo.KindHomework:
		homework, err := e.Homework(course, doc)
		for _, h := range homework {
			items = append(items, h)
		}
		return items, err
	case courseinfo.KindDiscuss:
		discussions, err := e.Discussions(course, doc)
		for _, d := range discussions {
			items = append(items, d)
		}
		return items, err
	}
	return nil, fmt.Errorf("unknown item kind %d", kind)
}

// LatestPostDate returns the greatest post date on a thread page. The site
// formats dates so that string order is chronological order.
func LatestPostDate(doc *goquery.Document) (string, bool) {
	latest := ""
	found := false
	doc.Find(threadDateCells).Each(func(_ int, s *goquery.Selection) {
		date := htmlutil.SelectionText(s)
		if !found || date > latest {
			latest = date
			found = true
		}
	})
	return latest, found
}
