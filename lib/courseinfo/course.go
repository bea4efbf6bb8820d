package courseinfo

import "log/slog"

// Credential is supplied by the login prompt and kept only in memory and
// inside the obfuscated store.
type Credential struct {
	UserId   string
	Password string
}

// LogValue keeps the password out of every log record.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(slog.String("user_id", c.UserId))
}

func (c Credential) String() string {
	return c.UserId
}

type Course struct {
	Title string
	Id    string
	// number of homework assignments not yet submitted, as shown in the
	// course list
	UnsubmittedHomework uint

	Notes       []Note
	Files       []FileInfo
	Homework    []Homework
	Discussions []Discuss
}

func (c Course) Ref() CourseRef {
	return CourseRef{Id: c.Id, Title: c.Title}
}

// Items returns the course's items in fetch order: notes, files, homework,
// discussions.
func (c Course) Items() []Item {
	items := make([]Item, 0, len(c.Notes)+len(c.Files)+len(c.Homework)+len(c.Discussions))
	for _, n := range c.Notes {
		items = append(items, n)
	}
	for _, f := range c.Files {
		items = append(items, f)
	}
	for _, h := range c.Homework {
		items = append(items, h)
	}
	for _, d := range c.Discussions {
		items = append(items, d)
	}
	return items
}
