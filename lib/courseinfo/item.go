package courseinfo

// Kind identifies one of the fixed item variants.
type Kind int

const (
	KindNote Kind = iota + 1
	KindFile
	KindHomework
	KindDiscuss
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindFile:
		return "file"
	case KindHomework:
		return "homework"
	case KindDiscuss:
		return "discuss"
	}
	return "unknown"
}

// Kinds lists every item kind in fetch order.
var Kinds = []Kind{KindNote, KindFile, KindHomework, KindDiscuss}

// CourseRef is a non-owning handle from an item back to its course.
type CourseRef struct {
	Id    string
	Title string
}

// Base holds the attributes shared by every item kind.
type Base struct {
	Course    CourseRef
	Url       string
	Title     string
	Important bool
}

// Key is the natural key of an item. Two items are the same logical item
// iff their keys are equal, regardless of which fetch produced them.
type Key struct {
	Kind   Kind
	Fields [5]string
}

// Item is implemented only by Note, FileInfo, Homework and Discuss.
type Item interface {
	Kind() Kind
	Key() Key
	Info() Base
	isItem()
}

type Note struct {
	Base
	Publisher string
	Date      string
}

func (n Note) Kind() Kind { return KindNote }
func (n Note) Info() Base { return n.Base }
func (Note) isItem()      {}

func (n Note) Key() Key {
	return Key{
		Kind:   KindNote,
		Fields: [5]string{n.Course.Title, n.Title, n.Publisher, n.Date},
	}
}

type FileInfo struct {
	Base
	Description string
	Date        string
}

func (f FileInfo) Kind() Kind { return KindFile }
func (f FileInfo) Info() Base { return f.Base }
func (FileInfo) isItem()      {}

func (f FileInfo) Key() Key {
	return Key{
		Kind:   KindFile,
		Fields: [5]string{f.Course.Title, f.Title, f.Description, f.Date},
	}
}

type Homework struct {
	Base
	StartDate string
	Deadline  string
}

func (h Homework) Kind() Kind { return KindHomework }
func (h Homework) Info() Base { return h.Base }
func (Homework) isItem()      {}

func (h Homework) Key() Key {
	return Key{
		Kind:   KindHomework,
		Fields: [5]string{h.Course.Title, h.Title, h.StartDate, h.Deadline},
	}
}

type Discuss struct {
	Base
	Publisher  string
	ReplyCount string
	Date       string
}

func (d Discuss) Kind() Kind { return KindDiscuss }
func (d Discuss) Info() Base { return d.Base }
func (Discuss) isItem()      {}

func (d Discuss) Key() Key {
	return Key{
		Kind:   KindDiscuss,
		Fields: [5]string{d.Course.Title, d.Title, d.Publisher, d.Date, d.ReplyCount},
	}
}

// ContentDate is the date an item is ordered by when presented.
func ContentDate(item Item) string {
	switch v := item.(type) {
	case Note:
		return v.Date
	case FileInfo:
		return v.Date
	case Homework:
		return v.StartDate
	case Discuss:
		return v.Date
	}
	return ""
}
