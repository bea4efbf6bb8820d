package obfstore

import (
	"errors"
	"fmt"
	"learnwatch/lib/courseinfo"

	"google.golang.org/protobuf/encoding/protowire"
)

// payload fields
const (
	fieldUserId   protowire.Number = 1
	fieldPassword protowire.Number = 2
	fieldItem     protowire.Number = 3
)

// item fields, fields a kind does not have are omitted
const (
	itemKind        protowire.Number = 1
	itemCourseId    protowire.Number = 2
	itemCourseTitle protowire.Number = 3
	itemUrl         protowire.Number = 4
	itemTitle       protowire.Number = 5
	itemImportant   protowire.Number = 6
	itemPublisher   protowire.Number = 7
	itemDate        protowire.Number = 8
	itemDescription protowire.Number = 9
	itemStartDate   protowire.Number = 10
	itemDeadline    protowire.Number = 11
	itemReplyCount  protowire.Number = 12
)

var errNoUser = errors.New("payload has no user id")

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func marshalItem(item courseinfo.Item) []byte {
	base := item.Info()

	var b []byte
	b = protowire.AppendTag(b, itemKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(item.Kind()))
	b = appendString(b, itemCourseId, base.Course.Id)
	b = appendString(b, itemCourseTitle, base.Course.Title)
	b = appendString(b, itemUrl, base.Url)
	b = appendString(b, itemTitle, base.Title)
	b = appendBool(b, itemImportant, base.Important)

	switch v := item.(type) {
	case courseinfo.Note:
		b = appendString(b, itemPublisher, v.Publisher)
		b = appendString(b, itemDate, v.Date)
	case courseinfo.FileInfo:
		b = appendString(b, itemDescription, v.Description)
		b = appendString(b, itemDate, v.Date)
	case courseinfo.Homework:
		b = appendString(b, itemStartDate, v.StartDate)
		b = appendString(b, itemDeadline, v.Deadline)
	case courseinfo.Discuss:
		b = appendString(b, itemPublisher, v.Publisher)
		b = appendString(b, itemDate, v.Date)
		b = appendString(b, itemReplyCount, v.ReplyCount)
	}
	return b
}

func marshalState(st State) []byte {
	var b []byte
	b = appendString(b, fieldUserId, st.Credential.UserId)
	b = appendString(b, fieldPassword, st.Credential.Password)
	for _, item := range st.Snapshot.Items {
		b = protowire.AppendTag(b, fieldItem, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalItem(item))
	}
	return b
}

// field is one decoded tag/value pair.
type field struct {
	num    protowire.Number
	str    string
	varint uint64
}

// fields walks a flat message, bytes values are returned as strings.
func fields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		f := field{num: num}
		switch typ {
		case protowire.BytesType:
			f.str, n = protowire.ConsumeString(b)
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		err := fn(f)
		if err != nil {
			return err
		}
	}
	return nil
}

func unmarshalItem(b []byte) (courseinfo.Item, error) {
	var (
		kind                            courseinfo.Kind
		base                            courseinfo.Base
		publisher, date, description    string
		startDate, deadline, replyCount string
	)
	err := fields(b, func(f field) error {
		switch f.num {
		case itemKind:
			kind = courseinfo.Kind(f.varint)
		case itemCourseId:
			base.Course.Id = f.str
		case itemCourseTitle:
			base.Course.Title = f.str
		case itemUrl:
			base.Url = f.str
		case itemTitle:
			base.Title = f.str
		case itemImportant:
			base.Important = protowire.DecodeBool(f.varint)
		case itemPublisher:
			publisher = f.str
		case itemDate:
			date = f.str
		case itemDescription:
			description = f.str
		case itemStartDate:
			startDate = f.str
		case itemDeadline:
			deadline = f.str
		case itemReplyCount:
			replyCount = f.str
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch kind {
	case courseinfo.KindNote:
		return courseinfo.Note{Base: base, Publisher: publisher, Date: date}, nil
	case courseinfo.KindFile:
		return courseinfo.FileInfo{Base: base, Description: description, Date: date}, nil
	case courseinfo.KindHomework:
		return courseinfo.Homework{Base: base, StartDate: startDate, Deadline: deadline}, nil
	case courseinfo.KindDiscuss:
		return courseinfo.Discuss{Base: base, Publisher: publisher, ReplyCount: replyCount, Date: date}, nil
	}
	return nil, fmt.Errorf("unknown item kind %d", kind)
}

func unmarshalState(b []byte) (State, error) {
	var st State
	err := fields(b, func(f field) error {
		switch f.num {
		case fieldUserId:
			st.Credential.UserId = f.str
		case fieldPassword:
			st.Credential.Password = f.str
		case fieldItem:
			item, err := unmarshalItem([]byte(f.str))
			if err != nil {
				return err
			}
			st.Snapshot.Items = append(st.Snapshot.Items, item)
		}
		return nil
	})
	if err != nil {
		return State{}, err
	}
	if st.Credential.UserId == "" {
		return State{}, errNoUser
	}
	return st, nil
}
