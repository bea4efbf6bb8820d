// Package history keeps a sqlite log of every completed check and the
// updates it reported.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"learnwatch/lib/delta"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Entry struct {
	Kind      delta.Kind
	Course    string
	Text      string
	Url       string
	Date      string
	Important bool
}

type Run struct {
	Time    time.Time
	UserId  string
	Courses int
	Total   int
	Items   []Entry
}

func NewRun(at time.Time, userId string, courses, total int, items []delta.Item) Run {
	entries := make([]Entry, len(items))
	for i, item := range items {
		entries[i] = Entry{
			Kind:      item.Kind,
			Course:    item.Course.Title,
			Text:      item.Text,
			Url:       item.Url,
			Date:      item.Date,
			Important: item.Important,
		}
	}
	return Run{
		Time:    at,
		UserId:  userId,
		Courses: courses,
		Total:   total,
		Items:   entries,
	}
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

func (s Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		"insert into run(time, user_id, courses, total) values (?, ?, ?, ?)",
		run.Time.Unix(), run.UserId, run.Courses, run.Total,
	)
	if err != nil {
		return err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, item := range run.Items {
		_, err = tx.ExecContext(
			ctx,
			`insert into run_item(run_id, position, kind, course_title, text, url, date, important)
			values (?, ?, ?, ?, ?, ?, ?, ?)`,
			runId, i, int(item.Kind), item.Course, item.Text, item.Url, item.Date, item.Important,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select id, time, user_id, courses, total from run order by time desc, id desc limit ?",
		limit,
	)
	if err != nil {
		return nil, err
	}

	var ids []int64
	var runs []Run
	for rows.Next() {
		var id, unix int64
		var run Run
		err = rows.Scan(&id, &unix, &run.UserId, &run.Courses, &run.Total)
		if err != nil {
			rows.Close()
			return nil, err
		}
		run.Time = time.Unix(unix, 0)
		ids = append(ids, id)
		runs = append(runs, run)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		runs[i].Items, err = s.items(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s Store) items(ctx context.Context, runId int64) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select kind, course_title, text, url, date, important from run_item
		where run_id = ? order by position`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var kind int
		var e Entry
		err = rows.Scan(&kind, &e.Course, &e.Text, &e.Url, &e.Date, &e.Important)
		if err != nil {
			return nil, err
		}
		e.Kind = delta.Kind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
