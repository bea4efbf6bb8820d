package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const (
	teacherLoginPath = "/MultiLanguage/lesson/teacher/loginteacher.jsp"
	studentMainPath  = "/MultiLanguage/lesson/student/mainstudent.jsp"

	sessionCookie = "JSESSIONID"
	studentCookie = "THNSV2COOKIE"

	CourseListUri = "/MultiLanguage/lesson/student/MyCourse.jsp?typepage=1"
)

func NotesUri(courseId string) string {
	return "/MultiLanguage/public/bbs/getnoteid_student.jsp?course_id=" + courseId
}

func FilesUri(courseId string) string {
	return "/MultiLanguage/lesson/student/download.jsp?course_id=" + courseId
}

func HomeworkUri(courseId string) string {
	return "/MultiLanguage/lesson/student/hom_wk_brw.jsp?course_id=" + courseId
}

func DiscussUri(courseId string) string {
	return "/MultiLanguage/public/bbs/gettalkid_student.jsp?course_id=" + courseId
}

func ThreadUri(threadId, courseId string) string {
	return fmt.Sprintf("/MultiLanguage/public/bbs/talk_reply_student.jsp?id=%s&course_id=%s", threadId, courseId)
}

const mainPage = `<html><body>
<frameset><frame src="MyCourse.jsp?language=cn"></frameset>
</body></html>`

const loginFailedPage = `<html><body>
<script>alert("用户名或密码错误，登录失败！");window.location="/index.jsp";</script>
</body></html>`

// FakeSite is an in-process stand-in for the learning site. It accepts
// exactly one credential and serves whatever pages were registered, keyed
// by request uri, to a logged in session.
type FakeSite struct {
	Server   *httptest.Server
	UserId   string
	Password string

	mu     sync.Mutex
	pages  map[string]string
	hits   map[string]int
	logins int
}

func NewFakeSite(t testing.TB, userId, password string) *FakeSite {
	site := &FakeSite{
		UserId:   userId,
		Password: password,
		pages:    make(map[string]string),
		hits:     make(map[string]int),
	}
	site.Server = httptest.NewServer(http.HandlerFunc(site.serve))
	t.Cleanup(site.Server.Close)
	return site
}

func (s *FakeSite) Url() string {
	return s.Server.URL
}

// SetCredential changes the credential the site accepts.
func (s *FakeSite) SetCredential(userId, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UserId = userId
	s.Password = password
}

func (s *FakeSite) accepts(userId, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return userId == s.UserId && password == s.Password
}

func (s *FakeSite) SetPage(uri, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[uri] = body
}

func (s *FakeSite) RemovePage(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, uri)
}

// Hits returns how many requests were made for uri.
func (s *FakeSite) Hits(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[uri]
}

// Logins returns the number of successful logins.
func (s *FakeSite) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Populate registers the fixture pages. Course 101 has content of every
// kind, course 102 has none. Thread 7 has a reply newer than its listing
// date, thread 8 has no page.
func (s *FakeSite) Populate() {
	s.SetPage(CourseListUri, Fixture("courses.html"))

	s.SetPage(NotesUri("101"), Fixture("notes.html"))
	s.SetPage(FilesUri("101"), Fixture("files.html"))
	s.SetPage(HomeworkUri("101"), Fixture("homework.html"))
	s.SetPage(DiscussUri("101"), Fixture("discuss.html"))
	s.SetPage(ThreadUri("7", "101"), Fixture("thread.html"))

	empty := Fixture("empty.html")
	s.SetPage(NotesUri("102"), empty)
	s.SetPage(FilesUri("102"), empty)
	s.SetPage(HomeworkUri("102"), empty)
	s.SetPage(DiscussUri("102"), empty)
}

func writeHtml(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func (s *FakeSite) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.RequestURI()]++
	s.mu.Unlock()

	switch r.URL.Path {
	case teacherLoginPath:
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "session", Path: "/"})
		writeHtml(w, "<html><body></body></html>")
		return
	case studentMainPath:
		if _, err := r.Cookie(sessionCookie); err != nil {
			writeHtml(w, loginFailedPage)
			return
		}
		err := r.ParseForm()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !s.accepts(r.PostForm.Get("userid"), r.PostForm.Get("userpass")) {
			writeHtml(w, loginFailedPage)
			return
		}
		s.mu.Lock()
		s.logins++
		s.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: studentCookie, Value: "student", Path: "/"})
		writeHtml(w, mainPage)
		return
	}

	if _, err := r.Cookie(studentCookie); err != nil {
		http.Error(w, "not logged in", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	body, ok := s.pages[r.URL.RequestURI()]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeHtml(w, body)
}
