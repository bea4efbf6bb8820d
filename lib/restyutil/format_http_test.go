package restyutil

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactForm(t *testing.T) {
	redacted := redactForm("userid=2012011234&userpass=hunter2&submit1=%B5%C7%C2%BC")
	require.NotContains(t, redacted, "hunter2")
	require.Contains(t, redacted, "userid=2012011234")
	require.Contains(t, redacted, "userpass=REDACTED")

	require.Equal(t, "course_id=42", redactForm("course_id=42"))
}

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("B", "2")
	headers.Add("A", "1")
	headers.Add("A", "3")
	require.Equal(t, "A: 1\nA: 3\nB: 2", formatHeaders(headers))
}

func TestFormatRequestBody(t *testing.T) {
	get, err := http.NewRequest(http.MethodGet, "https://learn.example/MyCourse.jsp", nil)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, formatRequestBody(get))

	// resty installs GetBody on every request, bodiless ones included
	get.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	require.Empty(t, formatRequestBody(get))

	post, err := http.NewRequest(http.MethodPost, "https://learn.example/login", strings.NewReader("userid=1&userpass=secret"))
	if err != nil {
		t.Fatal(err)
	}
	formatted := formatRequestBody(post)
	require.Contains(t, formatted, "userid=1")
	require.NotContains(t, formatted, "secret")

	require.Empty(t, formatRequestBody(nil))
}
