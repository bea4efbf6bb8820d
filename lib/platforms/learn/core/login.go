package core

import (
	"context"
	"learnwatch/lib/courseinfo"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	teacherLoginPath = "/MultiLanguage/lesson/teacher/loginteacher.jsp"
	studentMainPath  = "/MultiLanguage/lesson/student/mainstudent.jsp"
	// only present on the landing page of a logged in student
	loggedInMarker = "MyCourse.jsp?language=cn"
	// the login form's submit button, its label is gbk percent-encoded
	submitField = "submit1=%B5%C7%C2%BC"
)

func loginForm(cred courseinfo.Credential) string {
	values := url.Values{}
	values.Set("userid", cred.UserId)
	values.Set("userpass", cred.Password)
	return values.Encode() + "&" + submitField
}

// Login authenticates the client's cookie jar. Network failures come back
// as transport errors, a rejected login as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, cred courseinfo.Credential) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", cred.UserId))
	form := loginForm(cred)

	// the answer is irrelevant, this request sets up the server side session
	_, err := c.PostText(ctx, teacherLoginPath, form)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make session request")
		return err
	}

	page, err := c.PostText(ctx, studentMainPath, form)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if !strings.Contains(page, loggedInMarker) {
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		return ErrInvalidCredentials
	}

	slog.DebugContext(ctx, "logged in", "credential", cred, "cookies", len(c.Cookies()))
	return nil
}
