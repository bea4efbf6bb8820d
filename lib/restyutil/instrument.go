package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// InstrumentOutput receives one formatted HTTP exchange per request.
type InstrumentOutput interface {
	Write(id string, contents string)
}

type dumpHooks struct {
	output InstrumentOutput
	seq    *atomic.Uint64
}

type exchangeIdKey struct{}

// InstrumentClient dumps every exchange the client makes to output. A nil
// output leaves the client untouched.
func InstrumentClient(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}
	h := dumpHooks{output: output, seq: &atomic.Uint64{}}
	client.OnBeforeRequest(h.before)
	client.OnAfterResponse(h.after)
	client.OnError(h.failed)
}

// exchangeId is "<seq>-<method>-<page>", ex. "0003-get-MyCourse.jsp", so a
// dump directory lists in request order.
func exchangeId(seq uint64, method, rawUrl string) string {
	page := path.Base(strings.SplitN(rawUrl, "?", 2)[0])
	if page == "." || page == "/" || page == "" {
		page = "index"
	}
	return fmt.Sprintf("%04d-%s-%s", seq, strings.ToLower(method), page)
}

func (h dumpHooks) before(_ *resty.Client, req *resty.Request) error {
	id := exchangeId(h.seq.Add(1), req.Method, req.URL)
	slog.DebugContext(req.Context(), "http exchange start", "id", id, "url", req.URL)
	req.SetContext(context.WithValue(req.Context(), exchangeIdKey{}, id))
	return nil
}

func (h dumpHooks) after(_ *resty.Client, res *resty.Response) error {
	id, ok := res.Request.Context().Value(exchangeIdKey{}).(string)
	if !ok {
		return nil
	}
	h.output.Write(id, formatHttpMessage(res))
	slog.DebugContext(
		res.Request.Context(), "http exchange done",
		"id", id,
		"status", res.StatusCode(),
		"elapsed", res.Time(),
	)
	return nil
}

func (h dumpHooks) failed(req *resty.Request, err error) {
	id, ok := req.Context().Value(exchangeIdKey{}).(string)
	if !ok {
		return
	}
	h.output.Write(id, fmt.Sprintf("%s %s\n\n---- ERROR ----\n\n%v", req.Method, req.URL, err))
	slog.WarnContext(req.Context(), "http exchange failed", "id", id, "err", err)
}
