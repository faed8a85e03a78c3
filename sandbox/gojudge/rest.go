package gojudge

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/codepractice/remote-judge/sandbox"
)

type restTransport struct {
	base   string
	header http.Header
	client *http.Client
}

var _ transport = &restTransport{}

func newRESTTransport(base, token string, client *http.Client) *restTransport {
	header := make(http.Header)
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &restTransport{
		base:   strings.TrimRight(base, "/"),
		header: header,
		client: client,
	}
}

// exec posts to /run which responds with the results array only
func (t *restTransport) exec(ctx context.Context, req Request) (Response, error) {
	var results []sandbox.GoJudgeResult
	if err := sandbox.DoJSON(ctx, t.client, http.MethodPost, t.base+"/run", t.header, req, &results); err != nil {
		return Response{}, err
	}
	return Response{RequestID: req.RequestID, Results: results}, nil
}

func (t *restTransport) deleteFile(ctx context.Context, id string) error {
	return sandbox.DoJSON(ctx, t.client, http.MethodDelete, t.base+"/file/"+url.PathEscape(id), t.header, nil, nil)
}

func (t *restTransport) close() error {
	return nil
}
