package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/api/controllers"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/engine"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/infra/logger"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/store"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op      string
	session domain.Session
	arg     string
	group   string
}

type stubOps struct {
	result  domain.Result
	records []*domain.OperationRecord
	histErr error
	calls   []call
}

func (s *stubOps) record(op string, sess domain.Session, arg, group string) domain.Result {
	s.calls = append(s.calls, call{op: op, session: sess, arg: arg, group: group})
	return s.result
}

func (s *stubOps) Authenticate(_ context.Context, sess domain.Session) domain.Result {
	return s.record("auth", sess, "", "")
}

func (s *stubOps) ListGroups(_ context.Context, sess domain.Session) domain.Result {
	return s.record("list", sess, "", "")
}

func (s *stubOps) ListArticlesInGroup(_ context.Context, sess domain.Session, group string) domain.Result {
	return s.record("listgroup", sess, "", group)
}

func (s *stubOps) GetHeaders(_ context.Context, sess domain.Session, id, group string) domain.Result {
	return s.record("head", sess, id, group)
}

func (s *stubOps) GetArticle(_ context.Context, sess domain.Session, id, group string) domain.Result {
	return s.record("article", sess, id, group)
}

func (s *stubOps) History(_ context.Context, limit int) ([]*domain.OperationRecord, error) {
	if s.histErr != nil {
		return nil, s.histErr
	}
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func (s *stubOps) Operation(_ context.Context, id string) (*domain.OperationRecord, error) {
	if s.histErr != nil {
		return nil, s.histErr
	}
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func newTestServer(ops *stubOps) *echo.Echo {
	e := echo.New()
	registerRoutes(e, &controllers.OperationsController{
		Ops:      ops,
		Defaults: domain.Session{Host: "news.example.com", Port: 119, Timeout: 5 * time.Second},
	}, logger.Discard())
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.Result {
	t.Helper()
	var res domain.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestArticleRoute(t *testing.T) {
	ops := &stubOps{result: domain.Result{
		Success: true,
		Message: "retrieved article <a@b> (2 lines)",
		Lines:   []string{"Subject: hi", "body"},
	}}
	e := newTestServer(ops)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/%3Ca@b%3E?group=alt.test&host=other.example&port=563&timeout=2s", nil)
	req.SetBasicAuth("bob", "secret")
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"Subject: hi", "body"}, res.Lines)

	require.Len(t, ops.calls, 1)
	got := ops.calls[0]
	assert.Equal(t, "article", got.op)
	assert.Equal(t, "<a@b>", got.arg)
	assert.Equal(t, "alt.test", got.group)
	assert.Equal(t, domain.Session{
		Host:     "other.example",
		Port:     563,
		Timeout:  2 * time.Second,
		Username: "bob",
		Password: "secret",
	}, got.session)
}

func TestRoutesDispatch(t *testing.T) {
	ops := &stubOps{result: domain.Result{Success: true}}
	e := newTestServer(ops)

	for _, r := range []struct{ method, path string }{
		{http.MethodPost, "/api/auth"},
		{http.MethodGet, "/api/groups"},
		{http.MethodGet, "/api/groups/alt.binaries.test/articles"},
		{http.MethodGet, "/api/articles/42/head"},
	} {
		rec := serve(e, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, r.path)
	}

	require.Len(t, ops.calls, 4)
	assert.Equal(t, "auth", ops.calls[0].op)
	assert.Equal(t, "list", ops.calls[1].op)
	assert.Equal(t, "alt.binaries.test", ops.calls[2].group)
	assert.Equal(t, "42", ops.calls[3].arg)
	assert.Equal(t, "news.example.com", ops.calls[0].session.Host)
	assert.Empty(t, ops.calls[0].session.Username)
}

func TestFailureStatusCodes(t *testing.T) {
	cases := []struct {
		kind domain.ErrorKind
		want int
	}{
		{domain.KindInvalidArgument, http.StatusBadRequest},
		{domain.KindAuthFailure, http.StatusUnauthorized},
		{domain.KindBusy, http.StatusServiceUnavailable},
		{domain.KindConnectTimeout, http.StatusGatewayTimeout},
		{domain.KindReadTimeout, http.StatusGatewayTimeout},
		{domain.KindUnexpectedStatus, http.StatusBadGateway},
		{domain.KindConnectFailure, http.StatusBadGateway},
		{domain.KindTransportFault, http.StatusBadGateway},
		{domain.KindBodyTooLarge, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			ops := &stubOps{result: domain.Failed(tc.kind, "failed: 430 no such article", nil)}
			rec := serve(newTestServer(ops), httptest.NewRequest(http.MethodGet, "/api/articles/1", nil))

			assert.Equal(t, tc.want, rec.Code)
			res := decodeResult(t, rec)
			assert.False(t, res.Success)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, "failed: 430 no such article", res.Message)
		})
	}
}

func TestBadSessionOverrides(t *testing.T) {
	ops := &stubOps{result: domain.Result{Success: true}}
	e := newTestServer(ops)

	for _, q := range []string{"port=abc", "port=70000", "timeout=soon", "timeout=-1s"} {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/groups?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	assert.Empty(t, ops.calls)
}

func TestHistoryRoutes(t *testing.T) {
	ops := &stubOps{records: []*domain.OperationRecord{
		{ID: "b", Operation: domain.OpGetArticle, Host: "h", Success: true},
		{ID: "a", Operation: domain.OpListGroups, Host: "h", Kind: domain.KindReadTimeout},
	}}
	e := newTestServer(ops)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/history?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.OperationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/history/a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var one domain.OperationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, domain.KindReadTimeout, one.Kind)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/history/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/history?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	e := newTestServer(&stubOps{histErr: engine.ErrNoHistory})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/history/x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
