package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/controller"
	"github.com/comigor/emotune/internal/conversation"
	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/history"
	"github.com/comigor/emotune/internal/llm/llmtest"
)

type stubCatalog struct{}

func (stubCatalog) Lookup(l emotion.Label) []catalog.Entry {
	if l != emotion.Sadness {
		return []catalog.Entry{}
	}
	var out []catalog.Entry
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		out = append(out, catalog.Entry{Performer: "P", Title: title, Genre: "ballad", Emotion: "슬픔"})
	}
	return out
}

type stubHistory struct{ records []history.Record }

func (s *stubHistory) Save(_ context.Context, r history.Record) history.Record {
	s.records = append(s.records, r)
	return r
}

func (s *stubHistory) Recent(_ context.Context, limit int) []history.Record {
	if len(s.records) > limit {
		return s.records[:limit]
	}
	return s.records
}

func (s *stubHistory) ListSession(_ context.Context, sessionID string) []history.Record {
	out := []history.Record{}
	for _, r := range s.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out
}

func setupServer(t *testing.T, client *llmtest.Client) (http.Handler, *Server, *stubHistory) {
	t.Helper()
	hist := &stubHistory{}
	factory := func(userName string) *controller.Controller {
		return controller.New(func() controller.Conversation {
			return conversation.New(client, "gpt", "persona")
		}, stubCatalog{}, controller.Options{UserName: userName, Recorder: hist})
	}
	srv := New(factory, stubCatalog{}, hist, 6)
	return srv.Routes(), srv, hist
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, h http.Handler) sessionView {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/api/sessions", map[string]string{"userName": "민지"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var v sessionView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v))
	return v
}

func TestCreateSession(t *testing.T) {
	h, srv, _ := setupServer(t, llmtest.New())

	v := createSession(t, h)
	require.NotEmpty(t, v.ID)
	require.Equal(t, controller.StateChatting, v.State)
	require.Equal(t, "민지", v.UserName)
	require.Contains(t, v.Greeting, "민지님")
	require.Equal(t, 1, srv.Len())
}

func TestCreateSession_EmptyBody(t *testing.T) {
	h, _, _ := setupServer(t, llmtest.New())
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code)
}

func TestCreateSession_InvalidBody(t *testing.T) {
	h, _, _ := setupServer(t, llmtest.New())
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString("{"))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestConversationFlow(t *testing.T) {
	client := llmtest.New("많이 힘드셨겠어요.", "슬픔")
	h, _, hist := setupServer(t, client)
	v := createSession(t, h)
	base := "/api/sessions/" + v.ID

	resp := do(t, h, http.MethodPost, base+"/messages", map[string]string{"content": "오늘 너무 우울해"})
	require.Equal(t, http.StatusOK, resp.Code)
	var m messageView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &m))
	require.Equal(t, controller.ReplyAssistant, m.Kind)
	require.Equal(t, "많이 힘드셨겠어요.", m.Reply)
	require.Equal(t, controller.StateChatting, m.State)

	resp = do(t, h, http.MethodPost, base+"/messages", map[string]string{"content": "노래 추천해줘"})
	require.Equal(t, http.StatusOK, resp.Code)
	m = messageView{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &m))
	require.Equal(t, controller.ReplyTransition, m.Kind)
	require.Equal(t, controller.TransitionMessage, m.Reply)
	require.Equal(t, controller.StateRecommending, m.State)
	require.NotNil(t, m.Outcome)
	require.Equal(t, "슬픔", m.Outcome.Emotion)
	require.Equal(t, "sadness", m.Outcome.Name)
	require.True(t, m.Outcome.Classified)
	require.Equal(t, 8, m.Outcome.Total)
	require.Len(t, m.Outcome.Songs, 6)

	resp = do(t, h, http.MethodPost, base+"/messages", map[string]string{"content": "hello?"})
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = do(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var got sessionView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Equal(t, controller.StateRecommending, got.State)
	require.Len(t, got.History, 3)
	require.NotNil(t, got.Outcome)

	require.Len(t, hist.records, 1)
	resp = do(t, h, http.MethodGet, "/api/recommendations?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var recs []history.Record
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	require.Equal(t, v.ID, recs[0].SessionID)

	resp = do(t, h, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	got = sessionView{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Equal(t, controller.StateChatting, got.State)
}

func TestSessionRecommendations(t *testing.T) {
	client := llmtest.New("슬픔", "분노")
	h, _, _ := setupServer(t, client)
	v := createSession(t, h)
	other := createSession(t, h)
	base := "/api/sessions/" + v.ID

	resp := do(t, h, http.MethodPost, base+"/messages", map[string]string{"content": "그만"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, h, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = do(t, h, http.MethodPost, base+"/messages", map[string]string{"content": "종료"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = do(t, h, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = do(t, h, http.MethodGet, base+"/recommendations", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var recs []history.Record
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &recs))
	require.Len(t, recs, 2)
	require.Equal(t, "슬픔", recs[0].Emotion)
	require.Equal(t, "분노", recs[1].Emotion)

	resp = do(t, h, http.MethodGet, "/api/sessions/"+other.ID+"/recommendations", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `[]`, resp.Body.String())
}

func TestSessionsAreIsolated(t *testing.T) {
	client := llmtest.New("reply to first", "reply to second")
	h, _, _ := setupServer(t, client)
	a := createSession(t, h)
	b := createSession(t, h)
	require.NotEqual(t, a.ID, b.ID)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/sessions/"+a.ID+"/messages", map[string]string{"content": "first"}).Code)

	resp := do(t, h, http.MethodGet, "/api/sessions/"+b.ID, nil)
	var got sessionView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got.History, 1)
}

func TestSendMessage_Validation(t *testing.T) {
	h, _, _ := setupServer(t, llmtest.New())
	v := createSession(t, h)

	resp := do(t, h, http.MethodPost, "/api/sessions/"+v.ID+"/messages", map[string]string{"content": "  "})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = do(t, h, http.MethodPost, "/api/sessions/unknown/messages", map[string]string{"content": "hi"})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteSession(t *testing.T) {
	h, srv, _ := setupServer(t, llmtest.New())
	v := createSession(t, h)

	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/sessions/"+v.ID, nil).Code)
	require.Equal(t, 0, srv.Len())
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/sessions/"+v.ID, nil).Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/sessions/"+v.ID, nil).Code)
}

func TestSongsAndEmotions(t *testing.T) {
	h, _, _ := setupServer(t, llmtest.New())

	resp := do(t, h, http.MethodGet, "/api/songs?emotion=sadness&limit=2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var songs []catalog.Entry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &songs))
	require.Len(t, songs, 2)

	resp = do(t, h, http.MethodGet, "/api/songs?emotion=분노", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `[]`, resp.Body.String())

	require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/songs", nil).Code)

	resp = do(t, h, http.MethodGet, "/api/emotions", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var labels []map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &labels))
	require.Len(t, labels, 9)
}

func TestRecommendations_Disabled(t *testing.T) {
	srv := New(func(string) *controller.Controller { return nil }, stubCatalog{}, nil, 0)
	resp := do(t, srv.Routes(), http.MethodGet, "/api/recommendations", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	resp = do(t, srv.Routes(), http.MethodGet, "/api/sessions/abc/recommendations", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
