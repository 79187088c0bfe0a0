package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poemAI-ch/poemai-go/pkg/model/openai"
)

// responsesServer replies to /v1/responses with sequential identifiers and
// records every decoded request body.
type responsesServer struct {
	t      *testing.T
	bodies []map[string]any
	ids    []string
	next   int
}

func (s *responsesServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/responses" {
		s.t.Errorf("path = %s", r.URL.Path)
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.t.Errorf("decode body: %v", err)
	}
	s.bodies = append(s.bodies, body)

	id := ""
	if s.next < len(s.ids) {
		id = s.ids[s.next]
	}
	s.next++
	resp := map[string]any{
		"status":      "completed",
		"output_text": "answer",
	}
	if id != "" {
		resp["id"] = id
	}
	json.NewEncoder(w).Encode(resp)
}

func newConversation(t *testing.T, ids ...string) (*Conversation, *responsesServer) {
	t.Helper()
	handler := &responsesServer{t: t, ids: ids}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := openai.NewClient(openai.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "gpt-4o-mini",
		MaxRetries: 1,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return New(client), handler
}

func TestFreshConversationOmitsLinkage(t *testing.T) {
	conv, srv := newConversation(t, "resp_1")

	if conv.ConversationID() != "" {
		t.Fatalf("fresh conversation id = %q", conv.ConversationID())
	}

	resp, err := conv.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	body := srv.bodies[0]
	if _, ok := body["previous_response_id"]; ok {
		t.Fatal("first turn must not carry previous_response_id")
	}
	if body["store"] != true {
		t.Fatalf("store = %v, want default true", body["store"])
	}
	if resp.ID != "resp_1" || conv.ConversationID() != "resp_1" {
		t.Fatalf("id = %q, conversation = %q", resp.ID, conv.ConversationID())
	}
}

func TestSecondTurnCarriesPreviousResponseID(t *testing.T) {
	conv, srv := newConversation(t, "resp_1", "resp_2")

	if _, err := conv.Send(context.Background(), "first"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := conv.Send(context.Background(), "second"); err != nil {
		t.Fatalf("second send: %v", err)
	}

	if _, ok := srv.bodies[0]["previous_response_id"]; ok {
		t.Fatal("first turn must not carry previous_response_id")
	}
	if srv.bodies[1]["previous_response_id"] != "resp_1" {
		t.Fatalf("second turn linkage = %v", srv.bodies[1]["previous_response_id"])
	}
	if conv.ConversationID() != "resp_2" {
		t.Fatalf("conversation id = %q", conv.ConversationID())
	}
}

func TestResetStartsFreshContext(t *testing.T) {
	conv, srv := newConversation(t, "resp_1", "resp_2")

	if _, err := conv.Send(context.Background(), "first"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	conv.Reset()

	if conv.ConversationID() != "" {
		t.Fatalf("conversation id after reset = %q", conv.ConversationID())
	}
	if conv.History() != nil {
		t.Fatal("history should be cleared by reset")
	}

	if _, err := conv.Send(context.Background(), "again"); err != nil {
		t.Fatalf("send after reset: %v", err)
	}
	if _, ok := srv.bodies[1]["previous_response_id"]; ok {
		t.Fatal("turn after reset must not carry previous_response_id")
	}
}

func TestResponseWithoutIDLeavesConversationUnlinked(t *testing.T) {
	conv, srv := newConversation(t, "") // gateway reply without an id

	if _, err := conv.Send(context.Background(), "first"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if conv.ConversationID() != "" {
		t.Fatalf("conversation id = %q, want unlinked", conv.ConversationID())
	}

	if _, err := conv.Send(context.Background(), "second"); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if _, ok := srv.bodies[1]["previous_response_id"]; ok {
		t.Fatal("unlinked conversation must not send previous_response_id")
	}
}

func TestSendWithOptions(t *testing.T) {
	conv, srv := newConversation(t, "resp_1")

	store := false
	_, err := conv.SendWith(context.Background(), "hello", TurnOptions{
		Instructions: "be brief",
		Store:        &store,
		Stop:         []string{"END"},
		Metadata:     map[string]string{"tenant": "acme"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	body := srv.bodies[0]
	if body["instructions"] != "be brief" {
		t.Fatalf("instructions = %v", body["instructions"])
	}
	if body["store"] != false {
		t.Fatalf("store = %v", body["store"])
	}
	stop, _ := body["stop"].([]any)
	if len(stop) != 1 || stop[0] != "END" {
		t.Fatalf("stop = %v", body["stop"])
	}
	metadata, _ := body["metadata"].(map[string]any)
	if metadata["tenant"] != "acme" {
		t.Fatalf("metadata = %v", body["metadata"])
	}
}

func TestSendRejectsEmptyInput(t *testing.T) {
	conv, _ := newConversation(t)
	for _, input := range []string{"", "  \n\t"} {
		if _, err := conv.Send(context.Background(), input); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("input %q: err = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestFailedSendKeepsLinkage(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]any{"id": "resp_1", "status": "completed", "output_text": "ok"})
			return
		}
		http.Error(w, `{"error":{"type":"invalid_request_error","message":"bad"}}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	client, err := openai.NewClient(openai.ClientConfig{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 1})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	conv := New(client)

	if _, err := conv.Send(context.Background(), "first"); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := conv.Send(context.Background(), "second"); err == nil {
		t.Fatal("expected second send to fail")
	}

	if conv.ConversationID() != "resp_1" {
		t.Fatalf("conversation id = %q, want linkage preserved on failure", conv.ConversationID())
	}
	if turns := conv.History(); len(turns) != 1 {
		t.Fatalf("history = %d turns, want only the successful one", len(turns))
	}
}

func TestHistoryRecordsTurns(t *testing.T) {
	conv, _ := newConversation(t, "resp_1", "resp_2")
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	conv.now = func() time.Time { return fixed }

	if _, err := conv.Send(context.Background(), "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := conv.Send(context.Background(), "two"); err != nil {
		t.Fatalf("send: %v", err)
	}

	turns := conv.History()
	if len(turns) != 2 {
		t.Fatalf("history = %d turns", len(turns))
	}
	if turns[0].Input != "one" || turns[0].ResponseID != "resp_1" || turns[0].OutputText != "answer" {
		t.Fatalf("first turn = %+v", turns[0])
	}
	if !turns[1].Timestamp.Equal(fixed) {
		t.Fatalf("timestamp = %v", turns[1].Timestamp)
	}

	// The returned slice is a copy.
	turns[0].Input = "mutated"
	if conv.History()[0].Input != "one" {
		t.Fatal("history must not be mutable from outside")
	}
}
