package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"vacationplanner/internal/config"
	"vacationplanner/internal/models"
)

type fakeChatModel struct {
	reply    *schema.Message
	err      error
	input    []*schema.Message
	received *model.Options
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	f.received = model.GetCommonOptions(nil, opts...)
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not used")
}

func TestChatModelGeneratorPassesOptionsAndRoles(t *testing.T) {
	fake := &fakeChatModel{reply: &schema.Message{Role: schema.Assistant, Content: "Where would you like to go?"}}
	gen := NewChatModelGenerator(fake)

	got, err := gen.Generate(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "plan vacations"},
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}, 1024, 0.7)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got != "Where would you like to go?" {
		t.Fatalf("unexpected reply %q", got)
	}
	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant}
	if len(fake.input) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d", len(wantRoles), len(fake.input))
	}
	for i, role := range wantRoles {
		if fake.input[i].Role != role {
			t.Fatalf("message %d role = %s, want %s", i, fake.input[i].Role, role)
		}
	}
	if fake.received.MaxTokens == nil || *fake.received.MaxTokens != 1024 {
		t.Fatalf("max tokens option not passed: %+v", fake.received.MaxTokens)
	}
	if fake.received.Temperature == nil || *fake.received.Temperature != 0.7 {
		t.Fatalf("temperature option not passed: %+v", fake.received.Temperature)
	}
}

func TestChatModelGeneratorNilReply(t *testing.T) {
	gen := NewChatModelGenerator(&fakeChatModel{})
	got, err := gen.Generate(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, 10, 0.5)
	if err != nil || got != "" {
		t.Fatalf("expected empty reply without error, got %q err=%v", got, err)
	}
}

func TestChatModelGeneratorWrapsError(t *testing.T) {
	gen := NewChatModelGenerator(&fakeChatModel{err: errors.New("upstream 503")})
	_, err := gen.Generate(context.Background(), nil, 10, 0.5)
	if err == nil || !strings.Contains(err.Error(), "upstream 503") {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

func TestNewGeneratorRejectsUnknownProvider(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "bard", config.ProviderConfig{Model: "x"}); err == nil {
		t.Fatalf("expected invalid provider error")
	}
	if _, err := NewGenerator(context.Background(), ProviderOpenAI, config.ProviderConfig{}); err == nil {
		t.Fatalf("expected missing model error")
	}
	gen, err := NewGenerator(context.Background(), ProviderWorkersAI, config.ProviderConfig{Model: "m"})
	if err == nil {
		t.Fatalf("expected missing base_url error")
	}
	if gen != nil {
		t.Fatalf("expected nil generator on error, got %#v", gen)
	}
}

type capturedCompletion struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type completionServer struct {
	mu       sync.Mutex
	captured capturedCompletion
	empty    atomic.Bool
}

func (s *completionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	var req capturedCompletion
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.captured = req
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if s.empty.Load() {
		_, _ = w.Write([]byte(`{"id":"c2","object":"chat.completion","choices":[]}`))
		return
	}
	_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Day 1: arrive in Paris"},"finish_reason":"stop"}]}`))
}

func (s *completionServer) last() capturedCompletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captured
}

func TestCompatibleGenerator(t *testing.T) {
	upstream := &completionServer{}
	server := httptest.NewServer(upstream)
	defer server.Close()

	gen, err := NewGenerator(context.Background(), ProviderWorkersAI, config.ProviderConfig{
		BaseURL: server.URL + "/v1",
		Model:   "@cf/meta/llama-3.3-70b-instruct-fp8-fast",
		APIKey:  "test",
	})
	if err != nil {
		t.Fatalf("NewGenerator error: %v", err)
	}
	got, err := gen.Generate(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "plan"},
		{Role: models.RoleUser, Content: "Paris"},
	}, 1024, 0.7)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got != "Day 1: arrive in Paris" {
		t.Fatalf("unexpected reply %q", got)
	}
	captured := upstream.last()
	if captured.Model != "@cf/meta/llama-3.3-70b-instruct-fp8-fast" || captured.MaxTokens != 1024 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}

	upstream.empty.Store(true)
	got, err = gen.Generate(context.Background(), []models.Message{{Role: models.RoleUser, Content: "again"}}, 1024, 0.7)
	if err != nil || got != "" {
		t.Fatalf("expected empty reply for no choices, got %q err=%v", got, err)
	}
}
