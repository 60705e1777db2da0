package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"honeypot-lab/internal/config"
	"honeypot-lab/pkg/logger"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(baseURL string) *ChatClient {
	return NewChatClient(config.LLMConfig{
		Provider: "openrouter",
		BaseURL:  baseURL,
		Model:    "test-model",
	}, logger.Nop())
}

func TestClassifyParsesVerdict(t *testing.T) {
	srv := chatServer(t, `{"label":"Scam","confidence":0.88,"reason":"urgency and OTP request"}`)
	defer srv.Close()

	result, err := testClient(srv.URL).Classify(context.Background(), "share your OTP now")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.Label != LabelScam {
		t.Errorf("label = %q, want Scam", result.Label)
	}
	if result.Confidence != 0.88 {
		t.Errorf("confidence = %f", result.Confidence)
	}
}

func TestClassifyHandlesFencedJSON(t *testing.T) {
	srv := chatServer(t, "Here is my analysis:\n```json\n{\"label\":\"Legitimate\",\"confidence\":0.7,\"reason\":\"normal text\"}\n```")
	defer srv.Close()

	result, err := testClient(srv.URL).Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.Label != LabelLegitimate {
		t.Errorf("label = %q, want Legitimate", result.Label)
	}
}

func TestClassifyMalformedOutputIsUncertain(t *testing.T) {
	srv := chatServer(t, "I think this might be a scam, hard to say")
	defer srv.Close()

	result, err := testClient(srv.URL).Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("malformed output must not surface as an error: %v", err)
	}
	if result.Label != LabelUncertain {
		t.Errorf("label = %q, want Uncertain", result.Label)
	}
}

func TestClassifyUnknownLabelIsUncertain(t *testing.T) {
	srv := chatServer(t, `{"label":"Suspicious","confidence":0.9,"reason":"x"}`)
	defer srv.Close()

	result, err := testClient(srv.URL).Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if result.Label != LabelUncertain {
		t.Errorf("label = %q, want Uncertain", result.Label)
	}
}

func TestClassifyOutOfRangeConfidenceIsUncertain(t *testing.T) {
	srv := chatServer(t, `{"label":"Scam","confidence":1.7,"reason":"x"}`)
	defer srv.Close()

	result, _ := testClient(srv.URL).Classify(context.Background(), "hello")
	if result.Label != LabelUncertain {
		t.Errorf("label = %q, want Uncertain", result.Label)
	}
}

func TestClassifyTransportFailure(t *testing.T) {
	srv := chatServer(t, "")
	srv.Close()

	result, err := testClient(srv.URL).Classify(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if result.Label != LabelUncertain {
		t.Errorf("label = %q, want Uncertain on failure", result.Label)
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Classify(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected API error")
	}
	if result.Label != LabelUncertain {
		t.Errorf("label = %q, want Uncertain", result.Label)
	}
}

func TestGenerateSanitizesReply(t *testing.T) {
	srv := chatServer(t, `"As an AI language model I would say: Oh no! What do I do now? Please explain."`)
	defer srv.Close()

	reply, err := testClient(srv.URL).Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply")
	}
	if len(reply) > 260 {
		t.Errorf("reply too long: %d chars", len(reply))
	}
}

func TestGenerateSendsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Okay sure."}},
			},
		})
	}))
	defer srv.Close()

	client := NewChatClient(config.LLMConfig{
		BaseURL: srv.URL,
		APIKey:  "sk-test",
		Model:   "test-model",
	}, logger.Nop())

	if _, err := client.Generate(context.Background(), "prompt"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
