package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"natgpt/internal/config"
	"natgpt/internal/model/conversation"
	"natgpt/internal/service"
)

type fakeChatModel struct {
	reply string
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func history(t *testing.T) []conversation.Message {
	u, err := conversation.NewUserMessage("hello")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := conversation.NewAssistantMessage("hi, how can I help?")
	u2, _ := conversation.NewUserMessage("tell me a joke")
	return []conversation.Message{u, a, u2}
}

func TestEstimateTokens(t *testing.T) {
	Convey("EstimateTokens rounds characters / 4 up", t, func() {
		So(EstimateTokens(""), ShouldEqual, 0)
		So(EstimateTokens("abcd"), ShouldEqual, 1)
		So(EstimateTokens("abcde"), ShouldEqual, 2)
		So(EstimateTokens("你好世界!"), ShouldEqual, 2)
	})
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	Convey("Client", t, func() {
		fake := &fakeChatModel{reply: "Why did the gopher cross the road?"}
		cfg := &config.AIConfig{Provider: "openai", APIKey: "k", SystemPrompt: "be brief"}
		client := NewClientWithModel(cfg, fake, 50)

		Convey("prepends the system prompt and maps roles", func() {
			reply, err := client.GenerateResponse(ctx, "tell me a joke", history(t), service.GenerateOptions{})
			So(err, ShouldBeNil)
			So(reply, ShouldEqual, fake.reply)
			So(fake.input, ShouldHaveLength, 4)
			So(fake.input[0].Role, ShouldEqual, schema.System)
			So(fake.input[0].Content, ShouldEqual, "be brief")
			So(fake.input[1].Role, ShouldEqual, schema.User)
			So(fake.input[2].Role, ShouldEqual, schema.Assistant)
			So(fake.input[3].Content, ShouldEqual, "tell me a joke")
		})

		Convey("marks rate limits", func() {
			fake.err = errors.New("error, status code: 429, message: Rate limit reached")
			_, err := client.GenerateResponse(ctx, "x", history(t), service.GenerateOptions{})
			So(errors.Is(err, ErrRateLimited), ShouldBeTrue)
		})

		Convey("passes other errors through", func() {
			fake.err = errors.New("bad request")
			_, err := client.GenerateResponse(ctx, "x", history(t), service.GenerateOptions{})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrRateLimited), ShouldBeFalse)
		})

		Convey("generates a cleaned title", func() {
			fake.reply = "\"Gopher Jokes.\"\nextra"
			title, err := client.GenerateTitle(ctx, "tell me a joke")
			So(err, ShouldBeNil)
			So(title, ShouldEqual, "Gopher Jokes")
		})

		Convey("is available only with a key", func() {
			So(client.IsAvailable(ctx), ShouldBeTrue)
			So(NewClientWithModel(&config.AIConfig{}, fake, 0).IsAvailable(ctx), ShouldBeFalse)
			So(client.MaxTokens(), ShouldEqual, DefaultMaxTokens)
		})
	})
}

func TestHTTPClient(t *testing.T) {
	ctx := context.Background()

	Convey("HTTPClient", t, func() {
		var got CompletionRequest
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if r.Method == http.MethodGet {
				_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
			if status != http.StatusOK {
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "slow down"})
				return
			}
			_ = json.NewEncoder(w).Encode(CompletionResponse{Text: "pong", Title: "Ping"})
		}))
		defer srv.Close()

		client, err := NewHTTPClient(&config.AIConfig{Endpoint: srv.URL})
		So(err, ShouldBeNil)

		Convey("posts prompt and context", func() {
			reply, err := client.GenerateResponse(ctx, "tell me a joke", history(t), service.GenerateOptions{Model: "m", IsFirstMessage: true})
			So(err, ShouldBeNil)
			So(reply, ShouldEqual, "pong")
			So(got.Prompt, ShouldEqual, "tell me a joke")
			So(got.Context, ShouldHaveLength, 3)
			So(got.Context[1].Role, ShouldEqual, "assistant")
			So(got.Model, ShouldEqual, "m")
			So(got.IsFirstMessage, ShouldBeTrue)
		})

		Convey("maps 429 to ErrRateLimited", func() {
			status = http.StatusTooManyRequests
			_, err := client.GenerateResponse(ctx, "x", nil, service.GenerateOptions{})
			So(IsRateLimited(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "slow down")
		})

		Convey("probes availability", func() {
			So(client.IsAvailable(ctx), ShouldBeTrue)
		})

		Convey("requires an endpoint", func() {
			_, err := NewHTTPClient(&config.AIConfig{})
			So(errors.Is(err, ErrNotConfigured), ShouldBeTrue)
		})
	})
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()

	Convey("RetryPolicy", t, func() {
		Convey("defaults to three attempts with 2s then 4s between them", func() {
			p := NewRetryPolicy(config.RetryConfig{})
			So(p.MaxAttempts, ShouldEqual, 3)
			So(p.Delay(0), ShouldEqual, 2*time.Second)
			So(p.Delay(1), ShouldEqual, 4*time.Second)
		})

		p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

		Convey("retries rate limits until success", func() {
			calls := 0
			err := p.Do(ctx, func(context.Context) error {
				calls++
				if calls < 3 {
					return ErrRateLimited
				}
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("gives up after the third attempt", func() {
			calls := 0
			err := p.Do(ctx, func(context.Context) error {
				calls++
				return ErrRateLimited
			})
			So(errors.Is(err, ErrRateLimited), ShouldBeTrue)
			So(calls, ShouldEqual, 3)
		})

		Convey("does not retry other errors", func() {
			calls := 0
			boom := errors.New("boom")
			err := p.Do(ctx, func(context.Context) error {
				calls++
				return boom
			})
			So(err, ShouldEqual, boom)
			So(calls, ShouldEqual, 1)
		})

		Convey("stops when the context ends", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			slow := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}
			err := slow.Do(cctx, func(context.Context) error { return ErrRateLimited })
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	Convey("New", t, func() {
		Convey("falls back to the mock without a key", func() {
			svc, err := New(ctx, &config.AIConfig{Provider: "openai"}, 50)
			So(err, ShouldBeNil)
			_, isMock := svc.(*MockClient)
			So(isMock, ShouldBeTrue)
		})

		Convey("rejects unknown providers", func() {
			_, err := New(ctx, &config.AIConfig{Provider: "nope"}, 50)
			So(err, ShouldNotBeNil)
		})

		Convey("mock echoes the prompt", func() {
			reply, err := NewMockClient().GenerateResponse(ctx, "hi", nil, service.GenerateOptions{})
			So(err, ShouldBeNil)
			So(reply, ShouldContainSubstring, "hi")
		})
	})
}
