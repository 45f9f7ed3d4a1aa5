package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/tasks"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		Domain:   "mg.example.com",
		APIKey:   "key-123",
		BaseURL:  "http://mailgun.test/v3",
		FromName: "Stores REST API",
	}
}

func TestClientSendPostsForm(t *testing.T) {
	var capturedURL string
	var form url.Values
	var user, pass string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		user, pass, _ = req.BasicAuth()
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		form, err = url.ParseQuery(string(body))
		if err != nil {
			t.Fatalf("parse form: %v", err)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"id":"<1@mg>","message":"Queued. Thank you."}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient(testMailConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.Send(context.Background(), Message{
		To:      "ana@example.com",
		Subject: "Successfully signed up",
		Text:    "hello",
		HTML:    "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if capturedURL != "http://mailgun.test/v3/mg.example.com/messages" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if user != "api" || pass != "key-123" {
		t.Fatalf("unexpected basic auth %q:%q", user, pass)
	}
	if got := form.Get("from"); got != "Stores REST API <mailgun@mg.example.com>" {
		t.Fatalf("unexpected from %q", got)
	}
	if form.Get("to") != "ana@example.com" || form.Get("html") != "<p>hello</p>" {
		t.Fatalf("unexpected form %v", form)
	}
}

func TestClientSendNon2xxIsDependencyError(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader("Forbidden")),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient(testMailConfig(), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	err = client.Send(context.Background(), Message{To: "ana@example.com", Subject: "s", Text: "t"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(config.MailConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error without domain")
	}
	if _, err := NewClient(config.MailConfig{Domain: "mg.example.com"}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestRegistrationEmailRendersUsername(t *testing.T) {
	renderer, err := NewRenderer("")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	msg, err := RegistrationEmail(renderer, "ana@example.com", "<ana>")
	if err != nil {
		t.Fatalf("registration email: %v", err)
	}
	if msg.Subject != "Successfully signed up" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.Text != "Hi <ana>! You have successfully signed up to the Stores REST API." {
		t.Fatalf("unexpected text %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, "&lt;ana&gt;") {
		t.Fatalf("expected escaped username in html, got %q", msg.HTML)
	}
}

func TestRendererReadsTemplateDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "email"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "email", "registration.html"), []byte("custom {{ .Username }}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	renderer, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render("registration.html", struct{ Username string }{"bo"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "custom bo" {
		t.Fatalf("unexpected output %q", out)
	}
}

type recordingSender struct {
	sent []Message
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestRegistrationHandlerSendsMessage(t *testing.T) {
	renderer, err := NewRenderer("")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	sender := &recordingSender{}
	handler, err := RegistrationHandler(sender, renderer)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	env, err := tasks.NewEnvelope(tasks.SendUserRegistrationEmail, time.Now(), "ana@example.com", "ana")
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if err := handler(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "ana@example.com" {
		t.Fatalf("unexpected sent messages %+v", sender.sent)
	}

	bad := tasks.Envelope{ID: uuid.New(), Name: tasks.SendUserRegistrationEmail, Args: json.RawMessage(`["only-one"]`)}
	if err := handler(context.Background(), bad); err == nil {
		t.Fatal("expected error for wrong arg count")
	}
}
