package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/brewhouse-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "brewhouse-dev"}

	cases := map[string]string{
		"beer-events":                          "projects/brewhouse-dev/topics/beer-events",
		"  beer-events  ":                      "projects/brewhouse-dev/topics/beer-events",
		"projects/other/topics/beer-events":    "projects/other/topics/beer-events",
		"":                                     "",
	}
	for input, want := range cases {
		if got := c.topicResourceName(input); got != want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", input, got, want)
		}
	}

	if got := (&Client{}).topicResourceName("beer-events"); got != "" {
		t.Fatalf("expected empty name without project, got %q", got)
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected default credentials, got %d options", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`, CredentialsFile: "/tmp/sa.json"}); len(opts) != 1 {
		t.Fatalf("expected a single credentials option, got %d", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{CredentialsFile: "/tmp/sa.json"}); len(opts) != 1 {
		t.Fatalf("expected file credentials option, got %d", len(opts))
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{EventsTopic: "x"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil); err != errNoTopic {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("x") != nil {
		t.Fatal("expected nil publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error on nil client")
	}
}
