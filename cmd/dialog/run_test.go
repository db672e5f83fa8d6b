package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xraph/dialog"
	"github.com/xraph/dialog/api"
	"github.com/xraph/dialog/client"
	"github.com/xraph/dialog/engine"
	"github.com/xraph/dialog/prompt"
)

func newDemoHub(t *testing.T) *client.Client {
	t.Helper()
	cfg := dialog.DefaultConfig()
	cfg.Namespace = "demo"
	eng, err := engine.Build(cfg,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithCatalog(demoCatalog()),
	)
	if err != nil {
		t.Fatalf("engine.Build: %v", err)
	}
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ts := httptest.NewServer(api.New(eng).Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = eng.Stop(context.Background())
	})
	return client.New(ts.URL)
}

func TestDrive_CreateUser(t *testing.T) {
	c := newDemoHub(t)
	ctx := testContext(t)

	st, err := c.StartWorkflow(ctx, "demo.create-user", nil)
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}

	in := strings.NewReader(strings.Join([]string{
		`not json`,
		`{"name":"Ada","email":"ada@example.com"}`,
		`viewer`,
		``,
	}, "\n") + "\n")
	var out bytes.Buffer
	if err := drive(ctx, c, st, in, &out); err != nil {
		t.Fatalf("drive: %v\n%s", err, out.String())
	}

	got := out.String()
	for _, want := range []string{
		"Form, answer with a JSON object",
		"! expected JSON",
		"Role [viewer|editor|admin]",
		"User Ada created with role viewer.",
		"✓ Name: Ada",
		"✔",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDrive_FailureIsError(t *testing.T) {
	c := newDemoHub(t)
	ctx := testContext(t)

	st, err := c.StartWorkflow(ctx, "demo.create-user", nil)
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}
	in := strings.NewReader(`{"name":"Ada","email":"ada@example.com"}` + "\nadmin\nfalse\n")
	err = drive(ctx, c, st, in, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "admin grant declined") {
		t.Fatalf("expected the declined failure, got %v", err)
	}
}

func TestDrive_EndOfInput(t *testing.T) {
	c := newDemoHub(t)
	ctx := testContext(t)

	st, err := c.StartWorkflow(ctx, "demo.rate-service", nil)
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}
	if err := drive(ctx, c, st, strings.NewReader(""), io.Discard); err == nil {
		t.Fatal("expected an error when input runs out")
	}
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name string
		p    prompt.Prompt
		line string
		want string
	}{
		{"text", &prompt.Field{Kind: prompt.KindText}, "Ada", "Ada"},
		{"multi", &prompt.Field{Kind: prompt.KindMultiSelect}, "speed, quality,", "[speed quality]"},
		{"message", prompt.NewMessage("hi"), "anything", "<nil>"},
		{"form", &prompt.Form{}, `{"a":1}`, "map[a:1]"},
		{"stack", &prompt.Stack{}, `["x",true]`, "[x true]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := answer(tt.p, tt.line)
			if err != nil {
				t.Fatalf("answer: %v", err)
			}
			if s := fmt.Sprint(got); s != tt.want {
				t.Errorf("answer = %s, want %s", s, tt.want)
			}
		})
	}

	if _, err := answer(&prompt.Form{}, "{"); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
