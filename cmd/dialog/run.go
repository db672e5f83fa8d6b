package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xraph/dialog/client"
	"github.com/xraph/dialog/prompt"
	"github.com/xraph/dialog/workflow"
)

var (
	apiURL    string
	runInput  string
	resumeID  string
	listTypes bool
)

// runCmd drives one workflow from the terminal through the hub API.
var runCmd = &cobra.Command{
	Use:   "run [TYPE_ID]",
	Short: "Run a workflow interactively against a hub",
	Long: `Run starts a workflow on the hub and answers its prompts from standard
input. Fields take a single line; forms and stacks take a JSON value;
messages continue on Enter.

Examples:
  dialog run --list
  dialog run user-service.create-user
  dialog run user-service.create-user --input '{"team":"core"}'
  dialog run --resume user-service.wf_01h2xcejqtf2nbrexx3vqjhp41`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		c := client.New(apiURL, client.WithLogger(logger))
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if listTypes {
			types, err := c.ListWorkflowTypes(ctx)
			if err != nil {
				return err
			}
			for _, t := range types {
				fmt.Fprintf(out, "%-40s %s\n", t.ID, t.Title)
			}
			return nil
		}

		var st *workflow.State
		switch {
		case resumeID != "":
			st, err = c.PickUpWorkflow(ctx, resumeID)
		case len(args) == 1:
			var in any
			if runInput != "" {
				if err := json.Unmarshal([]byte(runInput), &in); err != nil {
					return fmt.Errorf("invalid --input: %w", err)
				}
			}
			st, err = c.StartWorkflow(ctx, args[0], in)
		default:
			return errors.New("a workflow type id or --resume is required")
		}
		if err != nil {
			return err
		}
		return drive(ctx, c, st, cmd.InOrStdin(), out)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringVar(&apiURL, "api-url", "http://localhost:8080", "Hub HTTP API base URL")
	f.StringVar(&runInput, "input", "", "JSON input passed to the workflow")
	f.StringVar(&resumeID, "resume", "", "Resume an existing workflow by id")
	f.BoolVar(&listTypes, "list", false, "List available workflow types and exit")
}

// drive renders each state and answers it until the workflow ends.
func drive(ctx context.Context, c *client.Client, st *workflow.State, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	fmt.Fprintf(out, "workflow %s\n", st.WorkflowID)

	for {
		for _, b := range st.Breadcrumbs {
			fmt.Fprintf(out, "  ✓ %s: %s\n", b.Key, b.Value)
		}
		if st.Error != "" {
			fmt.Fprintf(out, "! %s\n", st.Error)
		}
		fmt.Fprint(out, prompt.Switch[string](st.Prompt, renderer{}))

		if t, ok := st.Prompt.(*prompt.Terminal); ok {
			if t.Status == prompt.StatusError {
				return fmt.Errorf("workflow failed: %s", t.Message)
			}
			return nil
		}

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return fmt.Errorf("read answer: %w", err)
		}
		resp, err := answer(st.Prompt, strings.TrimRight(line, "\r\n"))
		if err != nil {
			fmt.Fprintf(out, "! %s\n", err)
			continue
		}

		next, err := c.ContinueWorkflow(ctx, st.WorkflowID, resp)
		if err != nil {
			return err
		}
		st = next
	}
}

// renderer prints a prompt as terminal text.
type renderer struct{}

func (renderer) VisitField(f *prompt.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", f.Label)
	if f.Description != "" {
		fmt.Fprintf(&b, " (%s)", f.Description)
	}
	switch f.Kind {
	case prompt.KindBoolean:
		b.WriteString(" [true/false]")
	case prompt.KindSelect, prompt.KindMultiSelect:
		values := make([]string, len(f.Options))
		for i, o := range f.Options {
			values[i] = o.Value
		}
		sep := "|"
		if f.Kind == prompt.KindMultiSelect {
			sep = ","
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(values, sep))
	case prompt.KindTable:
		for _, row := range f.Rows {
			fmt.Fprintf(&b, "\n    %s", row.Key)
		}
	}
	if f.Placeholder != "" {
		fmt.Fprintf(&b, " e.g. %s", f.Placeholder)
	}
	b.WriteString("\n> ")
	return b.String()
}

func (r renderer) VisitForm(f *prompt.Form) string {
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	if f.Title != "" {
		b.WriteString(f.Title + "\n")
	}
	b.WriteString("Form, answer with a JSON object:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %q: %s", k, strings.TrimSuffix(prompt.Switch[string](f.Fields[k], r), "> "))
	}
	b.WriteString("> ")
	return b.String()
}

func (r renderer) VisitStack(s *prompt.Stack) string {
	var b strings.Builder
	b.WriteString("Stack, answer with a JSON array:\n")
	for i, m := range s.Items {
		fmt.Fprintf(&b, "  [%d] %s", i, strings.TrimSuffix(prompt.Switch[string](m, r), "> "))
	}
	b.WriteString("> ")
	return b.String()
}

func (renderer) VisitMessage(m *prompt.Message) string {
	return m.Text + "\n(press Enter) "
}

func (renderer) VisitTerminal(t *prompt.Terminal) string {
	if t.Status == prompt.StatusSuccess {
		return "✔ " + t.Message + "\n"
	}
	return "✘ " + t.Message + "\n"
}

// answer converts a typed line into the response shape p expects.
func answer(p prompt.Prompt, line string) (prompt.Response, error) {
	switch p := p.(type) {
	case *prompt.Message:
		return nil, nil
	case *prompt.Form, *prompt.Stack:
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("expected JSON: %w", err)
		}
		return v, nil
	case *prompt.Field:
		if p.Kind == prompt.KindMultiSelect {
			parts := strings.Split(line, ",")
			values := make([]any, 0, len(parts))
			for _, s := range parts {
				if s = strings.TrimSpace(s); s != "" {
					values = append(values, s)
				}
			}
			return values, nil
		}
		return line, nil
	default:
		return nil, fmt.Errorf("cannot answer a %T", p)
	}
}
