// Package chat implements the chat command: follow-up questions about an analysis.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/spending-coach/cmd/root"
	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/container"
	"fjacquet/spending-coach/internal/conversation"
	"fjacquet/spending-coach/internal/parsererror"
	"fjacquet/spending-coach/internal/ui"

	"github.com/spf13/cobra"
)

// Options holds the chat command flags.
type Options struct {
	Message      string
	AnalysisFile string
}

var opts Options

// Cmd represents the chat command
var Cmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask follow-up questions about an analysis",
	Long: `Chat sends questions to the configured model. With --analysis the text of an
earlier analysis is replayed as context. With --message a single question is
answered; otherwise an interactive session reads one question per line until
EOF or /exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Ask a single question and exit")
	Cmd.Flags().StringVarP(&opts.AnalysisFile, "analysis", "a", "", "File holding a previous analysis to discuss")
}

// Run answers one message, or loops over lines of in when no message is given.
// The session history is kept locally and resent on every turn.
func Run(ctx context.Context, c *container.Container, o Options, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	analysis, err := loadAnalysis(o.AnalysisFile)
	if err != nil {
		return err
	}

	session := &Session{coach: c.GetCoach(), analysis: analysis}

	if o.Message != "" {
		reply, err := session.Ask(ctx, o.Message)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, ui.RenderReply(reply))
		return err
	}

	scanner := bufio.NewScanner(in)
	_, _ = fmt.Fprint(out, ui.SubtleStyle.Render("Type a question, or /exit to quit.")+"\n> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/exit" || line == "/quit":
			return nil
		default:
			reply, err := session.Ask(ctx, line)
			if err != nil {
				_, _ = io.WriteString(out, ui.RenderError(err))
			} else {
				_, _ = io.WriteString(out, ui.RenderReply(reply))
			}
		}
		_, _ = io.WriteString(out, "> ")
	}
	return scanner.Err()
}

// Session is one local conversation. Failed turns are recorded as local
// messages so the next request replays them the way a browser client does.
type Session struct {
	coach    *coach.Service
	analysis string
	history  conversation.History
}

// Ask sends message with the accumulated history and records both sides.
// Messages rejected by validation leave the history untouched.
func (s *Session) Ask(ctx context.Context, message string) (string, error) {
	resp, err := s.coach.Chat(ctx, coach.ChatRequest{
		Message:        message,
		ChatHistory:    s.history,
		AnalysisResult: s.analysis,
	})
	if parsererror.IsValidation(err) {
		return "", err
	}

	s.history = append(s.history, conversation.Turn{Role: conversation.RoleUser, Text: message})
	if err != nil {
		s.history = append(s.history, conversation.Turn{Role: conversation.RoleLocal, Text: err.Error()})
		return "", err
	}
	s.history = append(s.history, conversation.Turn{Role: conversation.RoleAssistant, Text: resp.Reply})
	return resp.Reply, nil
}

// History returns the turns recorded so far.
func (s *Session) History() conversation.History {
	return s.history
}

func loadAnalysis(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the CLI user
	if err != nil {
		return "", fmt.Errorf("failed to read analysis: %w", err)
	}
	return string(data), nil
}
