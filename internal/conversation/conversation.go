// Package conversation assembles the ordered turn list sent to the oracle for a
// chat message: system framing, optional analysis grounding, replayed history and
// the new user message.
package conversation

import (
	"encoding/json"
	"strings"
)

// Role tags the speaker of a turn.
type Role string

// Roles. RoleLocal marks client-side notices (for example error messages shown in
// the chat window) that were never produced by the oracle.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleLocal     Role = "local"
)

// Fixed turn texts.
const (
	SystemFraming = "你是一个友好的AI财务教练，专门用简单易懂的语言为非技术用户提供个人财务指导和解释。" +
		"请避免复杂的财务术语，可以使用简单的 Markdown（如列表和加粗）让回答结构更清晰。"
	AnalysisPreamble = "这是我的财务分析结果：\n"
	AnalysisAck      = "好的，我已经了解了你的财务分析结果。请问有什么想进一步了解的吗？"
)

// ParseRole maps a stored sender value onto one of user, assistant or local.
// "system" is the sender the chat window uses for its own notices. Anything
// unrecognised is treated as the assistant.
func ParseRole(sender string) Role {
	switch strings.ToLower(strings.TrimSpace(sender)) {
	case "user", "human":
		return RoleUser
	case "system", "local", "error":
		return RoleLocal
	default:
		return RoleAssistant
	}
}

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UnmarshalJSON accepts the client's history shape, where the speaker is given
// as "sender" (or "speaker"/"role") and the body as "text" (or "message").
func (t *Turn) UnmarshalJSON(data []byte) error {
	var wire struct {
		Sender  string `json:"sender"`
		Speaker string `json:"speaker"`
		Role    string `json:"role"`
		Text    string `json:"text"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	sender := firstNonEmpty(wire.Sender, wire.Speaker, wire.Role)
	t.Role = ParseRole(sender)
	t.Text = firstNonEmpty(wire.Text, wire.Message)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// History is the client-held, append-only transcript of a chat session.
type History []Turn

// Builder builds oracle contexts.
type Builder struct {
	// DropLocalTurns skips RoleLocal history turns instead of replaying them as
	// assistant turns.
	DropLocalTurns bool
}

// NewBuilder returns a Builder.
func NewBuilder(dropLocalTurns bool) *Builder {
	return &Builder{DropLocalTurns: dropLocalTurns}
}

// Build returns the ordered context for message. The system framing turn is
// always first and message is always last. A non-empty analysis is injected as
// a user turn followed by an assistant acknowledgement. History turns from the
// user stay user turns; every other sender becomes an assistant turn unless
// DropLocalTurns removes local notices.
func (b *Builder) Build(message string, history History, analysis string) []Turn {
	turns := make([]Turn, 0, len(history)+4)
	turns = append(turns, Turn{Role: RoleSystem, Text: SystemFraming})

	if strings.TrimSpace(analysis) != "" {
		turns = append(turns,
			Turn{Role: RoleUser, Text: AnalysisPreamble + analysis},
			Turn{Role: RoleAssistant, Text: AnalysisAck},
		)
	}

	for _, turn := range history {
		switch turn.Role {
		case RoleUser:
			turns = append(turns, Turn{Role: RoleUser, Text: turn.Text})
		case RoleLocal:
			if b.DropLocalTurns {
				continue
			}
			turns = append(turns, Turn{Role: RoleAssistant, Text: turn.Text})
		default:
			turns = append(turns, Turn{Role: RoleAssistant, Text: turn.Text})
		}
	}

	return append(turns, Turn{Role: RoleUser, Text: message})
}

// Build is Builder.Build with local turns folded into the assistant role.
func Build(message string, history History, analysis string) []Turn {
	return (&Builder{}).Build(message, history, analysis)
}

// SplitSystem separates leading system turns from the dialogue. Backends that
// take a separate system instruction use this.
func SplitSystem(turns []Turn) (string, []Turn) {
	var system []string
	i := 0
	for ; i < len(turns) && turns[i].Role == RoleSystem; i++ {
		system = append(system, turns[i].Text)
	}
	return strings.Join(system, "\n\n"), turns[i:]
}

// MergeAdjacent joins consecutive turns of the same role with a blank line, for
// backends that require strictly alternating speakers.
func MergeAdjacent(turns []Turn) []Turn {
	merged := make([]Turn, 0, len(turns))
	for _, turn := range turns {
		if n := len(merged); n > 0 && merged[n-1].Role == turn.Role {
			merged[n-1].Text += "\n\n" + turn.Text
			continue
		}
		merged = append(merged, turn)
	}
	return merged
}

// UserFirst drops dialogue turns before the first user turn. Gemini and
// Anthropic both reject a conversation that opens with the model speaking.
func UserFirst(turns []Turn) []Turn {
	for i, turn := range turns {
		if turn.Role == RoleUser {
			return turns[i:]
		}
	}
	return nil
}
