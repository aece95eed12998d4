package framework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/internal/llm"
)

var ErrChatFailed = errors.New("framework chat failed")

const editorSystemPrompt = `You maintain the analysis framework that controls how Annual Operating Plan (AOP) submissions are analysed.
The framework has three weighted dimensions (financialHealth, strategicAlignment, aiReadiness) whose integer weights must sum to 100,
a list of focus areas that can be enabled or disabled, a list of guiding principles, the list of output fields, and optional
guidance text per department.

When the user asks for a change:
- Explain briefly what you changed and why in "message".
- Return the COMPLETE updated framework in "framework", with every field present, not just the changed parts.
- If the request is unclear or needs no change, set "framework" to null and explain in "message".

Respond with a single JSON object of the form:
{"message": "<short explanation>", "framework": {"dimensions": {...}, "focusAreas": [...], "principles": [...], "outputStructure": [...], "departmentGuidelines": {...}} | null}`

var codeBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ChatReply is the editor's answer. UpdatedFramework is a proposal only;
// nothing is saved until the caller explicitly stores it.
type ChatReply struct {
	Message          string     `json:"message"`
	UpdatedFramework *Framework `json:"updatedFramework"`
}

type Editor struct {
	provider llm.Provider
	logger   *zap.Logger
}

func NewEditor(provider llm.Provider, logger *zap.Logger) *Editor {
	return &Editor{provider: provider, logger: logger}
}

// Propose asks the model to apply userMessage to current and returns its
// explanation plus, when it produced a valid document, the proposal.
func (e *Editor) Propose(ctx context.Context, userMessage string, current *Framework) (*ChatReply, error) {
	e.logger.Info("Handling framework chat request", zap.Int64("version", current.Version))

	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode framework: %w", err)
	}

	userContent := fmt.Sprintf("Current framework summary:\n%s\nCurrent framework JSON:\n%s\n\nRequested change:\n%s",
		Summary(current), currentJSON, strings.TrimSpace(userMessage))

	resp, err := e.provider.Analyze(ctx,
		[]string{editorSystemPrompt},
		[]string{userContent},
		llm.WithJSONMode(),
	)
	if err != nil {
		e.logger.Error("Framework chat request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrChatFailed, err)
	}

	reply := ParseChatReply(resp.Content, current)
	if reply.UpdatedFramework != nil {
		e.logger.Info("Framework update proposed", zap.String("summary", firstLine(reply.Message)))
	} else {
		e.logger.Info("Framework chat returned no update")
	}
	return reply, nil
}

// ParseChatReply turns the model's reply into a ChatReply. The structured
// {"message", "framework"} object is preferred; a bare framework object or a
// fenced JSON block inside free text are accepted as fallbacks. A proposal
// that fails validation is dropped and the reason appended to the message.
func ParseChatReply(content string, current *Framework) *ChatReply {
	content = strings.TrimSpace(content)

	message, proposal, ok := parseStructured(content)
	if !ok {
		message, proposal = parseFreeText(content)
	}

	if message == "" {
		if proposal != nil {
			message = "Proposed an updated framework."
		} else {
			message = "No framework changes were proposed."
		}
	}

	reply := &ChatReply{Message: message}
	if proposal == nil {
		return reply
	}

	if err := Validate(proposal); err != nil {
		reply.Message = fmt.Sprintf("%s\n\n(The proposed framework was discarded: %v)", message, err)
		return reply
	}

	// A proposal applies on top of the document it was made from.
	proposal.Version = current.Version
	proposal.UpdatedAt = current.UpdatedAt
	reply.UpdatedFramework = proposal
	return reply
}

func parseStructured(content string) (string, *Framework, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return "", nil, false
	}

	if _, ok := raw["dimensions"]; ok {
		var f Framework
		if err := json.Unmarshal([]byte(content), &f); err != nil {
			return "", nil, false
		}
		return "", &f, true
	}

	var message string
	if m, ok := raw["message"]; ok {
		_ = json.Unmarshal(m, &message)
	}

	fwRaw, ok := raw["framework"]
	if !ok || string(fwRaw) == "null" {
		return message, nil, message != ""
	}

	var f Framework
	if err := json.Unmarshal(fwRaw, &f); err != nil {
		return message, nil, true
	}
	return message, &f, true
}

func parseFreeText(content string) (string, *Framework) {
	match := codeBlockPattern.FindStringSubmatchIndex(content)
	if match == nil {
		return content, nil
	}

	block := content[match[2]:match[3]]
	message := strings.TrimSpace(content[:match[0]] + content[match[1]:])

	var f Framework
	if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &f); err != nil {
		return content, nil
	}
	// A code block holding the wrapper object rather than the document itself.
	if msg, inner, ok := parseStructured(strings.TrimSpace(block)); ok && inner != nil && len(f.Principles) == 0 {
		if message == "" {
			message = msg
		}
		return message, inner
	}
	return message, &f
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
