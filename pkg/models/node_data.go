package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NodeData is the type-specific configuration of a node. Each node type maps
// to exactly one variant, see DecodeNodeData.
type NodeData interface {
	isNodeData()
}

// TriggerData configures trigger nodes. Triggers carry no required settings.
// A cron expression makes the scheduler start the workflow periodically.
// Any other keys are kept in Extra.
type TriggerData struct {
	CronExpression string         `json:"cronExpression,omitempty"`
	Timezone       string         `json:"timezone,omitempty"`
	Extra          map[string]any `json:"-"`
}

// HTTPRequestData configures an HTTP_REQUEST node.
type HTTPRequestData struct {
	VariableName string `json:"variableName"      validate:"required"`
	Endpoint     string `json:"endpoint"          validate:"required"`
	Method       string `json:"method,omitempty"  validate:"omitempty,oneof=GET POST PUT DELETE PATCH"`
	Body         string `json:"body,omitempty"`
}

// AIData configures the language model nodes (GEMINI, OPENAI, ANTHROPIC, GROK, DEEPSEEK).
type AIData struct {
	VariableName string `json:"variableName"           validate:"required"`
	Model        string `json:"model"                  validate:"required"`
	CredentialID string `json:"credentialId"           validate:"required"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	UserPrompt   string `json:"userPrompt"`
}

// DiscordData configures a DISCORD node.
type DiscordData struct {
	VariableName string `json:"variableName"       validate:"required"`
	WebhookURL   string `json:"webhookUrl"         validate:"required,url"`
	Content      string `json:"content"`
	Username     string `json:"username,omitempty"`
}

// SlackData configures a SLACK node.
type SlackData struct {
	VariableName string `json:"variableName" validate:"required"`
	WebhookURL   string `json:"webhookUrl"   validate:"required,url"`
	Content      string `json:"content"`
}

// UnknownData holds the raw payload of a node whose type is not recognised.
// Such nodes load fine and fail when the run reaches them.
type UnknownData struct {
	Type NodeType
	Raw  map[string]any
}

func (TriggerData) isNodeData()     {}
func (HTTPRequestData) isNodeData() {}
func (AIData) isNodeData()          {}
func (DiscordData) isNodeData()     {}
func (SlackData) isNodeData()       {}
func (UnknownData) isNodeData()     {}

// MarshalJSON keeps the original payload for unknown node types.
func (d UnknownData) MarshalJSON() ([]byte, error) {
	if d.Raw == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(d.Raw)
}

// MarshalJSON writes the free-form trigger settings next to the known ones.
func (d TriggerData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+2)
	for key, value := range d.Extra {
		out[key] = value
	}

	if d.CronExpression != "" {
		out["cronExpression"] = d.CronExpression
	}

	if d.Timezone != "" {
		out["timezone"] = d.Timezone
	}

	return json.Marshal(out)
}

func decodeTriggerData(nodeType NodeType, raw []byte) (NodeData, error) {
	var extra map[string]any
	if err := json.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", nodeType, err)
	}

	data := TriggerData{}

	if cronExpr, ok := extra["cronExpression"].(string); ok {
		data.CronExpression = cronExpr
	}

	if timezone, ok := extra["timezone"].(string); ok {
		data.Timezone = timezone
	}

	delete(extra, "cronExpression")
	delete(extra, "timezone")

	if len(extra) > 0 {
		data.Extra = extra
	}

	return data, nil
}

// DecodeNodeData decodes a raw JSON payload into the variant for nodeType.
func DecodeNodeData(nodeType NodeType, raw []byte) (NodeData, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	switch nodeType {
	case NodeTypeInitial, NodeTypeManualTrigger, NodeTypeGoogleFormTrigger, NodeTypeStripeTrigger:
		return decodeTriggerData(nodeType, raw)
	case NodeTypeHTTPRequest:
		return decodeInto[HTTPRequestData](nodeType, raw)
	case NodeTypeGemini, NodeTypeOpenAI, NodeTypeAnthropic, NodeTypeGrok, NodeTypeDeepSeek:
		return decodeInto[AIData](nodeType, raw)
	case NodeTypeDiscord:
		return decodeInto[DiscordData](nodeType, raw)
	case NodeTypeSlack:
		return decodeInto[SlackData](nodeType, raw)
	default:
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s data: %w", nodeType, err)
		}

		return UnknownData{Type: nodeType, Raw: payload}, nil
	}
}

// DecodeNodeDataMap is DecodeNodeData for an already parsed payload.
func DecodeNodeDataMap(nodeType NodeType, payload map[string]any) (NodeData, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", nodeType, err)
	}

	return DecodeNodeData(nodeType, raw)
}

func decodeInto[T NodeData](nodeType NodeType, raw []byte) (NodeData, error) {
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid %s data: %w", nodeType, err)
	}

	return data, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// ValidateNodeData checks the required settings of a node payload and returns
// a message naming every offending field.
func ValidateNodeData(data NodeData) error {
	if data == nil {
		return errors.New("node has no data")
	}

	switch data.(type) {
	case TriggerData, UnknownData:
		return nil
	}

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))

	for _, fieldErr := range fieldErrors {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fieldErr.Field()+" is required")
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", fieldErr.Field(), fieldErr.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is not a valid %s", fieldErr.Field(), fieldErr.Tag()))
		}
	}

	return errors.New(strings.Join(messages, "; "))
}
