// In file: internal/tools/types.go

// Package tools defines the data structures for function calling (tool use)
// and the closed set of lookup tools the assistant can call: course-material
// search, weather, calendar and public holidays. The wire types are
// provider-agnostic and get translated into the specific format required by
// each completion API (OpenAI-compatible, Gemini).
package tools

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Tool defines the schema for a function that can be described to an LLM.
// This is the information you send *to* the model to make it aware of a tool's existence.
type Tool struct {
	// Type specifies the type of tool, which is almost always "function".
	Type string `json:"type"`
	// Function holds the detailed definition of the function.
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
type Function struct {
	// Name is the name of the function to be called (e.g., "get_weather").
	Name string `json:"name"`
	// Description is what the model reads to decide when to use the tool.
	Description string `json:"description"`
	// Parameters defines the arguments the function accepts, structured as a JSON Schema.
	Parameters JSONSchema `json:"parameters"`
}

// JSONSchema is a typed subset of JSON Schema, enough to describe tool
// parameters to the model and to validate the arguments it sends back.
type JSONSchema struct {
	// Type is the data type of the node ("object", "string", "integer", ...).
	Type string `json:"type"`
	// Description explains what a specific parameter is for.
	Description string `json:"description,omitempty"`
	// Properties describes the members of an object node.
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	// Required lists the mandatory members of an object node.
	Required []string `json:"required,omitempty"`
	// Pattern constrains string values.
	Pattern string `json:"pattern,omitempty"`
	// Enum restricts a node to a fixed set of values.
	Enum []string `json:"enum,omitempty"`
}

// ToolCall represents a request *from* the LLM to execute a specific tool with given arguments.
type ToolCall struct {
	// ID correlates the tool's result back to this request. Unique within a turn.
	ID string `json:"id"`
	// Type indicates the type of tool being called, which is almost always "function".
	Type string `json:"type"`
	// Function contains the name and arguments for the function the LLM wants to execute.
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction holds the name and arguments of a function call requested by the LLM.
type ToolCallFunction struct {
	// Name is the name of the function the LLM has decided to call.
	Name string `json:"name"`
	// Arguments is a JSON object encoded as a string, as the OpenAI wire format does.
	Arguments string `json:"arguments"`
}

// NewFunctionTool is a helper function that simplifies the creation of a new Tool.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// NewToolCall builds a ToolCall for the named function. Used when the system
// itself issues a call (chaining) rather than the model.
func NewToolCall(id, name, arguments string) *ToolCall {
	return &ToolCall{
		ID:   id,
		Type: ToolTypeFunction,
		Function: ToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}
