// Package interfaces provides service interfaces for dependency injection.
package interfaces

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ToolResult is the outcome of a tool invocation. Exactly one of Fields or
// Err is meaningful: a fetch failure is carried as a descriptive message,
// never as a panic or raw provider error crossing the tool boundary.
type ToolResult struct {
	// Fields holds the normalized named fields returned by the provider.
	// Missing individual values are present with the NotAvailable marker,
	// never omitted, so callers can distinguish "zero" from "unknown".
	Fields map[string]interface{}

	// Err is a human-readable error message when the fetch failed
	Err string

	// Advisory carries a provider advisory note (e.g. rate-limit warning)
	// that is not a hard failure
	Advisory string

	// Cached indicates the result was served from cache without a fetch
	Cached bool
}

// NotAvailable is the explicit marker for a field the provider did not supply.
const NotAvailable = "Not available"

// IsError reports whether the invocation failed
func (r *ToolResult) IsError() bool {
	return r != nil && r.Err != ""
}

// Text renders the result as readable text for injection into an LLM prompt.
// Fields are emitted in sorted order so output is deterministic.
func (r *ToolResult) Text() string {
	if r == nil {
		return ""
	}
	if r.Err != "" {
		return "error: " + r.Err
	}

	var b strings.Builder
	if r.Advisory != "" {
		b.WriteString("note: " + r.Advisory + "\n")
	}

	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := r.Fields[k]
		if v == nil {
			v = NotAvailable
		}
		b.WriteString(fmt.Sprintf("%s: %v\n", k, v))
	}
	return b.String()
}

// Tool is a callable capability an agent can be equipped with. Each tool
// normalizes one external data source behind a cache.
type Tool interface {
	// Name returns the tool identifier (e.g. "company_info")
	Name() string

	// Description explains what the tool does, suitable for an LLM prompt
	Description() string

	// Invoke executes the tool with the given arguments. Implementations
	// never panic and never return a Go error for provider failures; those
	// are carried in ToolResult.Err. A non-nil error indicates invalid
	// arguments only.
	Invoke(ctx context.Context, args map[string]string) (*ToolResult, error)
}
