package llm

import (
	"fmt"
	"strings"
)

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object or array in a model reply. Text without JSON delimiters is
// returned trimmed.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// schemaInstruction renders fields as an instruction for providers that take
// no structured schema parameter.
func schemaInstruction(fields []Field) string {
	var b strings.Builder
	b.WriteString("Respond with ONLY a single JSON object. Do not use markdown or code fences.")
	if len(fields) == 0 {
		return b.String()
	}

	b.WriteString(" The object must have exactly these keys:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %q (%s)", f.Name, fieldType(f))
		if f.Description != "" {
			fmt.Fprintf(&b, ": %s", f.Description)
		}
		if len(f.Enum) > 0 {
			fmt.Fprintf(&b, ". One of: %s", strings.Join(f.Enum, ", "))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func fieldType(f Field) string {
	if f.Type == "" {
		return "string"
	}
	return f.Type
}

// systemPrompt joins the caller's system text with the JSON instruction when
// a JSON reply is expected.
func systemPrompt(req Request) string {
	if req.Format != FormatJSON {
		return req.System
	}
	instruction := schemaInstruction(req.Schema)
	if req.System == "" {
		return instruction
	}
	return req.System + "\n\n" + instruction
}
