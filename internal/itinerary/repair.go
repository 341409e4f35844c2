package itinerary

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports that a candidate could not be turned into JSON even after repair.
type ParseError struct {
	Candidate string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("itinerary: unrecoverable json: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RepairRule is one textual fixup in the repair pipeline.
type RepairRule struct {
	Name  string
	Apply func(string) string
}

var (
	reStringSep = regexp.MustCompile(`\s*"\s*:\s*"`)
	reObjectSep = regexp.MustCompile(`\s*"\s*:\s*\{`)
	reArraySep  = regexp.MustCompile(`\s*"\s*:\s*\[`)
	reNumberSep = regexp.MustCompile(`\s*"\s*:\s*([0-9])`)
)

// RepairRules run in this order. They target failure modes seen in model output,
// not JSON grammar in general.
var RepairRules = []RepairRule{
	{Name: "unescape-quotes", Apply: func(s string) string { return strings.ReplaceAll(s, `\"`, `"`) }},
	{Name: "unescape-newlines", Apply: func(s string) string { return strings.ReplaceAll(s, `\n`, " ") }},
	{Name: "unescape-tabs", Apply: func(s string) string { return strings.ReplaceAll(s, `\t`, " ") }},
	{Name: "tighten-string-sep", Apply: func(s string) string { return reStringSep.ReplaceAllString(s, `":"`) }},
	{Name: "tighten-object-sep", Apply: func(s string) string { return reObjectSep.ReplaceAllString(s, `":{`) }},
	{Name: "tighten-array-sep", Apply: func(s string) string { return reArraySep.ReplaceAllString(s, `":[`) }},
	{Name: "tighten-number-sep", Apply: func(s string) string { return reNumberSep.ReplaceAllString(s, `":$1`) }},
	{Name: "open-brace", Apply: func(s string) string {
		if !strings.HasPrefix(s, "{") {
			return "{" + s
		}
		return s
	}},
	{Name: "close-brace", Apply: func(s string) string {
		if !strings.HasSuffix(s, "}") {
			return s + "}"
		}
		return s
	}},
}

// truncateAfterBalancedBrace keeps the first complete top-level value and drops
// whatever prose the model wrote after it.
func truncateAfterBalancedBrace(s string) string {
	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	return strings.TrimSpace(s[:dec.InputOffset()])
}

// Repair applies RepairRules to candidate and returns valid JSON text. When the
// text still does not parse, it retries once with trailing prose removed; after
// that it returns "{}" with a *ParseError. Candidates that are already valid
// JSON are returned untouched.
func Repair(candidate string) (string, error) {
	fixed := strings.TrimSpace(candidate)
	if fixed != "" && json.Valid([]byte(fixed)) {
		return fixed, nil
	}
	for _, rule := range RepairRules {
		fixed = rule.Apply(fixed)
	}
	if json.Valid([]byte(fixed)) {
		return fixed, nil
	}

	truncated := truncateAfterBalancedBrace(fixed)
	if json.Valid([]byte(truncated)) {
		return truncated, nil
	}

	var probe any
	err := json.Unmarshal([]byte(fixed), &probe)
	return "{}", &ParseError{Candidate: fixed, Err: err}
}

// Decode runs Repair over an extracted candidate and unmarshals the result.
// It always returns a usable value: an empty object when nothing could be
// recovered, alongside the *ParseError.
func Decode(candidate string) (any, error) {
	text, repairErr := Repair(candidate)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return map[string]any{}, &ParseError{Candidate: text, Err: err}
	}
	return v, repairErr
}
