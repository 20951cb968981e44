// Package overlay derives the bridge's four-field display record from
// producer traffic and paces its publication.
package overlay

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/overlaycast/overlaycast/internal/mcp"
	"github.com/overlaycast/overlaycast/internal/textutil"
)

// Length caps for the overlay fields. Longer values are ellipsized for
// display; the underlying event still counts as delivered.
const (
	maxGoal      = 140
	maxAction    = 140
	maxRationale = 160
	maxResult    = 100
)

// Update is a partial overwrite of the overlay record. Empty fields leave
// the record untouched.
type Update struct {
	Goal      string
	Action    string
	Rationale string
	Result    string
}

// actionVerbs mark a method as a producer action when it starts with one of
// them at a word boundary and no tool rule matched first.
var actionVerbs = []string{
	"run", "exec", "do", "move", "navigate", "search", "open", "take",
	"screenshot", "teleport", "spawn", "destroy", "play", "pause", "stop",
	"save", "load",
}

// rationaleKeys are the parameter names carrying the producer's reasoning.
var rationaleKeys = []string{"rationale", "reason", "why", "explanation"}

// goalKeys are the parameter names a goal-setting method may carry its text
// in, in order of preference.
var goalKeys = []string{"goal", "text", "message", "plan"}

// MapMessage classifies one producer message into an overlay update. The
// first matching rule wins: responses map through their result or error,
// notifications and requests through their method name and params. ok is
// false for messages that say nothing about the overlay.
func MapMessage(msg mcp.Message) (Update, bool) {
	switch {
	case len(msg.Result) > 0:
		return Update{Result: resultText(msg.Result)}, true
	case msg.Error != nil:
		return Update{Result: errorText(msg.Error)}, true
	case msg.Method != "":
		return mapMethod(msg.Method, msg.Params)
	}
	return Update{}, false
}

// resultText condenses a JSON-RPC result into the overlay result field.
// Strings are shown as-is; objects are probed for a status or message
// string; anything else reads as a bare acknowledgement.
func resultText(raw json.RawMessage) string {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "OK"
	}
	switch v := value.(type) {
	case string:
		return textutil.Ellipsize(v, maxResult)
	case map[string]any:
		if s, ok := v["status"].(string); ok {
			return textutil.Ellipsize(s, maxResult)
		}
		if s, ok := v["message"].(string); ok {
			return textutil.Ellipsize(s, maxResult)
		}
	}
	return "OK"
}

func errorText(e *mcp.RPCError) string {
	parts := []string{"Error"}
	if e.Code != 0 {
		parts = append(parts, strconv.Itoa(e.Code))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	text := strings.TrimRight(strings.Join(parts, " "), " \t")
	return textutil.Ellipsize(text, maxResult)
}

func mapMethod(method string, rawParams json.RawMessage) (Update, bool) {
	params := parseParams(rawParams)
	lower := strings.ToLower(method)

	if isGoalMethod(lower) {
		if text, ok := params.firstString(goalKeys...); ok {
			return Update{
				Goal:   textutil.Ellipsize(text, maxGoal),
				Result: "Goal updated",
			}, true
		}
	}
	if strings.Contains(lower, "plan") {
		if text, ok := params.str("text"); ok {
			return Update{
				Goal:      textutil.Ellipsize(text, maxGoal),
				Rationale: "Planning",
			}, true
		}
	}

	var update Update
	matched := false
	if why, ok := params.firstString(rationaleKeys...); ok {
		update.Rationale = textutil.Ellipsize(why, maxRationale)
		matched = true
	}

	switch {
	case isToolMethod(lower):
		update.Action = textutil.Ellipsize(method+params.summary(), maxAction)
		update.Result = "Initiated"
		matched = true
	case verbPrefixed(lower):
		update.Action = textutil.Ellipsize(method+params.summary(), maxAction)
		update.Result = "Initiated"
		matched = true
	case strings.Contains(lower, "console"):
		if cmd, ok := params.str("command"); ok {
			update.Action = textutil.Ellipsize("console "+cmd, maxAction)
			matched = true
		}
	}

	return update, matched
}

func isGoalMethod(lower string) bool {
	return strings.Contains(lower, "set_goal") ||
		strings.Contains(lower, "goal.set") ||
		strings.HasSuffix(lower, ".goal")
}

func isToolMethod(lower string) bool {
	return strings.HasPrefix(lower, "editor_") ||
		strings.HasPrefix(lower, "tool") ||
		strings.Contains(lower, "console") ||
		strings.Contains(lower, "create_") ||
		strings.Contains(lower, "update_") ||
		strings.Contains(lower, "delete_")
}

// verbPrefixed reports whether lower starts with an action verb at a word
// boundary: the verb is the whole method or is followed by a non-alphanumeric
// byte, so move_to matches "move" while download does not match "do".
func verbPrefixed(lower string) bool {
	for _, verb := range actionVerbs {
		if !strings.HasPrefix(lower, verb) {
			continue
		}
		if len(lower) == len(verb) || !isAlnum(lower[len(verb)]) {
			return true
		}
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// params is the decoded view of a message's params object: string values by
// key, plus every string/number member in insertion order for summaries.
type params struct {
	strings map[string]string
	pairs   []pair
}

type pair struct {
	key   string
	value string
}

// parseParams walks the raw params object with a token decoder so that key
// order survives; summaries follow insertion order and a Go map would
// shuffle it. Anything that is not a JSON object decodes to empty params.
func parseParams(raw json.RawMessage) params {
	p := params{strings: make(map[string]string)}
	if len(raw) == 0 {
		return p
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return p
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return p
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return p
		}
		key, ok := keyTok.(string)
		if !ok {
			return p
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return p
		}
		switch v := value.(type) {
		case string:
			p.strings[key] = v
			p.pairs = append(p.pairs, pair{key: key, value: v})
		case json.Number:
			p.pairs = append(p.pairs, pair{key: key, value: v.String()})
		}
	}
	return p
}

func (p params) str(key string) (string, bool) {
	v, ok := p.strings[key]
	return v, ok
}

// firstString returns the value of the first of keys present as a string.
func (p params) firstString(keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := p.strings[key]; ok {
			return v, true
		}
	}
	return "", false
}

// summary renders the short parameter mention appended to an action: a
// quoted command, a class/name pair, an asset, or up to two key=value pairs
// in insertion order. Rationale-family keys never appear in pairs; they are
// surfaced through the rationale field instead.
func (p params) summary() string {
	if cmd, ok := p.strings["command"]; ok {
		return " \"" + cmd + "\""
	}
	name, hasName := p.strings["name"]
	class, hasClass := p.strings["class"]
	if hasName && hasClass {
		return " " + class + " " + name
	}
	if asset, ok := p.strings["asset"]; ok {
		return " " + asset
	}
	kv := make([]string, 0, 2)
	for _, pr := range p.pairs {
		if slices.Contains(rationaleKeys, pr.key) {
			continue
		}
		kv = append(kv, pr.key+"="+pr.value)
		if len(kv) == 2 {
			break
		}
	}
	if len(kv) == 0 {
		return ""
	}
	return " " + strings.Join(kv, " ")
}
