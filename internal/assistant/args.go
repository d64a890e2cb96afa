package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/KotFed0t/invest_assistant/internal/model"
)

var errNoPositions = errors.New("no positions found in portfolio")

func stringArg(args map[string]any, name, def string) string {
	v, ok := args[name]
	if !ok || v == nil {
		return def
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return def
		}
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// floatArg accepts both numbers and numeric strings, models send either.
func floatArg(args map[string]any, name string, def float64) (float64, error) {
	raw := stringArg(args, name, "")
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %s must be a number, got %q", name, raw)
	}
	return f, nil
}

// parsePositions reads a JSON positions array or the short "AAPL: 10, 5 MSFT" form.
func parsePositions(raw string) ([]model.Position, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errNoPositions
	}

	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		return parseJSONPositions(raw)
	}

	positions := make([]model.Position, 0)
	entries := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	for _, entry := range entries {
		fields := strings.FieldsFunc(entry, func(r rune) bool { return r == ':' || r == '=' || unicode.IsSpace(r) })
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("cannot read position %q, expected symbol and quantity", strings.TrimSpace(entry))
		}

		symbol, qtyRaw := fields[0], fields[1]
		if _, err := strconv.ParseFloat(symbol, 64); err == nil {
			symbol, qtyRaw = qtyRaw, symbol
		}
		qty, err := strconv.ParseFloat(qtyRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot read quantity of %q", strings.TrimSpace(entry))
		}
		positions = append(positions, model.Position{Symbol: strings.ToUpper(symbol), Quantity: qty})
	}

	if len(positions) == 0 {
		return nil, errNoPositions
	}
	return positions, nil
}

func parseJSONPositions(raw string) ([]model.Position, error) {
	positions := make([]model.Position, 0)

	if strings.HasPrefix(raw, "{") {
		wrapped := struct {
			Positions []model.Position `json:"positions"`
		}{}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("invalid portfolio JSON: %w", err)
		}
		positions = wrapped.Positions
	} else if err := json.Unmarshal([]byte(raw), &positions); err != nil {
		return nil, fmt.Errorf("invalid portfolio JSON: %w", err)
	}

	for i := range positions {
		positions[i].Symbol = strings.ToUpper(strings.TrimSpace(positions[i].Symbol))
	}
	if len(positions) == 0 {
		return nil, errNoPositions
	}
	return positions, nil
}

// parseTargets reads an ordered {"SYM": weight} object. Weights given in percent are scaled to fractions.
func parseTargets(raw string) (model.TargetAllocation, error) {
	targets := model.TargetAllocation{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &targets); err != nil {
		return nil, fmt.Errorf("invalid targets JSON: %w", err)
	}

	percent := len(targets) > 0
	for _, t := range targets {
		if t.Weight <= 1 || t.Weight > 100 {
			percent = false
			break
		}
	}

	for i := range targets {
		targets[i].Symbol = strings.ToUpper(strings.TrimSpace(targets[i].Symbol))
		if percent {
			targets[i].Weight /= 100
		}
	}
	return targets, nil
}

func splitSymbols(raw string) []string {
	res := make([]string, 0)
	for _, s := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || unicode.IsSpace(r) }) {
		res = append(res, strings.ToUpper(s))
	}
	return res
}
