package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type TargetWeight struct {
	Symbol string
	Weight float64
}

// TargetAllocation is a JSON object of symbol -> weight that keeps the key order of the document.
// The order decides which trades survive the turnover budget.
type TargetAllocation []TargetWeight

func (t TargetAllocation) Symbols() []string {
	res := make([]string, 0, len(t))
	for _, tw := range t {
		res = append(res, tw.Symbol)
	}
	return res
}

func (t TargetAllocation) Sum() float64 {
	var sum float64
	for _, tw := range t {
		sum += tw.Weight
	}
	return sum
}

func (t TargetAllocation) Weight(symbol string) (float64, bool) {
	for _, tw := range t {
		if tw.Symbol == symbol {
			return tw.Weight, true
		}
	}
	return 0, false
}

func (t *TargetAllocation) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		*t = nil
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("targets must be a JSON object")
	}

	res := TargetAllocation{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		symbol, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in targets", tok)
		}

		var weight float64
		if err = dec.Decode(&weight); err != nil {
			return fmt.Errorf("weight for %q: %w", symbol, err)
		}

		res = append(res, TargetWeight{Symbol: symbol, Weight: weight})
	}

	if _, err = dec.Token(); err != nil {
		return err
	}

	*t = res
	return nil
}

func (t TargetAllocation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tw := range t {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(tw.Symbol)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(tw.Weight)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
