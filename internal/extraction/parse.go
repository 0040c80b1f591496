package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the fixed day/month/year format the backend uses for dates.
// This is part of the external contract, not a locale choice.
const DateLayout = "02/01/2006"

// Defaults applied when the backend omits a field.
const (
	defaultCurrency = "USD"
	defaultAmount   = "0.00"
)

// parseResult decodes a backend response body into a Result. Fields are
// decoded independently: a missing or wrongly-typed field falls back to its
// default without affecting any other field. Only a body that is not a JSON
// object at all is an error.
func parseResult(body []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	res := &Result{
		Currency: defaultCurrency,
		Amount:   defaultAmount,
	}

	if s, ok := stringField(raw, "merchant"); ok {
		res.Merchant = s
	}
	if s, ok := stringField(raw, "category"); ok {
		res.Category = s
	}
	if s, ok := stringField(raw, "currency"); ok && s != "" {
		res.Currency = s
	}
	if f, ok := numberField(raw, "amount"); ok {
		res.Amount = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s, ok := stringField(raw, "date"); ok {
		// A date that doesn't match the contract format is treated as absent
		if d, err := time.Parse(DateLayout, s); err == nil {
			res.Date = &d
		}
	}

	ocr, hasOCR := numberField(raw, "ocr_time")
	llm, hasLLM := numberField(raw, "llm_time")
	total, hasTotal := numberField(raw, "total_time")
	if hasOCR || hasLLM || hasTotal {
		res.Timings = &Timings{
			OCRSeconds:   ocr,
			LLMSeconds:   llm,
			TotalSeconds: total,
		}
	}

	return res, nil
}

func stringField(raw map[string]json.RawMessage, key string) (string, bool) {
	msg, ok := raw[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return "", false
	}
	return s, true
}

func numberField(raw map[string]json.RawMessage, key string) (float64, bool) {
	msg, ok := raw[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err != nil {
		return 0, false
	}
	return f, true
}
