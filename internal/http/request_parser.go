// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// window query parameters and the bodies of record creation requests.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// maxBodyBytes bounds the size of record creation bodies.
const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using now
// as the default. Unparsable values are ignored.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// ParseWindowParams reads an explicit from/to range, or falls back to the
// year/month of ParseMonthParams. Errors wrap core.ErrInvalidDate or
// core.ErrInvalidWindow.
func ParseWindowParams(query url.Values, now time.Time) (core.DateWindow, error) {
	from, to := strings.TrimSpace(query.Get("from")), strings.TrimSpace(query.Get("to"))
	if from == "" && to == "" {
		p := ParseMonthParams(query, now)
		return core.MonthWindow(p.Year, p.Month)
	}

	start, err := core.ParseDate(from)
	if err != nil {
		return core.DateWindow{}, fmt.Errorf("from: %w", err)
	}
	end, err := core.ParseDate(to)
	if err != nil {
		return core.DateWindow{}, fmt.Errorf("to: %w", err)
	}
	return core.NewDateWindow(start, end)
}

// RequestBodyParser handles JSON and form-encoded bodies behind one accessor.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// IsJSONContent reports whether the Content-Type announces JSON.
func (p *RequestBodyParser) IsJSONContent() bool {
	return strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetTags accepts a JSON array, a comma-separated string, or repeated form
// fields, and returns normalized tags.
func (p *RequestBodyParser) GetTags(key string) []string {
	if p.jsonData != nil {
		switch val := p.jsonData[key].(type) {
		case []any:
			tags := make([]string, 0, len(val))
			for _, v := range val {
				tags = append(tags, sanitizeInput(stringValue(v)))
			}
			return core.NormalizeTags(tags)
		case string:
			return core.ParseTags(sanitizeInput(val))
		default:
			return []string{}
		}
	}
	if p.formData != nil {
		return core.ParseTags(sanitizeInput(strings.Join(p.formData[key], ",")))
	}
	return []string{}
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseAmount reads a positive decimal amount such as "75.50" or "75,50".
func parseAmount(p *RequestBodyParser) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", p.Get("amount"), err)
	}
	return core.Money{Cents: cents}, nil
}

// parseDateField reads a YYYY-MM-DD field, defaulting to today when empty.
func parseDateField(p *RequestBodyParser, key string, now time.Time) (core.Date, error) {
	raw := p.Get(key)
	if raw == "" {
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// parseFrequency rejects values ParseFrequency does not recognise instead
// of storing them as unknown.
func parseFrequency(p *RequestBodyParser) (core.Frequency, error) {
	raw := p.Get("frequency")
	f := core.ParseFrequency(raw)
	if f == core.FrequencyUnknown {
		return f, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, raw)
	}
	return f, nil
}

func parseIncome(p *RequestBodyParser, now time.Time) (core.Income, error) {
	amount, err := parseAmount(p)
	if err != nil {
		return core.Income{}, err
	}
	date, err := parseDateField(p, "date", now)
	if err != nil {
		return core.Income{}, err
	}
	freq, err := parseFrequency(p)
	if err != nil {
		return core.Income{}, err
	}
	in := core.Income{
		Source:    p.Get("source"),
		Amount:    amount,
		Date:      date,
		Frequency: freq,
	}
	return in, in.Validate()
}

func parseRecurringExpense(p *RequestBodyParser, now time.Time) (core.RecurringExpense, error) {
	amount, err := parseAmount(p)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	start, err := parseDateField(p, "start_date", now)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	freq, err := parseFrequency(p)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re := core.RecurringExpense{
		Description: p.Get("description"),
		Amount:      amount,
		Frequency:   freq,
		StartDate:   start,
		Tags:        p.GetTags("tags"),
	}
	return re, re.Validate()
}

func parseOccasionalExpense(p *RequestBodyParser, now time.Time) (core.OccasionalExpense, error) {
	amount, err := parseAmount(p)
	if err != nil {
		return core.OccasionalExpense{}, err
	}
	date, err := parseDateField(p, "date", now)
	if err != nil {
		return core.OccasionalExpense{}, err
	}
	oe := core.OccasionalExpense{
		Description: p.Get("description"),
		Amount:      amount,
		Date:        date,
		Tags:        p.GetTags("tags"),
	}
	return oe, oe.Validate()
}
