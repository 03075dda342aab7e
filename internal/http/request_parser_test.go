package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
	}{
		{"both values provided", url.Values{"year": {"2024"}, "month": {"12"}}, 2024, 12},
		{"only month", url.Values{"month": {"2"}}, 2023, 2},
		{"empty uses now", url.Values{}, 2023, 10},
		{"invalid values are ignored", url.Values{"year": {"soon"}, "month": {"x"}}, 2023, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMonthParams(tt.query, fixedNow())
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("ParseMonthParams() = %+v, want %d-%d", got, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestParseWindowParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantStart string
		wantEnd   string
		wantErr   error
	}{
		{"month", url.Values{"year": {"2024"}, "month": {"2"}}, "2024-02-01", "2024-02-29", nil},
		{"range", url.Values{"from": {"2023-10-01"}, "to": {"2023-12-31"}}, "2023-10-01", "2023-12-31", nil},
		{"single day", url.Values{"from": {"2023-10-01"}, "to": {"2023-10-01"}}, "2023-10-01", "2023-10-01", nil},
		{"reversed", url.Values{"from": {"2023-10-02"}, "to": {"2023-10-01"}}, "", "", core.ErrInvalidWindow},
		{"bad month", url.Values{"month": {"0"}}, "", "", core.ErrInvalidWindow},
		{"missing to", url.Values{"from": {"2023-10-02"}}, "", "", core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindowParams(tt.query, fixedNow())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.Start.String() != tt.wantStart || w.End.String() != tt.wantEnd {
				t.Errorf("window = %s, want %s..%s", w, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		p := newParser(t, "application/json", `{"description":"  Groceries\u0007 ","amount":62.1,"tags":["food"," food ",""]}`)
		if got := p.Get("description"); got != "Groceries" {
			t.Errorf("description = %q", got)
		}
		if got := p.Get("amount"); got != "62.1" {
			t.Errorf("amount = %q", got)
		}
		if got := p.GetTags("tags"); !reflect.DeepEqual(got, []string{"food"}) {
			t.Errorf("tags = %v", got)
		}
		if got := p.Get("missing"); got != "" {
			t.Errorf("missing = %q", got)
		}
	})

	t.Run("json tags as string", func(t *testing.T) {
		p := newParser(t, "application/json", `{"tags":"utility, home"}`)
		if got := p.GetTags("tags"); !reflect.DeepEqual(got, []string{"utility", "home"}) {
			t.Errorf("tags = %v", got)
		}
	})

	t.Run("form", func(t *testing.T) {
		p := newParser(t, "application/x-www-form-urlencoded", "description=Rent&tags=home&tags=housing,home")
		if got := p.Get("description"); got != "Rent" {
			t.Errorf("description = %q", got)
		}
		if got := p.GetTags("tags"); !reflect.DeepEqual(got, []string{"home", "housing"}) {
			t.Errorf("tags = %v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		p := newParser(t, "", "")
		if got := p.GetTags("tags"); len(got) != 0 || got == nil {
			t.Errorf("tags = %#v", got)
		}
	})

	t.Run("too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", maxBodyBytes+10)))
		if err := NewRequestBodyParser(req).Parse(); err == nil {
			t.Error("expected error for oversized body")
		}
	})
}

func TestParseRecords(t *testing.T) {
	now := fixedNow()

	in, err := parseIncome(newParser(t, "application/json", `{"source":"Salary","amount":"1.200,50"}`), now)
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("thousands separators should be rejected, got %v (%+v)", err, in)
	}

	in, err = parseIncome(newParser(t, "application/json", `{"source":"Gift","amount":"25"}`), now)
	if err != nil {
		t.Fatalf("parseIncome() error = %v", err)
	}
	if in.Frequency != core.FrequencyOnce || in.Date.String() != "2023-10-19" || in.Amount.Cents != 2500 {
		t.Errorf("income = %+v", in)
	}

	re, err := parseRecurringExpense(newParser(t, "application/json", `{"description":"Gym","amount":"29.99","frequency":"Yearly","start_date":"2024-02-29"}`), now)
	if err != nil {
		t.Fatalf("parseRecurringExpense() error = %v", err)
	}
	if re.Frequency != core.FrequencyAnnually || re.StartDate.String() != "2024-02-29" || len(re.Tags) != 0 {
		t.Errorf("recurring = %+v", re)
	}

	_, err = parseRecurringExpense(newParser(t, "application/json", `{"description":"Gym","amount":"29.99"}`), now)
	if !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("missing frequency error = %v", err)
	}

	_, err = parseOccasionalExpense(newParser(t, "application/json", `{"description":"`+strings.Repeat("x", 201)+`","amount":"1"}`), now)
	if !errors.Is(err, core.ErrDescriptionTooLong) {
		t.Errorf("long description error = %v", err)
	}
}
