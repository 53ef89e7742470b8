package types

import (
	"encoding/json"
	"testing"
)

func TestCurrencyType_Valid(t *testing.T) {
	for _, c := range Currencies() {
		if !c.Valid() {
			t.Errorf("currency %d should be valid", c)
		}
	}
	if CurrencyType(3).Valid() {
		t.Error("currency 3 should be invalid")
	}
	if CurrencyType(255).Valid() {
		t.Error("currency 255 should be invalid")
	}
}

func TestCurrencyType_String(t *testing.T) {
	tests := []struct {
		c    CurrencyType
		want string
	}{
		{CurrencyPrimary, "primary"},
		{CurrencySecondaryA, "secondary-a"},
		{CurrencySecondaryB, "secondary-b"},
		{CurrencyType(7), "currency(7)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestCurrencyType_UnmarshalJSON(t *testing.T) {
	var c CurrencyType
	if err := json.Unmarshal([]byte("2"), &c); err != nil {
		t.Fatalf("unmarshal 2: %v", err)
	}
	if c != CurrencySecondaryB {
		t.Errorf("unmarshal 2 = %v, want secondary-b", c)
	}

	if err := json.Unmarshal([]byte("3"), &c); err == nil {
		t.Error("unmarshal 3 should fail")
	}
	if err := json.Unmarshal([]byte(`"primary"`), &c); err == nil {
		t.Error("unmarshal string should fail")
	}
}

func TestCurrencyAmounts(t *testing.T) {
	var a CurrencyAmounts
	if !a.IsZero() {
		t.Error("zero-value amounts should be zero")
	}

	a.Add(CurrencyPrimary, 10)
	a.Add(CurrencySecondaryA, 2.5)
	a.Add(CurrencyPrimary, 5)

	if got := a.Get(CurrencyPrimary); got != 15 {
		t.Errorf("primary = %v, want 15", got)
	}
	if got := a.Get(CurrencySecondaryA); got != 2.5 {
		t.Errorf("secondary-a = %v, want 2.5", got)
	}
	if got := a.Get(CurrencySecondaryB); got != 0 {
		t.Errorf("secondary-b = %v, want 0", got)
	}
	if a.IsZero() {
		t.Error("amounts with values should not be zero")
	}

	// Invalid currency types are ignored on write and read as zero.
	a.Add(CurrencyType(9), 100)
	if got := a.Get(CurrencyType(9)); got != 0 {
		t.Errorf("invalid currency = %v, want 0", got)
	}
}
