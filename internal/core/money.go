// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and unit representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var maxUnits = decimal.NewFromInt((1<<63 - 1) / 100)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.GreaterThan(maxUnits) {
		return 0, ErrInvalidAmount
	}

	cents := d.Round(2).Shift(2).IntPart()
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Units returns the amount in currency units as a float64 for charts.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount with two decimals and no currency symbol.
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}
