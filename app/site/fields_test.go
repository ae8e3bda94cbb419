package site

import (
	"testing"
	"time"
)

func TestParseFields(t *testing.T) {
	data := "Title: Hello World\n\n----\n\nText:\n\nFirst line\nSecond line: with colon\n\n----\n\nDATE: 2024-05-01 10:00\n"

	fields := parseFields([]byte(data))

	if fields["title"] != "Hello World" {
		t.Errorf("Unexpected title: %q", fields["title"])
	}
	if fields["text"] != "First line\nSecond line: with colon" {
		t.Errorf("Unexpected text: %q", fields["text"])
	}
	if fields["date"] != "2024-05-01 10:00" {
		t.Errorf("Keys should be lower-cased, got %v", fields)
	}
}

func TestParseDate(t *testing.T) {
	date := parseDate("2024-05-01 10:00")
	if date == nil {
		t.Fatal("Expected a parsed date")
	}
	if date.Year() != 2024 || date.Month() != time.May || date.Day() != 1 || date.Hour() != 10 {
		t.Errorf("Unexpected date: %v", date)
	}

	if parseDate("") != nil {
		t.Error("Expected nil for empty value")
	}
	if parseDate("sometime next week") != nil {
		t.Error("Expected nil for unparseable value")
	}
}
