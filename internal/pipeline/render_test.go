package pipeline

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"

	"github.com/eliezerRevach/finance-data/internal/model"
)

func TestRender_HeaderFirst(t *testing.T) {
	rows := [][]string{
		model.CanonicalHeader,
		{"02/01/2024", "451.5", "452.0", "449.0", "450.1", "450.1", "1000000"},
	}
	data, err := Render(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if got[0] != "Date,Open,High,Low,Close,Adj Close,Volume" {
		t.Errorf("header line: %q", got[0])
	}
	if got[1] != "02/01/2024,451.5,452.0,449.0,450.1,450.1,1000000" {
		t.Errorf("data line: %q", got[1])
	}
}

func TestRender_RoundTripsThroughParser(t *testing.T) {
	rows := [][]string{
		model.CanonicalHeader,
		{"02/01/2024", "451.5", "452.0", "449.0", "450.1", "450.1", "1000000"},
		{"03/01/2024", `has"quote`, "1,000", "449.0", "450.1", "450.1", "1100000"},
	}
	data, err := Render(rows)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	parsed, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse rendered csv: %v", err)
	}
	if !reflect.DeepEqual(parsed, rows) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", parsed, rows)
	}
}

func TestWriteArtifact_CreatesParentDir(t *testing.T) {
	path := t.TempDir() + "/nested/dir/qld_stock_data.csv"
	rows := [][]string{
		model.CanonicalHeader,
		{"02/01/2024", "1", "2", "3", "4", "4", "5"},
	}
	if err := WriteArtifact(path, rows); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	res := Validate(path)
	if !res.Valid() {
		t.Fatalf("written artifact does not validate: %s", res.Reason)
	}
	if !reflect.DeepEqual(res.Rows, rows) {
		t.Errorf("artifact content mismatch: %v", res.Rows)
	}
}
