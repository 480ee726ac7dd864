package plotfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadSkipsBlankLines(t *testing.T) {
	in := "0.01 3\n\n0.02\t4\n   \n0.03   5  \n"
	recs, err := Read(strings.NewReader(in), "redQueue.plot")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	want := []Record{
		{File: "redQueue.plot", Line: 1, Fields: []string{"0.01", "3"}},
		{File: "redQueue.plot", Line: 3, Fields: []string{"0.02", "4"}},
		{File: "redQueue.plot", Line: 5, Fields: []string{"0.03", "5"}},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("records = %+v, want %+v", recs, want)
	}
}

func TestReadEmpty(t *testing.T) {
	recs, err := Read(strings.NewReader(""), "empty.plot")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("records = %#v, want empty non-nil slice", recs)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.plot"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", err)
	}
}

func TestReadFileDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PacketNum.plot")
	data := "0.1 1 8081\n0.2 959 8082\n0.3 1917 8083\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	first, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second read differs: %+v vs %+v", first, second)
	}
}

func TestRecordNumbers(t *testing.T) {
	r := Record{File: "f", Line: 7, Fields: []string{"0.25", "9580", "abc"}}

	f, err := r.Float(0)
	if err != nil || f != 0.25 {
		t.Errorf("Float(0) = %v, %v; want 0.25, nil", f, err)
	}
	i, err := r.Int(1)
	if err != nil || i != 9580 {
		t.Errorf("Int(1) = %v, %v; want 9580, nil", i, err)
	}

	_, err = r.Int(2)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Int(2) error = %v, want *ParseError", err)
	}
	if pe.Line != 7 || pe.Field != 2 || pe.Token != "abc" {
		t.Errorf("ParseError = %+v", pe)
	}

	_, err = r.Float(3)
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("Float(3) error = %v, want ErrMissingField", err)
	}
}

func TestIntRejectsReal(t *testing.T) {
	r := Record{Fields: []string{"1.5"}}
	if _, err := r.Int(0); err == nil {
		t.Error("Int accepted a real token")
	}
}

func TestFloatRejectsNonFinite(t *testing.T) {
	for _, tok := range []string{"NaN", "nan", "Inf", "+Inf", "-inf", "1e400"} {
		r := Record{File: "redQueue.plot", Line: 4, Fields: []string{"0.1", tok}}
		_, err := r.Float(1)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Float(%q) error = %v, want *ParseError", tok, err)
			continue
		}
		if pe.Line != 4 || pe.Field != 1 || pe.Token != tok {
			t.Errorf("Float(%q) ParseError = %+v", tok, pe)
		}
	}
}
