/*
	Copyright (c) 2015-2016 Christopher Young
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	plotfile.go: Read simulator .plot files, one whitespace-delimited record per line.
*/

package plotfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Record is one line of a plot file split on runs of whitespace.
type Record struct {
	File   string
	Line   int
	Fields []string
}

// Len returns the number of tokens on the line.
func (r Record) Len() int {
	return len(r.Fields)
}

// ParseError reports a missing or non-numeric field.
type ParseError struct {
	File  string
	Line  int
	Field int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s:%d: field %d: %v", e.File, e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("%s:%d: field %d %q: %v", e.File, e.Line, e.Field, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrMissingField is wrapped by a ParseError when the record is too short.
var ErrMissingField = errors.New("missing field")

// ErrNotFinite is wrapped by a ParseError for NaN and Inf tokens.
var ErrNotFinite = errors.New("value is not finite")

func (r Record) field(i int) (string, error) {
	if i < 0 || i >= len(r.Fields) {
		return "", &ParseError{File: r.File, Line: r.Line, Field: i, Err: ErrMissingField}
	}
	return r.Fields[i], nil
}

// Float parses field i as a finite real number.
func (r Record) Float(i int) (float64, error) {
	tok, err := r.field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{File: r.File, Line: r.Line, Field: i, Token: tok, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{File: r.File, Line: r.Line, Field: i, Token: tok, Err: ErrNotFinite}
	}
	return v, nil
}

// Int parses field i as a base 10 integer.
func (r Record) Int(i int) (int64, error) {
	tok, err := r.field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, &ParseError{File: r.File, Line: r.Line, Field: i, Token: tok, Err: err}
	}
	return v, nil
}

// Read tokenizes every non-empty line of rd. name is used in errors only.
func Read(rd io.Reader, name string) ([]Record, error) {
	recs := make([]Record, 0)
	scanner := bufio.NewScanner(rd)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 { // Blank line.
			continue
		}
		recs = append(recs, Record{File: name, Line: line, Fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return recs, nil
}

// ReadFile opens path and reads all of its records.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plot file: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}
