// Package parser loads exercise files and encodes updated exercise lists.
// Records are split out of the input array without decoding their payload,
// which keeps every byte of a record that is not recategorized.
package parser

import (
	"bytes"
	stderrors "errors"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"recat/internal/errors"
	"recat/internal/exercise"
)

// Indent is the indentation used for output files.
const Indent = "  "

var outputOptions = &pretty.Options{
	Width:    0,
	Prefix:   "",
	Indent:   Indent,
	SortKeys: false,
}

// LoadExercises reads and validates the exercise array stored at filePath.
// A file that cannot be read is reported as InputNotFoundError; content
// problems are reported by ParseExercises.
func LoadExercises(filePath string) ([]exercise.Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.WrapInputError(filePath, err)
	}

	return ParseExercises(data, filePath)
}

// ParseExercises splits a JSON array into exercise records. Parsing stops at
// the first malformed record.
//
// Input that is not valid JSON, or valid JSON whose top level is not an
// array, yields an InvalidJSONError. A record with a missing or mistyped
// required field yields a MalformedRecordError carrying filePath and the
// record's index.
func ParseExercises(data []byte, filePath string) ([]exercise.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.NewInvalidJSONError(filePath, "invalid JSON", nil)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, errors.NewInvalidJSONError(filePath, "expected a JSON array of exercises", nil)
	}

	records := []exercise.Record{}
	var parseErr error
	index := 0

	root.ForEach(func(_, value gjson.Result) bool {
		rec, err := exercise.Parse([]byte(value.Raw), index)
		if err != nil {
			parseErr = err
			return false
		}
		records = append(records, rec)
		index++
		return true
	})

	if parseErr != nil {
		var malformed *errors.MalformedRecordError
		if stderrors.As(parseErr, &malformed) {
			return nil, malformed.WithPath(filePath)
		}
		return nil, parseErr
	}

	return records, nil
}

// EncodeExercises renders records as a JSON array indented with two spaces,
// one element per line.
func EncodeExercises(records []exercise.Record) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(rec.Raw())
	}
	buf.WriteByte(']')

	return pretty.PrettyOptions(buf.Bytes(), outputOptions)
}
