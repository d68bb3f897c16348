// Package exercise defines the exercise record and the change entry produced
// when a record is recategorized.
//
// A Record keeps the raw JSON object it was parsed from. Fields other than
// id, name, category and primaryMuscles are never decoded, so a record that is
// not recategorized is written back exactly as it was read, key order included.
package exercise

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"recat/internal/errors"
)

// JSON field names of an exercise object.
const (
	FieldID             = "id"
	FieldName           = "name"
	FieldCategory       = "category"
	FieldPrimaryMuscles = "primaryMuscles"
)

// Record is one exercise definition.
type Record struct {
	raw      []byte
	id       string
	idText   string
	name     string
	category string
	muscles  []string
}

// Parse validates a raw JSON exercise object and builds a Record from it.
// index is the position of the object in its input array and is only used
// in error reports.
func Parse(raw []byte, index int) (Record, error) {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Record{}, errors.NewMalformedRecordError(index, "", "must be a JSON object")
	}

	if dup := duplicateField(doc); dup != "" {
		return Record{}, errors.NewMalformedRecordError(index, dup, "appears more than once")
	}

	id := doc.Get(FieldID)
	if !id.Exists() {
		return Record{}, errors.NewMalformedRecordError(index, FieldID, "is missing")
	}
	if id.Type == gjson.JSON {
		return Record{}, errors.NewMalformedRecordError(index, FieldID, "must be a JSON scalar")
	}

	name, err := stringField(doc, FieldName, index)
	if err != nil {
		return Record{}, err
	}

	category, err := stringField(doc, FieldCategory, index)
	if err != nil {
		return Record{}, err
	}

	muscles, err := musclesField(doc, index)
	if err != nil {
		return Record{}, err
	}

	idText := id.String()
	if id.Type == gjson.Null {
		idText = "null"
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)

	return Record{
		raw:      buf,
		id:       id.Raw,
		idText:   idText,
		name:     name,
		category: category,
		muscles:  muscles,
	}, nil
}

// New builds a Record from its four required fields.
func New(id any, name, category string, muscles []string) (Record, error) {
	if muscles == nil {
		muscles = []string{}
	}

	raw, err := json.Marshal(struct {
		ID             any      `json:"id"`
		Name           string   `json:"name"`
		Category       string   `json:"category"`
		PrimaryMuscles []string `json:"primaryMuscles"`
	}{id, name, category, muscles})
	if err != nil {
		return Record{}, fmt.Errorf("encoding exercise %q: %w", name, err)
	}

	return Parse(raw, 0)
}

// duplicateField returns the first required field that occurs more than once
// in the object. Readers disagree on which duplicate wins, so such records
// are rejected rather than rewritten.
func duplicateField(doc gjson.Result) string {
	seen := make(map[string]bool, 4)
	var dup string
	doc.ForEach(func(key, _ gjson.Result) bool {
		switch k := key.String(); k {
		case FieldID, FieldName, FieldCategory, FieldPrimaryMuscles:
			if seen[k] {
				dup = k
				return false
			}
			seen[k] = true
		}
		return true
	})
	return dup
}

func stringField(doc gjson.Result, field string, index int) (string, error) {
	v := doc.Get(field)
	if !v.Exists() {
		return "", errors.NewMalformedRecordError(index, field, "is missing")
	}
	if v.Type != gjson.String {
		return "", errors.NewMalformedRecordError(index, field, "must be a string")
	}
	return v.Str, nil
}

func musclesField(doc gjson.Result, index int) ([]string, error) {
	v := doc.Get(FieldPrimaryMuscles)
	if !v.Exists() {
		return nil, errors.NewMalformedRecordError(index, FieldPrimaryMuscles, "is missing")
	}
	if !v.IsArray() {
		return nil, errors.NewMalformedRecordError(index, FieldPrimaryMuscles, "must be an array of strings")
	}

	muscles := []string{}
	var bad bool
	v.ForEach(func(_, m gjson.Result) bool {
		if m.Type != gjson.String {
			bad = true
			return false
		}
		muscles = append(muscles, m.Str)
		return true
	})
	if bad {
		return nil, errors.NewMalformedRecordError(index, FieldPrimaryMuscles, "must be an array of strings")
	}
	return muscles, nil
}

// ID returns the raw JSON text of the record identifier.
func (r Record) ID() json.RawMessage {
	return json.RawMessage(r.id)
}

// IDString returns the identifier as plain text, without quotes for string ids.
func (r Record) IDString() string {
	return r.idText
}

// Name returns the exercise name.
func (r Record) Name() string {
	return r.name
}

// Category returns the classification label.
func (r Record) Category() string {
	return r.category
}

// PrimaryMuscles returns a copy of the primary muscle names.
func (r Record) PrimaryMuscles() []string {
	out := make([]string, len(r.muscles))
	copy(out, r.muscles)
	return out
}

// MuscleText returns the primary muscles joined with spaces, lower-cased.
func (r Record) MuscleText() string {
	return strings.ToLower(strings.Join(r.muscles, " "))
}

// Raw returns a copy of the record's JSON object text.
func (r Record) Raw() []byte {
	out := make([]byte, len(r.raw))
	copy(out, r.raw)
	return out
}

// Clone returns a Record that shares no memory with r.
func (r Record) Clone() Record {
	c := r
	c.raw = r.Raw()
	c.muscles = r.PrimaryMuscles()
	return c
}

// WithCategory returns a copy of the record with its category replaced.
// Only the category value changes in the JSON text; r is left untouched.
func (r Record) WithCategory(category string) (Record, error) {
	c := r.Clone()
	if category == r.category {
		return c, nil
	}

	raw, err := sjson.SetBytes(c.raw, FieldCategory, category)
	if err != nil {
		return Record{}, fmt.Errorf("setting category of %q: %w", r.name, err)
	}
	c.raw = raw
	c.category = category
	return c, nil
}

// MarshalJSON returns the record's JSON object text.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Raw(), nil
}

// Change describes one reclassification of a record.
type Change struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
	From string          `json:"from"`
	To   string          `json:"to"`
}

// NewChange records that r moved from its category to another one.
func NewChange(r Record, to string) Change {
	return Change{
		ID:   r.ID(),
		Name: r.name,
		From: r.category,
		To:   to,
	}
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %s → %s", c.Name, c.From, c.To)
}
