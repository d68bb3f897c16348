package exercise

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recat/internal/errors"
)

func TestParse(t *testing.T) {
	raw := []byte(`{"equipment":"barbell","id":"curl-1","name":"Barbell Curl","category":"Arms","primaryMuscles":["Biceps Brachii","Brachialis"],"level":2}`)

	rec, err := Parse(raw, 0)
	require.NoError(t, err)

	assert.Equal(t, `"curl-1"`, string(rec.ID()))
	assert.Equal(t, "curl-1", rec.IDString())
	assert.Equal(t, "Barbell Curl", rec.Name())
	assert.Equal(t, "Arms", rec.Category())
	assert.Equal(t, []string{"Biceps Brachii", "Brachialis"}, rec.PrimaryMuscles())
	assert.Equal(t, "biceps brachii brachialis", rec.MuscleText())
	assert.Equal(t, raw, rec.Raw())
}

func TestParseIDScalars(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected string
	}{
		{"number", `42`, "42"},
		{"string", `"abc"`, "abc"},
		{"bool", `true`, "true"},
		{"null", `null`, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(`{"id":` + tt.id + `,"name":"n","category":"c","primaryMuscles":[]}`)
			rec, err := Parse(raw, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.id, string(rec.ID()))
			assert.Equal(t, tt.expected, rec.IDString())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"not an object", `["a"]`, ""},
		{"missing id", `{"name":"n","category":"c","primaryMuscles":[]}`, FieldID},
		{"object id", `{"id":{"x":1},"name":"n","category":"c","primaryMuscles":[]}`, FieldID},
		{"missing name", `{"id":1,"category":"c","primaryMuscles":[]}`, FieldName},
		{"numeric name", `{"id":1,"name":5,"category":"c","primaryMuscles":[]}`, FieldName},
		{"missing category", `{"id":1,"name":"n","primaryMuscles":[]}`, FieldCategory},
		{"null category", `{"id":1,"name":"n","category":null,"primaryMuscles":[]}`, FieldCategory},
		{"missing muscles", `{"id":1,"name":"n","category":"c"}`, FieldPrimaryMuscles},
		{"string muscles", `{"id":1,"name":"n","category":"c","primaryMuscles":"Biceps"}`, FieldPrimaryMuscles},
		{"mixed muscles", `{"id":1,"name":"n","category":"c","primaryMuscles":["Biceps",3]}`, FieldPrimaryMuscles},
		{"duplicate category", `{"id":1,"name":"n","category":"Arms","primaryMuscles":[],"category":"Shoulders"}`, FieldCategory},
		{"duplicate id", `{"id":1,"id":2,"name":"n","category":"c","primaryMuscles":[]}`, FieldID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw), 7)
			require.Error(t, err)

			var malformed *errors.MalformedRecordError
			require.True(t, stderrors.As(err, &malformed), "expected MalformedRecordError, got %T", err)
			assert.Equal(t, 7, malformed.Index)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestParseAllowsRepeatedOpaqueFields(t *testing.T) {
	rec, err := Parse([]byte(`{"id":1,"name":"n","category":"Arms","primaryMuscles":[],"note":"a","note":"b"}`), 0)
	require.NoError(t, err)
	assert.Equal(t, "Arms", rec.Category())
}

func TestWithCategory(t *testing.T) {
	raw := []byte(`{"id": 1, "name": "Neck Curl", "category": "Shoulders", "primaryMuscles": ["Sternocleidomastoid"], "tips": ["slow"]}`)
	rec, err := Parse(raw, 0)
	require.NoError(t, err)

	updated, err := rec.WithCategory("Neck")
	require.NoError(t, err)

	assert.Equal(t, "Neck", updated.Category())
	assert.Equal(t, "Shoulders", rec.Category(), "original must not change")
	assert.Equal(t, raw, rec.Raw(), "original JSON must not change")
	assert.Equal(t,
		`{"id": 1, "name": "Neck Curl", "category": "Neck", "primaryMuscles": ["Sternocleidomastoid"], "tips": ["slow"]}`,
		string(updated.Raw()))
}

func TestWithCategoryUnchangedIsCopy(t *testing.T) {
	rec, err := New(3, "Bench Press", "Chest", []string{"Pectoralis Major"})
	require.NoError(t, err)

	same, err := rec.WithCategory("Chest")
	require.NoError(t, err)
	assert.Equal(t, rec.Raw(), same.Raw())

	same.muscles[0] = "changed"
	assert.Equal(t, "Pectoralis Major", rec.PrimaryMuscles()[0])
}

func TestNew(t *testing.T) {
	rec, err := New(2, "Barbell Curl", "Arms", nil)
	require.NoError(t, err)

	assert.Equal(t, `{"id":2,"name":"Barbell Curl","category":"Arms","primaryMuscles":[]}`, string(rec.Raw()))
	assert.Empty(t, rec.PrimaryMuscles())
}

func TestMarshalRecordsAndChanges(t *testing.T) {
	rec, err := New("a1", "Wrist Curl", "Arms", []string{"Forearm Flexors"})
	require.NoError(t, err)

	data, err := json.Marshal([]Record{rec})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a1","name":"Wrist Curl","category":"Arms","primaryMuscles":["Forearm Flexors"]}]`, string(data))

	change := NewChange(rec, "Forearms")
	data, err = json.Marshal(change)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a1","name":"Wrist Curl","from":"Arms","to":"Forearms"}`, string(data))
	assert.Equal(t, "Wrist Curl: Arms → Forearms", change.String())
}
