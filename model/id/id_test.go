package id

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/viant/fluxmesh/errs"
)

type holder struct {
	id ID
}

func (h *holder) Identity() ID { return h.id }

func TestOf(t *testing.T) {
	valid := New()
	testCases := []struct {
		description string
		ref         interface{}
		expect      ID
		expectErr   bool
	}{
		{description: "id", ref: valid, expect: valid},
		{description: "id pointer", ref: &valid, expect: valid},
		{description: "string", ref: valid.String(), expect: valid},
		{description: "uuid", ref: valid.UUID(), expect: valid},
		{description: "identifier", ref: &holder{id: valid}, expect: valid},
		{description: "malformed string", ref: "not-an-id", expectErr: true},
		{description: "uuid v1 string", ref: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", expectErr: true},
		{description: "nil id", ref: Nil, expectErr: true},
		{description: "nil", ref: nil, expectErr: true},
		{description: "unsupported", ref: 12, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := Of(testCase.ref)
			if testCase.expectErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestID_Text(t *testing.T) {
	value := New()
	data, err := json.Marshal(map[string]ID{"id": value})
	assert.NoError(t, err)
	assert.EqualValues(t, `{"id":"`+value.String()+`"}`, string(data))

	var decoded map[string]ID
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, value, decoded["id"])

	assert.Error(t, json.Unmarshal([]byte(`{"id":"x"}`), &decoded))
}

func TestNew_Unique(t *testing.T) {
	seen := map[ID]bool{}
	for i := 0; i < 1000; i++ {
		next := New()
		assert.False(t, seen[next])
		assert.EqualValues(t, uuid.Version(4), next.UUID().Version())
		seen[next] = true
	}
}
