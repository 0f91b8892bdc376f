package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Name  Field[string]   `json:"name"`
	Price Field[*float64] `json:"price"`
	Year  Field[int]      `json:"year"`
}

func TestField_OmittedNullAndValue(t *testing.T) {
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Dusk","price":null}`), &b))

	assert.True(t, b.Name.Present())
	assert.Equal(t, "Dusk", b.Name.Value)

	assert.True(t, b.Price.Set)
	assert.True(t, b.Price.Cleared())
	assert.False(t, b.Price.Present())

	assert.False(t, b.Year.Set)
	assert.False(t, b.Year.Cleared())
}

func TestField_TypeMismatch(t *testing.T) {
	var b body
	err := json.Unmarshal([]byte(`{"year":"nineteen"}`), &b)
	assert.Error(t, err)
}

func TestField_Constructors(t *testing.T) {
	f := Of(3)
	assert.True(t, f.Present())
	assert.Equal(t, 3, f.Value)

	n := Null[string]()
	assert.True(t, n.Cleared())

	out, err := json.Marshal(struct {
		A Field[int] `json:"a"`
		B Field[int] `json:"b"`
	}{A: Of(7), B: Null[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":null}`, string(out))
}
