package unit_test

import (
	"testing"

	"github.com/casualjim/conveyor/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webParams struct {
	fields map[string]interface{}
}

func (p *webParams) Permit(names ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		if v, ok := p.fields[name]; ok {
			out[name] = v
		}
	}
	return out
}

func TestParams_PlainBagIsDeepCopied(t *testing.T) {
	nested := map[string]interface{}{"name": "before"}
	src := unit.Attrs{"user": nested, "tags": []interface{}{"a", "b"}}

	bag := unit.Params(src)
	require.Equal(t, unit.Attrs{"user": map[string]interface{}{"name": "before"}, "tags": []interface{}{"a", "b"}}, bag)

	nested["name"] = "after"
	src["tags"].([]interface{})[0] = "mutated"
	assert.Equal(t, "before", bag["user"].(map[string]interface{})["name"])
	assert.Equal(t, "a", bag["tags"].([]interface{})[0])
}

func TestParams_PermitterOnlyAllowedFields(t *testing.T) {
	src := &webParams{fields: map[string]interface{}{
		"name":  "picard",
		"email": "jl@example.org",
		"admin": true,
	}}

	bag := unit.Params(src, "name", "email")
	assert.Equal(t, unit.Attrs{"name": "picard", "email": "jl@example.org"}, bag)
	_, ok := bag["admin"]
	assert.False(t, ok)
}

func TestParams_UnknownInputYieldsEmptyBag(t *testing.T) {
	assert.Equal(t, unit.Attrs{}, unit.Params(42))
	assert.Equal(t, unit.Attrs{}, unit.Params(nil))
	assert.Equal(t, unit.Attrs{}, unit.Params("not a bag"))
}
