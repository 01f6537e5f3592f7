package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantFamily Family
	}{
		{
			name:       "regular family from array payload",
			payload:    `[[{"id":1,"group":"size","name":"2x2"}],[{"hash":"a1b2","value":"10.00"}],[{"meta":"x"}]]`,
			wantFamily: FamilyRegular,
		},
		{
			name:       "roll label family from array payload",
			payload:    `[[{"opt_val_id":7,"option_id":3,"option_val":"matte","name":"Finish"}],[],[]]`,
			wantFamily: FamilyRollLabel,
		},
		{
			name:       "regular family from object payload",
			payload:    `{"options":[{"id":"5","group":"qty","name":"500"}],"pricing":[],"metadata":[]}`,
			wantFamily: FamilyRegular,
		},
		{
			name:       "roll label family from object payload",
			payload:    `{"values":[{"opt_val_id":"12","option_id":"4","option_val":"gloss","name":"Finish"}],"rules":[],"content":[]}`,
			wantFamily: FamilyRollLabel,
		},
		{
			name:       "empty first array is unknown",
			payload:    `[[],[{"hash":"x","value":"1"}],[]]`,
			wantFamily: FamilyUnknown,
		},
		{
			name:       "non object first element is unknown",
			payload:    `[["just a string"],[],[]]`,
			wantFamily: FamilyUnknown,
		},
		{
			name:       "unrecognized keys are unknown",
			payload:    `[[{"foo":1,"bar":2}],[],[]]`,
			wantFamily: FamilyUnknown,
		},
		{
			name:       "regular needs all three keys",
			payload:    `[[{"id":1,"name":"x"}],[],[]]`,
			wantFamily: FamilyUnknown,
		},
		{
			name:       "opt_val_id disqualifies regular",
			payload:    `[[{"id":1,"group":"g","name":"n","opt_val_id":9}],[],[]]`,
			wantFamily: FamilyUnknown,
		},
		{
			name:       "scalar payload is unknown",
			payload:    `"nothing here"`,
			wantFamily: FamilyUnknown,
		},
		{
			name:       "empty object is unknown",
			payload:    `{}`,
			wantFamily: FamilyUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(json.RawMessage(tt.payload))
			assert.Equal(t, tt.wantFamily, d.Family)
		})
	}
}

func TestClassify_SectionsPreserveDocumentOrder(t *testing.T) {
	// Non-array properties are skipped; array-valued properties are taken in
	// the order they appear in the document, not map iteration order.
	payload := `{
		"status": "ok",
		"zz_first": [{"id":1,"group":"size","name":"2x2"}],
		"aa_second": [{"hash":"h1","value":"9.99"}],
		"count": 3,
		"mm_third": [{"note":"m"}]
	}`

	d := Classify(json.RawMessage(payload))
	require.Equal(t, FamilyRegular, d.Family)
	require.Len(t, d.Options, 1)
	require.Len(t, d.Pricing, 1)
	require.Len(t, d.Contents, 1)

	obj, ok := DecodeObject(d.Pricing[0])
	require.True(t, ok)
	assert.Equal(t, "h1", obj.String("hash"))

	obj, ok = DecodeObject(d.Contents[0])
	require.True(t, ok)
	assert.Equal(t, "m", obj.String("note"))
}

func TestClassify_OnlyFirstElementDecides(t *testing.T) {
	// A malformed leading element makes the whole pair unknown even when the
	// rest of the array matches a family. Intentional: the vendor keeps these
	// arrays homogeneous.
	payload := `[[{"weird":true},{"id":1,"group":"g","name":"n"}],[],[]]`
	d := Classify(json.RawMessage(payload))
	assert.Equal(t, FamilyUnknown, d.Family)
}

func TestClassify_MoreThanThreeArrays(t *testing.T) {
	payload := `{"a":[{"id":1,"group":"g","name":"n"}],"b":[],"c":[],"d":[{"ignored":true}]}`
	d := Classify(json.RawMessage(payload))
	assert.Equal(t, FamilyRegular, d.Family)
	assert.Empty(t, d.Pricing)
	assert.Empty(t, d.Contents)
}
