package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    Item
		wantErr bool
	}{
		{raw: "credits:gte:3", want: Item{Field: "credits", Operator: GreaterOrEqual, Value: "3"}},
		{raw: "code:in:CS101,CS102", want: Item{Field: "code", Operator: InList, Value: []string{"CS101", "CS102"}}},
		{raw: "professor_id:null", want: Item{Field: "professor_id", Operator: IsNull}},
		{raw: "title:contains:a:b", want: Item{Field: "title", Operator: Contains, Value: "a:b"}},
		{raw: "credits", wantErr: true},
		{raw: "credits:between:1", wantErr: true},
		{raw: "credits:eq", wantErr: true},
		{raw: ":eq:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
