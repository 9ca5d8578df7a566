package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	old := map[string]interface{}{
		"title": "A",
		"views": float64(5),
		"tags":  []interface{}{"go", "db"},
	}

	tests := []struct {
		name     string
		proposed map[string]interface{}
		want     []string
	}{
		{
			name:     "changed value",
			proposed: map[string]interface{}{"views": float64(6)},
			want:     []string{"views"},
		},
		{
			name:     "equal value omitted",
			proposed: map[string]interface{}{"title": "A"},
			want:     nil,
		},
		{
			name:     "new field",
			proposed: map[string]interface{}{"author": "bob"},
			want:     []string{"author"},
		},
		{
			name:     "nested equality by canonical json",
			proposed: map[string]interface{}{"tags": []interface{}{"go", "db"}},
			want:     nil,
		},
		{
			name: "keys absent from proposed are ignored",
			proposed: map[string]interface{}{
				"views": float64(5),
				"tags":  []interface{}{"go"},
			},
			want: []string{"tags"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			diff := Diff(old, test.proposed)
			assert.Len(t, diff, len(test.want))
			for _, field := range test.want {
				assert.Contains(t, diff, field)
			}
		})
	}
}

func TestDiffOldAndNewValues(t *testing.T) {
	diff := Diff(
		map[string]interface{}{"views": float64(5)},
		map[string]interface{}{"views": float64(6)},
	)

	change, ok := diff["views"]
	assert.True(t, ok)
	assert.Equal(t, float64(5), change.Old)
	assert.Equal(t, float64(6), change.New)

	// a field that did not exist before has a nil old value
	diff = Diff(map[string]interface{}{}, map[string]interface{}{"author": "bob"})
	assert.Nil(t, diff["author"].Old)
	assert.Equal(t, "bob", diff["author"].New)
}

func TestPerformerResolve(t *testing.T) {
	tests := []struct {
		name      string
		performer Performer
		want      string
	}{
		{"user id wins", Performer{UserID: "u1", APIKey: "k1", SessionID: "s1"}, "u1"},
		{"api key next", Performer{APIKey: "k1", SessionID: "s1"}, "k1"},
		{"session id next", Performer{SessionID: "s1"}, "s1"},
		{"system fallback", Performer{}, PerformerSystem},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.performer.Resolve())
		})
	}
}
