package utils

import (
	"reflect"
	"testing"
)

func TestParseQueryList(t *testing.T) {
	tests := []struct {
		name string
		q    map[string][]string
		key  string
		want []string
	}{
		{"missing key", map[string][]string{}, "category", nil},
		{"single value", map[string][]string{"category": {"Cafe"}}, "category", []string{"Cafe"}},
		{"comma separated", map[string][]string{"category": {"Cafe,Bakery"}}, "category", []string{"Cafe", "Bakery"}},
		{"comma separated with spaces", map[string][]string{"category": {"Cafe, Bakery , Bar"}}, "category", []string{"Cafe", "Bakery", "Bar"}},
		{"repeated params", map[string][]string{"category": {"Cafe", "Bakery"}}, "category", []string{"Cafe", "Bakery"}},
		{"repeated params trimmed", map[string][]string{"category": {" Cafe ", "Bakery"}}, "category", []string{"Cafe", "Bakery"}},
	}

	for _, tt := range tests {
		got := ParseQueryList(tt.q, tt.key)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: ParseQueryList = %v; want %v", tt.name, got, tt.want)
		}
	}
}
