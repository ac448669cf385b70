package features

import (
	"net/url"
	"reflect"
	"testing"
)

func TestScheduleOrderAndCopy(t *testing.T) {
	s := Schedule()
	if len(s) != 20 || Len() != 20 {
		t.Fatalf("expected 20 features, got %d", len(s))
	}
	if s[0] != "anxiety_level" || s[6] != "sleep_quality" || s[19] != "bullying" {
		t.Fatalf("unexpected schedule order: %v", s)
	}
	s[0] = "mutated"
	if Schedule()[0] != "anxiety_level" {
		t.Fatalf("Schedule must return a copy")
	}
}

func TestCollectDefaultsAndPassThrough(t *testing.T) {
	src := Map{
		"anxiety_level":  " 9 ",
		"self_esteem":    "+3",
		"depression":     "abc",
		"headache":       "",
		"sleep_quality":  "0",
		"blood_pressure": "99",
		"bullying":       "-2",
		"study_load":     "7.5",
	}
	col := Collect(src)
	m := col.Vector.Map()

	tests := map[string]int{
		"anxiety_level":         9,
		"self_esteem":           3,
		"depression":            DefaultValue,
		"headache":              DefaultValue,
		"mental_health_history": DefaultValue,
		"sleep_quality":         0,
		"blood_pressure":        99,
		"bullying":              -2,
		"study_load":            DefaultValue,
	}
	for name, want := range tests {
		if m[name] != want {
			t.Fatalf("%s = %d, want %d", name, m[name], want)
		}
	}
	if !reflect.DeepEqual(col.OutOfRange, []string{"blood_pressure", "sleep_quality", "bullying"}) {
		t.Fatalf("unexpected out-of-range list: %v", col.OutOfRange)
	}
	if !reflect.DeepEqual(col.Malformed, []string{"depression", "study_load"}) {
		t.Fatalf("unexpected malformed list: %v", col.Malformed)
	}
	if len(col.Defaulted) != 20-5 {
		t.Fatalf("expected 15 defaulted, got %d: %v", len(col.Defaulted), col.Defaulted)
	}
}

func TestCollectEmptySource(t *testing.T) {
	for _, src := range []Source{nil, Map{}, Values(url.Values{})} {
		col := Collect(src)
		if len(col.Vector) != 20 {
			t.Fatalf("expected full vector, got %d", len(col.Vector))
		}
		for _, f := range col.Vector {
			if f.Value != DefaultValue {
				t.Fatalf("%s = %d, want default", f.Name, f.Value)
			}
		}
	}
}

func TestVectorOrderMatchesSchedule(t *testing.T) {
	col := Collect(Values(url.Values{"bullying": {"8"}, "anxiety_level": {"2"}}))
	floats := col.Vector.Floats()
	if floats[0] != 2 || floats[19] != 8 {
		t.Fatalf("unexpected floats: %v", floats)
	}
	for i, name := range Schedule() {
		if col.Vector[i].Name != name {
			t.Fatalf("position %d = %s, want %s", i, col.Vector[i].Name, name)
		}
	}
	if v, ok := col.Vector.Value("bullying"); !ok || v != 8 {
		t.Fatalf("Value(bullying) = %d, %v", v, ok)
	}
}
