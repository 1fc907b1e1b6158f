package compare

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Juan ", "juan"},
		{"  juan", "juan"},
		{"JUAN", "juan"},
		{"  ", ""},
		{"", ""},
		{"Acme Corp", "acme corp"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompareIntersection(t *testing.T) {
	a := []string{"Acme Corp", "Beta LLC", "Gamma SA"}
	b := []string{"acme corp", "Delta Inc", "GAMMA SA"}

	got := Compare(a, b)
	want := []string{"acme corp", "gamma sa"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compare = %v, want %v", got, want)
	}
}

func TestCompareCommutative(t *testing.T) {
	a := []string{"one", "Two", "three "}
	b := []string{"TWO", "three", "four"}

	ab := Compare(a, b)
	ba := Compare(b, a)
	if !reflect.DeepEqual(ab, ba) {
		t.Fatalf("Compare not commutative: %v vs %v", ab, ba)
	}
}

func TestCompareSelfIdempotent(t *testing.T) {
	a := []string{"x", "y", "Y ", "z"}

	got := Compare(a, a)
	want := NormalizeList(a)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compare(a, a) = %v, want %v", got, want)
	}
}

func TestCompareDuplicatesCollapse(t *testing.T) {
	a := []string{"Acme Corp", "acme corp", "ACME CORP"}
	b := []string{"acme corp"}

	got := Compare(a, b)
	if len(got) != 1 || got[0] != "acme corp" {
		t.Fatalf("Compare = %v, want single acme corp", got)
	}
}

func TestCompareDropsBlanks(t *testing.T) {
	a := []string{"", "  ", "real"}
	b := []string{"", "real", "   "}

	got := Compare(a, b)
	want := []string{"real"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compare = %v, want %v", got, want)
	}
}

func TestFirstColumn(t *testing.T) {
	rows := [][]string{
		{"Acme Corp", "extra"},
		{},
		{""},
		{"Beta LLC"},
	}
	got := FirstColumn(rows)
	want := []string{"Acme Corp", "Beta LLC"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FirstColumn = %v, want %v", got, want)
	}
}
