package employee

import (
	"errors"
	"testing"
)

func TestParseOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Order
	}{
		{"", DefaultOrder},
		{"   ", DefaultOrder},
		{"id ASC", Order{Column: SortByID}},
		{"last_name desc", Order{Column: SortByLastName, Descending: true}},
		{"SALARY", Order{Column: SortBySalary}},
		{"  date_hired   DESC ", Order{Column: SortByDateHired, Descending: true}},
	}

	for _, tc := range cases {
		got, err := ParseOrder(tc.raw)
		if err != nil {
			t.Fatalf("ParseOrder(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("ParseOrder(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestParseOrder_RejectsUnknownTokens(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"password",
		"id; DROP TABLE employees",
		"id ASC, email DESC",
		"id sideways",
		"id ASC NULLS",
		"(SELECT 1)",
	} {
		if _, err := ParseOrder(raw); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("ParseOrder(%q): expected ErrInvalidOrder, got %v", raw, err)
		}
	}
}

func TestOrderString(t *testing.T) {
	t.Parallel()

	if got := DefaultOrder.String(); got != "id ASC" {
		t.Fatalf("unexpected default order string: %s", got)
	}
	if got := (Order{Column: SortByEmail, Descending: true}).String(); got != "email DESC" {
		t.Fatalf("unexpected order string: %s", got)
	}
}
