package allocerr

import (
	"errors"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  *StandardError
		cat  Category
		code string
	}{
		{"SizeOutOfRange", SizeOutOfRange(0, 100), CategoryValidation, "SIZE_OUT_OF_RANGE"},
		{"ZallocOverflow", ZallocOverflow(1<<40, 1<<40), CategoryValidation, "ZALLOC_OVERFLOW"},
		{"OSExtendFail", OSExtendFail(4096, errors.New("boom")), CategorySystem, "OS_EXTEND_FAIL"},
		{"OSMapFail", OSMapFail(4096, errors.New("boom")), CategorySystem, "OS_MAP_FAIL"},
		{"UnknownPointer", UnknownPointer("free"), CategoryMemory, "UNKNOWN_POINTER"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.err.Category != c.cat {
				t.Errorf("Category = %v, want %v", c.err.Category, c.cat)
			}

			if c.err.Code != c.code {
				t.Errorf("Code = %v, want %v", c.err.Code, c.code)
			}

			if c.err.Error() == "" {
				t.Error("Error() should not be empty")
			}
		})
	}
}
