package yamlutil

import (
	"bytes"
	"errors"
	"testing"
)

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	type doc struct {
		Name  string `yaml:"name"`
		Count int    `yaml:"count"`
	}

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		var d doc
		err := UnmarshalStrict([]byte("name: demo\ncount: 4\n"), &d)
		if err != nil {
			t.Fatalf("UnmarshalStrict() error = %v", err)
		}
		if d.Name != "demo" || d.Count != 4 {
			t.Errorf("unexpected result %+v", d)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		var d doc
		if err := UnmarshalStrict([]byte("name: demo\nextra: field\n"), &d); err == nil {
			t.Error("unknown field accepted")
		}
	})

	t.Run("empty data", func(t *testing.T) {
		t.Parallel()

		var d doc
		if err := UnmarshalStrict(nil, &d); !errors.Is(err, ErrNilData) {
			t.Errorf("error = %v, want ErrNilData", err)
		}
	})

	t.Run("nil destination", func(t *testing.T) {
		t.Parallel()

		if err := UnmarshalStrict([]byte("name: x"), nil); !errors.Is(err, ErrNilDestination) {
			t.Errorf("error = %v, want ErrNilDestination", err)
		}
	})

	t.Run("oversized input", func(t *testing.T) {
		t.Parallel()

		var d doc
		data := bytes.Repeat([]byte("a"), MaxInputSize+1)
		if err := UnmarshalStrict(data, &d); !errors.Is(err, ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		var d doc
		if err := UnmarshalStrict([]byte("name: [unclosed"), &d); err == nil {
			t.Error("malformed input accepted")
		}
	})
}
