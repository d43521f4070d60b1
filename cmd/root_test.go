package cmd

import (
	"bytes"
	"testing"

	"github.com/xstream-util/xstream/internal/pool"
)

func TestDelimitersDefault(t *testing.T) {
	d, w := delimiters(false, &Options{Delimiter: `\n`})
	if string(d) != "\n" {
		t.Errorf("delimiter = %q, want newline", d)
	}
	if w != nil {
		t.Errorf("write delimiter = %q, want nil", w)
	}
}

func TestDelimitersNullFlag(t *testing.T) {
	d, _ := delimiters(false, &Options{Null: true, Delimiter: `\n`})
	if !bytes.Equal(d, []byte{0}) {
		t.Errorf("delimiter = %q, want null byte", d)
	}
}

func TestDelimitersEmptyStringMeansNull(t *testing.T) {
	d, _ := delimiters(false, &Options{Delimiter: ""})
	if !bytes.Equal(d, []byte{0}) {
		t.Errorf("delimiter = %q, want null byte", d)
	}
}

func TestDelimitersExplicitEmptyWriteDelim(t *testing.T) {
	// -w '' was given: substitute with nothing, distinct from unset.
	_, w := delimiters(true, &Options{Delimiter: `\n`})
	if w == nil || len(w) != 0 {
		t.Errorf("write delimiter = %v, want empty non-nil", w)
	}
}

func TestDelimitersEscapedWriteDelim(t *testing.T) {
	_, w := delimiters(false, &Options{Delimiter: `\n`, WriteDelimiter: `\t`})
	if string(w) != "\t" {
		t.Errorf("write delimiter = %q, want tab", w)
	}
}

func TestNewPoolStrategies(t *testing.T) {
	template := pool.Template{Path: "true"}

	if p, err := newPool(strategyLimit, template, 1, nil); err != nil {
		t.Fatalf("newPool(limit) failed: %v", err)
	} else if _, ok := p.(*pool.Limiting); !ok {
		t.Errorf("newPool(limit) = %T, want *pool.Limiting", p)
	}

	if p, err := newPool(strategyRotate, template, 1, nil); err != nil {
		t.Fatalf("newPool(rotate) failed: %v", err)
	} else if _, ok := p.(*pool.Rotating); !ok {
		t.Errorf("newPool(rotate) = %T, want *pool.Rotating", p)
	}

	if p, err := newPool(strategyEager, template, 1, nil); err != nil {
		t.Fatalf("newPool(eager) failed: %v", err)
	} else if _, ok := p.(*pool.Eager); !ok {
		t.Errorf("newPool(eager) = %T, want *pool.Eager", p)
	}

	if _, err := newPool("bogus", template, 1, nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
