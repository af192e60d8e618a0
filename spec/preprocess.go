package spec

import (
	"bytes"

	verr "github.com/nihei9/lalrgen/error"
)

const (
	ppIfdef  = "%ifdef"
	ppIfndef = "%ifndef"
	ppEndif  = "%endif"
)

// Preprocess evaluates `%ifdef`, `%ifndef`, and `%endif` lines against the defined macro names.
// Directive lines and excluded text are replaced with spaces. Newlines are kept, so rows in the
// result match rows in src.
func Preprocess(src []byte, defines []string) ([]byte, error) {
	defined := map[string]struct{}{}
	for _, d := range defines {
		defined[d] = struct{}{}
	}

	var b bytes.Buffer
	exclude := 0
	startRow := 0
	for i, line := range bytes.SplitAfter(src, []byte("\n")) {
		row := i + 1
		kw, arg := ppDirective(line)
		switch kw {
		case ppEndif:
			if exclude > 0 {
				exclude--
			}
			b.Write(blankLine(line))
			continue
		case ppIfdef, ppIfndef:
			if exclude > 0 {
				exclude++
			} else {
				// A missing macro name is never defined.
				ok := false
				if arg != "" {
					_, ok = defined[arg]
				}
				if kw == ppIfndef {
					ok = !ok
				}
				if !ok {
					exclude = 1
					startRow = row
					tracer().Debugf("row %v: %v %v excludes the block", row, kw, arg)
				}
			}
			b.Write(blankLine(line))
			continue
		}

		if exclude > 0 {
			b.Write(blankLine(line))
		} else {
			b.Write(line)
		}
	}
	if exclude > 0 {
		return nil, &verr.SpecError{
			Cause: synErrUnclosedIfdef,
			Row:   startRow,
		}
	}

	return b.Bytes(), nil
}

// ppDirective recognizes a preprocessor keyword at the very start of a line.
func ppDirective(line []byte) (string, string) {
	if len(line) == 0 || line[0] != '%' {
		return "", ""
	}
	fields := bytes.Fields(line)
	switch kw := string(fields[0]); kw {
	case ppIfdef, ppIfndef, ppEndif:
		if len(fields) < 2 {
			return kw, ""
		}
		return kw, string(fields[1])
	}
	return "", ""
}

func blankLine(line []byte) []byte {
	blank := make([]byte, len(line))
	for i, c := range line {
		if c == '\n' {
			blank[i] = c
			continue
		}
		blank[i] = ' '
	}
	return blank
}
