// Package telegram implements the STAR wire codec (spec.md §4.2, component
// C2) and the identifier allocator (§4.3, component C3): encoding a command
// as `<module2><verb2>` plus zero or more `<tag2><value>` parameter fields,
// and decoding a reply against a caller-supplied format descriptor into a
// tag->value mapping.
package telegram

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Terminator ends every STAR telegram on the wire (spec.md §6.2).
const Terminator = "\r\n"

// idTag is auto-inserted into every outgoing command and must appear in
// every reply (spec.md §4.2, §4.3).
const idTag = "id"
const idWidth = 4

// Encoder builds one outgoing command. Use NewCommand, add parameter
// fields with Int/Hex/Ints/Hexs/Raw, then Encode to get the final bytes and
// the id that was assigned.
type Encoder struct {
	module, verb string
	fields       []string
}

// NewCommand starts a command for the given two-character module and verb
// codes.
func NewCommand(module, verb string) *Encoder {
	return &Encoder{module: module, verb: verb}
}

// Int appends a fixed-width zero-padded signed decimal field. Negative
// values spend one digit of width on the sign.
func (e *Encoder) Int(tag string, width int, v int) *Encoder {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
		width--
	}
	e.fields = append(e.fields, tag+sign+fmt.Sprintf("%0*d", width, v))
	return e
}

// Ints appends a repeated decimal field: one value per channel, space
// separated under a single tag (spec.md §4.2 "parameter pattern `name (n)`").
func (e *Encoder) Ints(tag string, width int, vs []int) *Encoder {
	parts := make([]string, len(vs))
	for i, v := range vs {
		sign := ""
		w := width
		if v < 0 {
			sign = "-"
			v = -v
			w--
		}
		parts[i] = sign + fmt.Sprintf("%0*d", w, v)
	}
	e.fields = append(e.fields, tag+strings.Join(parts, " "))
	return e
}

// Hex appends a fixed-width uppercase hex field.
func (e *Encoder) Hex(tag string, width int, v uint64) *Encoder {
	e.fields = append(e.fields, tag+fmt.Sprintf("%0*X", width, v))
	return e
}

// Hexs appends a repeated hex field.
func (e *Encoder) Hexs(tag string, width int, vs []uint64) *Encoder {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%0*X", width, v)
	}
	e.fields = append(e.fields, tag+strings.Join(parts, " "))
	return e
}

// Raw appends a field whose value is passed through verbatim (the `&`
// any-char descriptor kind decodes these).
func (e *Encoder) Raw(tag, value string) *Encoder {
	e.fields = append(e.fields, tag+value)
	return e
}

// Bool appends a 1-char "1"/"0" field, a common STAR idiom for per-channel
// boolean masks combined via Raw elsewhere; provided for single flags.
func (e *Encoder) Bool(tag string, v bool) *Encoder {
	if v {
		return e.Raw(tag, "1")
	}
	return e.Raw(tag, "0")
}

// Encode assembles the final command bytes, auto-inserting the id field
// right after the verb, and returns the id used.
func (e *Encoder) Encode(ids *IDGen) ([]byte, int) {
	id := ids.Next()
	var b strings.Builder
	b.WriteString(e.module)
	b.WriteString(e.verb)
	b.WriteString(fmt.Sprintf("%s%0*d", idTag, idWidth, id))
	for _, f := range e.fields {
		b.WriteString(f)
	}
	b.WriteString(Terminator)
	return []byte(b.String()), id
}

// ---- decoding ----

// FieldKind is the descriptor symbol kind of spec.md §4.2: `#` signed
// decimal, `*` hex, `&` any char.
type FieldKind int

const (
	KindDecimal FieldKind = iota
	KindHex
	KindAny
)

// Field is one parsed element of a format descriptor.
type Field struct {
	Tag      string
	Kind     FieldKind
	Width    int
	Repeated bool
}

var descriptorToken = regexp.MustCompile(`^([a-z]{2})([#*&]+)(\s*\(n\))?`)

// ParseDescriptor parses a format descriptor string into an ordered list of
// Fields. See star/telegram doc comment and spec.md §4.2 for the grammar.
func ParseDescriptor(desc string) ([]Field, error) {
	var fields []Field
	rest := strings.TrimSpace(desc)
	for rest != "" {
		m := descriptorToken.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("telegram: invalid format descriptor at %q", rest)
		}
		tag, symbols, repeatMark := m[1], m[2], m[3]
		var kind FieldKind
		switch symbols[0] {
		case '#':
			kind = KindDecimal
		case '*':
			kind = KindHex
		case '&':
			kind = KindAny
		}
		fields = append(fields, Field{
			Tag:      tag,
			Kind:     kind,
			Width:    len(symbols),
			Repeated: repeatMark != "",
		})
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	return fields, nil
}

// Response is the decoded tag->value mapping of a reply.
type Response struct {
	raw    string
	ints   map[string]int
	intsR  map[string][]int
	hexes  map[string]uint64
	hexesR map[string][]uint64
	strs   map[string]string
	strsR  map[string][]string
}

func newResponse(raw string) *Response {
	return &Response{
		raw:    raw,
		ints:   map[string]int{},
		intsR:  map[string][]int{},
		hexes:  map[string]uint64{},
		hexesR: map[string][]uint64{},
		strs:   map[string]string{},
		strsR:  map[string][]string{},
	}
}

// Raw returns the undecoded response string.
func (r *Response) Raw() string { return r.raw }

func (r *Response) Int(tag string) (int, bool)            { v, ok := r.ints[tag]; return v, ok }
func (r *Response) Ints(tag string) ([]int, bool)          { v, ok := r.intsR[tag]; return v, ok }
func (r *Response) Hex(tag string) (uint64, bool)          { v, ok := r.hexes[tag]; return v, ok }
func (r *Response) Hexes(tag string) ([]uint64, bool)      { v, ok := r.hexesR[tag]; return v, ok }
func (r *Response) Str(tag string) (string, bool)          { v, ok := r.strs[tag]; return v, ok }
func (r *Response) Strs(tag string) ([]string, bool)       { v, ok := r.strsR[tag]; return v, ok }

// ID returns the id field, extracted unconditionally per spec.md §4.2 even
// when the descriptor used to decode the rest of the reply omits it.
func (r *Response) ID() (int, error) {
	v, ok := r.ints[idTag]
	if !ok {
		return 0, fmt.Errorf("telegram: reply %q has no id field", r.raw)
	}
	return v, nil
}

func patternFor(f Field) string {
	var unit string
	switch f.Kind {
	case KindDecimal:
		unit = fmt.Sprintf(`[-+]?\d{%d}`, f.Width)
	case KindHex:
		unit = fmt.Sprintf(`[0-9A-Fa-f]{%d}`, f.Width)
	default:
		if f.Width <= 1 {
			// A single `&` is a string of unknown length: read up to the
			// next field boundary (whitespace or end of string).
			unit = `\S*`
		} else {
			unit = fmt.Sprintf(`.{%d}`, f.Width)
		}
	}
	if f.Repeated {
		return `(` + unit + `(?:\s+` + unit + `)*)`
	}
	return `(` + unit + `)`
}

// Decode decodes resp against the given format descriptor, returning a
// tag->value mapping. The id field is always extracted even if descriptor
// does not mention it. Decoding fails with the offending tag named if any
// field of the descriptor, repeated or not, is absent.
func Decode(descriptor, resp string) (*Response, error) {
	fields, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	hasID := false
	for _, f := range fields {
		if f.Tag == idTag {
			hasID = true
		}
	}
	if !hasID {
		fields = append(fields, Field{Tag: idTag, Kind: KindDecimal, Width: idWidth})
	}

	r := newResponse(resp)
	for _, f := range fields {
		re := regexp.MustCompile(regexp.QuoteMeta(f.Tag) + patternFor(f))
		m := re.FindStringSubmatch(resp)
		if m == nil {
			if f.Tag == idTag {
				return nil, fmt.Errorf("telegram: reply %q missing required tag %q", resp, f.Tag)
			}
			return nil, fmt.Errorf("telegram: reply %q missing required tag %q", resp, f.Tag)
		}
		value := m[1]
		if err := storeField(r, f, value); err != nil {
			return nil, fmt.Errorf("telegram: tag %q: %w", f.Tag, err)
		}
	}
	return r, nil
}

func storeField(r *Response, f Field, value string) error {
	switch f.Kind {
	case KindDecimal:
		if f.Repeated {
			parts := strings.Fields(value)
			out := make([]int, len(parts))
			for i, p := range parts {
				n, err := strconv.Atoi(p)
				if err != nil {
					return err
				}
				out[i] = n
			}
			r.intsR[f.Tag] = out
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		r.ints[f.Tag] = n
		return nil
	case KindHex:
		if f.Repeated {
			parts := strings.Fields(value)
			out := make([]uint64, len(parts))
			for i, p := range parts {
				n, err := strconv.ParseUint(p, 16, 64)
				if err != nil {
					return err
				}
				out[i] = n
			}
			r.hexesR[f.Tag] = out
			return nil
		}
		n, err := strconv.ParseUint(value, 16, 64)
		if err != nil {
			return err
		}
		r.hexes[f.Tag] = n
		return nil
	default:
		if f.Repeated {
			r.strsR[f.Tag] = strings.Fields(value)
			return nil
		}
		r.strs[f.Tag] = value
		return nil
	}
}
