package dpad

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// XMLName is the element a resolver is stored under.
const XMLName = "dpad"

// ReadConfig reads the children of start, which must be a <dpad> element,
// and consumes its end tag. Unknown elements, unknown button indices and
// out of range values are skipped. Only malformed XML is an error.
func (r *Resolver) ReadConfig(dec *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := r.readElement(dec, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (r *Resolver) readElement(dec *xml.Decoder, el xml.StartElement) error {
	switch el.Name.Local {
	case "dpadbutton":
		idx, err := strconv.Atoi(Attr(el, "index"))
		if err != nil || idx < 0 || idx > int(LeftDown) {
			return dec.Skip()
		}
		b, ok := r.Button(Direction(idx))
		if !ok {
			return dec.Skip()
		}
		return b.ReadConfig(dec, el)
	case "mode":
		text, err := ReadText(dec, el)
		if err != nil {
			return err
		}
		if mode, ok := ParseMode(text); ok {
			r.SetMode(mode)
		}
	case "dpadDelay":
		text, err := ReadText(dec, el)
		if err != nil {
			return err
		}
		if ms, err := strconv.Atoi(text); err == nil {
			r.SetDelay(ms)
		}
	default:
		return dec.Skip()
	}
	return nil
}

// WriteConfig writes the resolver as a <dpad> element. A default resolver
// writes nothing.
func (r *Resolver) WriteConfig(enc *xml.Encoder) error {
	if r.IsDefault() {
		return nil
	}
	start := xml.StartElement{
		Name: xml.Name{Local: XMLName},
		Attr: []xml.Attr{{Name: xml.Name{Local: "index"}, Value: strconv.Itoa(r.index + 1)}},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if r.mode != StandardMode {
		if err := WriteTextElement(enc, "mode", r.mode.String()); err != nil {
			return err
		}
	}
	if r.delay > DefaultDelay {
		if err := WriteTextElement(enc, "dpadDelay", strconv.Itoa(r.delay)); err != nil {
			return err
		}
	}
	for _, b := range r.Buttons() {
		if err := b.WriteConfig(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Attr returns the value of the named attribute, or "".
func Attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// ReadText consumes el and returns its trimmed character data.
func ReadText(dec *xml.Decoder, el xml.StartElement) (string, error) {
	var s string
	if err := dec.DecodeElement(&s, &el); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// WriteTextElement writes <name>value</name>.
func WriteTextElement(enc *xml.Encoder, name, value string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(value)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
