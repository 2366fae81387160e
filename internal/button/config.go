package button

import (
	"encoding/xml"
	"strconv"

	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/joy"
	"github.com/soar/padmapper/internal/output"
)

// XMLName is the element a D-pad button is stored under.
const XMLName = "dpadbutton"

// ReadConfig reads the children of start and consumes its end tag. Unknown
// elements and malformed values are skipped.
func (b *Button) ReadConfig(dec *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := b.readElement(dec, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (b *Button) readElement(dec *xml.Decoder, el xml.StartElement) error {
	if el.Name.Local == "slots" {
		return b.readSlots(dec)
	}

	setter, ok := b.textSetters()[el.Name.Local]
	if !ok {
		return dec.Skip()
	}
	text, err := dpad.ReadText(dec, el)
	if err != nil {
		return err
	}
	setter(text)
	return nil
}

func (b *Button) textSetters() map[string]func(string) {
	withInt := func(set func(int)) func(string) {
		return func(s string) {
			if v, err := strconv.Atoi(s); err == nil {
				set(v)
			}
		}
	}
	withFloat := func(set func(float64)) func(string) {
		return func(s string) {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				set(v)
			}
		}
	}
	return map[string]func(string){
		"mousemode": func(s string) {
			switch s {
			case "spring":
				b.SetMouseMode(joy.MouseSpring)
			case "cursor":
				b.SetMouseMode(joy.MouseCursor)
			}
		},
		"mouseacceleration": func(s string) {
			if c, ok := joy.ParseMouseCurve(s); ok {
				b.SetMouseCurve(c)
			}
		},
		"extraaccelerationcurve": func(s string) {
			if c, ok := joy.ParseAccelCurve(s); ok {
				b.SetExtraAccelerationCurve(c)
			}
		},
		"relativespring": func(s string) {
			if v, err := strconv.ParseBool(s); err == nil {
				b.SetRelativeSpring(v)
			}
		},
		"springwidth":         withInt(b.SetSpringWidth),
		"springheight":        withInt(b.SetSpringHeight),
		"wheelspeedx":         withInt(b.SetWheelSpeedX),
		"wheelspeedy":         withInt(b.SetWheelSpeedY),
		"mousespeedx":         withInt(b.SetMouseSpeedX),
		"mousespeedy":         withInt(b.SetMouseSpeedY),
		"springreleaseradius": withInt(b.SetSpringDeadCircleMultiplier),
		"sensitivity":         withFloat(b.SetSensitivity),
		"easingduration":      withFloat(b.SetEasingDuration),
	}
}

func (b *Button) readSlots(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "slot" {
				if err := dec.Skip(); err != nil {
					return err
				}
				continue
			}
			var raw struct {
				Code string `xml:"code"`
				Mode string `xml:"mode"`
			}
			if err := dec.DecodeElement(&raw, &t); err != nil {
				return err
			}
			if slot, ok := parseSlot(raw.Code, raw.Mode); ok {
				b.AssignSlot(slot)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseSlot(code, mode string) (joy.Slot, bool) {
	m, ok := joy.ParseSlotMode(mode)
	if !ok {
		return joy.Slot{}, false
	}
	switch m {
	case joy.KeyboardSlot, joy.MouseButtonSlot:
		c, ok := output.KeyCode(code)
		if !ok {
			return joy.Slot{}, false
		}
		return joy.Slot{Code: c, Mode: m}, true
	case joy.MouseMovementSlot, joy.MouseWheelSlot:
		c, err := strconv.Atoi(code)
		if err != nil || c < joy.MoveUp || c > joy.MoveRight {
			return joy.Slot{}, false
		}
		return joy.Slot{Code: c, Mode: m}, true
	case joy.SetChangeSlot:
		c, err := strconv.Atoi(code)
		if err != nil || c < 0 {
			return joy.Slot{}, false
		}
		return joy.Slot{Code: c, Mode: m}, true
	}
	return joy.Slot{}, false
}

func formatSlotCode(s joy.Slot) string {
	if s.Mode == joy.KeyboardSlot || s.Mode == joy.MouseButtonSlot {
		return output.KeyName(s.Code)
	}
	return strconv.Itoa(s.Code)
}

// WriteConfig writes the button as a <dpadbutton> element keyed by its
// direction value. Only non-default values are written; a default button
// writes nothing.
func (b *Button) WriteConfig(enc *xml.Encoder) error {
	if b.IsDefault() {
		return nil
	}
	start := xml.StartElement{
		Name: xml.Name{Local: XMLName},
		Attr: []xml.Attr{{Name: xml.Name{Local: "index"}, Value: strconv.Itoa(int(b.dir))}},
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	def := defaultProperties()
	p := b.props
	fields := []struct {
		name  string
		skip  bool
		value string
	}{
		{"sensitivity", p.sensitivity == def.sensitivity, strconv.FormatFloat(p.sensitivity, 'g', -1, 64)},
		{"mousemode", p.mouseMode == def.mouseMode, p.mouseMode.String()},
		{"mouseacceleration", p.mouseCurve == def.mouseCurve, p.mouseCurve.String()},
		{"springwidth", p.springWidth == def.springWidth, strconv.Itoa(p.springWidth)},
		{"springheight", p.springHeight == def.springHeight, strconv.Itoa(p.springHeight)},
		{"relativespring", p.relativeSpring == def.relativeSpring, strconv.FormatBool(p.relativeSpring)},
		{"wheelspeedx", p.wheelSpeedX == def.wheelSpeedX, strconv.Itoa(p.wheelSpeedX)},
		{"wheelspeedy", p.wheelSpeedY == def.wheelSpeedY, strconv.Itoa(p.wheelSpeedY)},
		{"mousespeedx", p.mouseSpeedX == def.mouseSpeedX, strconv.Itoa(p.mouseSpeedX)},
		{"mousespeedy", p.mouseSpeedY == def.mouseSpeedY, strconv.Itoa(p.mouseSpeedY)},
		{"easingduration", p.easingDuration == def.easingDuration, strconv.FormatFloat(p.easingDuration, 'g', -1, 64)},
		{"springreleaseradius", p.springDeadCircle == def.springDeadCircle, strconv.Itoa(p.springDeadCircle)},
		{"extraaccelerationcurve", p.accelCurve == def.accelCurve, p.accelCurve.String()},
	}
	for _, f := range fields {
		if f.skip {
			continue
		}
		if err := dpad.WriteTextElement(enc, f.name, f.value); err != nil {
			return err
		}
	}

	if len(b.slots) > 0 {
		slots := xml.StartElement{Name: xml.Name{Local: "slots"}}
		if err := enc.EncodeToken(slots); err != nil {
			return err
		}
		for _, s := range b.slots {
			slot := xml.StartElement{Name: xml.Name{Local: "slot"}}
			if err := enc.EncodeToken(slot); err != nil {
				return err
			}
			if err := dpad.WriteTextElement(enc, "code", formatSlotCode(s)); err != nil {
				return err
			}
			if err := dpad.WriteTextElement(enc, "mode", s.Mode.String()); err != nil {
				return err
			}
			if err := enc.EncodeToken(slot.End()); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(slots.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
