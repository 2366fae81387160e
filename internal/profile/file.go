package profile

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/soar/padmapper/internal/dpad"
)

const (
	rootElement = "gamecontroller"

	// ConfigVersion is written to every saved profile.
	ConfigVersion = 19
)

// AppVersion is the application version stamped into saved profiles.
var AppVersion = "1.0.0"

// LoadError reports a profile file that could not be read.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load profile %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadFile replaces the profile with the contents of path.
func (d *Device) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	if err := d.Load(f); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	d.log.Info().Str("path", path).Int("sets", d.usedSets()).Msg("profile loaded")
	return nil
}

// SaveFile writes the profile to path through a temporary file in the same
// directory, so readers never see a partial file. Missing parent
// directories are created.
func (d *Device) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := d.Save(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	d.ClearEdited()
	d.log.Info().Str("path", path).Msg("profile saved")
	return nil
}

// Load replaces the profile with the document read from r. The document is
// decoded into detached resolvers first; on any error the current profile,
// its held buttons and its edited flag are left as they were. Unknown
// elements and bad values are skipped; only malformed XML or a foreign root
// element fail.
func (d *Device) Load(r io.Reader) error {
	st := &staging{d: d}
	for i := range st.sets {
		st.sets[i] = make(map[int]*dpad.Resolver)
	}
	if err := st.decode(r); err != nil {
		return err
	}

	d.ReleaseAll()
	d.sets = st.sets
	if st.hasName {
		d.name = st.name
	}
	d.active = 0
	d.pending = nil
	for set := range d.sets {
		for _, res := range d.sets[set] {
			res.SetListener(listener{d})
		}
	}
	d.ClearEdited()
	return nil
}

// staging collects a decoded document before it replaces a device's sets.
type staging struct {
	d       *Device
	name    string
	hasName bool
	sets    [NumSets]map[int]*dpad.Resolver
}

func (st *staging) decode(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("no %s element", rootElement)
			}
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != rootElement {
			return fmt.Errorf("unexpected root element %q", start.Name.Local)
		}
		st.d.checkVersion(start)
		return st.readRoot(dec)
	}
}

func (st *staging) resolver(set, index int) *dpad.Resolver {
	if r, ok := st.sets[set][index]; ok {
		return r
	}
	r := st.d.newResolver(set, index, dpad.NopListener{})
	st.sets[set][index] = r
	return r
}

func (d *Device) checkVersion(start xml.StartElement) {
	raw := dpad.Attr(start, "appversion")
	if raw == "" {
		return
	}
	written, err := semver.NewVersion(raw)
	if err != nil {
		d.log.Warn().Str("appversion", raw).Msg("unparseable profile appversion")
		return
	}
	current, err := semver.NewVersion(AppVersion)
	if err != nil {
		return
	}
	if written.GreaterThan(current) {
		d.log.Warn().
			Stringer("profile", written).
			Stringer("running", current).
			Msg("profile was written by a newer version, loading what is understood")
	}
}

func (st *staging) readRoot(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				name, err := dpad.ReadText(dec, t)
				if err != nil {
					return err
				}
				st.name, st.hasName = name, true
			case "sets":
				err = st.readSets(dec)
			case dpad.XMLName:
				// Profiles without sets keep their D-pads at the top level.
				err = st.readResolver(dec, t, 0)
			default:
				err = dec.Skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (st *staging) readSets(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n, convErr := strconv.Atoi(dpad.Attr(t, "index"))
			if t.Name.Local != "set" || convErr != nil || n < 1 || n > NumSets {
				err = dec.Skip()
			} else {
				err = st.readSet(dec, n-1)
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (st *staging) readSet(dec *xml.Decoder, set int) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == dpad.XMLName {
				err = st.readResolver(dec, t, set)
			} else {
				err = dec.Skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (st *staging) readResolver(dec *xml.Decoder, start xml.StartElement, set int) error {
	n, err := strconv.Atoi(dpad.Attr(start, "index"))
	if err != nil || n < 1 {
		return dec.Skip()
	}
	return st.resolver(set, n-1).ReadConfig(dec, start)
}

// Save writes the profile as an indented XML document. Sets without any
// configuration are omitted.
func (d *Device) Save(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: rootElement},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "configversion"}, Value: strconv.Itoa(ConfigVersion)},
			{Name: xml.Name{Local: "appversion"}, Value: AppVersion},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if d.name != "" {
		if err := dpad.WriteTextElement(enc, "name", d.name); err != nil {
			return err
		}
	}

	sets := xml.StartElement{Name: xml.Name{Local: "sets"}}
	if err := enc.EncodeToken(sets); err != nil {
		return err
	}
	for set := range d.sets {
		if d.setIsDefault(set) {
			continue
		}
		el := xml.StartElement{
			Name: xml.Name{Local: "set"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "index"}, Value: strconv.Itoa(set + 1)}},
		}
		if err := enc.EncodeToken(el); err != nil {
			return err
		}
		for _, r := range d.Resolvers(set) {
			if err := r.WriteConfig(enc); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(el.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(sets.End()); err != nil {
		return err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (d *Device) usedSets() int {
	n := 0
	for set := range d.sets {
		if !d.setIsDefault(set) {
			n++
		}
	}
	return n
}
