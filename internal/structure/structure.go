// Package structure groups a flat tag stream into named sections and
// records.
//
// Section boundaries are found by the (0, SECTION) / (0, ENDSEC) control
// tags, never by counting. Inside a section every run of tags starting at
// a (0, TYPE) marker forms one record; subclass markers stay inside their
// record. Tags before the first type marker of a section (the HEADER
// variables, for example) form the first record.
package structure

import (
	"log/slog"

	"github.com/roach88/dxfio/internal/tags"
)

// Section names the document manages itself.
const (
	Header   = "HEADER"
	Classes  = "CLASSES"
	Tables   = "TABLES"
	Blocks   = "BLOCKS"
	Entities = "ENTITIES"
	Objects  = "OBJECTS"
	AcDsData = "ACDSDATA"

	// Thumbnail is an embedded preview bitmap; it is dropped on load.
	Thumbnail = "THUMBNAILIMAGE"
)

var managed = map[string]bool{
	Header: true, Classes: true, Tables: true, Blocks: true,
	Entities: true, Objects: true, AcDsData: true,
}

// IsManaged reports whether name is parsed by the document rather than
// stored verbatim.
func IsManaged(name string) bool { return managed[name] }

// Section is one top-level section.
type Section struct {
	Name    string
	Records []tags.Tags
}

// Tags returns the section content in file order, without the framing
// SECTION/ENDSEC tags.
func (s *Section) Tags() tags.Tags {
	var out tags.Tags
	for _, r := range s.Records {
		out = append(out, r...)
	}
	return out
}

// Structure is the ordered list of sections of one file.
type Structure struct {
	Sections []*Section
	index    map[string]*Section
}

// Get returns the section called name, or nil.
func (st *Structure) Get(name string) *Section {
	return st.index[name]
}

// Names returns section names in file order.
func (st *Structure) Names() []string {
	names := make([]string, len(st.Sections))
	for i, s := range st.Sections {
		names[i] = s.Name
	}
	return names
}

func (st *Structure) add(s *Section) {
	if prev, ok := st.index[s.Name]; ok {
		// a repeated section continues the first one
		slog.Warn("merging repeated section", "section", s.Name)
		prev.Records = append(prev.Records, s.Records...)
		return
	}
	st.index[s.Name] = s
	st.Sections = append(st.Sections, s)
}

func isMarker(t tags.Tag, value string) bool {
	return t.Code == tags.CodeStructure && t.Str() == value
}

// Load reads the whole stream. Structural defects are returned as
// *tags.StructureError. A missing EOF marker is tolerated.
func Load(src tags.Stream) (*Structure, error) {
	st := &Structure{index: make(map[string]*Section)}
	var (
		current   *Section
		record    tags.Tags
		needName  bool
		tagNumber int
	)
	flush := func() {
		if len(record) > 0 {
			current.Records = append(current.Records, record)
			record = nil
		}
	}

	for t, err := range src {
		if err != nil {
			return nil, err
		}
		tagNumber++

		if needName {
			if t.Code != tags.CodeName {
				return nil, tags.NewStructureError("missing section name after SECTION (tag %d)", tagNumber)
			}
			current = &Section{Name: t.Str()}
			needName = false
			continue
		}

		if current == nil {
			switch {
			case isMarker(t, "SECTION"):
				needName = true
			case isMarker(t, "EOF"):
				return st, nil
			default:
				return nil, tags.NewStructureError("tag %s outside of a section (tag %d)", t, tagNumber)
			}
			continue
		}

		switch {
		case isMarker(t, "ENDSEC"):
			flush()
			if current.Name != Thumbnail {
				st.add(current)
			}
			current = nil
		case isMarker(t, "SECTION"):
			return nil, tags.NewStructureError("section %s not terminated before next SECTION", current.Name)
		case isMarker(t, "EOF"):
			return nil, tags.NewStructureError("section %s not terminated before EOF", current.Name)
		default:
			if t.Code == tags.CodeStructure {
				flush()
			}
			record = append(record, t)
		}
	}

	if needName {
		return nil, tags.NewStructureError("missing section name after SECTION")
	}
	if current != nil {
		return nil, tags.NewStructureError("section %s not terminated", current.Name)
	}
	return st, nil
}

// Export writes a section with its framing tags.
func Export(w tags.Writer, name string, content tags.Tags) {
	w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: "SECTION"})
	w.WriteTag(tags.Tag{Code: tags.CodeName, Value: name})
	tags.WriteAll(w, content)
	w.WriteTag(tags.Tag{Code: tags.CodeStructure, Value: "ENDSEC"})
}
