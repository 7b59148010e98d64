package document

import (
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/tags"
)

// classDef describes one CLASS record.
type classDef struct {
	Name     string
	CppName  string
	AppName  string
	Flags    int
	IsEntity bool
}

var classDefs = map[string]classDef{
	"ACDBDICTIONARYWDFLT":     {"ACDBDICTIONARYWDFLT", "AcDbDictionaryWithDefault", "ObjectDBX Classes", 0, false},
	"SUN":                     {"SUN", "AcDbSun", "SCENEOE", 1153, false},
	"VISUALSTYLE":             {"VISUALSTYLE", "AcDbVisualStyle", "ObjectDBX Classes", 4095, false},
	"MATERIAL":                {"MATERIAL", "AcDbMaterial", "ObjectDBX Classes", 1153, false},
	"SCALE":                   {"SCALE", "AcDbScale", "ObjectDBX Classes", 1153, false},
	"TABLESTYLE":              {"TABLESTYLE", "AcDbTableStyle", "ObjectDBX Classes", 4095, false},
	"MLEADERSTYLE":            {"MLEADERSTYLE", "AcDbMLeaderStyle", "ACDB_MLEADERSTYLE_CLASS", 4095, false},
	"DICTIONARYVAR":           {"DICTIONARYVAR", "AcDbDictionaryVar", "ObjectDBX Classes", 0, false},
	"CELLSTYLEMAP":            {"CELLSTYLEMAP", "AcDbCellStyleMap", "ObjectDBX Classes", 1152, false},
	"MENTALRAYRENDERSETTINGS": {"MENTALRAYRENDERSETTINGS", "AcDbMentalRayRenderSettings", "SCENEOE", 1024, false},
	"ACDBDETAILVIEWSTYLE":     {"ACDBDETAILVIEWSTYLE", "AcDbDetailViewStyle", "ObjectDBX Classes", 1025, false},
	"ACDBSECTIONVIEWSTYLE":    {"ACDBSECTIONVIEWSTYLE", "AcDbSectionViewStyle", "ObjectDBX Classes", 1025, false},
	"RASTERVARIABLES":         {"RASTERVARIABLES", "AcDbRasterVariables", "ISM", 0, false},
	"ACDBPLACEHOLDER":         {"ACDBPLACEHOLDER", "AcDbPlaceHolder", "ObjectDBX Classes", 0, false},
	"LAYOUT":                  {"LAYOUT", "AcDbLayout", "ObjectDBX Classes", 0, false},
	"IMAGEDEF":                {"IMAGEDEF", "AcDbRasterImageDef", "ISM", 0, false},
	"IMAGEDEF_REACTOR":        {"IMAGEDEF_REACTOR", "AcDbRasterImageDefReactor", "ISM", 1, false},
	"WIPEOUTVARIABLES":        {"WIPEOUTVARIABLES", "AcDbWipeoutVariables", "WipeOut|AutoCAD Express Tool|expresstools@autodesk.com", 0, false},
	"GEODATA":                 {"GEODATA", "AcDbGeoData", "ObjectDBX Classes", 4095, false},
	"IMAGE":                   {"IMAGE", "AcDbRasterImage", "ISM", 2175, true},
	"WIPEOUT":                 {"WIPEOUT", "AcDbWipeout", "WipeOut|AutoCAD Express Tool|expresstools@autodesk.com", 127, true},
	"MULTILEADER":             {"MULTILEADER", "AcDbMLeader", "ACDB_MLEADER_CLASS", 3071, true},
	"MESH":                    {"MESH", "AcDbSubDMesh", "ObjectDBX Classes", 4095, true},
}

// requiredClasses are written to every R2000+ file.
var requiredClasses = []string{
	"ACDBDICTIONARYWDFLT", "SUN", "VISUALSTYLE", "MATERIAL", "SCALE",
	"TABLESTYLE", "MLEADERSTYLE", "DICTIONARYVAR", "CELLSTYLEMAP",
	"MENTALRAYRENDERSETTINGS", "ACDBDETAILVIEWSTYLE", "ACDBSECTIONVIEWSTYLE",
	"RASTERVARIABLES", "ACDBPLACEHOLDER", "LAYOUT",
}

// Classes is the CLASSES section. Loaded records are kept verbatim.
type Classes struct {
	records []tags.Tags
	index   map[string]int
}

func newClasses() *Classes {
	return &Classes{index: make(map[string]int)}
}

func loadClasses(records []tags.Tags) *Classes {
	c := newClasses()
	for _, r := range records {
		if r.Type() != "CLASS" {
			continue
		}
		c.add(r)
	}
	return c
}

func classKey(r tags.Tags) string {
	if t, ok := r.First(1); ok {
		return t.Str()
	}
	return ""
}

func (c *Classes) add(r tags.Tags) {
	key := classKey(r)
	if _, ok := c.index[key]; ok {
		return
	}
	c.index[key] = len(c.records)
	c.records = append(c.records, r)
}

// Has reports whether a class with the given DXF name exists.
func (c *Classes) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Len returns the number of classes.
func (c *Classes) Len() int { return len(c.records) }

// Names returns the class names in output order.
func (c *Classes) Names() []string {
	names := make([]string, len(c.records))
	for i, r := range c.records {
		names[i] = classKey(r)
	}
	return names
}

// AddClass adds the definition for an entity or object type, if known.
func (c *Classes) AddClass(typ string) bool {
	def, ok := classDefs[typ]
	if !ok || c.Has(def.Name) {
		return false
	}
	c.add(def.record())
	return true
}

// AddRequired adds the classes every R2000+ file must declare.
func (c *Classes) AddRequired(v dxfver.Version) {
	if !v.After(dxfver.R12) {
		return
	}
	for _, name := range requiredClasses {
		c.AddClass(name)
	}
}

func (d classDef) record() tags.Tags {
	isEntity := 0
	if d.IsEntity {
		isEntity = 1
	}
	return tags.Tags{
		tags.New(0, "CLASS"),
		tags.New(1, d.Name),
		tags.New(2, d.CppName),
		tags.New(3, d.AppName),
		tags.New(90, d.Flags),
		tags.New(91, 0),
		tags.New(280, 0),
		tags.New(281, isEntity),
	}
}

// content returns the CLASSES section body. The instance count (91) is
// only written for R2004 and later.
func (c *Classes) content(v dxfver.Version) tags.Tags {
	var out tags.Tags
	for _, r := range c.records {
		for _, t := range r {
			if t.Code == 91 && v.Before(dxfver.R2004) {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}
