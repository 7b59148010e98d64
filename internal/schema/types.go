package schema

import (
	"github.com/roach88/dxfio/internal/dxfver"
	"github.com/roach88/dxfio/internal/tags"
)

var (
	origin = tags.Vec3(0, 0, 0)
	xAxis  = tags.Vec3(1, 0, 0)
	yAxis  = tags.Vec3(0, 1, 0)
	zAxis  = tags.Vec3(0, 0, 1)
)

var entitySubclass = Subclass{Marker: "AcDbEntity", Attrs: []Attr{
	{Code: 67},
	{Code: 8, Default: "0"},
	{Code: 6},
	{Code: 62},
	{Code: 370, Min: dxfver.R2000},
}}

var recordSubclass = Subclass{Marker: "AcDbSymbolTableRecord"}

func def(typ string, graphical bool, min dxfver.Version, scs ...Subclass) *Def {
	return &Def{Type: typ, Subclasses: scs, Graphical: graphical, Min: min}
}

var registry = map[string]*Def{}

func register(d *Def) { registry[d.Type] = d }

func init() {
	// graphical entities
	register(def("LINE", true, "", entitySubclass, Subclass{Marker: "AcDbLine", Attrs: []Attr{
		{Code: 39},
		{Code: 10, Default: origin},
		{Code: 11, Default: origin},
		{Code: 210},
	}}))
	register(def("CIRCLE", true, "", entitySubclass, Subclass{Marker: "AcDbCircle", Attrs: []Attr{
		{Code: 39},
		{Code: 10, Default: origin},
		{Code: 40, Default: 1.0},
		{Code: 210},
	}}))
	register(def("ARC", true, "", entitySubclass,
		Subclass{Marker: "AcDbCircle", Attrs: []Attr{
			{Code: 39},
			{Code: 10, Default: origin},
			{Code: 40, Default: 1.0},
			{Code: 210},
		}},
		Subclass{Marker: "AcDbArc", Attrs: []Attr{
			{Code: 50, Default: 0.0},
			{Code: 51, Default: 360.0},
		}},
	))
	register(def("POINT", true, "", entitySubclass, Subclass{Marker: "AcDbPoint", Attrs: []Attr{
		{Code: 10, Default: origin},
	}}))
	register(def("BLOCK", false, "", entitySubclass, Subclass{Marker: "AcDbBlockBegin", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 10, Default: origin},
		{Code: 3},
		{Code: 1, Default: ""},
	}}))
	register(def("ENDBLK", false, "", entitySubclass, Subclass{Marker: "AcDbBlockEnd"}))

	// table heads and entries
	register(def("TABLE", false, "", Subclass{Marker: "AcDbSymbolTable", Attrs: []Attr{
		{Code: 70, Default: 0},
	}}))
	register(def("VPORT", false, "", recordSubclass, Subclass{Marker: "AcDbViewportTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 10, Default: tags.Vec2(0, 0)},
		{Code: 11, Default: tags.Vec2(1, 1)},
		{Code: 12, Default: tags.Vec2(0, 0)},
		{Code: 13, Default: tags.Vec2(0, 0)},
		{Code: 14, Default: tags.Vec2(0.5, 0.5)},
		{Code: 15, Default: tags.Vec2(0.5, 0.5)},
		{Code: 16, Default: zAxis},
		{Code: 17, Default: origin},
		{Code: 40, Default: 1.0},
		{Code: 41, Default: 1.34},
		{Code: 42, Default: 50.0},
		{Code: 43, Default: 0.0},
		{Code: 44, Default: 0.0},
		{Code: 50, Default: 0.0},
		{Code: 51, Default: 0.0},
		{Code: 71, Default: 0},
		{Code: 72, Default: 1000},
		{Code: 73, Default: 1},
		{Code: 74, Default: 3},
		{Code: 75, Default: 0},
		{Code: 76, Default: 0},
		{Code: 77, Default: 0},
		{Code: 78, Default: 0},
	}}))
	register(def("LTYPE", false, "", recordSubclass, Subclass{Marker: "AcDbLinetypeTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 3, Default: ""},
		{Code: 72, Default: 65},
		{Code: 73, Default: 0},
		{Code: 40, Default: 0.0},
	}}))
	register(def("LAYER", false, "", recordSubclass, Subclass{Marker: "AcDbLayerTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 62, Default: 7},
		{Code: 6, Default: "Continuous"},
		{Code: 290, Min: dxfver.R2000},
		{Code: 370, Default: -3, Min: dxfver.R2000},
		{Code: 390, Min: dxfver.R2000},
		{Code: 347, Min: dxfver.R2007},
	}}))
	register(def("STYLE", false, "", recordSubclass, Subclass{Marker: "AcDbTextStyleTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 40, Default: 0.0},
		{Code: 41, Default: 1.0},
		{Code: 50, Default: 0.0},
		{Code: 71, Default: 0},
		{Code: 42, Default: 2.5},
		{Code: 3, Default: "txt"},
		{Code: 4, Default: ""},
	}}))
	register(def("VIEW", false, "", recordSubclass, Subclass{Marker: "AcDbViewTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 40, Default: 1.0},
		{Code: 10, Default: tags.Vec2(0, 0)},
		{Code: 41, Default: 1.0},
		{Code: 11, Default: zAxis},
		{Code: 12, Default: origin},
		{Code: 42, Default: 50.0},
		{Code: 43, Default: 0.0},
		{Code: 44, Default: 0.0},
		{Code: 50, Default: 0.0},
		{Code: 71, Default: 0},
	}}))
	register(def("UCS", false, "", recordSubclass, Subclass{Marker: "AcDbUCSTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 10, Default: origin},
		{Code: 11, Default: xAxis},
		{Code: 12, Default: yAxis},
	}}))
	register(def("APPID", false, "", recordSubclass, Subclass{Marker: "AcDbRegAppTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
	}}))
	register(def("DIMSTYLE", false, "", recordSubclass, Subclass{Marker: "AcDbDimStyleTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 3, Default: ""},
		{Code: 4, Default: ""},
		{Code: 40, Default: 1.0},
		{Code: 41, Default: 2.5},
		{Code: 42, Default: 0.625},
		{Code: 43, Default: 3.75},
		{Code: 44, Default: 1.25},
		{Code: 140, Default: 2.5},
		{Code: 141, Default: 2.5},
		{Code: 147, Default: 0.625},
		{Code: 77, Default: 1},
		{Code: 78, Default: 8},
		{Code: 271, Default: 2, Min: dxfver.R2000},
		{Code: 272, Default: 2, Min: dxfver.R2000},
		{Code: 274, Default: 2, Min: dxfver.R2000},
		{Code: 340, Min: dxfver.R2000},
		{Code: 341, Min: dxfver.R2000},
		{Code: 342, Min: dxfver.R2000},
		{Code: 343, Min: dxfver.R2000},
		{Code: 344, Min: dxfver.R2000},
	}}))
	register(def("BLOCK_RECORD", false, dxfver.R2000, recordSubclass, Subclass{Marker: "AcDbBlockTableRecord", Attrs: []Attr{
		{Code: 2},
		{Code: 340},
		{Code: 70, Default: 0, Min: dxfver.R2007},
		{Code: 280, Default: 1, Min: dxfver.R2007},
		{Code: 281, Default: 0, Min: dxfver.R2007},
	}}))

	// objects
	register(def("DICTIONARY", false, dxfver.R2000, Subclass{Marker: "AcDbDictionary", Attrs: []Attr{
		{Code: 280},
		{Code: 281, Default: 1},
	}}))
	register(def("ACDBDICTIONARYWDFLT", false, dxfver.R2000,
		Subclass{Marker: "AcDbDictionary", Attrs: []Attr{{Code: 281, Default: 1}}},
		Subclass{Marker: "AcDbDictionaryWithDefault", Attrs: []Attr{{Code: 340}}},
	))
	register(def("ACDBPLACEHOLDER", false, dxfver.R2000))
	register(def("LAYOUT", false, dxfver.R2000,
		Subclass{Marker: "AcDbPlotSettings", Attrs: []Attr{
			{Code: 1, Default: ""},
			{Code: 2, Default: "none_device"},
			{Code: 4, Default: ""},
			{Code: 6, Default: ""},
			{Code: 40, Default: 7.5},
			{Code: 41, Default: 20.0},
			{Code: 42, Default: 7.5},
			{Code: 43, Default: 20.0},
			{Code: 44, Default: 0.0},
			{Code: 45, Default: 0.0},
			{Code: 46, Default: 0.0},
			{Code: 47, Default: 0.0},
			{Code: 48, Default: 0.0},
			{Code: 49, Default: 0.0},
			{Code: 140, Default: 0.0},
			{Code: 141, Default: 0.0},
			{Code: 142, Default: 1.0},
			{Code: 143, Default: 1.0},
			{Code: 70, Default: 688},
			{Code: 72, Default: 0},
			{Code: 73, Default: 0},
			{Code: 74, Default: 5},
			{Code: 7, Default: ""},
			{Code: 75, Default: 16},
			{Code: 147, Default: 1.0},
			{Code: 148, Default: 0.0},
			{Code: 149, Default: 0.0},
		}},
		Subclass{Marker: "AcDbLayout", Attrs: []Attr{
			{Code: 1},
			{Code: 70, Default: 1},
			{Code: 71, Default: 0},
			{Code: 10, Default: tags.Vec2(0, 0)},
			{Code: 11, Default: tags.Vec2(420, 297)},
			{Code: 12, Default: origin},
			{Code: 14, Default: tags.Vec3(1e20, 1e20, 1e20)},
			{Code: 15, Default: tags.Vec3(-1e20, -1e20, -1e20)},
			{Code: 146, Default: 0.0},
			{Code: 13, Default: origin},
			{Code: 16, Default: xAxis},
			{Code: 17, Default: yAxis},
			{Code: 76, Default: 1},
			{Code: 330},
		}},
	))
	register(def("MATERIAL", false, dxfver.R2007, Subclass{Marker: "AcDbMaterial", Attrs: []Attr{
		{Code: 1},
		{Code: 2, Default: ""},
		{Code: 94, Default: 63},
	}}))
	register(def("MLINESTYLE", false, dxfver.R2000, Subclass{Marker: "AcDbMlineStyle", Attrs: []Attr{
		{Code: 2},
		{Code: 70, Default: 0},
		{Code: 3, Default: ""},
		{Code: 62, Default: 256},
		{Code: 51, Default: 90.0},
		{Code: 52, Default: 90.0},
		{Code: 71, Default: 2},
		{Code: 49, Default: 0.5},
		{Code: 62, Default: 256},
		{Code: 6, Default: "BYLAYER"},
		{Code: 49, Default: -0.5},
		{Code: 62, Default: 256},
		{Code: 6, Default: "BYLAYER"},
	}}))
	register(def("MLEADERSTYLE", false, dxfver.R2000, Subclass{Marker: "AcDbMLeaderStyle", Attrs: []Attr{
		{Code: 179, Default: 2},
		{Code: 170, Default: 2},
		{Code: 171, Default: 1},
		{Code: 172, Default: 0},
		{Code: 90, Default: 2},
		{Code: 40, Default: 0.0},
		{Code: 41, Default: 0.0},
		{Code: 173, Default: 1},
		{Code: 91, Default: -1056964608},
		{Code: 92, Default: -2},
		{Code: 290, Default: 1},
		{Code: 42, Default: 2.0},
		{Code: 291, Default: 1},
		{Code: 43, Default: 8.0},
		{Code: 3, Default: "Standard"},
		{Code: 44, Default: 4.0},
		{Code: 300, Default: ""},
		{Code: 342},
		{Code: 174, Default: 1},
		{Code: 175, Default: 1},
		{Code: 176, Default: 0},
		{Code: 178, Default: 1},
		{Code: 45, Default: 4.0},
	}}))
	register(def("GROUP", false, dxfver.R2000, Subclass{Marker: "AcDbGroup", Attrs: []Attr{
		{Code: 300, Default: ""},
		{Code: 70, Default: 1},
		{Code: 71, Default: 1},
	}}))
}

// graphicalTypes lists entity types that are read verbatim but still
// belong to layouts and blocks.
var graphicalTypes = map[string]bool{
	"3DFACE": true, "3DSOLID": true, "ARC": true, "ATTDEF": true,
	"ATTRIB": true, "BODY": true, "CIRCLE": true, "DIMENSION": true,
	"ELLIPSE": true, "HATCH": true, "IMAGE": true, "INSERT": true,
	"LEADER": true, "LINE": true, "LWPOLYLINE": true, "MESH": true,
	"MLEADER": true, "MLINE": true, "MTEXT": true, "POINT": true,
	"POLYLINE": true, "RAY": true, "REGION": true, "SEQEND": true,
	"SHAPE": true, "SOLID": true, "SPLINE": true, "SURFACE": true,
	"TEXT": true, "TOLERANCE": true, "TRACE": true, "UNDERLAY": true,
	"VERTEX": true, "VIEWPORT": true, "WIPEOUT": true, "XLINE": true,
}

// r2000Types did not exist in R12.
var r2000Types = map[string]bool{
	"3DSOLID": true, "BODY": true, "ELLIPSE": true, "HATCH": true,
	"IMAGE": true, "LEADER": true, "LWPOLYLINE": true, "MESH": true,
	"MLEADER": true, "MLINE": true, "MTEXT": true, "RAY": true,
	"REGION": true, "SPLINE": true, "SURFACE": true, "TOLERANCE": true,
	"UNDERLAY": true, "WIPEOUT": true, "XLINE": true,
}
