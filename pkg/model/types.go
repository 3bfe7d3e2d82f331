// Package model holds the typed component geometry produced by the EasyEDA
// parsers and consumed by the KiCad writers.
//
// Every coordinate stored here is in millimetres, relative to the component
// origin, with the Y axis already pointing up.
package model

import "github.com/OpenTraceLab/eda2kicad/pkg/geom"

// Point is re-exported from geom so model users need a single import.
type Point = geom.Point

// Box is re-exported from geom.
type Box = geom.Box

// Vec3 is an (x, y, z) triple used for 3D model placement.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Minimum sizes applied to parsed geometry
const (
	MinStroke   = 0.1 // mm
	MinFontSize = 0.5 // mm
)

// Fill styles understood by the symbol writer
const (
	FillNone       = "none"
	FillOutline    = "outline"
	FillBackground = "background"
	FillSolid      = "solid"
)

// ClampStroke floors a stroke width at MinStroke.
func ClampStroke(w float64) float64 {
	if w < MinStroke {
		return MinStroke
	}
	return w
}

// ClampFont floors a font size at MinFontSize.
func ClampFont(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	return size
}
