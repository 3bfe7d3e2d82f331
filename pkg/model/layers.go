package model

import "strings"

// DefaultLayer is used for EasyEDA layer codes without a KiCad equivalent.
const DefaultLayer = "F.SilkS"

// easyedaLayers maps EasyEDA PCB layer ids to KiCad layer names
var easyedaLayers = map[string]string{
	"1":   "F.Cu",
	"2":   "B.Cu",
	"3":   "F.SilkS",
	"4":   "B.SilkS",
	"5":   "F.Paste",
	"6":   "B.Paste",
	"7":   "F.Mask",
	"8":   "B.Mask",
	"10":  "Edge.Cuts",
	"11":  "Edge.Cuts",
	"12":  "Cmts.User",
	"13":  "F.Fab",
	"14":  "B.Fab",
	"15":  "Dwgs.User",
	"21":  "F.CrtYd",
	"22":  "B.CrtYd",
	"99":  "F.Fab",
	"100": "F.SilkS",
	"101": "F.SilkS",
}

// LayerFromCode returns the KiCad layer for an EasyEDA layer id.
func LayerFromCode(code string) string {
	if name, ok := easyedaLayers[strings.TrimSpace(code)]; ok {
		return name
	}
	return DefaultLayer
}

// IsFrontLayer reports whether a KiCad layer name is on the front side.
func IsFrontLayer(name string) bool {
	return strings.HasPrefix(name, "F.")
}

// IsMarkingLayer reports whether an EasyEDA layer id carries component
// marking metadata rather than board geometry.
func IsMarkingLayer(code string) bool {
	switch strings.TrimSpace(code) {
	case "99", "100", "101":
		return true
	}
	return false
}
