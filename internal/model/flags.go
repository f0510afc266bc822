// Package model implements the board's typed entities: pins, pads, vias,
// lines, arcs, text, polygons, elements, rat-lines, layers, and the board
// itself, along with the flag word every entity carries.
package model

// Flag is one bit of the generic flag word. Bit values are taken from the
// upstream editor's const.h so the semantics (and any board file this
// core round-trips) line up exactly.
type Flag uint32

const (
	FlagNone        Flag = 0
	FlagPin         Flag = 1 << 0
	FlagVia         Flag = 1 << 1
	FlagFound       Flag = 1 << 2 // used by connection tracing
	FlagHole        Flag = 1 << 3 // pin/via is a hole only
	FlagRat         Flag = 1 << 4 // line is a rat-line
	FlagClearPoly   Flag = 1 << 4 // polygon: pins/vias clear it (shares a bit with Rat per source's context-dependent reuse)
	FlagDisplayName Flag = 1 << 5
	FlagClearLine   Flag = 1 << 5 // line/arc: does not touch polygons
	FlagFullPoly    Flag = 1 << 5 // polygon: keep every island, not just the largest
	FlagSelected    Flag = 1 << 6
	FlagOnSolder    Flag = 1 << 7
	FlagAuto        Flag = 1 << 7 // created by the autorouter
	FlagSquare      Flag = 1 << 8
	FlagRubberEnd   Flag = 1 << 9
	FlagWarn        Flag = 1 << 9
	FlagUseThermal  Flag = 1 << 10
	FlagOctagon     Flag = 1 << 11
	FlagLock        Flag = 1 << 13
	FlagConnected   Flag = 1 << 17 // physically connected, not just ratted
)

// NoCopyFlags is stripped from a source entity when it is copied between
// containers (paste, move-to-buffer, duplicate).
const NoCopyFlags = FlagFound | FlagConnected

// ThermalStyle is the per-polygon, per-pin thermal relief pattern. Zero
// value is "no thermal" (the pin/via gets a plain clearance ring).
type ThermalStyle uint8

const (
	ThermalNone ThermalStyle = iota
	ThermalDiagonalSharp
	ThermalOrthogonalSharp
	ThermalSolid
	ThermalDiagonalRounded
	ThermalOrthogonalRounded
)

// MaxThermalLayers bounds the per-layer thermal nibble array. The source
// packs two 4-bit thermal styles per byte; we keep one byte per layer for
// clarity since Go has no native storage benefit from packing further.
const MaxThermalLayers = 32

// Flags is the flag word every entity embeds: a generic bit field plus a
// thermal style per layer (only meaningful on pins and vias, which pierce
// every copper layer within their buried span).
type Flags struct {
	bits    Flag
	thermal [MaxThermalLayers]ThermalStyle
}

// MakeFlags builds a Flags value with the given generic bits set and no
// thermal styles — the equivalent of the source's MakeFlags().
func MakeFlags(bits Flag) Flags {
	return Flags{bits: bits}
}

// NoFlags returns the zero Flags value, for call sites that need to pass
// "no flags set" explicitly rather than relying on a bare struct literal.
func NoFlags() Flags {
	return Flags{}
}

// Test reports whether every bit in mask is set.
func (f Flags) Test(mask Flag) bool { return f.bits&mask == mask }

// Any reports whether at least one bit in mask is set.
func (f Flags) Any(mask Flag) bool { return f.bits&mask != 0 }

// Set returns a copy of f with mask's bits set.
func (f Flags) Set(mask Flag) Flags { f.bits |= mask; return f }

// Clear returns a copy of f with mask's bits cleared.
func (f Flags) Clear(mask Flag) Flags { f.bits &^= mask; return f }

// Toggle returns a copy of f with mask's bits flipped.
func (f Flags) Toggle(mask Flag) Flags { f.bits ^= mask; return f }

// Assign sets or clears mask depending on v.
func (f Flags) Assign(mask Flag, v bool) Flags {
	if v {
		return f.Set(mask)
	}
	return f.Clear(mask)
}

// Equal reports structural equality, used by the undo journal's
// structural-equality checks and by FLAGS_EQUAL in the source.
func (f Flags) Equal(other Flags) bool {
	return f.bits == other.bits && f.thermal == other.thermal
}

// Thermal returns the thermal style of layer l (0 if out of range or unset).
func (f Flags) Thermal(layer int) ThermalStyle {
	if layer < 0 || layer >= MaxThermalLayers {
		return ThermalNone
	}
	return f.thermal[layer]
}

// WithThermal returns a copy of f with layer l's thermal style set.
func (f Flags) WithThermal(layer int, style ThermalStyle) Flags {
	if layer >= 0 && layer < MaxThermalLayers {
		f.thermal[layer] = style
	}
	return f
}

// Raw returns the generic bit field alone, for callers that need to
// serialize the flag word (the board file writer) without reaching into
// the unexported field directly.
func (f Flags) Raw() Flag { return f.bits }

// ThermalBytes returns the per-layer thermal styles up to n layers, for
// the board file writer's symbolic flag-set string.
func (f Flags) ThermalBytes(n int) []ThermalStyle {
	if n > MaxThermalLayers {
		n = MaxThermalLayers
	}
	out := make([]ThermalStyle, n)
	copy(out, f.thermal[:n])
	return out
}

// FlagsFromRaw rebuilds a Flags from its generic bits and per-layer
// thermal styles, the board file reader's counterpart to Raw/ThermalBytes.
func FlagsFromRaw(bits Flag, thermal []ThermalStyle) Flags {
	f := Flags{bits: bits}
	for i, s := range thermal {
		if i >= MaxThermalLayers {
			break
		}
		f.thermal[i] = s
	}
	return f
}

// AnyThermal reports whether any layer has a non-none thermal style —
// the equivalent of TEST_ANY_THERMS in the source.
func (f Flags) AnyThermal() bool {
	for _, s := range f.thermal {
		if s != ThermalNone {
			return true
		}
	}
	return false
}
