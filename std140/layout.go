// Package std140 computes GLSL std140 uniform block layouts. The computed
// offsets are a wire-format contract: they must bit-exactly match what the
// backend's shader compiler assumes for the block, or reads on the GPU
// side return garbage.
package std140

import (
	"fmt"

	"github.com/spaghettifunk/vetro/math"
)

// Type enumerates the field types a uniform block can hold.
type Type int

const (
	TypeInvalid Type = iota
	TypeFloat
	TypeVec2
	TypeVec3
	TypeVec4
	TypeInt
	TypeIVec2
	TypeIVec3
	TypeIVec4
	TypeUInt
	TypeUVec2
	TypeUVec3
	TypeUVec4
	TypeMat2
	TypeMat3
	TypeMat4
	TypeMat2x3
	TypeMat3x2
	TypeMat2x4
	TypeMat4x2
	TypeMat3x4
	TypeMat4x3
)

const vec4Align = 16

// shape returns (columns, rows) for matrices and (0, components) for
// scalars and vectors. rows is 0 for unknown types.
func (t Type) shape() (columns, rows uint32) {
	switch t {
	case TypeFloat, TypeInt, TypeUInt:
		return 0, 1
	case TypeVec2, TypeIVec2, TypeUVec2:
		return 0, 2
	case TypeVec3, TypeIVec3, TypeUVec3:
		return 0, 3
	case TypeVec4, TypeIVec4, TypeUVec4:
		return 0, 4
	case TypeMat2:
		return 2, 2
	case TypeMat3:
		return 3, 3
	case TypeMat4:
		return 4, 4
	case TypeMat2x3:
		return 2, 3
	case TypeMat3x2:
		return 3, 2
	case TypeMat2x4:
		return 2, 4
	case TypeMat4x2:
		return 4, 2
	case TypeMat3x4:
		return 3, 4
	case TypeMat4x3:
		return 4, 3
	default:
		return 0, 0
	}
}

// baseLayout returns the std140 base alignment and size of a single
// element of type t, before any array rules apply.
func (t Type) baseLayout() (align, size uint32, err error) {
	columns, rows := t.shape()
	if rows == 0 {
		return 0, 0, fmt.Errorf("unknown uniform type %d", t)
	}
	if columns > 0 {
		// A matrix with N columns is stored as N column vectors, each
		// padded to vec4 alignment regardless of the row count.
		return vec4Align, columns * vec4Align, nil
	}
	switch rows {
	case 1:
		return 4, 4, nil
	case 2:
		return 8, 8, nil
	default: // 3- and 4-vectors both align to 16
		return vec4Align, rows * 4, nil
	}
}

// Field is one named, typed member of a uniform block. ArraySize 0 means
// the field is not an array; otherwise it is the element count.
type Field struct {
	Name      string
	Type      Type
	ArraySize int
}

// FieldLayout is a Field with its computed placement inside the block.
type FieldLayout struct {
	Field
	Offset uint32
	Size   uint32
	Align  uint32
}

// Layout is the computed std140 layout of a uniform block. It is immutable
// once calculated and safe to share by reference.
type Layout struct {
	Fields []FieldLayout
	Size   uint32
}

// Calculate computes the std140 layout for an ordered list of fields.
// Layout computation is a pure function: identical input always yields
// identical offsets and size.
func Calculate(fields []Field) (*Layout, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("uniform block must have at least one field")
	}

	layout := &Layout{Fields: make([]FieldLayout, 0, len(fields))}
	seen := make(map[string]struct{}, len(fields))

	var offset, maxAlign uint32
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("uniform field must have a name")
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("duplicate uniform field name '%s'", f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.ArraySize < 0 {
			return nil, fmt.Errorf("uniform field '%s' has negative array size %d", f.Name, f.ArraySize)
		}

		align, size, err := f.Type.baseLayout()
		if err != nil {
			return nil, fmt.Errorf("uniform field '%s': %w", f.Name, err)
		}

		if f.ArraySize > 0 {
			// Array elements round up to vec4 alignment and stride,
			// regardless of the element's own natural alignment.
			align = vec4Align
			stride := math.AlignUp(size, vec4Align)
			size = stride * uint32(f.ArraySize)
		}

		offset = math.AlignUp(offset, align)
		layout.Fields = append(layout.Fields, FieldLayout{
			Field:  f,
			Offset: offset,
			Size:   size,
			Align:  align,
		})
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
	}

	layout.Size = math.AlignUp(offset, maxAlign)
	return layout, nil
}

// OffsetOf returns the byte offset of the named field.
func (l *Layout) OffsetOf(name string) (uint32, bool) {
	for i := range l.Fields {
		if l.Fields[i].Name == name {
			return l.Fields[i].Offset, true
		}
	}
	return 0, false
}

// FieldByName returns the layout of the named field.
func (l *Layout) FieldByName(name string) (*FieldLayout, bool) {
	for i := range l.Fields {
		if l.Fields[i].Name == name {
			return &l.Fields[i], true
		}
	}
	return nil, false
}
