package topology

import (
	"fmt"
	"strconv"
)

// Role is the structural role of an object on one side of an edge.
type Role uint8

const (
	RoleNone     Role = 0
	RoleExterior Role = 1
	RoleInterior Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleExterior:
		return "exterior"
	case RoleInterior:
		return "interior"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// ObjectID packs an object reference and its role into 64 bits.
//
// Layout: bits 63..62 hold the role, bits 61..0 the reference. The zero value
// means "no object". The layout is compared and hashed directly, so it must
// not change.
type ObjectID uint64

const (
	roleShift = 62
	refMask   = 1<<roleShift - 1

	// MaxRef is the largest reference that can be packed.
	MaxRef = refMask
)

// Pack builds an ObjectID. Bits of ref above MaxRef are discarded.
func Pack(ref uint64, role Role) ObjectID {
	return ObjectID(uint64(role&3)<<roleShift | ref&refMask)
}

// Ref returns the bare object reference.
func (id ObjectID) Ref() uint64 { return uint64(id) & refMask }

// Role returns the structural role.
func (id ObjectID) Role() Role { return Role(uint64(id) >> roleShift) }

// IsEmpty reports whether id denotes no object.
func (id ObjectID) IsEmpty() bool { return id == 0 }

// SameObject reports whether id and o refer to the same object, ignoring roles.
func (id ObjectID) SameObject(o ObjectID) bool { return id.Ref() == o.Ref() }

func (id ObjectID) String() string {
	if id.IsEmpty() {
		return "none"
	}
	return id.Role().String() + ":" + strconv.FormatUint(id.Ref(), 10)
}

// param renders the reference for an error parameter; empty for no object.
func (id ObjectID) param() string {
	if id.IsEmpty() {
		return ""
	}
	return strconv.FormatUint(id.Ref(), 10)
}
