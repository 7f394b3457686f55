package typesystem

import "fmt"

// Pretty renders t for diagnostics, replacing each placeholder by what snap
// says it resolved to. Resolution goes one hop only: placeholders inside a
// resolved type are printed as they are, so partially resolved chains and
// cycles cannot make rendering loop.
func Pretty(t Type, snap Snapshot) string {
	return prettyType(t, snap)
}

func prettyType(t Type, snap Snapshot) string {
	switch t := t.(type) {
	case TVar:
		b, ok := snap.Lookup(t.ID)
		if !ok {
			return t.String()
		}
		if len(b.Bindings) > 0 {
			return TInstantiated{Base: b.Type, Bindings: b.Bindings}.String()
		}
		return b.Type.String()
	case TFunc:
		return renderFunc(t, func(t Type) string { return prettyType(t, snap) })
	case TProduct:
		return fmt.Sprintf("(%s, %s)", prettyType(t.Left, snap), prettyType(t.Right, snap))
	case TInstantiated:
		return renderInstantiated(t, func(t Type) string { return prettyType(t, snap) })
	default:
		return t.String()
	}
}
