package metadata

// SpecsOf returns the raw specifier word of an entity, or 0 for kinds that
// carry none.
func SpecsOf(e Entity) uint32 {
	switch e := e.(type) {
	case *RecordInfo:
		return e.Specs.Raw()
	case *FunctionInfo:
		return e.Specs.Raw()
	case *VarInfo:
		return e.Specs.Raw()
	}
	return 0
}

// SetSpecs stores a raw specifier word into an entity. Kinds without a
// specifier word ignore it.
func SetSpecs(e Entity, raw uint32) {
	switch e := e.(type) {
	case *RecordInfo:
		e.Specs.SetRaw(raw)
	case *FunctionInfo:
		e.Specs.SetRaw(raw)
	case *VarInfo:
		e.Specs.SetRaw(raw)
	}
}

// ValidateFlags checks every enumerated field of the entity's specifier
// word and reports ErrMalformedFlags for out-of-range values.
func ValidateFlags(e Entity) error {
	switch e := e.(type) {
	case *FunctionInfo:
		return e.Specs.Validate()
	case *VarInfo:
		return e.Specs.Validate()
	}
	return nil
}
