package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFlags_Defaults(t *testing.T) {
	var f RecordFlags
	assert.False(t, f.IsFinal())
	assert.False(t, f.IsFinalDestructor())
	assert.Equal(t, uint32(0), f.Raw())
}

func TestRecordFlags_Layout(t *testing.T) {
	var f RecordFlags
	f.SetIsFinal(true)
	assert.Equal(t, uint32(1), f.Raw())

	f.SetIsFinalDestructor(true)
	assert.Equal(t, uint32(3), f.Raw())
	assert.True(t, f.IsFinal())

	f.SetIsFinal(false)
	assert.Equal(t, uint32(2), f.Raw())
	assert.True(t, f.IsFinalDestructor())
}

func TestRecordFlags_RawRoundTrip(t *testing.T) {
	for raw := uint32(0); raw < 4; raw++ {
		var f RecordFlags
		f.SetRaw(raw)
		assert.Equal(t, raw&1 != 0, f.IsFinal())
		assert.Equal(t, raw&2 != 0, f.IsFinalDestructor())

		var copied RecordFlags
		copied.SetIsFinal(f.IsFinal())
		copied.SetIsFinalDestructor(f.IsFinalDestructor())
		assert.Equal(t, raw, copied.Raw())
	}
}

func TestVarFlags_StorageClassLayout(t *testing.T) {
	tests := []struct {
		sc  StorageClass
		raw uint32
	}{
		{StorageNone, 0},
		{StorageExtern, 1},
		{StorageStatic, 2},
		{StoragePrivateExtern, 3},
		{StorageAuto, 4},
		{StorageRegister, 5},
	}

	for _, tt := range tests {
		t.Run(tt.sc.String(), func(t *testing.T) {
			var f VarFlags
			f.SetStorageClass(tt.sc)
			assert.Equal(t, tt.raw, f.Raw())
			assert.Equal(t, tt.sc, f.StorageClass())
			assert.NoError(t, f.Validate())
		})
	}
}

func TestVarFlags_MalformedStorageClass(t *testing.T) {
	for _, raw := range []uint32{6, 7} {
		var f VarFlags
		f.SetRaw(raw)
		assert.ErrorIs(t, f.Validate(), ErrMalformedFlags)
	}
}

func TestVarFlags_SetLeavesOtherBits(t *testing.T) {
	var f VarFlags
	f.SetRaw(0xFFFFFFF8)
	f.SetStorageClass(StorageStatic)
	assert.Equal(t, uint32(0xFFFFFFFA), f.Raw())
}

func TestVarFlags_Fill(t *testing.T) {
	var f VarFlags
	var extern, static VarFlags
	extern.SetStorageClass(StorageExtern)
	static.SetStorageClass(StorageStatic)

	f.Fill(extern)
	assert.Equal(t, StorageExtern, f.StorageClass())

	f.Fill(static)
	assert.Equal(t, StorageExtern, f.StorageClass(), "set fields are never overwritten")
}

func TestFunctionFlags_Independent(t *testing.T) {
	var f FunctionFlags
	f.SetIsVirtual(true)
	f.SetIsPure(true)
	f.SetStorageClass(StorageStatic)
	f.SetConstexprKind(Consteval)
	f.SetRefQualifier(RefRValue)
	f.SetIsNoexcept(true)

	assert.True(t, f.IsVirtual())
	assert.True(t, f.IsPure())
	assert.True(t, f.IsNoexcept())
	assert.False(t, f.IsConst())
	assert.False(t, f.IsVariadic())
	assert.Equal(t, StorageStatic, f.StorageClass())
	assert.Equal(t, Consteval, f.ConstexprKind())
	assert.Equal(t, RefRValue, f.RefQualifier())
	require.NoError(t, f.Validate())

	f.SetIsPure(false)
	f.SetStorageClass(StorageNone)
	assert.True(t, f.IsVirtual())
	assert.Equal(t, Consteval, f.ConstexprKind())
	assert.Equal(t, uint32(1<<1|1<<11|2<<15|2<<17), f.Raw())
}

func TestFunctionFlags_Validate(t *testing.T) {
	tests := []struct {
		name string
		raw  uint32
		ok   bool
	}{
		{"zero", 0, true},
		{"all bits", fnBits, true},
		{"storage class 6", 6 << 12, false},
		{"constexpr 3", 3 << 15, false},
		{"ref-qualifier 3", 3 << 17, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FunctionFlags
			f.SetRaw(tt.raw)
			err := f.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedFlags)
			}
		})
	}
}

func TestFunctionFlags_Fill(t *testing.T) {
	var f, o FunctionFlags
	f.SetIsConst(true)
	f.SetConstexprKind(ConstexprSpecified)
	o.SetIsOverride(true)
	o.SetConstexprKind(Consteval)
	o.SetRefQualifier(RefLValue)

	f.Fill(o)

	assert.True(t, f.IsConst())
	assert.True(t, f.IsOverride())
	assert.Equal(t, ConstexprSpecified, f.ConstexprKind())
	assert.Equal(t, RefLValue, f.RefQualifier())
}

func TestValidateFlags(t *testing.T) {
	v := NewVarInfo(NewSymbolID("c:@x"), "x")
	v.Specs.SetRaw(7)
	assert.ErrorIs(t, ValidateFlags(v), ErrMalformedFlags)

	fn := NewFunctionInfo(NewSymbolID("c:@F@f"), "f")
	assert.NoError(t, ValidateFlags(fn))

	rec := NewRecordInfo(NewSymbolID("c:@S@R"), "R")
	rec.Specs.SetRaw(0xFFFFFFFF)
	assert.NoError(t, ValidateFlags(rec))
}

func TestSpecsOfAndSetSpecs(t *testing.T) {
	v := NewVarInfo(NewSymbolID("c:@x"), "x")
	SetSpecs(v, 2)
	assert.Equal(t, StorageStatic, v.Specs.StorageClass())
	assert.Equal(t, uint32(2), SpecsOf(v))

	ns := NewNamespaceInfo(NewSymbolID("c:@N@n"), "n")
	SetSpecs(ns, 9)
	assert.Equal(t, uint32(0), SpecsOf(ns))
}
