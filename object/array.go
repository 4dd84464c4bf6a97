package object

// At returns the scalar Value at a top-level index of a 1-D array, or a
// sub-array *Object view when this array has more than one dimension.
// For a wide-primitive leaf array use AtWide instead.
func (o *Object) At(index int) Value {
	if len(o.Array.Dims) == 1 {
		return o.Array.Store[index*elemWidth(o.Array.ElementDescriptor)]
	}
	return Ref32(o.SubArray(index))
}

// SetAt writes the scalar Value at a top-level index of a 1-D array.
// Calling it on a multi-dimensional array is a programming error; callers
// should navigate to the leaf via SubArray first.
func (o *Object) SetAt(index int, v Value) {
	o.Array.Store[index*elemWidth(o.Array.ElementDescriptor)] = v
}

// AtWide reads a (low, high) pair from a wide-primitive (long/double)
// leaf array at a top-level index.
func (o *Object) AtWide(index int) (lo, hi Value) {
	base := index * elemWidth(o.Array.ElementDescriptor)
	return o.Array.Store[base], o.Array.Store[base+1]
}

// SetAtWide writes a (low, high) pair into a wide-primitive leaf array
// at a top-level index.
func (o *Object) SetAtWide(index int, lo, hi Value) {
	base := index * elemWidth(o.Array.ElementDescriptor)
	o.Array.Store[base] = lo
	o.Array.Store[base+1] = hi
}

// SubArray returns the sub-array view at a top-level index, sharing the
// backing store with the parent (writes through either are visible in
// both).
func (o *Object) SubArray(index int) *Object {
	stride := o.Array.stride() * elemWidth(o.Array.ElementDescriptor)
	start := index * stride
	view := &Object{
		Kind:      KindArray,
		ClassName: arrayClassName(o.Array.ElementDescriptor, len(o.Array.Dims)-1),
		Array: &ArrayData{
			ElementDescriptor: o.Array.ElementDescriptor,
			Dims:              append([]int(nil), o.Array.Dims[1:]...),
			Store:             o.Array.Store[start : start+stride],
		},
	}
	view.mon = newHeader()
	stampIdentity(view)
	return view
}

// Length is the element count of this array's outermost dimension.
func (o *Object) Length() int { return o.Array.Len() }
