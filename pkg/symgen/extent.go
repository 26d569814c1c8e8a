package symgen

// Extent returns the address range of the block. It is common when both
// address and length are common, and version-dependent otherwise, over the
// declared versions followed by any other version found in the address and
// length maps. Versions without an address are left out; versions without a
// length have no upper bound.
func (b *Block) Extent() MaybeVersionDep[Extent] {
	if b.Address == nil {
		return nil
	}
	addr, addrCommon := b.Address.(Common[Uint])
	length, lengthCommon := b.Length.(Common[Uint])
	if addrCommon && (b.Length == nil || lengthCommon) {
		if b.Length == nil {
			return NewCommon(Point(uint64(addr.Value)))
		}
		return NewCommon(Span(uint64(addr.Value), uint64(length.Value)))
	}

	versions := appendVersions(b.Versions, b.Address.Versions())
	if b.Length != nil {
		versions = appendVersions(versions, b.Length.Versions())
	}
	vm := NewVersionMap[Extent]()
	for _, v := range versions {
		a, ok := b.Address.Get(v.Name)
		if !ok {
			continue
		}
		e := Point(uint64(a))
		if b.Length != nil {
			if l, ok := b.Length.Get(v.Name); ok {
				e = Span(uint64(a), uint64(l))
			}
		}
		vm.Set(v, e)
	}
	return vm
}

// Extents pairs the addresses of the symbol with its length. The result is
// common when neither address nor length depends on the version. Otherwise
// it is given per version, over all (when not empty) followed by the
// versions of the version-dependent fields; common fields are broadcast to
// every version.
//
// Address and length are paired by version name. When the length is missing
// for a version the extents of that version are points, which is a best
// effort: it may check a version the symbol's length doesn't cover.
func (s *Symbol) Extents(all []Version) MaybeVersionDep[Extents] {
	if s.Address == nil {
		return nil
	}
	addr, addrCommon := s.Address.(Common[Linkable])
	length, lengthCommon := s.Length.(Common[Uint])
	if addrCommon && (s.Length == nil || lengthCommon) {
		if s.Length == nil {
			return NewCommon(realizeExtents(addr.Value, 0, false))
		}
		return NewCommon(realizeExtents(addr.Value, uint64(length.Value), true))
	}

	versions := appendVersions(all, s.Address.Versions())
	if s.Length != nil {
		versions = appendVersions(versions, s.Length.Versions())
	}
	vm := NewVersionMap[Extents]()
	for _, v := range versions {
		a, ok := s.Address.Get(v.Name)
		if !ok {
			continue
		}
		var (
			l         Uint
			hasLength bool
		)
		if s.Length != nil {
			l, hasLength = s.Length.Get(v.Name)
		}
		vm.Set(v, realizeExtents(a, uint64(l), hasLength))
	}
	return vm
}

func realizeExtents(addrs Linkable, length uint64, hasLength bool) Extents {
	extents := make(Extents, 0, addrs.Len())
	for _, a := range addrs.addrs {
		extents = append(extents, Extent{Address: a, Length: length, HasLength: hasLength})
	}
	return extents
}
