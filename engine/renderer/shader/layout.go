package shader

// NamedUniform pairs a uniform block field name with its property type.
// Declaration order determines packing order.
type NamedUniform struct {
	Name     string
	Property UniformProperty
}

// NamedTexture pairs a texture slot name with its declared property.
// Declaration order determines binding index assignment.
type NamedTexture struct {
	Name     string
	Property TextureProperty
}

// UniformLayout maps the ordered uniform properties of a shader to byte
// offsets inside its material uniform block. Offsets are computed strictly in
// declaration order: each property is placed at the next multiple of its
// alignment, and the total is rounded up to a multiple of 16.
type UniformLayout struct {
	properties []NamedUniform
	offsets    []uint32
	size       uint32
}

// NewUniformLayout computes the packed layout for an ordered property list.
//
// Parameters:
//   - properties: the shader's uniform properties in declaration order
//
// Returns:
//   - UniformLayout: the computed layout
func NewUniformLayout(properties []NamedUniform) UniformLayout {
	offsets := make([]uint32, len(properties))
	var total uint32
	for i, p := range properties {
		align := p.Property.Align()
		if rem := total % align; rem != 0 {
			total += align - rem
		}
		offsets[i] = total
		total += p.Property.Size()
	}
	if rem := total % 16; rem != 0 {
		total += 16 - rem
	}
	return UniformLayout{
		properties: properties,
		offsets:    offsets,
		size:       total,
	}
}

// OffsetOf returns the byte offset of a named property. An unknown name is an
// absent lookup, not an error; callers skip the write.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - uint32: the byte offset inside the uniform block
//   - bool: false when the name is not declared
func (l UniformLayout) OffsetOf(name string) (uint32, bool) {
	for i, p := range l.properties {
		if p.Name == name {
			return l.offsets[i], true
		}
	}
	return 0, false
}

// PropertyOf returns the declared property type for a name.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - UniformProperty: the declared type
//   - bool: false when the name is not declared
func (l UniformLayout) PropertyOf(name string) (UniformProperty, bool) {
	for _, p := range l.properties {
		if p.Name == name {
			return p.Property, true
		}
	}
	return 0, false
}

// Size returns the total padded block size, always a multiple of 16.
func (l UniformLayout) Size() uint32 {
	return l.size
}

// Properties returns the declared properties in declaration order.
func (l UniformLayout) Properties() []NamedUniform {
	return l.properties
}

// TextureSlotTable assigns each declared texture property a dense 0-based
// index in declaration order. Binding 0 of the material bind group is the
// uniform buffer; texture index i occupies bindings 2i+1 (view) and 2i+2
// (sampler).
type TextureSlotTable struct {
	properties []NamedTexture
}

// NewTextureSlotTable builds the slot table for an ordered texture property list.
//
// Parameters:
//   - properties: the shader's texture properties in declaration order
//
// Returns:
//   - TextureSlotTable: the slot table
func NewTextureSlotTable(properties []NamedTexture) TextureSlotTable {
	return TextureSlotTable{properties: properties}
}

// IndexOf returns the dense slot index of a named texture property.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - uint32: the 0-based slot index
//   - bool: false when the name is not declared
func (t TextureSlotTable) IndexOf(name string) (uint32, bool) {
	for i, p := range t.properties {
		if p.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// ViewBindingOf returns the bind-group binding of the texture view for a
// named property: index*2 + 1.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - uint32: the view binding number
//   - bool: false when the name is not declared
func (t TextureSlotTable) ViewBindingOf(name string) (uint32, bool) {
	i, ok := t.IndexOf(name)
	if !ok {
		return 0, false
	}
	return i*2 + 1, true
}

// SamplerBindingOf returns the bind-group binding of the sampler for a named
// property: index*2 + 2.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - uint32: the sampler binding number
//   - bool: false when the name is not declared
func (t TextureSlotTable) SamplerBindingOf(name string) (uint32, bool) {
	i, ok := t.IndexOf(name)
	if !ok {
		return 0, false
	}
	return i*2 + 2, true
}

// PropertyOf returns the declared texture property for a name.
//
// Parameters:
//   - name: the property name
//
// Returns:
//   - TextureProperty: the declared property
//   - bool: false when the name is not declared
func (t TextureSlotTable) PropertyOf(name string) (TextureProperty, bool) {
	for _, p := range t.properties {
		if p.Name == name {
			return p.Property, true
		}
	}
	return TextureProperty{}, false
}

// Len returns the number of declared texture properties.
func (t TextureSlotTable) Len() int {
	return len(t.properties)
}

// Properties returns the declared texture properties in declaration order.
func (t TextureSlotTable) Properties() []NamedTexture {
	return t.properties
}
