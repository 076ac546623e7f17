package signature

type Version struct {
	// The maximum target version supported.
	Max string `json:"max,omitempty"`

	// The minimum target version supported.
	Min string `json:"min,omitempty"`
}

type Signature struct {
	// The name of the symbol this signature locates.
	Name string `json:"name" jsonschema:"required"`

	// The instruction lines, evaluated in order.
	Instructions []string `json:"instructions" jsonschema:"required"`

	// A free-form description of what the signature matches.
	Description string `json:"description,omitempty"`

	// The target versions this signature applies to.
	Version *Version `json:"version,omitempty"`

	// The file the signature was loaded from.
	Path string `json:"-"`
}
