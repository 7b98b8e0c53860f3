package component

// Transform places a node in the world.
type Transform struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`
	Heading float64 `yaml:"heading"` // degrees
}

func (Transform) TypeName() string { return "Transform" }

// Collider gives a node a circular footprint.
type Collider struct {
	Radius float64 `yaml:"radius"`
	Solid  bool    `yaml:"solid"`
}

func (Collider) TypeName() string { return "Collider" }
