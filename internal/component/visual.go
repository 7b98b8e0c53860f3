package component

type Renderable struct {
	Sprite  string `yaml:"sprite"`
	Layer   int    `yaml:"layer"`
	Visible bool   `yaml:"visible"`
}

func (Renderable) TypeName() string { return "Renderable" }

// Script binds a node to a named behaviour in the scripting engine.
type Script struct {
	Name string `yaml:"name"`
}

func (Script) TypeName() string { return "Script" }

// Tag holds free-form labels.
type Tag struct {
	Labels []string `yaml:"labels"`
}

func (Tag) TypeName() string { return "Tag" }
