package component

// Health stores hit points. Pure data; systems own the mutations.
type Health struct {
	HP    int `yaml:"hp"`
	MaxHP int `yaml:"max_hp"`
}

func (Health) TypeName() string { return "Health" }

// Alive reports whether HP is above zero.
func (h *Health) Alive() bool { return h.HP > 0 }
