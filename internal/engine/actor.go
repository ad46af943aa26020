package engine

// Actor represents a character: the player, a companion, or an NPC.
type Actor struct {
	Name       string            `yaml:"name" json:"name"`
	Age        int               `yaml:"age" json:"age"`
	Gender     string            `yaml:"gender" json:"gender"`
	Faction    string            `yaml:"faction" json:"faction"`
	Attributes map[Attribute]int `yaml:"attributes" json:"attributes"`
	Skills     map[Skill]int     `yaml:"skills" json:"skills"`
	Perks      []Perk            `yaml:"perks" json:"perks"`
	Inventory  []Item            `yaml:"inventory" json:"inventory"`
	Health     int               `yaml:"health" json:"health"`
	MaxHealth  int               `yaml:"max_health" json:"maxHealth"`
	Karma      int               `yaml:"karma" json:"karma"`
	Caps       int               `yaml:"caps" json:"caps"`
	Companion  bool              `yaml:"companion,omitempty" json:"isCompanion,omitempty"`
	AvatarURL  string            `yaml:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
}

type Perk struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Rank        int    `yaml:"rank" json:"rank"`
}

type Item struct {
	Name         string   `yaml:"name" json:"name"`
	Type         ItemType `yaml:"type" json:"type"`
	Description  string   `yaml:"description" json:"description"`
	Weight       float64  `yaml:"weight" json:"weight"`
	Value        int      `yaml:"value" json:"value"`
	Count        int      `yaml:"count" json:"count"`
	IsConsumable bool     `yaml:"is_consumable" json:"isConsumable"`
}

// Clamp restricts v into [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize enforces actor invariants after any externally supplied update:
// health inside [0, maxHealth], non-negative currency, and inventory rows
// with a non-positive count dropped.
func (a *Actor) Normalize() {
	if a == nil {
		return
	}
	if a.MaxHealth < 1 {
		a.MaxHealth = 1
	}
	a.Health = Clamp(a.Health, 0, a.MaxHealth)
	if a.Caps < 0 {
		a.Caps = 0
	}
	kept := a.Inventory[:0]
	for _, it := range a.Inventory {
		if it.Count > 0 {
			kept = append(kept, it)
		}
	}
	a.Inventory = kept
	if a.Attributes == nil {
		a.Attributes = defaultAttributes()
	}
	if a.Skills == nil {
		a.Skills = defaultSkills()
	}
}

func defaultAttributes() map[Attribute]int {
	m := make(map[Attribute]int, len(AllAttributes))
	for _, at := range AllAttributes {
		m[at] = 5
	}
	return m
}

func defaultSkills() map[Skill]int {
	m := make(map[Skill]int, len(AllSkills))
	for _, sk := range AllSkills {
		m[sk] = 15
	}
	return m
}

// Clone deep-copies the actor so the copy can be read while the original
// keeps mutating.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Attributes != nil {
		cp.Attributes = make(map[Attribute]int, len(a.Attributes))
		for k, v := range a.Attributes {
			cp.Attributes[k] = v
		}
	}
	if a.Skills != nil {
		cp.Skills = make(map[Skill]int, len(a.Skills))
		for k, v := range a.Skills {
			cp.Skills[k] = v
		}
	}
	cp.Perks = append([]Perk(nil), a.Perks...)
	cp.Inventory = append([]Item(nil), a.Inventory...)
	return &cp
}

// NewPlayer builds a freshly created player character with baseline
// attributes, skills and the starting kit.
func NewPlayer(name, gender string, age int) *Actor {
	a := &Actor{
		Name:       name,
		Age:        age,
		Gender:     gender,
		Faction:    "Vault Dweller",
		Attributes: defaultAttributes(),
		Skills:     defaultSkills(),
		Health:     100,
		MaxHealth:  100,
		Karma:      0,
		Caps:       50,
		Inventory: []Item{
			{Name: "Vault Jumpsuit", Type: ItemArmor, Description: "Standard issue jumpsuit.", Weight: 1, Value: 5, Count: 1},
			{Name: "Stimpak", Type: ItemAid, Description: "Restores health on use.", Weight: 0.1, Value: 25, Count: 2, IsConsumable: true},
			{Name: "Purified Water", Type: ItemAid, Description: "Clean drinking water.", Weight: 0.5, Value: 10, Count: 1, IsConsumable: true},
		},
	}
	return a
}
