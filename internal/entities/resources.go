package entities

// HPResource tracks hit points
type HPResource struct {
	Current int `json:"current" yaml:"current"`
	Max     int `json:"max" yaml:"max"`
}

// Damage lowers current HP, stopping at zero. It returns the damage taken
// after resistances, including any overkill.
func (hp *HPResource) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}

	hp.Current -= amount
	if hp.Current < 0 {
		hp.Current = 0
	}
	return amount
}

// Heal restores hit points up to max and returns the amount restored
func (hp *HPResource) Heal(amount int) int {
	if amount <= 0 || hp.Current >= hp.Max {
		return 0
	}

	old := hp.Current
	hp.Current += amount
	if hp.Current > hp.Max {
		hp.Current = hp.Max
	}
	return hp.Current - old
}

// MindResource is the pool spent to cast spells. Affordability is checked
// by the resolver before anything is spent.
type MindResource struct {
	Current int `json:"current" yaml:"current"`
	Max     int `json:"max" yaml:"max"`
}

// Spend removes amount from the pool, never dropping below zero
func (m *MindResource) Spend(amount int) {
	if amount <= 0 {
		return
	}
	m.Current -= amount
	if m.Current < 0 {
		m.Current = 0
	}
}
