package actor

// ActorRecord is the flat, string/int-only form of a draft used when a
// pool is exported.
type ActorRecord struct {
	Ordinal   int    `json:"ordinal"`
	Status    string `json:"status"`
	Level     int    `json:"level"`
	Power     int    `json:"power"`
	Arc       string `json:"arc"`
	Trait     string `json:"trait"`
	Sex       string `json:"sex"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Backstory string `json:"backstory"`
	Secret    string `json:"secret"`
}

// Record flattens the draft.
func (a *ActorDraft) Record() ActorRecord {
	return ActorRecord{
		Ordinal:   a.Ordinal,
		Status:    string(a.Status),
		Level:     a.Level,
		Power:     a.Power,
		Arc:       string(a.Arc),
		Trait:     string(a.Trait),
		Sex:       string(a.Sex),
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Name:      a.Name(),
		Backstory: a.Backstory,
		Secret:    a.Secret,
	}
}

// Records flattens every draft in ordinal order.
func (p *Pool) Records() []ActorRecord {
	all := p.All()
	out := make([]ActorRecord, len(all))
	for i := range all {
		out[i] = all[i].Record()
	}
	return out
}
