package domain

// Player is a club member who owns exactly one DuesAccount.
type Player struct {
	PlayerID      string `json:"playerID"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	GuardianEmail string `json:"guardianEmail"`
	BirthYear     int    `json:"birthYear"`
	AuditFields
}

func (p Player) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
