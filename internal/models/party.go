package models

import "fmt"

// Side identifies which half of a thread a party sits on.
type Side string

const (
	SideUser     Side = "user"
	SideEmployer Side = "employer"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideUser {
		return SideEmployer
	}
	return SideUser
}

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideUser || s == SideEmployer
}

// Party is a tagged user-or-employer reference. The storage layer keeps two
// nullable columns with a check constraint; everything above it works with
// this variant instead.
type Party struct {
	Side Side
	ID   string
}

// UserParty returns a Party referencing a user.
func UserParty(id string) Party {
	return Party{Side: SideUser, ID: id}
}

// EmployerParty returns a Party referencing an employer.
func EmployerParty(id string) Party {
	return Party{Side: SideEmployer, ID: id}
}

// Valid reports whether the party has a known side and a non-empty id.
func (p Party) Valid() bool {
	return p.Side.Valid() && p.ID != ""
}

func (p Party) String() string {
	return fmt.Sprintf("%s:%s", p.Side, p.ID)
}

// Columns splits the party into the nullable column pair used by storage.
func (p Party) Columns() (userID, employerID *string) {
	switch p.Side {
	case SideUser:
		return &p.ID, nil
	case SideEmployer:
		return nil, &p.ID
	}
	return nil, nil
}

// PartyFromColumns rebuilds a Party from the nullable column pair. Exactly one
// of the two must be set; (Party{}, false) otherwise.
func PartyFromColumns(userID, employerID *string) (Party, bool) {
	switch {
	case userID != nil && *userID != "" && (employerID == nil || *employerID == ""):
		return UserParty(*userID), true
	case employerID != nil && *employerID != "" && (userID == nil || *userID == ""):
		return EmployerParty(*employerID), true
	}
	return Party{}, false
}

// Sender is the three-way variant for message authorship: a user, an
// employer, or the system itself.
type Sender struct {
	party  Party
	system bool
}

// UserSender returns a Sender for a user-authored message.
func UserSender(id string) Sender {
	return Sender{party: UserParty(id)}
}

// EmployerSender returns a Sender for an employer-authored message.
func EmployerSender(id string) Sender {
	return Sender{party: EmployerParty(id)}
}

// SystemSender returns the Sender used for generated messages.
func SystemSender() Sender {
	return Sender{system: true}
}

// IsSystem reports whether the sender is the system.
func (s Sender) IsSystem() bool {
	return s.system
}

// Party returns the sending party; ok is false for system senders.
func (s Sender) Party() (Party, bool) {
	if s.system {
		return Party{}, false
	}
	return s.party, true
}

// Valid reports whether the sender satisfies the exclusivity invariant:
// system with no party, or exactly one valid party.
func (s Sender) Valid() bool {
	if s.system {
		return s.party.ID == ""
	}
	return s.party.Valid()
}
