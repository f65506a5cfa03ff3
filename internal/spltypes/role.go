package spltypes

// Role is the elected team role a robot plays for the current cycle (§3).
type Role uint8

const (
	RoleNone Role = iota
	RoleKeeper
	RoleDefender
	RoleSupportStriker
	RoleStriker
	RoleBishop
	RoleReplacementKeeper
	RoleLoser
	RoleSearcher
)

func (r Role) String() string {
	switch r {
	case RoleKeeper:
		return "KEEPER"
	case RoleDefender:
		return "DEFENDER"
	case RoleSupportStriker:
		return "SUPPORT_STRIKER"
	case RoleStriker:
		return "STRIKER"
	case RoleBishop:
		return "BISHOP"
	case RoleReplacementKeeper:
		return "REPLACEMENT_KEEPER"
	case RoleLoser:
		return "LOSER"
	case RoleSearcher:
		return "SEARCHER"
	default:
		return "NONE"
	}
}

// BallSearchState drives step-6 assignment in PlayingRoleProvider (§4.7).
type BallSearchState uint8

const (
	BallSearchNone BallSearchState = iota
	BallSearchShortTerm
	BallSearchLongTerm
)

// MaxPlayers bounds player numbers and fixed-size per-team arrays (§3, §6).
const MaxPlayers = 7
