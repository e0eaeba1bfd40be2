package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pcmnking/liangfstar/internal/cycle"
)

var (
	// ErrUnknownRole indicates a role key or title that names none of the 12 roles.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownKind indicates a transformation kind outside 祿/權/科/忌.
	ErrUnknownKind = errors.New("unknown transformation kind")
)

// Role is one of the 12 life-domain titles, indexed in counter-rotation
// order from the Ming sector.
type Role int

// Roles in assignment order.
const (
	RoleMing Role = iota
	RoleBrother
	RoleSpouse
	RoleChildren
	RoleWealth
	RoleHealth
	RoleMigration
	RoleFriends
	RoleCareer
	RoleProperty
	RoleFude
	RoleParents
)

// RoleNone marks a sector whose title has not been assigned yet.
const RoleNone Role = -1

// RoleCount is the number of role titles.
const RoleCount = 12

var roleTitles = [RoleCount]string{
	"命宮", "兄弟", "夫妻", "子女",
	"財帛", "疾厄", "遷移", "交友",
	"事業", "田宅", "福德", "父母",
}

var roleKeys = [RoleCount]string{
	"ming", "brother", "spouse", "children",
	"wealth", "health", "migration", "friends",
	"career", "tian_zhai", "fude", "parents",
}

// roleAliases covers legacy and simplified spellings seen in source data.
var roleAliases = map[string]Role{
	"命":  RoleMing,
	"官祿": RoleCareer,
	"官禄": RoleCareer,
	"财帛": RoleWealth,
	"迁移": RoleMigration,
	"property": RoleProperty,
	"siblings": RoleBrother,
}

// RoleAt normalizes any integer onto the role cycle.
func RoleAt(i int) Role { return Role(cycle.Mod(i, RoleCount)) }

// Roles returns the 12 roles in assignment order.
func Roles() []Role {
	out := make([]Role, RoleCount)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}

// ParseRole accepts a rule key ("tian_zhai"), a title ("田宅"), or a title
// carrying the 宮 qualifier ("田宅宮").
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for i := range roleTitles {
		if s == roleTitles[i] || strings.EqualFold(s, roleKeys[i]) {
			return Role(i), nil
		}
	}
	trimmed := strings.TrimSuffix(strings.TrimSuffix(s, "宮"), "宫")
	for i := range roleTitles {
		if trimmed == strings.TrimSuffix(roleTitles[i], "宮") {
			return Role(i), nil
		}
	}
	if r, ok := roleAliases[trimmed]; ok {
		return r, nil
	}
	if r, ok := roleAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether r is one of the 12 roles.
func (r Role) Valid() bool { return r >= 0 && r < RoleCount }

// Add returns the role n steps further along the title sequence.
func (r Role) Add(n int) Role { return RoleAt(int(r) + n) }

// Key returns the rule-file key for the role.
func (r Role) Key() string {
	if !r.Valid() {
		return ""
	}
	return roleKeys[r]
}

// Title returns the display title for the role.
func (r Role) Title() string {
	if !r.Valid() {
		return ""
	}
	return roleTitles[r]
}

func (r Role) String() string {
	if !r.Valid() {
		return "-"
	}
	return roleTitles[r]
}

// Kind is one of the 4 transformation kinds.
type Kind int

// Transformation kinds in table order.
const (
	KindLu Kind = iota
	KindQuan
	KindKe
	KindJi
)

// KindCount is the number of transformation kinds.
const KindCount = 4

var kindSymbols = [KindCount]string{"祿", "權", "科", "忌"}

var kindKeys = [KindCount]string{"lu", "quan", "ke", "ji"}

var kindAliases = map[string]Kind{"禄": KindLu, "权": KindQuan}

// Kinds returns the 4 kinds in table order.
func Kinds() []Kind { return []Kind{KindLu, KindQuan, KindKe, KindJi} }

// ParseKind accepts a key ("ji") or a symbol ("忌").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for i := range kindSymbols {
		if s == kindSymbols[i] || strings.EqualFold(s, kindKeys[i]) {
			return Kind(i), nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the 4 kinds.
func (k Kind) Valid() bool { return k >= 0 && k < KindCount }

// Key returns the rule-file key for the kind.
func (k Kind) Key() string {
	if !k.Valid() {
		return ""
	}
	return kindKeys[k]
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindSymbols[k]
}

// MarshalText renders the role as its title.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.Title()), nil }

// MarshalText renders the kind as its symbol.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
