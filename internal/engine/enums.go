package engine

// String backed enums for save-file and DB interoperability.

type Tier string
type QuestStatus string
type Role string
type Attribute string
type Skill string
type ItemType string

const (
	TierAdmin  Tier = "admin"
	TierNormal Tier = "normal"
	TierGuest  Tier = "guest"
)

var AllTiers = []Tier{TierAdmin, TierNormal, TierGuest}

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
)

var AllQuestStatuses = []QuestStatus{QuestActive, QuestCompleted, QuestFailed}

const (
	RolePlayer   Role = "player"
	RoleNarrator Role = "narrator"
)

var AllRoles = []Role{RolePlayer, RoleNarrator}

const (
	AttrStrength     Attribute = "strength"
	AttrPerception   Attribute = "perception"
	AttrEndurance    Attribute = "endurance"
	AttrCharisma     Attribute = "charisma"
	AttrIntelligence Attribute = "intelligence"
	AttrAgility      Attribute = "agility"
	AttrLuck         Attribute = "luck"
)

var AllAttributes = []Attribute{AttrStrength, AttrPerception, AttrEndurance, AttrCharisma, AttrIntelligence, AttrAgility, AttrLuck}

const (
	SkillSmallGuns     Skill = "small_guns"
	SkillBigGuns       Skill = "big_guns"
	SkillEnergyWeapons Skill = "energy_weapons"
	SkillUnarmed       Skill = "unarmed"
	SkillMeleeWeapons  Skill = "melee_weapons"
	SkillThrowing      Skill = "throwing"
	SkillFirstAid      Skill = "first_aid"
	SkillDoctor        Skill = "doctor"
	SkillSneak         Skill = "sneak"
	SkillLockpick      Skill = "lockpick"
	SkillScience       Skill = "science"
	SkillRepair        Skill = "repair"
	SkillSpeech        Skill = "speech"
	SkillBarter        Skill = "barter"
)

var AllSkills = []Skill{
	SkillSmallGuns, SkillBigGuns, SkillEnergyWeapons, SkillUnarmed,
	SkillMeleeWeapons, SkillThrowing, SkillFirstAid, SkillDoctor,
	SkillSneak, SkillLockpick, SkillScience, SkillRepair,
	SkillSpeech, SkillBarter,
}

const (
	ItemWeapon ItemType = "weapon"
	ItemArmor  ItemType = "armor"
	ItemAid    ItemType = "aid"
	ItemAmmo   ItemType = "ammo"
	ItemMisc   ItemType = "misc"
	ItemQuest  ItemType = "quest"
)

var AllItemTypes = []ItemType{ItemWeapon, ItemArmor, ItemAid, ItemAmmo, ItemMisc, ItemQuest}

// Generic helpers
func contains[T ~string](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (t Tier) Validate() bool        { return contains(AllTiers, t) }
func (q QuestStatus) Validate() bool { return contains(AllQuestStatuses, q) }
func (r Role) Validate() bool        { return contains(AllRoles, r) }
func (a Attribute) Validate() bool   { return contains(AllAttributes, a) }
func (s Skill) Validate() bool       { return contains(AllSkills, s) }
func (i ItemType) Validate() bool    { return contains(AllItemTypes, i) }

// List helpers
func ListTiers() []Tier           { return append([]Tier{}, AllTiers...) }
func ListAttributes() []Attribute { return append([]Attribute{}, AllAttributes...) }
func ListSkills() []Skill         { return append([]Skill{}, AllSkills...) }

// ParseTier maps a stored tier string onto a known tier. Unknown values
// resolve to guest, never admin.
func ParseTier(s string) Tier {
	t := Tier(s)
	if !t.Validate() {
		return TierGuest
	}
	return t
}
