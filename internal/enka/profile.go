package enka

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Profile is a showcase normalized for display.
type Profile struct {
	UID          string
	Nickname     string
	Level        int
	WorldLevel   int
	Signature    string
	Achievements int
	TowerFloor   int
	TowerLevel   int
	Characters   []CharacterSummary
	Cards        []CharacterCard
}

// CharacterSummary is one showcased character without build details.
type CharacterSummary struct {
	AvatarID int
	Name     string
	Level    int
}

// CharacterCard carries everything the renderer needs for one character.
type CharacterCard struct {
	AvatarID   int
	Name       string
	Element    string
	Rarity     int
	Level      int
	MaxLevel   int
	Friendship int
	Constell   int
	Stats      []Stat
	Skills     []Skill
	Weapon     *Weapon
	Artifacts  []Artifact
}

type Stat struct {
	Label   string
	Value   string
	Percent bool
}

type Skill struct {
	Level int
	Extra int
}

type Weapon struct {
	Name       string
	Level      int
	Rarity     int
	Refinement int
}

type Artifact struct {
	Slot     string
	Name     string
	Level    int
	Rarity   int
	MainStat string
	Subs     []string
}

// Property ids inside propMap.
const (
	propLevel     = "4001"
	propAscension = "1002"
)

// ascensionMaxLevel maps the ascension phase to the level cap.
var ascensionMaxLevel = map[int]int{
	0: 20, 1: 40, 2: 50, 3: 60, 4: 70, 5: 80, 6: 90,
}

type fightProp struct {
	id      string
	label   string
	percent bool
}

// Display order of the stat block. Crit, crit damage and recharge come from
// the API as fractions and are shown as percentages.
var fightProps = []fightProp{
	{"2000", "HP", false},
	{"2001", "ATK", false},
	{"2002", "DEF", false},
	{"28", "Elemental Mastery", false},
	{"20", "Crit Rate", true},
	{"22", "Crit DMG", true},
	{"23", "Energy Recharge", true},
}

var slotOrder = map[string]int{
	"EQUIP_BRACER":   0,
	"EQUIP_NECKLACE": 1,
	"EQUIP_SHOES":    2,
	"EQUIP_RING":     3,
	"EQUIP_DRESS":    4,
}

var slotNames = map[string]string{
	"EQUIP_BRACER":   "Flower",
	"EQUIP_NECKLACE": "Plume",
	"EQUIP_SHOES":    "Sands",
	"EQUIP_RING":     "Goblet",
	"EQUIP_DRESS":    "Circlet",
}

// Normalize turns a raw showcase into display data.
func (c *Client) Normalize(uid string, raw *RawProfile) *Profile {
	p := &Profile{
		UID:          uid,
		Nickname:     raw.PlayerInfo.Nickname,
		Level:        raw.PlayerInfo.Level,
		WorldLevel:   raw.PlayerInfo.WorldLevel,
		Signature:    raw.PlayerInfo.Signature,
		Achievements: raw.PlayerInfo.FinishAchievementNum,
		TowerFloor:   raw.PlayerInfo.TowerFloorIndex,
		TowerLevel:   raw.PlayerInfo.TowerLevelIndex,
	}

	for _, show := range raw.PlayerInfo.ShowAvatarInfoList {
		p.Characters = append(p.Characters, CharacterSummary{
			AvatarID: show.AvatarID,
			Name:     c.charName(show.AvatarID),
			Level:    show.Level,
		})
	}

	for i := range raw.AvatarInfoList {
		p.Cards = append(p.Cards, c.buildCard(&raw.AvatarInfoList[i]))
	}
	return p
}

func (c *Client) buildCard(av *AvatarInfo) CharacterCard {
	card := CharacterCard{
		AvatarID:   av.AvatarID,
		Name:       c.charName(av.AvatarID),
		Level:      propInt(av.PropMap, propLevel),
		Friendship: av.FetterInfo.ExpLevel,
		Constell:   len(av.TalentIDList),
	}
	card.MaxLevel = maxLevelFor(propInt(av.PropMap, propAscension))

	if meta, ok := c.charMetaFor(av.AvatarID); ok {
		card.Element = meta.Element
		card.Rarity = rarityFromQuality(meta.QualityType)
		for _, skillID := range meta.SkillOrder {
			key := strconv.Itoa(skillID)
			card.Skills = append(card.Skills, Skill{
				Level: av.SkillLevelMap[key],
				Extra: av.ProudSkillExtraLevelMap[key],
			})
		}
	}

	card.Stats = buildStats(av.FightPropMap)

	for _, eq := range av.EquipList {
		switch {
		case eq.Weapon != nil:
			card.Weapon = c.buildWeapon(&eq)
		case eq.Flat.ItemType == "ITEM_RELIQUARY":
			card.Artifacts = append(card.Artifacts, c.buildArtifact(&eq))
		}
	}
	sort.SliceStable(card.Artifacts, func(i, j int) bool {
		return slotOrder[card.Artifacts[i].Slot] < slotOrder[card.Artifacts[j].Slot]
	})
	for i := range card.Artifacts {
		card.Artifacts[i].Slot = slotNames[card.Artifacts[i].Slot]
	}

	return card
}

func buildStats(props map[string]float64) []Stat {
	stats := make([]Stat, 0, len(fightProps))
	for _, fp := range fightProps {
		v, ok := props[fp.id]
		if !ok {
			continue
		}
		var value string
		if fp.percent {
			value = fmt.Sprintf("%.1f%%", v*100)
		} else {
			value = strconv.Itoa(int(v + 0.5))
		}
		stats = append(stats, Stat{Label: fp.label, Value: value, Percent: fp.percent})
	}
	return stats
}

func (c *Client) buildWeapon(eq *Equip) *Weapon {
	w := &Weapon{
		Name:   c.localize(eq.Flat.NameTextMapHash),
		Level:  eq.Weapon.Level,
		Rarity: eq.Flat.RankLevel,
	}
	// affixMap holds the refinement rank zero-based.
	for _, rank := range eq.Weapon.AffixMap {
		w.Refinement = rank + 1
		break
	}
	return w
}

func (c *Client) buildArtifact(eq *Equip) Artifact {
	art := Artifact{
		Slot:   eq.Flat.EquipType,
		Name:   c.localize(eq.Flat.SetNameTextMapHash),
		Rarity: eq.Flat.RankLevel,
	}
	if eq.Reliquary != nil {
		// The API stores artifact levels one above the displayed value.
		if lvl := eq.Reliquary.Level - 1; lvl > 0 {
			art.Level = lvl
		}
	}
	if eq.Flat.ReliquaryMainstat != nil {
		art.MainStat = formatStat(eq.Flat.ReliquaryMainstat.MainPropID, eq.Flat.ReliquaryMainstat.StatValue)
	}
	for _, sub := range eq.Flat.ReliquarySubstats {
		art.Subs = append(art.Subs, formatStat(sub.AppendPropID, sub.StatValue))
	}
	return art
}

var propShortNames = map[string]string{
	"FIGHT_PROP_HP":                "HP",
	"FIGHT_PROP_HP_PERCENT":        "HP%",
	"FIGHT_PROP_ATTACK":            "ATK",
	"FIGHT_PROP_ATTACK_PERCENT":    "ATK%",
	"FIGHT_PROP_DEFENSE":           "DEF",
	"FIGHT_PROP_DEFENSE_PERCENT":   "DEF%",
	"FIGHT_PROP_CRITICAL":          "CR",
	"FIGHT_PROP_CRITICAL_HURT":     "CD",
	"FIGHT_PROP_CHARGE_EFFICIENCY": "ER",
	"FIGHT_PROP_ELEMENT_MASTERY":   "EM",
	"FIGHT_PROP_HEAL_ADD":          "Heal",
	"FIGHT_PROP_PHYSICAL_ADD_HURT": "Phys",
	"FIGHT_PROP_FIRE_ADD_HURT":     "Pyro",
	"FIGHT_PROP_WATER_ADD_HURT":    "Hydro",
	"FIGHT_PROP_ELEC_ADD_HURT":     "Electro",
	"FIGHT_PROP_ICE_ADD_HURT":      "Cryo",
	"FIGHT_PROP_WIND_ADD_HURT":     "Anemo",
	"FIGHT_PROP_ROCK_ADD_HURT":     "Geo",
	"FIGHT_PROP_GRASS_ADD_HURT":    "Dendro",
}

func formatStat(propID string, value float64) string {
	name, ok := propShortNames[propID]
	if !ok {
		name = propID
	}
	if strings.Contains(propID, "PERCENT") || strings.Contains(propID, "CRITICAL") ||
		strings.Contains(propID, "CHARGE") || strings.Contains(propID, "ADD") {
		return fmt.Sprintf("%s %.1f%%", name, value)
	}
	return fmt.Sprintf("%s %d", name, int(value+0.5))
}

func propInt(props map[string]PropValue, key string) int {
	v, ok := props[key]
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(v.IVal)
	return n
}

func maxLevelFor(ascension int) int {
	if lvl, ok := ascensionMaxLevel[ascension]; ok {
		return lvl
	}
	return 90
}

func rarityFromQuality(q string) int {
	if strings.HasPrefix(q, "QUALITY_ORANGE") {
		return 5
	}
	return 4
}

// PickCharacter chooses a card by query. An exact avatar id wins, then an
// exact name match, then a case-insensitive substring.
func PickCharacter(cards []CharacterCard, query string) (*CharacterCard, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, false
	}
	if id, err := strconv.Atoi(q); err == nil {
		for i := range cards {
			if cards[i].AvatarID == id {
				return &cards[i], true
			}
		}
	}
	lower := strings.ToLower(q)
	for i := range cards {
		if strings.ToLower(cards[i].Name) == lower {
			return &cards[i], true
		}
	}
	for i := range cards {
		if strings.Contains(strings.ToLower(cards[i].Name), lower) {
			return &cards[i], true
		}
	}
	return nil, false
}
