package enka

import "encoding/json"

// RawProfile mirrors the relevant parts of the Enka.Network uid response.
type RawProfile struct {
	PlayerInfo     *PlayerInfo  `json:"playerInfo"`
	AvatarInfoList []AvatarInfo `json:"avatarInfoList"`
}

type PlayerInfo struct {
	Nickname             string           `json:"nickname"`
	Level                int              `json:"level"`
	Signature            string           `json:"signature"`
	WorldLevel           int              `json:"worldLevel"`
	FinishAchievementNum int              `json:"finishAchievementNum"`
	TowerFloorIndex      int              `json:"towerFloorIndex"`
	TowerLevelIndex      int              `json:"towerLevelIndex"`
	ShowAvatarInfoList   []ShowAvatarInfo `json:"showAvatarInfoList"`
	ProfilePicture       *ProfilePicture  `json:"profilePicture"`
}

type ShowAvatarInfo struct {
	AvatarID int `json:"avatarId"`
	Level    int `json:"level"`
}

type ProfilePicture struct {
	AvatarID int `json:"avatarId"`
}

type AvatarInfo struct {
	AvatarID                int                    `json:"avatarId"`
	PropMap                 map[string]PropValue   `json:"propMap"`
	FightPropMap            map[string]float64     `json:"fightPropMap"`
	SkillLevelMap           map[string]int         `json:"skillLevelMap"`
	ProudSkillExtraLevelMap map[string]int         `json:"proudSkillExtraLevelMap"`
	TalentIDList            []int                  `json:"talentIdList"`
	FetterInfo              struct{ ExpLevel int } `json:"fetterInfo"`
	EquipList               []Equip                `json:"equipList"`
}

type PropValue struct {
	Type int    `json:"type"`
	IVal string `json:"ival"`
	Val  string `json:"val"`
}

type Equip struct {
	ItemID    int           `json:"itemId"`
	Weapon    *WeaponRaw    `json:"weapon"`
	Reliquary *ReliquaryRaw `json:"reliquary"`
	Flat      FlatInfo      `json:"flat"`
}

type ReliquaryRaw struct {
	Level int `json:"level"`
}

type WeaponRaw struct {
	Level        int            `json:"level"`
	PromoteLevel int            `json:"promoteLevel"`
	AffixMap     map[string]int `json:"affixMap"`
}

type FlatInfo struct {
	NameTextMapHash    string       `json:"nameTextMapHash"`
	SetNameTextMapHash string       `json:"setNameTextMapHash"`
	RankLevel          int          `json:"rankLevel"`
	ItemType           string       `json:"itemType"`
	EquipType          string       `json:"equipType"`
	ReliquaryMainstat  *StatRaw     `json:"reliquaryMainstat"`
	ReliquarySubstats  []AppendStat `json:"reliquarySubstats"`
	WeaponStats        []AppendStat `json:"weaponStats"`
}

type StatRaw struct {
	MainPropID string  `json:"mainPropId"`
	StatValue  float64 `json:"statValue"`
}

type AppendStat struct {
	AppendPropID string  `json:"appendPropId"`
	StatValue    float64 `json:"statValue"`
}

// charMeta is one entry of the API-docs characters.json store.
type charMeta struct {
	Element         string      `json:"Element"`
	NameTextMapHash json.Number `json:"NameTextMapHash"`
	QualityType     string      `json:"QualityType"`
	SkillOrder      []int       `json:"SkillOrder"`
	SideIconName    string      `json:"SideIconName"`
}
