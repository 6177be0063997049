package enka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisartix/herder/internal/database"
)

func TestValidUID(t *testing.T) {
	tests := []struct {
		uid  string
		want bool
	}{
		{"700123456", true},
		{"7001234567", true},
		{"70012345", false},
		{"70012345678", false},
		{"70012345a", false},
		{"", false},
		{"-700123456", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidUID(tt.uid), tt.uid)
	}
}

func TestUIDBook(t *testing.T) {
	book := NewUIDBook(database.NewMemory())

	require.Error(t, book.SetDefault("not-a-uid"))
	require.NoError(t, book.SetDefault("700123456"))

	uid, err := book.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "700123456", uid)

	require.NoError(t, book.SaveAlias("Main", "700999888"))
	uid, err = book.Resolve("main")
	require.NoError(t, err)
	assert.Equal(t, "700999888", uid)

	uid, err = book.Resolve("MAIN")
	require.NoError(t, err)
	assert.Equal(t, "700999888", uid)

	// Literal uids bypass the book.
	uid, err = book.Resolve("701111111")
	require.NoError(t, err)
	assert.Equal(t, "701111111", uid)

	_, err = book.Resolve("stranger")
	require.Error(t, err)

	removed, err := book.DeleteAlias("main")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = book.DeleteAlias("main")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUIDBookRejectsUIDLikeAlias(t *testing.T) {
	book := NewUIDBook(database.NewMemory())
	require.Error(t, book.SaveAlias("700123456", "700999888"))
}

func TestMaxLevelFor(t *testing.T) {
	tests := []struct {
		ascension int
		want      int
	}{
		{0, 20}, {1, 40}, {2, 50}, {3, 60}, {4, 70}, {5, 80}, {6, 90}, {7, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maxLevelFor(tt.ascension))
	}
}

func TestBuildStatsPercentProps(t *testing.T) {
	stats := buildStats(map[string]float64{
		"2000": 18432.7,
		"2001": 1936.2,
		"20":   0.664,
		"22":   1.872,
	})
	require.Len(t, stats, 4)
	assert.Equal(t, Stat{Label: "HP", Value: "18433"}, stats[0])
	assert.Equal(t, Stat{Label: "ATK", Value: "1936"}, stats[1])
	assert.Equal(t, Stat{Label: "Crit Rate", Value: "66.4%", Percent: true}, stats[2])
	assert.Equal(t, Stat{Label: "Crit DMG", Value: "187.2%", Percent: true}, stats[3])
}

func testClientWithMeta() *Client {
	c := NewClient(0, "")
	c.metaOnce.Do(func() {})
	c.chars = map[string]charMeta{
		"10000002": {Element: "Ice", NameTextMapHash: "1533656818", QualityType: "QUALITY_ORANGE", SkillOrder: []int{10024, 10018, 10019}},
	}
	c.loc = map[string]string{
		"1533656818": "Kamisato Ayaka",
		"8419":       "Mistsplitter Reforged",
	}
	return c
}

func TestBuildArtifactLevel(t *testing.T) {
	c := testClientWithMeta()

	art := c.buildArtifact(&Equip{
		Reliquary: &ReliquaryRaw{Level: 21},
		Flat:      FlatInfo{EquipType: "EQUIP_BRACER", RankLevel: 5},
	})
	assert.Equal(t, 20, art.Level)

	// Fresh drops come back at level 0 and must not render as negative.
	art = c.buildArtifact(&Equip{
		Reliquary: &ReliquaryRaw{Level: 0},
		Flat:      FlatInfo{EquipType: "EQUIP_BRACER", RankLevel: 4},
	})
	assert.Equal(t, 0, art.Level)
}

func TestNormalize(t *testing.T) {
	c := testClientWithMeta()
	raw := &RawProfile{
		PlayerInfo: &PlayerInfo{
			Nickname:           "Traveler",
			Level:              60,
			WorldLevel:         8,
			ShowAvatarInfoList: []ShowAvatarInfo{{AvatarID: 10000002, Level: 90}},
		},
		AvatarInfoList: []AvatarInfo{{
			AvatarID: 10000002,
			PropMap: map[string]PropValue{
				"4001": {IVal: "90"},
				"1002": {IVal: "6"},
			},
			FightPropMap:            map[string]float64{"2000": 20000, "20": 0.75},
			SkillLevelMap:           map[string]int{"10024": 10, "10018": 9, "10019": 13},
			ProudSkillExtraLevelMap: map[string]int{"10019": 3},
			TalentIDList:            []int{1, 2},
			EquipList: []Equip{
				{
					Weapon: &WeaponRaw{Level: 90, AffixMap: map[string]int{"118419": 0}},
					Flat:   FlatInfo{NameTextMapHash: "8419", RankLevel: 5, ItemType: "ITEM_WEAPON"},
				},
				{
					Reliquary: &ReliquaryRaw{Level: 21},
					Flat: FlatInfo{
						ItemType:          "ITEM_RELIQUARY",
						EquipType:         "EQUIP_RING",
						RankLevel:         5,
						ReliquaryMainstat: &StatRaw{MainPropID: "FIGHT_PROP_ICE_ADD_HURT", StatValue: 46.6},
					},
				},
				{
					Reliquary: &ReliquaryRaw{Level: 21},
					Flat: FlatInfo{
						ItemType:          "ITEM_RELIQUARY",
						EquipType:         "EQUIP_BRACER",
						RankLevel:         5,
						ReliquaryMainstat: &StatRaw{MainPropID: "FIGHT_PROP_HP", StatValue: 4780},
						ReliquarySubstats: []AppendStat{{AppendPropID: "FIGHT_PROP_CRITICAL", StatValue: 10.9}},
					},
				},
			},
		}},
	}

	p := c.Normalize("700123456", raw)
	assert.Equal(t, "Traveler", p.Nickname)
	require.Len(t, p.Characters, 1)
	assert.Equal(t, "Kamisato Ayaka", p.Characters[0].Name)

	require.Len(t, p.Cards, 1)
	card := p.Cards[0]
	assert.Equal(t, "Kamisato Ayaka", card.Name)
	assert.Equal(t, "Ice", card.Element)
	assert.Equal(t, 5, card.Rarity)
	assert.Equal(t, 90, card.Level)
	assert.Equal(t, 90, card.MaxLevel)
	assert.Equal(t, 2, card.Constell)

	require.Len(t, card.Skills, 3)
	assert.Equal(t, Skill{Level: 10}, card.Skills[0])
	assert.Equal(t, Skill{Level: 13, Extra: 3}, card.Skills[2])

	require.NotNil(t, card.Weapon)
	assert.Equal(t, "Mistsplitter Reforged", card.Weapon.Name)
	assert.Equal(t, 1, card.Weapon.Refinement)

	// Artifacts come back sorted by slot, flower before goblet.
	require.Len(t, card.Artifacts, 2)
	assert.Equal(t, "Flower", card.Artifacts[0].Slot)
	assert.Equal(t, 20, card.Artifacts[0].Level)
	assert.Equal(t, "HP 4780", card.Artifacts[0].MainStat)
	assert.Equal(t, []string{"CR 10.9%"}, card.Artifacts[0].Subs)
	assert.Equal(t, "Goblet", card.Artifacts[1].Slot)
	assert.Equal(t, "Cryo 46.6%", card.Artifacts[1].MainStat)
}

func TestPickCharacter(t *testing.T) {
	cards := []CharacterCard{
		{AvatarID: 10000002, Name: "Kamisato Ayaka"},
		{AvatarID: 10000030, Name: "Zhongli"},
		{AvatarID: 10000046, Name: "Hu Tao"},
	}

	got, ok := PickCharacter(cards, "10000030")
	require.True(t, ok)
	assert.Equal(t, "Zhongli", got.Name)

	got, ok = PickCharacter(cards, "hu tao")
	require.True(t, ok)
	assert.Equal(t, "Hu Tao", got.Name)

	got, ok = PickCharacter(cards, "ayaka")
	require.True(t, ok)
	assert.Equal(t, "Kamisato Ayaka", got.Name)

	_, ok = PickCharacter(cards, "venti")
	assert.False(t, ok)

	_, ok = PickCharacter(cards, "")
	assert.False(t, ok)
}

func TestFitText(t *testing.T) {
	measure := func(s string) float64 { return float64(len([]rune(s))) }

	assert.Equal(t, "short", fitText(measure, "short", 10))
	assert.Equal(t, "longer na…", fitText(measure, "longer name here", 10))
	assert.Equal(t, "…", fitText(measure, "abc", 0))
}

func TestRenderCharacterProducesPNG(t *testing.T) {
	card := &CharacterCard{
		Name: "Zhongli", Element: "Rock", Rarity: 5, Level: 90, MaxLevel: 90,
		Stats:  []Stat{{Label: "HP", Value: "40000"}},
		Weapon: &Weapon{Name: "Vortex Vanquisher", Level: 90, Rarity: 5, Refinement: 1},
	}
	png, err := RenderCharacter(card)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
