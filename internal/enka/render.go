package enka

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	cardWidth    = 900
	cardHeight   = 600
	profileWidth = 900
	panelRadius  = 18.0
)

type palette struct {
	top, bottom [3]float64
	accent      [3]float64
}

// Background palettes keyed by character element. The profile card uses the
// neutral fallback.
var palettes = map[string]palette{
	"Fire":     {top: rgb(0x2b, 0x14, 0x12), bottom: rgb(0x45, 0x1d, 0x16), accent: rgb(0xff, 0x7a, 0x45)},
	"Water":    {top: rgb(0x0e, 0x1a, 0x2e), bottom: rgb(0x14, 0x2a, 0x4a), accent: rgb(0x4f, 0xc3, 0xf7)},
	"Ice":      {top: rgb(0x10, 0x20, 0x28), bottom: rgb(0x1a, 0x36, 0x42), accent: rgb(0xa5, 0xf2, 0xf3)},
	"Electric": {top: rgb(0x1d, 0x13, 0x2e), bottom: rgb(0x31, 0x1b, 0x4d), accent: rgb(0xb3, 0x8c, 0xff)},
	"Wind":     {top: rgb(0x0f, 0x23, 0x1d), bottom: rgb(0x17, 0x3a, 0x2f), accent: rgb(0x74, 0xe0, 0xb8)},
	"Rock":     {top: rgb(0x2a, 0x20, 0x0e), bottom: rgb(0x44, 0x35, 0x14), accent: rgb(0xff, 0xd5, 0x66)},
	"Grass":    {top: rgb(0x15, 0x24, 0x0e), bottom: rgb(0x24, 0x3e, 0x16), accent: rgb(0xa6, 0xe2, 0x5f)},
	"":         {top: rgb(0x14, 0x16, 0x1f), bottom: rgb(0x20, 0x24, 0x36), accent: rgb(0x8a, 0x93, 0xc4)},
}

func rgb(r, g, b int) [3]float64 {
	return [3]float64{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

var (
	fontOnce    sync.Once
	fontErr     error
	regularFont *opentype.Font
	boldFont    *opentype.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		regularFont, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		boldFont, fontErr = opentype.Parse(gobold.TTF)
	})
	return fontErr
}

func face(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// fitText shortens s until measure(s) fits within max, appending an ellipsis
// when anything was cut.
func fitText(measure func(string) float64, s string, max float64) string {
	if measure(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + "…"
		if measure(candidate) <= max {
			return candidate
		}
	}
	return "…"
}

func drawBackground(dc *gg.Context, w, h int, pal palette) {
	grad := gg.NewLinearGradient(0, 0, 0, float64(h))
	grad.AddColorStop(0, ggColor(pal.top))
	grad.AddColorStop(1, ggColor(pal.bottom))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	// Soft accent orbs, faked blur with stacked translucent circles.
	drawOrb(dc, float64(w)*0.85, float64(h)*0.2, 160, pal.accent)
	drawOrb(dc, float64(w)*0.1, float64(h)*0.85, 120, pal.accent)
}

func drawOrb(dc *gg.Context, x, y, r float64, c [3]float64) {
	for i := 0; i < 6; i++ {
		dc.SetRGBA(c[0], c[1], c[2], 0.035)
		dc.DrawCircle(x, y, r*(1-float64(i)*0.13))
		dc.Fill()
	}
}

// drawAvatarDisc paints a clipped circle with the first rune of name, a
// stand-in for a portrait.
func drawAvatarDisc(dc *gg.Context, x, y, r float64, accent [3]float64, name string, f font.Face) {
	dc.Push()
	dc.DrawCircle(x, y, r)
	dc.Clip()
	dc.SetRGBA(accent[0], accent[1], accent[2], 0.35)
	dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
	dc.Fill()
	dc.ResetClip()
	dc.Pop()

	dc.SetRGBA(1, 1, 1, 0.25)
	dc.SetLineWidth(2)
	dc.DrawCircle(x, y, r)
	dc.Stroke()

	initial := "?"
	if runes := []rune(strings.TrimSpace(name)); len(runes) > 0 {
		initial = strings.ToUpper(string(runes[0]))
	}
	dc.SetFontFace(f)
	dc.SetRGB(0.97, 0.97, 1)
	dc.DrawStringAnchored(initial, x, y, 0.5, 0.5)
}

func drawPanel(dc *gg.Context, x, y, w, h float64) {
	dc.SetRGBA(1, 1, 1, 0.06)
	dc.DrawRoundedRectangle(x, y, w, h, panelRadius)
	dc.Fill()
	dc.SetRGBA(1, 1, 1, 0.10)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, w, h, panelRadius)
	dc.Stroke()
}

func ggColor(c [3]float64) colorRGB {
	return colorRGB{c[0], c[1], c[2]}
}

type colorRGB struct{ r, g, b float64 }

func (c colorRGB) RGBA() (uint32, uint32, uint32, uint32) {
	return uint32(c.r * 0xffff), uint32(c.g * 0xffff), uint32(c.b * 0xffff), 0xffff
}

// RenderProfile draws the account overview card and returns it as PNG bytes.
func RenderProfile(p *Profile) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	rows := len(p.Characters)
	if rows == 0 {
		rows = 1
	}
	height := 260 + rows*44 + 40
	dc := gg.NewContext(profileWidth, height)
	drawBackground(dc, profileWidth, height, palettes[""])

	titleFace, err := face(boldFont, 40)
	if err != nil {
		return nil, err
	}
	textFace, err := face(regularFont, 24)
	if err != nil {
		return nil, err
	}
	smallFace, err := face(regularFont, 20)
	if err != nil {
		return nil, err
	}

	drawPanel(dc, 30, 30, profileWidth-60, 180)
	drawAvatarDisc(dc, 105, 120, 45, palettes[""].accent, p.Nickname, titleFace)

	dc.SetFontFace(titleFace)
	dc.SetRGB(0.95, 0.95, 0.98)
	name := fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, p.Nickname, profileWidth-440)
	dc.DrawString(name, 175, 90)

	dc.SetFontFace(textFace)
	dc.SetRGBA(0.85, 0.87, 0.95, 0.9)
	dc.DrawString(fmt.Sprintf("AR %d   WL %d   UID %s", p.Level, p.WorldLevel, p.UID), 175, 130)
	if p.Signature != "" {
		sig := fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, p.Signature, profileWidth-280)
		dc.SetRGBA(0.75, 0.77, 0.85, 0.8)
		dc.DrawString(sig, 175, 165)
	}

	dc.SetFontFace(smallFace)
	dc.SetRGBA(0.85, 0.87, 0.95, 0.9)
	dc.DrawStringAnchored(fmt.Sprintf("Achievements: %d", p.Achievements), profileWidth-60, 90, 1, 0)
	dc.DrawStringAnchored(fmt.Sprintf("Abyss: %d-%d", p.TowerFloor, p.TowerLevel), profileWidth-60, 125, 1, 0)

	drawPanel(dc, 30, 230, profileWidth-60, float64(rows*44+30))
	dc.SetFontFace(textFace)
	if len(p.Characters) == 0 {
		dc.SetRGBA(0.7, 0.72, 0.8, 0.8)
		dc.DrawString("Showcase is empty", 60, 275)
	}
	for i, ch := range p.Characters {
		y := 275 + float64(i*44)
		dc.SetRGB(0.92, 0.92, 0.96)
		dc.DrawString(fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, ch.Name, profileWidth-300), 60, y)
		dc.SetRGBA(0.8, 0.82, 0.9, 0.85)
		dc.DrawStringAnchored(fmt.Sprintf("Lv. %d", ch.Level), profileWidth-60, y, 1, 0)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderCharacter draws one character build card and returns PNG bytes.
func RenderCharacter(card *CharacterCard) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	pal, ok := palettes[card.Element]
	if !ok {
		pal = palettes[""]
	}
	dc := gg.NewContext(cardWidth, cardHeight)
	drawBackground(dc, cardWidth, cardHeight, pal)

	titleFace, err := face(boldFont, 38)
	if err != nil {
		return nil, err
	}
	textFace, err := face(regularFont, 22)
	if err != nil {
		return nil, err
	}
	smallFace, err := face(regularFont, 18)
	if err != nil {
		return nil, err
	}

	// Header: avatar disc, name, level, constellations, friendship.
	drawPanel(dc, 30, 30, cardWidth-60, 110)
	drawAvatarDisc(dc, 95, 85, 38, pal.accent, card.Name, titleFace)
	dc.SetFontFace(titleFace)
	dc.SetRGB(0.95, 0.95, 0.98)
	name := fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, card.Name, cardWidth-380)
	dc.DrawString(name, 150, 85)
	dc.SetFontFace(textFace)
	dc.SetRGBA(0.85, 0.87, 0.95, 0.9)
	dc.DrawString(fmt.Sprintf("Lv. %d/%d   C%d   %s %d", card.Level, card.MaxLevel, card.Constell, rarityStars(card.Rarity), card.Friendship), 150, 120)

	skills := make([]string, 0, len(card.Skills))
	for _, sk := range card.Skills {
		if sk.Extra > 0 {
			skills = append(skills, fmt.Sprintf("%d+%d", sk.Level, sk.Extra))
		} else {
			skills = append(skills, fmt.Sprint(sk.Level))
		}
	}
	if len(skills) > 0 {
		dc.DrawStringAnchored("Talents "+strings.Join(skills, " / "), cardWidth-60, 120, 1, 0)
	}

	// Left panel: stats.
	statTop := 170.0
	drawPanel(dc, 30, statTop, 400, float64(len(card.Stats)*40+30))
	dc.SetFontFace(textFace)
	for i, st := range card.Stats {
		y := statTop + 45 + float64(i*40)
		dc.SetRGBA(0.78, 0.8, 0.9, 0.85)
		dc.DrawString(st.Label, 55, y)
		dc.SetRGB(0.95, 0.95, 0.98)
		dc.DrawStringAnchored(st.Value, 405, y, 1, 0)
	}

	// Right panel: weapon and artifacts.
	right := 460.0
	rightW := float64(cardWidth) - right - 30
	y := statTop
	if card.Weapon != nil {
		drawPanel(dc, right, y, rightW, 90)
		dc.SetFontFace(textFace)
		dc.SetRGB(0.95, 0.95, 0.98)
		wname := fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, card.Weapon.Name, rightW-50)
		dc.DrawString(wname, right+25, y+38)
		dc.SetFontFace(smallFace)
		dc.SetRGBA(0.8, 0.82, 0.9, 0.85)
		dc.DrawString(fmt.Sprintf("Lv. %d   R%d   %s", card.Weapon.Level, card.Weapon.Refinement, rarityStars(card.Weapon.Rarity)), right+25, y+68)
		y += 105
	}

	dc.SetFontFace(smallFace)
	for _, art := range card.Artifacts {
		if y+58 > cardHeight-20 {
			break
		}
		drawPanel(dc, right, y, rightW, 58)
		dc.SetRGB(0.92, 0.92, 0.96)
		line := fmt.Sprintf("%s  +%d  %s", art.Slot, art.Level, art.MainStat)
		dc.DrawString(fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, line, rightW-40), right+20, y+25)
		dc.SetRGBA(0.75, 0.78, 0.88, 0.8)
		subs := strings.Join(art.Subs, "  ")
		dc.DrawString(fitText(func(s string) float64 { w, _ := dc.MeasureString(s); return w }, subs, rightW-40), right+20, y+47)
		y += 66
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rarityStars(n int) string {
	if n <= 0 {
		return ""
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n)
}
