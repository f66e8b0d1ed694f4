// Package identicon renders a short visual fingerprint of a user's
// credentials. The user sees the same four glyphs every time they type
// their master secret correctly, and different ones when they mistype
// it, without the secret ever being checked against stored state.
package identicon

import (
	"strconv"

	"github.com/mpw-go/mpw/pkg/crypto"
)

// Color is the identicon's display color, an ANSI terminal color.
type Color uint8

const (
	Red Color = iota
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Blue:
		return "blue"
	case Magenta:
		return "magenta"
	case Cyan:
		return "cyan"
	default:
		return "white"
	}
}

// ansi returns the SGR foreground code for the color (31-37).
func (c Color) ansi() int {
	return 31 + int(c)
}

// The glyph tables. Table contents and order are fixed: the identicon
// for a given user must render identically everywhere.
var (
	leftArms  = []string{"╔", "╚", "╰", "═"}
	bodies    = []string{"█", "░", "▒", "▓", "☺", "☻"}
	rightArms = []string{"╗", "╝", "╯", "═"}
	accessories = []string{
		"◈", "◎", "◐", "◑", "◒", "◓", "☀", "☁", "☂", "☃", "☄", "★", "☆", "☎", "☏", "⎈", "⌂", "☘", "☢", "☣",
		"☕", "⌚", "⌛", "⏰", "⚡", "⛄", "⛅", "☔", "♔", "♕", "♖", "♗", "♘", "♙", "♚", "♛", "♜", "♝", "♞", "♟",
		"♨", "♩", "♪", "♫", "⚐", "⚑", "⚔", "⚖", "⚙", "⚠", "⌘", "⏎", "✄", "✆", "✈", "✉", "✌",
	}
)

// Identicon is a 4-glyph fingerprint of (fullName, masterSecret).
type Identicon struct {
	LeftArm   string
	Body      string
	RightArm  string
	Accessory string
	Color     Color
}

// New computes the identicon for the given credentials. It is a pure
// function of its inputs; nil is returned when either input is empty.
func New(fullName, masterSecret string) *Identicon {
	if fullName == "" || masterSecret == "" {
		return nil
	}

	mac := crypto.HMACSHA256([]byte(masterSecret), []byte(fullName))
	defer crypto.WipeBytes(mac[:])

	return &Identicon{
		LeftArm:   leftArms[int(mac[0])%len(leftArms)],
		Body:      bodies[int(mac[1])%len(bodies)],
		RightArm:  rightArms[int(mac[2])%len(rightArms)],
		Accessory: accessories[int(mac[3])%len(accessories)],
		Color:     Color(int(mac[4]) % 7),
	}
}

// Text returns the bare 4-glyph string.
func (i *Identicon) Text() string {
	if i == nil {
		return ""
	}
	return i.LeftArm + i.Body + i.RightArm + i.Accessory
}

// String returns the glyphs wrapped in ANSI color escapes for terminal
// display.
func (i *Identicon) String() string {
	if i == nil {
		return ""
	}
	return "\x1b[" + strconv.Itoa(i.Color.ansi()) + "m" + i.Text() + "\x1b[0m"
}
