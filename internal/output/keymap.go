package output

import (
	"strconv"
	"strings"
)

// Linux input key codes (subset).
const (
	KEY_ESC        = 1
	KEY_1          = 2
	KEY_0          = 11
	KEY_MINUS      = 12
	KEY_EQUAL      = 13
	KEY_BACKSPACE  = 14
	KEY_TAB        = 15
	KEY_Q          = 16
	KEY_W          = 17
	KEY_E          = 18
	KEY_R          = 19
	KEY_T          = 20
	KEY_Y          = 21
	KEY_U          = 22
	KEY_I          = 23
	KEY_O          = 24
	KEY_P          = 25
	KEY_LEFTBRACE  = 26
	KEY_RIGHTBRACE = 27
	KEY_ENTER      = 28
	KEY_LEFTCTRL   = 29
	KEY_A          = 30
	KEY_S          = 31
	KEY_D          = 32
	KEY_F          = 33
	KEY_G          = 34
	KEY_H          = 35
	KEY_J          = 36
	KEY_K          = 37
	KEY_L          = 38
	KEY_SEMICOLON  = 39
	KEY_APOSTROPHE = 40
	KEY_GRAVE      = 41
	KEY_LEFTSHIFT  = 42
	KEY_BACKSLASH  = 43
	KEY_Z          = 44
	KEY_X          = 45
	KEY_C          = 46
	KEY_V          = 47
	KEY_B          = 48
	KEY_N          = 49
	KEY_M          = 50
	KEY_COMMA      = 51
	KEY_DOT        = 52
	KEY_SLASH      = 53
	KEY_RIGHTSHIFT = 54
	KEY_LEFTALT    = 56
	KEY_SPACE      = 57
	KEY_CAPSLOCK   = 58
	KEY_F1         = 59
	KEY_F11        = 87
	KEY_F12        = 88
	KEY_RIGHTCTRL  = 97
	KEY_RIGHTALT   = 100
	KEY_HOME       = 102
	KEY_UP         = 103
	KEY_PAGEUP     = 104
	KEY_LEFT       = 105
	KEY_RIGHT      = 106
	KEY_END        = 107
	KEY_DOWN       = 108
	KEY_PAGEDOWN   = 109
	KEY_INSERT     = 110
	KEY_DELETE     = 111
	KEY_LEFTMETA   = 125
	KEY_RIGHTMETA  = 126

	BTN_LEFT   = 0x110
	BTN_RIGHT  = 0x111
	BTN_MIDDLE = 0x112
	BTN_SIDE   = 0x113
	BTN_EXTRA  = 0x114
)

var keyNames = map[string]int{
	"esc": KEY_ESC, "minus": KEY_MINUS, "equal": KEY_EQUAL, "backspace": KEY_BACKSPACE,
	"tab": KEY_TAB, "leftbrace": KEY_LEFTBRACE, "rightbrace": KEY_RIGHTBRACE,
	"enter": KEY_ENTER, "leftctrl": KEY_LEFTCTRL, "semicolon": KEY_SEMICOLON,
	"apostrophe": KEY_APOSTROPHE, "grave": KEY_GRAVE, "leftshift": KEY_LEFTSHIFT,
	"backslash": KEY_BACKSLASH, "comma": KEY_COMMA, "dot": KEY_DOT, "slash": KEY_SLASH,
	"rightshift": KEY_RIGHTSHIFT, "leftalt": KEY_LEFTALT, "space": KEY_SPACE,
	"capslock": KEY_CAPSLOCK, "f11": KEY_F11, "f12": KEY_F12, "rightctrl": KEY_RIGHTCTRL,
	"rightalt": KEY_RIGHTALT, "home": KEY_HOME, "up": KEY_UP, "pageup": KEY_PAGEUP,
	"left": KEY_LEFT, "right": KEY_RIGHT, "end": KEY_END, "down": KEY_DOWN,
	"pagedown": KEY_PAGEDOWN, "insert": KEY_INSERT, "delete": KEY_DELETE,
	"leftmeta": KEY_LEFTMETA, "rightmeta": KEY_RIGHTMETA,

	"mouse1": BTN_LEFT, "mouse2": BTN_MIDDLE, "mouse3": BTN_RIGHT,
	"mouse8": BTN_SIDE, "mouse9": BTN_EXTRA,
}

var codeNames = map[int]string{}

func init() {
	letters := map[byte]int{
		'q': KEY_Q, 'w': KEY_W, 'e': KEY_E, 'r': KEY_R, 't': KEY_T, 'y': KEY_Y,
		'u': KEY_U, 'i': KEY_I, 'o': KEY_O, 'p': KEY_P, 'a': KEY_A, 's': KEY_S,
		'd': KEY_D, 'f': KEY_F, 'g': KEY_G, 'h': KEY_H, 'j': KEY_J, 'k': KEY_K,
		'l': KEY_L, 'z': KEY_Z, 'x': KEY_X, 'c': KEY_C, 'v': KEY_V, 'b': KEY_B,
		'n': KEY_N, 'm': KEY_M,
	}
	for ch, code := range letters {
		keyNames[string(ch)] = code
	}
	// 1..9 are consecutive, 0 comes after 9.
	for i := 1; i <= 9; i++ {
		keyNames[strconv.Itoa(i)] = KEY_1 + i - 1
	}
	keyNames["0"] = KEY_0
	// F1..F10 are consecutive.
	for i := 1; i <= 10; i++ {
		keyNames["f"+strconv.Itoa(i)] = KEY_F1 + i - 1
	}
	for name, code := range keyNames {
		codeNames[code] = name
	}
}

// KeyCode resolves a key name or a decimal/hex code.
func KeyCode(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, ok := keyNames[s]; ok {
		return code, true
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int(n), true
}

// KeyName returns the symbolic name of code, or its number.
func KeyName(code int) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}

// KeyCodes returns every code that has a name, used to declare device
// capabilities.
func KeyCodes() (keys, buttons []int) {
	for code := range codeNames {
		if code >= BTN_LEFT && code <= BTN_EXTRA {
			buttons = append(buttons, code)
		} else {
			keys = append(keys, code)
		}
	}
	return keys, buttons
}
