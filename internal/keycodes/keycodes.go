// Package keycodes is the name/code table collaborator: it maps the
// string key names used in JSON keymap configs to the Linux evdev key
// codes from linux/input-event-codes.h, and back.
package keycodes

import "strings"

// Code is a Linux evdev key code (the `code` field of struct input_event
// when Type == EV_KEY).
type Code uint16

// MaxKeycode bounds the dense tables built by the remap engine; every
// Code this package knows about fits in [0, MaxKeycode].
const MaxKeycode = 255

// Ignored is both Linux's KEY_RESERVED and the layer engine's sentinel
// for "this code is consumed, never forwarded" (spec.md §4.C).
const Ignored Code = 0

const (
	Esc        Code = 1
	Key1       Code = 2
	Key2       Code = 3
	Key3       Code = 4
	Key4       Code = 5
	Key5       Code = 6
	Key6       Code = 7
	Key7       Code = 8
	Key8       Code = 9
	Key9       Code = 10
	Key0       Code = 11
	Minus      Code = 12
	Equal      Code = 13
	Backspace  Code = 14
	Tab        Code = 15
	Q          Code = 16
	W          Code = 17
	E          Code = 18
	R          Code = 19
	T          Code = 20
	Y          Code = 21
	U          Code = 22
	I          Code = 23
	O          Code = 24
	P          Code = 25
	LeftBrace  Code = 26
	RightBrace Code = 27
	Enter      Code = 28
	LeftCtrl   Code = 29
	A          Code = 30
	S          Code = 31
	D          Code = 32
	F          Code = 33
	G          Code = 34
	H          Code = 35
	J          Code = 36
	K          Code = 37
	L          Code = 38
	Semicolon  Code = 39
	Apostrophe Code = 40
	Grave      Code = 41
	LeftShift  Code = 42
	Backslash  Code = 43
	Z          Code = 44
	X          Code = 45
	C          Code = 46
	V          Code = 47
	B          Code = 48
	N          Code = 49
	M          Code = 50
	Comma      Code = 51
	Dot        Code = 52
	Slash      Code = 53
	RightShift Code = 54
	KPAsterisk Code = 55
	LeftAlt    Code = 56
	Space      Code = 57
	CapsLock   Code = 58
	F1         Code = 59
	F2         Code = 60
	F3         Code = 61
	F4         Code = 62
	F5         Code = 63
	F6         Code = 64
	F7         Code = 65
	F8         Code = 66
	F9         Code = 67
	F10        Code = 68
	NumLock    Code = 69
	ScrollLock Code = 70
	KP7        Code = 71
	KP8        Code = 72
	KP9        Code = 73
	KPMinus    Code = 74
	KP4        Code = 75
	KP5        Code = 76
	KP6        Code = 77
	KPPlus     Code = 78
	KP1        Code = 79
	KP2        Code = 80
	KP3        Code = 81
	KP0        Code = 82
	KPDot      Code = 83
	Key102nd   Code = 86
	F11        Code = 87
	F12        Code = 88
	KPEnter    Code = 96
	RightCtrl  Code = 97
	KPSlash    Code = 98
	RightAlt   Code = 100
	Home       Code = 102
	Up         Code = 103
	PageUp     Code = 104
	Left       Code = 105
	Right      Code = 106
	End        Code = 107
	Down       Code = 108
	PageDown   Code = 109
	Insert     Code = 110
	Delete     Code = 111
	LeftMeta   Code = 125
	RightMeta  Code = 126
)

// nameTable is indexed by Code; built once in init from the constants
// above plus the ones without a named Go identifier worth exporting.
var nameTable [MaxKeycode + 1]string

// codeTable is the reverse of nameTable.
var codeTable map[string]Code

func register(code Code, name string) {
	nameTable[code] = name
	codeTable[name] = code
}

func init() {
	codeTable = make(map[string]Code, 128)
	register(Esc, "esc")
	register(Key1, "1")
	register(Key2, "2")
	register(Key3, "3")
	register(Key4, "4")
	register(Key5, "5")
	register(Key6, "6")
	register(Key7, "7")
	register(Key8, "8")
	register(Key9, "9")
	register(Key0, "0")
	register(Minus, "minus")
	register(Equal, "equal")
	register(Backspace, "backspace")
	register(Tab, "tab")
	register(Q, "q")
	register(W, "w")
	register(E, "e")
	register(R, "r")
	register(T, "t")
	register(Y, "y")
	register(U, "u")
	register(I, "i")
	register(O, "o")
	register(P, "p")
	register(LeftBrace, "leftbrace")
	register(RightBrace, "rightbrace")
	register(Enter, "enter")
	register(LeftCtrl, "leftctrl")
	register(A, "a")
	register(S, "s")
	register(D, "d")
	register(F, "f")
	register(G, "g")
	register(H, "h")
	register(J, "j")
	register(K, "k")
	register(L, "l")
	register(Semicolon, "semicolon")
	register(Apostrophe, "apostrophe")
	register(Grave, "grave")
	register(LeftShift, "leftshift")
	register(Backslash, "backslash")
	register(Z, "z")
	register(X, "x")
	register(C, "c")
	register(V, "v")
	register(B, "b")
	register(N, "n")
	register(M, "m")
	register(Comma, "comma")
	register(Dot, "dot")
	register(Slash, "slash")
	register(RightShift, "rightshift")
	register(KPAsterisk, "kpasterisk")
	register(LeftAlt, "leftalt")
	register(Space, "space")
	register(CapsLock, "capslock")
	register(F1, "f1")
	register(F2, "f2")
	register(F3, "f3")
	register(F4, "f4")
	register(F5, "f5")
	register(F6, "f6")
	register(F7, "f7")
	register(F8, "f8")
	register(F9, "f9")
	register(F10, "f10")
	register(NumLock, "numlock")
	register(ScrollLock, "scrolllock")
	register(KP7, "kp7")
	register(KP8, "kp8")
	register(KP9, "kp9")
	register(KPMinus, "kpminus")
	register(KP4, "kp4")
	register(KP5, "kp5")
	register(KP6, "kp6")
	register(KPPlus, "kpplus")
	register(KP1, "kp1")
	register(KP2, "kp2")
	register(KP3, "kp3")
	register(KP0, "kp0")
	register(KPDot, "kpdot")
	register(Key102nd, "102nd")
	register(F11, "f11")
	register(F12, "f12")
	register(KPEnter, "kpenter")
	register(RightCtrl, "rightctrl")
	register(KPSlash, "kpslash")
	register(RightAlt, "rightalt")
	register(Home, "home")
	register(Up, "up")
	register(PageUp, "pageup")
	register(Left, "left")
	register(Right, "right")
	register(End, "end")
	register(Down, "down")
	register(PageDown, "pagedown")
	register(Insert, "insert")
	register(Delete, "delete")
	register(LeftMeta, "leftmeta")
	register(RightMeta, "rightmeta")
}

// NameOf returns the lowercase name of code, or "?" if code is unknown.
func NameOf(code Code) string {
	if int(code) >= 0 && int(code) <= MaxKeycode {
		if name := nameTable[code]; name != "" {
			return name
		}
	}
	return "?"
}

// CodeOf resolves a key name to its Code, case-insensitively (spec.md's
// worked examples write names like "CAPSLOCK" while the table itself is
// keyed in lowercase). The bool return is false when name is not
// recognized.
func CodeOf(name string) (Code, bool) {
	code, ok := codeTable[strings.ToLower(name)]
	return code, ok
}
