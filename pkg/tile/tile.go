// Package tile enumerates the tiles the firmware knows about.
//
// The set is closed: layout overrides and icon files can only refer to tiles
// listed here, and every tile carries its layout key, its icon filenames in
// lookup order and the built-in glyph drawn when no icon file is usable.
package tile

import (
	"fmt"
	"strings"
)

// Group scopes tile keys; the same key may appear in more than one group.
type Group int

const (
	GroupUART Group = iota
	GroupInternal
	numGroups
)

var groupKeys = [numGroups]string{
	GroupUART:     "uart_tiles",
	GroupInternal: "internal_tiles",
}

// Key is the layout.json section name of the group.
func (g Group) Key() string {
	if g < 0 || g >= numGroups {
		return fmt.Sprintf("group(%d)", int(g))
	}
	return groupKeys[g]
}

func (g Group) String() string { return g.Key() }

// Groups returns every group in section order.
func Groups() []Group {
	return []Group{GroupUART, GroupInternal}
}

// ID identifies one tile.
type ID int

const (
	WiFiScanAttack ID = iota
	GlobalWiFiAttacks
	CompromisedData
	DeauthDetector
	Bluetooth
	NetworkObserver
	Karma
	Settings
	AdhocPortal
	InternalSettings
	InternalDisplay
	InternalSDCard
	InternalAbout
	numIDs
)

// Info describes a tile.
type Info struct {
	ID    ID
	Group Group
	Key   string
	// Icons lists candidate filenames under icons/, canonical name first.
	Icons []string
	Glyph string
}

var registry = [numIDs]Info{
	WiFiScanAttack:    {Group: GroupUART, Key: "wifi_scan_attack", Icons: []string{"wifiscanattack.png", "wifi_scan_attack.png"}, Glyph: "wifi"},
	GlobalWiFiAttacks: {Group: GroupUART, Key: "global_wifi_attacks", Icons: []string{"globalwifiattacks.png", "global_wifi_attacks.png"}, Glyph: "warning"},
	CompromisedData:   {Group: GroupUART, Key: "compromised_data", Icons: []string{"compromiseddata.png", "compromised_data.png"}, Glyph: "file"},
	DeauthDetector:    {Group: GroupUART, Key: "deauth_detector", Icons: []string{"deauthdetector.png", "deauth_detector.png"}, Glyph: "eye_open"},
	Bluetooth:         {Group: GroupUART, Key: "bluetooth", Icons: []string{"bluetooth.png"}, Glyph: "bluetooth"},
	NetworkObserver:   {Group: GroupUART, Key: "network_observer", Icons: []string{"networkobserver.png", "network_observer.png"}, Glyph: "list"},
	Karma:             {Group: GroupUART, Key: "karma", Icons: []string{"karma.png"}, Glyph: "loop"},
	Settings:          {Group: GroupUART, Key: "settings", Icons: []string{"settings.png"}, Glyph: "settings"},
	AdhocPortal:       {Group: GroupUART, Key: "adhoc_portal", Icons: []string{"adhoc.png", "adhoc_portal.png"}, Glyph: "home"},
	InternalSettings:  {Group: GroupInternal, Key: "settings", Icons: []string{"settings.png"}, Glyph: "settings"},
	InternalDisplay:   {Group: GroupInternal, Key: "display", Icons: []string{"display.png"}, Glyph: "image"},
	InternalSDCard:    {Group: GroupInternal, Key: "sd_card", Icons: []string{"sdcard.png", "sd_card.png"}, Glyph: "sd_card"},
	InternalAbout:     {Group: GroupInternal, Key: "about", Icons: []string{"about.png"}, Glyph: "info"},
}

func init() {
	for i := range registry {
		registry[i].ID = ID(i)
	}
}

// Info returns the registry entry for id. Unknown ids get a zero Info with
// the id set and no icons.
func (id ID) Info() Info {
	if !id.Valid() {
		return Info{ID: id, Group: -1}
	}
	info := registry[id]
	info.Icons = append([]string(nil), info.Icons...)
	return info
}

// Valid reports whether id is part of the registry.
func (id ID) Valid() bool {
	return id >= 0 && id < numIDs
}

// String renders "group/key".
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("tile(%d)", int(id))
	}
	return registry[id].Group.Key() + "/" + registry[id].Key
}

// All returns every tile in registry order.
func All() []ID {
	ids := make([]ID, 0, numIDs)
	for i := ID(0); i < numIDs; i++ {
		ids = append(ids, i)
	}
	return ids
}

// InGroup returns the tiles of g in registry order.
func InGroup(g Group) []ID {
	var ids []ID
	for _, info := range registry {
		if info.Group == g {
			ids = append(ids, info.ID)
		}
	}
	return ids
}

// Lookup finds the tile with key inside group g. Keys are matched exactly.
func Lookup(g Group, key string) (ID, bool) {
	for _, info := range registry {
		if info.Group == g && info.Key == key {
			return info.ID, true
		}
	}
	return -1, false
}

// Parse accepts the "group/key" form produced by String.
func Parse(s string) (ID, bool) {
	groupKey, key, ok := strings.Cut(s, "/")
	if !ok {
		return -1, false
	}
	for _, g := range Groups() {
		if g.Key() == groupKey {
			return Lookup(g, key)
		}
	}
	return -1, false
}
