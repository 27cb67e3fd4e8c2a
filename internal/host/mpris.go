package host

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPrefix    = "org.mpris.MediaPlayer2."
	mprisPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisPlayer    = "org.mpris.MediaPlayer2.Player"
	propertiesGet  = "org.freedesktop.DBus.Properties.Get"
	listNamesCall  = "org.freedesktop.DBus.ListNames"
	statusPlaying  = "Playing"
	metadataTitle  = "xesam:title"
	metadataArtist = "xesam:artist"
)

// MPRIS controls media players over the D-Bus session bus.
type MPRIS struct {
	conn      *dbus.Conn
	preferred string
}

// NewMPRIS connects to the session bus. preferred, when set, selects the
// player whose bus name contains it.
func NewMPRIS(preferred string) (*MPRIS, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &MPRIS{conn: conn, preferred: strings.ToLower(preferred)}, nil
}

// Close releases the bus connection.
func (m *MPRIS) Close() error {
	return m.conn.Close()
}

// Current returns the state of the selected player.
func (m *MPRIS) Current(ctx context.Context) (MediaStat, error) {
	name, err := m.player(ctx)
	if err != nil || name == "" {
		return MediaStat{}, err
	}

	obj := m.conn.Object(name, mprisPath)

	var status dbus.Variant
	if err := obj.CallWithContext(ctx, propertiesGet, 0, mprisPlayer, "PlaybackStatus").Store(&status); err != nil {
		return MediaStat{}, err
	}
	var metadata dbus.Variant
	if err := obj.CallWithContext(ctx, propertiesGet, 0, mprisPlayer, "Metadata").Store(&metadata); err != nil {
		return MediaStat{}, err
	}

	statusText, _ := status.Value().(string)
	meta, _ := metadata.Value().(map[string]dbus.Variant)
	return mediaFromMetadata(name, statusText, meta), nil
}

func (m *MPRIS) PlayPause(ctx context.Context) error { return m.call(ctx, "PlayPause") }
func (m *MPRIS) Next(ctx context.Context) error      { return m.call(ctx, "Next") }
func (m *MPRIS) Previous(ctx context.Context) error  { return m.call(ctx, "Previous") }

func (m *MPRIS) call(ctx context.Context, method string) error {
	name, err := m.player(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		return ErrUnsupported
	}
	return m.conn.Object(name, mprisPath).CallWithContext(ctx, mprisPlayer+"."+method, 0).Err
}

// player picks the preferred player, else a playing one, else the first
// by name. It returns "" when no player is running.
func (m *MPRIS) player(ctx context.Context) (string, error) {
	var names []string
	if err := m.conn.BusObject().CallWithContext(ctx, listNamesCall, 0).Store(&names); err != nil {
		return "", err
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	sort.Strings(players)

	return choosePlayer(players, m.preferred, func(name string) bool {
		var status dbus.Variant
		err := m.conn.Object(name, mprisPath).CallWithContext(ctx, propertiesGet, 0, mprisPlayer, "PlaybackStatus").Store(&status)
		text, _ := status.Value().(string)
		return err == nil && text == statusPlaying
	}), nil
}

func choosePlayer(players []string, preferred string, playing func(string) bool) string {
	if len(players) == 0 {
		return ""
	}
	if preferred != "" {
		for _, name := range players {
			if strings.Contains(strings.ToLower(name), preferred) {
				return name
			}
		}
	}
	for _, name := range players {
		if playing(name) {
			return name
		}
	}
	return players[0]
}

func mediaFromMetadata(busName, status string, meta map[string]dbus.Variant) MediaStat {
	stat := MediaStat{
		Available: true,
		Player:    strings.TrimPrefix(busName, mprisPrefix),
		Playing:   status == statusPlaying,
	}
	if v, ok := meta[metadataTitle]; ok {
		stat.Title, _ = v.Value().(string)
	}
	if v, ok := meta[metadataArtist]; ok {
		switch artist := v.Value().(type) {
		case []string:
			stat.Artist = strings.Join(artist, ", ")
		case string:
			stat.Artist = artist
		}
	}
	return stat
}
