// Package widget renders layout components to styled strings. Renderers are
// pure: everything they show comes from the options and the Env passed in.
package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/alexisbeaulieu97/tilebar/internal/host"
	"github.com/alexisbeaulieu97/tilebar/internal/layout"
	"github.com/alexisbeaulieu97/tilebar/internal/options"
	"github.com/alexisbeaulieu97/tilebar/internal/theme"
)

// alertAccent marks CPU/memory above their warning threshold and a low
// battery.
const alertAccent = theme.Red

// Feeds carries the badge counts of the feed widgets.
type Feeds struct {
	RSSUnseen     int
	RSSFailed     bool
	NotionPending int
	NotionFailed  bool
}

// Env is everything a renderer may read.
type Env struct {
	Host    host.Snapshot
	Palette theme.Palette
	Glyphs  Glyphs
	Feeds   Feeds
	Now     time.Time
}

// Render decodes the component's options and draws it. An unknown kind is
// drawn as a muted placeholder.
func Render(c layout.Component, env Env) string {
	opts, _, err := options.Decode(c.Type, c.Options)
	if err != nil {
		return lipgloss.NewStyle().Foreground(env.Palette.Muted).Render("?" + string(c.Type))
	}
	return RenderOptions(opts, env)
}

// RenderOptions draws already decoded options. It returns "" when there is
// nothing to show, such as a missing battery.
func RenderOptions(opts options.Options, env Env) string {
	switch o := opts.(type) {
	case *options.CPU:
		return renderCPU(*o, env)
	case *options.Memory:
		return renderMemory(*o, env)
	case *options.Battery:
		return renderBattery(*o, env)
	case *options.Network:
		return renderNetwork(*o, env)
	case *options.Media:
		return renderMedia(*o, env)
	case *options.Clock:
		return renderClock(*o, env)
	case *options.Direction:
		return renderDirection(*o, env)
	case *options.RSS:
		return renderFeed(o.Common, env.Glyphs.RSS, env.Feeds.RSSUnseen, env.Feeds.RSSFailed, o.ShowZero, defaultAccent(options.KindRSS), env)
	case *options.Notion:
		return renderFeed(o.Common, env.Glyphs.Notion, env.Feeds.NotionPending, env.Feeds.NotionFailed, o.ShowZero, defaultAccent(options.KindNotion), env)
	default:
		return ""
	}
}

func defaultAccent(kind options.Kind) theme.Name {
	if d := options.Defaults(kind); d != nil {
		if b, ok := d.(interface{ Base() options.Common }); ok {
			return b.Base().ColorTheme
		}
	}
	return theme.Blue
}

// join renders the non-empty parts separated by single spaces.
func join(style lipgloss.Style, parts ...string) string {
	return style.Render(strings.Join(nonEmpty(parts...), " "))
}

func renderCPU(o options.CPU, env Env) string {
	stat := env.Host.CPU
	icon := ""
	if o.ShowIcon {
		icon = env.Glyphs.CPU
	}
	value := "--"
	if stat.Available {
		value = fmt.Sprintf("%.0f%%", stat.Usage)
	}
	accent := thresholdAccent(o.ColorTheme, stat.Available, stat.Usage, o.WarnThreshold)
	return join(env.Palette.Accent(accent, defaultAccent(options.KindCPU)), icon, o.Label, value)
}

func renderMemory(o options.Memory, env Env) string {
	stat := env.Host.Memory
	icon := ""
	if o.ShowIcon {
		icon = env.Glyphs.Memory
	}
	value := "--"
	if stat.Available {
		value = fmt.Sprintf("%.0f%%", stat.UsedPercent())
		if o.Unit == "used" {
			value = fmt.Sprintf("%s/%s", formatBytes(float64(stat.UsedBytes)), formatBytes(float64(stat.TotalBytes)))
		}
	}
	accent := thresholdAccent(o.ColorTheme, stat.Available, stat.UsedPercent(), o.WarnThreshold)
	return join(env.Palette.Accent(accent, defaultAccent(options.KindMemory)), icon, o.Label, value)
}

// thresholdAccent switches to the alert accent once value reaches warn.
func thresholdAccent(name theme.Name, available bool, value float64, warn int) theme.Name {
	if available && value >= float64(warn) {
		return alertAccent
	}
	return name
}

func renderBattery(o options.Battery, env Env) string {
	stat := env.Host.Battery
	if !stat.Available {
		return ""
	}
	percent := ""
	if o.ShowPercent {
		percent = fmt.Sprintf("%d%%", stat.Level)
	}
	accent := o.ColorTheme
	if stat.Level < o.LowThreshold {
		accent = alertAccent
	}
	return join(env.Palette.Accent(accent, defaultAccent(options.KindBattery)),
		BatteryIcon(stat.Level, stat.Charging, env.Glyphs), o.Label, percent)
}

// BatteryIcon picks the battery glyph for level. Charging has its own icon.
func BatteryIcon(level int, charging bool, g Glyphs) string {
	if charging {
		return g.Charging
	}
	return g.Battery[batteryBucket(level)]
}

func batteryBucket(level int) int {
	switch {
	case level >= 90:
		return 4
	case level >= 60:
		return 3
	case level >= 35:
		return 2
	case level >= 15:
		return 1
	default:
		return 0
	}
}

func renderNetwork(o options.Network, env Env) string {
	stat := env.Host.Network
	if !stat.Available {
		return ""
	}

	text := o.Label
	if !stat.Connected {
		text = strings.TrimSpace(text + " offline")
	}

	traffic := ""
	if o.ShowTraffic && stat.Connected {
		traffic = fmt.Sprintf("%s%s %s%s", env.Glyphs.Down, formatBytes(stat.RxRate), env.Glyphs.Up, formatBytes(stat.TxRate))
	}
	return join(env.Palette.Accent(o.ColorTheme, defaultAccent(options.KindNetwork)),
		NetworkIcon(stat, env.Glyphs), text, traffic)
}

// NetworkIcon picks the Ethernet glyph or a Wi-Fi strength glyph.
func NetworkIcon(stat host.NetworkStat, g Glyphs) string {
	if !stat.Connected {
		return g.Wifi[0]
	}
	if stat.Ethernet {
		return g.Ethernet
	}
	return g.Wifi[wifiBucket(stat.Signal)]
}

func wifiBucket(signal int) int {
	switch {
	case signal >= 80:
		return 4
	case signal >= 55:
		return 3
	case signal >= 30:
		return 2
	case signal > 0:
		return 1
	default:
		return 0
	}
}

func renderMedia(o options.Media, env Env) string {
	stat := env.Host.Media
	if !stat.Available || stat.Title == "" {
		return ""
	}

	text := stat.Title
	if o.ShowArtist && stat.Artist != "" {
		text = stat.Artist + " - " + stat.Title
	}
	glyph := env.Glyphs.Pause
	if stat.Playing {
		glyph = env.Glyphs.Play
	}
	return join(env.Palette.Accent(o.ColorTheme, defaultAccent(options.KindMedia)),
		glyph, o.Label, Truncate(text, o.MaxLength, env.Glyphs.Ellipsis))
}

// Truncate shortens s to at most max runes, ending with ellipsis when cut.
func Truncate(s string, max int, ellipsis string) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	keep := max - len([]rune(ellipsis))
	if keep < 1 {
		return string(runes[:max])
	}
	return strings.TrimRight(string(runes[:keep]), " ") + ellipsis
}

func renderClock(o options.Clock, env Env) string {
	now := env.Now
	if now.IsZero() {
		now = time.Now()
	}
	date := ""
	if o.DateFormat != "" {
		date = now.Format(o.DateFormat)
	}
	return join(env.Palette.Accent(o.ColorTheme, defaultAccent(options.KindClock)),
		o.Label, date, now.Format(o.Format))
}

func renderDirection(o options.Direction, env Env) string {
	state := env.Host.WM
	if !state.Available {
		return ""
	}
	glyph := env.Glyphs.Horizontal
	if state.Direction == host.Vertical {
		glyph = env.Glyphs.Vertical
	}
	return join(env.Palette.Accent(o.ColorTheme, defaultAccent(options.KindDirection)), glyph, o.Label)
}

func renderFeed(c options.Common, icon string, count int, failed, showZero bool, fallback theme.Name, env Env) string {
	style := env.Palette.Accent(c.ColorTheme, fallback)
	badge := ""
	if count > 0 || showZero {
		badge = style.Bold(true).Render(fmt.Sprintf("%d", count))
	}
	warn := ""
	if failed {
		warn = env.Palette.Accent(alertAccent, alertAccent).Render(env.Glyphs.Failed)
	}
	return strings.Join(nonEmpty(style.Render(strings.TrimSpace(icon+" "+c.Label)), badge, warn), " ")
}

func nonEmpty(parts ...string) []string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return kept
}

// formatBytes renders n in binary units without the space or "iB", e.g.
// "1.5K" or "16G", to keep bar segments short.
func formatBytes(n float64) string {
	if n < 0 {
		n = 0
	}
	text := strings.TrimSuffix(humanize.IBytes(uint64(n)), "iB")
	return strings.Replace(text, " ", "", 1)
}
