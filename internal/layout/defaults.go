package layout

import "github.com/alexisbeaulieu97/tilebar/internal/options"

// Supported window managers.
const (
	WMGlazeWM  = "glazewm"
	WMKomorebi = "komorebi"
	WMI3       = "i3"
	WMSway     = "sway"
)

// WindowManagers lists every supported window manager.
func WindowManagers() []string {
	return []string{WMGlazeWM, WMKomorebi, WMI3, WMSway}
}

// Key is the storage key holding the layout for wm.
func Key(wm string) string {
	return "tilebar.layout." + wm
}

// DefaultLayout returns the built-in layout for wm. Unknown window managers
// get the glazewm layout.
func DefaultLayout(wm string) Layout {
	switch wm {
	case WMI3, WMSway:
		return Layout{
			TopMargin: 0,
			XMargin:   0,
			Columns: []Column{
				{
					Align:   AlignLeft,
					Width:   AutoWidth(),
					Rounded: AllCorners,
					Components: []Component{
						{Type: options.KindDirection},
						{Type: options.KindMedia},
					},
				},
				{
					Align:      AlignCenter,
					Components: []Component{{Type: options.KindClock}},
				},
				{
					Align:   AlignRight,
					Width:   AutoWidth(),
					Rounded: AllCorners,
					Components: []Component{
						{Type: options.KindRSS},
						{Type: options.KindNotion},
						{Type: options.KindNetwork},
						{Type: options.KindCPU},
						{Type: options.KindMemory},
						{Type: options.KindBattery},
					},
				},
			},
		}
	case WMKomorebi:
		return Layout{
			TopMargin: 4,
			XMargin:   8,
			Columns: []Column{
				{
					Align:   AlignLeft,
					Rounded: TopLeft | BottomLeft,
					Components: []Component{
						{Type: options.KindDirection},
						{Type: options.KindClock},
					},
				},
				{
					Align:      AlignCenter,
					Width:      FlexWidth(2),
					Components: []Component{{Type: options.KindMedia}},
				},
				{
					Align:   AlignRight,
					Rounded: TopRight | BottomRight,
					Components: []Component{
						{Type: options.KindNotion},
						{Type: options.KindRSS},
						{Type: options.KindCPU},
						{Type: options.KindMemory},
						{Type: options.KindBattery},
					},
				},
			},
		}
	default:
		return Layout{
			TopMargin: 8,
			XMargin:   8,
			Columns: []Column{
				{
					Align:   AlignLeft,
					Rounded: AllCorners,
					Components: []Component{
						{Type: options.KindDirection},
						{Type: options.KindMedia},
					},
				},
				{
					Align:      AlignCenter,
					Width:      AutoWidth(),
					Rounded:    AllCorners,
					Components: []Component{{Type: options.KindClock}},
				},
				{
					Align:   AlignRight,
					Rounded: AllCorners,
					Components: []Component{
						{Type: options.KindRSS},
						{Type: options.KindNotion},
						{Type: options.KindNetwork},
						{Type: options.KindCPU},
						{Type: options.KindMemory},
						{Type: options.KindBattery},
					},
				},
			},
		}
	}
}
