package options

// Kind identifies a widget type a layout component can render.
type Kind string

const (
	KindCPU       Kind = "cpu"
	KindMemory    Kind = "memory"
	KindBattery   Kind = "battery"
	KindNetwork   Kind = "network"
	KindMedia     Kind = "media"
	KindClock     Kind = "clock"
	KindDirection Kind = "direction"
	KindRSS       Kind = "rss"
	KindNotion    Kind = "notion"
)

var kinds = []Kind{
	KindCPU,
	KindMemory,
	KindBattery,
	KindNetwork,
	KindMedia,
	KindClock,
	KindDirection,
	KindRSS,
	KindNotion,
}

// Kinds returns every known widget kind in display order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// Valid reports whether k is a known widget kind.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Next cycles to the following kind, wrapping around. Unknown kinds map to
// the first kind.
func (k Kind) Next() Kind {
	for i, known := range kinds {
		if k == known {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

func (k Kind) String() string {
	return string(k)
}
