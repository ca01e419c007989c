package weather

// Icon selects the shape composition used to draw a condition.
type Icon int

const (
	// IconCloud is a light cloud and doubles as the fallback for unknown codes.
	IconCloud Icon = iota
	IconSun
	IconSunCloud
	IconOvercast
	IconRain
	IconSnow
	IconStorm
)

func (i Icon) String() string {
	switch i {
	case IconSun:
		return "sun"
	case IconSunCloud:
		return "sun+cloud"
	case IconOvercast:
		return "overcast"
	case IconRain:
		return "rain"
	case IconSnow:
		return "snow"
	case IconStorm:
		return "storm"
	}
	return "cloud"
}

// Condition is the display form of a WMO weather code.
type Condition struct {
	Code        int
	Description string
	Icon        Icon
	Known       bool
}

// UnknownDescription is shown for codes outside the table.
const UnknownDescription = "Unbekannt"

var conditions = map[int]Condition{
	0:  {Description: "Klar", Icon: IconSun},
	1:  {Description: "Meist klar", Icon: IconSun},
	2:  {Description: "Teilw. bewölkt", Icon: IconSunCloud},
	3:  {Description: "Bedeckt", Icon: IconOvercast},
	45: {Description: "Nebel", Icon: IconOvercast},
	51: {Description: "Leichter Niesel", Icon: IconRain},
	53: {Description: "Nieselregen", Icon: IconRain},
	61: {Description: "Leichter Regen", Icon: IconRain},
	63: {Description: "Regen", Icon: IconRain},
	65: {Description: "Starker Regen", Icon: IconRain},
	71: {Description: "Leichter Schnee", Icon: IconSnow},
	73: {Description: "Schnee", Icon: IconSnow},
	75: {Description: "Starker Schnee", Icon: IconSnow},
	80: {Description: "Schauer", Icon: IconRain},
	81: {Description: "Starke Schauer", Icon: IconRain},
	95: {Description: "Gewitter", Icon: IconStorm},
	99: {Description: "Heftiges Gewitter", Icon: IconStorm},
}

// Describe maps a WMO code to its description and icon. Codes outside the
// table return UnknownDescription with IconCloud.
func Describe(code int) Condition {
	c, ok := conditions[code]
	if !ok {
		return Condition{Code: code, Description: UnknownDescription, Icon: IconCloud}
	}
	c.Code = code
	c.Known = true
	return c
}
