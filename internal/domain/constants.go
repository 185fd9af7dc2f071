package domain

// Registration category values.
const (
	CategoryUnder21     = "Under 21"
	Category21AndAbove  = "21 and Above"
	ZoneUnknown         = "Unknown"
	DefaultPlayerPoints = -99
)

// RegistrationCategories lists the accepted category values.
var RegistrationCategories = []string{CategoryUnder21, Category21AndAbove}

// Genders lists the accepted gender values.
var Genders = []string{"male", "female"}

// TShirtSizes lists the accepted t-shirt sizes.
var TShirtSizes = []string{"S", "M", "L", "XL", "XXL", "XXXL"}

// PlayerRoles lists the accepted playing roles.
var PlayerRoles = []string{"BATTING", "BOWLLING", "ALL-ROUNDER"}

// Occupations lists the accepted occupation values.
var Occupations = []string{"student", "self-employed", "business", "other"}

// FirstPreferences lists the accepted first-preference values.
var FirstPreferences = []string{"batting", "bowling"}

// BattingArms lists the accepted batting/bowling arm values.
var BattingArms = []string{"left", "right"}

// DistrictZoneMap maps a district to its tournament zone. Districts missing
// from the map resolve to ZoneUnknown.
var DistrictZoneMap = map[string]string{
	"Kanyakumari":    "ZONE A",
	"Tirunelveli":    "ZONE A",
	"Thoothukudi":    "ZONE A",
	"Tenkasi":        "ZONE A",
	"Virudhunagar":   "ZONE A",
	"Ramanathapuram": "ZONE A",
	"Theni":          "ZONE A",
	"Madurai":        "ZONE A",
	"Sivagangai":     "ZONE A",
	"Dindigul":       "ZONE A",
	"Pudukkottai":    "ZONE B",
	"Thanjavur":      "ZONE B",
	"Thiruvarur":     "ZONE B",
	"Nagapattinam":   "ZONE B",
	"Tiruchi":        "ZONE B",
	"Ariyalur":       "ZONE B",
	"Mayiladuthurai": "ZONE B",
	"Perambalur":     "ZONE B",
	"Cuddalore":      "ZONE B",
	"Pondicherry":    "ZONE B",
	"Karaikkal":      "ZONE B",
	"Chennai":        "ZONE C",
	"Tiruvallur":     "ZONE C",
	"Kanchipuram":    "ZONE C",
	"Chengalpattu":   "ZONE C",
	"Tiruvannamalai": "ZONE C",
	"Tirupattur":     "ZONE C",
	"Vellore":        "ZONE C",
	"Ranipet":        "ZONE C",
	"Kallakkurichi":  "ZONE C",
	"Villuppuram":    "ZONE C",
	"Krishnagiri":    "ZONE D",
	"Dharmapuri":     "ZONE D",
	"Nilgiris":       "ZONE D",
	"Erode":          "ZONE D",
	"Salem":          "ZONE D",
	"Coimbatore":     "ZONE D",
	"Tiruppur":       "ZONE D",
	"Namakkal":       "ZONE D",
	"Karur":          "ZONE D",
}

// ZoneForDistrict resolves the tournament zone for a district.
func ZoneForDistrict(district string) string {
	if zone, ok := DistrictZoneMap[district]; ok {
		return zone
	}
	return ZoneUnknown
}
