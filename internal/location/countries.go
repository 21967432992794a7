package location

import "strings"

// countryByDialCode maps E.164 calling codes to country names. Codes are
// stored without the leading plus.
var countryByDialCode = map[string]string{
	"1":   "United States",
	"7":   "Russia",
	"20":  "Egypt",
	"27":  "South Africa",
	"30":  "Greece",
	"31":  "Netherlands",
	"32":  "Belgium",
	"33":  "France",
	"34":  "Spain",
	"36":  "Hungary",
	"39":  "Italy",
	"40":  "Romania",
	"41":  "Switzerland",
	"43":  "Austria",
	"44":  "United Kingdom",
	"45":  "Denmark",
	"46":  "Sweden",
	"47":  "Norway",
	"48":  "Poland",
	"49":  "Germany",
	"52":  "Mexico",
	"54":  "Argentina",
	"55":  "Brazil",
	"56":  "Chile",
	"57":  "Colombia",
	"60":  "Malaysia",
	"61":  "Australia",
	"62":  "Indonesia",
	"63":  "Philippines",
	"64":  "New Zealand",
	"65":  "Singapore",
	"66":  "Thailand",
	"81":  "Japan",
	"82":  "South Korea",
	"84":  "Vietnam",
	"86":  "China",
	"90":  "Turkey",
	"91":  "India",
	"92":  "Pakistan",
	"93":  "Afghanistan",
	"94":  "Sri Lanka",
	"95":  "Myanmar",
	"98":  "Iran",
	"212": "Morocco",
	"213": "Algeria",
	"234": "Nigeria",
	"254": "Kenya",
	"351": "Portugal",
	"353": "Ireland",
	"358": "Finland",
	"380": "Ukraine",
	"420": "Czech Republic",
	"852": "Hong Kong",
	"880": "Bangladesh",
	"886": "Taiwan",
	"960": "Maldives",
	"961": "Lebanon",
	"962": "Jordan",
	"965": "Kuwait",
	"966": "Saudi Arabia",
	"968": "Oman",
	"971": "United Arab Emirates",
	"972": "Israel",
	"973": "Bahrain",
	"974": "Qatar",
	"975": "Bhutan",
	"977": "Nepal",
}

// CountryName maps an E.164 calling code, with or without a leading plus, to
// a country name. Unknown or empty codes return "".
func CountryName(dialCode string) string {
	code := strings.TrimSpace(dialCode)
	code = strings.TrimPrefix(code, "+")
	return countryByDialCode[code]
}
