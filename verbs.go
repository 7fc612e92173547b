package fanwheel

import "strings"

// communityVerbs maps an approved community to the action verb used when
// building its behavior phrase. Communities outside this list fall back to
// defaultVerb.
var communityVerbs = map[string]string{
	"Adult Recreational Sports":     "Plays",
	"Alternative Wellness":          "Shops",
	"Beauty Enthusiasts":            "Buys",
	"Big Sporting Events":           "Attends",
	"Bookworms":                     "Reads",
	"Boutique Fitness Enthusiasts":  "Member of",
	"Budget Travelers":              "Travels",
	"Casual Outdoor Enthusiasts":    "Shops",
	"Charitable Givers":             "Donates",
	"Collectors":                    "Collects",
	"College Sports":                "Fan of",
	"Concerts and Festivals":        "Attends",
	"Cultural Arts":                 "Enjoys",
	"Daters":                        "Dates on",
	"Disney Diehards":               "Visits",
	"DIY Arts & Crafts":             "Creates",
	"Dollar Store Shoppers":         "Saves with",
	"Domestic Decorators":           "Decorates with",
	"Drinkers":                      "Drinks",
	"Eco Conscious":                 "Shops",
	"Emerging Sports Fan":           "Fan of",
	"Endurance Athletes":            "Joins",
	"Fans of Womens Sports (FOWS)":  "Fan of",
	"Fishing Fanatics":              "Spends on",
	"Fitness Enthusiasts":           "Joins",
	"Gambler":                       "Bets on",
	"Gamers":                        "Games on",
	"Golfers":                       "Shops",
	"Hardcore Outdoor Enthusiasts":  "Buys",
	"Healthy Eaters":                "Eats",
	"Health Nut":                    "Shops",
	"Live Entertainment Seekers":    "Attends",
	"Luxury Brand Shoppers":         "Splurges on",
	"Luxury Fitness Clubs":          "Joins",
	"Mindful":                       "Focuses with",
	"Motorcycle Enthusiasts":        "Rides with",
	"Movie Buffs":                   "Buys",
	"Olympics Fans":                 "Fan of",
	"Outdoor Enthusiasts":           "Buys",
	"Pet Owners":                    "Buys",
	"Pickleball":                    "Plays",
	"Runners":                       "Runs with",
	"Skate":                         "Skates with",
	"Skiers":                        "Skies with",
	"Sneakerheads":                  "Buys",
	"Sober Curious":                 "Drinks",
	"Sportstainment":                "Plays at",
	"Sports Bettor":                 "Bets with",
	"Sports Merchandise Shopper":    "Shops",
	"Sports Streamer":               "Streams",
	"Surf":                          "Surfs",
	"Tech Savvy":                    "Buys",
	"Theme Parkers":                 "Visits",
	"Traditional Gyms":              "Joins",
	"Travelers":                     "Travels with",
	"Trend Setters":                 "Buys",
	"Values Driven":                 "Shops",
	"Wellness Warriors":             "Buys",
	"Yogis":                         "Stretches with",
	"Youth Sports":                  "Plays",
}

const defaultVerb = "Shops at"

// ApprovedCommunities returns the names of all communities with a curated
// verb, for building warehouse query filters.
func ApprovedCommunities() []string {
	names := make([]string, 0, len(communityVerbs))
	for name := range communityVerbs {
		names = append(names, name)
	}
	return names
}

// BehaviorPhrase builds the two-line behavior text for a community/merchant
// pair: the community's curated verb followed by the merchant name, wrapped
// with WrapTwoLines.
func BehaviorPhrase(community, merchant string) string {
	verb, ok := communityVerbs[strings.TrimSpace(community)]
	if !ok {
		verb = defaultVerb
	}
	line1, line2 := WrapTwoLines(strings.Fields(verb + " " + merchant))
	if line2 == "" {
		return line1
	}
	return line1 + "\n" + line2
}
