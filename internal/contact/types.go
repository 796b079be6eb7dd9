package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TypeSet holds the category of a multi-valued entry. Number, email, address and
// url groups use it as a bitset; event, messenger and relationship groups hold a
// single value. Other (zero) means no category; Custom means Label carries it.
type TypeSet uint32

const (
	Other  TypeSet = 0
	Custom TypeSet = 1 << 30
)

// Has reports whether every bit of f is set.
func (t TypeSet) Has(f TypeSet) bool {
	return f != 0 && t&f == f
}

// Number types.
const (
	NumberHome TypeSet = 1 << iota
	NumberWork
	NumberVoice
	NumberFax
	NumberMsg
	NumberCell
	NumberPager
	NumberBBS
	NumberModem
	NumberCar
	NumberISDN
	NumberVideo
	NumberPCS
	NumberCompanyMain
	NumberRadio
	NumberMain
	NumberAssistant
)

// Email types.
const (
	EmailHome TypeSet = 1 << iota
	EmailWork
	EmailMobile
)

// Address types.
const (
	AddressHome TypeSet = 1 << iota
	AddressWork
	AddressDom
	AddressIntl
	AddressPostal
	AddressParcel
)

// URL types.
const (
	URLHome TypeSet = 1 << iota
	URLWork
)

// Event types.
const (
	EventBirth TypeSet = iota + 1
	EventAnniversary
)

// Messenger types.
const (
	MessengerAIM TypeSet = iota + 1
	MessengerYahoo
	MessengerSkype
	MessengerQQ
	MessengerGoogle
	MessengerICQ
	MessengerJabber
	MessengerMSN
	MessengerFacebook
	MessengerIRC
)

// Relationship types.
const (
	RelationAssistant TypeSet = iota + 1
	RelationBrother
	RelationChild
	RelationDomesticPartner
	RelationFather
	RelationFriend
	RelationManager
	RelationMother
	RelationParent
	RelationPartner
	RelationReferredBy
	RelationRelative
	RelationSister
	RelationSpouse
)

// Group identifies which family of type constants a TypeSet belongs to.
type Group int

const (
	GroupNumber Group = iota
	GroupEmail
	GroupAddress
	GroupURL
	GroupEvent
	GroupMessenger
	GroupRelationship
)

// Keyword pairs a type constant with its lower-case name.
type Keyword struct {
	Name string
	Type TypeSet
}

var groupKeywords = map[Group][]Keyword{
	GroupNumber: {
		{"home", NumberHome}, {"work", NumberWork}, {"voice", NumberVoice},
		{"fax", NumberFax}, {"msg", NumberMsg}, {"cell", NumberCell},
		{"pager", NumberPager}, {"bbs", NumberBBS}, {"modem", NumberModem},
		{"car", NumberCar}, {"isdn", NumberISDN}, {"video", NumberVideo},
		{"pcs", NumberPCS}, {"company-main", NumberCompanyMain},
		{"radio", NumberRadio}, {"main", NumberMain}, {"assistant", NumberAssistant},
	},
	GroupEmail: {
		{"home", EmailHome}, {"work", EmailWork}, {"mobile", EmailMobile},
	},
	GroupAddress: {
		{"home", AddressHome}, {"work", AddressWork}, {"dom", AddressDom},
		{"intl", AddressIntl}, {"postal", AddressPostal}, {"parcel", AddressParcel},
	},
	GroupURL: {
		{"home", URLHome}, {"work", URLWork},
	},
	GroupEvent: {
		{"birth", EventBirth}, {"anniversary", EventAnniversary},
	},
	GroupMessenger: {
		{"aim", MessengerAIM}, {"yahoo", MessengerYahoo}, {"skype", MessengerSkype},
		{"qq", MessengerQQ}, {"google", MessengerGoogle}, {"icq", MessengerICQ},
		{"jabber", MessengerJabber}, {"msn", MessengerMSN},
		{"facebook", MessengerFacebook}, {"irc", MessengerIRC},
	},
	GroupRelationship: {
		{"assistant", RelationAssistant}, {"brother", RelationBrother},
		{"child", RelationChild}, {"domestic_partner", RelationDomesticPartner},
		{"father", RelationFather}, {"friend", RelationFriend},
		{"manager", RelationManager}, {"mother", RelationMother},
		{"parent", RelationParent}, {"partner", RelationPartner},
		{"referred_by", RelationReferredBy}, {"relative", RelationRelative},
		{"sister", RelationSister}, {"spouse", RelationSpouse},
	},
}

// Keywords returns the named types of a group in declaration order.
// The returned slice must not be modified.
func Keywords(g Group) []Keyword {
	return groupKeywords[g]
}

// Bitset reports whether the group's TypeSet combines flags.
func (g Group) Bitset() bool {
	switch g {
	case GroupNumber, GroupEmail, GroupAddress, GroupURL:
		return true
	}
	return false
}

// Describe renders t as comma-separated lower-case names, with the label
// standing in for Custom.
func (t TypeSet) Describe(g Group, label string) string {
	if t.Has(Custom) {
		if label == "" {
			return "custom"
		}
		return label
	}
	var names []string
	for _, kw := range groupKeywords[g] {
		if g.Bitset() {
			if t.Has(kw.Type) {
				names = append(names, kw.Name)
			}
		} else if t == kw.Type {
			names = append(names, kw.Name)
		}
	}
	if len(names) == 0 {
		return "other"
	}
	return strings.Join(names, ",")
}

var labelPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidLabel reports whether a custom label may be written as TYPE=X-<label>.
func ValidLabel(label string) bool {
	return utf8.ValidString(label) && labelPattern.MatchString(label)
}
