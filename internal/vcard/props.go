package vcard

import "strings"

type propID int

const (
	propN propID = iota
	propFN
	propPhoneticFirst
	propPhoneticMiddle
	propPhoneticLast
	propNickname
	propPhoto
	propBirthday
	propAnniversary
	propEvent
	propAddress
	propNumber
	propEmail
	propTitle
	propRole
	propLogo
	propOrg
	propCompanyLocation
	propCompanyDescription
	propCompanyPhoneticName
	propCompanyAssistantName
	propNote
	propRevision
	propUID
	propURL
	propMSN
	propYahoo
	propICQ
	propAIM
	propJabber
	propSkypeUsername
	propSkype
	propQQ
	propGoogleTalk
	propMessenger
	propRelationship
	propEnd
)

// fieldGroup selects the record section a property decodes into.
type fieldGroup int

const (
	groupName fieldGroup = iota
	groupNickname
	groupPhoto
	groupEvent
	groupAddress
	groupNumber
	groupEmail
	groupCompany
	groupNote
	groupRevision
	groupUID
	groupURL
	groupMessenger
	groupRelationship
	groupEnd
)

type propSpec struct {
	tag   string
	group fieldGroup
}

var propTable = [...]propSpec{
	propN:                    {"N", groupName},
	propFN:                   {"FN", groupName},
	propPhoneticFirst:        {"X-PHONETIC-FIRST-NAME", groupName},
	propPhoneticMiddle:       {"X-PHONETIC-MIDDLE-NAME", groupName},
	propPhoneticLast:         {"X-PHONETIC-LAST-NAME", groupName},
	propNickname:             {"NICKNAME", groupNickname},
	propPhoto:                {"PHOTO", groupPhoto},
	propBirthday:             {"BDAY", groupEvent},
	propAnniversary:          {"ANNIVERSARY", groupEvent},
	propEvent:                {"X-TIZEN-EVENT", groupEvent},
	propAddress:              {"ADR", groupAddress},
	propNumber:               {"TEL", groupNumber},
	propEmail:                {"EMAIL", groupEmail},
	propTitle:                {"TITLE", groupCompany},
	propRole:                 {"ROLE", groupCompany},
	propLogo:                 {"LOGO", groupCompany},
	propOrg:                  {"ORG", groupCompany},
	propCompanyLocation:      {"X-TIZEN-COMPANY-LOCATION", groupCompany},
	propCompanyDescription:   {"X-TIZEN-COMPANY-DESCRIPTION", groupCompany},
	propCompanyPhoneticName:  {"X-TIZEN-COMPANY-PHONETIC-NAME", groupCompany},
	propCompanyAssistantName: {"X-TIZEN-COMPANY-ASSISTANT-NAME", groupCompany},
	propNote:                 {"NOTE", groupNote},
	propRevision:             {"REV", groupRevision},
	propUID:                  {"UID", groupUID},
	propURL:                  {"URL", groupURL},
	propMSN:                  {"X-MSN", groupMessenger},
	propYahoo:                {"X-YAHOO", groupMessenger},
	propICQ:                  {"X-ICQ", groupMessenger},
	propAIM:                  {"X-AIM", groupMessenger},
	propJabber:               {"X-JABBER", groupMessenger},
	propSkypeUsername:        {"X-SKYPE-USERNAME", groupMessenger},
	propSkype:                {"X-SKYPE", groupMessenger},
	propQQ:                   {"X-QQ", groupMessenger},
	propGoogleTalk:           {"X-GOOGLE-TALK", groupMessenger},
	propMessenger:            {"X-TIZEN-MESSENGER", groupMessenger},
	propRelationship:         {"X-TIZEN-RELATIONSHIP", groupRelationship},
	propEnd:                  {"END", groupEnd},
}

func (p propID) tag() string       { return propTable[p].tag }
func (p propID) group() fieldGroup { return propTable[p].group }
func (p propID) String() string    { return p.tag() }

// lookupTag returns the longest tag that prefixes line, ignoring case.
func lookupTag(line string) (propID, int, bool) {
	best, bestLen := propID(-1), 0
	for id, p := range propTable {
		n := len(p.tag)
		if n > bestLen && len(line) >= n && strings.EqualFold(line[:n], p.tag) {
			best, bestLen = propID(id), n
		}
	}
	return best, bestLen, bestLen > 0
}

// stripGroup removes an RFC 6350 group prefix such as "item1." from a content line.
func stripGroup(line string) string {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '.':
			if i == 0 {
				return line
			}
			return line[i+1:]
		case c == ':' || c == ';':
			return line
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return line
		}
	}
	return line
}

// hasPrefixFold is strings.HasPrefix ignoring ASCII case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
