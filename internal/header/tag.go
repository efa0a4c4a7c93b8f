package header

// Tag is the term for the key in the key-value pairs in a header.
//
// Only the tags this package's callers (the facade, the ordering engine, and
// the fingerprint cache) actually consult are named here; the full rpm tag
// space is irrelevant to a component that treats the header as an opaque
// blob plus a handful of indexed views.
type Tag int32

const (
	TagHeaderImage      Tag = 61
	TagHeaderSignatures Tag = 62
	TagHeaderImmutable  Tag = 63
	TagHeaderI18nTable  Tag = 100

	TagName       Tag = 1000
	TagVersion    Tag = 1001
	TagRelease    Tag = 1002
	TagEpoch      Tag = 1003
	TagArch       Tag = 1022
	TagOldFnames  Tag = 1027
	TagSourceRPM  Tag = 1044
	TagProvName   Tag = 1047
	TagRequFlags  Tag = 1048
	TagRequName   Tag = 1049
	TagRequVers   Tag = 1050
	TagConflFlags Tag = 1053
	TagConflName  Tag = 1054
	TagConflVers  Tag = 1055
	TagDirIndexes Tag = 1116
	TagBasenames  Tag = 1117
	TagDirnames   Tag = 1118
	TagProvFlags  Tag = 1112
	TagProvVers   Tag = 1113
	TagObsName    Tag = 1090
	TagObsFlags   Tag = 1114
	TagObsVers    Tag = 1115
	TagColor      Tag = 1140
)

// Kind is the kind of data stored under a given Tag.
type Kind uint32

const (
	TypeNull Kind = iota
	TypeChar
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeString
	TypeBin
	TypeStringArray
	TypeI18nString

	TypeRegionTag = TypeBin
	TypeMin       = TypeChar
	TypeMax       = TypeI18nString
)

func (t Kind) alignment() int32 {
	switch t {
	case TypeNull, TypeChar, TypeInt8, TypeString, TypeBin, TypeStringArray, TypeI18nString:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32:
		return 4
	case TypeInt64:
		return 8
	default:
		return 1
	}
}
