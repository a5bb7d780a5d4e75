package domain

import "time"

// HairLength enumerates target lengths.
type HairLength string

const (
	HairLengthAboveEar   HairLength = "AboveEar"
	HairLengthEarToJaw   HairLength = "EarToJaw"
	HairLengthBelowJaw   HairLength = "BelowJaw"
	HairLengthShoulder   HairLength = "Shoulder"
	HairLengthCollarbone HairLength = "Collarbone"
	HairLengthBust       HairLength = "Bust"
	HairLengthMidBack    HairLength = "MidBack"
	HairLengthWaist      HairLength = "Waist"
)

// CutType enumerates cut families.
type CutType string

const (
	CutTypeBob       CutType = "Bob"
	CutTypePixie     CutType = "Pixie"
	CutTypeLayered   CutType = "Layered"
	CutTypeShag      CutType = "Shag"
	CutTypeOneLength CutType = "OneLength"
)

// PermType enumerates perm families.
type PermType string

const (
	PermTypeCCurl   PermType = "C_Curl"
	PermTypeSCurl   PermType = "S_Curl"
	PermTypeHippie  PermType = "Hippie"
	PermTypeGlam    PermType = "Glam"
	PermTypeDigital PermType = "Digital"
	PermTypeSand    PermType = "Sand"
)

// StraightType enumerates straightening treatments.
type StraightType string

const (
	StraightTypeNatural     StraightType = "NaturalStraight"
	StraightTypeVolumeMagic StraightType = "VolumeMagic"
)

// UpdoType enumerates updo styles.
type UpdoType string

const (
	UpdoTypePonytail UpdoType = "Ponytail"
	UpdoTypeBun      UpdoType = "Bun"
	UpdoTypeHalfUp   UpdoType = "HalfUp"
	UpdoTypeAllBack  UpdoType = "AllBack"
)

// CurlPattern enumerates curl tightness.
type CurlPattern string

const (
	CurlPatternLoose     CurlPattern = "Loose"
	CurlPatternMedium    CurlPattern = "Medium"
	CurlPatternTight     CurlPattern = "Tight"
	CurlPatternIrregular CurlPattern = "Irregular"
)

// BangsType enumerates fringe styles.
type BangsType string

const (
	BangsTypeSeeThrough BangsType = "SeeThrough"
	BangsTypeFull       BangsType = "Full"
	BangsTypeChoppy     BangsType = "Choppy"
	BangsTypeCenterPart BangsType = "CenterPart"
	BangsTypeSidePart   BangsType = "SidePart"
	BangsTypeSlickBack  BangsType = "SlickBack"
)

// VolumeType enumerates where volume sits.
type VolumeType string

const (
	VolumeTypeFlat    VolumeType = "Flat"
	VolumeTypeRoot    VolumeType = "Root"
	VolumeTypeSides   VolumeType = "Sides"
	VolumeTypeOverall VolumeType = "Overall"
)

// LayeringType enumerates layering intensity.
type LayeringType string

const (
	LayeringTypeLight  LayeringType = "Light"
	LayeringTypeMedium LayeringType = "Medium"
	LayeringTypeHeavy  LayeringType = "Heavy"
)

// FinishTexture enumerates surface finish.
type FinishTexture string

const (
	FinishTextureGlossy  FinishTexture = "Glossy"
	FinishTextureNatural FinishTexture = "Natural"
	FinishTextureMatte   FinishTexture = "Matte"
)

// Hairstyle is a read-only catalog entry; it doubles as the descriptor used to build prompts.
type Hairstyle struct {
	ID            string
	Name          string
	Description   *string
	HairLength    HairLength
	CutType       *CutType
	PermType      *PermType
	StraightType  *StraightType
	UpdoType      *UpdoType
	CurlPattern   *CurlPattern
	BangsType     *BangsType
	VolumeType    *VolumeType
	LayeringType  *LayeringType
	FinishTexture *FinishTexture
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AttributeValues lists the allowed values of every structured attribute, keyed by column name.
var AttributeValues = map[string][]string{
	"hair_length":    {"AboveEar", "EarToJaw", "BelowJaw", "Shoulder", "Collarbone", "Bust", "MidBack", "Waist"},
	"cut_type":       {"Bob", "Pixie", "Layered", "Shag", "OneLength"},
	"perm_type":      {"C_Curl", "S_Curl", "Hippie", "Glam", "Digital", "Sand"},
	"straight_type":  {"NaturalStraight", "VolumeMagic"},
	"updo_type":      {"Ponytail", "Bun", "HalfUp", "AllBack"},
	"curl_pattern":   {"Loose", "Medium", "Tight", "Irregular"},
	"bangs_type":     {"SeeThrough", "Full", "Choppy", "CenterPart", "SidePart", "SlickBack"},
	"volume_type":    {"Flat", "Root", "Sides", "Overall"},
	"layering_type":  {"Light", "Medium", "Heavy"},
	"finish_texture": {"Glossy", "Natural", "Matte"},
}

// ValidAttribute reports whether value is allowed for the named attribute.
func ValidAttribute(attribute, value string) bool {
	for _, allowed := range AttributeValues[attribute] {
		if allowed == value {
			return true
		}
	}
	return false
}
