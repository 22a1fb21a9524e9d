package video

import "math"

type RoomType string

const (
	RoomLivingRoom RoomType = "living_room"
	RoomKitchen    RoomType = "kitchen"
	RoomBedroom    RoomType = "bedroom"
	RoomBathroom   RoomType = "bathroom"
	RoomExterior   RoomType = "exterior"
	RoomOther      RoomType = "other"
)

type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

type DurationTier string

const (
	TierStandard DurationTier = "standard"
	TierExtended DurationTier = "extended"
	TierPremium  DurationTier = "premium"
)

// Per-clip base rate in dollars by duration tier.
var tierPerClip = map[DurationTier]float64{
	TierStandard: 4.00,
	TierExtended: 6.00,
	TierPremium:  9.00,
}

// Exterior shots carry a surcharge for sky replacement work.
var roomSurcharge = map[RoomType]float64{
	RoomExterior: 1.00,
}

// Portrait output is rendered twice (crop pass) and costs extra per clip.
const portraitSurcharge = 0.50

func ValidRoomType(r RoomType) bool {
	switch r {
	case RoomLivingRoom, RoomKitchen, RoomBedroom, RoomBathroom, RoomExterior, RoomOther:
		return true
	}
	return false
}

func ValidAspectRatio(a AspectRatio) bool {
	switch a {
	case AspectLandscape, AspectPortrait, AspectSquare:
		return true
	}
	return false
}

func ValidDurationTier(t DurationTier) bool {
	switch t {
	case TierStandard, TierExtended, TierPremium:
		return true
	}
	return false
}

// PerClipRate returns the dollar rate for one clip with the given options.
func PerClipRate(room RoomType, aspect AspectRatio, tier DurationTier) float64 {
	rate := tierPerClip[tier] + roomSurcharge[room]
	if aspect == AspectPortrait {
		rate += portraitSurcharge
	}
	return rate
}

// CalculateVideoCost returns the total dollar cost for clipCount clips with
// identical options. It is a pure function of its inputs: the same inputs
// always produce the same cost, and cost never decreases as clipCount grows.
func CalculateVideoCost(clipCount int, room RoomType, aspect AspectRatio, tier DurationTier) float64 {
	if clipCount <= 0 {
		return 0
	}
	return float64(clipCount) * PerClipRate(room, aspect, tier)
}

// CostToCents converts a dollar cost to integer cents, rounding half away
// from zero. Stripe amounts are specified in cents.
func CostToCents(cost float64) int64 {
	return int64(math.Round(cost * 100))
}
