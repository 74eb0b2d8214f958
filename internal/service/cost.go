package service

// SegmentLength is the SMS billing unit in characters
const SegmentLength = 160

// UnitRate is the cost of one segment to one recipient. It is
// tenant-independent.
const UnitRate = 0.10

// EstimateCost returns the monetary cost of sending a message of the
// given length to the given number of recipients. The result is computed
// once at dispatch time, stored on the message, and never recomputed.
func EstimateCost(messageLength, recipientCount int) float64 {
	if messageLength <= 0 || recipientCount <= 0 {
		return 0
	}
	segments := (messageLength + SegmentLength - 1) / SegmentLength
	return float64(recipientCount) * float64(segments) * UnitRate
}

// ApportionCost splits a message cost evenly across its recipients
func ApportionCost(total float64, recipientCount int) float64 {
	if recipientCount <= 0 {
		return 0
	}
	return total / float64(recipientCount)
}
