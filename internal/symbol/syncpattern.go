package symbol

// SyncPatternDibits is the 24-dibit (48-bit) P25 Phase 1 sync pattern
// {+3,+3,+1,+3,+3,+3,+3,+3,+1,-1,+1,-1,+1,-3,+1,-3,-3,-3,-3,-3,-1,+3,+3,-3},
// in the order the correlators match it.
var SyncPatternDibits = [24]Dibit{
	D01Plus3, D01Plus3, D00Plus1, D01Plus3, D01Plus3, D01Plus3, D01Plus3, D01Plus3,
	D00Plus1, D10Minus1, D00Plus1, D10Minus1, D00Plus1, D11Minus3, D00Plus1, D11Minus3,
	D11Minus3, D11Minus3, D11Minus3, D11Minus3, D10Minus1, D01Plus3, D01Plus3, D11Minus3,
}

// SyncPatternSymbols is the ideal-phase (radians) form of SyncPatternDibits,
// used directly by the correlators.
var SyncPatternSymbols [24]float64

func init() {
	for i, d := range SyncPatternDibits {
		SyncPatternSymbols[i] = d.IdealPhase()
	}
}
