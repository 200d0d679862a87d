package payment

// Weights are the score contributions of each present field.
type Weights struct {
	UPIID         float64
	Amount        float64
	TransactionID float64
}

// DefaultWeights and DefaultThreshold are used when config leaves them unset.
var DefaultWeights = Weights{UPIID: 0.4, Amount: 0.3, TransactionID: 0.3}

const DefaultThreshold = 0.8

// Scorer rates how complete an extraction is.
type Scorer struct {
	Weights   Weights
	Threshold float64
}

// NewScorer returns a Scorer with the default policy.
func NewScorer() Scorer {
	return Scorer{Weights: DefaultWeights, Threshold: DefaultThreshold}
}

// Score adds the weight of every present field, capped at 1.0.
func (s Scorer) Score(f Fields) float64 {
	score := 0.0
	if f.UPIID != nil {
		score += s.Weights.UPIID
	}
	if f.Amount != nil {
		score += s.Weights.Amount
	}
	if f.TransactionID != nil {
		score += s.Weights.TransactionID
	}
	return min(score, 1.0)
}

// AutoApprove reports whether score clears the threshold. A small epsilon
// absorbs float error so 0.4+0.3+0.3 counts as 1.0.
func (s Scorer) AutoApprove(score float64) bool {
	return score+1e-9 >= s.Threshold
}
