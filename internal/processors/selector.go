package processors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
	"github.com/felipearosr/stealth-money-sub003/internal/fees"
	"github.com/felipearosr/stealth-money-sub003/internal/logger"
)

// priorityBoost multiplies a sub-score when its criterion is prioritized.
// The weighting is a policy parameter, not a contract; ties and dominance
// effects when several priorities are set at once should be retuned here.
const priorityBoost = 2.0

// referenceAmount is the fixed amount used for the comparability fee figure
// in SelectionResult; it is not the actual transaction fee.
const referenceAmount = 100.0

// SelectOptimal filters and ranks candidate processors against the caller's
// criteria. Preferred ids are a hard filter when they intersect the
// candidates; maxFeePercentage drops candidates outright. The survivors are
// scored on cost, speed, reliability and user experience and ranked
// descending.
func SelectOptimal(candidates []Descriptor, criteria SelectionCriteria) (*SelectionResult, error) {
	if len(candidates) == 0 {
		return nil, errors.ErrNoProcessorsAvailable("", "")
	}

	filtered := candidates

	if len(criteria.PreferredProcessorIDs) > 0 {
		preferred := make([]Descriptor, 0, len(filtered))
		for _, d := range filtered {
			for _, id := range criteria.PreferredProcessorIDs {
				if d.ID == id {
					preferred = append(preferred, d)
					break
				}
			}
		}
		// Narrow only when the preference intersects the candidate set
		if len(preferred) > 0 {
			filtered = preferred
		}
	}

	if criteria.MaxFeePercentage != nil {
		maxFee := *criteria.MaxFeePercentage
		withinFee := make([]Descriptor, 0, len(filtered))
		for _, d := range filtered {
			if d.PercentageFee <= maxFee {
				withinFee = append(withinFee, d)
			}
		}
		if len(withinFee) == 0 {
			return nil, errors.ErrNoProcessorsMeetCriteria(
				fmt.Sprintf("no processor charges %.2f%% or less", maxFee))
		}
		filtered = withinFee
	}

	type scored struct {
		desc  Descriptor
		score float64
	}

	ranked := make([]scored, 0, len(filtered))
	for _, d := range filtered {
		ranked = append(ranked, scored{desc: d, score: scoreProcessor(d, criteria)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	selected := ranked[0].desc
	alternatives := make([]Descriptor, 0, len(ranked)-1)
	for _, s := range ranked[1:] {
		alternatives = append(alternatives, s.desc)
	}

	result := &SelectionResult{
		SelectedProcessor: selected,
		Alternatives:      alternatives,
		Justification:     buildJustification(selected, criteria),
		EstimatedFees:     fees.Round2(selected.FixedFee + referenceAmount*selected.PercentageFee/100),
	}

	logger.Info("Processor selected", logger.Fields{
		"processor_id":  selected.ID,
		"score":         ranked[0].score,
		"alternatives":  len(alternatives),
		"estimated_fee": result.EstimatedFees,
	})

	return result, nil
}

// scoreProcessor sums four sub-scores: cost, speed, reliability and user
// experience. The first three double when their criterion is prioritized;
// user experience always counts once.
func scoreProcessor(d Descriptor, criteria SelectionCriteria) float64 {
	costScore := 10 - d.PercentageFee
	if criteria.PrioritizeCost {
		costScore *= priorityBoost
	}

	speed := speedScore(d.ProcessingTime)
	if criteria.PrioritizeSpeed {
		speed *= priorityBoost
	}

	reliability := d.ReliabilityScore / 10
	if criteria.PrioritizeReliability {
		reliability *= priorityBoost
	}

	return costScore + speed + reliability + d.UserExperienceScore
}

// speedScore maps a processing-time category to a 2-10 scale
func speedScore(t ProcessingTime) float64 {
	switch t {
	case TimeInstant, TimeMinutes:
		return 10
	case TimeOneToTwoDays:
		return 8
	case TimeOneToThreeDays:
		return 6
	case TimeThreeToFiveDays:
		return 4
	default:
		return 2
	}
}

// buildJustification assembles the human-readable explanation of a selection.
// Descriptive text only; nothing downstream parses it.
func buildJustification(d Descriptor, criteria SelectionCriteria) string {
	reasons := make([]string, 0, 3)
	if criteria.PrioritizeCost {
		reasons = append(reasons, "low cost")
	}
	if criteria.PrioritizeSpeed {
		reasons = append(reasons, "fast processing")
	}
	if criteria.PrioritizeReliability {
		reasons = append(reasons, "high reliability")
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("Selected %s based on overall score; user experience rated %.1f/10",
			d.Name, d.UserExperienceScore)
	}

	return fmt.Sprintf("Selected %s prioritizing %s; user experience rated %.1f/10",
		d.Name, strings.Join(reasons, ", "), d.UserExperienceScore)
}
