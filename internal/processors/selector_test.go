package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felipearosr/stealth-money-sub003/internal/errors"
)

func descriptorWithFee(id string, percentageFee float64) Descriptor {
	return Descriptor{
		ID:                  id,
		Name:                id,
		SupportedCountries:  []string{"US"},
		SupportedCurrencies: []string{"USD"},
		FixedFee:            0.50,
		PercentageFee:       percentageFee,
		ProcessingTime:      TimeOneToTwoDays,
		UserExperienceScore: 7,
		ReliabilityScore:    95,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestSelectOptimalPrioritizesCost(t *testing.T) {
	expensive := descriptorWithFee("expensive", 2.9)
	cheap := descriptorWithFee("cheap", 1.5)

	result, err := SelectOptimal([]Descriptor{expensive, cheap}, SelectionCriteria{PrioritizeCost: true})
	require.NoError(t, err)

	assert.Equal(t, "cheap", result.SelectedProcessor.ID)
	assert.Equal(t, []Descriptor{expensive}, result.Alternatives)
	// fixedFee + 100 x percentageFee / 100 on the reference amount
	assert.Equal(t, 2.00, result.EstimatedFees)
}

func TestSelectOptimalEmptyInput(t *testing.T) {
	_, err := SelectOptimal(nil, SelectionCriteria{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNoProcessorsAvailable))
}

func TestSelectOptimalMaxFeeExcludesAll(t *testing.T) {
	candidates := []Descriptor{descriptorWithFee("a", 2.9), descriptorWithFee("b", 1.5)}

	_, err := SelectOptimal(candidates, SelectionCriteria{MaxFeePercentage: floatPtr(1.0)})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNoProcessorsMeetCriteria))
}

func TestSelectOptimalMaxFeeFilters(t *testing.T) {
	candidates := []Descriptor{descriptorWithFee("a", 2.9), descriptorWithFee("b", 1.5)}

	result, err := SelectOptimal(candidates, SelectionCriteria{MaxFeePercentage: floatPtr(2.0)})
	require.NoError(t, err)
	assert.Equal(t, "b", result.SelectedProcessor.ID)
	assert.Empty(t, result.Alternatives)
}

func TestSelectOptimalPreferredIsHardFilter(t *testing.T) {
	better := descriptorWithFee("better", 0.5)
	preferred := descriptorWithFee("preferred", 2.9)

	result, err := SelectOptimal([]Descriptor{better, preferred}, SelectionCriteria{
		PrioritizeCost:        true,
		PreferredProcessorIDs: []string{"preferred"},
	})
	require.NoError(t, err)
	assert.Equal(t, "preferred", result.SelectedProcessor.ID,
		"preference narrows the candidate set, it is not a scoring nudge")
	assert.Empty(t, result.Alternatives)
}

func TestSelectOptimalIgnoresNonIntersectingPreference(t *testing.T) {
	candidates := []Descriptor{descriptorWithFee("a", 2.9), descriptorWithFee("b", 1.5)}

	result, err := SelectOptimal(candidates, SelectionCriteria{
		PreferredProcessorIDs: []string{"unknown"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Alternatives, 1, "a preference outside the candidate set must not filter")
}

func TestSelectOptimalPrioritizesSpeed(t *testing.T) {
	slow := descriptorWithFee("slow", 1.0)
	slow.ProcessingTime = TimeThreeToFiveDays

	fast := descriptorWithFee("fast", 2.0)
	fast.ProcessingTime = TimeInstant

	result, err := SelectOptimal([]Descriptor{slow, fast}, SelectionCriteria{PrioritizeSpeed: true})
	require.NoError(t, err)
	assert.Equal(t, "fast", result.SelectedProcessor.ID)
}

func TestSelectOptimalPrioritizesReliability(t *testing.T) {
	flaky := descriptorWithFee("flaky", 1.0)
	flaky.ReliabilityScore = 60

	solid := descriptorWithFee("solid", 2.0)
	solid.ReliabilityScore = 99

	result, err := SelectOptimal([]Descriptor{flaky, solid}, SelectionCriteria{PrioritizeReliability: true})
	require.NoError(t, err)
	assert.Equal(t, "solid", result.SelectedProcessor.ID)
}

func TestSelectOptimalAlternativesRankedByScore(t *testing.T) {
	a := descriptorWithFee("a", 3.0)
	b := descriptorWithFee("b", 2.0)
	c := descriptorWithFee("c", 1.0)

	result, err := SelectOptimal([]Descriptor{a, b, c}, SelectionCriteria{PrioritizeCost: true})
	require.NoError(t, err)

	assert.Equal(t, "c", result.SelectedProcessor.ID)
	require.Len(t, result.Alternatives, 2)
	assert.Equal(t, "b", result.Alternatives[0].ID)
	assert.Equal(t, "a", result.Alternatives[1].ID)
}

func TestSelectOptimalJustification(t *testing.T) {
	result, err := SelectOptimal([]Descriptor{descriptorWithFee("a", 1.0)}, SelectionCriteria{
		PrioritizeCost:  true,
		PrioritizeSpeed: true,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Justification, "low cost")
	assert.Contains(t, result.Justification, "fast processing")
	assert.Contains(t, result.Justification, "7.0/10")
}

func TestSpeedScoreMapping(t *testing.T) {
	tests := []struct {
		category ProcessingTime
		want     float64
	}{
		{TimeInstant, 10},
		{TimeMinutes, 10},
		{TimeOneToTwoDays, 8},
		{TimeOneToThreeDays, 6},
		{TimeThreeToFiveDays, 4},
		{TimeOverFiveDays, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, speedScore(tt.category), string(tt.category))
	}
}
