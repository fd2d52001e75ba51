package docsource

import (
	"context"

	"golfrules-ai/internal/retrieval"
)

// SampleSource serves a small built-in set of rules so the service can
// answer questions on a fresh install before any rulebook is loaded.
type SampleSource struct{}

// NewSampleSource creates a source backed by the embedded sample rules.
func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

// Load returns the embedded sample rules.
func (s *SampleSource) Load(ctx context.Context) ([]retrieval.Document, error) {
	docs := make([]retrieval.Document, len(sampleRules))
	copy(docs, sampleRules)
	return docs, nil
}

var sampleRules = []retrieval.Document{
	{
		RuleID:  "rule-1",
		Section: "The Game",
		Title:   "Rule 1: The Game, Player Conduct and the Rules",
		Content: "Golf is played in a round of 18 or fewer holes on a course by striking a ball with a club. " +
			"Play the course as you find it and play the ball as it lies. " +
			"Players are expected to act with integrity, show consideration to others and take good care of the course. " +
			"There is no penalty for a breach of these standards except that the Committee may disqualify a player for serious misconduct.",
	},
	{
		RuleID:  "rule-7",
		Section: "Playing the Ball",
		Title:   "Rule 7: Ball Search - Finding and Identifying Ball",
		Content: "A player may fairly search for their ball in play after each stroke. " +
			"The player must search fairly and may take reasonable actions to find and identify the ball, " +
			"such as moving sand or water and moving or bending grass, bushes, tree branches and other growing or attached natural objects. " +
			"If the ball is accidentally moved while searching, there is no penalty and the ball must be replaced on its original spot.",
	},
	{
		RuleID:  "rule-13",
		Section: "Specific Areas of the Course",
		Title:   "Rule 13: Putting Greens",
		Content: "The putting green of the hole being played has special rules. " +
			"A player may mark, lift and clean their ball on the putting green and may repair damage on the putting green such as ball marks and old hole plugs. " +
			"There is no penalty if the player or opponent accidentally moves the player's ball or ball-marker on the putting green; the ball or marker must be replaced.",
	},
	{
		RuleID:  "rule-17",
		Section: "Penalty Areas",
		Title:   "Rule 17: Penalty Areas",
		Content: "Penalty areas are bodies of water or other areas defined by the Committee where a ball is often lost or unable to be played. " +
			"For one penalty stroke, a player may use specific relief options to play a ball from outside the penalty area: " +
			"stroke-and-distance relief, back-on-the-line relief, or for a red penalty area, lateral relief within two club-lengths of where the ball last crossed the edge.",
	},
	{
		RuleID:  "rule-18",
		Section: "Ball Lost or Out of Bounds",
		Title:   "Rule 18: Stroke-and-Distance Relief; Ball Lost or Out of Bounds; Provisional Ball",
		Content: "If a ball is lost outside a penalty area or comes to rest out of bounds, the player must take stroke-and-distance relief: " +
			"add one penalty stroke and play the original ball or another ball from where the previous stroke was made. " +
			"A ball is lost if not found within three minutes after the player or their caddie begins to search for it. " +
			"To save time, the player may play a provisional ball before searching when the ball might be lost outside a penalty area or out of bounds.",
	},
}
